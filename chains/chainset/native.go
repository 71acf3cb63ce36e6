package chainset

import (
	"context"
	"math/big"
)

// Inclusion describes where a native transaction landed.
type Inclusion struct {
	BlockHash string
	BlockNum  uint64
	TxHash    string
	Events    []string
}

// NativeCollection is a handle for native-side calls on one collection.
// Amount is ignored by non-fungible collections.
type NativeCollection interface {
	Kind() CollectionKind
	Id() uint32
	Mint(ctx context.Context, owner CrossAccountId, amount *big.Int) (Inclusion, error)
	Transfer(ctx context.Context, to CrossAccountId, tokenId uint32, amount *big.Int) (Inclusion, error)
	Burn(ctx context.Context, tokenId uint32, amount *big.Int) (Inclusion, error)
}

// NativeResolver binds a collection id to a kind-specific native handle.
type NativeResolver interface {
	Collection(kind CollectionKind, id uint32) (NativeCollection, error)
}
