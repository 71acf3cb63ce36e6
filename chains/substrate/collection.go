// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package substrate

import (
	"context"
	"fmt"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/chainx-org/CrossHarness/chains/chainset"
	utils "github.com/chainx-org/CrossHarness/shared/substrate"
)

// NativeCollection calls the Unique pallet for one collection. The kind picks
// the create_item payload and whether amounts are meaningful.
type NativeCollection struct {
	kind chainset.CollectionKind
	id   uint32
	sub  Submitter
}

var _ chainset.NativeCollection = &NativeCollection{}

func NewNativeCollection(sub Submitter, kind chainset.CollectionKind, id uint32) (*NativeCollection, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid collection kind %d", kind)
	}
	return &NativeCollection{kind: kind, id: id, sub: sub}, nil
}

func (n *NativeCollection) Kind() chainset.CollectionKind { return n.kind }
func (n *NativeCollection) Id() uint32                    { return n.id }

// itemData builds the create_item payload. amount is the value of a fungible
// mint and the number of pieces of a re-fungible one.
func (n *NativeCollection) itemData(amount *big.Int) utils.CreateItemData {
	switch n.kind {
	case chainset.Fungible:
		return utils.NewFungibleData(orOne(amount))
	case chainset.ReFungible:
		return utils.NewReFungibleData(orOne(amount))
	default:
		return utils.NewNFTData()
	}
}

// value is the u128 amount argument of transfer and burn_item. Non-fungible
// tokens always move as a whole.
func (n *NativeCollection) value(amount *big.Int) types.U128 {
	if n.kind == chainset.NonFungible {
		return types.NewU128(*big.NewInt(1))
	}
	return types.NewU128(*orOne(amount))
}

func (n *NativeCollection) Mint(ctx context.Context, owner chainset.CrossAccountId, amount *big.Int) (chainset.Inclusion, error) {
	return n.sub.SubmitAndWatch(ctx, utils.UniqueCreateItemMethod, types.NewU32(n.id), owner, n.itemData(amount))
}

// Transfer moves a token. Fungible collections have a single token with id 0.
func (n *NativeCollection) Transfer(ctx context.Context, to chainset.CrossAccountId, tokenId uint32, amount *big.Int) (chainset.Inclusion, error) {
	if n.kind == chainset.Fungible {
		tokenId = 0
	}
	return n.sub.SubmitAndWatch(ctx, utils.UniqueTransferMethod, to, types.NewU32(n.id), types.NewU32(tokenId), n.value(amount))
}

func (n *NativeCollection) Burn(ctx context.Context, tokenId uint32, amount *big.Int) (chainset.Inclusion, error) {
	if n.kind == chainset.Fungible {
		tokenId = 0
	}
	return n.sub.SubmitAndWatch(ctx, utils.UniqueBurnItemMethod, types.NewU32(n.id), types.NewU32(tokenId), n.value(amount))
}

func orOne(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(1)
	}
	return v
}

// CollectionResolver hands out native handles bound to one submitter.
type CollectionResolver struct {
	sub Submitter
}

var _ chainset.NativeResolver = CollectionResolver{}

func NewCollectionResolver(sub Submitter) CollectionResolver {
	return CollectionResolver{sub: sub}
}

func (r CollectionResolver) Collection(kind chainset.CollectionKind, id uint32) (chainset.NativeCollection, error) {
	c, err := NewNativeCollection(r.sub, kind, id)
	if err != nil {
		return nil, err
	}
	return c, nil
}
