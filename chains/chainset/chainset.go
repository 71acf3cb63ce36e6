package chainset

import (
	"fmt"
	"strings"

	utils "github.com/chainx-org/CrossHarness/shared/ethlike"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

// CollectionKind is the closed set of collection types. Its value is the
// collection mode passed to the collection helper contract.
type CollectionKind uint8

const (
	NonFungible CollectionKind = iota
	Fungible
	ReFungible
)

/// Kind name constants
const (
	NameNonFungible string = "nft"
	NameFungible    string = "ft"
	NameReFungible  string = "rft"
)

type KindInfo struct {
	Kind       CollectionKind
	Name       string
	NativeName string
	ABI        *abi.ABI
}

var (
	KindSets = [...]KindInfo{
		{NonFungible, NameNonFungible, "NFT", &utils.NonFungibleABI},
		{Fungible, NameFungible, "Fungible", &utils.FungibleABI},
		{ReFungible, NameReFungible, "ReFungible", &utils.ReFungibleABI},
	}
)

func ParseCollectionKind(name string) (CollectionKind, error) {
	for _, ks := range KindSets {
		if strings.EqualFold(name, ks.Name) || strings.EqualFold(name, ks.NativeName) {
			return ks.Kind, nil
		}
	}
	return 0, fmt.Errorf("unknown collection kind %q", name)
}

func (k CollectionKind) Valid() bool {
	return int(k) < len(KindSets)
}

func (k CollectionKind) info() KindInfo {
	if !k.Valid() {
		panic(fmt.Sprintf("invalid collection kind %d", k))
	}
	return KindSets[k]
}

func (k CollectionKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("CollectionKind(%d)", uint8(k))
	}
	return k.info().Name
}

// NativeName is the variant name used by the native pallet (CollectionMode).
func (k CollectionKind) NativeName() string {
	return k.info().NativeName
}

// ABI is the EVM surface of a collection of this kind.
func (k CollectionKind) ABI() *abi.ABI {
	return k.info().ABI
}

func (k CollectionKind) Mode() uint8 {
	return uint8(k)
}
