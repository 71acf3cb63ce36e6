package chainset

import (
	"encoding/hex"
	"encoding/json"
	"math/big"
	"strings"

	"github.com/JFJun/go-substrate-crypto/ss58"
	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/chainx-org/CrossHarness/chains"
	utils "github.com/chainx-org/CrossHarness/shared/ethlike"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/blake2b"
)

type Side uint8

const (
	SubstrateSide Side = iota
	EthereumSide
)

func (s Side) String() string {
	if s == EthereumSide {
		return "ethereum"
	}
	return "substrate"
}

// DisplayPrefix is the ss58 network prefix used by String.
var DisplayPrefix = ss58.SubstratePrefix

// MaxSS58Prefix is the largest prefix of the single byte ss58 form.
const MaxSS58Prefix = 63

// SetDisplayPrefix selects the network String encodes for.
func SetDisplayPrefix(prefix uint16) error {
	if prefix > MaxSS58Prefix {
		return &chains.RangeError{What: "ss58 prefix", Value: int64(prefix), Max: MaxSS58Prefix}
	}
	DisplayPrefix = []byte{byte(prefix)}
	return nil
}

// CrossAccountId is one account seen from either side of the chain. Only the
// field selected by Side is meaningful; the other one holds zero bytes.
type CrossAccountId struct {
	Side      Side
	Substrate [32]byte
	Ethereum  common.Address
}

func FromEthereum(addr common.Address) CrossAccountId {
	return CrossAccountId{Side: EthereumSide, Ethereum: addr}
}

// FromEthereumHex parses a 0x prefixed (or bare) 20 byte address.
func FromEthereumHex(s string) (CrossAccountId, error) {
	addr, err := utils.ParseAddress(s)
	if err != nil {
		return CrossAccountId{}, err
	}
	return FromEthereum(addr), nil
}

func FromSubstrate(pubkey []byte) (CrossAccountId, error) {
	if len(pubkey) != 32 {
		return CrossAccountId{}, chains.NewFormatError("substrate public key", hex.EncodeToString(pubkey), "expected 32 bytes, got %d", len(pubkey))
	}
	id := CrossAccountId{Side: SubstrateSide}
	copy(id.Substrate[:], pubkey)
	return id, nil
}

// FromSubstrateAddress decodes an ss58 address or a 0x prefixed 32 byte public key.
func FromSubstrateAddress(address string) (CrossAccountId, error) {
	if strings.HasPrefix(address, "0x") {
		pub, err := hex.DecodeString(address[2:])
		if err != nil {
			return CrossAccountId{}, chains.NewFormatError("substrate public key", address, "%v", err)
		}
		return FromSubstrate(pub)
	}
	pub, err := ss58.DecodeToPub(address)
	if err != nil {
		return CrossAccountId{}, chains.NewFormatError("ss58 address", address, "%v", err)
	}
	return FromSubstrate(pub)
}

// ParseCrossAccountId accepts either an EVM address or a Substrate address/key.
func ParseCrossAccountId(s string) (CrossAccountId, error) {
	if strings.HasPrefix(s, "0x") && len(s) == 2+2*common.AddressLength {
		return FromEthereumHex(s)
	}
	return FromSubstrateAddress(s)
}

// MirrorEthereumOf derives the EVM address a Substrate account acts as: the
// first 20 bytes of the public key. Not invertible.
func MirrorEthereumOf(pubkey [32]byte) common.Address {
	return common.BytesToAddress(pubkey[:common.AddressLength])
}

// MirrorSubstrateOf derives the Substrate account holding the native balance of
// an EVM address: blake2_256("evm:" ++ address).
func MirrorSubstrateOf(addr common.Address) [32]byte {
	return blake2b.Sum256(append([]byte("evm:"), addr.Bytes()...))
}

func (c CrossAccountId) IsEthereum() bool {
	return c.Side == EthereumSide
}

// AsEthereum returns the EVM address this account is seen as.
func (c CrossAccountId) AsEthereum() common.Address {
	if c.IsEthereum() {
		return c.Ethereum
	}
	return MirrorEthereumOf(c.Substrate)
}

// AsSubstrate returns the Substrate account holding this account's native balance.
func (c CrossAccountId) AsSubstrate() [32]byte {
	if c.IsEthereum() {
		return MirrorSubstrateOf(c.Ethereum)
	}
	return c.Substrate
}

// ToEthereum is the canonical Ethereum-sided form. Applying it twice is a no-op.
func (c CrossAccountId) ToEthereum() CrossAccountId {
	return FromEthereum(c.AsEthereum())
}

// Equal is strict: same side and same meaningful bytes.
func (c CrossAccountId) Equal(o CrossAccountId) bool {
	if c.Side != o.Side {
		return false
	}
	if c.IsEthereum() {
		return c.Ethereum == o.Ethereum
	}
	return c.Substrate == o.Substrate
}

// SameAccount compares the meaningful sides. When the sides differ the
// Substrate one is mirrored into EVM space first.
func SameAccount(a, b CrossAccountId) bool {
	if a.Side == b.Side {
		return a.Equal(b)
	}
	return a.AsEthereum() == b.AsEthereum()
}

// CrossAddress is the ABI form used by contract calls.
func (c CrossAccountId) CrossAddress() utils.CrossAddress {
	if c.IsEthereum() {
		return utils.CrossAddress{Eth: c.Ethereum, Sub: new(big.Int)}
	}
	return utils.CrossAddress{Eth: common.Address{}, Sub: new(big.Int).SetBytes(c.Substrate[:])}
}

// Encode writes the SCALE enum form: 0 = Substrate(AccountId32), 1 = Ethereum(H160).
func (c CrossAccountId) Encode(encoder scale.Encoder) error {
	if c.IsEthereum() {
		if err := encoder.PushByte(1); err != nil {
			return err
		}
		return encoder.Write(c.Ethereum.Bytes())
	}
	if err := encoder.PushByte(0); err != nil {
		return err
	}
	return encoder.Write(c.Substrate[:])
}

func (c CrossAccountId) String() string {
	if c.IsEthereum() {
		return c.Ethereum.Hex()
	}
	addr, err := ss58.Encode(c.Substrate[:], DisplayPrefix)
	if err != nil {
		return "0x" + hex.EncodeToString(c.Substrate[:])
	}
	return addr
}

type crossAccountJSON struct {
	Substrate string `json:"substrate"`
	Ethereum  string `json:"ethereum"`
}

// MarshalJSON always emits both sides, the unused one as zero bytes.
func (c CrossAccountId) MarshalJSON() ([]byte, error) {
	return json.Marshal(crossAccountJSON{
		Substrate: "0x" + hex.EncodeToString(c.Substrate[:]),
		Ethereum:  strings.ToLower(c.Ethereum.Hex()),
	})
}
