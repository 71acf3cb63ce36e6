package chainset

import (
	"bytes"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/chainx-org/CrossHarness/chains"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const (
	aliceSS58   = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	alicePubHex = "0xd43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d"
)

var alicePub = common.FromHex(alicePubHex)

func TestFromSubstrateSetsZeroEthereumSide(t *testing.T) {
	id, err := FromSubstrate(alicePub)
	require.NoError(t, err)
	require.Equal(t, SubstrateSide, id.Side)
	require.Equal(t, common.Address{}, id.Ethereum)
	require.Equal(t, alicePub, id.Substrate[:])
}

func TestFromEthereumSetsZeroSubstrateSide(t *testing.T) {
	addr := common.HexToAddress("0x6be02d1d3665660d22ff9624b7be0551ee1ac91b")
	id := FromEthereum(addr)
	require.True(t, id.IsEthereum())
	require.Equal(t, [32]byte{}, id.Substrate)
	require.Equal(t, addr, id.Ethereum)
}

func TestMalformedInputsAreFormatErrors(t *testing.T) {
	var formatErr *chains.FormatError

	_, err := FromSubstrate(alicePub[:31])
	require.ErrorAs(t, err, &formatErr)

	_, err = FromSubstrateAddress("0xzz")
	require.ErrorAs(t, err, &formatErr)

	_, err = FromSubstrateAddress("not-an-ss58-address")
	require.ErrorAs(t, err, &formatErr)

	_, err = FromEthereumHex("0x1234")
	require.ErrorAs(t, err, &formatErr)
}

func TestSS58RoundTrip(t *testing.T) {
	id, err := FromSubstrateAddress(aliceSS58)
	require.NoError(t, err)
	require.Equal(t, alicePub, id.Substrate[:])
	require.Equal(t, aliceSS58, id.String())

	byKey, err := FromSubstrateAddress(alicePubHex)
	require.NoError(t, err)
	require.True(t, id.Equal(byKey))
}

func TestMirrorEthereumOfTruncates(t *testing.T) {
	var pub [32]byte
	copy(pub[:], alicePub)
	require.Equal(t, common.HexToAddress("0xd43593c715fdd31c61141abd04a99fd6822c8558"), MirrorEthereumOf(pub))
}

func TestMirrorSubstrateOfHashesWithEvmPrefix(t *testing.T) {
	addr := common.HexToAddress("0x6be02d1d3665660d22ff9624b7be0551ee1ac91b")
	mirror := MirrorSubstrateOf(addr)
	require.Equal(t, common.FromHex("0x0d6d2fcaed2f2ccd5c1d5c86468490f2aafeec8b7cb14af512cdf8c7980183a3"), mirror[:])
	require.Equal(t, mirror, FromEthereum(addr).AsSubstrate())
}

func TestSameAccountUnderMirroring(t *testing.T) {
	keys := [][]byte{
		alicePub,
		bytes.Repeat([]byte{0xff}, 32),
		make([]byte, 32),
	}
	for _, k := range keys {
		sub, err := FromSubstrate(k)
		require.NoError(t, err)
		eth := FromEthereum(MirrorEthereumOf(sub.Substrate))

		require.True(t, SameAccount(sub, eth))
		require.True(t, SameAccount(eth, sub))
		// structural equality must not be used across sides
		require.False(t, sub.Equal(eth))
		require.NotEqual(t, sub, eth)
	}
}

func TestSameAccountDistinguishesAccounts(t *testing.T) {
	alice, err := FromSubstrate(alicePub)
	require.NoError(t, err)
	other := FromEthereum(common.HexToAddress("0x6be02d1d3665660d22ff9624b7be0551ee1ac91b"))
	require.False(t, SameAccount(alice, other))

	bob := alice
	bob.Substrate[31] ^= 0x01
	require.False(t, SameAccount(alice, bob))
}

func TestToEthereumIsIdempotent(t *testing.T) {
	alice, err := FromSubstrate(alicePub)
	require.NoError(t, err)
	once := alice.ToEthereum()
	require.Equal(t, once, once.ToEthereum())
	require.True(t, SameAccount(alice, once))
}

func TestScaleEncoding(t *testing.T) {
	alice, err := FromSubstrate(alicePub)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, scale.NewEncoder(&buf).Encode(alice))
	require.Equal(t, append([]byte{0}, alicePub...), buf.Bytes())

	addr := common.HexToAddress("0x6be02d1d3665660d22ff9624b7be0551ee1ac91b")
	buf.Reset()
	require.NoError(t, scale.NewEncoder(&buf).Encode(FromEthereum(addr)))
	require.Equal(t, append([]byte{1}, addr.Bytes()...), buf.Bytes())
}

func TestCrossAddressForm(t *testing.T) {
	alice, err := FromSubstrate(alicePub)
	require.NoError(t, err)
	ca := alice.CrossAddress()
	require.Equal(t, common.Address{}, ca.Eth)
	require.Equal(t, new(big.Int).SetBytes(alicePub), ca.Sub)

	addr := common.HexToAddress("0x6be02d1d3665660d22ff9624b7be0551ee1ac91b")
	ca = FromEthereum(addr).CrossAddress()
	require.Equal(t, addr, ca.Eth)
	require.Zero(t, ca.Sub.Sign())
}

func TestJSONCarriesBothSides(t *testing.T) {
	addr := common.HexToAddress("0x6be02d1d3665660d22ff9624b7be0551ee1ac91b")
	raw, err := json.Marshal(FromEthereum(addr))
	require.NoError(t, err)
	require.JSONEq(t, `{
		"substrate": "0x0000000000000000000000000000000000000000000000000000000000000000",
		"ethereum": "0x6be02d1d3665660d22ff9624b7be0551ee1ac91b"
	}`, string(raw))
}

func TestParseCrossAccountId(t *testing.T) {
	eth, err := ParseCrossAccountId("0x6be02d1d3665660d22ff9624b7be0551ee1ac91b")
	require.NoError(t, err)
	require.True(t, eth.IsEthereum())

	sub, err := ParseCrossAccountId(aliceSS58)
	require.NoError(t, err)
	require.False(t, sub.IsEthereum())
}

func TestDisplayPrefix(t *testing.T) {
	defer func(p []byte) { DisplayPrefix = p }(DisplayPrefix)
	id, err := FromSubstrateAddress(aliceSS58)
	require.NoError(t, err)

	require.NoError(t, SetDisplayPrefix(0))
	polkadot := id.String()
	require.NotEqual(t, aliceSS58, polkadot)
	require.Equal(t, byte('1'), polkadot[0])

	back, err := FromSubstrateAddress(polkadot)
	require.NoError(t, err)
	require.True(t, id.Equal(back))

	var rangeErr *chains.RangeError
	require.ErrorAs(t, SetDisplayPrefix(64), &rangeErr)
	require.Equal(t, []byte{0}, DisplayPrefix)
}
