package substrate

import (
	"context"
	"errors"
	"testing"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/chainx-org/CrossHarness/chains/chainset"
	utils "github.com/chainx-org/CrossHarness/shared/substrate"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var evmOwner = chainset.FromEthereum(common.HexToAddress("0x6be02d1d3665660d22ff9624b7be0551ee1ac91b"))

func TestNFTNativeCalls(t *testing.T) {
	sub := &recordingSubmitter{}
	nft, err := NewCollectionResolver(sub).Collection(chainset.NonFungible, 7)
	require.NoError(t, err)
	ctx := context.Background()

	inc, err := nft.Mint(ctx, evmOwner, nil)
	require.NoError(t, err)
	require.Equal(t, []string{utils.ExtrinsicSuccess}, inc.Events)
	call := sub.last()
	require.Equal(t, utils.UniqueCreateItemMethod, call.method)
	require.Equal(t, []interface{}{types.NewU32(7), evmOwner, utils.NewNFTData()}, call.args)

	_, err = nft.Transfer(ctx, evmOwner, 3, u128(500))
	require.NoError(t, err)
	require.Equal(t, utils.UniqueTransferMethod, sub.last().method)
	require.Equal(t, types.NewU128(*u128(1)), sub.last().args[3], "non-fungible tokens move whole")

	_, err = nft.Burn(ctx, 3, nil)
	require.NoError(t, err)
	require.Equal(t, []interface{}{types.NewU32(7), types.NewU32(3), types.NewU128(*u128(1))}, sub.last().args)
}

func TestFungibleNativeCalls(t *testing.T) {
	sub := &recordingSubmitter{}
	ft, err := NewNativeCollection(sub, chainset.Fungible, 8)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = ft.Mint(ctx, evmOwner, u128(1000))
	require.NoError(t, err)
	require.Equal(t, utils.NewFungibleData(u128(1000)), sub.last().args[2])

	_, err = ft.Transfer(ctx, evmOwner, 99, u128(250))
	require.NoError(t, err)
	require.Equal(t, []interface{}{evmOwner, types.NewU32(8), types.NewU32(0), types.NewU128(*u128(250))}, sub.last().args)
}

func TestReFungibleMintPieces(t *testing.T) {
	sub := &recordingSubmitter{}
	rft, err := NewNativeCollection(sub, chainset.ReFungible, 9)
	require.NoError(t, err)

	_, err = rft.Mint(context.Background(), evmOwner, u128(100))
	require.NoError(t, err)
	require.Equal(t, utils.NewReFungibleData(u128(100)), sub.last().args[2])
}

func TestNativeCallErrorsPassThrough(t *testing.T) {
	sub := &recordingSubmitter{err: errors.New("boom")}
	nft, err := NewNativeCollection(sub, chainset.NonFungible, 1)
	require.NoError(t, err)
	_, err = nft.Burn(context.Background(), 1, nil)
	require.EqualError(t, err, "boom")

	_, err = NewCollectionResolver(sub).Collection(chainset.CollectionKind(9), 1)
	require.Error(t, err)
}
