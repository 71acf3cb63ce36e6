package ethlike

import (
	"context"
	"errors"
	"math/big"
	"testing"

	utils "github.com/chainx-org/CrossHarness/shared/ethlike"
	eth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

type fakeFilterer struct {
	query eth.FilterQuery
	logs  []types.Log
	err   error
}

func (f *fakeFilterer) FilterLogs(_ context.Context, q eth.FilterQuery) ([]types.Log, error) {
	f.query = q
	return f.logs, f.err
}

func TestFilterEvents(t *testing.T) {
	f := &fakeFilterer{logs: []types.Log{
		*nftTransferLog(zeroAddr, ownerAddr, 1, 0),
		*unknownLog(1),
		*nftTransferLog(ownerAddr, targetAddr, 1, 2),
	}}

	events, skipped, err := FilterEvents(context.Background(), f, DefaultNormalizer(nil, nil), nftAddr, utils.Transfer, big.NewInt(10), big.NewInt(20))
	require.NoError(t, err)
	require.Equal(t, 1, skipped)
	require.Len(t, events, 2)
	require.Equal(t, targetAddr.Hex(), events[1].ArgMap()["to"])

	require.Equal(t, big.NewInt(10), f.query.FromBlock)
	require.Equal(t, big.NewInt(20), f.query.ToBlock)
	require.Equal(t, nftAddr, f.query.Addresses[0])
	require.Equal(t, utils.Transfer.GetTopic(), f.query.Topics[0][0])
}

func TestFilterEventsError(t *testing.T) {
	f := &fakeFilterer{err: errors.New("boom")}
	_, _, err := FilterEvents(context.Background(), f, DefaultNormalizer(nil, nil), nftAddr, utils.Transfer, nil, nil)
	require.ErrorIs(t, err, f.err)
}
