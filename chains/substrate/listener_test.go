package substrate

import (
	"context"
	"testing"
	"time"

	"github.com/centrifuge/go-substrate-rpc-client/v4/registry/parser"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/stretchr/testify/require"
)

func testRecords() []EventRecord {
	return []EventRecord{
		{Section: "System", Method: "ExtrinsicSuccess", Extrinsic: 0},
		{Section: "Balances", Method: "Withdraw", Extrinsic: 1},
		{Section: "Common", Method: "ItemCreated", Extrinsic: 1},
		{Section: "Common", Method: "Transfer", Extrinsic: 2},
		{Section: "System", Method: "ExtrinsicSuccess", Extrinsic: 1},
		{Section: "Session", Method: "NewSession", Extrinsic: -1},
	}
}

func TestFilterEvents(t *testing.T) {
	records := testRecords()
	require.Equal(t, records, Filter(records))

	common := Filter(records, EventFilter{Section: "common"})
	require.Len(t, common, 2)

	got := Filter(records, EventFilter{Section: "Common", Method: "Transfer"}, EventFilter{Section: "Session", Method: "NewSession"})
	require.Len(t, got, 2)
	require.Equal(t, "Common.Transfer", got[0].Name())
	require.Equal(t, "Session.NewSession", got[1].Name())

	require.Empty(t, Filter(records, EventFilter{Section: "Unique", Method: "CollectionCreated"}))
}

func TestForExtrinsic(t *testing.T) {
	got := ForExtrinsic(testRecords(), 1)
	require.Len(t, got, 3)
	require.Equal(t, "Balances.Withdraw", got[0].Name())
	require.Equal(t, "System.ExtrinsicSuccess", got[2].Name())
}

func TestNewEventRecord(t *testing.T) {
	r := newEventRecord(&parser.Event{
		Name:  "Common.ItemCreated",
		Phase: &types.Phase{IsApplyExtrinsic: true, AsApplyExtrinsic: 3},
	})
	require.Equal(t, "Common", r.Section)
	require.Equal(t, "ItemCreated", r.Method)
	require.Equal(t, 3, r.Extrinsic)

	r = newEventRecord(&parser.Event{Name: "Session.NewSession", Phase: &types.Phase{IsFinalization: true}})
	require.Equal(t, -1, r.Extrinsic)
}

func TestWaitHeads(t *testing.T) {
	heads := make(chan types.Header, 8)
	for _, n := range []types.BlockNumber{10, 10, 11, 11, 12} {
		heads <- types.Header{Number: n}
	}
	require.NoError(t, waitHeads(context.Background(), heads, nil, 2))
	require.Empty(t, heads)

	require.NoError(t, waitHeads(context.Background(), nil, nil, 0))
}

func TestWaitHeadsTimeout(t *testing.T) {
	heads := make(chan types.Header, 2)
	heads <- types.Header{Number: 5}
	heads <- types.Header{Number: 6}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, waitHeads(ctx, heads, nil, 3), context.DeadlineExceeded)
}
