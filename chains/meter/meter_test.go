package meter

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/chainx-org/CrossHarness/chains"
	"github.com/chainx-org/CrossHarness/chains/chainset"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var payer = chainset.FromEthereum(common.HexToAddress("0x6be02d1d3665660d22ff9624b7be0551ee1ac91b"))

// unit is one native token with 18 decimals.
var unit = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// fakeChain charges pending fees only when a block is produced.
type fakeChain struct {
	balance  *big.Int
	pending  *big.Int
	blocks   uint32
	gasPrice *big.Int
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		balance:  new(big.Int).Mul(big.NewInt(1000), unit),
		pending:  new(big.Int),
		gasPrice: big.NewInt(1_000_000_000),
	}
}

func (f *fakeChain) Balance(ctx context.Context, who chainset.CrossAccountId) (*big.Int, error) {
	return new(big.Int).Set(f.balance), nil
}

func (f *fakeChain) WaitNewBlocks(ctx context.Context, n uint32) error {
	f.blocks += n
	f.balance.Sub(f.balance, f.pending)
	f.pending.SetInt64(0)
	return nil
}

func (f *fakeChain) GasPrice(ctx context.Context) (*big.Int, error) {
	return f.gasPrice, nil
}

func (f *fakeChain) charge(fee *big.Int) func(context.Context) error {
	return func(context.Context) error {
		f.pending.Add(f.pending, fee)
		return nil
	}
}

func TestMeasureWaitsForSettlement(t *testing.T) {
	chain := newFakeChain()
	fm := NewFeeMeter(chain, chain, chain, 0, nil, nil)

	cost := big.NewInt(21000 * 1_000_000_000)
	fee, err := fm.Measure(context.Background(), payer, chain.charge(cost))
	require.NoError(t, err)
	require.Equal(t, cost, fee)
	require.Equal(t, uint32(1), chain.blocks)
}

func TestMeasureNoop(t *testing.T) {
	chain := newFakeChain()
	fm := NewFeeMeter(chain, chain, chain, 2, nil, nil)

	fee, err := fm.Measure(context.Background(), payer, func(context.Context) error { return nil })
	require.NoError(t, err)
	require.Zero(t, fee.Sign())
	require.Equal(t, uint32(2), chain.blocks)
}

func TestMeasureTransferUnderBound(t *testing.T) {
	chain := newFakeChain()
	fm := NewFeeMeter(chain, chain, chain, 1, nil, nil)

	fee, err := fm.Measure(context.Background(), payer, chain.charge(big.NewInt(125_000_000_000_000)))
	require.NoError(t, err)

	bound := new(big.Int).Div(new(big.Int).Mul(unit, big.NewInt(2)), big.NewInt(10))
	require.Positive(t, fee.Sign())
	require.Negative(t, fee.Cmp(bound))
}

func TestMeasureWithGas(t *testing.T) {
	chain := newFakeChain()
	fm := NewFeeMeter(chain, chain, chain, 1, nil, nil)

	res, err := fm.MeasureWithGas(context.Background(), payer, chain.charge(big.NewInt(21000*1_000_000_000)))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(21000), res.Gas)
}

func TestMeasureWithNullGasPrice(t *testing.T) {
	for _, price := range []*big.Int{nil, big.NewInt(0)} {
		chain := newFakeChain()
		chain.gasPrice = price
		fm := NewFeeMeter(chain, chain, chain, 1, nil, nil)

		ran := false
		_, err := fm.MeasureWithGas(context.Background(), payer, func(context.Context) error {
			ran = true
			return nil
		})
		require.ErrorIs(t, err, chains.ErrNullGasPrice)
		require.False(t, ran, "operation must not run without a gas price")
	}

	chain := newFakeChain()
	_, err := NewFeeMeter(chain, chain, nil, 1, nil, nil).MeasureWithGas(context.Background(), payer, chain.charge(big.NewInt(1)))
	require.ErrorIs(t, err, chains.ErrNullGasPrice)
}

func TestMeasureOperationFailure(t *testing.T) {
	chain := newFakeChain()
	fm := NewFeeMeter(chain, chain, chain, 1, nil, nil)

	boom := errors.New("boom")
	_, err := fm.Measure(context.Background(), payer, func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	require.Zero(t, chain.blocks)
}
