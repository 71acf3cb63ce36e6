// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package meter

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ChainSafe/log15"
	"github.com/chainx-org/CrossHarness/chains"
	"github.com/chainx-org/CrossHarness/chains/chainset"
	"github.com/chainx-org/CrossHarness/chains/metrics"
)

// BalanceReader reads the native balance of an account.
type BalanceReader interface {
	Balance(ctx context.Context, who chainset.CrossAccountId) (*big.Int, error)
}

// BlockWaiter returns once n new blocks have been observed.
type BlockWaiter interface {
	WaitNewBlocks(ctx context.Context, n uint32) error
}

type GasPricer interface {
	GasPrice(ctx context.Context) (*big.Int, error)
}

// Fee is a measured cost with its approximate gas equivalent.
type Fee struct {
	Fee *big.Int
	Gas *big.Int
}

// FeeMeter measures what an operation costs its payer. A measurement assumes
// nothing else moves the payer's balance while it runs; this is not enforced.
type FeeMeter struct {
	balances     BalanceReader
	blocks       BlockWaiter
	gas          GasPricer
	settleBlocks uint32
	metrics      *metrics.HarnessMetrics
	log          log15.Logger
}

// NewFeeMeter waits settleBlocks (at least one) after each operation before
// sampling the balance again. gas may be nil when MeasureWithGas is not used.
func NewFeeMeter(balances BalanceReader, blocks BlockWaiter, gas GasPricer, settleBlocks uint32, m *metrics.HarnessMetrics, log log15.Logger) *FeeMeter {
	if settleBlocks == 0 {
		settleBlocks = 1
	}
	if log == nil {
		log = log15.New()
		log.SetHandler(log15.DiscardHandler())
	}
	return &FeeMeter{balances: balances, blocks: blocks, gas: gas, settleBlocks: settleBlocks, metrics: m, log: log}
}

// Measure returns the payer's balance before op minus the balance after op and
// the settlement wait. The result is normally non-negative.
func (fm *FeeMeter) Measure(ctx context.Context, payer chainset.CrossAccountId, op func(ctx context.Context) error) (*big.Int, error) {
	before, err := fm.balances.Balance(ctx, payer)
	if err != nil {
		return nil, fmt.Errorf("balance before: %w", err)
	}
	if err := op(ctx); err != nil {
		return nil, err
	}
	if err := fm.blocks.WaitNewBlocks(ctx, fm.settleBlocks); err != nil {
		return nil, fmt.Errorf("waiting for settlement: %w", err)
	}
	after, err := fm.balances.Balance(ctx, payer)
	if err != nil {
		return nil, fmt.Errorf("balance after: %w", err)
	}
	fee := new(big.Int).Sub(before, after)
	fm.log.Debug("Measured fee", "payer", payer.String(), "before", before, "after", after, "fee", fee)
	fm.metrics.ObserveFee(fee)
	return fee, nil
}

// MeasureWithGas is Measure plus the fee divided by the current gas price. The
// gas price is read first so a null price fails before op runs.
func (fm *FeeMeter) MeasureWithGas(ctx context.Context, payer chainset.CrossAccountId, op func(ctx context.Context) error) (Fee, error) {
	if fm.gas == nil {
		return Fee{}, chains.ErrNullGasPrice
	}
	price, err := fm.gas.GasPrice(ctx)
	if err != nil {
		return Fee{}, err
	}
	if price == nil || price.Sign() <= 0 {
		return Fee{}, chains.ErrNullGasPrice
	}
	fee, err := fm.Measure(ctx, payer, op)
	if err != nil {
		return Fee{}, err
	}
	gas := new(big.Int).Quo(fee, price)
	fm.metrics.ObserveGas(gas)
	return Fee{Fee: fee, Gas: gas}, nil
}
