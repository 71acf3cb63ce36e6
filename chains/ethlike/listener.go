// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package ethlike

import (
	"context"
	"fmt"
	"math/big"

	utils "github.com/chainx-org/CrossHarness/shared/ethlike"
	eth "github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type logFilterer interface {
	FilterLogs(ctx context.Context, q eth.FilterQuery) ([]types.Log, error)
}

// FilterEvents queries the logs of `contract` matching `sig` in [startBlock, endBlock]
// and normalizes them. The second result is the number of skipped logs.
func FilterEvents(ctx context.Context, f logFilterer, n *Normalizer, contract ethcommon.Address, sig utils.EventSig, startBlock, endBlock *big.Int) ([]NormalizedEvent, int, error) {
	query := buildQuery(contract, sig, startBlock, endBlock)

	logs, err := f.FilterLogs(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("unable to Filter Logs: %w", err)
	}
	ptrs := make([]*types.Log, len(logs))
	for i := range logs {
		ptrs[i] = &logs[i]
	}
	events, skipped := n.NormalizeAll(ptrs)
	return events, skipped, nil
}

// FilterEvents is FilterEvents against this connection.
func (c *Connection) FilterEvents(ctx context.Context, n *Normalizer, contract ethcommon.Address, sig utils.EventSig, startBlock, endBlock *big.Int) ([]NormalizedEvent, int, error) {
	return FilterEvents(ctx, c.conn, n, contract, sig, startBlock, endBlock)
}

// buildQuery constructs a query for the contract by hashing sig to get the event topic
func buildQuery(contract ethcommon.Address, sig utils.EventSig, startBlock *big.Int, endBlock *big.Int) eth.FilterQuery {
	query := eth.FilterQuery{
		FromBlock: startBlock,
		ToBlock:   endBlock,
		Addresses: []ethcommon.Address{contract},
		Topics: [][]ethcommon.Hash{
			{sig.GetTopic()},
		},
	}
	return query
}
