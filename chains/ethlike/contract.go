// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package ethlike

import (
	"context"
	"fmt"
	"math/big"

	"github.com/chainx-org/CrossHarness/chains/chainset"
	utils "github.com/chainx-org/CrossHarness/shared/ethlike"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Backend is what a contract handle needs from a connection.
type Backend interface {
	Transactor
	Caller
}

// TxResult is a mined transaction with its decoded events.
type TxResult struct {
	Receipt *types.Receipt
	Events  []NormalizedEvent
	ByName  map[string]NormalizedEvent
	Skipped int
}

// Collection is the EVM handle of a collection, addressed through AddressCodec.
type Collection struct {
	kind          chainset.CollectionKind
	id            uint32
	address       common.Address
	backend       Backend
	normalizer    *Normalizer
	confirmations uint64
}

func NewCollection(backend Backend, kind chainset.CollectionKind, id uint32, n *Normalizer, confirmations uint64) (*Collection, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid collection kind %d", kind)
	}
	addr, err := utils.CollectionIdToAddress(id)
	if err != nil {
		return nil, err
	}
	return &Collection{
		kind:          kind,
		id:            id,
		address:       addr,
		backend:       backend,
		normalizer:    n,
		confirmations: confirmations,
	}, nil
}

func (c *Collection) Kind() chainset.CollectionKind { return c.kind }
func (c *Collection) Id() uint32                    { return c.id }
func (c *Collection) Address() common.Address       { return c.address }

func (c *Collection) send(ctx context.Context, method string, args ...interface{}) (*TxResult, error) {
	input, err := c.kind.ABI().Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s.%s: %w", c.kind, method, err)
	}
	tx, err := c.backend.Transact(ctx, c.address, nil, input)
	if err != nil {
		return nil, err
	}
	receipt, err := c.backend.WaitMined(ctx, tx, c.confirmations)
	if err != nil {
		return nil, err
	}
	events, skipped := c.normalizer.NormalizeAll(receipt.Logs)
	return &TxResult{Receipt: receipt, Events: events, ByName: FirstByName(events), Skipped: skipped}, nil
}

func (c *Collection) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	a := c.kind.ABI()
	input, err := a.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	out, err := c.backend.Call(ctx, c.address, input)
	if err != nil {
		return nil, err
	}
	return a.Unpack(method, out)
}

// Mint mints one token to an EVM address. Fungible collections mint `amount`.
func (c *Collection) Mint(ctx context.Context, to common.Address, amount *big.Int) (*TxResult, error) {
	if c.kind == chainset.Fungible {
		return c.send(ctx, "mint", to, nonNil(amount))
	}
	return c.send(ctx, "mint", to)
}

// MintCross mints to a cross account with no token properties.
func (c *Collection) MintCross(ctx context.Context, to chainset.CrossAccountId, amount *big.Int) (*TxResult, error) {
	if c.kind == chainset.Fungible {
		return c.send(ctx, "mintCross", to.CrossAddress(), nonNil(amount))
	}
	return c.send(ctx, "mintCross", to.CrossAddress(), []utils.Property{})
}

// Burn burns a token owned by the sender. Fungible collections burn `amount`
// from the sender's balance.
func (c *Collection) Burn(ctx context.Context, tokenId uint32, amount *big.Int) (*TxResult, error) {
	if c.kind == chainset.Fungible {
		return c.send(ctx, "burnFrom", c.backend.From(), nonNil(amount))
	}
	return c.send(ctx, "burn", new(big.Int).SetUint64(uint64(tokenId)))
}

// Transfer sends a token (or `amount` for fungible collections) to `to`.
func (c *Collection) Transfer(ctx context.Context, to common.Address, tokenId uint32, amount *big.Int) (*TxResult, error) {
	if c.kind == chainset.Fungible {
		return c.send(ctx, "transfer", to, nonNil(amount))
	}
	return c.send(ctx, "transfer", to, new(big.Int).SetUint64(uint64(tokenId)))
}

func (c *Collection) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	out, err := c.call(ctx, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// TokenContractAddress is the per-token ERC20 address of a re-fungible token.
func (c *Collection) TokenContractAddress(tokenId uint32) (common.Address, error) {
	if c.kind != chainset.ReFungible {
		return common.Address{}, fmt.Errorf("%s collection has no token contracts", c.kind)
	}
	return utils.TokenIdToAddress(c.id, tokenId)
}

func nonNil(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
