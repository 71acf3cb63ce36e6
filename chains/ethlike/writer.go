// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package ethlike

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/chainx-org/CrossHarness/chains"
	eth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var ErrNoSigner = errors.New("connection has no signing key")

// Transactor submits transactions and waits for them to be mined.
type Transactor interface {
	From() common.Address
	Transact(ctx context.Context, to common.Address, value *big.Int, input []byte) (*types.Transaction, error)
	WaitMined(ctx context.Context, tx *types.Transaction, confirmations uint64) (*types.Receipt, error)
}

// Caller runs read-only contract calls.
type Caller interface {
	Call(ctx context.Context, to common.Address, input []byte) ([]byte, error)
}

var _ Transactor = &Connection{}
var _ Caller = &Connection{}

// Transact signs and sends a legacy EIP-155 transaction from the connection key.
// Submissions through one Connection are serialized; the nonce is read from the
// node's pending state each time.
func (c *Connection) Transact(ctx context.Context, to common.Address, value *big.Int, input []byte) (*types.Transaction, error) {
	if c.kp == nil {
		return nil, ErrNoSigner
	}
	if value == nil {
		value = new(big.Int)
	}

	c.nonceLock.Lock()
	defer c.nonceLock.Unlock()

	nonce, err := c.conn.PendingNonceAt(ctx, c.from)
	if err != nil {
		return nil, err
	}
	gasPrice, err := c.GasPrice(ctx)
	if err != nil {
		return nil, err
	}
	gas := c.gasLimit
	if gas == 0 {
		gas, err = c.conn.EstimateGas(ctx, eth.CallMsg{From: c.from, To: &to, Value: value, Data: input, GasPrice: gasPrice})
		if err != nil {
			return nil, classify(errRejected(err, common.Hash{}))
		}
	}

	tx := types.NewTransaction(nonce, to, value, gas, gasPrice, input)
	signed, err := types.SignTx(tx, types.NewEIP155Signer(c.chainId), c.kp)
	if err != nil {
		return nil, err
	}
	if err := c.conn.SendTransaction(ctx, signed); err != nil {
		return nil, classify(errRejected(err, signed.Hash()))
	}
	c.log.Debug("Submitted transaction", "tx", signed.Hash().Hex(), "to", to.Hex(), "nonce", nonce, "gas", gas)
	return signed, nil
}

// WaitMined waits for tx's receipt and then for `confirmations` blocks on top
// of it. Running out of ctx is an InclusionTimeoutError; a reverted receipt is a
// ChainError carrying the revert reason when the node reports one.
func (c *Connection) WaitMined(ctx context.Context, tx *types.Transaction, confirmations uint64) (*types.Receipt, error) {
	receipt, err := waitMined(ctx, c.conn, tx.Hash(), confirmations, BlockRetryInterval)
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, classify(&chains.ChainError{
			Kind:    chains.Rejected,
			Message: c.revertReason(ctx, tx, receipt),
			TxHash:  tx.Hash().Hex(),
		})
	}
	return receipt, nil
}

// revertReason replays the call at the receipt's block to recover the reason.
func (c *Connection) revertReason(ctx context.Context, tx *types.Transaction, receipt *types.Receipt) string {
	msg := eth.CallMsg{From: c.from, To: tx.To(), Value: tx.Value(), Data: tx.Data(), Gas: tx.Gas(), GasPrice: tx.GasPrice()}
	_, err := c.conn.CallContract(ctx, msg, receipt.BlockNumber)
	if err != nil {
		return err.Error()
	}
	return "execution reverted"
}

type receiptBackend interface {
	blockNumberer
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

func waitMined(ctx context.Context, b receiptBackend, hash common.Hash, confirmations uint64, interval time.Duration) (*types.Receipt, error) {
	start := time.Now()
	timeout := func(cause error) error {
		return &chains.InclusionTimeoutError{TxHash: hash.Hex(), Waited: time.Since(start), Blocks: confirmations, Cause: cause}
	}

	var receipt *types.Receipt
	for {
		r, err := b.TransactionReceipt(ctx, hash)
		if err == nil && r != nil {
			receipt = r
			break
		}
		if err != nil && !errors.Is(err, eth.NotFound) {
			if ctx.Err() != nil {
				return nil, timeout(ctx.Err())
			}
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, timeout(ctx.Err())
		case <-time.After(interval):
		}
	}

	if confirmations > 0 && receipt.BlockNumber != nil {
		target := receipt.BlockNumber.Uint64() + confirmations
		if err := waitForBlock(ctx, b, target, interval); err != nil {
			if ctx.Err() != nil {
				return nil, timeout(ctx.Err())
			}
			return nil, err
		}
	}
	return receipt, nil
}

// classify refines a generic rejection by the chain's error name.
func classify(err error) error {
	ce, ok := chains.AsChainError(err)
	if !ok {
		return err
	}
	if strings.Contains(ce.Message, "NoPermission") {
		ce.Kind = chains.NoPermission
	}
	return ce
}
