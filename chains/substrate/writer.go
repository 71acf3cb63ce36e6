// Copyright 2021 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package substrate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/chainx-org/CrossHarness/chains"
	"github.com/chainx-org/CrossHarness/chains/chainset"
	utils "github.com/chainx-org/CrossHarness/shared/substrate"
	"golang.org/x/crypto/blake2b"
)

var ErrNoSigner = errors.New("connection has no signing key")

// Submitter sends extrinsics and waits for their inclusion.
type Submitter interface {
	SubmitAndWatch(ctx context.Context, method utils.Method, args ...interface{}) (chainset.Inclusion, error)
}

var _ Submitter = &Connection{}

// SubmitAndWatch signs `method(args...)` with the connection key, submits it and
// waits until it is in a block. Dropped, invalid and usurped extrinsics and
// System.ExtrinsicFailed are chain rejections; running out of ctx is an
// InclusionTimeoutError.
func (c *Connection) SubmitAndWatch(ctx context.Context, method utils.Method, args ...interface{}) (chainset.Inclusion, error) {
	if c.key == nil {
		return chainset.Inclusion{}, ErrNoSigner
	}
	c.nonceLock.Lock()
	defer c.nonceLock.Unlock()

	meta := c.getMetadata()
	call, err := types.NewCall(&meta, string(method), args...)
	if err != nil {
		// Runtime may have been upgraded
		if uerr := c.updateMetatdata(); uerr != nil {
			return chainset.Inclusion{}, err
		}
		meta = c.getMetadata()
		if call, err = types.NewCall(&meta, string(method), args...); err != nil {
			return chainset.Inclusion{}, fmt.Errorf("unable to build call %s: %w", method, err)
		}
	}

	rv, err := c.api.RPC.State.GetRuntimeVersionLatest()
	if err != nil {
		return chainset.Inclusion{}, err
	}
	nonce, err := c.Nonce(ctx, c.key.PublicKey)
	if err != nil {
		return chainset.Inclusion{}, err
	}

	o := types.SignatureOptions{
		BlockHash:          c.genesisHash,
		Era:                types.ExtrinsicEra{IsMortalEra: false},
		GenesisHash:        c.genesisHash,
		Nonce:              types.NewUCompactFromUInt(uint64(nonce)),
		SpecVersion:        rv.SpecVersion,
		Tip:                types.NewUCompactFromUInt(0),
		TransactionVersion: rv.TransactionVersion,
	}
	ext := types.NewExtrinsic(call)
	if err = ext.Sign(*c.key, o); err != nil {
		return chainset.Inclusion{}, err
	}
	txHash, err := extrinsicHash(ext)
	if err != nil {
		return chainset.Inclusion{}, err
	}

	sub, err := c.api.RPC.Author.SubmitAndWatchExtrinsic(ext)
	if err != nil {
		c.metrics.ChainRejected()
		return chainset.Inclusion{}, &chains.ChainError{Kind: classifyMessage(err.Error()), Message: err.Error(), TxHash: txHash.Hex(), Err: err}
	}
	defer sub.Unsubscribe()
	c.log.Debug("Submitted extrinsic", "method", method, "nonce", nonce, "tx", txHash.Hex())

	blockHash, err := watchSubmission(ctx, sub.Chan(), sub.Err(), txHash.Hex())
	if err != nil {
		var timeout *chains.InclusionTimeoutError
		if errors.As(err, &timeout) {
			c.metrics.InclusionTimeout()
		} else if _, ok := chains.AsChainError(err); ok {
			c.metrics.ChainRejected()
		}
		return chainset.Inclusion{}, err
	}
	return c.inclusion(blockHash, txHash)
}

// inclusion collects the events of the extrinsic in its block.
func (c *Connection) inclusion(blockHash, txHash types.Hash) (chainset.Inclusion, error) {
	inc := chainset.Inclusion{BlockHash: blockHash.Hex(), TxHash: txHash.Hex()}
	block, err := c.api.RPC.Chain.GetBlock(blockHash)
	if err != nil {
		return inc, err
	}
	inc.BlockNum = uint64(block.Block.Header.Number)

	index := -1
	for i, ext := range block.Block.Extrinsics {
		h, err := extrinsicHash(ext)
		if err == nil && h == txHash {
			index = i
			break
		}
	}
	if index < 0 {
		return inc, fmt.Errorf("extrinsic %s not found in block %s", txHash.Hex(), blockHash.Hex())
	}

	records, err := c.EventsAt(blockHash)
	if err != nil {
		return inc, err
	}
	for _, r := range ForExtrinsic(records, index) {
		inc.Events = append(inc.Events, r.Name())
		if r.Name() == utils.ExtrinsicFailed {
			return inc, &chains.ChainError{Kind: classifyMessage(r.Detail), Message: r.Detail, TxHash: inc.TxHash}
		}
	}
	c.log.Debug("Extrinsic included", "block", inc.BlockNum, "tx", inc.TxHash, "events", inc.Events)
	return inc, nil
}

// watchSubmission waits for the extrinsic to land in a block.
func watchSubmission(ctx context.Context, statuses <-chan types.ExtrinsicStatus, errs <-chan error, txHash string) (types.Hash, error) {
	start := time.Now()
	for {
		select {
		case status := <-statuses:
			switch {
			case status.IsInBlock:
				return status.AsInBlock, nil
			case status.IsFinalized:
				return status.AsFinalized, nil
			case status.IsDropped:
				return types.Hash{}, &chains.ChainError{Kind: chains.Rejected, Message: "extrinsic dropped from network", TxHash: txHash}
			case status.IsInvalid:
				return types.Hash{}, &chains.ChainError{Kind: chains.Rejected, Message: "extrinsic invalid", TxHash: txHash}
			case status.IsUsurped:
				return types.Hash{}, &chains.ChainError{Kind: chains.Rejected, Message: "extrinsic usurped by " + status.AsUsurped.Hex(), TxHash: txHash}
			}
		case err := <-errs:
			return types.Hash{}, fmt.Errorf("extrinsic subscription error: %w", err)
		case <-ctx.Done():
			return types.Hash{}, &chains.InclusionTimeoutError{TxHash: txHash, Waited: time.Since(start), Cause: ctx.Err()}
		}
	}
}

// extrinsicHash is blake2b-256 of the encoded extrinsic.
func extrinsicHash(ext types.Extrinsic) (types.Hash, error) {
	var buf bytes.Buffer
	if err := scale.NewEncoder(&buf).Encode(ext); err != nil {
		return types.Hash{}, err
	}
	return types.NewHash(blake2bSum(buf.Bytes())), nil
}

func blake2bSum(b []byte) []byte {
	h := blake2b.Sum256(b)
	return h[:]
}

func classifyMessage(msg string) chains.ChainErrorKind {
	if strings.Contains(msg, "NoPermission") {
		return chains.NoPermission
	}
	return chains.Rejected
}

// Transfer sends native currency with Balances.transfer_keep_alive. Ethereum-side
// receivers are paid through their substrate mirror.
func (c *Connection) Transfer(ctx context.Context, to chainset.CrossAccountId, amount *big.Int) (chainset.Inclusion, error) {
	key := to.AsSubstrate()
	dest, err := types.NewMultiAddressFromAccountID(key[:])
	if err != nil {
		return chainset.Inclusion{}, err
	}
	return c.SubmitAndWatch(ctx, utils.BalancesTransferKeepAliveMethod, dest, types.NewUCompact(amount))
}
