// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package ethlike

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ChainSafe/log15"
	"github.com/chainx-org/CrossHarness/chains"
	"github.com/chainx-org/CrossHarness/chains/chainset"
	eth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

var BlockRetryInterval = time.Second * 5

// Connection is the EVM JSON-RPC side of the chain. One Connection is shared by
// every caller; transaction submission is serialized per connection so the
// account nonce is never used twice.
type Connection struct {
	endpoint  string
	kp        *ecdsa.PrivateKey
	from      common.Address
	gasLimit  uint64
	conn      *ethclient.Client
	chainId   *big.Int
	nonceLock sync.Mutex
	log       log15.Logger
}

// NewConnection returns an unconnected Connection. kp may be nil for a read-only connection.
func NewConnection(endpoint string, kp *ecdsa.PrivateKey, gasLimit uint64, log log15.Logger) *Connection {
	c := &Connection{
		endpoint: endpoint,
		kp:       kp,
		gasLimit: gasLimit,
		log:      log,
	}
	if kp != nil {
		c.from = crypto.PubkeyToAddress(kp.PublicKey)
	}
	return c
}

// Connect dials the endpoint and reads the chain id.
func (c *Connection) Connect() error {
	c.log.Info("Connecting to ethereum chain...", "url", c.endpoint)
	rpcClient, err := rpc.DialContext(context.Background(), c.endpoint)
	if err != nil {
		return err
	}
	c.conn = ethclient.NewClient(rpcClient)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	c.chainId, err = c.conn.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("unable to read chain id: %w", err)
	}
	c.log.Debug("Connected to ethereum chain", "chainId", c.chainId, "from", c.from.Hex())
	return nil
}

func (c *Connection) From() common.Address {
	return c.from
}

// GasPrice fails with ErrNullGasPrice when the node reports no gas price.
func (c *Connection) GasPrice(ctx context.Context) (*big.Int, error) {
	price, err := c.conn.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	if price == nil || price.Sign() == 0 {
		return nil, chains.ErrNullGasPrice
	}
	return price, nil
}

// ErrSubstrateSided is returned by Balance for a Substrate-sided account. Its
// truncated EVM address holds the balance of a different native account.
var ErrSubstrateSided = errors.New("balance of a substrate-sided account is not visible from the EVM")

// Balance returns the native balance of an Ethereum-sided account.
func (c *Connection) Balance(ctx context.Context, who chainset.CrossAccountId) (*big.Int, error) {
	if !who.IsEthereum() {
		return nil, ErrSubstrateSided
	}
	return c.conn.BalanceAt(ctx, who.Ethereum, nil)
}

// Call executes a read-only contract call against the latest state.
func (c *Connection) Call(ctx context.Context, to common.Address, input []byte) ([]byte, error) {
	return c.conn.CallContract(ctx, eth.CallMsg{From: c.from, To: &to, Data: input}, nil)
}

// WaitNewBlocks returns once n blocks past the current head have been observed.
func (c *Connection) WaitNewBlocks(ctx context.Context, n uint32) error {
	start, err := c.conn.BlockNumber(ctx)
	if err != nil {
		return err
	}
	return waitForBlock(ctx, c.conn, start+uint64(n), BlockRetryInterval)
}

func (c *Connection) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

type blockNumberer interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

func waitForBlock(ctx context.Context, b blockNumberer, target uint64, interval time.Duration) error {
	for {
		current, err := b.BlockNumber(ctx)
		if err != nil {
			return err
		}
		if current >= target {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// errRejected turns a node-side refusal into a ChainError, keeping its message.
func errRejected(err error, tx common.Hash) error {
	if err == nil {
		return nil
	}
	var hash string
	if tx != (common.Hash{}) {
		hash = tx.Hex()
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return &chains.ChainError{Kind: chains.Rejected, Message: err.Error(), TxHash: hash, Err: err}
}
