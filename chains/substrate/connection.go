// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package substrate

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ChainSafe/log15"
	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"github.com/centrifuge/go-substrate-rpc-client/v4/registry/retriever"
	"github.com/centrifuge/go-substrate-rpc-client/v4/registry/state"
	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/chainx-org/CrossHarness/chains/chainset"
	"github.com/chainx-org/CrossHarness/chains/metrics"
	utils "github.com/chainx-org/CrossHarness/shared/substrate"
	"github.com/ethereum/go-ethereum/common"
)

// Connection is the native RPC side of the chain. It is shared by every caller;
// extrinsic submission is serialized per connection so the signer's nonce is
// never used twice.
type Connection struct {
	api         *gsrpc.SubstrateAPI
	log         log15.Logger
	url         string                 // API endpoint
	name        string                 // Chain name
	meta        types.Metadata         // Latest chain metadata
	metaLock    sync.RWMutex           // Lock metadata for updates, allows concurrent reads
	genesisHash types.Hash             // Chain genesis hash
	key         *signature.KeyringPair // Keyring used for signing, nil when read-only
	nonceLock   sync.Mutex             // Serializes submissions
	events      retriever.EventRetriever
	metrics     *metrics.HarnessMetrics
}

func NewConnection(url string, name string, key *signature.KeyringPair, log log15.Logger, m *metrics.HarnessMetrics) *Connection {
	return &Connection{url: url, name: name, key: key, log: log, metrics: m}
}

func (c *Connection) getMetadata() (meta types.Metadata) {
	c.metaLock.RLock()
	meta = c.meta
	c.metaLock.RUnlock()
	return meta
}

func (c *Connection) updateMetatdata() error {
	c.metaLock.Lock()
	defer c.metaLock.Unlock()
	meta, err := c.api.RPC.State.GetMetadataLatest()
	if err != nil {
		return err
	}
	c.meta = *meta
	return nil
}

func (c *Connection) Connect() error {
	c.log.Info("Connecting to substrate chain...", "url", c.url)
	api, err := gsrpc.NewSubstrateAPI(c.url)
	if err != nil {
		return err
	}
	c.api = api

	// Fetch metadata
	meta, err := api.RPC.State.GetMetadataLatest()
	if err != nil {
		return err
	}
	c.meta = *meta
	c.log.Debug("Fetched substrate metadata")

	// Fetch genesis hash
	genesisHash, err := c.api.RPC.Chain.GetBlockHash(0)
	if err != nil {
		return err
	}
	c.genesisHash = genesisHash
	c.log.Info("Fetched substrate genesis hash", "hash", genesisHash.Hex())

	c.events, err = retriever.NewDefaultEventRetriever(state.NewEventProvider(api.RPC.State), api.RPC.State)
	if err != nil {
		return fmt.Errorf("unable to create event retriever: %w", err)
	}
	return nil
}

func (c *Connection) Name() string {
	return c.name
}

// Signer is the account extrinsics are signed with.
func (c *Connection) Signer() (chainset.CrossAccountId, error) {
	if c.key == nil {
		return chainset.CrossAccountId{}, ErrNoSigner
	}
	return chainset.FromSubstrate(c.key.PublicKey)
}

// queryStorage performs a storage lookup. Arguments may be nil, result must be a pointer.
func (c *Connection) queryStorage(prefix, method string, arg1, arg2 []byte, result interface{}) (bool, error) {
	data := c.getMetadata()
	key, err := types.CreateStorageKey(&data, prefix, method, arg1, arg2)
	if err != nil {
		return false, err
	}
	return c.api.RPC.State.GetStorageLatest(key, result)
}

func (c *Connection) account(pubkey []byte) (types.AccountInfo, error) {
	var acct types.AccountInfo
	_, err := c.queryStorage(utils.SystemPalletName, "Account", pubkey, nil, &acct)
	return acct, err
}

// Balance returns the free native balance. Ethereum-side accounts are looked up
// through their substrate mirror.
func (c *Connection) Balance(ctx context.Context, who chainset.CrossAccountId) (*big.Int, error) {
	key := who.AsSubstrate()
	acct, err := c.account(key[:])
	if err != nil {
		return nil, err
	}
	if acct.Data.Free.Int == nil {
		return new(big.Int), nil
	}
	return new(big.Int).Set(acct.Data.Free.Int), nil
}

// Nonce returns the next account nonce.
func (c *Connection) Nonce(ctx context.Context, pubkey []byte) (uint32, error) {
	acct, err := c.account(pubkey)
	if err != nil {
		return 0, err
	}
	return uint32(acct.Nonce), nil
}

// ReadConstant decodes the runtime constant pallet.name into target.
func (c *Connection) ReadConstant(pallet, name string, target interface{}) error {
	meta := c.getMetadata()
	raw, err := findConstant(&meta, pallet, name)
	if err != nil {
		return err
	}
	return scale.NewDecoder(bytes.NewReader(raw)).Decode(target)
}

// HelperAddresses reads the collection helpers and contract helpers contract
// addresses from the runtime constants.
func (c *Connection) HelperAddresses() (collectionHelpers, contractHelpers common.Address, err error) {
	var addr types.H160
	if err = c.ReadConstant(utils.CommonPalletName, utils.ContractAddressConst, &addr); err != nil {
		return
	}
	collectionHelpers = common.Address(addr)
	if err = c.ReadConstant(utils.ContractHelpersPalletName, utils.ContractAddressConst, &addr); err != nil {
		return
	}
	contractHelpers = common.Address(addr)
	return
}

func findConstant(meta *types.Metadata, pallet, name string) ([]byte, error) {
	if meta.Version != 14 {
		return nil, fmt.Errorf("unsupported metadata version %d", meta.Version)
	}
	for _, p := range meta.AsMetadataV14.Pallets {
		if string(p.Name) != pallet {
			continue
		}
		for _, cst := range p.Constants {
			if string(cst.Name) == name {
				return cst.Value, nil
			}
		}
		return nil, fmt.Errorf("constant %s not found in pallet %s", name, pallet)
	}
	return nil, fmt.Errorf("pallet %s not found", pallet)
}

func (c *Connection) Close() {
	if c.api == nil {
		return
	}
	if closer, ok := c.api.Client.(interface{ Close() }); ok {
		closer.Close()
	}
}
