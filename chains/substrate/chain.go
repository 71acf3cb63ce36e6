// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

/*
The substrate package contains the logic for interacting with the native side of the chain.

There are 3 major components: the connection, the writer, and the listener.

Connection

The Connection handles connecting to the substrate client and state queries: balances, nonces
and runtime constants. One connection is shared by every caller.

Writer

The writer signs extrinsics with the connection key, submits them and waits until they are
in a block. It also provides the native collection handles used after a collection has been
created through the EVM.

Listener

The listener waits for new heads and reads block events filtered by (section, name).

*/
package substrate

import (
	"github.com/ChainSafe/log15"
	"github.com/chainx-org/CrossHarness/chains/chainset"
	"github.com/chainx-org/CrossHarness/chains/metrics"
)

// InitializeChain connects to the endpoint of a parsed chain entry. Accounts are
// displayed with the chain's ss58 prefix from then on.
func InitializeChain(cfg *Config, logger log15.Logger, m *metrics.HarnessMetrics) (*Connection, error) {
	if err := chainset.SetDisplayPrefix(cfg.SS58Prefix); err != nil {
		return nil, err
	}
	conn := NewConnection(cfg.Endpoint, cfg.Name, cfg.Key, logger, m)
	if err := conn.Connect(); err != nil {
		return nil, err
	}
	if cfg.Key != nil {
		logger.Info("Loaded substrate signer", "address", cfg.Key.Address)
	}
	return conn, nil
}
