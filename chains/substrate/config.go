// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package substrate

import (
	"fmt"
	"strconv"
	"time"

	"github.com/JFJun/go-substrate-crypto/ss58"
	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/chainx-org/CrossHarness/chains/chainset"
	"github.com/chainx-org/CrossHarness/config"
)

// Chain specific options
var (
	SettleBlocksOpt     = "settleBlocks"
	SS58PrefixOpt       = "ss58Prefix"
	InclusionTimeoutOpt = "inclusionTimeout"
)

const (
	DefaultSettleBlocks     = 1
	DefaultSS58Prefix       = 42
	DefaultInclusionTimeout = 2 * time.Minute
)

// Config is the parsed form of a substrate chain entry.
type Config struct {
	Name             string
	Endpoint         string
	Key              *signature.KeyringPair
	SettleBlocks     uint32
	SS58Prefix       uint16
	InclusionTimeout time.Duration
}

func ParseChainConfig(raw *config.RawChainConfig) (*Config, error) {
	cfg := &Config{
		Name:             raw.Name,
		Endpoint:         raw.Endpoint,
		SS58Prefix:       DefaultSS58Prefix,
		InclusionTimeout: DefaultInclusionTimeout,
	}
	var err error
	if cfg.SettleBlocks, err = parseSettleBlocks(raw); err != nil {
		return nil, err
	}
	if v, ok := raw.Opts[SS58PrefixOpt]; ok {
		p, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("unable to parse %s: %w", SS58PrefixOpt, err)
		}
		if p > chainset.MaxSS58Prefix {
			return nil, fmt.Errorf("%s %d: only single byte prefixes are supported", SS58PrefixOpt, p)
		}
		cfg.SS58Prefix = uint16(p)
	}
	if v, ok := raw.Opts[InclusionTimeoutOpt]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("unable to parse %s: %w", InclusionTimeoutOpt, err)
		}
		cfg.InclusionTimeout = d
	}

	if secret := raw.SecretKey(); secret != "" {
		kp, err := signature.KeyringPairFromSecret(secret, cfg.SS58Prefix)
		if err != nil {
			return nil, fmt.Errorf("chain %s: invalid secret: %w", raw.Name, err)
		}
		if raw.From != "" {
			pub, err := ss58.DecodeToPub(raw.From)
			if err != nil {
				return nil, fmt.Errorf("chain %s: invalid from address: %w", raw.Name, err)
			}
			if string(pub) != string(kp.PublicKey) {
				return nil, fmt.Errorf("chain %s: key belongs to %s, not %s", raw.Name, kp.Address, raw.From)
			}
		}
		cfg.Key = &kp
	}
	return cfg, nil
}

// parseSettleBlocks never returns less than one block.
func parseSettleBlocks(cfg *config.RawChainConfig) (uint32, error) {
	if blk, ok := cfg.Opts[SettleBlocksOpt]; ok {
		res, err := strconv.ParseUint(blk, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("unable to parse %s: %w", SettleBlocksOpt, err)
		}
		if res > 0 {
			return uint32(res), nil
		}
	}
	return DefaultSettleBlocks, nil
}
