// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package ethlike

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/chainx-org/CrossHarness/config"
	utils "github.com/chainx-org/CrossHarness/shared/ethlike"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Chain specific options
var (
	CollectionHelpersOpt = "collectionHelpers"
	ContractHelpersOpt   = "contractHelpers"
	CreationPriceOpt     = "creationPrice"
	ConfirmationsOpt     = "confirmations"
	InclusionTimeoutOpt  = "inclusionTimeout"
	GasLimitOpt          = "gasLimit"
)

const (
	DefaultInclusionTimeout = 2 * time.Minute
	DefaultConfirmations    = 1
)

// Config is the parsed form of an ethereum chain entry.
type Config struct {
	name              string
	endpoint          string
	key               *ecdsa.PrivateKey
	collectionHelpers common.Address
	contractHelpers   common.Address
	creationPrice     *big.Int
	confirmations     uint64
	inclusionTimeout  time.Duration
	gasLimit          uint64
}

func (c *Config) Name() string                      { return c.name }
func (c *Config) Endpoint() string                  { return c.endpoint }
func (c *Config) Key() *ecdsa.PrivateKey            { return c.key }
func (c *Config) CollectionHelpers() common.Address { return c.collectionHelpers }
func (c *Config) ContractHelpers() common.Address   { return c.contractHelpers }
func (c *Config) GasLimit() uint64                  { return c.gasLimit }

// SetHelpers fills helper addresses that were not configured, e.g. from chain
// metadata.
func (c *Config) SetHelpers(collectionHelpers, contractHelpers common.Address) {
	if c.collectionHelpers == (common.Address{}) {
		c.collectionHelpers = collectionHelpers
	}
	if c.contractHelpers == (common.Address{}) {
		c.contractHelpers = contractHelpers
	}
}

// CreatorConfig returns the constants the collection creator runs with.
func (c *Config) CreatorConfig() CreatorConfig {
	return CreatorConfig{
		CollectionHelpers: c.collectionHelpers,
		CreationPrice:     c.creationPrice,
		Confirmations:     c.confirmations,
		InclusionTimeout:  c.inclusionTimeout,
	}
}

// ParseChainConfig parses the raw entry and its opts.
func ParseChainConfig(raw *config.RawChainConfig) (*Config, error) {
	cfg := &Config{
		name:             raw.Name,
		endpoint:         raw.Endpoint,
		confirmations:    DefaultConfirmations,
		inclusionTimeout: DefaultInclusionTimeout,
	}
	var err error
	if secret := raw.SecretKey(); secret != "" {
		if cfg.key, err = crypto.HexToECDSA(strings.TrimPrefix(secret, "0x")); err != nil {
			return nil, fmt.Errorf("chain %s: invalid private key: %w", raw.Name, err)
		}
	}
	if cfg.key != nil && raw.From != "" {
		from, err := utils.ParseAddress(raw.From)
		if err != nil {
			return nil, err
		}
		if derived := crypto.PubkeyToAddress(cfg.key.PublicKey); derived != from {
			return nil, fmt.Errorf("chain %s: key belongs to %s, not %s", raw.Name, derived.Hex(), from.Hex())
		}
	}
	if cfg.collectionHelpers, err = parseAddressOpt(raw, CollectionHelpersOpt); err != nil {
		return nil, err
	}
	if cfg.contractHelpers, err = parseAddressOpt(raw, ContractHelpersOpt); err != nil {
		return nil, err
	}
	if cfg.creationPrice, err = parseCreationPrice(raw); err != nil {
		return nil, err
	}
	if v, ok := raw.Opts[ConfirmationsOpt]; ok {
		if cfg.confirmations, err = strconv.ParseUint(v, 10, 32); err != nil {
			return nil, fmt.Errorf("unable to parse %s: %w", ConfirmationsOpt, err)
		}
	}
	if v, ok := raw.Opts[InclusionTimeoutOpt]; ok {
		if cfg.inclusionTimeout, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("unable to parse %s: %w", InclusionTimeoutOpt, err)
		}
	}
	if v, ok := raw.Opts[GasLimitOpt]; ok {
		if cfg.gasLimit, err = strconv.ParseUint(v, 10, 64); err != nil {
			return nil, fmt.Errorf("unable to parse %s: %w", GasLimitOpt, err)
		}
	}
	return cfg, nil
}

func parseAddressOpt(raw *config.RawChainConfig, opt string) (common.Address, error) {
	if v, ok := raw.Opts[opt]; ok {
		return utils.ParseAddress(v)
	}
	return common.Address{}, nil
}

func parseCreationPrice(raw *config.RawChainConfig) (*big.Int, error) {
	if v, ok := raw.Opts[CreationPriceOpt]; ok {
		price, ok := new(big.Int).SetString(v, 10)
		if !ok || price.Sign() < 0 {
			return nil, fmt.Errorf("unable to parse %s: %q", CreationPriceOpt, v)
		}
		return price, nil
	}
	return nil, nil
}
