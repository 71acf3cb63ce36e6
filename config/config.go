// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	log "github.com/ChainSafe/log15"
	"github.com/urfave/cli/v2"
)

const DefaultConfigPath = "./config.json"

// KeyEnvPrefix + upper-cased chain name overrides the chain's key.
const KeyEnvPrefix = "HARNESS_KEY_"

const (
	SubstrateType = "substrate"
	EthereumType  = "ethereum"
)

type Config struct {
	Chains []RawChainConfig `json:"chains" toml:"chains"`
}

// RawChainConfig is parsed directly from the config file and should be using to construct the chain connections
type RawChainConfig struct {
	Name     string            `json:"name" toml:"name"`
	Type     string            `json:"type" toml:"type"`
	Endpoint string            `json:"endpoint" toml:"endpoint"` // url for rpc endpoint
	From     string            `json:"from" toml:"from"`         // address of key to use
	Key      string            `json:"key" toml:"key"`           // secret uri (substrate) or hex private key (ethereum)
	Opts     map[string]string `json:"opts" toml:"opts"`
}

func NewConfig() *Config {
	return &Config{
		Chains: []RawChainConfig{},
	}
}

func (c *Config) validate() error {
	seen := make(map[string]bool, len(c.Chains))
	for _, chain := range c.Chains {
		if chain.Type == "" {
			return fmt.Errorf("required field chain.Type empty for chain %s", chain.Name)
		}
		if chain.Type != SubstrateType && chain.Type != EthereumType {
			return fmt.Errorf("unrecognized chain type %q for chain %s", chain.Type, chain.Name)
		}
		if chain.Endpoint == "" {
			return fmt.Errorf("required field chain.Endpoint empty for chain %s", chain.Name)
		}
		if chain.Name == "" {
			return fmt.Errorf("required field chain.Name empty for chain %s", chain.Type)
		}
		if seen[chain.Name] {
			return fmt.Errorf("duplicate chain name %s", chain.Name)
		}
		seen[chain.Name] = true
	}
	return nil
}

// Chain returns the first chain of the given type.
func (c *Config) Chain(typ string) (RawChainConfig, bool) {
	for _, chain := range c.Chains {
		if chain.Type == typ {
			return chain, true
		}
	}
	return RawChainConfig{}, false
}

// SecretKey returns the chain key, preferring the environment override.
func (c RawChainConfig) SecretKey() string {
	if k := os.Getenv(KeyEnvPrefix + strings.ToUpper(c.Name)); k != "" {
		return k
	}
	return c.Key
}

func GetConfig(ctx *cli.Context) (*Config, error) {
	path := DefaultConfigPath
	if file := ctx.String(ConfigFileFlag.Name); file != "" {
		path = file
	}
	return LoadConfig(path)
}

// LoadConfig reads a JSON or TOML file, chosen by extension.
func LoadConfig(path string) (*Config, error) {
	fig := NewConfig()
	if err := loadConfig(path, fig); err != nil {
		log.Warn("err loading json file", "err", err.Error())
		return fig, err
	}
	log.Debug("Loaded config", "path", path)
	if err := fig.validate(); err != nil {
		return nil, err
	}
	return fig, nil
}

func loadConfig(file string, config *Config) error {
	ext := filepath.Ext(file)
	fp, err := filepath.Abs(file)
	if err != nil {
		return err
	}

	log.Debug("Loading configuration", "path", filepath.Clean(fp))

	f, err := os.Open(filepath.Clean(fp))
	if err != nil {
		return err
	}
	defer f.Close()

	switch ext {
	case ".json":
		if err = json.NewDecoder(f).Decode(config); err != nil {
			return err
		}
	case ".toml":
		if _, err = toml.NewDecoder(f).Decode(config); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unrecognized extention: %s", ext)
	}

	return nil
}
