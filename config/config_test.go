// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func createTempConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const jsonConfig = `{
	"chains": [
		{
			"name": "unique",
			"type": "substrate",
			"endpoint": "ws://localhost:9944",
			"from": "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY",
			"key": "//Alice",
			"opts": {"settleBlocks": "2"}
		},
		{
			"name": "unique-evm",
			"type": "ethereum",
			"endpoint": "http://localhost:9933",
			"opts": {"confirmations": "1"}
		}
	]
}`

const tomlConfig = `
[[chains]]
name = "unique"
type = "substrate"
endpoint = "ws://localhost:9944"
key = "//Alice"

[chains.opts]
settleBlocks = "2"
`

func TestLoadJSONConfig(t *testing.T) {
	cfg, err := LoadConfig(createTempConfigFile(t, "config.json", jsonConfig))
	require.NoError(t, err)
	require.Len(t, cfg.Chains, 2)

	sub, ok := cfg.Chain(SubstrateType)
	require.True(t, ok)
	require.Equal(t, "unique", sub.Name)
	require.Equal(t, "2", sub.Opts["settleBlocks"])

	evm, ok := cfg.Chain(EthereumType)
	require.True(t, ok)
	require.Equal(t, "1", evm.Opts["confirmations"])
}

func TestLoadTOMLConfig(t *testing.T) {
	cfg, err := LoadConfig(createTempConfigFile(t, "config.toml", tomlConfig))
	require.NoError(t, err)
	require.Len(t, cfg.Chains, 1)
	require.Equal(t, "//Alice", cfg.Chains[0].Key)
	require.Equal(t, "2", cfg.Chains[0].Opts["settleBlocks"])
}

func TestLoadConfigRejectsUnknownExtension(t *testing.T) {
	_, err := LoadConfig(createTempConfigFile(t, "config.yaml", jsonConfig))
	require.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	cases := []struct {
		name  string
		chain RawChainConfig
	}{
		{"missing type", RawChainConfig{Name: "a", Endpoint: "ws://x"}},
		{"unknown type", RawChainConfig{Name: "a", Type: "cosmos", Endpoint: "ws://x"}},
		{"missing endpoint", RawChainConfig{Name: "a", Type: SubstrateType}},
		{"missing name", RawChainConfig{Type: SubstrateType, Endpoint: "ws://x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{Chains: []RawChainConfig{tc.chain}}
			require.Error(t, cfg.validate())
		})
	}

	dup := &Config{Chains: []RawChainConfig{
		{Name: "a", Type: SubstrateType, Endpoint: "ws://x"},
		{Name: "a", Type: EthereumType, Endpoint: "http://x"},
	}}
	require.Error(t, dup.validate())
}

func TestSecretKeyEnvOverride(t *testing.T) {
	chain := RawChainConfig{Name: "unique", Key: "//Alice"}
	require.Equal(t, "//Alice", chain.SecretKey())

	t.Setenv(KeyEnvPrefix+"UNIQUE", "//Bob")
	require.Equal(t, "//Bob", chain.SecretKey())
}
