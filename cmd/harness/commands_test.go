package main

import (
	"flag"
	"math/big"
	"testing"

	"github.com/chainx-org/CrossHarness/chains/chainset"
	"github.com/chainx-org/CrossHarness/config"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func createContext(t *testing.T, args ...string) *cli.Context {
	set := flag.NewFlagSet("create", flag.ContinueOnError)
	for _, f := range collectionCommand.Subcommands[0].Flags {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(app, set, nil)
}

func TestCollectionSpecFromFlags(t *testing.T) {
	ctx := createContext(t,
		"--kind", "ft",
		"--name", "Gold",
		"--prefix", "GLD",
		"--decimals", "6",
		"--flag", "erc721metadata",
		"--admin", "0x00000000000000000000000000000000000000aa",
		"--limit", "accountTokenOwnershipLimit=5",
		"--deposit", "3000",
	)

	spec, err := collectionSpec(ctx)
	require.NoError(t, err)
	require.Equal(t, chainset.Fungible, spec.Kind)
	require.Equal(t, "Gold", spec.Name)
	require.Equal(t, "GLD", spec.TokenPrefix)
	require.Equal(t, uint8(6), spec.Decimals)
	require.Len(t, spec.Flags, 1)
	require.Len(t, spec.Admins, 1)
	require.True(t, spec.Admins[0].IsEthereum())
	require.Len(t, spec.Limits, 1)
	require.Equal(t, big.NewInt(5), spec.Limits[0].Value)
	require.Equal(t, big.NewInt(3000), spec.Deposit)
}

func TestCollectionSpecRejectsBadInput(t *testing.T) {
	cases := [][]string{
		{"--kind", "erc1155", "--name", "x"},
		{"--kind", "nft", "--name", "x", "--limit", "noSuchLimit=1"},
		{"--kind", "nft", "--name", "x", "--limit", "accountTokenOwnershipLimit"},
		{"--kind", "nft", "--name", "x", "--deposit", "lots"},
		{"--kind", "ft", "--name", "x", "--decimals", "300"},
	}
	for _, args := range cases {
		_, err := collectionSpec(createContext(t, args...))
		require.Error(t, err, args)
	}
}

func TestWrapHandlerWithoutConfig(t *testing.T) {
	set := flag.NewFlagSet("root", flag.ContinueOnError)
	require.NoError(t, config.ConfigFileFlag.Apply(set))
	ctx := cli.NewContext(app, set, nil)

	var got *config.Config
	err := wrapHandler(func(_ *cli.Context, cfg *config.Config) error {
		got = cfg
		return nil
	})(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got.Chains)
}
