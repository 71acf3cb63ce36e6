// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package config

import (
	log "github.com/ChainSafe/log15"
	"github.com/urfave/cli/v2"
)

var (
	ConfigFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "JSON or TOML configuration file",
	}

	VerbosityFlag = &cli.StringFlag{
		Name:  "verbosity",
		Usage: "Supports levels crit (silent) to trce (trace)",
		Value: log.LvlInfo.String(),
	}
)

// Metrics flags
var (
	MetricsFlag = &cli.BoolFlag{
		Name:  "metrics",
		Usage: "Enables metric server",
	}

	MetricsPort = &cli.IntFlag{
		Name:  "metricsPort",
		Usage: "Port to serve metrics on",
		Value: 8001,
	}
)

// Harness command flags
var (
	GasFlag = &cli.BoolFlag{
		Name:  "gas",
		Usage: "Also report the fee as gas at the current gas price",
	}
	ToFlag = &cli.StringFlag{
		Name:     "to",
		Usage:    "Receiver, ss58 or 0x address",
		Required: true,
	}
	AmountFlag = &cli.StringFlag{
		Name:  "amount",
		Usage: "Amount in the smallest native unit",
		Value: "1",
	}
	KindFlag = &cli.StringFlag{
		Name:  "kind",
		Usage: "Collection kind: nft, ft or rft",
		Value: "nft",
	}
	NameFlag = &cli.StringFlag{
		Name:     "name",
		Usage:    "Collection name",
		Required: true,
	}
	DescriptionFlag = &cli.StringFlag{
		Name:  "description",
		Usage: "Collection description",
	}
	PrefixFlag = &cli.StringFlag{
		Name:  "prefix",
		Usage: "Token prefix",
	}
	DecimalsFlag = &cli.UintFlag{
		Name:  "decimals",
		Usage: "Decimals of a fungible collection",
		Value: 18,
	}
	CollectionFlagFlag = &cli.StringSliceFlag{
		Name:  "flag",
		Usage: "Collection flag (erc721metadata, foreign), repeatable",
	}
	AdminFlag = &cli.StringSliceFlag{
		Name:  "admin",
		Usage: "Collection admin, ss58 or 0x address, repeatable",
	}
	LimitFlag = &cli.StringSliceFlag{
		Name:  "limit",
		Usage: "Collection limit as name=value, repeatable",
	}
	DepositFlag = &cli.StringFlag{
		Name:  "deposit",
		Usage: "Value attached to the creation call, defaults to the creation price",
	}
	FromBlockFlag = &cli.Uint64Flag{
		Name:  "fromBlock",
		Usage: "First block to scan",
	}
	ToBlockFlag = &cli.Uint64Flag{
		Name:  "toBlock",
		Usage: "Last block to scan, latest when unset",
	}
)
