/*
Provides the command-line interface for the cross harness.
*/
package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	log "github.com/ChainSafe/log15"
	"github.com/chainx-org/CrossHarness/chains/metrics"
	"github.com/chainx-org/CrossHarness/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

var app = cli.NewApp()

var cliFlags = []cli.Flag{
	config.ConfigFileFlag,
	config.VerbosityFlag,
	config.MetricsFlag,
	config.MetricsPort,
}

var addressCommand = cli.Command{
	Name:  "address",
	Usage: "convert ids and accounts between their native and EVM forms",
	Subcommands: []*cli.Command{
		{
			Action:    wrapHandler(handleCollectionAddressCmd),
			Name:      "collection",
			Usage:     "EVM address of a collection id",
			ArgsUsage: "<collectionId|0xaddress>",
		},
		{
			Action:    wrapHandler(handleTokenAddressCmd),
			Name:      "token",
			Usage:     "EVM address of a re-fungible token",
			ArgsUsage: "<collectionId> <tokenId> | <0xaddress>",
		},
		{
			Action:    wrapHandler(handleMirrorCmd),
			Name:      "mirror",
			Usage:     "mirror an account to the other side",
			ArgsUsage: "<ss58|0xaddress>",
		},
	},
}

var feeCommand = cli.Command{
	Name:  "fee",
	Usage: "measure operation fees",
	Subcommands: []*cli.Command{
		{
			Action: wrapHandler(handleFeeTransferCmd),
			Name:   "transfer",
			Usage:  "measure the fee of a native transfer",
			Flags:  []cli.Flag{config.ToFlag, config.AmountFlag, config.GasFlag},
		},
	},
}

var collectionCommand = cli.Command{
	Name:  "collection",
	Usage: "manage collections through the EVM",
	Subcommands: []*cli.Command{
		{
			Action: wrapHandler(handleCollectionCreateCmd),
			Name:   "create",
			Usage:  "create a collection through the collection helper contract",
			Flags: []cli.Flag{
				config.KindFlag,
				config.NameFlag,
				config.DescriptionFlag,
				config.PrefixFlag,
				config.DecimalsFlag,
				config.CollectionFlagFlag,
				config.AdminFlag,
				config.LimitFlag,
				config.DepositFlag,
			},
		},
		{
			Action:    wrapHandler(handleCollectionTransfersCmd),
			Name:      "transfers",
			Usage:     "list the Transfer events of a collection",
			ArgsUsage: "<collectionId>",
			Flags:     []cli.Flag{config.FromBlockFlag, config.ToBlockFlag},
		},
	},
}

var (
	Version = "0.0.1"
)

// init initializes CLI
func init() {
	app.Copyright = "Copyright 2021 ChainX Authors"
	app.Name = "harness"
	app.Usage = "Cross-account harness for substrate chains with an EVM"
	app.Version = Version
	app.EnableBashCompletion = true
	app.Commands = []*cli.Command{
		&addressCommand,
		&feeCommand,
		&collectionCommand,
	}
	app.Flags = append(app.Flags, cliFlags...)
	app.Before = before
}

func main() {
	if err := app.Run(os.Args); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func startLogger(ctx *cli.Context) error {
	logger := log.Root()
	handler := logger.GetHandler()
	var lvl log.Lvl

	if lvlToInt, err := strconv.Atoi(ctx.String(config.VerbosityFlag.Name)); err == nil {
		lvl = log.Lvl(lvlToInt)
	} else if lvl, err = log.LvlFromString(ctx.String(config.VerbosityFlag.Name)); err != nil {
		return err
	}
	log.Root().SetHandler(log.LvlFilterHandler(lvl, handler))

	return nil
}

// harnessMetrics is nil unless --metrics is set.
var harnessMetrics *metrics.HarnessMetrics

func before(ctx *cli.Context) error {
	if err := startLogger(ctx); err != nil {
		return err
	}
	if !ctx.Bool(config.MetricsFlag.Name) {
		return nil
	}

	harnessMetrics = metrics.NewHarnessMetrics(prometheus.DefaultRegisterer, app.Name)
	port := ctx.Int(config.MetricsPort.Name)
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		err := http.ListenAndServe(fmt.Sprintf(":%d", port), nil)
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("Metrics server is shutting down", "err", err)
		} else {
			log.Error("Error serving metrics", "err", err)
		}
	}()
	return nil
}

// wrapHandler wraps a command action with the config load.
func wrapHandler(hdl func(*cli.Context, *config.Config) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		cfg, err := config.GetConfig(ctx)
		if err != nil {
			// address conversions work without a config file
			if ctx.String(config.ConfigFileFlag.Name) != "" {
				return err
			}
			cfg = config.NewConfig()
		}
		return hdl(ctx, cfg)
	}
}
