package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	log "github.com/ChainSafe/log15"
	"github.com/chainx-org/CrossHarness/chains/chainset"
	"github.com/chainx-org/CrossHarness/chains/ethlike"
	"github.com/chainx-org/CrossHarness/chains/meter"
	"github.com/chainx-org/CrossHarness/chains/substrate"
	"github.com/chainx-org/CrossHarness/config"
	utils "github.com/chainx-org/CrossHarness/shared/ethlike"
	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func handleCollectionAddressCmd(ctx *cli.Context, _ *config.Config) error {
	arg := ctx.Args().First()
	if arg == "" {
		return errors.New("collection id or address required")
	}
	if strings.HasPrefix(arg, "0x") {
		id, err := utils.AddressToCollectionIdString(arg)
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return err
	}
	addr, err := utils.CollectionIdToAddressInt(id)
	if err != nil {
		return err
	}
	fmt.Println(addr.Hex())
	return nil
}

func handleTokenAddressCmd(ctx *cli.Context, _ *config.Config) error {
	args := ctx.Args()
	if args.Len() == 1 {
		addr, err := utils.ParseAddress(args.First())
		if err != nil {
			return err
		}
		tok := utils.AddressToTokenId(addr)
		fmt.Println(tok.CollectionId, tok.TokenId)
		return nil
	}
	if args.Len() != 2 {
		return errors.New("expected <collectionId> <tokenId> or <0xaddress>")
	}
	collection, err := strconv.ParseUint(args.Get(0), 10, 32)
	if err != nil {
		return err
	}
	token, err := strconv.ParseUint(args.Get(1), 10, 32)
	if err != nil {
		return err
	}
	addr, err := utils.TokenIdToAddress(uint32(collection), uint32(token))
	if err != nil {
		return err
	}
	fmt.Println(addr.Hex())
	return nil
}

func handleMirrorCmd(ctx *cli.Context, cfg *config.Config) error {
	if raw, ok := cfg.Chain(config.SubstrateType); ok {
		subCfg, err := substrate.ParseChainConfig(&raw)
		if err != nil {
			return err
		}
		if err := chainset.SetDisplayPrefix(subCfg.SS58Prefix); err != nil {
			return err
		}
	}
	id, err := chainset.ParseCrossAccountId(ctx.Args().First())
	if err != nil {
		return err
	}
	if !id.IsEthereum() {
		fmt.Println(id.AsEthereum().Hex())
		return nil
	}
	key := id.AsSubstrate()
	mirror, err := chainset.FromSubstrate(key[:])
	if err != nil {
		return err
	}
	fmt.Println(mirror.String())
	return nil
}

// chainSet holds the connections a command needs.
type chainSet struct {
	subCfg *substrate.Config
	sub    *substrate.Connection
	ethCfg *ethlike.Config
	eth    *ethlike.Connection
}

func (cs *chainSet) Close() {
	if cs.sub != nil {
		cs.sub.Close()
	}
	if cs.eth != nil {
		cs.eth.Close()
	}
}

// connect dials the requested chains concurrently. Each requested side needs an
// entry of its type in the config.
func connect(cfg *config.Config, withSub, withEth bool) (*chainSet, error) {
	cs := &chainSet{}
	var err error
	if withSub {
		raw, ok := cfg.Chain(config.SubstrateType)
		if !ok {
			return nil, errors.New("no substrate chain configured")
		}
		if cs.subCfg, err = substrate.ParseChainConfig(&raw); err != nil {
			return nil, err
		}
	}
	if withEth {
		raw, ok := cfg.Chain(config.EthereumType)
		if !ok {
			return nil, errors.New("no ethereum chain configured")
		}
		if cs.ethCfg, err = ethlike.ParseChainConfig(&raw); err != nil {
			return nil, err
		}
	}

	var g errgroup.Group
	if cs.subCfg != nil {
		g.Go(func() error {
			conn, err := substrate.InitializeChain(cs.subCfg, log.Root().New("chain", cs.subCfg.Name), harnessMetrics)
			cs.sub = conn
			return err
		})
	}
	if cs.ethCfg != nil {
		g.Go(func() error {
			conn := ethlike.NewConnection(cs.ethCfg.Endpoint(), cs.ethCfg.Key(), cs.ethCfg.GasLimit(), log.Root().New("chain", cs.ethCfg.Name()))
			cs.eth = conn
			return conn.Connect()
		})
	}
	if err := g.Wait(); err != nil {
		cs.Close()
		return nil, err
	}
	return cs, nil
}

func handleFeeTransferCmd(ctx *cli.Context, cfg *config.Config) error {
	to, err := chainset.ParseCrossAccountId(ctx.String(config.ToFlag.Name))
	if err != nil {
		return err
	}
	amount, ok := new(big.Int).SetString(ctx.String(config.AmountFlag.Name), 10)
	if !ok || amount.Sign() < 0 {
		return fmt.Errorf("invalid amount %q", ctx.String(config.AmountFlag.Name))
	}

	withGas := ctx.Bool(config.GasFlag.Name)
	cs, err := connect(cfg, true, withGas)
	if err != nil {
		return err
	}
	defer cs.Close()

	payer, err := cs.sub.Signer()
	if err != nil {
		return err
	}
	var gas meter.GasPricer
	if cs.eth != nil {
		gas = cs.eth
	}
	fm := meter.NewFeeMeter(cs.sub, cs.sub, gas, cs.subCfg.SettleBlocks, harnessMetrics, log.Root().New("component", "meter"))

	c, cancel := context.WithTimeout(ctx.Context, cs.subCfg.InclusionTimeout)
	defer cancel()
	op := func(c context.Context) error {
		_, err := cs.sub.Transfer(c, to, amount)
		return err
	}

	if withGas {
		res, err := fm.MeasureWithGas(c, payer, op)
		if err != nil {
			return err
		}
		log.Info("Measured transfer fee", "payer", payer.String(), "fee", res.Fee, "gas", res.Gas)
		fmt.Println(res.Fee, res.Gas)
		return nil
	}
	fee, err := fm.Measure(c, payer, op)
	if err != nil {
		return err
	}
	log.Info("Measured transfer fee", "payer", payer.String(), "fee", fee)
	fmt.Println(fee)
	return nil
}

func handleCollectionCreateCmd(ctx *cli.Context, cfg *config.Config) error {
	spec, err := collectionSpec(ctx)
	if err != nil {
		return err
	}
	cs, err := connect(cfg, true, true)
	if err != nil {
		return err
	}
	defer cs.Close()

	if cs.ethCfg.CollectionHelpers() == (common.Address{}) {
		helpers, contractHelpers, err := cs.sub.HelperAddresses()
		if err != nil {
			return fmt.Errorf("collection helpers not configured and not readable from chain: %w", err)
		}
		cs.ethCfg.SetHelpers(helpers, contractHelpers)
	}

	logger := log.Root().New("component", "creator")
	creator := ethlike.NewCollectionCreator(
		cs.ethCfg.CreatorConfig(),
		cs.eth,
		ethlike.DefaultNormalizer(logger, harnessMetrics),
		substrate.NewCollectionResolver(cs.sub),
		harnessMetrics,
		logger,
	)
	res := creator.TryCreate(ctx.Context, spec)
	if res.Rejected() {
		return fmt.Errorf("collection creation rejected: %w", res.Err)
	}
	created, err := res.Unwrap()
	if err != nil {
		return err
	}
	fmt.Println(created.CollectionId, created.CollectionAddress.Hex())
	return nil
}

func handleCollectionTransfersCmd(ctx *cli.Context, cfg *config.Config) error {
	id, err := strconv.ParseUint(ctx.Args().First(), 10, 32)
	if err != nil {
		return fmt.Errorf("invalid collection id %q: %w", ctx.Args().First(), err)
	}
	addr, err := utils.CollectionIdToAddress(uint32(id))
	if err != nil {
		return err
	}
	cs, err := connect(cfg, false, true)
	if err != nil {
		return err
	}
	defer cs.Close()

	from := new(big.Int).SetUint64(ctx.Uint64(config.FromBlockFlag.Name))
	var to *big.Int
	if ctx.IsSet(config.ToBlockFlag.Name) {
		to = new(big.Int).SetUint64(ctx.Uint64(config.ToBlockFlag.Name))
	}
	logger := log.Root().New("component", "listener")
	events, skipped, err := cs.eth.FilterEvents(ctx.Context, ethlike.DefaultNormalizer(logger, harnessMetrics), addr, utils.Transfer, from, to)
	if err != nil {
		return err
	}
	for _, ev := range events {
		fmt.Println(ev.String())
	}
	if skipped > 0 {
		logger.Warn("Skipped undecodable logs", "collection", id, "count", skipped)
	}
	return nil
}

func collectionSpec(ctx *cli.Context) (ethlike.CollectionSpec, error) {
	kind, err := chainset.ParseCollectionKind(ctx.String(config.KindFlag.Name))
	if err != nil {
		return ethlike.CollectionSpec{}, err
	}
	flags, err := chainset.ParseCollectionFlags(ctx.StringSlice(config.CollectionFlagFlag.Name))
	if err != nil {
		return ethlike.CollectionSpec{}, err
	}
	spec := ethlike.CollectionSpec{
		Kind:        kind,
		Name:        ctx.String(config.NameFlag.Name),
		Description: ctx.String(config.DescriptionFlag.Name),
		TokenPrefix: ctx.String(config.PrefixFlag.Name),
		Flags:       flags,
	}
	if kind == chainset.Fungible {
		decimals := ctx.Uint(config.DecimalsFlag.Name)
		if decimals > 255 {
			return spec, fmt.Errorf("decimals %d out of range", decimals)
		}
		spec.Decimals = uint8(decimals)
	}
	for _, a := range ctx.StringSlice(config.AdminFlag.Name) {
		admin, err := chainset.ParseCrossAccountId(a)
		if err != nil {
			return spec, err
		}
		spec.Admins = append(spec.Admins, admin)
	}
	for _, l := range ctx.StringSlice(config.LimitFlag.Name) {
		name, value, ok := strings.Cut(l, "=")
		field, known := utils.LimitField(name)
		if !ok || !known {
			return spec, fmt.Errorf("invalid limit %q", l)
		}
		v, ok := new(big.Int).SetString(value, 10)
		if !ok {
			return spec, fmt.Errorf("invalid limit value %q", l)
		}
		spec.Limits = append(spec.Limits, utils.LimitValue{Field: field, Value: v})
	}
	if d := ctx.String(config.DepositFlag.Name); d != "" {
		deposit, ok := new(big.Int).SetString(d, 10)
		if !ok {
			return spec, fmt.Errorf("invalid deposit %q", d)
		}
		spec.Deposit = deposit
	}
	return spec, nil
}
