// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package ethlike

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ChainSafe/log15"
	"github.com/chainx-org/CrossHarness/chains"
	"github.com/chainx-org/CrossHarness/chains/chainset"
	"github.com/chainx-org/CrossHarness/chains/metrics"
	utils "github.com/chainx-org/CrossHarness/shared/ethlike"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// CreationState is how far a collection creation got.
type CreationState int

const (
	Configured CreationState = iota
	Submitted
	Included
	Resolved
)

func (s CreationState) String() string {
	switch s {
	case Submitted:
		return "submitted"
	case Included:
		return "included"
	case Resolved:
		return "resolved"
	default:
		return "configured"
	}
}

// CreatorConfig holds the chain constants the creator needs. They are passed in
// explicitly so one process can talk to several networks.
type CreatorConfig struct {
	CollectionHelpers common.Address
	CreationPrice     *big.Int
	Confirmations     uint64
	InclusionTimeout  time.Duration
}

// CollectionSpec describes the collection to create.
type CollectionSpec struct {
	Kind        chainset.CollectionKind
	Name        string
	Description string
	TokenPrefix string
	Decimals    uint8
	Properties  []utils.Property
	Admins      []chainset.CrossAccountId
	Limits      []utils.LimitValue
	Flags       []chainset.CollectionFlag
	Sponsor     *chainset.CrossAccountId
	// Deposit is the value attached to the call. Nil means the creation price.
	Deposit *big.Int
}

// Data packs the collection parameters into the helper contract argument.
func (s CollectionSpec) Data() utils.CreateCollectionData {
	admins := make([]utils.CrossAddress, 0, len(s.Admins))
	for _, a := range s.Admins {
		admins = append(admins, a.CrossAddress())
	}
	sponsor := utils.CrossAddress{Sub: new(big.Int)}
	if s.Sponsor != nil {
		sponsor = s.Sponsor.CrossAddress()
	}
	props := s.Properties
	if props == nil {
		props = []utils.Property{}
	}
	limits := s.Limits
	if limits == nil {
		limits = []utils.LimitValue{}
	}
	return utils.CreateCollectionData{
		Name:           s.Name,
		Description:    s.Description,
		TokenPrefix:    s.TokenPrefix,
		Mode:           s.Kind.Mode(),
		Decimals:       s.Decimals,
		Properties:     props,
		AdminList:      admins,
		Limits:         limits,
		PendingSponsor: sponsor,
		Flags:          chainset.PackFlags(s.Flags...),
	}
}

// CollectionCreationResult is a resolved collection.
type CollectionCreationResult struct {
	CollectionId      uint32
	CollectionAddress common.Address
	Kind              chainset.CollectionKind
	Collection        *Collection
	Native            chainset.NativeCollection
	Receipt           *types.Receipt
	Events            map[string]NormalizedEvent
	Skipped           int
}

// CollectionCreator drives a creation call through the helper contract until
// the new collection is resolved. A creation is never resubmitted.
type CollectionCreator struct {
	cfg        CreatorConfig
	backend    Backend
	normalizer *Normalizer
	natives    chainset.NativeResolver
	metrics    *metrics.HarnessMetrics
	log        log15.Logger
	priceLock  sync.Mutex
}

// NewCollectionCreator returns a creator. natives may be nil, in which case
// results carry no native handle.
func NewCollectionCreator(cfg CreatorConfig, backend Backend, n *Normalizer, natives chainset.NativeResolver, m *metrics.HarnessMetrics, log log15.Logger) *CollectionCreator {
	if log == nil {
		log = log15.New()
		log.SetHandler(log15.DiscardHandler())
	}
	return &CollectionCreator{cfg: cfg, backend: backend, normalizer: n, natives: natives, metrics: m, log: log}
}

// Create runs Configured -> Submitted -> Included -> Resolved.
func (cc *CollectionCreator) Create(ctx context.Context, spec CollectionSpec) (*CollectionCreationResult, error) {
	if !spec.Kind.Valid() {
		return nil, fmt.Errorf("invalid collection kind %d", spec.Kind)
	}
	price, err := cc.creationPrice(ctx)
	if err != nil {
		return nil, err
	}
	deposit := spec.Deposit
	if deposit == nil {
		deposit = price
	}
	input, err := utils.CollectionHelpersABI.Pack("createCollection", spec.Data())
	if err != nil {
		return nil, fmt.Errorf("pack createCollection: %w", err)
	}
	log := cc.log.New("kind", spec.Kind.String(), "name", spec.Name)

	if cc.cfg.InclusionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cc.cfg.InclusionTimeout)
		defer cancel()
	}

	tx, err := cc.backend.Transact(ctx, cc.cfg.CollectionHelpers, deposit, input)
	if err != nil {
		return nil, cc.rejection(err, deposit, price, Configured, log)
	}
	log.Debug("Collection creation submitted", "state", Submitted, "tx", tx.Hash().Hex(), "deposit", deposit)

	receipt, err := cc.backend.WaitMined(ctx, tx, cc.cfg.Confirmations)
	if err != nil {
		return nil, cc.rejection(err, deposit, price, Submitted, log)
	}
	log.Debug("Collection creation included", "state", Included, "block", receipt.BlockNumber)

	res, err := cc.resolve(spec.Kind, tx.Hash(), receipt)
	if err != nil {
		return nil, err
	}
	log.Info("Collection created", "state", Resolved, "id", res.CollectionId, "address", res.CollectionAddress.Hex())
	cc.metrics.CollectionCreated(spec.Kind.String())
	return res, nil
}

// TryCreate is Create with chain rejections returned as a value.
func (cc *CollectionCreator) TryCreate(ctx context.Context, spec CollectionSpec) chains.Result[*CollectionCreationResult] {
	return chains.ResultOf(cc.Create(ctx, spec))
}

// creationPrice returns the configured price. Without one it reads
// collectionCreationFee from the helper contract once and keeps the answer.
func (cc *CollectionCreator) creationPrice(ctx context.Context) (*big.Int, error) {
	cc.priceLock.Lock()
	defer cc.priceLock.Unlock()
	if cc.cfg.CreationPrice != nil {
		return cc.cfg.CreationPrice, nil
	}
	input, err := utils.CollectionHelpersABI.Pack("collectionCreationFee")
	if err != nil {
		return nil, fmt.Errorf("pack collectionCreationFee: %w", err)
	}
	out, err := cc.backend.Call(ctx, cc.cfg.CollectionHelpers, input)
	if err != nil {
		return nil, fmt.Errorf("read collection creation fee: %w", err)
	}
	vals, err := utils.CollectionHelpersABI.Unpack("collectionCreationFee", out)
	if err != nil {
		return nil, fmt.Errorf("unpack collectionCreationFee: %w", err)
	}
	fee, ok := vals[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected collectionCreationFee result %T", vals[0])
	}
	cc.log.Debug("Read collection creation fee", "helpers", cc.cfg.CollectionHelpers.Hex(), "fee", fee)
	cc.cfg.CreationPrice = fee
	return fee, nil
}

func (cc *CollectionCreator) rejection(err error, deposit, price *big.Int, state CreationState, log log15.Logger) error {
	var timeout *chains.InclusionTimeoutError
	if errors.As(err, &timeout) {
		cc.metrics.InclusionTimeout()
		log.Error("Collection creation not included", "state", state, "tx", timeout.TxHash, "waited", timeout.Waited)
		return err
	}
	ce, ok := chains.AsChainError(err)
	if !ok {
		return err
	}
	cc.metrics.ChainRejected()
	if ce.Kind == chains.Rejected && price != nil && (deposit == nil || deposit.Cmp(price) < 0) {
		ce.Kind = chains.InsufficientDeposit
	}
	log.Warn("Collection creation rejected", "state", state, "kind", ce.Kind, "msg", ce.Message)
	return ce
}

func (cc *CollectionCreator) resolve(kind chainset.CollectionKind, txHash common.Hash, receipt *types.Receipt) (*CollectionCreationResult, error) {
	byName, skipped := cc.normalizer.NormalizeFirstByName(receipt.Logs)
	created, ok := byName[utils.CollectionCreatedEvent]
	if !ok {
		return nil, cc.violation(txHash, byName)
	}
	raw, ok := created.Arg("collectionId")
	if !ok {
		return nil, cc.violation(txHash, byName)
	}
	addr, err := utils.ParseAddress(raw)
	if err != nil {
		return nil, fmt.Errorf("collection address in CollectionCreated: %w", err)
	}
	id := utils.AddressToCollectionId(addr)

	res := &CollectionCreationResult{
		CollectionId:      id,
		CollectionAddress: addr,
		Kind:              kind,
		Receipt:           receipt,
		Events:            byName,
		Skipped:           skipped,
	}
	res.Collection, err = NewCollection(cc.backend, kind, id, cc.normalizer, cc.cfg.Confirmations)
	if err != nil {
		return nil, err
	}
	if cc.natives != nil {
		res.Native, err = cc.natives.Collection(kind, id)
		if err != nil {
			return nil, fmt.Errorf("native handle for collection %d: %w", id, err)
		}
	}
	return res, nil
}

func (cc *CollectionCreator) violation(txHash common.Hash, seen map[string]NormalizedEvent) error {
	names := make([]string, 0, len(seen))
	for name, ev := range seen {
		names = append(names, name)
		cc.log.Error("Event in creation receipt", "tx", txHash.Hex(), "event", ev.String())
	}
	err := &chains.ProtocolViolationError{Expected: utils.CollectionCreatedEvent, TxHash: txHash.Hex(), Seen: names}
	cc.log.Error("Collection creation did not emit CollectionCreated", "err", err)
	return err
}
