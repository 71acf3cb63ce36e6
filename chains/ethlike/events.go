// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package ethlike

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"

	"github.com/ChainSafe/log15"
	"github.com/chainx-org/CrossHarness/chains/metrics"
	utils "github.com/chainx-org/CrossHarness/shared/ethlike"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// Arg is one decoded event argument in declaration order.
type Arg struct {
	Name  string
	Value string
}

// NormalizedEvent is a decoded receipt log with every argument stringified:
// addresses and bytes as hex, integers as decimal.
type NormalizedEvent struct {
	Name            string
	ContractAddress common.Address
	Args            []Arg
	LogIndex        uint
}

func (e NormalizedEvent) Arg(name string) (string, bool) {
	for _, a := range e.Args {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (e NormalizedEvent) ArgMap() map[string]string {
	m := make(map[string]string, len(e.Args))
	for _, a := range e.Args {
		m[a.Name] = a.Value
	}
	return m
}

func (e NormalizedEvent) String() string {
	return fmt.Sprintf("%s@%s%v", e.Name, e.ContractAddress.Hex(), e.Args)
}

// Normalizer decodes receipt logs against a fixed set of ABIs. Logs it cannot
// resolve are skipped and counted, never reported as errors.
type Normalizer struct {
	abis    []*abi.ABI
	log     log15.Logger
	metrics *metrics.HarnessMetrics
}

func NewNormalizer(log log15.Logger, m *metrics.HarnessMetrics, abis ...*abi.ABI) *Normalizer {
	return &Normalizer{abis: abis, log: log, metrics: m}
}

// DefaultNormalizer knows the helper contracts and every collection kind.
func DefaultNormalizer(log log15.Logger, m *metrics.HarnessMetrics) *Normalizer {
	return NewNormalizer(log, m,
		&utils.CollectionHelpersABI,
		&utils.ContractHelpersABI,
		&utils.NonFungibleABI,
		&utils.FungibleABI,
	)
}

// resolve picks the first ABI event whose id matches topic 0 and whose number
// of indexed inputs matches the log's topics. ERC20 and ERC721 Transfer share
// an id and differ only there.
func (n *Normalizer) resolve(l *types.Log) (*abi.Event, bool) {
	if len(l.Topics) == 0 {
		return nil, false
	}
	for _, a := range n.abis {
		ev, err := a.EventByID(l.Topics[0])
		if err != nil || ev.Anonymous {
			continue
		}
		if indexedCount(ev.Inputs) == len(l.Topics)-1 {
			return ev, true
		}
	}
	return nil, false
}

func indexedCount(args abi.Arguments) int {
	n := 0
	for _, a := range args {
		if a.Indexed {
			n++
		}
	}
	return n
}

func (n *Normalizer) decode(l *types.Log, ev *abi.Event) (NormalizedEvent, error) {
	values := make(map[string]interface{}, len(ev.Inputs))
	if err := ev.Inputs.UnpackIntoMap(values, l.Data); err != nil {
		return NormalizedEvent{}, err
	}
	var indexed abi.Arguments
	for _, arg := range ev.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if err := abi.ParseTopicsIntoMap(values, indexed, l.Topics[1:]); err != nil {
		return NormalizedEvent{}, err
	}
	out := NormalizedEvent{
		Name:            ev.Name,
		ContractAddress: l.Address,
		Args:            make([]Arg, 0, len(ev.Inputs)),
		LogIndex:        l.Index,
	}
	for _, arg := range ev.Inputs {
		out.Args = append(out.Args, Arg{Name: arg.Name, Value: Stringify(values[arg.Name])})
	}
	return out, nil
}

// NormalizeAll decodes every resolvable log in order and returns the number of
// logs that were skipped.
func (n *Normalizer) NormalizeAll(logs []*types.Log) ([]NormalizedEvent, int) {
	events := make([]NormalizedEvent, 0, len(logs))
	skipped := 0
	for _, l := range logs {
		if l == nil {
			skipped++
			continue
		}
		ev, ok := n.resolve(l)
		if !ok {
			skipped++
			n.logSkip(l, "unknown event schema")
			continue
		}
		decoded, err := n.decode(l, ev)
		if err != nil {
			skipped++
			n.logSkip(l, err.Error())
			continue
		}
		events = append(events, decoded)
	}
	n.metrics.ObserveNormalized(len(events), skipped)
	return events, skipped
}

// NormalizeFirstByName is NormalizeAll collapsed to one event per name. The
// earliest log wins.
func (n *Normalizer) NormalizeFirstByName(logs []*types.Log) (map[string]NormalizedEvent, int) {
	all, skipped := n.NormalizeAll(logs)
	return FirstByName(all), skipped
}

// FirstByName keys events by name, keeping the earliest of each.
func FirstByName(events []NormalizedEvent) map[string]NormalizedEvent {
	byName := make(map[string]NormalizedEvent, len(events))
	for _, ev := range events {
		if _, seen := byName[ev.Name]; !seen {
			byName[ev.Name] = ev
		}
	}
	return byName
}

func (n *Normalizer) logSkip(l *types.Log, reason string) {
	if n.log == nil {
		return
	}
	var topic string
	if len(l.Topics) > 0 {
		topic = l.Topics[0].Hex()
	}
	n.log.Debug("Skipping undecodable log", "contract", l.Address.Hex(), "topic", topic, "index", l.Index, "reason", reason)
}

// Stringify renders a decoded ABI value in its canonical comparison form.
func Stringify(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case common.Address:
		return x.Hex()
	case common.Hash:
		return x.Hex()
	case *big.Int:
		if x == nil {
			return "0"
		}
		return x.String()
	case []byte:
		return hexutil.Encode(x)
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		b := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(b), rv)
		return hexutil.Encode(b)
	}
	return fmt.Sprint(v)
}
