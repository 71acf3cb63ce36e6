// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package substrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/centrifuge/go-substrate-rpc-client/v4/registry/parser"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
)

// EventFilter selects events by pallet section and event name. An empty field
// matches anything.
type EventFilter struct {
	Section string
	Method  string
}

func (f EventFilter) matches(r EventRecord) bool {
	return (f.Section == "" || strings.EqualFold(f.Section, r.Section)) &&
		(f.Method == "" || f.Method == r.Method)
}

// EventRecord is one decoded runtime event.
type EventRecord struct {
	Section string
	Method  string
	// Extrinsic is the index of the emitting extrinsic, -1 outside of ApplyExtrinsic.
	Extrinsic int
	Detail    string
}

func (r EventRecord) Name() string {
	return r.Section + "." + r.Method
}

func newEventRecord(ev *parser.Event) EventRecord {
	r := EventRecord{Extrinsic: -1}
	r.Section, r.Method, _ = strings.Cut(ev.Name, ".")
	if ev.Phase != nil && ev.Phase.IsApplyExtrinsic {
		r.Extrinsic = int(ev.Phase.AsApplyExtrinsic)
	}
	fields := make([]string, 0, len(ev.Fields))
	for _, f := range ev.Fields {
		if f == nil {
			continue
		}
		fields = append(fields, fmt.Sprintf("%s=%v", f.Name, f.Value))
	}
	r.Detail = strings.Join(fields, " ")
	return r
}

// EventsAt returns the events of a block matching any of the filters, or every
// event when no filter is given.
func (c *Connection) EventsAt(blockHash types.Hash, filters ...EventFilter) ([]EventRecord, error) {
	events, err := c.events.GetEvents(blockHash)
	if err != nil {
		return nil, fmt.Errorf("unable to read events of block %s: %w", blockHash.Hex(), err)
	}
	records := make([]EventRecord, 0, len(events))
	for _, ev := range events {
		records = append(records, newEventRecord(ev))
	}
	return Filter(records, filters...), nil
}

// Filter keeps the records matching any of the filters.
func Filter(records []EventRecord, filters ...EventFilter) []EventRecord {
	if len(filters) == 0 {
		return records
	}
	var out []EventRecord
	for _, r := range records {
		for _, f := range filters {
			if f.matches(r) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// ForExtrinsic keeps the records emitted by the extrinsic at index.
func ForExtrinsic(records []EventRecord, index int) []EventRecord {
	var out []EventRecord
	for _, r := range records {
		if r.Extrinsic == index {
			out = append(out, r)
		}
	}
	return out
}

// WaitNewBlocks returns after n new heads have been announced.
func (c *Connection) WaitNewBlocks(ctx context.Context, n uint32) error {
	sub, err := c.api.RPC.Chain.SubscribeNewHeads()
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()
	return waitHeads(ctx, sub.Chan(), sub.Err(), n)
}

// waitHeads takes the first announced head as the current one and returns once
// the chain is n blocks past it.
func waitHeads(ctx context.Context, heads <-chan types.Header, errs <-chan error, n uint32) error {
	if n == 0 {
		return nil
	}
	var base *uint64
	for {
		select {
		case h := <-heads:
			num := uint64(h.Number)
			if base == nil {
				base = &num
				continue
			}
			if num >= *base+uint64(n) {
				return nil
			}
		case err := <-errs:
			return fmt.Errorf("new heads subscription error: %w", err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
