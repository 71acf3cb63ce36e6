// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package chains

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNullGasPrice is returned when the node reports no usable gas price.
	ErrNullGasPrice = errors.New("node reported a null gas price")
	// ErrEventNotFound is wrapped by ProtocolViolationError.
	ErrEventNotFound = errors.New("expected event not found")
)

// FormatError reports a malformed address, key or hex string.
type FormatError struct {
	What  string
	Input string
	Msg   string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.What, e.Input, e.Msg)
}

func NewFormatError(what, input, format string, args ...interface{}) *FormatError {
	return &FormatError{What: what, Input: input, Msg: fmt.Sprintf(format, args...)}
}

// RangeError reports an id outside its encodable range.
type RangeError struct {
	What  string
	Value int64
	Max   int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %d out of range [0, %d]", e.What, e.Value, e.Max)
}

type ChainErrorKind int

const (
	// Rejected is a generic rejection by the remote chain.
	Rejected ChainErrorKind = iota
	InsufficientDeposit
	NoPermission
)

func (k ChainErrorKind) String() string {
	switch k {
	case InsufficientDeposit:
		return "InsufficientDeposit"
	case NoPermission:
		return "NoPermission"
	default:
		return "Rejected"
	}
}

// ChainError carries a rejection coming from the chain's own rules. Message is
// passed through verbatim.
type ChainError struct {
	Kind    ChainErrorKind
	Message string
	TxHash  string
	Err     error
}

func (e *ChainError) Error() string {
	msg := fmt.Sprintf("chain rejected transaction (%s): %s", e.Kind, e.Message)
	if e.TxHash != "" {
		msg += " tx=" + e.TxHash
	}
	return msg
}

func (e *ChainError) Unwrap() error {
	return e.Err
}

// InclusionTimeoutError means the local wait budget ran out. The transaction may
// still be included later.
type InclusionTimeoutError struct {
	TxHash string
	Waited time.Duration
	Blocks uint64
	Cause  error
}

func (e *InclusionTimeoutError) Error() string {
	return fmt.Sprintf("transaction %s not included after %s (%d confirmations requested)", e.TxHash, e.Waited, e.Blocks)
}

func (e *InclusionTimeoutError) Unwrap() error {
	return e.Cause
}

// ProtocolViolationError is returned when a transaction that succeeded did not
// emit the event the harness relies on.
type ProtocolViolationError struct {
	Expected string
	TxHash   string
	Seen     []string
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("event %s missing from tx %s (saw %v)", e.Expected, e.TxHash, e.Seen)
}

func (e *ProtocolViolationError) Unwrap() error {
	return ErrEventNotFound
}

// AsChainError returns the ChainError wrapped in err, if any.
func AsChainError(err error) (*ChainError, bool) {
	var ce *ChainError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
