// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package chains

// Result holds either a value or a chain rejection. Errors that are not chain
// rejections are kept in Fault.
type Result[T any] struct {
	Value T
	Err   *ChainError
	Fault error
}

func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// ResultOf splits err into a chain rejection or a local fault.
func ResultOf[T any](v T, err error) Result[T] {
	if err == nil {
		return Ok(v)
	}
	if ce, ok := AsChainError(err); ok {
		return Result[T]{Err: ce}
	}
	return Result[T]{Fault: err}
}

func (r Result[T]) IsOk() bool {
	return r.Err == nil && r.Fault == nil
}

// Rejected reports whether the chain refused the operation.
func (r Result[T]) Rejected() bool {
	return r.Err != nil
}

// Unwrap returns the value and a combined error.
func (r Result[T]) Unwrap() (T, error) {
	if r.Err != nil {
		return r.Value, r.Err
	}
	return r.Value, r.Fault
}
