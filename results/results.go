// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package results holds the generic wrappers matching the wire shapes
// the master sends back. Every response, sync or async, arrives as
// {"result": [ ... ]} with exactly one element; callers unwrap it with
// First rather than indexing the slice themselves.
package results

import (
	"github.com/juju/errors"
)

const (
	// ErrEmptyResult is returned when the master's response envelope
	// holds no elements where exactly one was required.
	ErrEmptyResult = errors.ConstError("empty result in response")

	// ErrUnexpectedResults is returned when the envelope holds more
	// than the single element the protocol promises.
	ErrUnexpectedResults = errors.ConstError("unexpected number of results in response")
)

// Result is the envelope wrapping every payload returned by the master.
type Result[T any] struct {
	Result []T `json:"result"`
}

// First unwraps the envelope, enforcing the single-element invariant.
func (r Result[T]) First() (T, error) {
	var zero T
	if len(r.Result) == 0 {
		return zero, errors.Trace(ErrEmptyResult)
	}
	if len(r.Result) > 1 {
		return zero, errors.Annotatef(ErrUnexpectedResults, "got %d", len(r.Result))
	}
	return r.Result[0], nil
}

// Data carries the extra nesting wheel results come back with: the
// function return sits under a "data" object whose "return" key holds
// the actual payload.
type Data[T any] struct {
	Data Return[T] `json:"data"`
}

// Return is the inner wrapper used by wheel responses.
type Return[T any] struct {
	Return  T      `json:"return"`
	Success bool   `json:"success"`
	Tag     string `json:"tag"`
}
