// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package key provides typed calls into the master's key wheel module,
// which manages the minion key store.
package key

import (
	"github.com/salt-netapi/saltapi/calls"
)

// Names holds the key store listing returned by key.list_all, grouped
// by acceptance state.
type Names struct {
	Local           []string `json:"local"`
	MinionsRejected []string `json:"minions_rejected"`
	MinionsDenied   []string `json:"minions_denied"`
	MinionsPre      []string `json:"minions_pre"`
	Minions         []string `json:"minions"`
}

// ListAll builds the call for key.list_all, listing every key known to
// the master.
func ListAll() calls.WheelCall[Names] {
	return calls.NewWheelCall[Names]("key.list_all", nil)
}

// Accept builds the call for key.accept, accepting the pending key that
// matches the given expression.
func Accept(match string) calls.WheelCall[Names] {
	return calls.NewWheelCall[Names]("key.accept", map[string]interface{}{
		"match": match,
	})
}

// Delete builds the call for key.delete, removing keys matching the
// given expression from the store.
func Delete(match string) calls.WheelCall[Names] {
	return calls.NewWheelCall[Names]("key.delete", map[string]interface{}{
		"match": match,
	})
}

// Finger builds the call for key.finger, returning key fingerprints for
// minions matching the given expression, keyed by acceptance state and
// minion id.
func Finger(match string) calls.WheelCall[map[string]map[string]string] {
	return calls.NewWheelCall[map[string]map[string]string]("key.finger", map[string]interface{}{
		"match": match,
	})
}
