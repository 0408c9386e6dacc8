// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package manage provides typed calls into the master's manage runner
// module, which reports minion connectivity.
package manage

import (
	"github.com/salt-netapi/saltapi/calls"
)

// Present builds the call for manage.present, returning the ids of all
// minions currently connected to the master.
func Present() calls.RunnerCall[[]string] {
	return calls.NewRunnerCall[[]string]("manage.present", nil)
}

// Up builds the call for manage.up, returning the ids of all minions
// that answer a ping.
func Up() calls.RunnerCall[[]string] {
	return calls.NewRunnerCall[[]string]("manage.up", nil)
}

// Down builds the call for manage.down, returning the ids of all
// registered minions that do not answer a ping. removeKeys controls
// whether unresponsive minions are deregistered as a side effect.
func Down(removeKeys bool) calls.RunnerCall[[]string] {
	return calls.NewRunnerCall[[]string]("manage.down", map[string]interface{}{
		"removekeys": removeKeys,
	})
}

// MinionStatus holds the return of manage.status.
type MinionStatus struct {
	Up   []string `json:"up"`
	Down []string `json:"down"`
}

// Status builds the call for manage.status, returning connected and
// disconnected minion ids in one result.
func Status() calls.RunnerCall[MinionStatus] {
	return calls.NewRunnerCall[MinionStatus]("manage.status", nil)
}
