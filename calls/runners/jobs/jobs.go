// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package jobs provides typed calls into the master's jobs runner
// module, which queries the job cache.
package jobs

import (
	"encoding/json"

	"github.com/salt-netapi/saltapi/calls"
)

// Info holds the job cache metadata returned by jobs.list_job and
// jobs.print_job. The per-minion returns stay raw since their shape
// depends on the function the job ran.
type Info struct {
	Jid       string                     `json:"jid"`
	Function  string                     `json:"Function"`
	Target    interface{}                `json:"Target"`
	User      string                     `json:"User"`
	StartTime string                     `json:"StartTime"`
	Minions   []string                   `json:"Minions"`
	Result    map[string]json.RawMessage `json:"Result"`
}

// ListJob builds the call for jobs.list_job, returning the cached
// metadata and returns of one job.
func ListJob(jid string) calls.RunnerCall[Info] {
	return calls.NewRunnerCall[Info]("jobs.list_job", map[string]interface{}{
		"jid": jid,
	})
}

// ListJobs builds the call for jobs.list_jobs, returning cached job
// metadata keyed by jid. searchFunction narrows the listing to jobs of
// one function; pass an empty string to list everything.
func ListJobs(searchFunction string) calls.RunnerCall[map[string]Info] {
	var kwargs map[string]interface{}
	if searchFunction != "" {
		kwargs = map[string]interface{}{"search_function": searchFunction}
	}
	return calls.NewRunnerCall[map[string]Info]("jobs.list_jobs", kwargs)
}

// LookupJid builds the call for jobs.lookup_jid, returning the returns
// of one job keyed by minion id, decoded into R.
func LookupJid[R any](jid string) calls.RunnerCall[R] {
	return calls.NewRunnerCall[R]("jobs.lookup_jid", map[string]interface{}{
		"jid": jid,
	})
}
