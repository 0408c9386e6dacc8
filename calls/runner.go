// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package calls

import (
	"context"
	"encoding/json"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/retry"

	"github.com/salt-netapi/saltapi/results"
)

var logger = loggo.GetLogger("saltapi.calls")

// Caller performs one HTTP exchange with the master and decodes the
// JSON response into result. It is implemented by client.Client; custom
// replaces the call's own payload as the request body when non-nil.
type Caller interface {
	Call(ctx context.Context, call Call, kind ClientType, path string, custom map[string]interface{}, result interface{}) error
}

// RunnerCall describes a function call of a salt runner module,
// executed on the master itself. R is the shape the function's return
// value decodes into.
type RunnerCall[R any] struct {
	functionName string
	kwargs       map[string]interface{}
}

// NewRunnerCall returns a descriptor for the named runner function.
// kwargs may be nil, in which case the payload carries no "kwargs" key
// at all.
func NewRunnerCall[R any](functionName string, kwargs map[string]interface{}) RunnerCall[R] {
	return RunnerCall[R]{functionName: functionName, kwargs: kwargs}
}

// FunctionName returns the <module>.<function> name this call invokes.
func (c RunnerCall[R]) FunctionName() string {
	return c.functionName
}

// Payload implements Call.
func (c RunnerCall[R]) Payload() map[string]interface{} {
	payload := map[string]interface{}{"fun": c.functionName}
	if c.kwargs != nil {
		payload["kwargs"] = c.kwargs
	}
	return payload
}

// CallSync calls the runner function on the master and waits for the
// result. Authentication is done with the session token, so the caller
// must have logged in first.
func (c RunnerCall[R]) CallSync(ctx context.Context, caller Caller) (R, error) {
	var zero R
	var wrapper results.Result[R]
	if err := caller.Call(ctx, c, Runner, tokenPath, nil, &wrapper); err != nil {
		return zero, errors.Trace(err)
	}
	res, err := wrapper.First()
	if err != nil {
		return zero, errors.Annotatef(err, "runner call %q", c.functionName)
	}
	return res, nil
}

// CallSyncWithCredentials is like CallSync but authenticates inline
// with the given credentials; no session token is created on the
// master.
func (c RunnerCall[R]) CallSyncWithCredentials(ctx context.Context, caller Caller, username, password string, eauth AuthModule) (R, error) {
	var zero R
	custom := withCredentials(c.Payload(), username, password, eauth)
	var wrapper results.Result[R]
	if err := caller.Call(ctx, c, Runner, credentialsPath, custom, &wrapper); err != nil {
		return zero, errors.Trace(err)
	}
	res, err := wrapper.First()
	if err != nil {
		return zero, errors.Annotatef(err, "runner call %q", c.functionName)
	}
	return res, nil
}

// CallAsync schedules the runner function on the master and returns a
// handle for the job without waiting for it to run. Authentication is
// done with the session token.
func (c RunnerCall[R]) CallAsync(ctx context.Context, caller Caller) (*RunnerAsyncResult[R], error) {
	var wrapper results.Result[RunnerAsyncResult[R]]
	if err := caller.Call(ctx, c, RunnerAsync, tokenPath, nil, &wrapper); err != nil {
		return nil, errors.Trace(err)
	}
	res, err := wrapper.First()
	if err != nil {
		return nil, errors.Annotatef(err, "async runner call %q", c.functionName)
	}
	return &res, nil
}

// CallAsyncWithCredentials is like CallAsync but authenticates inline
// with the given credentials; no session token is created on the
// master.
func (c RunnerCall[R]) CallAsyncWithCredentials(ctx context.Context, caller Caller, username, password string, eauth AuthModule) (*RunnerAsyncResult[R], error) {
	custom := withCredentials(c.Payload(), username, password, eauth)
	var wrapper results.Result[RunnerAsyncResult[R]]
	if err := caller.Call(ctx, c, RunnerAsync, credentialsPath, custom, &wrapper); err != nil {
		return nil, errors.Trace(err)
	}
	res, err := wrapper.First()
	if err != nil {
		return nil, errors.Annotatef(err, "async runner call %q", c.functionName)
	}
	return &res, nil
}

// RunnerAsyncResult identifies a runner job scheduled with CallAsync.
// The type parameter carries the shape the job's eventual return value
// decodes into, so a later poll knows what to decode.
type RunnerAsyncResult[R any] struct {
	Jid string `json:"jid"`
	Tag string `json:"tag"`
}

// errJobPending drives the retry loop in Wait; it never escapes.
const errJobPending = errors.ConstError("job has not returned yet")

// Wait polls the master's job cache until the job has returned, then
// decodes the return value. delay is the poll interval; polling stops
// once maxDuration has passed. Authentication is done with the session
// token.
func (r *RunnerAsyncResult[R]) Wait(ctx context.Context, caller Caller, clk clock.Clock, delay, maxDuration time.Duration) (R, error) {
	lookup := NewRunnerCall[json.RawMessage]("jobs.lookup_jid", map[string]interface{}{
		"jid": r.Jid,
	})

	var out R
	args := retry.CallArgs{
		Clock:       clk,
		Delay:       delay,
		MaxDuration: maxDuration,
		Stop:        ctx.Done(),
		IsFatalError: func(err error) bool {
			return !errors.Is(err, errJobPending)
		},
		Func: func() error {
			var wrapper results.Result[json.RawMessage]
			if err := caller.Call(ctx, lookup, Runner, tokenPath, nil, &wrapper); err != nil {
				return errors.Trace(err)
			}
			raw, err := wrapper.First()
			if err != nil {
				return errors.Trace(err)
			}
			if jobPending(raw) {
				logger.Tracef("job %s not returned yet", r.Jid)
				return errJobPending
			}
			if err := json.Unmarshal(raw, &out); err != nil {
				return errors.Annotatef(err, "decoding return of job %s", r.Jid)
			}
			return nil
		},
	}
	if err := retry.Call(args); err != nil {
		var zero R
		if retry.IsDurationExceeded(err) || errors.Is(err, errJobPending) {
			return zero, errors.Annotatef(errJobPending, "job %s after %v", r.Jid, maxDuration)
		}
		return zero, errors.Trace(err)
	}
	return out, nil
}

// jobPending reports whether the job cache has no return for the job
// yet. The master answers lookups for unfinished jobs with an empty
// object or list rather than an error.
func jobPending(raw json.RawMessage) bool {
	switch string(raw) {
	case "", "null", "{}", "[]":
		return true
	}
	return false
}
