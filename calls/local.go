// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package calls

import (
	"context"

	"github.com/juju/errors"

	"github.com/salt-netapi/saltapi/results"
)

// LocalCall describes a function call of a salt execution module, run
// on a set of minions matched by a target expression. R is the shape a
// single minion's return value decodes into; results come back keyed by
// minion id.
type LocalCall[R any] struct {
	functionName string
	args         []interface{}
	kwargs       map[string]interface{}
}

// NewLocalCall returns a descriptor for the named execution module
// function. args and kwargs may each be nil; absent ones produce no
// "arg"/"kwargs" payload keys.
func NewLocalCall[R any](functionName string, args []interface{}, kwargs map[string]interface{}) LocalCall[R] {
	return LocalCall[R]{functionName: functionName, args: args, kwargs: kwargs}
}

// FunctionName returns the <module>.<function> name this call invokes.
func (c LocalCall[R]) FunctionName() string {
	return c.functionName
}

// Payload implements Call.
func (c LocalCall[R]) Payload() map[string]interface{} {
	payload := map[string]interface{}{"fun": c.functionName}
	if c.args != nil {
		payload["arg"] = c.args
	}
	if c.kwargs != nil {
		payload["kwargs"] = c.kwargs
	}
	return payload
}

// CallSync runs the function on all minions matching target and waits
// for their returns, keyed by minion id. Authentication is done with
// the session token.
func (c LocalCall[R]) CallSync(ctx context.Context, caller Caller, target string) (map[string]R, error) {
	custom := c.Payload()
	custom["tgt"] = target
	var wrapper results.Result[map[string]R]
	if err := caller.Call(ctx, c, Local, tokenPath, custom, &wrapper); err != nil {
		return nil, errors.Trace(err)
	}
	res, err := wrapper.First()
	if err != nil {
		return nil, errors.Annotatef(err, "local call %q", c.functionName)
	}
	return res, nil
}

// CallSyncWithCredentials is like CallSync but authenticates inline
// with the given credentials; no session token is created on the
// master.
func (c LocalCall[R]) CallSyncWithCredentials(ctx context.Context, caller Caller, target, username, password string, eauth AuthModule) (map[string]R, error) {
	custom := withCredentials(c.Payload(), username, password, eauth)
	custom["tgt"] = target
	var wrapper results.Result[map[string]R]
	if err := caller.Call(ctx, c, Local, credentialsPath, custom, &wrapper); err != nil {
		return nil, errors.Trace(err)
	}
	res, err := wrapper.First()
	if err != nil {
		return nil, errors.Annotatef(err, "local call %q", c.functionName)
	}
	return res, nil
}

// CallAsync schedules the function on all minions matching target and
// returns a handle for the job. Authentication is done with the session
// token.
func (c LocalCall[R]) CallAsync(ctx context.Context, caller Caller, target string) (*LocalAsyncResult[R], error) {
	custom := c.Payload()
	custom["tgt"] = target
	var wrapper results.Result[LocalAsyncResult[R]]
	if err := caller.Call(ctx, c, LocalAsync, tokenPath, custom, &wrapper); err != nil {
		return nil, errors.Trace(err)
	}
	res, err := wrapper.First()
	if err != nil {
		return nil, errors.Annotatef(err, "async local call %q", c.functionName)
	}
	return &res, nil
}

// CallAsyncWithCredentials is like CallAsync but authenticates inline
// with the given credentials; no session token is created on the
// master.
func (c LocalCall[R]) CallAsyncWithCredentials(ctx context.Context, caller Caller, target, username, password string, eauth AuthModule) (*LocalAsyncResult[R], error) {
	custom := withCredentials(c.Payload(), username, password, eauth)
	custom["tgt"] = target
	var wrapper results.Result[LocalAsyncResult[R]]
	if err := caller.Call(ctx, c, LocalAsync, credentialsPath, custom, &wrapper); err != nil {
		return nil, errors.Trace(err)
	}
	res, err := wrapper.First()
	if err != nil {
		return nil, errors.Annotatef(err, "async local call %q", c.functionName)
	}
	return &res, nil
}

// LocalAsyncResult identifies a local job scheduled with CallAsync,
// together with the minions it was published to. The type parameter
// carries the shape each minion's return decodes into.
type LocalAsyncResult[R any] struct {
	Jid     string   `json:"jid"`
	Minions []string `json:"minions"`
}
