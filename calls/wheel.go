// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package calls

import (
	"context"

	"github.com/juju/errors"

	"github.com/salt-netapi/saltapi/results"
)

// WheelCall describes a function call of a salt wheel module, operating
// on master-side configuration such as the minion key store. Wheel
// returns arrive with an extra data/return nesting that CallSync strips
// for the caller.
type WheelCall[R any] struct {
	functionName string
	kwargs       map[string]interface{}
}

// NewWheelCall returns a descriptor for the named wheel function.
// kwargs may be nil, in which case the payload carries no "kwargs" key
// at all.
func NewWheelCall[R any](functionName string, kwargs map[string]interface{}) WheelCall[R] {
	return WheelCall[R]{functionName: functionName, kwargs: kwargs}
}

// FunctionName returns the <module>.<function> name this call invokes.
func (c WheelCall[R]) FunctionName() string {
	return c.functionName
}

// Payload implements Call.
func (c WheelCall[R]) Payload() map[string]interface{} {
	payload := map[string]interface{}{"fun": c.functionName}
	if c.kwargs != nil {
		payload["kwargs"] = c.kwargs
	}
	return payload
}

// CallSync calls the wheel function on the master and waits for the
// result. Authentication is done with the session token.
func (c WheelCall[R]) CallSync(ctx context.Context, caller Caller) (results.Return[R], error) {
	var wrapper results.Result[results.Data[R]]
	if err := caller.Call(ctx, c, Wheel, tokenPath, nil, &wrapper); err != nil {
		return results.Return[R]{}, errors.Trace(err)
	}
	res, err := wrapper.First()
	if err != nil {
		return results.Return[R]{}, errors.Annotatef(err, "wheel call %q", c.functionName)
	}
	return res.Data, nil
}

// CallSyncWithCredentials is like CallSync but authenticates inline
// with the given credentials; no session token is created on the
// master.
func (c WheelCall[R]) CallSyncWithCredentials(ctx context.Context, caller Caller, username, password string, eauth AuthModule) (results.Return[R], error) {
	custom := withCredentials(c.Payload(), username, password, eauth)
	var wrapper results.Result[results.Data[R]]
	if err := caller.Call(ctx, c, Wheel, credentialsPath, custom, &wrapper); err != nil {
		return results.Return[R]{}, errors.Trace(err)
	}
	res, err := wrapper.First()
	if err != nil {
		return results.Return[R]{}, errors.Annotatef(err, "wheel call %q", c.functionName)
	}
	return res.Data, nil
}

// CallAsync schedules the wheel function and returns a handle for the
// job. Authentication is done with the session token.
func (c WheelCall[R]) CallAsync(ctx context.Context, caller Caller) (*RunnerAsyncResult[R], error) {
	var wrapper results.Result[RunnerAsyncResult[R]]
	if err := caller.Call(ctx, c, WheelAsync, tokenPath, nil, &wrapper); err != nil {
		return nil, errors.Trace(err)
	}
	res, err := wrapper.First()
	if err != nil {
		return nil, errors.Annotatef(err, "async wheel call %q", c.functionName)
	}
	return &res, nil
}

// CallAsyncWithCredentials is like CallAsync but authenticates inline
// with the given credentials; no session token is created on the
// master.
func (c WheelCall[R]) CallAsyncWithCredentials(ctx context.Context, caller Caller, username, password string, eauth AuthModule) (*RunnerAsyncResult[R], error) {
	custom := withCredentials(c.Payload(), username, password, eauth)
	var wrapper results.Result[RunnerAsyncResult[R]]
	if err := caller.Call(ctx, c, WheelAsync, credentialsPath, custom, &wrapper); err != nil {
		return nil, errors.Trace(err)
	}
	res, err := wrapper.First()
	if err != nil {
		return nil, errors.Annotatef(err, "async wheel call %q", c.functionName)
	}
	return &res, nil
}
