// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package calls_test

import (
	"context"

	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/salt-netapi/saltapi/calls"
	"github.com/salt-netapi/saltapi/results"
)

type wheelSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&wheelSuite{})

func (s *wheelSuite) TestCallSyncUnwrapsDataNesting(c *gc.C) {
	call := calls.NewWheelCall[[]string]("key.list_all", nil)
	caller := callerFunc(func(ctx context.Context, got calls.Call, kind calls.ClientType, path string, custom map[string]interface{}, result interface{}) error {
		c.Check(kind, gc.Equals, calls.Wheel)
		c.Check(path, gc.Equals, "/")

		res := result.(*results.Result[results.Data[[]string]])
		res.Result = []results.Data[[]string]{{
			Data: results.Return[[]string]{
				Return:  []string{"minion1"},
				Success: true,
				Tag:     "salt/wheel/20250101010101123456",
			},
		}}
		return nil
	})

	ret, err := call.CallSync(context.Background(), caller)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(ret.Success, jc.IsTrue)
	c.Assert(ret.Return, jc.DeepEquals, []string{"minion1"})
}

func (s *wheelSuite) TestCallSyncWithCredentials(c *gc.C) {
	call := calls.NewWheelCall[[]string]("key.accept", map[string]interface{}{"match": "minion1"})
	caller := callerFunc(func(ctx context.Context, got calls.Call, kind calls.ClientType, path string, custom map[string]interface{}, result interface{}) error {
		c.Check(path, gc.Equals, "/run")
		c.Check(custom, jc.DeepEquals, map[string]interface{}{
			"fun":      "key.accept",
			"kwargs":   map[string]interface{}{"match": "minion1"},
			"username": "admin",
			"password": "hunter2",
			"eauth":    "pam",
		})

		res := result.(*results.Result[results.Data[[]string]])
		res.Result = []results.Data[[]string]{{}}
		return nil
	})

	_, err := call.CallSyncWithCredentials(context.Background(), caller, "admin", "hunter2", calls.AuthPAM)
	c.Assert(err, jc.ErrorIsNil)
}

func (s *wheelSuite) TestCallSyncEmptyEnvelope(c *gc.C) {
	call := calls.NewWheelCall[[]string]("key.list_all", nil)
	caller := callerFunc(func(ctx context.Context, got calls.Call, kind calls.ClientType, path string, custom map[string]interface{}, result interface{}) error {
		return nil
	})

	_, err := call.CallSync(context.Background(), caller)
	c.Assert(err, jc.ErrorIs, results.ErrEmptyResult)
}

func (s *wheelSuite) TestCallAsync(c *gc.C) {
	call := calls.NewWheelCall[[]string]("key.list_all", nil)
	caller := callerFunc(func(ctx context.Context, got calls.Call, kind calls.ClientType, path string, custom map[string]interface{}, result interface{}) error {
		c.Check(kind, gc.Equals, calls.WheelAsync)

		res := result.(*results.Result[calls.RunnerAsyncResult[[]string]])
		res.Result = []calls.RunnerAsyncResult[[]string]{{Jid: "2"}}
		return nil
	})

	handle, err := call.CallAsync(context.Background(), caller)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(handle.Jid, gc.Equals, "2")
}
