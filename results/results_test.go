// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package results

import (
	"encoding/json"

	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"
)

type resultSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&resultSuite{})

func (s *resultSuite) TestFirst(c *gc.C) {
	r := Result[string]{Result: []string{"payload"}}
	out, err := r.First()
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(out, gc.Equals, "payload")
}

func (s *resultSuite) TestFirstEmpty(c *gc.C) {
	var r Result[string]
	_, err := r.First()
	c.Assert(err, jc.ErrorIs, ErrEmptyResult)
}

func (s *resultSuite) TestFirstEmptyDecodedList(c *gc.C) {
	var r Result[string]
	err := json.Unmarshal([]byte(`{"result":[]}`), &r)
	c.Assert(err, jc.ErrorIsNil)
	_, err = r.First()
	c.Assert(err, jc.ErrorIs, ErrEmptyResult)
}

func (s *resultSuite) TestFirstTooMany(c *gc.C) {
	r := Result[int]{Result: []int{1, 2}}
	_, err := r.First()
	c.Assert(err, jc.ErrorIs, ErrUnexpectedResults)
	c.Assert(err, gc.ErrorMatches, "got 2: unexpected number of results in response")
}

func (s *resultSuite) TestDecodeEnvelope(c *gc.C) {
	var r Result[map[string]int]
	err := json.Unmarshal([]byte(`{"result":[{"a":1}]}`), &r)
	c.Assert(err, jc.ErrorIsNil)
	out, err := r.First()
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(out, jc.DeepEquals, map[string]int{"a": 1})
}

func (s *resultSuite) TestDecodeWheelNesting(c *gc.C) {
	var r Result[Data[[]string]]
	err := json.Unmarshal([]byte(`{"result":[{"data":{"return":["m1"],"success":true,"tag":"salt/wheel/1"}}]}`), &r)
	c.Assert(err, jc.ErrorIsNil)
	out, err := r.First()
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(out.Data.Success, jc.IsTrue)
	c.Assert(out.Data.Tag, gc.Equals, "salt/wheel/1")
	c.Assert(out.Data.Return, jc.DeepEquals, []string{"m1"})
}
