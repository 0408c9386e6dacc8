// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package event_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gorilla/websocket"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/salt-netapi/saltapi/event"
)

type streamSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&streamSuite{})

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// stubEventBus upgrades the connection, waits for the client ready
// message and then pushes the given frames.
func stubEventBus(c *gc.C, token string, frames []string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.Check(r.URL.Path, gc.Equals, "/ws/"+token)

		conn, err := upgrader.Upgrade(w, r, nil)
		c.Assert(err, jc.ErrorIsNil)
		defer func() { _ = conn.Close() }()

		_, ready, err := conn.ReadMessage()
		if err != nil {
			return
		}
		c.Check(string(ready), gc.Equals, "websocket client ready")

		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func (s *streamSuite) TestReceivesEvents(c *gc.C) {
	srv := stubEventBus(c, "tok", []string{
		`data: {"tag": "salt/auth", "data": {"act": "pend", "id": "minion1"}}`,
		`data: {"tag": "salt/job/1/new", "data": {"fun": "test.ping"}}`,
	})
	defer srv.Close()

	stream, err := event.Connect(context.Background(), srv.URL, "tok")
	c.Assert(err, jc.ErrorIsNil)
	defer func() { _ = stream.Close() }()

	var events []event.Event
	timeout := time.After(testing.LongWait)
	for len(events) < 2 {
		select {
		case ev, ok := <-stream.Events():
			c.Assert(ok, jc.IsTrue)
			events = append(events, ev)
		case <-timeout:
			c.Fatalf("timed out waiting for events")
		}
	}

	c.Assert(events[0].Tag, gc.Equals, "salt/auth")
	c.Assert(events[0].Data, jc.DeepEquals, map[string]interface{}{
		"act": "pend",
		"id":  "minion1",
	})
	c.Assert(events[1].Tag, gc.Equals, "salt/job/1/new")
}

func (s *streamSuite) TestUnframedEventStillDecodes(c *gc.C) {
	srv := stubEventBus(c, "tok", []string{
		`{"tag": "salt/plain", "data": {}}`,
	})
	defer srv.Close()

	stream, err := event.Connect(context.Background(), srv.URL, "tok")
	c.Assert(err, jc.ErrorIsNil)
	defer func() { _ = stream.Close() }()

	select {
	case ev := <-stream.Events():
		c.Assert(ev.Tag, gc.Equals, "salt/plain")
	case <-time.After(testing.LongWait):
		c.Fatalf("timed out waiting for event")
	}
}

func (s *streamSuite) TestClose(c *gc.C) {
	srv := stubEventBus(c, "tok", nil)
	defer srv.Close()

	stream, err := event.Connect(context.Background(), srv.URL, "tok")
	c.Assert(err, jc.ErrorIsNil)

	err = stream.Close()
	c.Assert(err, jc.ErrorIsNil)
	// Closing again is a no-op.
	c.Assert(stream.Close(), jc.ErrorIsNil)

	select {
	case _, ok := <-stream.Events():
		c.Assert(ok, jc.IsFalse)
	case <-time.After(testing.LongWait):
		c.Fatalf("timed out waiting for events channel to close")
	}
	c.Assert(stream.Err(), jc.ErrorIsNil)
}

func (s *streamSuite) TestConnectRefused(c *gc.C) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := event.Connect(context.Background(), url, "tok")
	c.Assert(err, gc.ErrorMatches, "connecting to event bus.*")
}

func (s *streamSuite) TestRejectsBadScheme(c *gc.C) {
	_, err := event.Connect(context.Background(), "ftp://master:8000", "tok")
	c.Assert(err, gc.ErrorMatches, `master URL scheme "ftp" not valid`)
}
