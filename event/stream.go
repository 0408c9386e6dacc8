// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package event streams the master's event bus over the API's
// websocket endpoint. A Stream delivers decoded events on a channel
// until the connection drops or Close is called.
package event

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/juju/errors"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("saltapi.event")

// readyMessage is sent after the handshake; the master starts pushing
// events only once it arrives.
const readyMessage = "websocket client ready"

// dataPrefix precedes the JSON body of every event frame.
var dataPrefix = []byte("data: ")

// Event is one message from the master's event bus.
type Event struct {
	Tag  string                 `json:"tag"`
	Data map[string]interface{} `json:"data"`
}

// Stream is an open connection to the master's event bus.
type Stream struct {
	conn   *websocket.Conn
	events chan Event
	quit   chan struct{}

	mu     sync.Mutex
	closed bool
	err    error
}

// Connect opens the event bus of the master API rooted at rawURL,
// authenticating with the given session token. The caller owns the
// returned Stream and must Close it.
func Connect(ctx context.Context, rawURL, token string) (*Stream, error) {
	base, err := url.Parse(strings.TrimSuffix(rawURL, "/"))
	if err != nil {
		return nil, errors.Annotatef(err, "parsing master URL %q", rawURL)
	}
	switch base.Scheme {
	case "http":
		base.Scheme = "ws"
	case "https":
		base.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, errors.NotValidf("master URL scheme %q", base.Scheme)
	}
	base.Path = strings.TrimSuffix(base.Path, "/") + "/ws/" + token

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, base.String(), nil)
	if err != nil {
		return nil, errors.Annotatef(err, "connecting to event bus %q", base.String())
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(readyMessage)); err != nil {
		_ = conn.Close()
		return nil, errors.Trace(err)
	}

	s := &Stream{
		conn:   conn,
		events: make(chan Event),
		quit:   make(chan struct{}),
	}
	go s.loop()
	return s, nil
}

// Events returns the channel events are delivered on. It is closed when
// the stream ends; check Err afterwards for the reason.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// Err returns the error that ended the stream, or nil after a clean
// Close.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close tears down the connection. Events already in flight may still
// be delivered before the events channel closes.
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	close(s.quit)

	_ = s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return errors.Trace(s.conn.Close())
}

func (s *Stream) loop() {
	defer close(s.events)
	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			if !s.closed {
				s.err = errors.Trace(err)
			}
			s.mu.Unlock()
			return
		}
		event, err := decodeFrame(message)
		if err != nil {
			logger.Warningf("dropping undecodable event: %v", err)
			continue
		}
		select {
		case s.events <- event:
		case <-s.quit:
			return
		}
	}
}

// decodeFrame strips the "data: " framing the master wraps event JSON
// in and decodes the remainder.
func decodeFrame(message []byte) (Event, error) {
	body := bytes.TrimPrefix(bytes.TrimSpace(message), dataPrefix)
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return Event{}, errors.Annotatef(err, "decoding event %q", message)
	}
	return event, nil
}
