// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package client implements the HTTP transport against the salt
// master's API: session login, request construction and JSON decoding.
// Call descriptors from the calls package are executed through
// Client.Call; this layer adds no retries and no caching.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/kr/pretty"
	"gopkg.in/httprequest.v1"

	"github.com/salt-netapi/saltapi/calls"
)

var logger = loggo.GetLogger("saltapi.client")

// MIME represents a MIME type for identifying request and response
// bodies.
type MIME = string

const (
	// JSON represents the MIME type for JSON request and response types.
	JSON MIME = "application/json"
)

// Transport defines a type for making the actual request.
type Transport interface {
	// Do performs the *http.Request and returns a *http.Response or an
	// error if it fails to construct the transport.
	Do(*http.Request) (*http.Response, error)
}

// Option customises a Client.
type Option func(*options)

type options struct {
	transport Transport
	logger    *loggo.Logger
	timeout   time.Duration
	insecure  bool
}

// WithTransport sets the Transport requests are performed with,
// replacing the default http.Client.
func WithTransport(transport Transport) Option {
	return func(o *options) {
		o.transport = transport
	}
}

// WithLogger sets the logger the client writes to.
func WithLogger(l loggo.Logger) Option {
	return func(o *options) {
		o.logger = &l
	}
}

// WithTimeout sets the per-request timeout of the default transport. It
// has no effect when WithTransport is also given.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithInsecureSkipVerify disables TLS certificate verification on the
// default transport, for masters running with self-signed certificates.
// It has no effect when WithTransport is also given.
func WithInsecureSkipVerify() Option {
	return func(o *options) {
		o.insecure = true
	}
}

// Client performs HTTP exchanges with one salt master. It is safe for
// concurrent use; the session token established by Login is shared by
// all calls made through the same Client.
type Client struct {
	baseURL   *url.URL
	transport Transport
	logger    loggo.Logger

	mu    sync.RWMutex
	token string
}

// New returns a Client for the master API rooted at rawURL
// (e.g. "https://master.example.com:8000").
func New(rawURL string, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	base, err := url.Parse(strings.TrimSuffix(rawURL, "/"))
	if err != nil {
		return nil, errors.Annotatef(err, "parsing master URL %q", rawURL)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, errors.NotValidf("master URL scheme %q", base.Scheme)
	}

	transport := o.transport
	if transport == nil {
		httpClient := &http.Client{Timeout: o.timeout}
		if o.insecure {
			httpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}
		transport = httpClient
	}

	l := logger
	if o.logger != nil {
		l = *o.logger
	}
	return &Client{
		baseURL:   base,
		transport: transport,
		logger:    l,
	}, nil
}

// Token returns the current session token, or the empty string when not
// logged in.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Token holds the session established by Login.
type Token struct {
	Token  string        `json:"token"`
	Start  float64       `json:"start"`
	Expire float64       `json:"expire"`
	User   string        `json:"user"`
	Eauth  string        `json:"eauth"`
	Perms  []interface{} `json:"perms"`
}

type loginResponse struct {
	Return []Token `json:"return"`
}

// Login authenticates against the master's /login endpoint and stores
// the session token for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string, eauth calls.AuthModule) (*Token, error) {
	body := map[string]interface{}{
		"username": username,
		"password": password,
		"eauth":    string(eauth),
	}
	var resp loginResponse
	if err := c.post(ctx, "/login", body, &resp); err != nil {
		return nil, errors.Trace(err)
	}
	if len(resp.Return) == 0 {
		return nil, errors.Annotatef(ErrNotAuthenticated, "login as %q", username)
	}
	token := resp.Return[0]

	c.mu.Lock()
	c.token = token.Token
	c.mu.Unlock()
	return &token, nil
}

// Logout closes the session on the master and drops the stored token.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.post(ctx, "/logout", nil, nil); err != nil {
		return errors.Trace(err)
	}
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
	return nil
}

// Call implements calls.Caller: it sends one call to the master and
// decodes the JSON response into result. The request body is the call's
// payload, or custom when non-nil, with the "client" field set from
// kind; path selects between the token endpoint and /run.
func (c *Client) Call(ctx context.Context, call calls.Call, kind calls.ClientType, path string, custom map[string]interface{}, result interface{}) error {
	payload := custom
	if payload == nil {
		payload = call.Payload()
	}
	body := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["client"] = string(kind)

	return errors.Trace(c.post(ctx, path, body, result))
}

// post performs one POST exchange and decodes the JSON response into
// result (which may be nil to discard the body).
func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	buffer := new(bytes.Buffer)
	if body != nil {
		if err := json.NewEncoder(buffer).Encode(body); err != nil {
			return errors.Trace(err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL.String()+path, buffer)
	if err != nil {
		return errors.Annotate(err, "can not make new request")
	}
	req.Header.Set("Accept", JSON)
	req.Header.Set("Content-Type", JSON)
	if token := c.Token(); token != "" {
		req.Header.Set("X-Auth-Token", token)
	}

	if c.logger.IsTraceEnabled() {
		if data, dumpErr := httputil.DumpRequest(req, true); dumpErr == nil {
			c.logger.Tracef("%s request %s", req.Method, data)
		}
		c.logger.Tracef("request body %# v", pretty.Formatter(body))
	}

	resp, err := c.transport.Do(req)
	if err != nil {
		return errors.Annotatef(ErrTransport, "%v", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if c.logger.IsTraceEnabled() {
		if data, dumpErr := httputil.DumpResponse(resp, true); dumpErr == nil {
			c.logger.Tracef("%s response %s", req.Method, data)
		}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return errors.Annotatef(ErrNotAuthenticated, "%s %s", req.Method, req.URL)
	case resp.StatusCode < http.StatusOK || resp.StatusCode > http.StatusNoContent:
		return errors.Annotatef(ErrTransport, "%s %s: status %d", req.Method, req.URL, resp.StatusCode)
	}

	if result == nil {
		return nil
	}
	if err := httprequest.UnmarshalJSONResponse(resp, result); err != nil {
		return errors.Annotatef(ErrSerialization, "%v", err)
	}
	return nil
}
