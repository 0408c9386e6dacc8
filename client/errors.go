// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package client

import (
	"github.com/juju/errors"
)

const (
	// ErrTransport is returned when the HTTP exchange with the master
	// fails: connection errors, timeouts, or a non-2xx status.
	ErrTransport = errors.ConstError("transport failure")

	// ErrSerialization is returned when the master's response body does
	// not decode into the declared result shape.
	ErrSerialization = errors.ConstError("response does not match result type")

	// ErrNotAuthenticated is returned when the master rejects the
	// session token or credentials.
	ErrNotAuthenticated = errors.ConstError("not authenticated")
)
