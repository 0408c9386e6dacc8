// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package calls models remote function invocations against the salt
// master as immutable descriptors. A descriptor carries the function
// name, its keyword arguments and (through its type parameter) the
// shape the result decodes into; the module catalogs underneath this
// package are the only intended constructors.
package calls

// Call is a remote function invocation descriptor. Payload returns the
// lowstate mapping sent as the request body; implementations must not
// include a "kwargs" key when no keyword arguments were supplied.
type Call interface {
	Payload() map[string]interface{}
}

// ClientType selects the master-side client that executes a call. It is
// sent as the "client" field of the lowstate and, combined with the
// authentication mode, determines the endpoint path.
type ClientType string

const (
	Local       ClientType = "local"
	LocalAsync  ClientType = "local_async"
	Runner      ClientType = "runner"
	RunnerAsync ClientType = "runner_async"
	Wheel       ClientType = "wheel"
	WheelAsync  ClientType = "wheel_async"
)

// AuthModule names an external authentication module on the master,
// sent as the "eauth" field when authenticating with inline
// credentials.
type AuthModule string

const (
	AuthAuto     AuthModule = "auto"
	AuthDjango   AuthModule = "django"
	AuthKeystone AuthModule = "keystone"
	AuthLDAP     AuthModule = "ldap"
	AuthMySQL    AuthModule = "mysql"
	AuthPAM      AuthModule = "pam"
	AuthREST     AuthModule = "rest"
)

// Endpoint paths by authentication mode: a pre-established session
// token posts to the root endpoint, inline credentials post to /run and
// create no session on the master.
const (
	tokenPath       = "/"
	credentialsPath = "/run"
)

// withCredentials copies a payload and adds the inline-authentication
// fields understood by the /run endpoint.
func withCredentials(payload map[string]interface{}, username, password string, eauth AuthModule) map[string]interface{} {
	custom := make(map[string]interface{}, len(payload)+3)
	for k, v := range payload {
		custom[k] = v
	}
	custom["username"] = username
	custom["password"] = password
	custom["eauth"] = string(eauth)
	return custom
}
