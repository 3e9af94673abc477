package errors

import "errors"

// Connection errors.
var (
	// ErrConnectionClosed is returned by request operations when the
	// connection's network context has been torn down. Distinct from
	// protocol errors: the request never reached the homeserver.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrLoginFailed wraps a rejected login. Login is never retried
	// automatically; reconnecting is the owner's decision.
	ErrLoginFailed = errors.New("login failed")
)

// Key import/export errors.
var (
	ErrBadPassphrase = errors.New("incorrect passphrase")
	ErrBadKeyExport  = errors.New("malformed key export file")
)
