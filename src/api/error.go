package api

import "errors"

var (
	ErrSessionChanged = errors.New("session changed while the request was processed")
	ErrNoSession      = errors.New("no active session")
	ErrNoSigner       = errors.New("server has no signer configured")
	ErrSignerMismatch = errors.New("session identity can't be signed for")
)
