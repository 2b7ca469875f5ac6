package api

import "errors"

var (
	// ErrUnauthenticated means HN rejected an action because there is no valid
	// session (missing login or expired cookie).
	ErrUnauthenticated = errors.New("not logged in")
	// ErrNetwork wraps transport failures talking to HN.
	ErrNetwork = errors.New("network error")
	// ErrNotFound means the requested item or page does not exist.
	ErrNotFound = errors.New("not found")
)
