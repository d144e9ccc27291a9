package roon

import "errors"

// Sentinel errors for core connection handling.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, roon.ErrNotAuthorized) {
//	    // Registration refused; wait for the user to enable the extension
//	}
var (
	// ErrConnectionFailed indicates the WebSocket connection or the
	// registration exchange failed.
	ErrConnectionFailed = errors.New("roon: connection failed")

	// ErrNotAuthorized indicates the core refused the extension registration.
	ErrNotAuthorized = errors.New("roon: registration refused")

	// ErrClosed indicates the transport has been closed.
	ErrClosed = errors.New("roon: transport closed")

	// ErrAttemptsExhausted indicates the configured reconnect attempt limit
	// was reached.
	ErrAttemptsExhausted = errors.New("roon: reconnect attempts exhausted")
)
