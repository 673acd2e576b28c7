package schema

import "errors"

var (
	// ErrInvalidRequest indicates a malformed request payload.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEmptyQuery indicates the generation query was empty.
	ErrEmptyQuery = errors.New("empty query")
	// ErrSessionNotFound indicates a requested session could not be found.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionClosed indicates the session was explicitly closed.
	ErrSessionClosed = errors.New("session closed")
	// ErrNotConnected indicates the transport is not open.
	ErrNotConnected = errors.New("not connected")
	// ErrRetriesExhausted indicates the reconnect budget ran out.
	ErrRetriesExhausted = errors.New("retries exhausted")
	// ErrMissingMeta indicates the bootstrap stream ended before the
	// session metadata record arrived.
	ErrMissingMeta = errors.New("bootstrap stream missing session metadata")
)
