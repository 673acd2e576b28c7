// Package transport abstracts the session's wire connection so the
// supervisor and tests never depend on a concrete websocket library.
package transport

import "context"

// Transport is one open connection to the forge server. Read returns whole
// text frames in arrival order; implementations are safe for one concurrent
// reader and one concurrent writer.
type Transport interface {
	Read(ctx context.Context) ([]byte, error)
	Send(ctx context.Context, payload []byte) error
	Close(reason string) error
}

// DialFunc opens a Transport to the given address. The supervisor owns retry
// behavior; a DialFunc performs exactly one attempt.
type DialFunc func(ctx context.Context, url string) (Transport, error)
