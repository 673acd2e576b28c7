// Package logx centralizes logger annotation so session, phase, and file
// identifiers appear under consistent keys everywhere.
package logx

import (
	"context"

	"github.com/zlillymp/forgeline/schema"
	"pkt.systems/pslog"
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithSession annotates the logger with the session id if present.
func WithSession(log pslog.Logger, sessionID schema.SessionID) pslog.Logger {
	if sessionID != "" {
		log = log.With("session", sessionID)
	}
	return log
}

// WithPhase annotates the logger with a phase id when available.
func WithPhase(log pslog.Logger, phaseID schema.PhaseID) pslog.Logger {
	if phaseID != "" {
		log = log.With("phase", phaseID)
	}
	return log
}

// WithFile annotates the logger with a file path when available.
func WithFile(log pslog.Logger, path string) pslog.Logger {
	if path != "" {
		log = log.With("file", path)
	}
	return log
}
