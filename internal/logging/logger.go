// Package logging defines the structured-logging surface the sync layers
// log through. The concrete implementation wraps log/slog, but the stores
// and services only ever see this interface, so the backend can change
// without touching them.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key-value pairs, e.g.:
//
//	log.Warn(ctx, "remote write failed", "owner", owner, "id", id)
type Logger interface {
	// Debug logs fine-grained events, like per-item merge decisions.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions,
	// like a degraded read while the remote tier is unreachable.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value pairs.
	With(args ...any) Logger
}
