// Package logging is the logger the site's packages depend on. main wires
// in the zap implementation; tests use NewNop.
package logging

import "context"

// Logger writes leveled messages with alternating key and value arguments:
//
//	log.Warn(ctx, "contact form delivery failed", "error", err, "locale", "uk")
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With binds args to every message of the returned logger.
	With(args ...any) Logger
}
