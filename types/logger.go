package types

// Logger receives the structured records emitted by the balancer, the
// publisher, the report source and reporters.
//
// Fields follow the message as alternating key/value pairs, e.g.
// Info("plans published", "version", 4, "plans", 7). zap.SugaredLogger and
// the slog adapter returned by rebalance.NewSlogLogger satisfy it directly.
type Logger interface {
	// Debug records per-region detail such as individual moves.
	Debug(msg string, keysAndValues ...any)

	// Info records publications and completed balance runs.
	Info(msg string, keysAndValues ...any)

	// Warn records recoverable problems such as skipped reports or failed cleanup.
	Warn(msg string, keysAndValues ...any)

	// Error records failed operations that are returned to the caller.
	Error(msg string, keysAndValues ...any)

	// Fatal records an unrecoverable failure. Implementations may exit the
	// process; the discarding default does not.
	Fatal(msg string, keysAndValues ...any)
}
