package rebalance

import (
	"log/slog"

	"github.com/arloliu/rebalance/internal/logger"
	"github.com/arloliu/rebalance/internal/logging"
)

// NewSlogLogger adapts a slog.Logger to Logger (slog.Default() if nil).
func NewSlogLogger(l *slog.Logger) Logger {
	return logging.NewSlog(l)
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger {
	return logger.NewNop()
}
