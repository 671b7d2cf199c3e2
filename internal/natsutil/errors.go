// Package natsutil classifies NATS client errors.
package natsutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/rebalance/types"
)

// IsConnectivityError checks if an error is caused by connectivity issues.
//
// This includes NATS timeouts, connection refused, disconnections, etc.
// Kept out of types/ so that package stays free of NATS dependencies.
//
// Parameters:
//   - err: Error to check
//
// Returns:
//   - bool: true if error indicates connectivity issue
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, types.ErrConnectivity) ||
		errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrDisconnected) ||
		errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, jetstream.ErrNoStreamResponse) ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "i/o timeout")
}

// IsKeyNotFound reports whether err means the KV key does not exist or was deleted.
func IsKeyNotFound(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted)
}

// Wrap tags err with the sentinel and, for connectivity failures, with
// types.ErrConnectivity as well, so callers can match either with errors.Is.
//
// Parameters:
//   - sentinel: Operation sentinel (e.g. types.ErrPublishFailed)
//   - err: Underlying NATS error
//
// Returns:
//   - error: nil if err is nil, otherwise the wrapped error
func Wrap(sentinel error, err error) error {
	if err == nil {
		return nil
	}
	if IsConnectivityError(err) && !errors.Is(err, types.ErrConnectivity) {
		return fmt.Errorf("%w: %w: %w", sentinel, types.ErrConnectivity, err)
	}

	return fmt.Errorf("%w: %w", sentinel, err)
}
