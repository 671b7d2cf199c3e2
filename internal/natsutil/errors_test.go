package natsutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/rebalance/types"
)

func TestIsConnectivityError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", types.ErrConnectivity, true},
		{"nats timeout", nats.ErrTimeout, true},
		{"wrapped disconnect", fmt.Errorf("put: %w", nats.ErrDisconnected), true},
		{"no stream response", jetstream.ErrNoStreamResponse, true},
		{"connection refused text", errors.New("dial tcp: connection refused"), true},
		{"key not found", jetstream.ErrKeyNotFound, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsConnectivityError(tt.err))
		})
	}
}

func TestIsKeyNotFound(t *testing.T) {
	require.True(t, IsKeyNotFound(jetstream.ErrKeyNotFound))
	require.True(t, IsKeyNotFound(fmt.Errorf("get: %w", jetstream.ErrKeyDeleted)))
	require.False(t, IsKeyNotFound(nats.ErrTimeout))
	require.False(t, IsKeyNotFound(nil))
}

func TestWrap(t *testing.T) {
	t.Run("returns nil for nil error", func(t *testing.T) {
		require.NoError(t, Wrap(types.ErrPublishFailed, nil))
	})

	t.Run("tags connectivity failures", func(t *testing.T) {
		err := Wrap(types.ErrPublishFailed, nats.ErrTimeout)
		require.ErrorIs(t, err, types.ErrPublishFailed)
		require.ErrorIs(t, err, types.ErrConnectivity)
		require.ErrorIs(t, err, nats.ErrTimeout)
	})

	t.Run("keeps application failures distinct", func(t *testing.T) {
		err := Wrap(types.ErrDeleteFailed, errors.New("permission denied"))
		require.ErrorIs(t, err, types.ErrDeleteFailed)
		require.NotErrorIs(t, err, types.ErrConnectivity)
	})
}
