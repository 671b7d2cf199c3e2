package logger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/rebalance/types"
)

type countingLogger struct {
	calls int
}

func (c *countingLogger) Debug(string, ...any) { c.calls++ }
func (c *countingLogger) Info(string, ...any)  { c.calls++ }
func (c *countingLogger) Warn(string, ...any)  { c.calls++ }
func (c *countingLogger) Error(string, ...any) { c.calls++ }
func (c *countingLogger) Fatal(string, ...any) { c.calls++ }

func TestNewNop(t *testing.T) {
	log := NewNop()

	tests := []struct {
		name string
		emit func(msg string, kv ...any)
	}{
		{"debug records are dropped", log.Debug},
		{"info records are dropped", log.Info},
		{"warn records are dropped", log.Warn},
		{"error records are dropped", log.Error},
		{"fatal records are dropped without exiting", log.Fatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				tt.emit("region moved", "region", "orders,,m", "version", int64(3))
				tt.emit("")
				tt.emit("odd fields", "dangling")
			})
		})
	}
}

func TestOrNop(t *testing.T) {
	t.Run("nil falls back to a discarding logger", func(t *testing.T) {
		log := OrNop(nil)
		require.NotNil(t, log)
		require.NotPanics(t, func() { log.Info("publish skipped") })
	})

	t.Run("a supplied logger is returned unchanged", func(t *testing.T) {
		c := &countingLogger{}
		log := OrNop(c)
		log.Warn("stale assignment cleanup failed")

		require.Same(t, c, log.(*countingLogger))
		require.Equal(t, 1, c.calls)
	})
}

func BenchmarkNewNop(b *testing.B) {
	var log types.Logger = NewNop()

	for b.Loop() {
		log.Debug("plans published", "version", int64(7), "plans", 12)
	}
}
