package kvutil_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/rebalance/internal/kvutil"
	rbtest "github.com/arloliu/rebalance/testing"
)

func TestEnsureBucket(t *testing.T) {
	_, nc := rbtest.StartEmbeddedNATS(t)
	js := rbtest.NewJetStream(t, nc)
	ctx := context.Background()

	t.Run("creates bucket on first try", func(t *testing.T) {
		kv, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{Bucket: "plans-1", History: 1}, 3)
		require.NoError(t, err)
		require.NotNil(t, kv)
		require.Equal(t, "plans-1", kv.Bucket())
	})

	t.Run("opens existing bucket", func(t *testing.T) {
		cfg := jetstream.KeyValueConfig{Bucket: "plans-2", History: 1}
		_, err := js.CreateKeyValue(ctx, cfg)
		require.NoError(t, err)

		// Different settings make CreateKeyValue report the bucket as existing.
		cfg.History = 5
		kv, err := kvutil.EnsureBucket(ctx, js, cfg, 3)
		require.NoError(t, err)
		require.NotNil(t, kv)
	})

	t.Run("concurrent coordinators share one bucket", func(t *testing.T) {
		const coordinators = 10
		cfg := jetstream.KeyValueConfig{Bucket: "plans-3", History: 1}

		var wg sync.WaitGroup
		errs := make([]error, coordinators)
		for i := range coordinators {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = kvutil.EnsureBucket(ctx, js, cfg, 5)
			}()
		}
		wg.Wait()

		for i, err := range errs {
			require.NoError(t, err, "coordinator %d", i)
		}
	})

	t.Run("fails fast on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		time.Sleep(time.Millisecond)

		_, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{Bucket: "plans-4"}, 3)
		require.Error(t, err)
	})
}
