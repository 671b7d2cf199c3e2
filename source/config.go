package source

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/rebalance/internal/kvutil"
	"github.com/arloliu/rebalance/types"
)

// KVConfig configures the NATS KV bucket that carries server region reports.
type KVConfig struct {
	// Bucket is the KV bucket name.
	Bucket string `yaml:"bucket"`

	// KeyPrefix is prepended to every report key.
	KeyPrefix string `yaml:"keyPrefix"`

	// ReportInterval is how often a Reporter rewrites its report.
	ReportInterval time.Duration `yaml:"reportInterval"`

	// ReportTTL is how long a report stays valid. It is used as the bucket
	// TTL, so a server that stops reporting disappears from snapshots.
	// Must be >= 2*ReportInterval to allow one missed report.
	ReportTTL time.Duration `yaml:"reportTtl"`

	// OperationTimeout bounds each individual KV operation.
	OperationTimeout time.Duration `yaml:"operationTimeout"`
}

// DefaultKVConfig returns the default report bucket configuration.
//
// Returns:
//   - KVConfig: Bucket "rebalance-reports", prefix "report", 2s interval, 6s TTL
func DefaultKVConfig() KVConfig {
	return KVConfig{
		Bucket:           "rebalance-reports",
		KeyPrefix:        "report",
		ReportInterval:   2 * time.Second,
		ReportTTL:        6 * time.Second,
		OperationTimeout: 5 * time.Second,
	}
}

// SetDefaults fills zero-valued fields with defaults.
func (c *KVConfig) SetDefaults() {
	defaults := DefaultKVConfig()
	if c.Bucket == "" {
		c.Bucket = defaults.Bucket
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = defaults.KeyPrefix
	}
	if c.ReportInterval == 0 {
		c.ReportInterval = defaults.ReportInterval
	}
	if c.ReportTTL == 0 {
		c.ReportTTL = 3 * c.ReportInterval
	}
	if c.OperationTimeout == 0 {
		c.OperationTimeout = defaults.OperationTimeout
	}
}

// Validate checks the configuration.
//
// Returns:
//   - error: types.ErrInvalidConfig describing the first invalid field, nil otherwise
func (c *KVConfig) Validate() error {
	if !kvutil.ValidToken(c.Bucket) {
		return fmt.Errorf("%w: report bucket %q is invalid", types.ErrInvalidConfig, c.Bucket)
	}
	if !kvutil.ValidToken(c.KeyPrefix) {
		return fmt.Errorf("%w: report key prefix %q is invalid", types.ErrInvalidConfig, c.KeyPrefix)
	}
	if c.ReportInterval <= 0 {
		return fmt.Errorf("%w: report interval must be positive", types.ErrInvalidConfig)
	}
	if c.ReportTTL < 2*c.ReportInterval {
		return fmt.Errorf("%w: report TTL (%v) must be >= 2*report interval (%v) to allow one missed report",
			types.ErrInvalidConfig, c.ReportTTL, c.ReportInterval)
	}
	if c.OperationTimeout < 0 {
		return fmt.Errorf("%w: report operation timeout must not be negative", types.ErrInvalidConfig)
	}

	return nil
}

// KeyValueConfig converts the configuration into a JetStream bucket config.
func (c *KVConfig) KeyValueConfig() jetstream.KeyValueConfig {
	return jetstream.KeyValueConfig{
		Bucket:      c.Bucket,
		Description: "server region reports",
		History:     1,
		TTL:         c.ReportTTL,
	}
}

// EnsureBucket creates the report bucket if needed and returns it.
//
// Parameters:
//   - ctx: Context for cancellation
//   - js: JetStream context
//   - cfg: Report bucket configuration (zero fields take defaults)
//
// Returns:
//   - jetstream.KeyValue: The report bucket
//   - error: types.ErrInvalidConfig or the bucket creation error
func EnsureBucket(ctx context.Context, js jetstream.JetStream, cfg KVConfig) (jetstream.KeyValue, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	kv, err := kvutil.EnsureBucket(ctx, js, cfg.KeyValueConfig(), kvutil.DefaultRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure report bucket: %w", err)
	}

	return kv, nil
}

func (c *KVConfig) reportKey(s types.ServerInfo) string {
	return c.KeyPrefix + "." + kvutil.ServerToken(s)
}
