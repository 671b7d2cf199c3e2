package publisher

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/rebalance/internal/kvutil"
	"github.com/arloliu/rebalance/types"
)

// Config configures the NATS KV bucket that receives plans and assignments.
type Config struct {
	// Bucket is the KV bucket name.
	Bucket string `yaml:"bucket"`

	// KeyPrefix is prepended to every key written by the publisher.
	KeyPrefix string `yaml:"keyPrefix"`

	// History is the number of revisions kept per key (1-64).
	History uint8 `yaml:"history"`

	// OperationTimeout bounds each individual KV operation (0 = caller context only).
	OperationTimeout time.Duration `yaml:"operationTimeout"`
}

// DefaultConfig returns the default publisher configuration.
//
// Returns:
//   - Config: Bucket "rebalance", prefix "rebalance", history 5, 5s operation timeout
func DefaultConfig() Config {
	return Config{
		Bucket:           "rebalance",
		KeyPrefix:        "rebalance",
		History:          5,
		OperationTimeout: 5 * time.Second,
	}
}

// SetDefaults fills zero-valued fields with defaults.
func (c *Config) SetDefaults() {
	defaults := DefaultConfig()
	if c.Bucket == "" {
		c.Bucket = defaults.Bucket
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = defaults.KeyPrefix
	}
	if c.History == 0 {
		c.History = defaults.History
	}
	if c.OperationTimeout == 0 {
		c.OperationTimeout = defaults.OperationTimeout
	}
}

// Validate checks the configuration.
//
// Returns:
//   - error: types.ErrInvalidConfig describing the first invalid field, nil otherwise
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("%w: publisher bucket must not be empty", types.ErrInvalidConfig)
	}
	if !kvutil.ValidToken(c.Bucket) {
		return fmt.Errorf("%w: publisher bucket %q contains invalid characters", types.ErrInvalidConfig, c.Bucket)
	}
	if !kvutil.ValidToken(c.KeyPrefix) {
		return fmt.Errorf("%w: publisher key prefix %q is invalid", types.ErrInvalidConfig, c.KeyPrefix)
	}
	if c.History == 0 || c.History > jetstream.KeyValueMaxHistory {
		return fmt.Errorf("%w: publisher history must be within [1, %d], got %d",
			types.ErrInvalidConfig, jetstream.KeyValueMaxHistory, c.History)
	}
	if c.OperationTimeout < 0 {
		return fmt.Errorf("%w: publisher operation timeout must not be negative", types.ErrInvalidConfig)
	}

	return nil
}

// KeyValueConfig converts the configuration into a JetStream bucket config.
func (c *Config) KeyValueConfig() jetstream.KeyValueConfig {
	return jetstream.KeyValueConfig{
		Bucket:      c.Bucket,
		Description: "region balancing plans and assignments",
		History:     c.History,
	}
}
