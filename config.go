package rebalance

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/rebalance/publisher"
	"github.com/arloliu/rebalance/source"
	"github.com/arloliu/rebalance/strategy"
)

// Immediate strategy names accepted in Config.ImmediateStrategy.
const (
	StrategyLeastLoaded    = "least-loaded"
	StrategyConsistentHash = "consistent-hash"
)

// ConsistentHashConfig configures the consistent-hash immediate strategy.
type ConsistentHashConfig struct {
	// VirtualNodes is the number of ring positions per server.
	// Higher values spread regions more evenly at the cost of memory.
	VirtualNodes int `yaml:"virtualNodes"`

	// HashSeed seeds the ring hash. Coordinators that must agree on
	// placements need the same seed.
	HashSeed uint64 `yaml:"hashSeed"`
}

// MetricsConfig configures Prometheus metrics (see WithPrometheus).
type MetricsConfig struct {
	// Namespace prefixes every metric name.
	Namespace string `yaml:"namespace"`
}

// Config is the configuration for the Balancer.
//
// All duration fields accept standard Go duration strings like "5s".
type Config struct {
	// ImmediateStrategy selects the strategy for orphaned regions:
	// "least-loaded" (default) or "consistent-hash".
	// Ignored when WithImmediateStrategy is given.
	ImmediateStrategy string `yaml:"immediateStrategy"`

	// ConsistentHash configures the "consistent-hash" immediate strategy.
	ConsistentHash ConsistentHashConfig `yaml:"consistentHash"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `yaml:"metrics"`

	// Publisher configures the NATS KV publisher created by NewPublisher.
	Publisher publisher.Config `yaml:"publisher"`

	// Source configures the report bucket read by NewKVSource.
	Source source.KVConfig `yaml:"source"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		ImmediateStrategy: StrategyLeastLoaded,
		ConsistentHash: ConsistentHashConfig{
			VirtualNodes: strategy.DefaultVirtualNodes,
			HashSeed:     0,
		},
		Metrics: MetricsConfig{
			Namespace: "rebalance",
		},
		Publisher: publisher.DefaultConfig(),
		Source:    source.DefaultKVConfig(),
	}
}

// SetDefaults fills in missing configuration values with defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.ImmediateStrategy == "" {
		cfg.ImmediateStrategy = defaults.ImmediateStrategy
	}
	if cfg.ConsistentHash.VirtualNodes == 0 {
		cfg.ConsistentHash.VirtualNodes = defaults.ConsistentHash.VirtualNodes
	}
	// Note: HashSeed of 0 is valid (unseeded hash), so we don't apply default
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = defaults.Metrics.Namespace
	}
	cfg.Publisher.SetDefaults()
	cfg.Source.SetDefaults()
}

// Validate checks configuration constraints.
//
// Returns:
//   - error: ErrInvalidConfig or ErrUnknownStrategy describing the problem, nil if valid
func (cfg *Config) Validate() error {
	switch cfg.ImmediateStrategy {
	case StrategyLeastLoaded, StrategyConsistentHash:
	default:
		return fmt.Errorf("%w: immediate strategy %q (want %q or %q)",
			ErrUnknownStrategy, cfg.ImmediateStrategy, StrategyLeastLoaded, StrategyConsistentHash)
	}

	if cfg.ConsistentHash.VirtualNodes <= 0 {
		return fmt.Errorf("%w: consistent hash virtual nodes must be > 0, got %d",
			ErrInvalidConfig, cfg.ConsistentHash.VirtualNodes)
	}

	if err := cfg.Publisher.Validate(); err != nil {
		return err
	}

	return cfg.Source.Validate()
}

// LoadConfig parses a YAML configuration, applies defaults and validates it.
//
// Unknown keys are rejected so that typos do not silently fall back to defaults.
//
// Parameters:
//   - data: YAML document (empty input yields DefaultConfig)
//
// Returns:
//   - Config: Parsed configuration
//   - error: ErrInvalidConfig on parse failure, or the Validate error
//
// Example:
//
//	data, _ := os.ReadFile("rebalance.yaml")
//	cfg, err := rebalance.LoadConfig(data)
func LoadConfig(data []byte) (Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// immediateStrategy builds the immediate strategy named by the configuration.
func (cfg *Config) immediateStrategy() (ImmediateStrategy, error) {
	switch cfg.ImmediateStrategy {
	case StrategyLeastLoaded:
		return strategy.NewLeastLoaded(), nil
	case StrategyConsistentHash:
		return strategy.NewConsistentHash(
			strategy.WithVirtualNodes(cfg.ConsistentHash.VirtualNodes),
			strategy.WithHashSeed(cfg.ConsistentHash.HashSeed),
		), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, cfg.ImmediateStrategy)
	}
}
