package rebalance

import "github.com/prometheus/client_golang/prometheus"

// Option configures a Balancer with optional dependencies.
type Option func(*balancerOptions)

// balancerOptions holds optional Balancer configuration.
type balancerOptions struct {
	logger     Logger
	metrics    MetricsCollector
	registerer prometheus.Registerer
	bulk       BulkStrategy
	immediate  ImmediateStrategy
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewBalancer
//
// Example:
//
//	logger := zap.NewExample().Sugar()
//	b, err := rebalance.NewBalancer(&cfg, rebalance.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *balancerOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector. Takes precedence over WithPrometheus.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewBalancer
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *balancerOptions) {
		o.metrics = metrics
	}
}

// WithPrometheus records metrics into the given Prometheus registerer, using
// Config.Metrics.Namespace as metric namespace.
//
// Parameters:
//   - reg: Registerer (prometheus.DefaultRegisterer if nil)
//
// Returns:
//   - Option: Functional option for NewBalancer
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	b, err := rebalance.NewBalancer(&cfg, rebalance.WithPrometheus(reg))
func WithPrometheus(reg prometheus.Registerer) Option {
	return func(o *balancerOptions) {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		o.registerer = reg
	}
}

// WithBulkStrategy replaces the default round-robin bulk strategy.
//
// Parameters:
//   - s: BulkStrategy implementation
//
// Returns:
//   - Option: Functional option for NewBalancer
func WithBulkStrategy(s BulkStrategy) Option {
	return func(o *balancerOptions) {
		o.bulk = s
	}
}

// WithImmediateStrategy replaces the immediate strategy selected by
// Config.ImmediateStrategy.
//
// Parameters:
//   - s: ImmediateStrategy implementation
//
// Returns:
//   - Option: Functional option for NewBalancer
//
// Example:
//
//	s := strategy.NewConsistentHash(strategy.WithVirtualNodes(300))
//	b, err := rebalance.NewBalancer(&cfg, rebalance.WithImmediateStrategy(s))
func WithImmediateStrategy(s ImmediateStrategy) Option {
	return func(o *balancerOptions) {
		o.immediate = s
	}
}
