package rebalance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/rebalance/internal/logger"
	"github.com/arloliu/rebalance/internal/metrics"
	"github.com/arloliu/rebalance/internal/planner"
	"github.com/arloliu/rebalance/publisher"
	"github.com/arloliu/rebalance/source"
	"github.com/arloliu/rebalance/strategy"
)

// Assignment kinds recorded in metrics.
const (
	kindBulk      = "bulk"
	kindImmediate = "immediate"
)

// Balancer computes balancing plans and region assignments.
//
// A Balancer holds no cluster state: every call works on the snapshot or
// lists it is given, so one Balancer is safe for concurrent use.
type Balancer struct {
	cfg       Config
	bulk      BulkStrategy
	immediate ImmediateStrategy
	logger    Logger
	metrics   MetricsCollector
}

// NewBalancer creates a new Balancer.
//
// Parameters:
//   - cfg: Configuration (defaults applied in place for zero fields)
//   - opts: Optional dependencies (WithLogger, WithMetrics, WithPrometheus,
//     WithBulkStrategy, WithImmediateStrategy)
//
// Returns:
//   - *Balancer: Initialized balancer
//   - error: ErrInvalidConfig or ErrUnknownStrategy for a bad configuration
//
// Example:
//
//	cfg := rebalance.DefaultConfig()
//	b, err := rebalance.NewBalancer(&cfg, rebalance.WithLogger(logger))
//	if err != nil { /* handle */ }
func NewBalancer(cfg *Config, opts ...Option) (*Balancer, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}

	// Fill in missing configuration values with defaults
	SetDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	options := &balancerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Provide safe defaults for optional dependencies to avoid nil checks everywhere
	metricsCollector := options.metrics
	if metricsCollector == nil {
		if options.registerer != nil {
			metricsCollector = metrics.NewPrometheus(options.registerer, cfg.Metrics.Namespace)
		} else {
			metricsCollector = metrics.NewNop()
		}
	}

	loggerInstance := logger.OrNop(options.logger)

	bulk := options.bulk
	if bulk == nil {
		bulk = strategy.NewRoundRobin()
	}

	immediate := options.immediate
	if immediate == nil {
		var err error
		immediate, err = cfg.immediateStrategy()
		if err != nil {
			return nil, err
		}
	}

	return &Balancer{
		cfg:       *cfg,
		bulk:      bulk,
		immediate: immediate,
		logger:    loggerInstance,
		metrics:   metricsCollector,
	}, nil
}

// BalanceCluster returns the moves that bring every server to floor(avg) or
// ceil(avg) regions.
//
// The snapshot is not modified. An empty result means nothing needs to move:
// the cluster is balanced, empty, or has fewer than two servers.
//
// Parameters:
//   - state: Placement snapshot
//
// Returns:
//   - []RegionPlan: Moves in execution order (nil when none needed)
func (b *Balancer) BalanceCluster(state ClusterState) []RegionPlan {
	plans, _ := b.BalanceClusterWithStats(state)
	return plans
}

// BalanceClusterWithStats is BalanceCluster that also reports the shape of
// the decision.
//
// Returns:
//   - []RegionPlan: Moves in execution order (nil when none needed)
//   - BalanceStats: Snapshot shape and planning outcome
func (b *Balancer) BalanceClusterWithStats(state ClusterState) ([]RegionPlan, BalanceStats) {
	start := time.Now()
	plans, stats := planner.Plan(state)
	elapsed := time.Since(start)

	b.metrics.RecordBalanceDuration(elapsed.Seconds())
	b.metrics.RecordClusterShape(stats.Servers, stats.Regions)
	b.metrics.RecordOutOfBand(stats.Overloaded, stats.Underloaded)
	b.metrics.RecordPlans(len(plans))

	if stats.StrictBalanced != stats.LooseBalanced {
		b.logger.Warn("strict and loose balance checks disagree",
			"strict", stats.StrictBalanced,
			"loose", stats.LooseBalanced,
			"servers", stats.Servers,
			"regions", stats.Regions)
	}

	if len(plans) == 0 {
		b.logger.Debug("no region moves needed",
			"servers", stats.Servers,
			"regions", stats.Regions,
			"balanced", stats.StrictBalanced)

		return nil, stats
	}

	b.logger.Info("balance plan computed",
		"servers", stats.Servers,
		"regions", stats.Regions,
		"floor", stats.FloorAvg,
		"ceil", stats.CeilAvg,
		"overloaded", stats.Overloaded,
		"underloaded", stats.Underloaded,
		"moves", len(plans),
		"duration", elapsed)

	return plans, stats
}

// BulkAssignment distributes regions over servers with no prior placement.
//
// With the default round-robin strategy every server gets an entry and
// loads differ by at most one.
//
// Parameters:
//   - regions: Regions to place
//   - servers: Candidate servers
//
// Returns:
//   - map[ServerInfo][]Region: Assignment (nil when there are no servers)
func (b *Balancer) BulkAssignment(regions []Region, servers []ServerInfo) map[ServerInfo][]Region {
	assignments, err := b.bulk.Assign(regions, servers)
	if err != nil {
		b.logAssignError(kindBulk, err, len(regions), len(servers))
		b.metrics.RecordAssignment(kindBulk, 0, len(regions))

		return nil
	}

	assigned := 0
	for _, rs := range assignments {
		assigned += len(rs)
	}
	b.metrics.RecordAssignment(kindBulk, assigned, max(0, len(regions)-assigned))
	b.logger.Debug("bulk assignment computed", "regions", len(regions), "servers", len(assignments))

	return assignments
}

// ImmediateAssignment places regions that currently have no server.
//
// Every region is mapped to one of the servers; balance is not guaranteed
// and is left to a later BalanceCluster call. With no servers every region
// is omitted from the result.
//
// Parameters:
//   - regions: Regions without a current owner
//   - servers: Candidate servers
//
// Returns:
//   - map[Region]ServerInfo: Assignment (empty, never nil)
func (b *Balancer) ImmediateAssignment(regions []Region, servers []ServerInfo) map[Region]ServerInfo {
	assignments, err := b.immediate.Assign(regions, servers)
	if err != nil {
		b.logAssignError(kindImmediate, err, len(regions), len(servers))
		b.metrics.RecordAssignment(kindImmediate, 0, len(regions))

		return map[Region]ServerInfo{}
	}
	if assignments == nil {
		assignments = map[Region]ServerInfo{}
	}

	unassigned := 0
	for _, r := range regions {
		if _, ok := assignments[r]; !ok {
			unassigned++
		}
	}
	if unassigned > 0 {
		b.logger.Warn("immediate strategy left regions unassigned", "unassigned", unassigned, "regions", len(regions))
	}
	b.metrics.RecordAssignment(kindImmediate, len(regions)-unassigned, unassigned)

	return assignments
}

// Rebalance runs one coordination round: take a snapshot from src, compute
// plans, and hand them to sink.
//
// Nothing is published when the cluster is already balanced.
//
// Parameters:
//   - ctx: Context for cancellation
//   - src: Snapshot provider
//   - sink: Plan executor
//
// Returns:
//   - []RegionPlan: The plans handed to sink (nil when none were needed)
//   - error: ErrSnapshotFailed or ErrPublishFailed wrapping the collaborator error
func (b *Balancer) Rebalance(ctx context.Context, src ClusterSource, sink PlanSink) ([]RegionPlan, error) {
	if src == nil {
		return nil, ErrClusterSourceRequired
	}
	if sink == nil {
		return nil, ErrPlanSinkRequired
	}

	state, err := src.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotFailed, err)
	}

	plans := b.BalanceCluster(state)
	if len(plans) == 0 {
		return nil, nil
	}

	if err := sink.PublishPlans(ctx, plans); err != nil {
		b.logger.Error("failed to publish plans", "moves", len(plans), "error", err)
		if errors.Is(err, ErrPublishFailed) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return plans, nil
}

// NewPublisher opens the configured KV bucket and returns a publisher that
// shares this Balancer's logger and metrics.
//
// The publisher's version counter is recovered from the bucket, so a new
// coordinator continues where the previous one stopped.
//
// Parameters:
//   - ctx: Context for bucket creation and version discovery
//   - js: JetStream context
//
// Returns:
//   - *publisher.KV: Ready-to-use PlanSink
//   - error: Bucket or discovery error
func (b *Balancer) NewPublisher(ctx context.Context, js jetstream.JetStream) (*publisher.KV, error) {
	kv, err := publisher.EnsureBucket(ctx, js, b.cfg.Publisher)
	if err != nil {
		return nil, err
	}

	p := publisher.NewKV(kv, b.cfg.Publisher, b.logger, b.metrics)
	if err := p.DiscoverHighestVersion(ctx); err != nil {
		return nil, err
	}

	return p, nil
}

// NewKVSource opens the configured report bucket and returns a cluster
// source that assembles snapshots from server reports.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - js: JetStream context
//
// Returns:
//   - *source.KV: Ready-to-use ClusterSource
//   - error: Bucket error
func (b *Balancer) NewKVSource(ctx context.Context, js jetstream.JetStream) (*source.KV, error) {
	kv, err := source.EnsureBucket(ctx, js, b.cfg.Source)
	if err != nil {
		return nil, err
	}

	return source.NewKV(kv, b.cfg.Source, b.logger, b.metrics), nil
}

func (b *Balancer) logAssignError(kind string, err error, regions, servers int) {
	if errors.Is(err, ErrNoServers) {
		b.logger.Debug("no servers for assignment", "kind", kind, "regions", regions)
		return
	}

	b.logger.Error("assignment strategy failed", "kind", kind, "regions", regions, "servers", servers, "error", err)
}
