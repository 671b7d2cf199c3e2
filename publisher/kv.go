package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/rebalance/internal/kvutil"
	"github.com/arloliu/rebalance/internal/logger"
	"github.com/arloliu/rebalance/internal/metrics"
	"github.com/arloliu/rebalance/internal/natsutil"
	"github.com/arloliu/rebalance/types"
)

// Publish kinds recorded in metrics.
const (
	kindPlans       = "plans"
	kindAssignments = "assignments"
)

// KV publishes plans and assignments to a NATS KV bucket.
//
// KV is safe for concurrent use; publications are serialized so versions
// are assigned in publish order.
type KV struct {
	kv         jetstream.KeyValue
	cfg        Config
	keyPrefix  string // cached "prefix."
	assignPref string // cached "prefix.assign."

	mu             sync.Mutex
	currentVersion int64
	lastPublish    time.Time

	logger  types.Logger
	metrics types.PublishMetrics
}

// Compile-time assertion that KV implements PlanSink.
var _ types.PlanSink = (*KV)(nil)

// EnsureBucket creates or opens the bucket described by cfg.
//
// Parameters:
//   - ctx: Context for cancellation
//   - js: JetStream context
//   - cfg: Publisher configuration (defaults applied to a copy)
//
// Returns:
//   - jetstream.KeyValue: The bucket
//   - error: ErrInvalidConfig or the bucket creation error
func EnsureBucket(ctx context.Context, js jetstream.JetStream, cfg Config) (jetstream.KeyValue, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	kv, err := kvutil.EnsureBucket(ctx, js, cfg.KeyValueConfig(), kvutil.DefaultRetries)
	if err != nil {
		return nil, natsutil.Wrap(types.ErrPublishFailed, err)
	}

	return kv, nil
}

// NewKV creates a new KV publisher.
//
// Parameters:
//   - kv: NATS KV bucket (see EnsureBucket)
//   - cfg: Publisher configuration (zero fields take defaults)
//   - log: Logger (no-op if nil)
//   - m: Metrics collector (no-op if nil)
//
// Returns:
//   - *KV: A new publisher instance with version 0
func NewKV(kv jetstream.KeyValue, cfg Config, log types.Logger, m types.PublishMetrics) *KV {
	cfg.SetDefaults()
	log = logger.OrNop(log)
	if m == nil {
		m = metrics.NewNop()
	}

	return &KV{
		kv:         kv,
		cfg:        cfg,
		keyPrefix:  cfg.KeyPrefix + ".",
		assignPref: cfg.KeyPrefix + "." + assignKeyPrefix + ".",
		logger:     log,
		metrics:    m,
	}
}

// versioned decodes only the version of any published value.
type versioned struct {
	Version int64 `json:"version"`
}

// DiscoverHighestVersion scans the bucket for the highest published version.
//
// Keys outside the prefix and unreadable entries are skipped. An empty
// bucket is not an error.
//
// Parameters:
//   - ctx: Context for cancellation
//
// Returns:
//   - error: Nil on success, wrapped KV error on listing failure
func (p *KV) DiscoverHighestVersion(ctx context.Context) error {
	keys, err := p.keys(ctx)
	if err != nil {
		return err
	}

	highest := int64(0)
	checked := 0
	for _, key := range keys {
		if !strings.HasPrefix(key, p.keyPrefix) {
			continue
		}

		checked++
		var v versioned
		if err := p.get(ctx, key, &v); err != nil {
			p.logger.Debug("skipping unreadable key", "key", key, "error", err)
			continue
		}
		highest = max(highest, v.Version)
	}

	p.mu.Lock()
	p.currentVersion = max(p.currentVersion, highest)
	p.mu.Unlock()

	if highest > 0 {
		p.logger.Info("discovered existing publications", "highest_version", highest, "checked_keys", checked)
	} else {
		p.logger.Debug("no existing publications found", "checked_keys", checked)
	}

	return nil
}

// PublishPlans publishes a plan batch under "<prefix>.plans".
//
// An empty plan list is a no-op: the previous batch stays in place and the
// version is not incremented.
//
// Parameters:
//   - ctx: Context for cancellation
//   - plans: Moves in execution order
//
// Returns:
//   - error: ErrPublishFailed (and ErrConnectivity for network failures)
func (p *KV) PublishPlans(ctx context.Context, plans []types.RegionPlan) error {
	if len(plans) == 0 {
		p.logger.Debug("no plans to publish")
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	batch := types.PlanBatch{
		Version:   p.currentVersion + 1,
		CreatedAt: now,
		Plans:     plans,
	}

	if err := p.put(ctx, p.keyPrefix+plansKey, batch); err != nil {
		p.metrics.RecordPublish(kindPlans, false)
		return err
	}

	p.currentVersion = batch.Version
	p.lastPublish = now
	p.metrics.RecordPublish(kindPlans, true)
	p.logger.Info("plans published", "version", batch.Version, "moves", len(plans))

	return nil
}

// PublishAssignments publishes one ServerAssignment per server.
//
// With types.LifecycleBulk the map is the complete placement: every server
// entry is replaced and the assignment keys of servers no longer present
// are deleted. With types.LifecycleImmediate the map only covers orphaned
// regions and is merged into the published placement instead (see
// PublishImmediate).
//
// Servers are written in identity order. An empty map is a no-op.
//
// Parameters:
//   - ctx: Context for cancellation
//   - assignments: Map from server to its regions
//   - lifecycle: types.LifecycleBulk or types.LifecycleImmediate
//
// Returns:
//   - error: ErrPublishFailed (and ErrConnectivity for network failures)
func (p *KV) PublishAssignments(ctx context.Context, assignments map[types.ServerInfo][]types.Region, lifecycle string) error {
	if len(assignments) == 0 {
		p.logger.Info("no servers for assignment")
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if lifecycle == types.LifecycleImmediate {
		return p.mergeAssignments(ctx, assignments)
	}

	version := p.currentVersion + 1
	active := make(map[string]struct{}, len(assignments))
	for s := range assignments {
		active[p.assignPref+kvutil.ServerToken(s)] = struct{}{}
	}

	// Cleanup is best-effort: a stale key only delays a departed server's
	// removal until the next publication.
	if err := p.cleanupStale(ctx, active); err != nil {
		p.logger.Warn("stale assignment cleanup failed, continuing with publish", "error", err)
	}

	for _, s := range sortedServers(assignments) {
		value := types.ServerAssignment{
			Version:   version,
			Lifecycle: lifecycle,
			Server:    s,
			Regions:   assignments[s],
		}
		if err := p.put(ctx, p.assignPref+kvutil.ServerToken(s), value); err != nil {
			p.metrics.RecordPublish(kindAssignments, false)
			return err
		}
	}

	p.commitAssignments(version, len(assignments), lifecycle)

	return nil
}

// PublishImmediate merges an immediate assignment into the published
// placement.
//
// Each region is appended to its new server's assignment and removed from
// any other server's assignment that still lists it, such as the entry of
// a departed server. Assignments of servers not involved are left
// untouched, and no key is deleted.
//
// Parameters:
//   - ctx: Context for cancellation
//   - assignments: Map from orphaned region to its new server
//
// Returns:
//   - error: ErrPublishFailed (and ErrConnectivity for network failures)
func (p *KV) PublishImmediate(ctx context.Context, assignments map[types.Region]types.ServerInfo) error {
	if len(assignments) == 0 {
		p.logger.Debug("no regions for immediate assignment")
		return nil
	}

	byServer := make(map[types.ServerInfo][]types.Region)
	for r, s := range assignments {
		byServer[s] = append(byServer[s], r)
	}
	for s := range byServer {
		slices.SortFunc(byServer[s], types.Region.Compare)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.mergeAssignments(ctx, byServer)
}

// mergeAssignments adds regions to the published placement. Callers hold p.mu.
func (p *KV) mergeAssignments(ctx context.Context, added map[types.ServerInfo][]types.Region) error {
	current, err := p.loadAssignments(ctx)
	if err != nil {
		p.metrics.RecordPublish(kindAssignments, false)
		return err
	}

	owner := make(map[types.Region]types.ServerInfo)
	for s, regions := range added {
		for _, r := range regions {
			owner[r] = s
		}
	}

	version := p.currentVersion + 1
	changed := make(map[types.ServerInfo]types.ServerAssignment)

	// Drop reassigned regions from the servers that no longer own them.
	for s, asgn := range current {
		kept := slices.DeleteFunc(slices.Clone(asgn.Regions), func(r types.Region) bool {
			newOwner, ok := owner[r]
			return ok && newOwner != s
		})
		if len(kept) != len(asgn.Regions) {
			asgn.Regions = kept
			asgn.Version = version
			changed[s] = asgn
		}
	}

	for s, regions := range added {
		asgn, ok := changed[s]
		if !ok {
			asgn = current[s]
		}
		for _, r := range regions {
			if !slices.Contains(asgn.Regions, r) {
				asgn.Regions = append(asgn.Regions, r)
			}
		}
		asgn.Server = s
		asgn.Version = version
		asgn.Lifecycle = types.LifecycleImmediate
		changed[s] = asgn
	}

	for _, s := range sortedServers(changed) {
		if err := p.put(ctx, p.assignPref+kvutil.ServerToken(s), changed[s]); err != nil {
			p.metrics.RecordPublish(kindAssignments, false)
			return err
		}
	}

	p.commitAssignments(version, len(changed), types.LifecycleImmediate)

	return nil
}

// loadAssignments reads every published server assignment.
func (p *KV) loadAssignments(ctx context.Context) (map[types.ServerInfo]types.ServerAssignment, error) {
	keys, err := p.keys(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[types.ServerInfo]types.ServerAssignment)
	for _, key := range keys {
		if !strings.HasPrefix(key, p.assignPref) {
			continue
		}

		var asgn types.ServerAssignment
		if err := p.get(ctx, key, &asgn); err != nil {
			if natsutil.IsKeyNotFound(err) {
				continue
			}

			return nil, err
		}
		out[asgn.Server] = asgn
	}

	return out, nil
}

// commitAssignments records a successful assignment publication. Callers hold p.mu.
func (p *KV) commitAssignments(version int64, servers int, lifecycle string) {
	p.currentVersion = version
	p.lastPublish = time.Now()
	p.metrics.RecordPublish(kindAssignments, true)
	p.logger.Info("assignments published",
		"version", version,
		"servers", servers,
		"lifecycle", lifecycle)
}

func sortedServers[V any](m map[types.ServerInfo]V) []types.ServerInfo {
	servers := make([]types.ServerInfo, 0, len(m))
	for s := range m {
		servers = append(servers, s)
	}
	slices.SortFunc(servers, types.ServerInfo.Compare)

	return servers
}

// LatestPlans reads back the most recent plan batch.
//
// Returns:
//   - types.PlanBatch: The latest batch
//   - error: ErrNoPlansPublished if none exists, wrapped KV error otherwise
func (p *KV) LatestPlans(ctx context.Context) (types.PlanBatch, error) {
	var batch types.PlanBatch
	if err := p.get(ctx, p.keyPrefix+plansKey, &batch); err != nil {
		if natsutil.IsKeyNotFound(err) {
			return types.PlanBatch{}, types.ErrNoPlansPublished
		}

		return types.PlanBatch{}, err
	}

	return batch, nil
}

// Assignment reads back the published assignment of a server.
//
// Returns:
//   - types.ServerAssignment: The server's assignment
//   - bool: false if no assignment is published for the server
//   - error: wrapped KV error on read failure
func (p *KV) Assignment(ctx context.Context, server types.ServerInfo) (types.ServerAssignment, bool, error) {
	var asgn types.ServerAssignment
	if err := p.get(ctx, p.assignPref+kvutil.ServerToken(server), &asgn); err != nil {
		if natsutil.IsKeyNotFound(err) {
			return types.ServerAssignment{}, false, nil
		}

		return types.ServerAssignment{}, false, err
	}

	return asgn, true, nil
}

// CleanupAll deletes every key written by the publisher.
//
// The version counter is kept, so later publications still increase.
func (p *KV) CleanupAll(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logger.Info("cleaning up all publications from KV")

	return p.cleanupPrefix(ctx, p.keyPrefix, nil)
}

// PlansKey returns the KV key holding the latest plan batch, for executors
// that watch it directly.
func (p *KV) PlansKey() string {
	return p.keyPrefix + plansKey
}

// AssignmentKey returns the KV key holding the assignment of a server.
func (p *KV) AssignmentKey(server types.ServerInfo) string {
	return p.assignPref + kvutil.ServerToken(server)
}

// CurrentVersion returns the version of the last publication (0 if none).
func (p *KV) CurrentVersion() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.currentVersion
}

// LastPublishTime returns the time of the last successful publication.
func (p *KV) LastPublishTime() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.lastPublish
}

// cleanupStale removes assignment keys not in active.
func (p *KV) cleanupStale(ctx context.Context, active map[string]struct{}) error {
	return p.cleanupPrefix(ctx, p.assignPref, active)
}

// cleanupPrefix deletes keys under prefix that are not in keep (nil = delete all).
// Failed deletions are logged and reported together after the scan.
func (p *KV) cleanupPrefix(ctx context.Context, prefix string, keep map[string]struct{}) error {
	keys, err := p.keys(ctx)
	if err != nil {
		return err
	}

	deleted, failed := 0, 0
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if _, ok := keep[key]; ok {
			continue
		}

		if err := p.remove(ctx, key); err != nil {
			p.logger.Warn("failed to delete stale key", "key", key, "error", err)
			failed++
			continue
		}
		deleted++
	}

	if deleted > 0 {
		p.logger.Info("cleaned up stale keys", "deleted_count", deleted)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d stale keys", types.ErrDeleteFailed, failed)
	}

	return nil
}

// keys lists bucket keys; an empty bucket yields nil.
func (p *KV) keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := p.timed(ctx, "keys", func(ctx context.Context) error {
		var err error
		keys, err = p.kv.Keys(ctx)

		return err
	})
	if err != nil {
		if types.IsNoKeysFoundError(err) {
			return nil, nil
		}

		return nil, natsutil.Wrap(types.ErrPublishFailed, fmt.Errorf("failed to list KV keys: %w", err))
	}

	return keys, nil
}

func (p *KV) put(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %w", types.ErrPublishFailed, key, err)
	}

	err = p.timed(ctx, "put", func(ctx context.Context) error {
		_, err := p.kv.Put(ctx, key, data)
		return err
	})

	return natsutil.Wrap(types.ErrPublishFailed, err)
}

// get decodes the value at key into out. Missing keys return the raw
// jetstream error so callers can test natsutil.IsKeyNotFound.
func (p *KV) get(ctx context.Context, key string, out any) error {
	var entry jetstream.KeyValueEntry
	err := p.timed(ctx, "get", func(ctx context.Context) error {
		var err error
		entry, err = p.kv.Get(ctx, key)

		return err
	})
	if err != nil {
		if natsutil.IsKeyNotFound(err) {
			return err
		}

		return natsutil.Wrap(types.ErrPublishFailed, err)
	}

	if err := json.Unmarshal(entry.Value(), out); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}

	return nil
}

func (p *KV) remove(ctx context.Context, key string) error {
	err := p.timed(ctx, "delete", func(ctx context.Context) error {
		return p.kv.Delete(ctx, key)
	})

	return natsutil.Wrap(types.ErrDeleteFailed, err)
}

// timed runs fn under the configured operation timeout and records its latency.
func (p *KV) timed(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if p.cfg.OperationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.OperationTimeout)
		defer cancel()
	}

	start := time.Now()
	err := fn(ctx)
	p.metrics.RecordKVOperationDuration(op, time.Since(start).Seconds())

	return err
}
