package source

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/rebalance/internal/logger"
	"github.com/arloliu/rebalance/internal/metrics"
	"github.com/arloliu/rebalance/internal/natsutil"
	"github.com/arloliu/rebalance/types"
)

// KV implements a cluster source that builds snapshots from the server
// reports written by Reporter.
//
// Every live report key becomes one server entry, including servers that
// report no regions. A region claimed by two servers (a move finished
// between their reports) is kept on the server with the newer report.
type KV struct {
	kv      jetstream.KeyValue
	cfg     KVConfig
	logger  types.Logger
	metrics types.ReportMetrics
	now     func() time.Time
}

var _ types.ClusterSource = (*KV)(nil)

// NewKV creates a report-backed cluster source.
//
// Parameters:
//   - kv: Report bucket (see EnsureBucket)
//   - cfg: Report configuration (zero fields take defaults)
//   - log: Logger (no-op if nil)
//   - m: Metrics collector (no-op if nil)
//
// Returns:
//   - *KV: Ready-to-use cluster source
func NewKV(kv jetstream.KeyValue, cfg KVConfig, log types.Logger, m types.ReportMetrics) *KV {
	cfg.SetDefaults()
	log = logger.OrNop(log)
	if m == nil {
		m = metrics.NewNop()
	}

	return &KV{
		kv:      kv,
		cfg:     cfg,
		logger:  log,
		metrics: m,
		now:     time.Now,
	}
}

// Snapshot reads every report under the key prefix and assembles them.
//
// Reports older than ReportTTL and undecodable reports are skipped. An
// empty bucket yields an empty snapshot.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//
// Returns:
//   - types.ClusterState: Assembled placement
//   - error: types.ErrSnapshotFailed (and types.ErrConnectivity for network failures)
func (s *KV) Snapshot(ctx context.Context) (types.ClusterState, error) {
	keys, err := s.keys(ctx)
	if err != nil {
		return nil, err
	}

	prefix := s.cfg.KeyPrefix + "."
	cutoff := s.now().Add(-s.cfg.ReportTTL)
	reports := make([]types.ServerReport, 0, len(keys))
	skipped := 0

	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}

		report, ok, err := s.read(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			skipped++
			continue
		}
		if report.ReportedAt.Before(cutoff) {
			s.logger.Debug("skipping expired report", "key", key, "reported_at", report.ReportedAt)
			skipped++

			continue
		}
		reports = append(reports, report)
	}

	s.metrics.RecordReportsRead(len(reports), skipped)

	return s.assemble(reports), nil
}

// assemble merges reports into a snapshot, newest report first so that it
// wins every region it claims.
func (s *KV) assemble(reports []types.ServerReport) types.ClusterState {
	slices.SortFunc(reports, func(a, b types.ServerReport) int {
		if c := b.ReportedAt.Compare(a.ReportedAt); c != 0 {
			return c
		}

		return a.Server.Compare(b.Server)
	})

	state := make(types.ClusterState, len(reports))
	owner := make(map[types.Region]types.ServerInfo)
	conflicts := 0

	for _, report := range reports {
		if _, seen := state[report.Server]; seen {
			// Older report of the same server under a colliding key.
			continue
		}

		regions := make([]types.Region, 0, len(report.Regions))
		for _, r := range report.Regions {
			if prev, taken := owner[r]; taken {
				if prev != report.Server {
					conflicts++
				}
				continue
			}
			owner[r] = report.Server
			regions = append(regions, r)
		}
		state[report.Server] = regions
	}

	if conflicts > 0 {
		s.logger.Debug("regions reported by more than one server", "conflicts", conflicts)
	}

	return state
}

// read fetches and decodes one report. Missing and undecodable entries
// return ok=false.
func (s *KV) read(ctx context.Context, key string) (types.ServerReport, bool, error) {
	var entry jetstream.KeyValueEntry
	err := s.timed(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.kv.Get(ctx, key)

		return err
	})
	if err != nil {
		if natsutil.IsKeyNotFound(err) {
			return types.ServerReport{}, false, nil
		}

		return types.ServerReport{}, false, natsutil.Wrap(types.ErrSnapshotFailed, fmt.Errorf("failed to read report %s: %w", key, err))
	}

	var report types.ServerReport
	if err := json.Unmarshal(entry.Value(), &report); err != nil {
		s.logger.Warn("skipping undecodable report", "key", key, "error", err)
		return types.ServerReport{}, false, nil
	}

	return report, true, nil
}

// keys lists bucket keys; an empty bucket yields nil.
func (s *KV) keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := s.timed(ctx, func(ctx context.Context) error {
		var err error
		keys, err = s.kv.Keys(ctx)

		return err
	})
	if err != nil {
		if types.IsNoKeysFoundError(err) {
			return nil, nil
		}

		return nil, natsutil.Wrap(types.ErrSnapshotFailed, fmt.Errorf("failed to list report keys: %w", err))
	}

	return keys, nil
}

func (s *KV) timed(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.cfg.OperationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.OperationTimeout)
		defer cancel()
	}

	return fn(ctx)
}
