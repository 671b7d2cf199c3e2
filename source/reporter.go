package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/rebalance/internal/logger"
	"github.com/arloliu/rebalance/internal/metrics"
	"github.com/arloliu/rebalance/internal/natsutil"
	"github.com/arloliu/rebalance/types"
)

// Common errors for reporter operations.
var (
	ErrReporterNotStarted     = errors.New("reporter not started")
	ErrReporterAlreadyStarted = errors.New("reporter already started")
	ErrNoRegionsFunc          = errors.New("regions function not set")
)

// RegionsFunc returns the regions a server currently has open.
//
// It is called from the reporter goroutine and must be safe for concurrent use.
type RegionsFunc func() []types.Region

// Reporter periodically writes the regions hosted by one server to NATS KV.
//
// The report key expires with the bucket TTL, so a server that crashes
// drops out of KV snapshots after ReportTTL without any explicit cleanup.
// A clean Stop deletes the key right away.
type Reporter struct {
	kv      jetstream.KeyValue
	cfg     KVConfig
	server  types.ServerInfo
	regions RegionsFunc
	logger  types.Logger
	metrics types.ReportMetrics

	mu      sync.Mutex
	started bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	ticker  *time.Ticker
}

// NewReporter creates a reporter for one server.
//
// Parameters:
//   - kv: Report bucket (see EnsureBucket)
//   - cfg: Report configuration (zero fields take defaults)
//   - server: Identity of the reporting server
//   - regions: Callback returning the currently open regions
//   - log: Logger (no-op if nil)
//   - m: Metrics collector (no-op if nil)
//
// Returns:
//   - *Reporter: New reporter, not yet started
//
// Example:
//
//	kv, _ := source.EnsureBucket(ctx, js, source.DefaultKVConfig())
//	r := source.NewReporter(kv, cfg, self, regionServer.OpenRegions, logger, nil)
//	if err := r.Start(ctx); err != nil { /* handle */ }
//	defer r.Stop()
func NewReporter(kv jetstream.KeyValue, cfg KVConfig, server types.ServerInfo, regions RegionsFunc, log types.Logger, m types.ReportMetrics) *Reporter {
	cfg.SetDefaults()
	log = logger.OrNop(log)
	if m == nil {
		m = metrics.NewNop()
	}

	return &Reporter{
		kv:      kv,
		cfg:     cfg,
		server:  server,
		regions: regions,
		logger:  log,
		metrics: m,
	}
}

// Start writes the first report immediately, then rewrites it every
// ReportInterval until Stop is called.
//
// Parameters:
//   - ctx: Context for the initial report
//
// Returns:
//   - error: ErrReporterAlreadyStarted, ErrNoRegionsFunc, or the initial report error
func (r *Reporter) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return ErrReporterAlreadyStarted
	}
	if r.regions == nil {
		return ErrNoRegionsFunc
	}

	if err := r.report(ctx); err != nil {
		return fmt.Errorf("failed to write initial report: %w", err)
	}

	r.started = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	r.ticker = time.NewTicker(r.cfg.ReportInterval)

	go r.reportLoop(r.ticker, r.stopCh, r.doneCh)

	return nil
}

// Stop stops reporting and deletes the report key.
//
// Blocks until the reporter goroutine exits. Deleting the key removes the
// server from the next snapshot instead of waiting for the TTL.
//
// Returns:
//   - error: ErrReporterNotStarted if not running, or the delete error
func (r *Reporter) Stop() error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return ErrReporterNotStarted
	}

	r.ticker.Stop()
	close(r.stopCh)
	doneCh := r.doneCh
	r.started = false
	r.mu.Unlock()

	<-doneCh

	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.OperationTimeout)
	defer cancel()

	if err := r.kv.Delete(ctx, r.cfg.reportKey(r.server)); err != nil {
		return fmt.Errorf("stopped but failed to delete report: %w", err)
	}

	return nil
}

// ReportNow writes a report outside the regular interval, for example right
// after the server opened or closed a region.
//
// Returns:
//   - error: ErrReporterNotStarted if not running, or the write error
func (r *Reporter) ReportNow(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return ErrReporterNotStarted
	}

	return r.report(ctx)
}

// Server returns the identity of the reporting server.
func (r *Reporter) Server() types.ServerInfo {
	return r.server
}

// IsStarted returns whether the reporter is currently running.
func (r *Reporter) IsStarted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.started
}

func (r *Reporter) reportLoop(ticker *time.Ticker, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), r.cfg.OperationTimeout)
			r.mu.Lock()
			err := r.report(ctx)
			r.mu.Unlock()
			cancel()

			if err != nil {
				r.logger.Warn("failed to write region report", "server", r.server, "error", err)
			}
		}
	}
}

// report writes one report. Callers hold r.mu.
func (r *Reporter) report(ctx context.Context) error {
	value := types.ServerReport{
		Server:     r.server,
		Regions:    slices.Clone(r.regions()),
		ReportedAt: time.Now(),
	}

	data, err := json.Marshal(value)
	if err != nil {
		r.metrics.RecordReport(false)
		return fmt.Errorf("failed to marshal report for %s: %w", r.server, err)
	}

	if _, err := r.kv.Put(ctx, r.cfg.reportKey(r.server), data); err != nil {
		r.metrics.RecordReport(false)
		return natsutil.Wrap(types.ErrPublishFailed, fmt.Errorf("failed to write report for %s: %w", r.server, err))
	}
	r.metrics.RecordReport(true)

	return nil
}
