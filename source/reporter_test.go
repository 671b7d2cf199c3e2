package source

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/rebalance/internal/kvutil"
	rbtest "github.com/arloliu/rebalance/testing"
	"github.com/arloliu/rebalance/types"
)

var reportServer = types.ServerInfo{Host: "rs-1.example.com", Port: 16020, StartCode: 1700000000}

func mockRegions(n int) []types.Region {
	state := rbtest.MockCluster(n)
	return state[state.Servers()[0]]
}

// openRegions is a concurrency-safe stand-in for a region server's open set.
type openRegions struct {
	mu      sync.Mutex
	regions []types.Region
}

func (o *openRegions) get() []types.Region {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.regions
}

func (o *openRegions) set(regions []types.Region) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.regions = regions
}

func TestReporter_Start(t *testing.T) {
	t.Run("writes a report immediately", func(t *testing.T) {
		_, nc := rbtest.StartEmbeddedNATS(t)
		kv := rbtest.CreateJetStreamKV(t, nc, "test-report-start-1")
		open := &openRegions{regions: mockRegions(3)}

		r := NewReporter(kv, KVConfig{}, reportServer, open.get, rbtest.NewTestLogger(t), nil)
		require.NoError(t, r.Start(t.Context()))
		require.True(t, r.IsStarted())

		entry, err := kv.Get(t.Context(), "report."+kvutil.ServerToken(reportServer))
		require.NoError(t, err)

		var report types.ServerReport
		require.NoError(t, json.Unmarshal(entry.Value(), &report))
		require.Equal(t, reportServer, report.Server)
		require.Equal(t, open.get(), report.Regions)
		require.False(t, report.ReportedAt.IsZero())

		require.NoError(t, r.Stop())
	})

	t.Run("returns error without regions function", func(t *testing.T) {
		_, nc := rbtest.StartEmbeddedNATS(t)
		kv := rbtest.CreateJetStreamKV(t, nc, "test-report-start-2")

		r := NewReporter(kv, KVConfig{}, reportServer, nil, nil, nil)
		require.ErrorIs(t, r.Start(t.Context()), ErrNoRegionsFunc)
		require.False(t, r.IsStarted())
	})

	t.Run("returns error if already started", func(t *testing.T) {
		_, nc := rbtest.StartEmbeddedNATS(t)
		kv := rbtest.CreateJetStreamKV(t, nc, "test-report-start-3")

		r := NewReporter(kv, KVConfig{}, reportServer, func() []types.Region { return nil }, nil, nil)
		require.NoError(t, r.Start(t.Context()))
		require.ErrorIs(t, r.Start(t.Context()), ErrReporterAlreadyStarted)
		require.NoError(t, r.Stop())
	})
}

func TestReporter_Stop(t *testing.T) {
	t.Run("deletes the report", func(t *testing.T) {
		_, nc := rbtest.StartEmbeddedNATS(t)
		kv := rbtest.CreateJetStreamKV(t, nc, "test-report-stop-1")

		r := NewReporter(kv, KVConfig{}, reportServer, func() []types.Region { return nil }, nil, nil)
		require.NoError(t, r.Start(t.Context()))
		require.NoError(t, r.Stop())
		require.False(t, r.IsStarted())

		_, err := kv.Get(t.Context(), "report."+kvutil.ServerToken(reportServer))
		require.Error(t, err)
	})

	t.Run("returns error if not started", func(t *testing.T) {
		r := NewReporter(nil, KVConfig{}, reportServer, nil, nil, nil)
		require.ErrorIs(t, r.Stop(), ErrReporterNotStarted)
	})

	t.Run("can be restarted", func(t *testing.T) {
		_, nc := rbtest.StartEmbeddedNATS(t)
		kv := rbtest.CreateJetStreamKV(t, nc, "test-report-stop-3")

		r := NewReporter(kv, KVConfig{}, reportServer, func() []types.Region { return nil }, nil, nil)
		require.NoError(t, r.Start(t.Context()))
		require.NoError(t, r.Stop())
		require.NoError(t, r.Start(t.Context()))
		require.NoError(t, r.Stop())
	})
}

func TestReporter_PeriodicReports(t *testing.T) {
	_, nc := rbtest.StartEmbeddedNATS(t)
	kv := rbtest.CreateJetStreamKV(t, nc, "test-report-periodic")
	open := &openRegions{}

	cfg := KVConfig{ReportInterval: 50 * time.Millisecond}
	r := NewReporter(kv, cfg, reportServer, open.get, rbtest.NewTestLogger(t), nil)
	require.NoError(t, r.Start(t.Context()))
	defer func() { require.NoError(t, r.Stop()) }()

	regions := mockRegions(2)
	open.set(regions)

	key := "report." + kvutil.ServerToken(reportServer)
	require.Eventually(t, func() bool {
		entry, err := kv.Get(t.Context(), key)
		if err != nil {
			return false
		}
		var report types.ServerReport
		if err := json.Unmarshal(entry.Value(), &report); err != nil {
			return false
		}

		return len(report.Regions) == len(regions)
	}, 2*time.Second, 20*time.Millisecond)
}

func TestReporter_ReportNow(t *testing.T) {
	_, nc := rbtest.StartEmbeddedNATS(t)
	kv := rbtest.CreateJetStreamKV(t, nc, "test-report-now")
	open := &openRegions{}

	r := NewReporter(kv, KVConfig{ReportInterval: time.Hour}, reportServer, open.get, nil, nil)
	require.ErrorIs(t, r.ReportNow(t.Context()), ErrReporterNotStarted)

	require.NoError(t, r.Start(t.Context()))
	defer func() { require.NoError(t, r.Stop()) }()

	first, err := kv.Get(t.Context(), "report."+kvutil.ServerToken(reportServer))
	require.NoError(t, err)

	open.set([]types.Region{{Table: "t", StartKey: "a", EndKey: "b"}})
	require.NoError(t, r.ReportNow(t.Context()))

	second, err := kv.Get(t.Context(), "report."+kvutil.ServerToken(reportServer))
	require.NoError(t, err)
	require.Greater(t, second.Revision(), first.Revision())
}
