package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/rebalance/types"
)

// Assignment and publish result label values.
const (
	resultAssigned   = "assigned"
	resultUnassigned = "unassigned"
	resultSuccess    = "success"
	resultFailure    = "failure"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use, so constructing
// a PrometheusCollector never panics on duplicate registration by itself.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	// Balance metrics
	balanceDuration prometheus.Histogram
	plans           prometheus.Counter
	balanceCalls    *prometheus.CounterVec
	servers         prometheus.Gauge
	regions         prometheus.Gauge
	outOfBand       *prometheus.GaugeVec

	// Assignment metrics
	assignments *prometheus.CounterVec

	// Publish metrics
	publishes  *prometheus.CounterVec
	kvDuration *prometheus.HistogramVec

	// Report metrics
	reports      *prometheus.CounterVec
	reportsLive  prometheus.Gauge
	reportsSkips prometheus.Counter
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "rebalance" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "rebalance"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.balanceDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "balancer",
			Name:      "duration_seconds",
			Help:      "Time spent computing a balance plan in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100us .. ~26s
		})

		p.plans = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "balancer",
			Name:      "plans_total",
			Help:      "Total region moves emitted by the balancer.",
		})

		p.balanceCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "balancer",
			Name:      "runs_total",
			Help:      "Total balancing calls by whether any move was needed.",
		}, []string{"moved"})

		p.servers = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "cluster",
			Name:      "servers",
			Help:      "Number of servers in the last balanced snapshot.",
		})

		p.regions = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "cluster",
			Name:      "regions",
			Help:      "Number of regions in the last balanced snapshot.",
		})

		p.outOfBand = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "cluster",
			Name:      "out_of_band_servers",
			Help:      "Servers outside [floor(avg), ceil(avg)] in the last snapshot by direction (over, under).",
		}, []string{"direction"})

		p.assignments = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "assignment",
			Name:      "regions_total",
			Help:      "Total regions handled by assignment calls by kind and result (assigned, unassigned).",
		}, []string{"kind", "result"})

		p.publishes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "publisher",
			Name:      "publish_total",
			Help:      "Total publish attempts by kind and result (success, failure).",
		}, []string{"kind", "result"})

		p.kvDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "publisher",
			Name:      "kv_operation_duration_seconds",
			Help:      "Latency of NATS KV operations in seconds by operation.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~2s
		}, []string{"operation"})

		p.reports = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "source",
			Name:      "reports_total",
			Help:      "Total number of server region reports written by result.",
		}, []string{"result"})

		p.reportsLive = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "source",
			Name:      "live_reports",
			Help:      "Number of server reports used in the last snapshot.",
		})

		p.reportsSkips = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "source",
			Name:      "skipped_reports_total",
			Help:      "Total number of expired or undecodable server reports ignored.",
		})

		p.reg.MustRegister(p.balanceDuration)
		p.reg.MustRegister(p.plans)
		p.reg.MustRegister(p.balanceCalls)
		p.reg.MustRegister(p.servers)
		p.reg.MustRegister(p.regions)
		p.reg.MustRegister(p.outOfBand)
		p.reg.MustRegister(p.assignments)
		p.reg.MustRegister(p.publishes)
		p.reg.MustRegister(p.kvDuration)
		p.reg.MustRegister(p.reports)
		p.reg.MustRegister(p.reportsLive)
		p.reg.MustRegister(p.reportsSkips)
	})
}

// BalanceMetrics implementation

// RecordBalanceDuration observes the time taken to compute a plan.
func (p *PrometheusCollector) RecordBalanceDuration(duration float64) {
	p.ensureRegistered()
	p.balanceDuration.Observe(duration)
}

// RecordClusterShape sets the server and region gauges.
func (p *PrometheusCollector) RecordClusterShape(servers, regions int) {
	p.ensureRegistered()
	p.servers.Set(float64(servers))
	p.regions.Set(float64(regions))
}

// RecordOutOfBand sets the out-of-band gauges.
func (p *PrometheusCollector) RecordOutOfBand(overloaded, underloaded int) {
	p.ensureRegistered()
	p.outOfBand.WithLabelValues("over").Set(float64(overloaded))
	p.outOfBand.WithLabelValues("under").Set(float64(underloaded))
}

// RecordPlans counts one balancing call and the moves it emitted.
func (p *PrometheusCollector) RecordPlans(count int) {
	p.ensureRegistered()
	p.plans.Add(float64(count))
	p.balanceCalls.WithLabelValues(strconv.FormatBool(count > 0)).Inc()
}

// AssignmentMetrics implementation

// RecordAssignment adds assigned and unassigned region counts for the kind.
func (p *PrometheusCollector) RecordAssignment(kind string, assigned, unassigned int) {
	p.ensureRegistered()
	p.assignments.WithLabelValues(kind, resultAssigned).Add(float64(assigned))
	p.assignments.WithLabelValues(kind, resultUnassigned).Add(float64(unassigned))
}

// PublishMetrics implementation

// RecordPublish counts a publish attempt by kind and result.
func (p *PrometheusCollector) RecordPublish(kind string, success bool) {
	p.ensureRegistered()
	result := resultSuccess
	if !success {
		result = resultFailure
	}
	p.publishes.WithLabelValues(kind, result).Inc()
}

// RecordKVOperationDuration observes a KV operation latency.
func (p *PrometheusCollector) RecordKVOperationDuration(operation string, duration float64) {
	p.ensureRegistered()
	p.kvDuration.WithLabelValues(operation).Observe(duration)
}

// ReportMetrics implementation

// RecordReport counts a report write by result.
func (p *PrometheusCollector) RecordReport(success bool) {
	p.ensureRegistered()
	result := resultSuccess
	if !success {
		result = resultFailure
	}
	p.reports.WithLabelValues(result).Inc()
}

// RecordReportsRead sets the live report gauge and counts skipped reports.
func (p *PrometheusCollector) RecordReportsRead(live, skipped int) {
	p.ensureRegistered()
	p.reportsLive.Set(float64(live))
	p.reportsSkips.Add(float64(skipped))
}
