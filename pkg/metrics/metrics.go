package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Fleet metrics
	NodesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "controller_nodes_total",
			Help: "Total number of registered worker nodes by role and health",
		},
		[]string{"role", "status"},
	)

	ClustersTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "controller_clusters_total",
			Help: "Total number of registered peer clusters by health",
		},
		[]string{"status"},
	)

	// Workflow metrics
	WorkflowsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "controller_workflows_total",
			Help: "Total number of active workflows",
		},
	)

	WorkflowStartsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "controller_workflow_starts_total",
			Help: "Total number of start_workflow attempts by outcome",
		},
		[]string{"outcome"},
	)

	WorkflowStopsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "controller_workflow_stops_total",
			Help: "Total number of stop_workflow attempts by outcome",
		},
		[]string{"outcome"},
	)

	WorkflowPatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "controller_workflow_patches_total",
			Help: "Total number of patch_workflow attempts by outcome",
		},
		[]string{"outcome"},
	)

	WorkflowStartDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "controller_workflow_start_duration_seconds",
			Help:    "Time taken to lower, dispatch, and commit a new workflow",
			Buckets: prometheus.DefBuckets,
		},
	)

	WorkflowStopDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "controller_workflow_stop_duration_seconds",
			Help:    "Time taken to unwind and dispatch a workflow's stop changes",
			Buckets: prometheus.DefBuckets,
		},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "controller_api_requests_total",
			Help: "Total number of ingress API requests by method and status",
		},
		[]string{"method", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "controller_api_request_duration_seconds",
			Help:    "Ingress API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Placement/lowering metrics
	PlacementDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "controller_placement_duration_seconds",
			Help:    "Time taken to run the logical-to-physical lowering pipeline",
			Buckets: prometheus.DefBuckets,
		},
	)

	PlacementFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "controller_placement_failures_total",
			Help: "Total number of lowering-pipeline failures",
		},
	)

	DispatchFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "controller_dispatch_failures_total",
			Help: "Total number of RequiredChange dispatch failures by change type",
		},
		[]string{"change_type"},
	)

	// Link/multicast metrics
	LinkInstancesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "controller_link_instances_total",
			Help: "Total number of multicast link instances allocated by link type",
		},
		[]string{"link_type"},
	)

	// Health-loop metrics
	HealthChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "controller_health_checks_total",
			Help: "Total number of node/cluster keep-alive probes by outcome",
		},
		[]string{"target", "outcome"},
	)

	NodesRemovedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "controller_nodes_removed_total",
			Help: "Total number of worker nodes deregistered after a failed keep-alive",
		},
	)

	// Reconciler metrics
	ReconciliationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "controller_reconciliation_duration_seconds",
			Help:    "Time taken for a reconciliation cycle (diff + dispatch + commit) in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReconciliationCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "controller_reconciliation_cycles_total",
			Help: "Total number of reconciliation cycles completed",
		},
	)
)

func init() {
	prometheus.MustRegister(NodesTotal)
	prometheus.MustRegister(ClustersTotal)
	prometheus.MustRegister(WorkflowsTotal)
	prometheus.MustRegister(WorkflowStartsTotal)
	prometheus.MustRegister(WorkflowStopsTotal)
	prometheus.MustRegister(WorkflowPatchesTotal)
	prometheus.MustRegister(WorkflowStartDuration)
	prometheus.MustRegister(WorkflowStopDuration)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
	prometheus.MustRegister(PlacementDuration)
	prometheus.MustRegister(PlacementFailuresTotal)
	prometheus.MustRegister(DispatchFailuresTotal)
	prometheus.MustRegister(LinkInstancesTotal)
	prometheus.MustRegister(HealthChecksTotal)
	prometheus.MustRegister(NodesRemovedTotal)
	prometheus.MustRegister(ReconciliationDuration)
	prometheus.MustRegister(ReconciliationCyclesTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
