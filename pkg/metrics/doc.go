/*
Package metrics provides Prometheus metrics collection, health/readiness
reporting, and HTTP exposition for the controller.

# Metrics Catalog

Fleet:

controller_nodes_total{role,status}:
  - Gauge. Registered worker nodes by role (worker/proxy) and health.

controller_clusters_total{status}:
  - Gauge. Registered peer clusters by health.

Workflow:

controller_workflows_total:
  - Gauge. Currently active workflows.

controller_workflow_starts_total{outcome}, controller_workflow_stops_total{outcome},
controller_workflow_patches_total{outcome}:
  - Counters, outcome one of "ok"/"error".

controller_workflow_start_duration_seconds, controller_workflow_stop_duration_seconds:
  - Histograms covering lowering + dispatch + commit.

API:

controller_api_requests_total{method,status}, controller_api_request_duration_seconds{method}:
  - Ingress surface request counters and latency.

Placement:

controller_placement_duration_seconds, controller_placement_failures_total:
  - Lowering-pipeline timing and failure count.

controller_dispatch_failures_total{change_type}:
  - RequiredChange dispatch failures, labeled by concrete change type.

Link:

controller_link_instances_total{link_type}:
  - Multicast link instances allocated since start (never decremented).

Health loop:

controller_health_checks_total{target,outcome}, controller_nodes_removed_total:
  - Keep-alive probe outcomes and resulting deregistrations.

Reconciler:

controller_reconciliation_duration_seconds, controller_reconciliation_cycles_total:
  - Reconciliation cycle timing and count.

# Usage

	timer := metrics.NewTimer()
	instance, err := task.StartWorkflow(ctx, spec)
	timer.ObserveDuration(metrics.WorkflowStartDuration)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.WorkflowStartsTotal.WithLabelValues(outcome).Inc()

Collector samples internal/registry and internal/reconciler on a 15s
ticker for the gauges that have no natural call site to update from
(fleet composition, active workflow count); everything else is observed
inline by the package that owns the event.

HealthChecker tracks named component health (registry, reconciler, api)
independently of the Prometheus registry and is exposed over /health,
/ready, and /live for container liveness/readiness probes.
*/
package metrics
