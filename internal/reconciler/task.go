package reconciler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nimbusmesh/controller/internal/ir"
	"github.com/nimbusmesh/controller/internal/ir/transform"
	"github.com/nimbusmesh/controller/internal/ir/workflow"
	"github.com/nimbusmesh/controller/internal/link"
	"github.com/nimbusmesh/controller/internal/registry"
	"github.com/nimbusmesh/controller/pkg/log"
	"github.com/nimbusmesh/controller/pkg/metrics"
)

// request is the sum type carried over ControllerTask's single channel.
type request interface{ isRequest() }

type startRequest struct {
	spec ir.SpawnWorkflowRequest
	resp chan startResult
}
type startResult struct {
	instance ir.WorkflowInstance
	err      *ir.ResponseError
}

type stopRequest struct {
	id   ir.WorkflowId
	resp chan error
}

type listRequest struct {
	resp chan []ir.WorkflowInstance
}

type patchRequest struct {
	req  ir.PatchRequest
	resp chan error
}

type nodeRemovalRequest struct{ dead map[ir.NodeId]struct{} }
type clusterRemovalRequest struct{ dead map[ir.NodeId]struct{} }

func (startRequest) isRequest()          {}
func (stopRequest) isRequest()           {}
func (listRequest) isRequest()           {}
func (patchRequest) isRequest()          {}
func (nodeRemovalRequest) isRequest()    {}
func (clusterRemovalRequest) isRequest() {}

// ControllerTask owns every ActiveWorkflow and serializes all mutation
// through main_loop's select — the registry and link registries it holds
// are safe to call concurrently themselves, but the workflow table is
// touched only from this one goroutine.
type ControllerTask struct {
	registry *registry.Registry
	links    *link.Registry
	requests chan request
	logger   zerolog.Logger

	workflows map[ir.WorkflowId]*workflow.ManagedWorkflow
}

// New constructs a ControllerTask. Run must be started in its own
// goroutine before any request is sent.
func New(reg *registry.Registry, links *link.Registry) *ControllerTask {
	return &ControllerTask{
		registry:  reg,
		links:     links,
		requests:  make(chan request, 64),
		logger:    log.WithComponent("reconciler"),
		workflows: make(map[ir.WorkflowId]*workflow.ManagedWorkflow),
	}
}

// Run is the main_loop: it drains requests until ctx is canceled.
func (t *ControllerTask) Run(ctx context.Context) {
	t.logger.Info().Msg("reconciler started")
	for {
		select {
		case <-ctx.Done():
			t.logger.Info().Msg("reconciler stopped")
			return
		case req := <-t.requests:
			t.handle(ctx, req)
		}
	}
}

func (t *ControllerTask) handle(ctx context.Context, req request) {
	switch r := req.(type) {
	case startRequest:
		instance, respErr := t.startWorkflow(ctx, r.spec)
		r.resp <- startResult{instance: instance, err: respErr}
	case stopRequest:
		r.resp <- t.stopWorkflow(ctx, r.id)
	case listRequest:
		r.resp <- t.listWorkflows()
	case patchRequest:
		r.resp <- t.patchWorkflow(ctx, r.req)
	case nodeRemovalRequest:
		t.handleNodeRemoval(ctx, r.dead)
	case clusterRemovalRequest:
		t.handleClusterRemoval(ctx, r.dead)
	}
}

// NodesRemoved implements registry.RemovalHandler, forwarding dead-node
// notifications from the health loop goroutine into the single-writer
// request channel rather than touching t.workflows directly.
func (t *ControllerTask) NodesRemoved(dead map[ir.NodeId]struct{}) {
	t.requests <- nodeRemovalRequest{dead: dead}
}

// ClustersRemoved implements registry.RemovalHandler.
func (t *ControllerTask) ClustersRemoved(dead map[ir.NodeId]struct{}) {
	t.requests <- clusterRemovalRequest{dead: dead}
}

func (t *ControllerTask) fleet() transform.Fleet {
	nodes, clusters := t.registry.Snapshot()
	return transform.Fleet{Nodes: nodes, Clusters: clusters}
}

// StartWorkflow submits a new workflow and blocks until it has been
// placed and dispatched (or the attempt has failed and been compensated).
func (t *ControllerTask) StartWorkflow(ctx context.Context, spec ir.SpawnWorkflowRequest) (ir.WorkflowInstance, *ir.ResponseError) {
	resp := make(chan startResult, 1)
	select {
	case t.requests <- startRequest{spec: spec, resp: resp}:
	case <-ctx.Done():
		return ir.WorkflowInstance{}, &ir.ResponseError{Summary: "start_workflow canceled"}
	}
	result := <-resp
	return result.instance, result.err
}

// StopWorkflow tears a running workflow down.
func (t *ControllerTask) StopWorkflow(ctx context.Context, id ir.WorkflowId) error {
	resp := make(chan error, 1)
	select {
	case t.requests <- stopRequest{id: id, resp: resp}:
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-resp
}

// ListWorkflows returns every active workflow's current instance mapping.
func (t *ControllerTask) ListWorkflows(ctx context.Context) []ir.WorkflowInstance {
	resp := make(chan []ir.WorkflowInstance, 1)
	select {
	case t.requests <- listRequest{resp: resp}:
	case <-ctx.Done():
		return nil
	}
	return <-resp
}

// PatchWorkflow rewires a workflow's external proxy mapping. The target
// workflow is named by reusing req.FunctionID.ComponentID as a
// WorkflowId, mirroring server.rs's patch_workflow.
func (t *ControllerTask) PatchWorkflow(ctx context.Context, req ir.PatchRequest) error {
	resp := make(chan error, 1)
	select {
	case t.requests <- patchRequest{req: req, resp: resp}:
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-resp
}

func (t *ControllerTask) startWorkflow(ctx context.Context, spec ir.SpawnWorkflowRequest) (ir.WorkflowInstance, *ir.ResponseError) {
	timer := metrics.NewTimer()
	id := ir.NewWorkflowId()
	active := workflow.NewActiveWorkflow(id, spec)
	mw := workflow.NewManagedWorkflow(active, t.fleet, t.links)

	changes, err := mw.InitialSpawn()
	if err != nil {
		metrics.PlacementFailuresTotal.Inc()
		metrics.WorkflowStartsTotal.WithLabelValues("error").Inc()
		return ir.WorkflowInstance{}, &ir.ResponseError{Summary: "failed to lower workflow", Detail: err.Error()}
	}
	timer.ObserveDuration(metrics.PlacementDuration)

	if failures := t.dispatch(ctx, changes); len(failures) > 0 {
		t.logger.Error().Strs("errors", failures).Str("workflow", id.String()).Msg("start_workflow failed, compensating")
		// Stop only unwinds materialized state, so mark the dispatched batch
		// as materialized first; every started instance and link is then torn down.
		mw.Commit()
		t.dispatch(ctx, mw.Stop())
		timer.ObserveDuration(metrics.WorkflowStartDuration)
		metrics.WorkflowStartsTotal.WithLabelValues("error").Inc()
		return ir.WorkflowInstance{}, &ir.ResponseError{Summary: "start_workflow failed", Detail: joinErrors(failures)}
	}

	mw.Commit()
	t.workflows[id] = mw

	timer.ObserveDuration(metrics.WorkflowStartDuration)
	metrics.WorkflowStartsTotal.WithLabelValues("ok").Inc()
	return ir.WorkflowInstance{WorkflowID: id, NodeMapping: instanceMapping(active.Graph)}, nil
}

func (t *ControllerTask) stopWorkflow(ctx context.Context, id ir.WorkflowId) error {
	timer := metrics.NewTimer()
	mw, ok := t.workflows[id]
	if !ok {
		metrics.WorkflowStopsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("unknown workflow %s", id)
	}
	delete(t.workflows, id)

	changes := mw.Stop()
	failures := t.dispatch(ctx, changes)
	timer.ObserveDuration(metrics.WorkflowStopDuration)
	if len(failures) > 0 {
		metrics.WorkflowStopsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("stop_workflow %s: %s", id, joinErrors(failures))
	}
	metrics.WorkflowStopsTotal.WithLabelValues("ok").Inc()
	return nil
}

func (t *ControllerTask) listWorkflows() []ir.WorkflowInstance {
	out := make([]ir.WorkflowInstance, 0, len(t.workflows))
	for id, mw := range t.workflows {
		out = append(out, ir.WorkflowInstance{WorkflowID: id, NodeMapping: instanceMapping(mw.Active.Graph)})
	}
	return out
}

func (t *ControllerTask) patchWorkflow(ctx context.Context, req ir.PatchRequest) error {
	id := ir.WorkflowId{WorkflowID: req.FunctionID.ComponentID}
	mw, ok := t.workflows[id]
	if !ok {
		return fmt.Errorf("unknown workflow %s", id)
	}

	mw.PatchExternalLinks(req)
	changes := mw.Reconcile()
	if failures := t.dispatch(ctx, changes); len(failures) > 0 {
		metrics.WorkflowPatchesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("patch_workflow %s: %s", id, joinErrors(failures))
	}
	mw.Commit()
	metrics.WorkflowPatchesTotal.WithLabelValues("ok").Inc()
	return nil
}

func (t *ControllerTask) handleNodeRemoval(ctx context.Context, dead map[ir.NodeId]struct{}) {
	timer := metrics.NewTimer()
	// Drop the dead nodes from the registry (a no-op for ones already
	// deregistered) so re-placement cannot pick them again.
	for id := range dead {
		t.registry.DeregisterNode(id)
	}
	for id, mw := range t.workflows {
		mw.NodeRemoval(dead)
		changes := mw.Reconcile()
		if failures := t.dispatch(ctx, changes); len(failures) > 0 {
			t.logger.Error().Strs("errors", failures).Str("workflow", id.String()).Msg("failed to re-place workflow after node removal")
			continue
		}
		mw.Commit()
	}
	timer.ObserveDuration(metrics.ReconciliationDuration)
	metrics.ReconciliationCyclesTotal.Inc()
}

func (t *ControllerTask) handleClusterRemoval(ctx context.Context, dead map[ir.NodeId]struct{}) {
	t.handleNodeRemoval(ctx, dead)
}

func instanceMapping(g *transform.Graph) []ir.WorkflowFunctionMapping {
	var out []ir.WorkflowFunctionMapping
	for name, comp := range g.Components() {
		ids := comp.InstanceIDs()
		if len(ids) == 0 {
			continue
		}
		nodeIDs := make([]string, len(ids))
		for i, id := range ids {
			nodeIDs[i] = id.NodeID.String()
		}
		out = append(out, ir.WorkflowFunctionMapping{Name: name, NodeIDs: nodeIDs})
	}
	return out
}

func joinErrors(errs []string) string {
	out := ""
	for i, e := range errs {
		if i > 0 {
			out += "; "
		}
		out += e
	}
	return out
}
