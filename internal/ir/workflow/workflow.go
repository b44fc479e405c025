package workflow

import (
	"github.com/nimbusmesh/controller/internal/ir"
	"github.com/nimbusmesh/controller/internal/ir/transform"
	"github.com/nimbusmesh/controller/internal/link"
)

// ActiveWorkflow is one submitted workflow's logical+physical graph plus
// the request it was built from, mirroring original_source's
// ir/workflow.rs ActiveWorkflow.
type ActiveWorkflow struct {
	ID      ir.WorkflowId
	Request ir.SpawnWorkflowRequest
	Graph   *transform.Graph
}

// NewActiveWorkflow builds a fresh ActiveWorkflow from a spawn request.
func NewActiveWorkflow(id ir.WorkflowId, req ir.SpawnWorkflowRequest) *ActiveWorkflow {
	return &ActiveWorkflow{ID: id, Request: req, Graph: buildGraph(req)}
}

// Components aggregates every named component plus the proxy pseudo-entry.
func (w *ActiveWorkflow) Components() map[string]ir.Component {
	return w.Graph.Components()
}

// GetComponent looks a named component up by name.
func (w *ActiveWorkflow) GetComponent(name string) (ir.Component, bool) {
	return w.Graph.GetComponent(name)
}

// ManagedWorkflow wraps an ActiveWorkflow with the pipeline that lowers it
// and the diff/materialize logic the reconciler drives (spec.md §4.4).
type ManagedWorkflow struct {
	Active   *ActiveWorkflow
	pipeline *transform.Pipeline
	links    *link.Registry
}

// NewManagedWorkflow constructs a ManagedWorkflow. fleet supplies the
// current node/cluster snapshot to the DefaultPlacement stage.
func NewManagedWorkflow(active *ActiveWorkflow, fleet func() transform.Fleet, links *link.Registry) *ManagedWorkflow {
	return &ManagedWorkflow{
		Active:   active,
		pipeline: transform.NewPipeline(fleet, links),
		links:    links,
	}
}

// InitialSpawn runs the lowering pipeline once and returns the full set of
// RequiredChange values needed to bring every instance and link from
// nothing to its desired state — every instance starts materialized=nil,
// so every one produces a Start* change (grounded on server.rs's
// start_workflow, which calls initial_spawn() then materialize()).
func (m *ManagedWorkflow) InitialSpawn() ([]ir.RequiredChange, error) {
	if err := m.pipeline.Run(m.Active.Graph); err != nil {
		return nil, err
	}
	return m.diff(), nil
}

// Reconcile re-diffs the current graph against its materialized state
// without re-running placement, used after an external event (e.g. a
// patch) changes desired mapping in place.
func (m *ManagedWorkflow) Reconcile() []ir.RequiredChange {
	return m.diff()
}

// Commit marks every instance's materialized snapshot equal to its
// current desired mapping and every link Materialized, called by the
// reconciler once the corresponding RequiredChange has been applied
// successfully. Committing is idempotent and granular per instance would
// require per-change bookkeeping the reconciler does not currently need,
// since materialize() dispatches the whole batch before reporting
// overall success/failure (spec.md §4.4/§7).
func (m *ManagedWorkflow) Commit() {
	for _, comp := range m.Active.Components() {
		for _, inst := range comp.Instances() {
			desired := inst.PhysicalPorts().Clone()
			inst.SetMaterialized(&desired)
		}
	}
	for _, wfLink := range m.Active.Graph.Links {
		wfLink.Materialized = true
		for i := range wfLink.Nodes {
			wfLink.Nodes[i].Materialized = true
		}
	}
}

// diff walks every component's instances and every link, comparing
// desired to materialized state and emitting one RequiredChange per
// instance/link that has not yet converged (I3).
func (m *ManagedWorkflow) diff() []ir.RequiredChange {
	var changes []ir.RequiredChange

	for name, f := range m.Active.Graph.Functions {
		for _, inst := range f.TypedInstances() {
			image := f.Image
			if inst.Image != nil {
				image = *inst.Image
			}
			if inst.Materialized() == nil {
				changes = append(changes, ir.StartFunction{
					FunctionID:    inst.ID,
					FunctionName:  name,
					Image:         image,
					InputMapping:  inst.Desired.Inputs,
					OutputMapping: inst.Desired.Outputs,
					Annotations:   f.Annotations,
				})
			} else if !inst.Materialized().Equal(inst.Desired) {
				changes = append(changes, ir.PatchFunction{
					FunctionID:    inst.ID,
					FunctionName:  name,
					InputMapping:  inst.Desired.Inputs,
					OutputMapping: inst.Desired.Outputs,
				})
			}
		}
	}

	for name, r := range m.Active.Graph.Resources {
		for _, inst := range r.TypedInstances() {
			if inst.Materialized() == nil {
				changes = append(changes, ir.StartResource{
					ResourceID:    inst.ID,
					ResourceName:  name,
					ClassType:     r.Class,
					InputMapping:  inst.Desired.Inputs,
					OutputMapping: inst.Desired.Outputs,
					Configuration: r.Configuration,
				})
			} else if !inst.Materialized().Equal(inst.Desired) {
				changes = append(changes, ir.PatchResource{
					ResourceID:    inst.ID,
					ResourceName:  name,
					InputMapping:  inst.Desired.Inputs,
					OutputMapping: inst.Desired.Outputs,
				})
			}
		}
	}

	for _, s := range m.Active.Graph.Subflows {
		for _, inst := range s.TypedInstances() {
			if inst.Materialized() == nil {
				changes = append(changes, ir.CreateSubflow{SubflowID: inst.ID, SpawnReq: s.Request})
			} else if !inst.Materialized().Equal(inst.Desired) {
				changes = append(changes, ir.PatchSubflow{
					SubflowID:     inst.ID,
					InputMapping:  inst.Desired.Inputs,
					OutputMapping: inst.Desired.Outputs,
				})
			}
		}
	}

	for _, inst := range m.Active.Graph.Proxy.TypedInstances() {
		ext := m.Active.Graph.Proxy.External
		if inst.Materialized() == nil {
			changes = append(changes, ir.CreateProxy{
				ProxyID:         inst.ID,
				InternalInputs:  inst.Desired.Inputs,
				InternalOutputs: inst.Desired.Outputs,
				ExternalInputs:  ext.ExternalInputs,
				ExternalOutputs: ext.ExternalOutputs,
			})
		} else if !inst.Materialized().Equal(inst.Desired) {
			changes = append(changes, ir.PatchProxy{
				ProxyID:         inst.ID,
				InternalInputs:  inst.Desired.Inputs,
				InternalOutputs: inst.Desired.Outputs,
				ExternalInputs:  ext.ExternalInputs,
				ExternalOutputs: ext.ExternalOutputs,
			})
		}
	}

	for _, wfLink := range m.Active.Graph.Links {
		if wfLink.Materialized {
			continue
		}
		changes = append(changes, ir.InstantiateLinkControlPlane{LinkID: wfLink.ID, Class: wfLink.Class})
		for _, node := range wfLink.Nodes {
			if node.Materialized {
				continue
			}
			changes = append(changes, ir.CreateLinkOnNode{
				LinkID:     wfLink.ID,
				NodeID:     node.NodeID,
				ProviderID: node.ProviderID,
				Config:     node.Config,
			})
		}
	}

	return changes
}

// Stop produces one Stop* change per materialized instance and one
// RemoveLinkFromNode per link node already installed, unwinding the
// whole workflow. It does not mutate the graph — the reconciler removes
// the ActiveWorkflow from its table once every change has been dispatched
// (grounded on server.rs's stop_workflow).
func (m *ManagedWorkflow) Stop() []ir.RequiredChange {
	var changes []ir.RequiredChange

	for _, f := range m.Active.Graph.Functions {
		for _, inst := range f.TypedInstances() {
			if inst.Materialized() != nil {
				changes = append(changes, ir.StopFunction{FunctionID: inst.ID})
			}
		}
	}
	for _, r := range m.Active.Graph.Resources {
		for _, inst := range r.TypedInstances() {
			if inst.Materialized() != nil {
				changes = append(changes, ir.StopResource{ResourceID: inst.ID})
			}
		}
	}
	for _, s := range m.Active.Graph.Subflows {
		for _, inst := range s.TypedInstances() {
			if inst.Materialized() != nil {
				changes = append(changes, ir.StopSubflow{SubflowID: inst.ID})
			}
		}
	}
	for _, inst := range m.Active.Graph.Proxy.TypedInstances() {
		if inst.Materialized() != nil {
			changes = append(changes, ir.StopProxy{ProxyID: inst.ID})
		}
	}
	for _, wfLink := range m.Active.Graph.Links {
		for _, node := range wfLink.Nodes {
			if node.Materialized {
				changes = append(changes, ir.RemoveLinkFromNode{LinkID: wfLink.ID, NodeID: node.NodeID})
			}
		}
	}

	return changes
}

// NodeRemoval drops every instance hosted on one of the given dead nodes
// and, if any was dropped, re-runs the lowering pipeline so
// DefaultPlacement re-places them; the next Reconcile() then emits Start*
// changes for their new homes (grounded on server.rs's node-removal
// handling, which triggers a fresh materialize() pass for every affected
// workflow). A pipeline error is not reported to the caller.
func (m *ManagedWorkflow) NodeRemoval(dead map[ir.NodeId]struct{}) {
	instanceCount := func() int {
		n := 0
		for _, comp := range m.Active.Components() {
			n += len(comp.Instances())
		}
		return n
	}
	before := instanceCount()
	for _, f := range m.Active.Graph.Functions {
		f.DropInstancesOn(dead)
	}
	for _, r := range m.Active.Graph.Resources {
		r.DropInstancesOn(dead)
	}
	for _, s := range m.Active.Graph.Subflows {
		s.DropInstancesOn(dead)
	}
	m.Active.Graph.Proxy.DropInstancesOn(dead)
	if instanceCount() < before {
		_ = m.pipeline.Run(m.Active.Graph)
	}
}

// PatchExternalLinks rewrites the workflow's Proxy external mapping in
// place (spec.md §6 workflow.patch), leaving internal wiring untouched.
func (m *ManagedWorkflow) PatchExternalLinks(req ir.PatchRequest) {
	ext := &m.Active.Graph.Proxy.External
	for port, in := range req.InputMapping {
		ext.ExternalInputs[port] = in
	}
	for port, out := range req.OutputMapping {
		ext.ExternalOutputs[port] = out
	}
}
