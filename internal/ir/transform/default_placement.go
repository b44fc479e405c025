package transform

import (
	"github.com/nimbusmesh/controller/internal/ir"
	"github.com/nimbusmesh/controller/internal/placement"
)

// Fleet is the placement-time view of available nodes/clusters passed
// into DefaultPlacement. It is supplied by a closure over
// internal/registry's Snapshot() so this package depends only on
// internal/placement's types, never on internal/registry directly.
type Fleet struct {
	Nodes    []placement.NodeSnapshot
	Clusters []placement.ClusterSnapshot
}

// DefaultPlacement assigns exactly one physical instance to every
// component that currently has none, using the selection policy in
// internal/placement. Components that already have ≥1 instance are left
// alone — this stage only fills gaps, it never re-places.
//
// Grounded on original_source/edgeless_con/src/ir/transformations/
// placement.rs DefaultPlacement::transform: per component type, call the
// matching selection function against a fleet snapshot, and on success
// append a new physical instance with an empty desired mapping and no
// materialized snapshot. The proxy is placed only if it carries a
// non-empty external mapping (Proxy.IsEmpty()).
type DefaultPlacement struct {
	// Fleet returns the current fleet snapshot; called once per Run so a
	// single pipeline invocation sees a consistent view.
	Fleet func() Fleet
}

func (DefaultPlacement) Name() string { return "default_placement" }

func (d DefaultPlacement) Run(g *Graph) error {
	fleet := d.Fleet()

	for _, f := range g.Functions {
		if len(f.TypedInstances()) > 0 {
			continue
		}
		node, ok := placement.NextNode(fleet.Nodes, f.Image.Format, f.Annotations)
		if !ok {
			continue
		}
		f.AddInstance(ir.NewPhysicalActor(ir.NewInstanceId(node)))
	}

	for _, r := range g.Resources {
		if len(r.TypedInstances()) > 0 {
			continue
		}
		node, ok := placement.SelectNodeForResource(r.Class, fleet.Nodes)
		if !ok {
			continue
		}
		r.AddInstance(ir.NewPhysicalResource(ir.NewInstanceId(node)))
	}

	for _, s := range g.Subflows {
		if len(s.TypedInstances()) > 0 {
			continue
		}
		node, ok := placement.SelectClusterForSubflow(fleet.Clusters)
		if !ok {
			continue
		}
		s.AddInstance(ir.NewPhysicalSubFlow(ir.NewInstanceId(node)))
	}

	if !g.Proxy.IsEmpty() && len(g.Proxy.TypedInstances()) == 0 {
		if node, ok := placement.SelectNodeForProxy(fleet.Nodes); ok {
			g.Proxy.AddInstance(ir.NewPhysicalProxy(ir.NewInstanceId(node)))
		}
	}

	return nil
}
