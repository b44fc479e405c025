package transform

import (
	"fmt"

	"github.com/nimbusmesh/controller/internal/ir"
	"github.com/nimbusmesh/controller/internal/link"
)

// PipeGenerator replaces any physical All output whose targets span ≥2
// distinct nodes with a Link output backed by a freshly allocated
// multicast WorkflowLink (I2): it asks the link.Registry's MULTICAST
// controller for a new link id and per-node config, records the
// resulting WorkflowLink on the graph, and rewrites both the source
// output and every target instance's corresponding input to Link(id).
// All outputs confined to a single node are left as-is — no fan-out
// fabric is needed when one RPC already reaches every target.
//
// Grounded on original_source/edgeless_con/src/ir/transformations/
// pipe_generator.rs: allocate a LinkInstanceId, call config_for per
// participating node, build a WorkflowLink, and rewrite the physical
// output and the matching physical inputs to Link(id).
type PipeGenerator struct {
	Links *link.Registry
}

func (PipeGenerator) Name() string { return "pipe_generator" }

func (p PipeGenerator) Run(g *Graph) error {
	controller, ok := p.Links.For(ir.MulticastLinkType)
	if !ok {
		return fmt.Errorf("pipe_generator: no link controller registered for %s", ir.MulticastLinkType)
	}

	instanceIndex := make(map[ir.InstanceId]ir.PhysicalInstance)
	for _, comp := range g.Components() {
		for _, inst := range comp.Instances() {
			instanceIndex[inst.InstanceID()] = inst
		}
	}

	for _, comp := range g.Components() {
		for _, inst := range comp.Instances() {
			ports := inst.PhysicalPorts()
			for port, out := range ports.Outputs {
				if out.Kind != ir.PhysicalOutputAll {
					continue
				}
				nodeSet := out.TargetNodeSet()
				if len(nodeSet) < 2 {
					continue
				}

				nodes := make([]ir.NodeId, 0, len(nodeSet))
				for n := range nodeSet {
					nodes = append(nodes, n)
				}
				linkID, err := controller.NewLink(nodes)
				if err != nil {
					return fmt.Errorf("pipe_generator: %w", err)
				}

				wfLink := &ir.WorkflowLink{ID: linkID, Class: ir.MulticastLinkType}
				for _, n := range nodes {
					cfg, err := controller.ConfigFor(linkID, n)
					if err != nil {
						return fmt.Errorf("pipe_generator: config for node %s: %w", n, err)
					}
					wfLink.Nodes = append(wfLink.Nodes, ir.LinkNode{NodeID: n, Config: cfg})
				}
				g.Links[linkID] = wfLink

				ports.Outputs[port] = ir.LinkOutput(linkID)

				for _, target := range out.Targets {
					targetInst, ok := instanceIndex[target.Instance]
					if !ok {
						continue
					}
					targetInst.PhysicalPorts().Inputs[target.Port] = ir.LinkInput(linkID)
				}
			}
		}
	}

	return nil
}
