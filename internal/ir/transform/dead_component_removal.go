package transform

import "github.com/nimbusmesh/controller/internal/ir"

// DeadComponentRemoval prunes logical ports that can no longer influence
// any observable effect. It alternates two passes to a fixed point:
// removing outputs no active input (or side effect) reaches, and
// removing Cast-method inputs that reach neither an active output nor a
// side effect. The input pass never removes Call-method inputs (remote
// invocations) — a caller can always reach them regardless of what they
// currently wire to. Independently of method, removing an output also
// drops it from each target's Direct input sources, and a Direct input
// whose sources become empty is removed.
//
// Only Actor components carry a declared inner-structure graph
// (ActorClass.InnerStructure); Resource, SubFlow, and Proxy components
// have none; spec.md leaves their internal reachability unspecified, so
// this stage treats every one of their ports as always reachable from a
// SideEffect and every one of their inputs as Call-method, i.e. never
// pruned by their own reachability (an input can still be removed by the
// back-link deletion above) — matching the conservative reading of I6
// (pruning must never remove a port something still depends on).
//
// Grounded on original_source/edgeless_con/src/ir/transformations/
// dead_component_removal.rs (remove_unused_outputs / remove_unused_inputs,
// iterated to a fixed point). The resolved Open Question 4 (spec.md §9)
// makes the target-side back-link deletion below check functions,
// resources, and subflows uniformly rather than functions only.
type DeadComponentRemoval struct{}

func (DeadComponentRemoval) Name() string { return "dead_component_removal" }

func (DeadComponentRemoval) Run(g *Graph) error {
	for {
		changedOutputs := removeUnusedOutputs(g)
		changedInputs := removeUnusedInputs(g)
		if !changedOutputs && !changedInputs {
			return nil
		}
	}
}

// innerStructureAndMethods returns, for one component, the output
// reachability graph and the method kind of each input — synthesized
// conservatively for non-Actor components as described above.
func innerStructureAndMethods(comp ir.Component) (map[ir.MappingNode][]ir.MappingNode, func(ir.PortId) ir.PortMethod) {
	if actor, ok := comp.(*ir.Actor); ok {
		class := actor.Image.Class
		methodOf := func(p ir.PortId) ir.PortMethod {
			if port, ok := class.Inputs[p]; ok {
				return port.Method
			}
			return ir.PortMethodCast
		}
		return class.InnerStructure, methodOf
	}
	ports := comp.LogicalPorts()
	structure := make(map[ir.MappingNode][]ir.MappingNode, len(ports.Outputs))
	for port := range ports.Outputs {
		structure[ir.PortNode(port)] = []ir.MappingNode{ir.SideEffectNode}
	}
	return structure, func(ir.PortId) ir.PortMethod { return ir.PortMethodCall }
}

// removeUnusedOutputs removes any output whose inner-structure source set
// contains neither an active input nor SideEffect, and deletes the
// corresponding entry out of every target's Direct input sources.
func removeUnusedOutputs(g *Graph) bool {
	changed := false
	components := g.Components()

	for name, comp := range components {
		ports := comp.LogicalPorts()
		structure, _ := innerStructureAndMethods(comp)

		for port, out := range ports.Outputs {
			node := ir.PortNode(port)
			sources, hasStructure := structure[node]
			if !hasStructure {
				// No declared structure for this output: nothing justifies it.
				removeOutputAndBackLinks(components, ir.PortTarget{Component: name, Port: port}, out)
				changed = true
				continue
			}
			keep := false
			for _, src := range sources {
				if src.Kind == ir.MappingNodeSideEffect {
					keep = true
					break
				}
				if _, stillIn := ports.Inputs[src.Port]; stillIn {
					keep = true
					break
				}
			}
			if !keep {
				removeOutputAndBackLinks(components, ir.PortTarget{Component: name, Port: port}, out)
				changed = true
			}
		}
	}
	return changed
}

// removeOutputAndBackLinks deletes the output identified by source (the
// removed port's own {component, port} identity) from its owner's Outputs
// and, for each of its targets, drops source out of the target's Direct
// input set — matching on source's identity, not the target's own, since
// a Direct input's Sources list is keyed by where each link comes FROM
// (grounded on dead_component_removal.rs's input_links_to_remove, keyed
// by (f_id, output_id)).
func removeOutputAndBackLinks(components map[string]ir.Component, source ir.PortTarget, out ir.LogicalOutput) {
	if owner, ok := components[source.Component]; ok {
		delete(owner.LogicalPorts().Outputs, source.Port)
	}

	var targets []ir.PortTarget
	switch out.Kind {
	case ir.LogicalOutputDirectTarget:
		targets = []ir.PortTarget{out.Target}
	case ir.LogicalOutputAnyOfTargets, ir.LogicalOutputAllOfTargets:
		targets = out.Targets
	}

	for _, t := range targets {
		target, ok := components[t.Component]
		if !ok {
			continue
		}
		targetPorts := target.LogicalPorts()
		in, ok := targetPorts.Inputs[t.Port]
		if !ok || in.Kind != ir.LogicalInputDirect {
			continue
		}
		remaining := in.Sources[:0]
		for _, s := range in.Sources {
			if s == source {
				continue
			}
			remaining = append(remaining, s)
		}
		if len(remaining) == 0 {
			delete(targetPorts.Inputs, t.Port)
		} else {
			targetPorts.Inputs[t.Port] = ir.DirectInput(remaining)
		}
	}
}

// removeUnusedInputs removes any Cast-method input that feeds no output
// that survived removeUnusedOutputs and does not reach the SideEffect sink
// (i.e. is not listed among the sources of SideEffectNode in the inner
// structure). Call-method inputs are never removed.
func removeUnusedInputs(g *Graph) bool {
	changed := false

	for _, comp := range g.Components() {
		ports := comp.LogicalPorts()
		structure, methodOf := innerStructureAndMethods(comp)

		for port := range ports.Inputs {
			if methodOf(port) == ir.PortMethodCall {
				continue
			}
			reachesKeptOutput := false
			for _, src := range structure[ir.SideEffectNode] {
				if src.Kind == ir.MappingNodePort && src.Port == port {
					reachesKeptOutput = true
					break
				}
			}
			for outPort := range ports.Outputs {
				for _, src := range structure[ir.PortNode(outPort)] {
					if src.Kind == ir.MappingNodePort && src.Port == port {
						reachesKeptOutput = true
						break
					}
				}
				if reachesKeptOutput {
					break
				}
			}
			if !reachesKeptOutput {
				delete(ports.Inputs, port)
				changed = true
			}
		}
	}
	return changed
}
