package transform

import "github.com/nimbusmesh/controller/internal/ir"

// InputLinker derives every component's LogicalInput from the rest of the
// graph's LogicalOutputs: it scans every non-Topic output (Topic outputs
// have already been rewritten to AllOfTargets by TopicConverter), and for
// each target (component, port) pair accumulates the set of (source
// component, source port) pairs that feed it, then writes a Direct input
// built from that set onto the target component's LogicalPorts.
//
// Grounded on original_source/edgeless_con/src/ir/transformations/
// input_linker.rs: it builds a target -> []source map by walking
// DirectTarget/AnyOfTargets/AllOfTargets outputs, then installs
// LogicalInput::Direct(sources) into each target's input mapping,
// checking both functions and resources (and, here, subflows).
type InputLinker struct{}

func (InputLinker) Name() string { return "input_linker" }

func (InputLinker) Run(g *Graph) error {
	type key struct {
		component string
		port      ir.PortId
	}
	inputs := make(map[key][]ir.PortTarget)

	for name, comp := range g.Components() {
		ports := comp.LogicalPorts()
		for port, out := range ports.Outputs {
			var targets []ir.PortTarget
			switch out.Kind {
			case ir.LogicalOutputDirectTarget:
				targets = []ir.PortTarget{out.Target}
			case ir.LogicalOutputAnyOfTargets, ir.LogicalOutputAllOfTargets:
				targets = out.Targets
			case ir.LogicalOutputTopic:
				continue
			}
			for _, t := range targets {
				k := key{component: t.Component, port: t.Port}
				inputs[k] = append(inputs[k], ir.PortTarget{Component: name, Port: port})
			}
		}
	}

	for k, sources := range inputs {
		comp, ok := g.GetComponent(k.component)
		if !ok {
			continue
		}
		comp.LogicalPorts().Inputs[k.port] = ir.DirectInput(sources)
	}

	return nil
}
