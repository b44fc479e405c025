package transform

import "github.com/nimbusmesh/controller/internal/ir"

// PhysicalConnectionMapper lowers every component's remaining logical
// outputs into PhysicalOutput values on each of its placed instances'
// desired port mapping: DirectTarget becomes Single (naming the target
// component's last-placed instance), AnyOfTargets/AllOfTargets become
// Any/All naming every placed instance of every named target component.
//
// Grounded on original_source/edgeless_con/src/ir/transformations/
// physical_mapper.rs PhysicalConnectionMapper::transform: build a
// component-name -> []InstanceId index, then for each logical output
// write the corresponding PhysicalOutput into every instance of the
// owning component, picking the target component's last instance
// (instances.pop()) for a DirectTarget.
type PhysicalConnectionMapper struct{}

func (PhysicalConnectionMapper) Name() string { return "physical_connection_mapper" }

func (PhysicalConnectionMapper) Run(g *Graph) error {
	components := g.Components()
	instancesOf := make(map[string][]ir.InstanceId, len(components))
	for name, comp := range components {
		instancesOf[name] = comp.InstanceIDs()
	}

	for _, comp := range components {
		ports := comp.LogicalPorts()
		physical := comp.Instances()

		for port, out := range ports.Outputs {
			var physOut ir.PhysicalOutput
			switch out.Kind {
			case ir.LogicalOutputDirectTarget:
				ids := instancesOf[out.Target.Component]
				if len(ids) == 0 {
					continue
				}
				physOut = ir.SingleOutput(ids[len(ids)-1], out.Target.Port)
			case ir.LogicalOutputAnyOfTargets:
				targets := expandTargets(instancesOf, out.Targets)
				if len(targets) == 0 {
					continue
				}
				physOut = ir.AnyOutput(targets)
			case ir.LogicalOutputAllOfTargets:
				targets := expandTargets(instancesOf, out.Targets)
				if len(targets) == 0 {
					continue
				}
				physOut = ir.AllOutput(targets)
			default:
				continue
			}

			for _, inst := range physical {
				inst.PhysicalPorts().Outputs[port] = physOut
			}
		}
	}

	return nil
}

func expandTargets(instancesOf map[string][]ir.InstanceId, targets []ir.PortTarget) []ir.InstanceTarget {
	var out []ir.InstanceTarget
	for _, t := range targets {
		for _, id := range instancesOf[t.Component] {
			out = append(out, ir.InstanceTarget{Instance: id, Port: t.Port})
		}
	}
	return out
}
