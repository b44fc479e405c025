package workflow

import (
	"github.com/nimbusmesh/controller/internal/ir"
	"github.com/nimbusmesh/controller/internal/ir/transform"
)

// buildGraph translates a SpawnWorkflowRequest into a fresh logical Graph,
// mirroring original_source/edgeless_con/src/ir/actor.rs's
// From<WorkflowFunction> for LogicalActor conversion: every declared
// output_mapping entry is copied as-is, and every input_mapping entry is
// translated into a LogicalInput (Topic stays Topic; anything naming a
// target becomes a Direct input sourced from that target — later
// overwritten by InputLinker wherever a matching output exists).
func buildGraph(req ir.SpawnWorkflowRequest) *transform.Graph {
	g := transform.NewGraph()

	for _, wf := range req.WorkflowFunctions {
		ports := ir.NewLogicalPorts()
		for port, out := range wf.OutputMapping {
			ports.Outputs[port] = out
		}
		for port, decl := range wf.InputMapping {
			ports.Inputs[port] = logicalInputFromDeclaration(decl)
		}
		image := ir.ActorImage{
			Class: ir.ActorClass{
				ID:             ir.ActorIdentifier{ID: wf.FunctionClassSpecification.FunctionClassID, Version: wf.FunctionClassSpecification.FunctionClassVersion},
				Inputs:         wf.FunctionClassSpecification.FunctionClassInputs,
				Outputs:        wf.FunctionClassSpecification.FunctionClassOutputs,
				InnerStructure: wf.FunctionClassSpecification.FunctionClassInnerStructure,
			},
			Format: wf.FunctionClassSpecification.FunctionClassType,
			Code:   wf.FunctionClassSpecification.FunctionClassCode,
		}
		g.Functions[wf.Name] = ir.NewActor(image, wf.Annotations, ports)
	}

	for _, wr := range req.WorkflowResources {
		ports := ir.NewLogicalPorts()
		for port, out := range wr.OutputMapping {
			ports.Outputs[port] = out
		}
		g.Resources[wr.Name] = ir.NewResource(wr.ClassType, wr.Configuration, ports)
	}

	applyProxySpecs(g.Proxy, req.WorkflowIngressProxies, req.WorkflowEgressProxies)

	return g
}

// logicalInputFromDeclaration translates the wire-format LogicalOutput
// used to declare a function's own input wiring into this component's
// actual LogicalInput value.
func logicalInputFromDeclaration(decl ir.LogicalOutput) ir.LogicalInput {
	switch decl.Kind {
	case ir.LogicalOutputTopic:
		return ir.TopicInput(decl.Topic)
	case ir.LogicalOutputDirectTarget:
		return ir.DirectInput([]ir.PortTarget{decl.Target})
	default:
		return ir.DirectInput(append([]ir.PortTarget(nil), decl.Targets...))
	}
}

// applyProxySpecs records each ingress/egress proxy port's physical
// external mapping directly onto the workflow's Proxy component. Ingress
// ports arrive as declared PhysicalInput values (external source ->
// proxy); egress ports leave as declared PhysicalOutput values (proxy ->
// external sink). Internal logical wiring to/from "__proxy" is left to
// ordinary component output_mapping entries, which
// PhysicalConnectionMapper lowers onto the proxy's instance; InputLinker
// does not resolve "__proxy", so no back-link input is written onto the
// proxy.
func applyProxySpecs(p *ir.Proxy, ingress, egress []ir.ProxySpec) {
	for _, spec := range ingress {
		if spec.Input != nil {
			p.External.ExternalInputs[spec.Port] = *spec.Input
		}
	}
	for _, spec := range egress {
		if spec.Output != nil {
			p.External.ExternalOutputs[spec.Port] = *spec.Output
		}
	}
}
