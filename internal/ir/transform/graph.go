/*
Package transform implements the lowering pipeline of spec.md §4.3: the
ordered sequence of stages that takes a workflow's logical IR (as
submitted) through topic resolution, input linking, dead-code removal,
placement, physical connection mapping, link generation, and per-actor
compilation, producing the RequiredChange list the reconciler dispatches.

Grounded stage-for-stage on original_source/edgeless_con/src/ir/
transformations/*.rs; see each stage's file for its specific citation.
*/
package transform

import (
	"github.com/nimbusmesh/controller/internal/ir"
)

// Graph is the mutable logical+physical component graph one workflow's
// pipeline runs over. It holds exactly the fields original_source's
// ActiveWorkflow (ir/workflow.rs) holds, minus the request/id bookkeeping
// that belongs to internal/ir/workflow's ActiveWorkflow wrapper — kept
// here, not there, so this package has no dependency on that one.
type Graph struct {
	Functions map[string]*ir.Actor
	Resources map[string]*ir.Resource
	Subflows  map[string]*ir.SubFlow
	Proxy     *ir.Proxy
	Links     map[ir.LinkInstanceId]*ir.WorkflowLink
}

// NewGraph returns an empty Graph ready for component population.
func NewGraph() *Graph {
	return &Graph{
		Functions: make(map[string]*ir.Actor),
		Resources: make(map[string]*ir.Resource),
		Subflows:  make(map[string]*ir.SubFlow),
		Proxy:     ir.NewProxy(),
		Links:     make(map[ir.LinkInstanceId]*ir.WorkflowLink),
	}
}

// Components aggregates every named component in the graph, mirroring
// ActiveWorkflow::components() in ir/workflow.rs (functions + resources +
// subflows + the single "__proxy" pseudo-component).
func (g *Graph) Components() map[string]ir.Component {
	out := make(map[string]ir.Component, len(g.Functions)+len(g.Resources)+len(g.Subflows)+1)
	for name, f := range g.Functions {
		out[name] = f
	}
	for name, r := range g.Resources {
		out[name] = r
	}
	for name, s := range g.Subflows {
		out[name] = s
	}
	out["__proxy"] = g.Proxy
	return out
}

// GetComponent looks a named component up across functions, resources,
// and subflows (the proxy is addressed separately; it has no name of its
// own in a workflow request).
func (g *Graph) GetComponent(name string) (ir.Component, bool) {
	if f, ok := g.Functions[name]; ok {
		return f, true
	}
	if r, ok := g.Resources[name]; ok {
		return r, true
	}
	if s, ok := g.Subflows[name]; ok {
		return s, true
	}
	return nil, false
}

// Stage is one step of the lowering pipeline. Each stage mutates the
// graph in place and may return an error that aborts the pipeline.
type Stage interface {
	Name() string
	Run(g *Graph) error
}
