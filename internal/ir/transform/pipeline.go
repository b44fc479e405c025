package transform

import (
	"fmt"

	"github.com/nimbusmesh/controller/internal/link"
)

// Pipeline runs the full lowering sequence of spec.md §4.3 in order.
type Pipeline struct {
	stages []Stage
}

// NewPipeline builds the standard 8-stage pipeline. fleet is called once
// per Run by the DefaultPlacement stage to obtain the current node/cluster
// snapshot; links resolves the MULTICAST controller used by PipeGenerator.
func NewPipeline(fleet func() Fleet, links *link.Registry) *Pipeline {
	return &Pipeline{stages: []Stage{
		TopicConverter{},
		InputLinker{},
		WorkflowSplitter{},
		DeadComponentRemoval{},
		DefaultPlacement{Fleet: fleet},
		PhysicalConnectionMapper{},
		PipeGenerator{Links: links},
		Compiler{},
	}}
}

// Run executes every stage in order against g, stopping at the first error.
func (p *Pipeline) Run(g *Graph) error {
	for _, stage := range p.stages {
		if err := stage.Run(g); err != nil {
			return fmt.Errorf("transform stage %s: %w", stage.Name(), err)
		}
	}
	return nil
}
