package transform

// WorkflowSplitter is a documented no-op (spec.md §9, Open Question 3):
// the original splits a workflow across federated clusters at this
// stage, but this controller's subflow placement is already expressed
// through SubFlow components chosen by DefaultPlacement /
// SelectClusterForSubflow, so there is nothing left to split here. The
// stage is kept in the pipeline so the stage ordering documented in
// spec.md §4.3 stays literal and future cluster-splitting logic has an
// obvious home.
//
// Grounded on original_source/edgeless_con/src/ir/transformations/
// workflow_splitter.rs, whose splitting responsibility is subsumed here
// by subflow component placement.
type WorkflowSplitter struct{}

func (WorkflowSplitter) Name() string { return "workflow_splitter" }

func (WorkflowSplitter) Run(g *Graph) error { return nil }
