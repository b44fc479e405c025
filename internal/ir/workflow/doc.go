/*
Package workflow owns one submitted workflow's lifecycle: building its
initial logical graph from a SpawnWorkflowRequest, running it through the
internal/ir/transform pipeline, and diffing the resulting physical graph
against what has actually been materialized on workers to produce the
RequiredChange list the reconciler dispatches (spec.md §4.4).

Grounded on original_source/edgeless_con/src/ir/workflow.rs (ActiveWorkflow)
and controller/server.rs's start_workflow/stop_workflow/materialize logic.
*/
package workflow
