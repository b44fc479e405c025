// Package specparse turns a workflow submission — JSON or the canonical
// YAML text form (spec.md §6) — into an ir.SpawnWorkflowRequest, and an
// actor-class submission into an ir.FunctionClassSpecification. Both wire
// forms deserialize into the same internal/ir structs, which already carry
// both `json` and `yaml` struct tags for exactly this purpose.
package specparse
