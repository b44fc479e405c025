package specparse

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/nimbusmesh/controller/internal/ir"
)

// ParseJSON decodes a workflow.start request body submitted as JSON.
func ParseJSON(data []byte) (ir.SpawnWorkflowRequest, error) {
	var req ir.SpawnWorkflowRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return ir.SpawnWorkflowRequest{}, fmt.Errorf("parse workflow spec (json): %w", err)
	}
	return req, validate(req)
}

// ParseYAML decodes a workflow.start request body submitted in the
// canonical text form accepted alongside JSON (spec.md §6).
func ParseYAML(data []byte) (ir.SpawnWorkflowRequest, error) {
	var req ir.SpawnWorkflowRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return ir.SpawnWorkflowRequest{}, fmt.Errorf("parse workflow spec (yaml): %w", err)
	}
	return req, validate(req)
}

// ParseClassJSON decodes a standalone actor-class submission as JSON —
// used when a class is registered independently of a workflow spawn.
func ParseClassJSON(data []byte) (ir.FunctionClassSpecification, error) {
	var class ir.FunctionClassSpecification
	if err := json.Unmarshal(data, &class); err != nil {
		return ir.FunctionClassSpecification{}, fmt.Errorf("parse actor class (json): %w", err)
	}
	return class, validateClass(class)
}

// ParseClassYAML decodes a standalone actor-class submission in canonical
// text form.
func ParseClassYAML(data []byte) (ir.FunctionClassSpecification, error) {
	var class ir.FunctionClassSpecification
	if err := yaml.Unmarshal(data, &class); err != nil {
		return ir.FunctionClassSpecification{}, fmt.Errorf("parse actor class (yaml): %w", err)
	}
	return class, validateClass(class)
}

func validate(req ir.SpawnWorkflowRequest) error {
	if len(req.WorkflowFunctions) == 0 && len(req.WorkflowResources) == 0 {
		return fmt.Errorf("workflow spec has no functions or resources")
	}
	seen := make(map[string]struct{}, len(req.WorkflowFunctions)+len(req.WorkflowResources))
	for _, f := range req.WorkflowFunctions {
		if f.Name == "" {
			return fmt.Errorf("workflow function missing name")
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate component name %q", f.Name)
		}
		seen[f.Name] = struct{}{}
		if err := validateClass(f.FunctionClassSpecification); err != nil {
			return fmt.Errorf("function %q: %w", f.Name, err)
		}
	}
	for _, r := range req.WorkflowResources {
		if r.Name == "" {
			return fmt.Errorf("workflow resource missing name")
		}
		if _, dup := seen[r.Name]; dup {
			return fmt.Errorf("duplicate component name %q", r.Name)
		}
		seen[r.Name] = struct{}{}
		if r.ClassType == "" {
			return fmt.Errorf("resource %q missing class_type", r.Name)
		}
	}
	return nil
}

func validateClass(c ir.FunctionClassSpecification) error {
	if c.FunctionClassID == "" {
		return fmt.Errorf("function class missing id")
	}
	if c.FunctionClassVersion == "" {
		return fmt.Errorf("function class %q missing version", c.FunctionClassID)
	}
	return nil
}
