package ir

// PortTarget names a destination port on a workflow-local component.
type PortTarget struct {
	Component string `json:"component"`
	Port      PortId `json:"port"`
}

// InstanceTarget names a destination port on a placed physical instance.
type InstanceTarget struct {
	Instance InstanceId `json:"instance"`
	Port     PortId     `json:"port"`
}

// LogicalOutputKind is the tag of a LogicalOutput sum value.
type LogicalOutputKind string

const (
	LogicalOutputDirectTarget LogicalOutputKind = "direct_target"
	LogicalOutputAnyOfTargets LogicalOutputKind = "any_of_targets"
	LogicalOutputAllOfTargets LogicalOutputKind = "all_of_targets"
	LogicalOutputTopic        LogicalOutputKind = "topic"
)

// LogicalOutput is a logical output port mapping: DirectTarget, AnyOfTargets,
// AllOfTargets, or Topic.
type LogicalOutput struct {
	Kind    LogicalOutputKind `json:"kind"`
	Target  PortTarget        `json:"target,omitempty"`
	Targets []PortTarget      `json:"targets,omitempty"`
	Topic   string            `json:"topic,omitempty"`
}

func DirectTarget(component string, port PortId) LogicalOutput {
	return LogicalOutput{Kind: LogicalOutputDirectTarget, Target: PortTarget{Component: component, Port: port}}
}

func AnyOfTargets(targets []PortTarget) LogicalOutput {
	return LogicalOutput{Kind: LogicalOutputAnyOfTargets, Targets: targets}
}

func AllOfTargets(targets []PortTarget) LogicalOutput {
	return LogicalOutput{Kind: LogicalOutputAllOfTargets, Targets: targets}
}

func TopicOutput(topic string) LogicalOutput {
	return LogicalOutput{Kind: LogicalOutputTopic, Topic: topic}
}

// Clone returns a deep-enough copy for idempotence checks (P1).
func (o LogicalOutput) Clone() LogicalOutput {
	clone := o
	if o.Targets != nil {
		clone.Targets = append([]PortTarget(nil), o.Targets...)
	}
	return clone
}

// LogicalInputKind is the tag of a LogicalInput sum value.
type LogicalInputKind string

const (
	LogicalInputDirect LogicalInputKind = "direct"
	LogicalInputTopic  LogicalInputKind = "topic"
)

// LogicalInput is a logical input port mapping: Direct or Topic.
type LogicalInput struct {
	Kind    LogicalInputKind `json:"kind"`
	Sources []PortTarget     `json:"sources,omitempty"`
	Topic   string           `json:"topic,omitempty"`
}

func DirectInput(sources []PortTarget) LogicalInput {
	return LogicalInput{Kind: LogicalInputDirect, Sources: sources}
}

func TopicInput(topic string) LogicalInput {
	return LogicalInput{Kind: LogicalInputTopic, Topic: topic}
}

// LogicalPorts holds the logical output and input mapping of one component.
type LogicalPorts struct {
	Outputs map[PortId]LogicalOutput `json:"outputs"`
	Inputs  map[PortId]LogicalInput  `json:"inputs"`
}

func NewLogicalPorts() LogicalPorts {
	return LogicalPorts{Outputs: map[PortId]LogicalOutput{}, Inputs: map[PortId]LogicalInput{}}
}

// PhysicalOutputKind is the tag of a PhysicalOutput sum value.
type PhysicalOutputKind string

const (
	PhysicalOutputSingle PhysicalOutputKind = "single"
	PhysicalOutputAny    PhysicalOutputKind = "any"
	PhysicalOutputAll    PhysicalOutputKind = "all"
	PhysicalOutputLink   PhysicalOutputKind = "link"
)

// PhysicalOutput is a physical output port mapping: Single, Any, All, or Link.
type PhysicalOutput struct {
	Kind    PhysicalOutputKind `json:"kind"`
	Single  InstanceTarget     `json:"single,omitempty"`
	Targets []InstanceTarget   `json:"targets,omitempty"`
	Link    LinkInstanceId     `json:"link,omitempty"`
}

func SingleOutput(instance InstanceId, port PortId) PhysicalOutput {
	return PhysicalOutput{Kind: PhysicalOutputSingle, Single: InstanceTarget{Instance: instance, Port: port}}
}

func AnyOutput(targets []InstanceTarget) PhysicalOutput {
	return PhysicalOutput{Kind: PhysicalOutputAny, Targets: targets}
}

func AllOutput(targets []InstanceTarget) PhysicalOutput {
	return PhysicalOutput{Kind: PhysicalOutputAll, Targets: targets}
}

func LinkOutput(link LinkInstanceId) PhysicalOutput {
	return PhysicalOutput{Kind: PhysicalOutputLink, Link: link}
}

// TargetNodeSet returns the distinct target NodeIds referenced by an
// Any/All output, used by PipeGenerator to decide whether a link is needed.
func (o PhysicalOutput) TargetNodeSet() map[NodeId]struct{} {
	nodes := map[NodeId]struct{}{}
	for _, t := range o.Targets {
		nodes[t.Instance.NodeID] = struct{}{}
	}
	return nodes
}

// PhysicalInputKind is the tag of a PhysicalInput sum value.
type PhysicalInputKind string

const (
	// PhysicalInputDefault is the implicit default: direct delivery, no link.
	PhysicalInputDefault PhysicalInputKind = "default"
	PhysicalInputLink    PhysicalInputKind = "link"
)

// PhysicalInput is a physical input port mapping: the implicit default, or Link.
type PhysicalInput struct {
	Kind PhysicalInputKind `json:"kind"`
	Link LinkInstanceId    `json:"link,omitempty"`
}

func DefaultInput() PhysicalInput { return PhysicalInput{Kind: PhysicalInputDefault} }

func LinkInput(link LinkInstanceId) PhysicalInput {
	return PhysicalInput{Kind: PhysicalInputLink, Link: link}
}

// PhysicalPorts holds the physical output and input mapping of one instance.
type PhysicalPorts struct {
	Outputs map[PortId]PhysicalOutput `json:"outputs"`
	Inputs  map[PortId]PhysicalInput  `json:"inputs"`
}

func NewPhysicalPorts() PhysicalPorts {
	return PhysicalPorts{Outputs: map[PortId]PhysicalOutput{}, Inputs: map[PortId]PhysicalInput{}}
}

// Equal reports whether two PhysicalPorts carry the same mapping, used by
// the diff algorithm (materialize()) to decide materialized == desired (I3).
func (p PhysicalPorts) Equal(other PhysicalPorts) bool {
	if len(p.Outputs) != len(other.Outputs) || len(p.Inputs) != len(other.Inputs) {
		return false
	}
	for port, out := range p.Outputs {
		o, ok := other.Outputs[port]
		if !ok || !physicalOutputEqual(out, o) {
			return false
		}
	}
	for port, in := range p.Inputs {
		o, ok := other.Inputs[port]
		if !ok || in != o {
			return false
		}
	}
	return true
}

func physicalOutputEqual(a, b PhysicalOutput) bool {
	if a.Kind != b.Kind || a.Single != b.Single || a.Link != b.Link {
		return false
	}
	if len(a.Targets) != len(b.Targets) {
		return false
	}
	for i := range a.Targets {
		if a.Targets[i] != b.Targets[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy, used when an instance's materialized snapshot
// is set from its desired mapping.
func (p PhysicalPorts) Clone() PhysicalPorts {
	clone := NewPhysicalPorts()
	for k, v := range p.Outputs {
		clone.Outputs[k] = v.clone()
	}
	for k, v := range p.Inputs {
		clone.Inputs[k] = v
	}
	return clone
}

func (o PhysicalOutput) clone() PhysicalOutput {
	clone := o
	if o.Targets != nil {
		clone.Targets = append([]InstanceTarget(nil), o.Targets...)
	}
	return clone
}

// ExternalPorts carries a Proxy's mapping between this workflow's internal
// logical ports and endpoints outside the workflow.
type ExternalPorts struct {
	ExternalInputs  map[PortId]PhysicalInput  `json:"external_inputs"`
	ExternalOutputs map[PortId]PhysicalOutput `json:"external_outputs"`
}

func NewExternalPorts() ExternalPorts {
	return ExternalPorts{ExternalInputs: map[PortId]PhysicalInput{}, ExternalOutputs: map[PortId]PhysicalOutput{}}
}
