package ir

// Component is the minimal capability set every logical component (Actor,
// Resource, SubFlow, Proxy) implements, per spec.md §9's Design Notes:
// read/write logical ports, enumerate instance ids, enumerate physical
// instances for split-view mutation during pipeline passes.
type Component interface {
	LogicalPorts() *LogicalPorts
	InstanceIDs() []InstanceId
	Instances() []PhysicalInstance
}

// PhysicalInstance is the capability set of one placed instance.
type PhysicalInstance interface {
	PhysicalPorts() *PhysicalPorts
	Materialized() *PhysicalPorts
	SetMaterialized(*PhysicalPorts)
	InstanceID() InstanceId
}

// ActorIdentifier names one version of an actor class.
type ActorIdentifier struct {
	ID      string `json:"id"`
	Version string `json:"version"`
}

// ActorClass describes an actor's port schema and inner-structure graph
// (which inputs/side-effects an output is reachable from).
type ActorClass struct {
	ID             ActorIdentifier                  `json:"id"`
	Inputs         map[PortId]Port                  `json:"inputs"`
	Outputs        map[PortId]Port                  `json:"outputs"`
	InnerStructure map[MappingNode][]MappingNode    `json:"inner_structure"`
}

// ActorImage is the code-bearing image of an actor: source or compiled
// bytes, a format tag, and the currently enabled port sets.
type ActorImage struct {
	Class          ActorClass         `json:"class"`
	Format         string             `json:"format"`
	EnabledInputs  map[PortId]struct{} `json:"enabled_inputs"`
	EnabledOutputs map[PortId]struct{} `json:"enabled_outputs"`
	Code           []byte             `json:"code"`
}

func (i ActorImage) Clone() ActorImage {
	clone := i
	clone.EnabledInputs = cloneSet(i.EnabledInputs)
	clone.EnabledOutputs = cloneSet(i.EnabledOutputs)
	clone.Code = append([]byte(nil), i.Code...)
	return clone
}

func cloneSet(in map[PortId]struct{}) map[PortId]struct{} {
	out := make(map[PortId]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}

// Actor bears an ActorImage, annotations, logical ports, and zero or more
// PhysicalActor instances.
type Actor struct {
	Image       ActorImage
	Annotations map[string]string
	Ports       LogicalPorts
	instances   []*PhysicalActor
}

func NewActor(image ActorImage, annotations map[string]string, ports LogicalPorts) *Actor {
	return &Actor{Image: image, Annotations: annotations, Ports: ports}
}

func (a *Actor) LogicalPorts() *LogicalPorts { return &a.Ports }

func (a *Actor) InstanceIDs() []InstanceId {
	ids := make([]InstanceId, len(a.instances))
	for i, inst := range a.instances {
		ids[i] = inst.ID
	}
	return ids
}

func (a *Actor) Instances() []PhysicalInstance {
	out := make([]PhysicalInstance, len(a.instances))
	for i, inst := range a.instances {
		out[i] = inst
	}
	return out
}

func (a *Actor) TypedInstances() []*PhysicalActor { return a.instances }

func (a *Actor) AddInstance(inst *PhysicalActor) { a.instances = append(a.instances, inst) }

// DropInstancesOn removes every instance placed on one of the given dead
// nodes, so a later DefaultPlacement pass re-places the component.
func (a *Actor) DropInstancesOn(dead map[NodeId]struct{}) {
	a.instances = dropOnDeadNodes(a.instances, dead, func(p *PhysicalActor) NodeId { return p.ID.NodeID })
}

// EnabledInputs lists the actor's currently-mapped input ports.
func (a *Actor) EnabledInputs() []PortId {
	out := make([]PortId, 0, len(a.Ports.Inputs))
	for p := range a.Ports.Inputs {
		out = append(out, p)
	}
	return out
}

// EnabledOutputs lists the actor's currently-mapped output ports.
func (a *Actor) EnabledOutputs() []PortId {
	out := make([]PortId, 0, len(a.Ports.Outputs))
	for p := range a.Ports.Outputs {
		out = append(out, p)
	}
	return out
}

// PhysicalActor is one placed instance of an Actor.
type PhysicalActor struct {
	ID           InstanceId
	Image        *ActorImage // per-instance override, e.g. a compiled WASM image
	Desired      PhysicalPorts
	materialized *PhysicalPorts
}

func NewPhysicalActor(id InstanceId) *PhysicalActor {
	return &PhysicalActor{ID: id, Desired: NewPhysicalPorts()}
}

func (p *PhysicalActor) PhysicalPorts() *PhysicalPorts   { return &p.Desired }
func (p *PhysicalActor) Materialized() *PhysicalPorts     { return p.materialized }
func (p *PhysicalActor) SetMaterialized(m *PhysicalPorts) { p.materialized = m }
func (p *PhysicalActor) InstanceID() InstanceId           { return p.ID }

// Resource is a platform-provided effect with a class string and a
// string/string configuration map.
type Resource struct {
	Class         string
	Configuration map[string]string
	Ports         LogicalPorts
	instances     []*PhysicalResource
}

func NewResource(class string, configuration map[string]string, ports LogicalPorts) *Resource {
	return &Resource{Class: class, Configuration: configuration, Ports: ports}
}

func (r *Resource) LogicalPorts() *LogicalPorts { return &r.Ports }

func (r *Resource) InstanceIDs() []InstanceId {
	ids := make([]InstanceId, len(r.instances))
	for i, inst := range r.instances {
		ids[i] = inst.ID
	}
	return ids
}

func (r *Resource) Instances() []PhysicalInstance {
	out := make([]PhysicalInstance, len(r.instances))
	for i, inst := range r.instances {
		out[i] = inst
	}
	return out
}

func (r *Resource) TypedInstances() []*PhysicalResource { return r.instances }

func (r *Resource) AddInstance(inst *PhysicalResource) { r.instances = append(r.instances, inst) }

// DropInstancesOn removes every instance placed on one of the given dead nodes.
func (r *Resource) DropInstancesOn(dead map[NodeId]struct{}) {
	r.instances = dropOnDeadNodes(r.instances, dead, func(p *PhysicalResource) NodeId { return p.ID.NodeID })
}

// PhysicalResource is one placed instance of a Resource.
type PhysicalResource struct {
	ID           InstanceId
	Desired      PhysicalPorts
	materialized *PhysicalPorts
}

func NewPhysicalResource(id InstanceId) *PhysicalResource {
	return &PhysicalResource{ID: id, Desired: NewPhysicalPorts()}
}

func (p *PhysicalResource) PhysicalPorts() *PhysicalPorts   { return &p.Desired }
func (p *PhysicalResource) Materialized() *PhysicalPorts     { return p.materialized }
func (p *PhysicalResource) SetMaterialized(m *PhysicalPorts) { p.materialized = m }
func (p *PhysicalResource) InstanceID() InstanceId           { return p.ID }

// SubFlow is a nested workflow fragment offloaded to a peer cluster. Request
// is the nested spawn request sent to the owning cluster's controller when
// the subflow is first started.
type SubFlow struct {
	Ports     LogicalPorts
	Request   SpawnWorkflowRequest
	instances []*PhysicalSubFlow
}

func NewSubFlow(ports LogicalPorts, request SpawnWorkflowRequest) *SubFlow {
	return &SubFlow{Ports: ports, Request: request}
}

func (s *SubFlow) LogicalPorts() *LogicalPorts { return &s.Ports }

func (s *SubFlow) InstanceIDs() []InstanceId {
	ids := make([]InstanceId, len(s.instances))
	for i, inst := range s.instances {
		ids[i] = inst.ID
	}
	return ids
}

func (s *SubFlow) Instances() []PhysicalInstance {
	out := make([]PhysicalInstance, len(s.instances))
	for i, inst := range s.instances {
		out[i] = inst
	}
	return out
}

func (s *SubFlow) TypedInstances() []*PhysicalSubFlow { return s.instances }

func (s *SubFlow) AddInstance(inst *PhysicalSubFlow) { s.instances = append(s.instances, inst) }

// DropInstancesOn removes every instance placed on one of the given dead nodes.
func (s *SubFlow) DropInstancesOn(dead map[NodeId]struct{}) {
	s.instances = dropOnDeadNodes(s.instances, dead, func(p *PhysicalSubFlow) NodeId { return p.ID.NodeID })
}

// PhysicalSubFlow is the single remote instance of a SubFlow.
type PhysicalSubFlow struct {
	ID           InstanceId
	Desired      PhysicalPorts
	materialized *PhysicalPorts
}

func NewPhysicalSubFlow(id InstanceId) *PhysicalSubFlow {
	return &PhysicalSubFlow{ID: id, Desired: NewPhysicalPorts()}
}

func (p *PhysicalSubFlow) PhysicalPorts() *PhysicalPorts   { return &p.Desired }
func (p *PhysicalSubFlow) Materialized() *PhysicalPorts     { return p.materialized }
func (p *PhysicalSubFlow) SetMaterialized(m *PhysicalPorts) { p.materialized = m }
func (p *PhysicalSubFlow) InstanceID() InstanceId           { return p.ID }

// Proxy is the workflow's single boundary component, carrying external
// ports (mappings to entities outside the workflow) and corresponding
// internal logical ports.
type Proxy struct {
	External  ExternalPorts
	Ports     LogicalPorts
	instances []*PhysicalProxy
}

func NewProxy() *Proxy {
	return &Proxy{External: NewExternalPorts(), Ports: NewLogicalPorts()}
}

func (p *Proxy) LogicalPorts() *LogicalPorts { return &p.Ports }

func (p *Proxy) InstanceIDs() []InstanceId {
	ids := make([]InstanceId, len(p.instances))
	for i, inst := range p.instances {
		ids[i] = inst.ID
	}
	return ids
}

func (p *Proxy) Instances() []PhysicalInstance {
	out := make([]PhysicalInstance, len(p.instances))
	for i, inst := range p.instances {
		out[i] = inst
	}
	return out
}

func (p *Proxy) TypedInstances() []*PhysicalProxy { return p.instances }

func (p *Proxy) AddInstance(inst *PhysicalProxy) { p.instances = append(p.instances, inst) }

// DropInstancesOn removes every instance placed on one of the given dead nodes.
func (p *Proxy) DropInstancesOn(dead map[NodeId]struct{}) {
	p.instances = dropOnDeadNodes(p.instances, dead, func(inst *PhysicalProxy) NodeId { return inst.ID.NodeID })
}

// IsEmpty reports whether the proxy carries no external mapping at all, in
// which case DefaultPlacement never places it (spec.md §4.3 step 5).
func (p *Proxy) IsEmpty() bool {
	return len(p.External.ExternalInputs) == 0 && len(p.External.ExternalOutputs) == 0
}

// PhysicalProxy is one placed instance of the workflow's Proxy.
type PhysicalProxy struct {
	ID           InstanceId
	Desired      PhysicalPorts
	materialized *PhysicalPorts
}

func NewPhysicalProxy(id InstanceId) *PhysicalProxy {
	return &PhysicalProxy{ID: id, Desired: NewPhysicalPorts()}
}

func (p *PhysicalProxy) PhysicalPorts() *PhysicalPorts   { return &p.Desired }
func (p *PhysicalProxy) Materialized() *PhysicalPorts     { return p.materialized }
func (p *PhysicalProxy) SetMaterialized(m *PhysicalPorts) { p.materialized = m }
func (p *PhysicalProxy) InstanceID() InstanceId           { return p.ID }

// LinkNode is one node's participation in a WorkflowLink: its provider,
// per-node joining config, and whether it has been installed.
type LinkNode struct {
	NodeID       NodeId
	ProviderID   LinkProviderId
	Config       []byte
	Materialized bool
}

// WorkflowLink is a multicast (or other fan-out) fabric spanning a set of
// nodes, synthesized by PipeGenerator for any AllOfTargets output landing
// on ≥ 2 distinct target nodes (I2).
type WorkflowLink struct {
	ID           LinkInstanceId
	Class        LinkType
	Nodes        []LinkNode
	Materialized bool
}

// dropOnDeadNodes filters a physical instance slice, keeping only
// instances whose node isn't in dead.
func dropOnDeadNodes[T any](instances []T, dead map[NodeId]struct{}, nodeOf func(T) NodeId) []T {
	kept := instances[:0]
	for _, inst := range instances {
		if _, isDead := dead[nodeOf(inst)]; !isDead {
			kept = append(kept, inst)
		}
	}
	return kept
}
