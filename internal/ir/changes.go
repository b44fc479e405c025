package ir

// RequiredChange is one side-effect the reconciler must perform to converge
// materialized state toward desired state. Each concrete type below mirrors
// one RequiredChange variant from spec.md §3/§4.5.
type RequiredChange interface {
	changeKind() string
}

type StartFunction struct {
	FunctionID    InstanceId
	FunctionName  string
	Image         ActorImage
	InputMapping  map[PortId]PhysicalInput
	OutputMapping map[PortId]PhysicalOutput
	Annotations   map[string]string
}

func (StartFunction) changeKind() string { return "start_function" }

type StartResource struct {
	ResourceID    InstanceId
	ResourceName  string
	ClassType     string
	InputMapping  map[PortId]PhysicalInput
	OutputMapping map[PortId]PhysicalOutput
	Configuration map[string]string
}

func (StartResource) changeKind() string { return "start_resource" }

type PatchFunction struct {
	FunctionID    InstanceId
	FunctionName  string
	InputMapping  map[PortId]PhysicalInput
	OutputMapping map[PortId]PhysicalOutput
}

func (PatchFunction) changeKind() string { return "patch_function" }

type PatchResource struct {
	ResourceID    InstanceId
	ResourceName  string
	InputMapping  map[PortId]PhysicalInput
	OutputMapping map[PortId]PhysicalOutput
}

func (PatchResource) changeKind() string { return "patch_resource" }

type InstantiateLinkControlPlane struct {
	LinkID LinkInstanceId
	Class  LinkType
}

func (InstantiateLinkControlPlane) changeKind() string { return "instantiate_link_control_plane" }

type CreateLinkOnNode struct {
	LinkID     LinkInstanceId
	NodeID     NodeId
	ProviderID LinkProviderId
	Config     []byte
}

func (CreateLinkOnNode) changeKind() string { return "create_link_on_node" }

type RemoveLinkFromNode struct {
	LinkID LinkInstanceId
	NodeID NodeId
}

func (RemoveLinkFromNode) changeKind() string { return "remove_link_from_node" }

type CreateSubflow struct {
	SubflowID   InstanceId
	SpawnReq    SpawnWorkflowRequest
}

func (CreateSubflow) changeKind() string { return "create_subflow" }

type PatchSubflow struct {
	SubflowID     InstanceId
	InputMapping  map[PortId]PhysicalInput
	OutputMapping map[PortId]PhysicalOutput
}

func (PatchSubflow) changeKind() string { return "patch_subflow" }

type CreateProxy struct {
	ProxyID         InstanceId
	InternalInputs  map[PortId]PhysicalInput
	InternalOutputs map[PortId]PhysicalOutput
	ExternalInputs  map[PortId]PhysicalInput
	ExternalOutputs map[PortId]PhysicalOutput
}

func (CreateProxy) changeKind() string { return "create_proxy" }

type PatchProxy struct {
	ProxyID         InstanceId
	InternalInputs  map[PortId]PhysicalInput
	InternalOutputs map[PortId]PhysicalOutput
	ExternalInputs  map[PortId]PhysicalInput
	ExternalOutputs map[PortId]PhysicalOutput
}

func (PatchProxy) changeKind() string { return "patch_proxy" }

// The Stop* variants resolve Open Question 1 (spec.md §9): the original
// leaves stop_workflow's change list as a todo. These are symmetric to
// their Start counterparts and unwind a single materialized instance.
type StopFunction struct {
	FunctionID InstanceId
}

func (StopFunction) changeKind() string { return "stop_function" }

type StopResource struct {
	ResourceID InstanceId
}

func (StopResource) changeKind() string { return "stop_resource" }

type StopSubflow struct {
	SubflowID InstanceId
}

func (StopSubflow) changeKind() string { return "stop_subflow" }

type StopProxy struct {
	ProxyID InstanceId
}

func (StopProxy) changeKind() string { return "stop_proxy" }
