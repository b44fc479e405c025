package ir

// ResponseError is the two-arm error value crossing the ingress API
// (spec.md §7): a summary plus optional detail (e.g. joined RPC failures).
type ResponseError struct {
	Summary string `json:"summary"`
	Detail  string `json:"detail,omitempty"`
}

func (e ResponseError) Error() string {
	if e.Detail == "" {
		return e.Summary
	}
	return e.Summary + ": " + e.Detail
}

// FunctionClassSpecification is the canonical description of an actor's
// code and port schema, submitted either as JSON or as canonical text
// (spec.md §6); both forms deserialize to this one struct.
type FunctionClassSpecification struct {
	FunctionClassID            string                         `json:"function_class_id" yaml:"id"`
	FunctionClassVersion       string                         `json:"function_class_version" yaml:"version"`
	FunctionClassType          string                         `json:"function_class_type" yaml:"type"`
	FunctionClassCode          []byte                         `json:"function_class_code" yaml:"code"`
	FunctionClassInputs        map[PortId]Port                `json:"function_class_inputs" yaml:"inputs"`
	FunctionClassOutputs       map[PortId]Port                `json:"function_class_outputs" yaml:"outputs"`
	FunctionClassInnerStructure map[MappingNode][]MappingNode `json:"function_class_inner_structure" yaml:"inner_structure"`
}

// WorkflowFunction is one actor entry in a SpawnWorkflowRequest.
type WorkflowFunction struct {
	Name                     string                     `json:"name" yaml:"name"`
	FunctionClassSpecification FunctionClassSpecification `json:"function_class_specification" yaml:"class"`
	Annotations              map[string]string          `json:"annotations" yaml:"annotations"`
	InputMapping             map[PortId]LogicalOutput   `json:"input_mapping" yaml:"input_mapping"`
	OutputMapping            map[PortId]LogicalOutput   `json:"output_mapping" yaml:"output_mapping"`
}

// WorkflowResource is one resource entry in a SpawnWorkflowRequest.
type WorkflowResource struct {
	Name          string                   `json:"name" yaml:"name"`
	ClassType     string                   `json:"class_type" yaml:"class_type"`
	Configuration map[string]string        `json:"configuration" yaml:"configuration"`
	OutputMapping map[PortId]LogicalOutput `json:"output_mapping" yaml:"output_mapping"`
}

// SpawnWorkflowRequest is the body of workflow.start (spec.md §6).
type SpawnWorkflowRequest struct {
	WorkflowFunctions     []WorkflowFunction `json:"workflow_functions" yaml:"functions"`
	WorkflowResources     []WorkflowResource `json:"workflow_resources" yaml:"resources"`
	WorkflowIngressProxies []ProxySpec       `json:"workflow_ingress_proxies" yaml:"ingress_proxies"`
	WorkflowEgressProxies []ProxySpec        `json:"workflow_egress_proxies" yaml:"egress_proxies"`
	Annotations           map[string]string  `json:"annotations" yaml:"annotations"`
}

// ProxySpec describes one external port mapping contributed to the
// workflow's Proxy component at spawn time.
type ProxySpec struct {
	Port     PortId        `json:"port" yaml:"port"`
	Input    *PhysicalInput  `json:"input,omitempty" yaml:"input,omitempty"`
	Output   *PhysicalOutput `json:"output,omitempty" yaml:"output,omitempty"`
}

// WorkflowFunctionMapping reports the node placement of one named
// component in a WorkflowInstance.
type WorkflowFunctionMapping struct {
	Name    string   `json:"name"`
	NodeIDs []string `json:"node_ids"`
}

// WorkflowInstance is the descriptive body returned by workflow.start/list.
type WorkflowInstance struct {
	WorkflowID  WorkflowId                `json:"workflow_id"`
	NodeMapping []WorkflowFunctionMapping `json:"node_mapping"`
}

// SpawnWorkflowResponse is the two-arm result of workflow.start.
type SpawnWorkflowResponse struct {
	Instance *WorkflowInstance `json:"instance,omitempty"`
	Error    *ResponseError    `json:"error,omitempty"`
}

// PatchRequest rewires a workflow's Proxy external mapping (spec.md §6);
// FunctionID.ComponentID is interpreted as the target WorkflowId.
type PatchRequest struct {
	FunctionID    InstanceId               `json:"function_id"`
	InputMapping  map[PortId]PhysicalInput  `json:"input_mapping"`
	OutputMapping map[PortId]PhysicalOutput `json:"output_mapping"`
}

// NodeCapabilities are the declared resource capabilities of a worker node.
type NodeCapabilities struct {
	NumCPUs     uint32  `json:"num_cpus"`
	NumCores    uint32  `json:"num_cores"`
	ClockFreqCPU float64 `json:"clock_freq_cpu"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// ResourceProviderSpecification is one resource provider a node advertises
// at registration time.
type ResourceProviderSpecification struct {
	ProviderID string   `json:"provider_id"`
	ClassType  string   `json:"class_type"`
	Outputs    []string `json:"outputs"`
}

// LinkProviderSpecification is one link provider a node advertises at
// registration time.
type LinkProviderSpecification struct {
	Class      LinkType       `json:"class"`
	ProviderID LinkProviderId `json:"provider_id"`
}

// Registration is the add-or-refresh arm of node.update (spec.md §6). The
// same NodeId space covers both worker nodes and peer clusters; IsCluster
// picks which half of the registry the call targets, since a peer cluster
// is identified by a controller URL rather than the worker fields.
type Registration struct {
	NodeID        NodeId                         `json:"node_id"`
	AgentURL      string                         `json:"agent_url"`
	InvocationURL string                         `json:"invocation_url"`
	ResourceProviders []ResourceProviderSpecification `json:"resource_providers"`
	Capabilities  NodeCapabilities               `json:"capabilities"`
	LinkProviders []LinkProviderSpecification    `json:"link_providers"`
	IsProxy       bool                           `json:"is_proxy"`
	IsCluster     bool                           `json:"is_cluster"`
}

// Deregistration is the remove arm of node.update.
type Deregistration struct {
	NodeID    NodeId `json:"node_id"`
	IsCluster bool   `json:"is_cluster"`
}

// NodeUpdateRequest is the sum-type body of node.update: exactly one of
// Register/Deregister is set.
type NodeUpdateRequest struct {
	Register   *Registration   `json:"register,omitempty"`
	Deregister *Deregistration `json:"deregister,omitempty"`
}

// UpdateNodeResponse is the two-arm result of node.update.
type UpdateNodeResponse struct {
	Accepted bool           `json:"accepted"`
	Error    *ResponseError `json:"error,omitempty"`
}
