package clients

import (
	"context"

	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/nimbusmesh/controller/internal/ir"
)

// HealthStatus is the snapshot returned by a node's keep_alive RPC.
type HealthStatus struct {
	Healthy bool                   `json:"healthy"`
	LastSeen *timestamppb.Timestamp `json:"last_seen"`
	Detail  string                 `json:"detail,omitempty"`
}

// StartFunctionRequest is the body of function_instance_api.start.
type StartFunctionRequest struct {
	InstanceID      ir.InstanceId                `json:"instance_id"`
	Image           ir.ActorImage                `json:"image"`
	InputMapping    map[ir.PortId]ir.PhysicalInput  `json:"input_mapping"`
	OutputMapping   map[ir.PortId]ir.PhysicalOutput `json:"output_mapping"`
	Annotations     map[string]string            `json:"annotations"`
}

// PatchRequest is the body of a .patch call shared by functions, resources,
// and subflows — it updates wiring only.
type PatchRequest struct {
	InstanceID    ir.InstanceId                `json:"instance_id"`
	InputMapping  map[ir.PortId]ir.PhysicalInput  `json:"input_mapping"`
	OutputMapping map[ir.PortId]ir.PhysicalOutput `json:"output_mapping"`
}

// StartResourceRequest is the body of resource_configuration_api.start.
type StartResourceRequest struct {
	InstanceID    ir.InstanceId                `json:"instance_id"`
	ClassType     string                       `json:"class_type"`
	InputMapping  map[ir.PortId]ir.PhysicalInput  `json:"input_mapping"`
	OutputMapping map[ir.PortId]ir.PhysicalOutput `json:"output_mapping"`
	Configuration map[string]string            `json:"configuration"`
}

// StartProxyRequest is the body of proxy_instance_api's start/patch calls.
type StartProxyRequest struct {
	InstanceID      ir.InstanceId                `json:"instance_id"`
	InternalInputs  map[ir.PortId]ir.PhysicalInput  `json:"internal_inputs"`
	InternalOutputs map[ir.PortId]ir.PhysicalOutput `json:"internal_outputs"`
	ExternalInputs  map[ir.PortId]ir.PhysicalInput  `json:"external_inputs"`
	ExternalOutputs map[ir.PortId]ir.PhysicalOutput `json:"external_outputs"`
}

// CreateLinkRequest is the body of link_instance_api.create. Direction is
// always BiDi for workflow fan-out (spec.md §6).
type CreateLinkRequest struct {
	LinkID     ir.LinkInstanceId  `json:"link_id"`
	ProviderID ir.LinkProviderId  `json:"provider_id"`
	Config     []byte             `json:"config"`
	Direction  ir.LinkDirection   `json:"direction"`
}

// PeerUpdate mirrors node_management_api.update_peers: Add(node_id, url) or
// Del(node_id).
type PeerUpdate struct {
	Add          bool
	NodeID       ir.NodeId
	InvocationURL string
}

// NodeClient is the opaque handle the reconciler uses to drive one worker
// node: function_instance, resource_configuration, node_management,
// link_instance, and proxy_instance APIs (spec.md §6).
type NodeClient interface {
	StartFunction(ctx context.Context, req StartFunctionRequest) error
	PatchFunction(ctx context.Context, req PatchRequest) error
	StopFunction(ctx context.Context, id ir.InstanceId) error

	StartResource(ctx context.Context, req StartResourceRequest) error
	PatchResource(ctx context.Context, req PatchRequest) error
	StopResource(ctx context.Context, id ir.InstanceId) error

	StartProxy(ctx context.Context, req StartProxyRequest) error
	PatchProxy(ctx context.Context, req StartProxyRequest) error
	StopProxy(ctx context.Context, id ir.InstanceId) error

	CreateLink(ctx context.Context, req CreateLinkRequest) error
	RemoveLink(ctx context.Context, linkID ir.LinkInstanceId) error

	UpdatePeers(ctx context.Context, update PeerUpdate) error
	KeepAlive(ctx context.Context) (HealthStatus, error)

	Close() error
}

// ClusterClient is the opaque handle the reconciler uses to drive one peer
// cluster's workflow_instance API, for subflow placement.
type ClusterClient interface {
	StartSubflow(ctx context.Context, req ir.SpawnWorkflowRequest) (ir.WorkflowInstance, error)
	StopSubflow(ctx context.Context, id ir.WorkflowId) error
	Close() error
}
