package ir

import (
	"fmt"

	"github.com/google/uuid"
)

// WorkflowId identifies a submitted workflow.
type WorkflowId struct {
	WorkflowID uuid.UUID `json:"workflow_id"`
}

func NewWorkflowId() WorkflowId {
	return WorkflowId{WorkflowID: uuid.New()}
}

func (w WorkflowId) String() string {
	return w.WorkflowID.String()
}

// NodeId identifies a worker node or a peer cluster.
type NodeId = uuid.UUID

// InstanceId identifies a placed instance: a (NodeId, component uuid) pair.
type InstanceId struct {
	NodeID      NodeId    `json:"node_id"`
	ComponentID uuid.UUID `json:"component_id"`
}

func NewInstanceId(nodeID NodeId) InstanceId {
	return InstanceId{NodeID: nodeID, ComponentID: uuid.New()}
}

func (i InstanceId) String() string {
	return fmt.Sprintf("%s/%s", i.NodeID, i.ComponentID)
}

// LinkInstanceId identifies one fabric-level logical link.
type LinkInstanceId = uuid.UUID

// LinkProviderId identifies a per-node provider implementing a LinkType.
type LinkProviderId = uuid.UUID

// LinkType labels a class of link fabric, e.g. "MULTICAST".
type LinkType string

const MulticastLinkType LinkType = "MULTICAST"

// LinkDirection mirrors the wire-level direction enum (spec.md §6):
// Read=0, Write=1, BiDi=2. The controller always requests BiDi for
// workflow fan-out.
type LinkDirection int32

const (
	LinkDirectionRead LinkDirection = 0
	LinkDirectionWrite LinkDirection = 1
	LinkDirectionBiDi LinkDirection = 2
)

// PortId names a port on a component.
type PortId string

// PortMethod distinguishes fire-and-forget from request/reply ports.
type PortMethod string

const (
	PortMethodCast PortMethod = "cast"
	PortMethodCall PortMethod = "call"
)

// PortDataType is an opaque schema tag carried alongside a port.
type PortDataType string

// Port describes one named port on an actor class.
type Port struct {
	Method   PortMethod   `json:"method"`
	DataType PortDataType `json:"data_type"`
}

// MappingNodeKind distinguishes a named port from the inner-structure's
// synthetic "side effect" sink used for dead-code preservation (I6).
type MappingNodeKind string

const (
	MappingNodePort       MappingNodeKind = "port"
	MappingNodeSideEffect MappingNodeKind = "side_effect"
)

// MappingNode is one node in an ActorClass's inner-structure graph: either
// a named port or the side-effect sink.
type MappingNode struct {
	Kind MappingNodeKind `json:"kind"`
	Port PortId          `json:"port,omitempty"`
}

func PortNode(p PortId) MappingNode { return MappingNode{Kind: MappingNodePort, Port: p} }

var SideEffectNode = MappingNode{Kind: MappingNodeSideEffect}
