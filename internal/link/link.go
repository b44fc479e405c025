/*
Package link implements the workflow-link control plane described in
spec.md §4.6: allocating a LinkInstanceId for a multicast fan-out,
producing per-node configuration blobs, and tracking, per link, whether
its control plane has been instantiated. The concrete multicast datapath
(packet replication on the wire) is out of scope — this package owns
only the bookkeeping the PipeGenerator stage and the reconciler need to
drive CreateLinkOnNode / InstantiateLinkControlPlane changes.

Grounded on original_source/edgeless_con/src/ir/transformations/
pipe_generator.rs (id allocation, config_for, WorkflowLink bookkeeping)
and the teacher's pkg/network package's controller-registry pattern
(a map of named strategies behind one interface).
*/
package link

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/nimbusmesh/controller/internal/ir"
	"github.com/nimbusmesh/controller/pkg/metrics"
)

// Controller allocates link instances of one LinkType and produces
// per-node configuration for them.
type Controller interface {
	Type() ir.LinkType
	NewLink(nodes []ir.NodeId) (ir.LinkInstanceId, error)
	ConfigFor(linkID ir.LinkInstanceId, node ir.NodeId) ([]byte, error)
	InstantiateControlPlane(linkID ir.LinkInstanceId) error
}

// Registry dispatches to a Controller by LinkType.
type Registry struct {
	mu          sync.RWMutex
	controllers map[ir.LinkType]Controller
}

// NewRegistry constructs a Registry pre-populated with the given
// controllers, keyed by their own Type().
func NewRegistry(controllers ...Controller) *Registry {
	r := &Registry{controllers: make(map[ir.LinkType]Controller)}
	for _, c := range controllers {
		r.controllers[c.Type()] = c
	}
	return r
}

// For returns the Controller registered for the given LinkType.
func (r *Registry) For(t ir.LinkType) (Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.controllers[t]
	return c, ok
}

// multicastState tracks one allocated multicast link: its member nodes
// and whether the link's control plane has been instantiated (one flag
// for the whole link, not one per node).
type multicastState struct {
	nodes         []ir.NodeId
	controlPlane  bool
}

// MulticastController is the required MULTICAST link implementation
// (spec.md §4.6 / §6). It allocates a LinkInstanceId per call to NewLink
// and hands every member node the same provider id plus the full member
// list as its config, mirroring pipe_generator.rs's config_for.
type MulticastController struct {
	providerID ir.LinkProviderId

	mu    sync.Mutex
	links map[ir.LinkInstanceId]*multicastState
}

// NewMulticastController constructs a MulticastController identified by
// providerID, the value advertised in each node's CreateLinkRequest.
func NewMulticastController(providerID ir.LinkProviderId) *MulticastController {
	return &MulticastController{
		providerID: providerID,
		links:      make(map[ir.LinkInstanceId]*multicastState),
	}
}

func (m *MulticastController) Type() ir.LinkType { return ir.MulticastLinkType }

func (m *MulticastController) NewLink(nodes []ir.NodeId) (ir.LinkInstanceId, error) {
	if len(nodes) < 2 {
		return uuid.Nil, fmt.Errorf("multicast link requires at least 2 distinct nodes, got %d", len(nodes))
	}
	id := uuid.New()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[id] = &multicastState{nodes: append([]ir.NodeId(nil), nodes...)}
	metrics.LinkInstancesTotal.WithLabelValues(string(ir.MulticastLinkType)).Inc()
	return id, nil
}

// multicastConfig is the JSON payload handed to every node participating
// in a multicast link: its own provider id and the full peer set, so the
// node-side datapath knows where to replicate outbound messages.
type multicastConfig struct {
	ProviderID ir.LinkProviderId `json:"provider_id"`
	Peers      []ir.NodeId       `json:"peers"`
}

func (m *MulticastController) ConfigFor(linkID ir.LinkInstanceId, node ir.NodeId) ([]byte, error) {
	m.mu.Lock()
	state, ok := m.links[linkID]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown multicast link %s", linkID)
	}
	found := false
	for _, n := range state.nodes {
		if n == node {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("node %s is not a member of link %s", node, linkID)
	}
	return json.Marshal(multicastConfig{ProviderID: m.providerID, Peers: state.nodes})
}

func (m *MulticastController) InstantiateControlPlane(linkID ir.LinkInstanceId) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.links[linkID]
	if !ok {
		return fmt.Errorf("unknown multicast link %s", linkID)
	}
	state.controlPlane = true
	return nil
}
