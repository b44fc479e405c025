package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/nimbusmesh/controller/internal/clients"
	"github.com/nimbusmesh/controller/internal/ir"
	"github.com/nimbusmesh/controller/internal/placement"
	"github.com/nimbusmesh/controller/pkg/log"
)

// ResourceProvider is one resource class a worker node advertises.
type ResourceProvider struct {
	ProviderID string
	ClassType  string
	Outputs    []string
}

// WorkerNode is one registered worker's record: its declared capabilities
// and a live client handle used to dispatch RequiredChanges and keep-alive
// probes.
type WorkerNode struct {
	ID                ir.NodeId
	AgentURL          string
	InvocationURL     string
	Capabilities      ir.NodeCapabilities
	ResourceProviders map[string]ResourceProvider
	LinkProviders     map[ir.LinkType]ir.LinkProviderId
	IsProxy           bool
	Client            clients.NodeClient
	Healthy           bool
}

// PeerCluster is one registered peer cluster's record, used for subflow
// placement.
type PeerCluster struct {
	ID            ir.NodeId
	ControllerURL string
	Client        clients.ClusterClient
	Healthy       bool
}

// Registry is the controller's mutex-protected fleet table.
type Registry struct {
	mu       sync.Mutex
	nodes    map[ir.NodeId]*WorkerNode
	clusters map[ir.NodeId]*PeerCluster
	logger   zerolog.Logger
}

// DialNodeFunc/DialClusterFunc are swapped out in tests to avoid dialing real
// transports.
var (
	DialNodeFunc    = clients.Dial
	DialClusterFunc = clients.DialCluster
)

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{
		nodes:    make(map[ir.NodeId]*WorkerNode),
		clusters: make(map[ir.NodeId]*PeerCluster),
		logger:   log.WithComponent("registry"),
	}
}

// RegisterNode admits a new worker node keyed on NodeId (grounded on
// server.rs's process_node_registration): a NodeId already on file with
// identical agentURL/invocationURL is accepted as a no-op re-registration;
// one on file with either URL changed is rejected with the exact
// "Duplicate NodeId with different URL(s)." error the original returns,
// since silently re-dialing and overwriting would mask a misconfigured
// node reusing another's identity. Only a genuinely new NodeId dials a
// NodeClient for agentURL, inserts the record, broadcasts an Add update
// (carrying invocationURL, the address peers actually invoke) for the new
// node to every existing node, and sends an Add update for every existing
// node to the new node — so every node's peer table stays consistent
// without a full resync.
func (r *Registry) RegisterNode(id ir.NodeId, agentURL, invocationURL string, caps ir.NodeCapabilities, providers []ir.ResourceProviderSpecification, linkProviders []ir.LinkProviderSpecification, isProxy bool) error {
	r.mu.Lock()
	if existing, ok := r.nodes[id]; ok {
		r.mu.Unlock()
		if existing.AgentURL == agentURL && existing.InvocationURL == invocationURL {
			return nil
		}
		return ir.ResponseError{Summary: "Duplicate NodeId with different URL(s)."}
	}
	r.mu.Unlock()

	client, err := DialNodeFunc(agentURL)
	if err != nil {
		return fmt.Errorf("dial new node %s: %w", agentURL, err)
	}

	resourceProviders := make(map[string]ResourceProvider, len(providers))
	for _, p := range providers {
		resourceProviders[p.ProviderID] = ResourceProvider{ProviderID: p.ProviderID, ClassType: p.ClassType, Outputs: p.Outputs}
	}
	linkProviderMap := make(map[ir.LinkType]ir.LinkProviderId, len(linkProviders))
	for _, p := range linkProviders {
		linkProviderMap[p.Class] = p.ProviderID
	}

	node := &WorkerNode{
		ID:                id,
		AgentURL:          agentURL,
		InvocationURL:     invocationURL,
		Capabilities:      caps,
		ResourceProviders: resourceProviders,
		LinkProviders:     linkProviderMap,
		IsProxy:           isProxy,
		Client:            client,
		Healthy:           true,
	}

	r.mu.Lock()
	existing := make([]*WorkerNode, 0, len(r.nodes))
	for _, n := range r.nodes {
		existing = append(existing, n)
	}
	r.nodes[id] = node
	r.mu.Unlock()

	ctx := context.Background()
	for _, n := range existing {
		if err := n.Client.UpdatePeers(ctx, clients.PeerUpdate{Add: true, NodeID: id, InvocationURL: invocationURL}); err != nil {
			r.logger.Warn().Err(err).Str("node", n.ID.String()).Msg("failed to announce new peer")
		}
		if err := node.Client.UpdatePeers(ctx, clients.PeerUpdate{Add: true, NodeID: n.ID, InvocationURL: n.InvocationURL}); err != nil {
			r.logger.Warn().Err(err).Str("node", n.ID.String()).Msg("failed to announce existing peer to new node")
		}
	}

	r.logger.Info().Str("node", id.String()).Str("url", agentURL).Msg("node registered")
	return nil
}

// DeregisterNode removes a node and broadcasts its removal to the
// remaining fleet.
func (r *Registry) DeregisterNode(id ir.NodeId) {
	r.mu.Lock()
	node, ok := r.nodes[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.nodes, id)
	remaining := make([]*WorkerNode, 0, len(r.nodes))
	for _, n := range r.nodes {
		remaining = append(remaining, n)
	}
	r.mu.Unlock()

	ctx := context.Background()
	for _, n := range remaining {
		if err := n.Client.UpdatePeers(ctx, clients.PeerUpdate{Add: false, NodeID: id}); err != nil {
			r.logger.Warn().Err(err).Str("node", n.ID.String()).Msg("failed to announce peer removal")
		}
	}
	_ = node.Client.Close()
	r.logger.Info().Str("node", id.String()).Msg("node deregistered")
}

// RegisterCluster admits a new peer cluster used for subflow placement.
func (r *Registry) RegisterCluster(id ir.NodeId, controllerURL string) error {
	client, err := DialClusterFunc(controllerURL)
	if err != nil {
		return fmt.Errorf("dial peer cluster %s: %w", controllerURL, err)
	}
	r.mu.Lock()
	r.clusters[id] = &PeerCluster{ID: id, ControllerURL: controllerURL, Client: client, Healthy: true}
	r.mu.Unlock()
	return nil
}

// DeregisterCluster removes a peer cluster record.
func (r *Registry) DeregisterCluster(id ir.NodeId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clusters[id]; ok {
		_ = c.Client.Close()
		delete(r.clusters, id)
	}
}

// Node returns the node record for id, if registered.
func (r *Registry) Node(id ir.NodeId) (*WorkerNode, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nodes[id]
	return n, ok
}

// Cluster returns the peer cluster record for id, if registered.
func (r *Registry) Cluster(id ir.NodeId) (*PeerCluster, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clusters[id]
	return c, ok
}

// FleetCounts buckets every registered node and cluster by role/health for
// metrics.Collector, without handing the collector a concrete *Registry.
func (r *Registry) FleetCounts() (map[string]map[string]int, map[string]int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	nodeCounts := make(map[string]map[string]int)
	for _, n := range r.nodes {
		role := "worker"
		if n.IsProxy {
			role = "proxy"
		}
		status := "healthy"
		if !n.Healthy {
			status = "unhealthy"
		}
		if nodeCounts[role] == nil {
			nodeCounts[role] = make(map[string]int)
		}
		nodeCounts[role][status]++
	}

	clusterCounts := make(map[string]int)
	for _, c := range r.clusters {
		status := "healthy"
		if !c.Healthy {
			status = "unhealthy"
		}
		clusterCounts[status]++
	}

	return nodeCounts, clusterCounts
}

// Snapshot takes a brief lock and copies out a placement-ready view of the
// fleet, decoupling internal/placement from this package's lock.
func (r *Registry) Snapshot() ([]placement.NodeSnapshot, []placement.ClusterSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	nodes := make([]placement.NodeSnapshot, 0, len(r.nodes))
	for _, n := range r.nodes {
		providers := make(map[string]placement.ResourceProviderInfo, len(n.ResourceProviders))
		for name, p := range n.ResourceProviders {
			providers[name] = placement.ResourceProviderInfo{ClassType: p.ClassType, Outputs: p.Outputs}
		}
		nodes = append(nodes, placement.NodeSnapshot{
			NodeID:            n.ID,
			Capabilities:      n.Capabilities,
			ResourceProviders: providers,
			IsProxy:           n.IsProxy,
			Healthy:           n.Healthy,
		})
	}

	clusters := make([]placement.ClusterSnapshot, 0, len(r.clusters))
	for _, c := range r.clusters {
		if c.Healthy {
			clusters = append(clusters, placement.ClusterSnapshot{NodeID: c.ID})
		}
	}

	return nodes, clusters
}
