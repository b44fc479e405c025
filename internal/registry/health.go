package registry

import (
	"context"
	"sync"
	"time"

	"github.com/nimbusmesh/controller/internal/ir"
	"github.com/nimbusmesh/controller/pkg/metrics"
)

// healthCheckInterval matches original_source's 2-second check_interval
// in controller/server.rs's main_loop.
const healthCheckInterval = 2 * time.Second

const keepAliveTimeout = 1 * time.Second

// RemovalHandler is notified when nodes or peer clusters are found dead,
// so the reconciler can re-place every affected workflow's instances.
type RemovalHandler interface {
	NodesRemoved(dead map[ir.NodeId]struct{})
	ClustersRemoved(dead map[ir.NodeId]struct{})
}

// HealthLoop runs the fleet's keep-alive probing until ctx is canceled.
// Every healthCheckInterval it probes every node concurrently; any that
// error or report unhealthy are deregistered, their peers are notified via
// the normal Del broadcast, and RemovalHandler is informed so active
// workflows can re-place onto the survivors. Peer clusters are not
// probed: ClusterClient has no keep-alive call, so probeClusters never
// reports a cluster dead and this loop never calls ClustersRemoved. The
// cluster removal path (ClustersRemoved -> NodeRemoval) exists for
// callers that report dead clusters themselves.
func (r *Registry) HealthLoop(ctx context.Context, handler RemovalHandler) {
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	r.logger.Info().Msg("health loop started")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("health loop stopped")
			return
		case <-ticker.C:
			r.checkOnce(ctx, handler)
		}
	}
}

func (r *Registry) checkOnce(ctx context.Context, handler RemovalHandler) {
	r.mu.Lock()
	nodes := make([]*WorkerNode, 0, len(r.nodes))
	for _, n := range r.nodes {
		nodes = append(nodes, n)
	}
	clusters := make([]*PeerCluster, 0, len(r.clusters))
	for _, c := range r.clusters {
		clusters = append(clusters, c)
	}
	r.mu.Unlock()

	deadNodes := r.probeNodes(ctx, nodes)
	deadClusters := r.probeClusters(ctx, clusters)

	for id := range deadNodes {
		r.DeregisterNode(id)
	}
	for id := range deadClusters {
		r.DeregisterCluster(id)
	}
	metrics.NodesRemovedTotal.Add(float64(len(deadNodes)))

	if len(deadNodes) > 0 && handler != nil {
		handler.NodesRemoved(deadNodes)
	}
	if len(deadClusters) > 0 && handler != nil {
		handler.ClustersRemoved(deadClusters)
	}
}

func (r *Registry) probeNodes(ctx context.Context, nodes []*WorkerNode) map[ir.NodeId]struct{} {
	dead := make(map[ir.NodeId]struct{})
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, n := range nodes {
		wg.Add(1)
		go func(n *WorkerNode) {
			defer wg.Done()
			if !r.probeOneNode(ctx, n) {
				mu.Lock()
				dead[n.ID] = struct{}{}
				mu.Unlock()
			}
		}(n)
	}
	wg.Wait()
	return dead
}

func (r *Registry) probeOneNode(ctx context.Context, n *WorkerNode) bool {
	probeCtx, cancel := context.WithTimeout(ctx, keepAliveTimeout)
	defer cancel()

	status, err := n.Client.KeepAlive(probeCtx)
	if err != nil || !status.Healthy {
		r.logger.Warn().Str("node", n.ID.String()).Err(err).Msg("node failed keep-alive")
		metrics.HealthChecksTotal.WithLabelValues("node", "unhealthy").Inc()
		return false
	}
	metrics.HealthChecksTotal.WithLabelValues("node", "healthy").Inc()
	return true
}

// probeClusters is a placeholder pass over registered peer clusters.
// spec.md §6 scopes ClusterClient to subflow start/stop only — it carries
// no keep-alive RPC — so there is nothing to probe yet. The pass still
// iterates clusters (rather than being omitted outright) so the shape is
// ready the day a cluster-level health RPC is added to the contract.
func (r *Registry) probeClusters(ctx context.Context, clusters []*PeerCluster) map[ir.NodeId]struct{} {
	_ = ctx
	_ = clusters
	return map[ir.NodeId]struct{}{}
}
