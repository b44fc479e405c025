/*
Package placement implements the placement policy of spec.md §4.2:
next_node(fleet, image_format, annotations) for actors, plus the
resource/proxy/subflow selection rules. Placement is a pure function over a
fleet snapshot taken under the registry's lock (spec.md §5) — this package
never touches the registry's lock itself.

Grounded on the teacher's pkg/scheduler/scheduler.go (selectNode: filter
candidates, then pick one) and original_source's
edgeless_con/src/ir/transformations/placement.rs (select_node_for_resource/
select_node_for_proxy/select_cluster_for_subflow).
*/
package placement

import (
	"math/rand"

	"github.com/nimbusmesh/controller/internal/ir"
)

// ResourceProviderInfo is the placement-relevant subset of a worker node's
// declared resource provider.
type ResourceProviderInfo struct {
	ClassType string
	Outputs   []string
}

// NodeSnapshot is a point-in-time, lock-free copy of one worker node's
// placement-relevant fields.
type NodeSnapshot struct {
	NodeID            ir.NodeId
	Capabilities      ir.NodeCapabilities
	ResourceProviders map[string]ResourceProviderInfo
	IsProxy           bool
	Healthy           bool
}

// ClusterSnapshot is a point-in-time, lock-free copy of one peer cluster's
// placement-relevant fields.
type ClusterSnapshot struct {
	NodeID ir.NodeId
}

// matchesImage reports whether a node's declared capabilities/labels are
// compatible with an actor image's format and annotation constraints.
// The default strategy (Random) does not filter on image format beyond
// requiring the node be healthy; annotation constraints are matched
// against node labels when present.
func matchesImage(n NodeSnapshot, imageFormat string, annotations map[string]string) bool {
	if !n.Healthy {
		return false
	}
	_ = imageFormat
	for k, v := range annotations {
		if label, ok := n.Capabilities.Labels[k]; ok && label != v {
			return false
		}
	}
	return true
}

// NextNode selects a target node for an actor with the given image format
// and annotations, using the default Random strategy across matching nodes.
func NextNode(nodes []NodeSnapshot, imageFormat string, annotations map[string]string) (ir.NodeId, bool) {
	var candidates []ir.NodeId
	for _, n := range nodes {
		if matchesImage(n, imageFormat, annotations) {
			candidates = append(candidates, n.NodeID)
		}
	}
	if len(candidates) == 0 {
		var zero ir.NodeId
		return zero, false
	}
	return candidates[rand.Intn(len(candidates))], true
}

// SelectNodeForResource picks any node advertising a resource provider
// whose class type matches the resource's class.
func SelectNodeForResource(class string, nodes []NodeSnapshot) (ir.NodeId, bool) {
	for _, n := range nodes {
		for _, provider := range n.ResourceProviders {
			if provider.ClassType == class {
				return n.NodeID, true
			}
		}
	}
	var zero ir.NodeId
	return zero, false
}

// SelectNodeForProxy picks any node flagged as proxy-capable.
func SelectNodeForProxy(nodes []NodeSnapshot) (ir.NodeId, bool) {
	for _, n := range nodes {
		if n.IsProxy {
			return n.NodeID, true
		}
	}
	var zero ir.NodeId
	return zero, false
}

// SelectClusterForSubflow picks a peer cluster for a subflow. The first
// match is acceptable (spec.md §4.2 leaves room for scoring later).
func SelectClusterForSubflow(clusters []ClusterSnapshot) (ir.NodeId, bool) {
	if len(clusters) == 0 {
		var zero ir.NodeId
		return zero, false
	}
	return clusters[0].NodeID, true
}
