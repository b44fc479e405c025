package reconciler

import (
	"context"
	"fmt"

	"github.com/nimbusmesh/controller/internal/clients"
	"github.com/nimbusmesh/controller/internal/ir"
	"github.com/nimbusmesh/controller/pkg/metrics"
)

// dispatch applies every RequiredChange by calling the one RPC it maps
// to, collecting a message per failure rather than aborting at the first
// one — mirroring server.rs's materialize(), which dispatches the whole
// batch and returns Err(Vec<String>) only if something failed.
func (t *ControllerTask) dispatch(ctx context.Context, changes []ir.RequiredChange) []string {
	var failures []string

	for _, change := range changes {
		if err := t.applyOne(ctx, change); err != nil {
			failures = append(failures, err.Error())
			metrics.DispatchFailuresTotal.WithLabelValues(fmt.Sprintf("%T", change)).Inc()
		}
	}

	return failures
}

func (t *ControllerTask) applyOne(ctx context.Context, change ir.RequiredChange) error {
	switch c := change.(type) {
	case ir.StartFunction:
		client, err := t.nodeClient(c.FunctionID.NodeID)
		if err != nil {
			return err
		}
		return client.StartFunction(ctx, clients.StartFunctionRequest{
			InstanceID: c.FunctionID, Image: c.Image,
			InputMapping: c.InputMapping, OutputMapping: c.OutputMapping,
			Annotations: c.Annotations,
		})

	case ir.PatchFunction:
		client, err := t.nodeClient(c.FunctionID.NodeID)
		if err != nil {
			return err
		}
		return client.PatchFunction(ctx, clients.PatchRequest{
			InstanceID: c.FunctionID, InputMapping: c.InputMapping, OutputMapping: c.OutputMapping,
		})

	case ir.StopFunction:
		client, err := t.nodeClient(c.FunctionID.NodeID)
		if err != nil {
			return err
		}
		return client.StopFunction(ctx, c.FunctionID)

	case ir.StartResource:
		client, err := t.nodeClient(c.ResourceID.NodeID)
		if err != nil {
			return err
		}
		return client.StartResource(ctx, clients.StartResourceRequest{
			InstanceID: c.ResourceID, ClassType: c.ClassType,
			InputMapping: c.InputMapping, OutputMapping: c.OutputMapping,
			Configuration: c.Configuration,
		})

	case ir.PatchResource:
		client, err := t.nodeClient(c.ResourceID.NodeID)
		if err != nil {
			return err
		}
		return client.PatchResource(ctx, clients.PatchRequest{
			InstanceID: c.ResourceID, InputMapping: c.InputMapping, OutputMapping: c.OutputMapping,
		})

	case ir.StopResource:
		client, err := t.nodeClient(c.ResourceID.NodeID)
		if err != nil {
			return err
		}
		return client.StopResource(ctx, c.ResourceID)

	case ir.CreateProxy:
		client, err := t.nodeClient(c.ProxyID.NodeID)
		if err != nil {
			return err
		}
		return client.StartProxy(ctx, clients.StartProxyRequest{
			InstanceID: c.ProxyID,
			InternalInputs: c.InternalInputs, InternalOutputs: c.InternalOutputs,
			ExternalInputs: c.ExternalInputs, ExternalOutputs: c.ExternalOutputs,
		})

	case ir.PatchProxy:
		client, err := t.nodeClient(c.ProxyID.NodeID)
		if err != nil {
			return err
		}
		return client.PatchProxy(ctx, clients.StartProxyRequest{
			InstanceID: c.ProxyID,
			InternalInputs: c.InternalInputs, InternalOutputs: c.InternalOutputs,
			ExternalInputs: c.ExternalInputs, ExternalOutputs: c.ExternalOutputs,
		})

	case ir.StopProxy:
		client, err := t.nodeClient(c.ProxyID.NodeID)
		if err != nil {
			return err
		}
		return client.StopProxy(ctx, c.ProxyID)

	case ir.CreateSubflow:
		cluster, err := t.clusterClient(c.SubflowID.NodeID)
		if err != nil {
			return err
		}
		_, err = cluster.StartSubflow(ctx, c.SpawnReq)
		return err

	case ir.PatchSubflow:
		// The cluster client contract carries no subflow patch RPC
		// (spec.md §6 scopes ClusterClient to start/stop); rewiring a live
		// subflow's external links is not yet representable on the wire.
		return fmt.Errorf("patch_subflow %s: unsupported by cluster client contract", c.SubflowID)

	case ir.StopSubflow:
		cluster, err := t.clusterClient(c.SubflowID.NodeID)
		if err != nil {
			return err
		}
		return cluster.StopSubflow(ctx, ir.WorkflowId{WorkflowID: c.SubflowID.ComponentID})

	case ir.InstantiateLinkControlPlane:
		controller, ok := t.links.For(c.Class)
		if !ok {
			return fmt.Errorf("instantiate_link_control_plane: no controller for %s", c.Class)
		}
		return controller.InstantiateControlPlane(c.LinkID)

	case ir.CreateLinkOnNode:
		client, err := t.nodeClient(c.NodeID)
		if err != nil {
			return err
		}
		return client.CreateLink(ctx, clients.CreateLinkRequest{
			LinkID: c.LinkID, ProviderID: c.ProviderID, Config: c.Config, Direction: ir.LinkDirectionBiDi,
		})

	case ir.RemoveLinkFromNode:
		client, err := t.nodeClient(c.NodeID)
		if err != nil {
			return err
		}
		return client.RemoveLink(ctx, c.LinkID)

	default:
		return fmt.Errorf("dispatch: unhandled change type %T", change)
	}
}

func (t *ControllerTask) nodeClient(id ir.NodeId) (clients.NodeClient, error) {
	node, ok := t.registry.Node(id)
	if !ok {
		return nil, fmt.Errorf("node %s not registered", id)
	}
	return node.Client, nil
}

func (t *ControllerTask) clusterClient(id ir.NodeId) (clients.ClusterClient, error) {
	cluster, ok := t.registry.Cluster(id)
	if !ok {
		return nil, fmt.Errorf("peer cluster %s not registered", id)
	}
	return cluster.Client, nil
}
