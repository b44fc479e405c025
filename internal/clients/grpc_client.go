package clients

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/nimbusmesh/controller/internal/ir"
)

const (
	methodStartFunction  = "/edgectl.node.FunctionInstance/Start"
	methodPatchFunction  = "/edgectl.node.FunctionInstance/Patch"
	methodStopFunction   = "/edgectl.node.FunctionInstance/Stop"
	methodStartResource  = "/edgectl.node.ResourceConfiguration/Start"
	methodPatchResource  = "/edgectl.node.ResourceConfiguration/Patch"
	methodStopResource   = "/edgectl.node.ResourceConfiguration/Stop"
	methodStartProxy     = "/edgectl.node.ProxyInstance/Start"
	methodPatchProxy     = "/edgectl.node.ProxyInstance/Patch"
	methodStopProxy      = "/edgectl.node.ProxyInstance/Stop"
	methodCreateLink     = "/edgectl.node.LinkInstance/Create"
	methodRemoveLink     = "/edgectl.node.LinkInstance/Remove"
	methodUpdatePeers    = "/edgectl.node.NodeManagement/UpdatePeers"
	methodKeepAlive      = "/edgectl.node.NodeManagement/KeepAlive"
	methodStartSubflow   = "/edgectl.cluster.WorkflowInstance/Start"
	methodStopSubflow    = "/edgectl.cluster.WorkflowInstance/Stop"
)

// grpcNodeClient implements NodeClient over a real *grpc.ClientConn using
// the JSON codec registered in jsoncodec.go, matching the teacher's
// (pkg/api/server.go) use of google.golang.org/grpc for its own API
// surface, adapted here for the node-side contracts.
type grpcNodeClient struct {
	conn *grpc.ClientConn
}

func dialGRPC(target string) (*grpc.ClientConn, error) {
	return grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(jsonCodecName)),
	)
}

func newGRPCNodeClient(agentURL string) (NodeClient, error) {
	conn, err := dialGRPC(agentURL)
	if err != nil {
		return nil, fmt.Errorf("dial node %s: %w", agentURL, err)
	}
	return &grpcNodeClient{conn: conn}, nil
}

func (c *grpcNodeClient) invoke(ctx context.Context, method string, req, resp any) error {
	return c.conn.Invoke(ctx, method, req, resp)
}

func (c *grpcNodeClient) StartFunction(ctx context.Context, req StartFunctionRequest) error {
	return c.invoke(ctx, methodStartFunction, &req, &struct{}{})
}

func (c *grpcNodeClient) PatchFunction(ctx context.Context, req PatchRequest) error {
	return c.invoke(ctx, methodPatchFunction, &req, &struct{}{})
}

func (c *grpcNodeClient) StopFunction(ctx context.Context, id ir.InstanceId) error {
	return c.invoke(ctx, methodStopFunction, &id, &struct{}{})
}

func (c *grpcNodeClient) StartResource(ctx context.Context, req StartResourceRequest) error {
	return c.invoke(ctx, methodStartResource, &req, &struct{}{})
}

func (c *grpcNodeClient) PatchResource(ctx context.Context, req PatchRequest) error {
	return c.invoke(ctx, methodPatchResource, &req, &struct{}{})
}

func (c *grpcNodeClient) StopResource(ctx context.Context, id ir.InstanceId) error {
	return c.invoke(ctx, methodStopResource, &id, &struct{}{})
}

func (c *grpcNodeClient) StartProxy(ctx context.Context, req StartProxyRequest) error {
	return c.invoke(ctx, methodStartProxy, &req, &struct{}{})
}

func (c *grpcNodeClient) PatchProxy(ctx context.Context, req StartProxyRequest) error {
	return c.invoke(ctx, methodPatchProxy, &req, &struct{}{})
}

func (c *grpcNodeClient) StopProxy(ctx context.Context, id ir.InstanceId) error {
	return c.invoke(ctx, methodStopProxy, &id, &struct{}{})
}

func (c *grpcNodeClient) CreateLink(ctx context.Context, req CreateLinkRequest) error {
	return c.invoke(ctx, methodCreateLink, &req, &struct{}{})
}

func (c *grpcNodeClient) RemoveLink(ctx context.Context, linkID ir.LinkInstanceId) error {
	return c.invoke(ctx, methodRemoveLink, &linkID, &struct{}{})
}

func (c *grpcNodeClient) UpdatePeers(ctx context.Context, update PeerUpdate) error {
	return c.invoke(ctx, methodUpdatePeers, &update, &struct{}{})
}

func (c *grpcNodeClient) KeepAlive(ctx context.Context) (HealthStatus, error) {
	var resp HealthStatus
	if err := c.invoke(ctx, methodKeepAlive, &struct{}{}, &resp); err != nil {
		return HealthStatus{}, err
	}
	return resp, nil
}

func (c *grpcNodeClient) Close() error { return c.conn.Close() }

// grpcClusterClient implements ClusterClient for subflow placement on a
// peer cluster's controller.
type grpcClusterClient struct {
	conn *grpc.ClientConn
}

func newGRPCClusterClient(controllerURL string) (ClusterClient, error) {
	conn, err := dialGRPC(controllerURL)
	if err != nil {
		return nil, fmt.Errorf("dial cluster %s: %w", controllerURL, err)
	}
	return &grpcClusterClient{conn: conn}, nil
}

func (c *grpcClusterClient) StartSubflow(ctx context.Context, req ir.SpawnWorkflowRequest) (ir.WorkflowInstance, error) {
	var resp ir.WorkflowInstance
	if err := c.conn.Invoke(ctx, methodStartSubflow, &req, &resp); err != nil {
		return ir.WorkflowInstance{}, err
	}
	return resp, nil
}

func (c *grpcClusterClient) StopSubflow(ctx context.Context, id ir.WorkflowId) error {
	return c.conn.Invoke(ctx, methodStopSubflow, &id, &struct{}{})
}

func (c *grpcClusterClient) Close() error { return c.conn.Close() }
