package ingress

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusmesh/controller/internal/clients"
	"github.com/nimbusmesh/controller/internal/ir"
	"github.com/nimbusmesh/controller/internal/link"
	"github.com/nimbusmesh/controller/internal/reconciler"
	"github.com/nimbusmesh/controller/internal/registry"
)

type fakeNodeClient struct{}

func (fakeNodeClient) StartFunction(context.Context, clients.StartFunctionRequest) error { return nil }
func (fakeNodeClient) PatchFunction(context.Context, clients.PatchRequest) error          { return nil }
func (fakeNodeClient) StopFunction(context.Context, ir.InstanceId) error                  { return nil }
func (fakeNodeClient) StartResource(context.Context, clients.StartResourceRequest) error  { return nil }
func (fakeNodeClient) PatchResource(context.Context, clients.PatchRequest) error           { return nil }
func (fakeNodeClient) StopResource(context.Context, ir.InstanceId) error                  { return nil }
func (fakeNodeClient) StartProxy(context.Context, clients.StartProxyRequest) error         { return nil }
func (fakeNodeClient) PatchProxy(context.Context, clients.StartProxyRequest) error         { return nil }
func (fakeNodeClient) StopProxy(context.Context, ir.InstanceId) error                      { return nil }
func (fakeNodeClient) CreateLink(context.Context, clients.CreateLinkRequest) error         { return nil }
func (fakeNodeClient) RemoveLink(context.Context, ir.LinkInstanceId) error                 { return nil }
func (fakeNodeClient) UpdatePeers(context.Context, clients.PeerUpdate) error                { return nil }
func (fakeNodeClient) KeepAlive(context.Context) (clients.HealthStatus, error) {
	return clients.HealthStatus{Healthy: true}, nil
}
func (fakeNodeClient) Close() error { return nil }

type fakeClusterClient struct{}

func (fakeClusterClient) StartSubflow(context.Context, ir.SpawnWorkflowRequest) (ir.WorkflowInstance, error) {
	return ir.WorkflowInstance{}, nil
}
func (fakeClusterClient) StopSubflow(context.Context, ir.WorkflowId) error { return nil }
func (fakeClusterClient) Close() error                                    { return nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	origNode, origCluster := registry.DialNodeFunc, registry.DialClusterFunc
	registry.DialNodeFunc = func(string) (clients.NodeClient, error) { return fakeNodeClient{}, nil }
	registry.DialClusterFunc = func(string) (clients.ClusterClient, error) { return fakeClusterClient{}, nil }
	t.Cleanup(func() {
		registry.DialNodeFunc = origNode
		registry.DialClusterFunc = origCluster
	})

	reg := registry.New()
	links := link.NewRegistry(link.NewMulticastController(uuid.New()))
	task := reconciler.New(reg, links)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go task.Run(ctx)

	return NewServer(task, reg)
}

func TestNodeUpdateRegistersAndDeregistersWorker(t *testing.T) {
	s := newTestServer(t)
	nodeID := uuid.New()

	resp, err := s.nodeUpdate(context.Background(), &ir.NodeUpdateRequest{
		Register: &ir.Registration{NodeID: nodeID, AgentURL: "worker-a"},
	})
	require.NoError(t, err)
	assert.True(t, resp.Accepted)
	assert.Nil(t, resp.Error)

	_, ok := s.registry.Node(nodeID)
	assert.True(t, ok)

	resp, err = s.nodeUpdate(context.Background(), &ir.NodeUpdateRequest{
		Deregister: &ir.Deregistration{NodeID: nodeID},
	})
	require.NoError(t, err)
	assert.True(t, resp.Accepted)

	_, ok = s.registry.Node(nodeID)
	assert.False(t, ok)
}

func TestNodeUpdateRegistersCluster(t *testing.T) {
	s := newTestServer(t)
	clusterID := uuid.New()

	resp, err := s.nodeUpdate(context.Background(), &ir.NodeUpdateRequest{
		Register: &ir.Registration{NodeID: clusterID, InvocationURL: "cluster-a", IsCluster: true},
	})
	require.NoError(t, err)
	assert.True(t, resp.Accepted)

	_, ok := s.registry.Cluster(clusterID)
	assert.True(t, ok)
}

func TestNodeUpdateRejectsEmptyBody(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.nodeUpdate(context.Background(), &ir.NodeUpdateRequest{})
	require.NoError(t, err)
	assert.False(t, resp.Accepted)
	require.NotNil(t, resp.Error)
}

func TestWorkflowStartStopListRoundTrip(t *testing.T) {
	s := newTestServer(t)
	nodeID := uuid.New()
	providers := []ir.ResourceProviderSpecification{{ProviderID: "log-0", ClassType: "file-log"}}
	require.NoError(t, s.registry.RegisterNode(nodeID, "worker-a", "worker-a", ir.NodeCapabilities{}, providers, nil, false))

	req := &ir.SpawnWorkflowRequest{
		WorkflowResources: []ir.WorkflowResource{
			{Name: "log", ClassType: "file-log"},
		},
	}
	startResp, err := s.workflowStart(context.Background(), req)
	require.NoError(t, err)
	require.Nil(t, startResp.Error)
	require.NotNil(t, startResp.Instance)

	listed, err := s.workflowList(context.Background(), &empty{})
	require.NoError(t, err)
	assert.Len(t, *listed, 1)

	_, err = s.workflowStop(context.Background(), &startResp.Instance.WorkflowID)
	require.NoError(t, err)
}
