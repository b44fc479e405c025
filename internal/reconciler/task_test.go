package reconciler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusmesh/controller/internal/clients"
	"github.com/nimbusmesh/controller/internal/ir"
	"github.com/nimbusmesh/controller/internal/link"
	"github.com/nimbusmesh/controller/internal/registry"
)

type recordingClient struct {
	mu      sync.Mutex
	started []ir.InstanceId
	stopped []ir.InstanceId
}

func (c *recordingClient) StartFunction(_ context.Context, req clients.StartFunctionRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = append(c.started, req.InstanceID)
	return nil
}
func (c *recordingClient) PatchFunction(context.Context, clients.PatchRequest) error { return nil }
func (c *recordingClient) StopFunction(_ context.Context, id ir.InstanceId) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = append(c.stopped, id)
	return nil
}
func (c *recordingClient) StartResource(context.Context, clients.StartResourceRequest) error { return nil }
func (c *recordingClient) PatchResource(context.Context, clients.PatchRequest) error          { return nil }
func (c *recordingClient) StopResource(context.Context, ir.InstanceId) error                  { return nil }
func (c *recordingClient) StartProxy(context.Context, clients.StartProxyRequest) error         { return nil }
func (c *recordingClient) PatchProxy(context.Context, clients.StartProxyRequest) error         { return nil }
func (c *recordingClient) StopProxy(context.Context, ir.InstanceId) error                      { return nil }
func (c *recordingClient) CreateLink(context.Context, clients.CreateLinkRequest) error         { return nil }
func (c *recordingClient) RemoveLink(context.Context, ir.LinkInstanceId) error                 { return nil }
func (c *recordingClient) UpdatePeers(context.Context, clients.PeerUpdate) error                { return nil }
func (c *recordingClient) KeepAlive(context.Context) (clients.HealthStatus, error) {
	return clients.HealthStatus{Healthy: true}, nil
}
func (c *recordingClient) Close() error { return nil }

func newTestController(t *testing.T, nodeURL string) (*ControllerTask, *recordingClient, ir.NodeId) {
	t.Helper()
	client := &recordingClient{}
	orig := registry.DialNodeFunc
	registry.DialNodeFunc = func(agentURL string) (clients.NodeClient, error) { return client, nil }
	t.Cleanup(func() { registry.DialNodeFunc = orig })

	reg := registry.New()
	nodeID := uuid.New()
	require.NoError(t, reg.RegisterNode(nodeID, nodeURL, nodeURL, ir.NodeCapabilities{}, nil, nil, false))

	links := link.NewRegistry(link.NewMulticastController(uuid.New()))
	task := New(reg, links)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go task.Run(ctx)

	return task, client, nodeID
}

func demoSpec() ir.SpawnWorkflowRequest {
	return ir.SpawnWorkflowRequest{
		WorkflowFunctions: []ir.WorkflowFunction{
			{Name: "fn", FunctionClassSpecification: ir.FunctionClassSpecification{FunctionClassID: "demo", FunctionClassType: "RUST"}},
		},
	}
}

func TestStartListStopWorkflow(t *testing.T) {
	task, client, _ := newTestController(t, "node-a")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	instance, respErr := task.StartWorkflow(ctx, demoSpec())
	require.Nil(t, respErr)
	require.Len(t, instance.NodeMapping, 1)
	assert.Len(t, client.started, 1)

	listed := task.ListWorkflows(ctx)
	require.Len(t, listed, 1)
	assert.Equal(t, instance.WorkflowID, listed[0].WorkflowID)

	require.NoError(t, task.StopWorkflow(ctx, instance.WorkflowID))
	assert.Len(t, client.stopped, 1)

	assert.Empty(t, task.ListWorkflows(ctx))
}

func TestStopUnknownWorkflowErrors(t *testing.T) {
	task, _, _ := newTestController(t, "node-b")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := task.StopWorkflow(ctx, ir.NewWorkflowId())
	assert.Error(t, err)
}

func TestNodeRemovalRePlacesWorkflow(t *testing.T) {
	task, client, deadNode := newTestController(t, "node-c")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, respErr := task.StartWorkflow(ctx, demoSpec())
	require.Nil(t, respErr)
	require.Len(t, client.started, 1)

	// Register a second node so re-placement has somewhere to land, then
	// simulate the first node going dead.
	secondClient := &recordingClient{}
	registry.DialNodeFunc = func(agentURL string) (clients.NodeClient, error) { return secondClient, nil }
	require.NoError(t, task.registry.RegisterNode(uuid.New(), "node-d", "node-d", ir.NodeCapabilities{}, nil, nil, false))

	task.NodesRemoved(map[ir.NodeId]struct{}{deadNode: {}})

	require.Eventually(t, func() bool {
		return len(secondClient.started) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
