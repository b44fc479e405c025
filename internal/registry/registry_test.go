package registry

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
)

type fakeNodeClient struct {
	mu       sync.Mutex
	healthy  bool
	peers    []clients.PeerUpdate
	closed   bool
}

func (f *fakeNodeClient) StartFunction(context.Context, clients.StartFunctionRequest) error { return nil }
func (f *fakeNodeClient) PatchFunction(context.Context, clients.PatchRequest) error          { return nil }
func (f *fakeNodeClient) StopFunction(context.Context, ir.InstanceId) error                  { return nil }
func (f *fakeNodeClient) StartResource(context.Context, clients.StartResourceRequest) error  { return nil }
func (f *fakeNodeClient) PatchResource(context.Context, clients.PatchRequest) error           { return nil }
func (f *fakeNodeClient) StopResource(context.Context, ir.InstanceId) error                  { return nil }
func (f *fakeNodeClient) StartProxy(context.Context, clients.StartProxyRequest) error         { return nil }
func (f *fakeNodeClient) PatchProxy(context.Context, clients.StartProxyRequest) error         { return nil }
func (f *fakeNodeClient) StopProxy(context.Context, ir.InstanceId) error                      { return nil }
func (f *fakeNodeClient) CreateLink(context.Context, clients.CreateLinkRequest) error         { return nil }
func (f *fakeNodeClient) RemoveLink(context.Context, ir.LinkInstanceId) error                 { return nil }

func (f *fakeNodeClient) UpdatePeers(_ context.Context, update clients.PeerUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.peers = append(f.peers, update)
	return nil
}

func (f *fakeNodeClient) KeepAlive(context.Context) (clients.HealthStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return clients.HealthStatus{Healthy: f.healthy}, nil
}

func (f *fakeNodeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func withFakeDial(t *testing.T, nodes map[string]*fakeNodeClient) {
	t.Helper()
	orig := DialNodeFunc
	DialNodeFunc = func(agentURL string) (clients.NodeClient, error) {
		return nodes[agentURL], nil
	}
	t.Cleanup(func() { DialNodeFunc = orig })
}

func TestRegisterNodeSameIDSameURLIsIdempotent(t *testing.T) {
	fakeA := &fakeNodeClient{healthy: true}
	withFakeDial(t, map[string]*fakeNodeClient{"node-a": fakeA})

	r := New()
	id := uuid.New()
	require.NoError(t, r.RegisterNode(id, "node-a", "node-a", ir.NodeCapabilities{}, nil, nil, false))
	require.NoError(t, r.RegisterNode(id, "node-a", "node-a", ir.NodeCapabilities{}, nil, nil, false))

	_, ok := r.Node(id)
	assert.True(t, ok)
}

func TestRegisterNodeSameIDDifferentURLIsRejected(t *testing.T) {
	fakeA := &fakeNodeClient{healthy: true}
	withFakeDial(t, map[string]*fakeNodeClient{"node-a": fakeA})

	r := New()
	id := uuid.New()
	require.NoError(t, r.RegisterNode(id, "node-a", "node-a", ir.NodeCapabilities{}, nil, nil, false))

	err := r.RegisterNode(id, "node-b", "node-b", ir.NodeCapabilities{}, nil, nil, false)
	require.Error(t, err)
	var respErr ir.ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, "Duplicate NodeId with different URL(s).", respErr.Summary)
}

func TestRegisterNodeBroadcastsPeers(t *testing.T) {
	fakeA := &fakeNodeClient{healthy: true}
	fakeB := &fakeNodeClient{healthy: true}
	withFakeDial(t, map[string]*fakeNodeClient{"node-a": fakeA, "node-b": fakeB})

	r := New()
	idA := uuid.New()
	require.NoError(t, r.RegisterNode(idA, "node-a", "node-a", ir.NodeCapabilities{}, nil, nil, false))
	require.NoError(t, r.RegisterNode(uuid.New(), "node-b", "node-b", ir.NodeCapabilities{}, nil, nil, false))

	require.Len(t, fakeA.peers, 1)
	assert.True(t, fakeA.peers[0].Add)
	require.Len(t, fakeB.peers, 1)
	assert.Equal(t, idA, fakeB.peers[0].NodeID)
}

func TestHealthLoopRemovesDeadNode(t *testing.T) {
	dead := &fakeNodeClient{healthy: false}
	alive := &fakeNodeClient{healthy: true}
	withFakeDial(t, map[string]*fakeNodeClient{"dead": dead, "alive": alive})

	r := New()
	deadID := uuid.New()
	require.NoError(t, r.RegisterNode(deadID, "dead", "dead", ir.NodeCapabilities{}, nil, nil, false))
	require.NoError(t, r.RegisterNode(uuid.New(), "alive", "alive", ir.NodeCapabilities{}, nil, nil, false))

	handler := &capturingHandler{}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	r.checkOnce(ctx, handler)

	_, stillThere := r.Node(deadID)
	assert.False(t, stillThere)
	assert.Contains(t, handler.nodesRemoved, deadID)
}

type capturingHandler struct {
	nodesRemoved    map[ir.NodeId]struct{}
	clustersRemoved map[ir.NodeId]struct{}
}

func (c *capturingHandler) NodesRemoved(dead map[ir.NodeId]struct{}) {
	c.nodesRemoved = dead
}

func (c *capturingHandler) ClustersRemoved(dead map[ir.NodeId]struct{}) {
	c.clustersRemoved = dead
}
