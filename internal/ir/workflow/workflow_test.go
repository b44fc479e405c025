package workflow

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusmesh/controller/internal/ir"
	"github.com/nimbusmesh/controller/internal/ir/transform"
	"github.com/nimbusmesh/controller/internal/link"
	"github.com/nimbusmesh/controller/internal/placement"
)

func singleNodeFleet(node ir.NodeId) func() transform.Fleet {
	return func() transform.Fleet {
		return transform.Fleet{Nodes: []placement.NodeSnapshot{{NodeID: node, Healthy: true}}}
	}
}

func simpleRequest() ir.SpawnWorkflowRequest {
	return ir.SpawnWorkflowRequest{
		WorkflowFunctions: []ir.WorkflowFunction{
			{
				Name: "fn",
				FunctionClassSpecification: ir.FunctionClassSpecification{
					FunctionClassID: "demo", FunctionClassType: "RUST",
				},
			},
		},
	}
}

// I3: after InitialSpawn + Commit, Reconcile must produce no further
// changes — materialized has converged to desired.
func TestInitialSpawnThenCommitConverges(t *testing.T) {
	node := uuid.New()
	active := NewActiveWorkflow(ir.NewWorkflowId(), simpleRequest())
	mw := NewManagedWorkflow(active, singleNodeFleet(node), link.NewRegistry(link.NewMulticastController(uuid.New())))

	changes, err := mw.InitialSpawn()
	require.NoError(t, err)
	require.Len(t, changes, 1)
	_, ok := changes[0].(ir.StartFunction)
	require.True(t, ok)

	mw.Commit()
	assert.Empty(t, mw.Reconcile())
}

// Dead-node removal clears materialized state for affected instances and
// causes the next reconcile to emit a fresh Start for the re-placed node.
func TestNodeRemovalTriggersReplacement(t *testing.T) {
	nodeA := uuid.New()
	nodeB := uuid.New()
	active := NewActiveWorkflow(ir.NewWorkflowId(), simpleRequest())
	links := link.NewRegistry(link.NewMulticastController(uuid.New()))

	current := nodeA
	mw := NewManagedWorkflow(active, func() transform.Fleet {
		return transform.Fleet{Nodes: []placement.NodeSnapshot{{NodeID: current, Healthy: true}}}
	}, links)

	_, err := mw.InitialSpawn()
	require.NoError(t, err)
	mw.Commit()

	current = nodeB
	mw.NodeRemoval(map[ir.NodeId]struct{}{nodeA: {}})

	changes := mw.Reconcile()
	require.Len(t, changes, 1)
	start, ok := changes[0].(ir.StartFunction)
	require.True(t, ok)
	assert.Equal(t, nodeB, start.FunctionID.NodeID)
}

// Stop produces a StopFunction for every materialized instance and none
// for instances that never materialized.
func TestStopOnlyUnwindsMaterialized(t *testing.T) {
	node := uuid.New()
	active := NewActiveWorkflow(ir.NewWorkflowId(), simpleRequest())
	mw := NewManagedWorkflow(active, singleNodeFleet(node), link.NewRegistry(link.NewMulticastController(uuid.New())))

	assert.Empty(t, mw.Stop())

	_, err := mw.InitialSpawn()
	require.NoError(t, err)
	mw.Commit()

	stops := mw.Stop()
	require.Len(t, stops, 1)
	_, ok := stops[0].(ir.StopFunction)
	assert.True(t, ok)
}
