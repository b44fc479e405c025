package transform

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusmesh/controller/internal/ir"
	"github.com/nimbusmesh/controller/internal/link"
	"github.com/nimbusmesh/controller/internal/placement"
)

func actorWithPorts(ports ir.LogicalPorts) *ir.Actor {
	return ir.NewActor(ir.ActorImage{Format: "RUST", Class: ir.ActorClass{
		Inputs:  map[ir.PortId]ir.Port{},
		Outputs: map[ir.PortId]ir.Port{},
	}}, map[string]string{}, ports)
}

// P1: TopicConverter run twice produces the same resulting output mapping.
func TestTopicConverterIdempotent(t *testing.T) {
	g := NewGraph()

	pub := actorWithPorts(ir.LogicalPorts{
		Outputs: map[ir.PortId]ir.LogicalOutput{"out": ir.TopicOutput("events")},
		Inputs:  map[ir.PortId]ir.LogicalInput{},
	})
	sub1 := actorWithPorts(ir.LogicalPorts{
		Outputs: map[ir.PortId]ir.LogicalOutput{},
		Inputs:  map[ir.PortId]ir.LogicalInput{"in": ir.TopicInput("events")},
	})
	sub2 := actorWithPorts(ir.LogicalPorts{
		Outputs: map[ir.PortId]ir.LogicalOutput{},
		Inputs:  map[ir.PortId]ir.LogicalInput{"in": ir.TopicInput("events")},
	})
	g.Functions["pub"] = pub
	g.Functions["sub1"] = sub1
	g.Functions["sub2"] = sub2

	conv := TopicConverter{}
	require.NoError(t, conv.Run(g))

	first := pub.Ports.Outputs["out"].Clone()
	require.NoError(t, conv.Run(g))
	second := pub.Ports.Outputs["out"]

	assert.Equal(t, ir.LogicalOutputAllOfTargets, first.Kind)
	assert.ElementsMatch(t, first.Targets, second.Targets)
}

// P2: InputLinker produces a Direct input on the target mirroring every
// Direct/AnyOf/AllOf output that names it.
func TestInputLinkerSymmetry(t *testing.T) {
	g := NewGraph()

	src := actorWithPorts(ir.LogicalPorts{
		Outputs: map[ir.PortId]ir.LogicalOutput{"out": ir.DirectTarget("dst", "in")},
		Inputs:  map[ir.PortId]ir.LogicalInput{},
	})
	dst := actorWithPorts(ir.LogicalPorts{
		Outputs: map[ir.PortId]ir.LogicalOutput{},
		Inputs:  map[ir.PortId]ir.LogicalInput{},
	})
	g.Functions["src"] = src
	g.Functions["dst"] = dst

	require.NoError(t, (InputLinker{}).Run(g))

	in, ok := dst.Ports.Inputs["in"]
	require.True(t, ok)
	assert.Equal(t, ir.LogicalInputDirect, in.Kind)
	assert.Equal(t, []ir.PortTarget{{Component: "src", Port: "out"}}, in.Sources)
}

// P6: a Call-method input is never removed even when it reaches no
// surviving output and has no side-effect mark.
func TestDeadComponentRemovalPreservesCallInputs(t *testing.T) {
	g := NewGraph()

	actor := ir.NewActor(ir.ActorImage{
		Format: "RUST",
		Class: ir.ActorClass{
			Inputs: map[ir.PortId]ir.Port{
				"call_in": {Method: ir.PortMethodCall},
			},
			Outputs:        map[ir.PortId]ir.Port{},
			InnerStructure: map[ir.MappingNode][]ir.MappingNode{},
		},
	}, map[string]string{}, ir.LogicalPorts{
		Outputs: map[ir.PortId]ir.LogicalOutput{},
		Inputs:  map[ir.PortId]ir.LogicalInput{"call_in": ir.DirectInput(nil)},
	})
	g.Functions["svc"] = actor

	require.NoError(t, (DeadComponentRemoval{}).Run(g))

	_, ok := actor.Ports.Inputs["call_in"]
	assert.True(t, ok, "call-method input must survive dead component removal")
}

// P2/I6: pruning a dead output must also remove the matching back-link
// entry from the target's Direct input Sources, not just the output
// itself — otherwise the target is left depending on a source that no
// longer exists.
func TestDeadComponentRemovalRemovesBackLink(t *testing.T) {
	g := NewGraph()

	src := ir.NewActor(ir.ActorImage{
		Format: "RUST",
		Class: ir.ActorClass{
			Inputs:         map[ir.PortId]ir.Port{},
			Outputs:        map[ir.PortId]ir.Port{},
			InnerStructure: map[ir.MappingNode][]ir.MappingNode{},
		},
	}, map[string]string{}, ir.LogicalPorts{
		Outputs: map[ir.PortId]ir.LogicalOutput{"out": ir.DirectTarget("dst", "in")},
		Inputs:  map[ir.PortId]ir.LogicalInput{},
	})

	dst := ir.NewActor(ir.ActorImage{
		Format: "RUST",
		Class: ir.ActorClass{
			Inputs: map[ir.PortId]ir.Port{
				"in": {Method: ir.PortMethodCall},
			},
			Outputs:        map[ir.PortId]ir.Port{},
			InnerStructure: map[ir.MappingNode][]ir.MappingNode{},
		},
	}, map[string]string{}, ir.LogicalPorts{
		Outputs: map[ir.PortId]ir.LogicalOutput{},
		Inputs:  map[ir.PortId]ir.LogicalInput{"in": ir.DirectInput([]ir.PortTarget{{Component: "src", Port: "out"}})},
	})

	g.Functions["src"] = src
	g.Functions["dst"] = dst

	require.NoError(t, (DeadComponentRemoval{}).Run(g))

	_, stillHasOutput := src.Ports.Outputs["out"]
	assert.False(t, stillHasOutput, "unused output must be pruned")

	_, stillHasInput := dst.Ports.Inputs["in"]
	assert.False(t, stillHasInput, "target's Direct input must be removed once its Sources empties")
}

// P3: an All output spanning ≥2 distinct nodes is realized as a Link
// output backed by a WorkflowLink with one LinkNode per participating node.
func TestPipeGeneratorRealizesMulticast(t *testing.T) {
	g := NewGraph()

	srcActor := ir.NewActor(ir.ActorImage{Format: "RUST"}, nil, ir.NewLogicalPorts())
	dst1 := ir.NewActor(ir.ActorImage{Format: "RUST"}, nil, ir.NewLogicalPorts())
	dst2 := ir.NewActor(ir.ActorImage{Format: "RUST"}, nil, ir.NewLogicalPorts())

	srcInst := ir.NewPhysicalActor(ir.NewInstanceId(uuid.New()))
	dst1Inst := ir.NewPhysicalActor(ir.NewInstanceId(uuid.New()))
	dst2Inst := ir.NewPhysicalActor(ir.NewInstanceId(uuid.New()))
	srcActor.AddInstance(srcInst)
	dst1Actor, dst2Actor := dst1, dst2
	dst1Actor.AddInstance(dst1Inst)
	dst2Actor.AddInstance(dst2Inst)

	srcInst.Desired.Outputs["out"] = ir.AllOutput([]ir.InstanceTarget{
		{Instance: dst1Inst.ID, Port: "in"},
		{Instance: dst2Inst.ID, Port: "in"},
	})
	dst1Inst.Desired.Inputs["in"] = ir.DefaultInput()
	dst2Inst.Desired.Inputs["in"] = ir.DefaultInput()

	g.Functions["src"] = srcActor
	g.Functions["dst1"] = dst1Actor
	g.Functions["dst2"] = dst2Actor

	registry := link.NewRegistry(link.NewMulticastController(uuid.New()))
	require.NoError(t, (PipeGenerator{Links: registry}).Run(g))

	out := srcInst.Desired.Outputs["out"]
	require.Equal(t, ir.PhysicalOutputLink, out.Kind)

	wfLink, ok := g.Links[out.Link]
	require.True(t, ok)
	assert.Len(t, wfLink.Nodes, 2)

	assert.Equal(t, ir.PhysicalInputLink, dst1Inst.Desired.Inputs["in"].Kind)
	assert.Equal(t, out.Link, dst1Inst.Desired.Inputs["in"].Link)
	assert.Equal(t, ir.PhysicalInputLink, dst2Inst.Desired.Inputs["in"].Kind)
}

// Compiler §4.3(8): the enabled-port feature set comes from the actor's
// logical ports, not the instance's physical desired mapping — a sink
// with a Direct (non-multicast) input never gets a physical entry there,
// but its logical input is still "currently present" and must show up as
// enabled.
func TestCompilerDerivesEnabledPortsFromLogicalPorts(t *testing.T) {
	g := NewGraph()

	fn := ir.NewActor(ir.ActorImage{Format: "RUST"}, nil, ir.LogicalPorts{
		Outputs: map[ir.PortId]ir.LogicalOutput{},
		Inputs:  map[ir.PortId]ir.LogicalInput{"in": ir.DirectInput(nil)},
	})
	inst := ir.NewPhysicalActor(ir.NewInstanceId(uuid.New()))
	fn.AddInstance(inst)
	g.Functions["sink"] = fn

	require.NoError(t, (Compiler{}).Run(g))

	require.NotNil(t, inst.Image)
	assert.Equal(t, "RUST_WASM", inst.Image.Format)
	_, ok := inst.Image.EnabledInputs["in"]
	assert.True(t, ok, "logical input with no physical desired entry must still be enabled")
}

// Sanity check that DefaultPlacement fills placement gaps using the
// supplied fleet and leaves already-placed components untouched.
func TestDefaultPlacementFillsGaps(t *testing.T) {
	g := NewGraph()
	fn := actorWithPorts(ir.NewLogicalPorts())
	g.Functions["fn"] = fn

	nodeID := uuid.New()
	stage := DefaultPlacement{Fleet: func() Fleet {
		return Fleet{Nodes: []placement.NodeSnapshot{{NodeID: nodeID, Healthy: true}}}
	}}
	require.NoError(t, stage.Run(g))
	require.Len(t, fn.TypedInstances(), 1)
	assert.Equal(t, nodeID, fn.TypedInstances()[0].ID.NodeID)

	// Second run must not add a second instance.
	require.NoError(t, stage.Run(g))
	assert.Len(t, fn.TypedInstances(), 1)
}
