package transform

import "github.com/nimbusmesh/controller/internal/ir"

// TopicConverter resolves topic-based pub/sub wiring into direct
// multicast targets: every LogicalInput{Kind: Topic} is collected by
// topic name, then every LogicalOutput{Kind: Topic} referencing that
// topic is rewritten into an AllOfTargets output listing every
// subscriber. Components that both publish and subscribe to the same
// topic are left to DeadComponentRemoval to prune if nothing else uses
// the resulting ports.
//
// Grounded on original_source/edgeless_con/src/ir/transformations/
// topic_converter.rs: it first drains every Topic logical input into a
// map[topic][]( component, port ), removing them from the component's
// input mapping as it goes, then rewrites each Topic logical output
// into AllOfTargets(collected subscribers).
type TopicConverter struct{}

func (TopicConverter) Name() string { return "topic_converter" }

func (TopicConverter) Run(g *Graph) error {
	subscribers := make(map[string][]ir.PortTarget)

	for name, comp := range g.Components() {
		ports := comp.LogicalPorts()
		for port, in := range ports.Inputs {
			if in.Kind != ir.LogicalInputTopic {
				continue
			}
			subscribers[in.Topic] = append(subscribers[in.Topic], ir.PortTarget{Component: name, Port: port})
			delete(ports.Inputs, port)
		}
	}

	for _, comp := range g.Components() {
		ports := comp.LogicalPorts()
		for port, out := range ports.Outputs {
			if out.Kind != ir.LogicalOutputTopic {
				continue
			}
			targets := subscribers[out.Topic]
			ports.Outputs[port] = ir.AllOfTargets(append([]ir.PortTarget(nil), targets...))
		}
	}

	return nil
}
