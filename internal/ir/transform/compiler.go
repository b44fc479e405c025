package transform

import "github.com/nimbusmesh/controller/internal/ir"

// Compiler attaches an ActorImage override to every RUST-format actor
// instance, enabling exactly the input/output ports present in the actor's
// current logical ports; every instance of one actor gets the same enabled
// port set. Invoking an actual Rust-to-WASM
// toolchain is out of scope (spec.md §1 treats actor images as opaque
// bytes); this stage does the part of the original compiler stage that is
// in scope — computing the per-instance enabled-port feature set and
// retagging the image format — and passes the source Code through
// unchanged rather than invoking a build.
//
// Grounded on original_source/edgeless_con/src/ir/transformations/
// compiler.rs Compiler::transform: for each RUST actor instance, compute
// `input_<port>`/`output_<port>` feature flags from the actor's logical
// ports, then attach an ActorImage{format: "RUST_WASM", ...}
// override built from those flags.
type Compiler struct{}

const (
	sourceFormatRust = "RUST"
	wasmFormat       = "RUST_WASM"
)

func (Compiler) Name() string { return "compiler" }

func (Compiler) Run(g *Graph) error {
	for _, f := range g.Functions {
		if f.Image.Format != sourceFormatRust {
			continue
		}

		// The enabled set is computed over the function's currently-present
		// logical ports (spec §4.3(8)), not the instance's physical desired
		// mapping: physical inputs are only populated for multicast Link
		// rewrites, so reading inst.Desired here would leave enabledIn
		// empty for an ordinary actor with no inbound Link.
		enabledIn := make(map[ir.PortId]struct{}, len(f.Ports.Inputs))
		for port := range f.Ports.Inputs {
			enabledIn[port] = struct{}{}
		}
		enabledOut := make(map[ir.PortId]struct{}, len(f.Ports.Outputs))
		for port := range f.Ports.Outputs {
			enabledOut[port] = struct{}{}
		}

		for _, inst := range f.TypedInstances() {
			override := f.Image.Clone()
			override.Format = wasmFormat
			override.EnabledInputs = enabledIn
			override.EnabledOutputs = enabledOut
			inst.Image = &override
		}
	}
	return nil
}
