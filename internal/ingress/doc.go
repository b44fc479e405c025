// Package ingress is the controller's own gRPC front door (spec.md §6):
// workflow.start/stop/list/patch, plus node.update — a single sum-typed RPC
// accepting either a Registration or a Deregistration for a worker node or
// a peer cluster. It is server-side counterpart to internal/clients — both
// share the JSON encoding.Codec registered in internal/clients/jsoncodec.go,
// so the whole ingress surface runs over a real *grpc.Server without any
// protoc-compiled message set, per SPEC_FULL.md §6.1.
//
// Method names are hand-registered as a grpc.ServiceDesc rather than
// generated from a .proto file, mirroring the teacher's pkg/api.Server in
// spirit (one gRPC service exposing the control surface) but without its
// mTLS/Raft-specific plumbing, which spec.md's non-goals exclude.
package ingress
