/*
Package clients defines the node-side and peer-cluster-side client
contracts consumed by the reconciler (spec.md §6): function_instance,
resource_configuration, node_management, link_instance, and proxy_instance
APIs for worker nodes, and workflow_instance for peer clusters.

The wire-level bindings themselves are out of scope (spec.md §1) — worker
nodes and peer clusters are treated as opaque client handles. This package
still wires real transports so the reconciler has something concrete to
call: gRPC (google.golang.org/grpc, with a hand-registered JSON codec since
no protoc-compiled message set is required for an out-of-scope wire format)
for http(s) agent URLs, and CoAP (github.com/plgd-dev/go-coap/v3) for
coap:// agent URLs, per spec.md §6's wire-framing rule.
*/
package clients
