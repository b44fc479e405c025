/*
Package registry holds the controller's live view of its fleet: worker
nodes and peer clusters, their declared capabilities, and a client handle
for each. It runs the periodic health-check loop that detects dead peers,
broadcasts Add/Del membership updates to the surviving fleet, and exposes
lock-free placement.NodeSnapshot/ClusterSnapshot views for the transform
pipeline's DefaultPlacement stage.

Grounded on original_source/edgeless_con/src/controller/server.rs
(WorkerNode/PeerCluster records, process_node_registration/
process_node_del, the 2s check_interval health loop in main_loop) and the
teacher's pkg/reconciler/reconciler.go ticker/select/mutex pattern.
*/
package registry
