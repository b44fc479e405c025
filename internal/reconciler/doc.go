/*
Package reconciler runs the controller's single-writer event loop:
every workflow.start/stop/list/patch request and every fleet-membership
change from internal/registry's health loop serializes through one
channel onto one goroutine, so the workflow table and the RequiredChange
dispatch to nodes never race each other.

Grounded on original_source/edgeless_con/src/controller/server.rs
(ControllerTask's request_receiver + tokio::select! main_loop,
start_workflow/stop_workflow/materialize/process_node_registration) and
the teacher's pkg/reconciler/reconciler.go ticker/select/stopCh shape.
*/
package reconciler
