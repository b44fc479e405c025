package ingress

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/nimbusmesh/controller/internal/ir"
	"github.com/nimbusmesh/controller/internal/reconciler"
	"github.com/nimbusmesh/controller/internal/registry"
	"github.com/nimbusmesh/controller/pkg/log"
	"github.com/nimbusmesh/controller/pkg/metrics"
)

// Server is the controller's own gRPC ingress surface, dispatching into the
// single-writer ControllerTask and the node/cluster Registry.
type Server struct {
	task     *reconciler.ControllerTask
	registry *registry.Registry
	grpc     *grpc.Server
	logger   zerolog.Logger
}

// NewServer constructs a Server over an already-running ControllerTask and
// Registry. Credentials are intentionally insecure.NewCredentials() — per
// spec.md §1's non-goals, fine-grained auth (and the mTLS machinery the
// teacher builds for it) is out of scope for this core.
func NewServer(task *reconciler.ControllerTask, reg *registry.Registry) *Server {
	s := &Server{
		task:     task,
		registry: reg,
		logger:   log.WithComponent("ingress"),
	}
	s.grpc = grpc.NewServer(
		grpc.Creds(insecure.NewCredentials()),
		grpc.UnaryInterceptor(durationInterceptor),
	)
	s.grpc.RegisterService(&serviceDesc, s)
	return s
}

// durationInterceptor observes APIRequestDuration for every RPC regardless
// of outcome; per-outcome counting (ok/error) stays in each handler, since
// workflow.start reports a domain-level failure in its response body rather
// than as a transport error.
func durationInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	timer := metrics.NewTimer()
	resp, err := handler(ctx, req)
	method := info.FullMethod
	if i := strings.LastIndexByte(method, '/'); i >= 0 {
		method = method[i+1:]
	}
	timer.ObserveDurationVec(metrics.APIRequestDuration, method)
	return resp, err
}

// Start listens on addr and blocks serving gRPC until the listener errors
// or Stop is called.
func (s *Server) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("ingress listen %s: %w", addr, err)
	}
	s.logger.Info().Str("addr", addr).Msg("ingress server listening")
	return s.grpc.Serve(lis)
}

// Stop gracefully drains in-flight RPCs and shuts the server down.
func (s *Server) Stop() {
	s.grpc.GracefulStop()
}

func (s *Server) workflowStart(ctx context.Context, req *ir.SpawnWorkflowRequest) (*ir.SpawnWorkflowResponse, error) {
	instance, respErr := s.task.StartWorkflow(ctx, *req)
	if respErr != nil {
		metrics.APIRequestsTotal.WithLabelValues("workflow.start", "error").Inc()
		return &ir.SpawnWorkflowResponse{Error: respErr}, nil
	}
	metrics.APIRequestsTotal.WithLabelValues("workflow.start", "ok").Inc()
	return &ir.SpawnWorkflowResponse{Instance: &instance}, nil
}

func (s *Server) workflowStop(ctx context.Context, id *ir.WorkflowId) (*empty, error) {
	err := s.task.StopWorkflow(ctx, *id)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues("workflow.stop", "error").Inc()
		return nil, err
	}
	metrics.APIRequestsTotal.WithLabelValues("workflow.stop", "ok").Inc()
	return &empty{}, nil
}

func (s *Server) workflowList(ctx context.Context, _ *empty) (*[]ir.WorkflowInstance, error) {
	instances := s.task.ListWorkflows(ctx)
	metrics.APIRequestsTotal.WithLabelValues("workflow.list", "ok").Inc()
	return &instances, nil
}

func (s *Server) workflowPatch(ctx context.Context, req *ir.PatchRequest) (*empty, error) {
	if err := s.task.PatchWorkflow(ctx, *req); err != nil {
		metrics.APIRequestsTotal.WithLabelValues("workflow.patch", "error").Inc()
		return nil, err
	}
	metrics.APIRequestsTotal.WithLabelValues("workflow.patch", "ok").Inc()
	return &empty{}, nil
}

// nodeUpdate dispatches the sum-typed node.update body (spec.md §6) into
// the worker-node or peer-cluster half of the registry, picked by
// Registration.IsCluster/Deregistration.IsCluster.
func (s *Server) nodeUpdate(_ context.Context, req *ir.NodeUpdateRequest) (*ir.UpdateNodeResponse, error) {
	var err error
	switch {
	case req.Register != nil && req.Register.IsCluster:
		err = s.registry.RegisterCluster(req.Register.NodeID, req.Register.InvocationURL)
	case req.Register != nil:
		err = s.registry.RegisterNode(req.Register.NodeID, req.Register.AgentURL, req.Register.InvocationURL, req.Register.Capabilities, req.Register.ResourceProviders, req.Register.LinkProviders, req.Register.IsProxy)
	case req.Deregister != nil && req.Deregister.IsCluster:
		s.registry.DeregisterCluster(req.Deregister.NodeID)
	case req.Deregister != nil:
		s.registry.DeregisterNode(req.Deregister.NodeID)
	default:
		err = fmt.Errorf("node.update: neither register nor deregister set")
	}

	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues("node.update", "error").Inc()
		return &ir.UpdateNodeResponse{Accepted: false, Error: &ir.ResponseError{Summary: err.Error()}}, nil
	}
	metrics.APIRequestsTotal.WithLabelValues("node.update", "ok").Inc()
	return &ir.UpdateNodeResponse{Accepted: true}, nil
}

// unaryMethod builds a grpc.MethodDesc that decodes its request body with
// the JSON codec negotiated over the connection and dispatches into fn. The
// generic parameter is the plain (non-pointer) request struct; dec fills a
// freshly allocated instance of it.
func unaryMethod[R any](name string, fn func(*Server, context.Context, *R) (any, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
			in := new(R)
			if err := dec(in); err != nil {
				return nil, err
			}
			return fn(srv.(*Server), ctx, in)
		},
	}
}

// serviceDesc hand-registers every RPC above against the JSON codec
// (internal/clients/jsoncodec.go), matching §6.1's no-protoc-stubs design.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: "edgectl.controller.Ingress",
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("Start", func(s *Server, ctx context.Context, req *ir.SpawnWorkflowRequest) (any, error) {
			return s.workflowStart(ctx, req)
		}),
		unaryMethod("Stop", func(s *Server, ctx context.Context, req *ir.WorkflowId) (any, error) {
			return s.workflowStop(ctx, req)
		}),
		unaryMethod("List", func(s *Server, ctx context.Context, req *empty) (any, error) {
			return s.workflowList(ctx, req)
		}),
		unaryMethod("Patch", func(s *Server, ctx context.Context, req *ir.PatchRequest) (any, error) {
			return s.workflowPatch(ctx, req)
		}),
		unaryMethod("Update", func(s *Server, ctx context.Context, req *ir.NodeUpdateRequest) (any, error) {
			return s.nodeUpdate(ctx, req)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "internal/ingress/server.go",
}
