package igrpc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"

	"social-service/internal/apperrors"
	"social-service/internal/services"
)

// SocialGRPCServer answers friendship and slot queries from other services.
type SocialGRPCServer struct {
	friends *services.FriendService
	posts   *services.PostService
}

func NewSocialGRPCServer(friends *services.FriendService, posts *services.PostService) *SocialGRPCServer {
	return &SocialGRPCServer{friends: friends, posts: posts}
}

func (s *SocialGRPCServer) AreFriends(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := idField(req, "user_id")
	if err != nil {
		return nil, apperrors.GRPCStatus(err)
	}
	friendID, err := idField(req, "friend_id")
	if err != nil {
		return nil, apperrors.GRPCStatus(err)
	}
	ok, err := s.friends.AreFriends(ctx, userID, friendID)
	if err != nil {
		return nil, apperrors.GRPCStatus(err)
	}
	return structpb.NewStruct(map[string]interface{}{"are_friends": ok})
}

func (s *SocialGRPCServer) GetPostSlots(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	postID, err := idField(req, "post_id")
	if err != nil {
		return nil, apperrors.GRPCStatus(err)
	}
	slots, err := s.posts.Slots(ctx, postID)
	if err != nil {
		return nil, apperrors.GRPCStatus(err)
	}
	return structpb.NewStruct(map[string]interface{}{
		"post_id":              slots.PostID,
		"current_participants": slots.CurrentParticipants,
		"max_participants":     slots.MaxParticipants,
		"remaining_slots":      slots.RemainingSlots,
	})
}

// idField reads a positive integer id out of a Struct number value.
func idField(req *structpb.Struct, name string) (int64, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return 0, apperrors.Validation([]apperrors.FieldError{{Field: name, Message: "is required"}})
	}
	n := v.GetNumberValue()
	if n <= 0 || n != math.Trunc(n) || n >= 1<<63 {
		return 0, apperrors.Validation([]apperrors.FieldError{{Field: name, Message: "must be a positive integer"}})
	}
	return int64(n), nil
}

// Server owns the listener, the gRPC server and its health service.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
}

func newGRPCServer(impl SocialInternalServer) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	RegisterSocialInternalServer(srv, impl)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return srv, healthServer
}

// NewServer listens on addr; Serve must be called to accept connections.
func NewServer(addr string, friends *services.FriendService, posts *services.PostService) (*Server, error) {
	if addr == "" {
		return nil, errors.New("grpc address is required")
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	srv, healthServer := newGRPCServer(NewSocialGRPCServer(friends, posts))
	return &Server{listener: lis, grpcServer: srv, health: healthServer}, nil
}

func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve blocks until ctx is cancelled or the server fails.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("grpc server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	log.Printf("gRPC server listening on %s", s.Addr())

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		err := <-serveErr
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve grpc: %w", err)
		}
		return nil
	case err := <-serveErr:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve grpc: %w", err)
		}
		return nil
	}
}
