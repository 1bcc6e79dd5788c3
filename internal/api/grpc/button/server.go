package button

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/async-button/internal/domain/button"
	"github.com/oshokin/async-button/internal/logger"
	pb "github.com/oshokin/async-button/internal/pb/v1"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	// Press triggers the button for actor and reports whether a new cycle started.
	Press(ctx context.Context, actor *domain.Actor) (bool, domain.Snapshot, error)
	// Snapshot returns the current state of the button.
	Snapshot(ctx context.Context) (domain.Snapshot, error)
	// Watch delivers the latest snapshot first, then every change, until ctx ends.
	Watch(ctx context.Context) (<-chan domain.Snapshot, error)
}

// Server implements the ButtonService gRPC API.
type Server struct {
	pb.UnimplementedButtonServiceServer

	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// Press triggers the button on behalf of the actor in the request.
func (s *Server) Press(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	actor := FromProtoActor(req)
	if actor == nil {
		return nil, status.Error(codes.InvalidArgument, "actor is required")
	}

	accepted, snapshot, err := s.service.Press(ctx, actor)
	if err != nil {
		return nil, toStatus(err, "unable to press button")
	}

	return ToProtoPressResult(accepted, snapshot), nil
}

// GetState returns the current snapshot.
func (s *Server) GetState(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	snapshot, err := s.service.Snapshot(ctx)
	if err != nil {
		return nil, toStatus(err, "unable to read state")
	}

	return ToProtoSnapshot(snapshot), nil
}

// WatchSignals streams snapshots until the client goes away or the service stops.
func (s *Server) WatchSignals(_ *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()

	snapshots, err := s.service.Watch(ctx)
	if err != nil {
		return toStatus(err, "unable to watch signals")
	}

	for snapshot := range snapshots {
		if err := stream.Send(ToProtoSnapshot(snapshot)); err != nil {
			logger.DebugKV(ctx, "Watch stream closed", "error", err)

			return err
		}
	}

	return nil
}

// toStatus maps context errors to their gRPC codes and hides everything else.
func toStatus(err error, message string) error {
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Unavailable, message)
	}
}
