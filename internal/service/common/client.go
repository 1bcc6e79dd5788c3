//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	api "github.com/oshokin/async-button/internal/api/grpc/button"
	"github.com/oshokin/async-button/internal/config"
	domain "github.com/oshokin/async-button/internal/domain/button"
	pb "github.com/oshokin/async-button/internal/pb/v1"
)

// Client wraps the gRPC ButtonService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the button server.
	conn *grpc.ClientConn
	// api is the ButtonService client stub.
	api pb.ButtonServiceClient

	// callTimeout is the default timeout for unary calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for unary calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errActorRequired is returned when an actor is not provided but is required for the operation.
	errActorRequired = errors.New("actor must be provided")
)

// Dial creates a client for the button server at address.
// The transport is insecure; run it on a trusted network.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial button server: %w", err)
	}

	return newClient(conn, opts...), nil
}

func newClient(conn *grpc.ClientConn, opts ...Option) *Client {
	client := &Client{
		conn:        conn,
		api:         pb.NewButtonServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Press triggers the remote button and reports whether a new cycle started.
func (c *Client) Press(ctx context.Context, actor *domain.Actor) (bool, domain.Snapshot, error) {
	if actor == nil {
		return false, domain.Snapshot{}, errActorRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.Press(callCtx, api.ToProtoActor(actor))
	if err != nil {
		return false, domain.Snapshot{}, fmt.Errorf("press button: %w", err)
	}

	accepted, snapshot, err := api.FromProtoPressResult(response)
	if err != nil {
		return false, domain.Snapshot{}, fmt.Errorf("decode press result: %w", err)
	}

	return accepted, snapshot, nil
}

// GetState retrieves the current snapshot.
func (c *Client) GetState(ctx context.Context) (domain.Snapshot, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.GetState(callCtx, new(emptypb.Empty))
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("get state: %w", err)
	}

	snapshot, err := api.FromProtoSnapshot(response)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode state: %w", err)
	}

	return snapshot, nil
}

// SnapshotStream yields the snapshots pushed by WatchSignals.
type SnapshotStream struct {
	stream grpc.ServerStreamingClient[structpb.Struct]
}

// Recv blocks until the next snapshot arrives. It returns io.EOF once the
// server ends the stream.
func (s *SnapshotStream) Recv() (domain.Snapshot, error) {
	msg, err := s.stream.Recv()
	if err != nil {
		return domain.Snapshot{}, err
	}

	return api.FromProtoSnapshot(msg)
}

// WatchSignals opens a snapshot stream that lives as long as ctx.
func (c *Client) WatchSignals(ctx context.Context) (*SnapshotStream, error) {
	stream, err := c.api.WatchSignals(ctx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("watch signals: %w", err)
	}

	return &SnapshotStream{stream: stream}, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
