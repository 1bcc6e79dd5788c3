package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Full method names of ButtonService.
const (
	ButtonService_Press_FullMethodName        = "/asyncbutton.v1.ButtonService/Press"
	ButtonService_GetState_FullMethodName     = "/asyncbutton.v1.ButtonService/GetState"
	ButtonService_WatchSignals_FullMethodName = "/asyncbutton.v1.ButtonService/WatchSignals"
)

// ButtonServiceClient is the client API for ButtonService.
type ButtonServiceClient interface {
	// Press triggers the button on behalf of the actor in the request.
	Press(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	// GetState returns the current snapshot.
	GetState(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	// WatchSignals streams a snapshot for every signal or state change.
	WatchSignals(
		ctx context.Context,
		in *emptypb.Empty,
		opts ...grpc.CallOption,
	) (grpc.ServerStreamingClient[structpb.Struct], error)
}

type buttonServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewButtonServiceClient creates a ButtonService client on cc.
func NewButtonServiceClient(cc grpc.ClientConnInterface) ButtonServiceClient {
	return &buttonServiceClient{cc}
}

func (c *buttonServiceClient) Press(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)

	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	if err := c.cc.Invoke(ctx, ButtonService_Press_FullMethodName, in, out, cOpts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *buttonServiceClient) GetState(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)

	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	if err := c.cc.Invoke(ctx, ButtonService_GetState_FullMethodName, in, out, cOpts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *buttonServiceClient) WatchSignals(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (grpc.ServerStreamingClient[structpb.Struct], error) {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)

	stream, err := c.cc.NewStream(
		ctx,
		&ButtonService_ServiceDesc.Streams[0],
		ButtonService_WatchSignals_FullMethodName,
		cOpts...,
	)
	if err != nil {
		return nil, err
	}

	x := &grpc.GenericClientStream[emptypb.Empty, structpb.Struct]{ClientStream: stream}
	if err := x.SendMsg(in); err != nil {
		return nil, err
	}

	if err := x.CloseSend(); err != nil {
		return nil, err
	}

	return x, nil
}

// ButtonServiceServer is the server API for ButtonService. Implementations
// must embed UnimplementedButtonServiceServer.
type ButtonServiceServer interface {
	Press(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetState(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	WatchSignals(*emptypb.Empty, grpc.ServerStreamingServer[structpb.Struct]) error
	mustEmbedUnimplementedButtonServiceServer()
}

// UnimplementedButtonServiceServer answers every method with codes.Unimplemented.
type UnimplementedButtonServiceServer struct{}

func (UnimplementedButtonServiceServer) Press(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Press not implemented")
}

func (UnimplementedButtonServiceServer) GetState(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetState not implemented")
}

func (UnimplementedButtonServiceServer) WatchSignals(*emptypb.Empty, grpc.ServerStreamingServer[structpb.Struct]) error {
	return status.Error(codes.Unimplemented, "method WatchSignals not implemented")
}

func (UnimplementedButtonServiceServer) mustEmbedUnimplementedButtonServiceServer() {}

// RegisterButtonServiceServer registers srv on s.
func RegisterButtonServiceServer(s grpc.ServiceRegistrar, srv ButtonServiceServer) {
	s.RegisterService(&ButtonService_ServiceDesc, srv)
}

func _ButtonService_Press_Handler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(ButtonServiceServer).Press(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ButtonService_Press_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ButtonServiceServer).Press(ctx, req.(*structpb.Struct))
	}

	return interceptor(ctx, in, info, handler)
}

func _ButtonService_GetState_Handler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(ButtonServiceServer).GetState(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ButtonService_GetState_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ButtonServiceServer).GetState(ctx, req.(*emptypb.Empty))
	}

	return interceptor(ctx, in, info, handler)
}

func _ButtonService_WatchSignals_Handler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}

	return srv.(ButtonServiceServer).WatchSignals(
		in,
		&grpc.GenericServerStream[emptypb.Empty, structpb.Struct]{ServerStream: stream},
	)
}

// ButtonService_ServiceDesc describes asyncbutton.v1.ButtonService.
var ButtonService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "asyncbutton.v1.ButtonService",
	HandlerType: (*ButtonServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Press",
			Handler:    _ButtonService_Press_Handler,
		},
		{
			MethodName: "GetState",
			Handler:    _ButtonService_GetState_Handler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchSignals",
			Handler:       _ButtonService_WatchSignals_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "asyncbutton/v1/button.proto",
}
