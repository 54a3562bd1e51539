package replayserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "generals.replay.v1.ReplayService"

const (
	simulateMethod    = "/" + ServiceName + "/Simulate"
	scoreReplayMethod = "/" + ServiceName + "/ScoreReplay"
)

// ReplayServiceServer is the server API for the replay service. Messages are
// protobuf well-known types so no generated code is needed.
type ReplayServiceServer interface {
	// Simulate scores an uploaded replay blob.
	Simulate(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
	// ScoreReplay fetches a stored replay named by {"id", "server"} and scores it.
	ScoreReplay(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the replay service for grpc.Server registration.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReplayServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Simulate", Handler: simulateHandler},
		{MethodName: "ScoreReplay", Handler: scoreReplayHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "generals/replay/v1/replay.proto",
}

// RegisterReplayServiceServer registers srv with s.
func RegisterReplayServiceServer(s grpc.ServiceRegistrar, srv ReplayServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func simulateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReplayServiceServer).Simulate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: simulateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReplayServiceServer).Simulate(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func scoreReplayHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReplayServiceServer).ScoreReplay(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: scoreReplayMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReplayServiceServer).ScoreReplay(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Client is a thin client for the replay service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Simulate(ctx context.Context, blob []byte, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, simulateMethod, wrapperspb.Bytes(blob), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ScoreReplay(ctx context.Context, server, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in := &structpb.Struct{Fields: map[string]*structpb.Value{
		"server": structpb.NewStringValue(server),
		"id":     structpb.NewStringValue(id),
	}}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, scoreReplayMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
