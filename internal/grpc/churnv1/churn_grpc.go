// Package churnv1 declares the churn.v1.ChurnService gRPC contract. Messages are the
// protobuf well-known Struct and Empty types, so the descriptor is maintained by hand.
package churnv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "churn.v1.ChurnService"

const (
	ChurnService_Predict_FullMethodName = "/churn.v1.ChurnService/Predict"
	ChurnService_Labels_FullMethodName  = "/churn.v1.ChurnService/Labels"
)

// ChurnServiceClient is the client API for ChurnService.
type ChurnServiceClient interface {
	// Predict scores one customer record given as a Struct keyed by column name.
	Predict(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	// Labels returns the categorical enumerations accepted by Predict.
	Labels(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type churnServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewChurnServiceClient wraps a connection.
func NewChurnServiceClient(cc grpc.ClientConnInterface) ChurnServiceClient {
	return &churnServiceClient{cc}
}

func (c *churnServiceClient) Predict(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ChurnService_Predict_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *churnServiceClient) Labels(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ChurnService_Labels_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ChurnServiceServer is the server API for ChurnService.
type ChurnServiceServer interface {
	Predict(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Labels(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// UnimplementedChurnServiceServer can be embedded for forward compatibility.
type UnimplementedChurnServiceServer struct{}

func (UnimplementedChurnServiceServer) Predict(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Predict not implemented")
}

func (UnimplementedChurnServiceServer) Labels(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Labels not implemented")
}

// RegisterChurnServiceServer attaches srv to s.
func RegisterChurnServiceServer(s grpc.ServiceRegistrar, srv ChurnServiceServer) {
	s.RegisterService(&ChurnService_ServiceDesc, srv)
}

func _ChurnService_Predict_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChurnServiceServer).Predict(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ChurnService_Predict_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ChurnServiceServer).Predict(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _ChurnService_Labels_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChurnServiceServer).Labels(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ChurnService_Labels_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ChurnServiceServer).Labels(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// ChurnService_ServiceDesc is the grpc.ServiceDesc for ChurnService.
var ChurnService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChurnServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Predict",
			Handler:    _ChurnService_Predict_Handler,
		},
		{
			MethodName: "Labels",
			Handler:    _ChurnService_Labels_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "churn/v1/churn.proto",
}
