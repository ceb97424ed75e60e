package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "intake.v1.IntakeService"

const (
	ProcessMethod         = "/" + ServiceName + "/Process"
	IngestDirectoryMethod = "/" + ServiceName + "/IngestDirectory"
	ExportMethod          = "/" + ServiceName + "/Export"
)

// IntakeServiceServer is the server API for intake.v1.IntakeService.
// Messages are google.protobuf.Struct so clients need no generated stubs.
type IntakeServiceServer interface {
	Process(context.Context, *structpb.Struct) (*structpb.Struct, error)
	IngestDirectory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Export(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterIntakeServiceServer(s grpc.ServiceRegistrar, srv IntakeServiceServer) {
	s.RegisterService(&IntakeServiceDesc, srv)
}

var IntakeServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IntakeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Process", Handler: unaryHandler(ProcessMethod, IntakeServiceServer.Process)},
		{MethodName: "IngestDirectory", Handler: unaryHandler(IngestDirectoryMethod, IntakeServiceServer.IngestDirectory)},
		{MethodName: "Export", Handler: unaryHandler(ExportMethod, IntakeServiceServer.Export)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "intake/v1/intake.proto",
}

type structMethod func(IntakeServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call structMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(IntakeServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(IntakeServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// IntakeClient calls intake.v1.IntakeService.
type IntakeClient struct {
	cc grpc.ClientConnInterface
}

func NewIntakeClient(cc grpc.ClientConnInterface) *IntakeClient {
	return &IntakeClient{cc: cc}
}

func (c *IntakeClient) Process(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ProcessMethod, in, opts...)
}

func (c *IntakeClient) IngestDirectory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, IngestDirectoryMethod, in, opts...)
}

func (c *IntakeClient) Export(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ExportMethod, in, opts...)
}

func (c *IntakeClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
