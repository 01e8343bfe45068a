package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name. Requests and
// responses are google.protobuf.Struct documents shaped like the JSON API.
const ServiceName = "eqrev.v1.Dashboard"

const (
	methodGetDashboardMetrics = "GetDashboardMetrics"
	methodGetDailyMetrics     = "GetDailyMetrics"
	methodListCategories      = "ListCategories"
)

// DashboardServer is implemented by Handlers.
type DashboardServer interface {
	GetDashboardMetrics(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	GetDailyMetrics(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	ListCategories(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(srv DashboardServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func methodHandler(name string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DashboardServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + name,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DashboardServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var DashboardServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: methodGetDashboardMetrics,
			Handler: methodHandler(methodGetDashboardMetrics, func(srv DashboardServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return srv.GetDashboardMetrics(ctx, in)
			}),
		},
		{
			MethodName: methodGetDailyMetrics,
			Handler: methodHandler(methodGetDailyMetrics, func(srv DashboardServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return srv.GetDailyMetrics(ctx, in)
			}),
		},
		{
			MethodName: methodListCategories,
			Handler: methodHandler(methodListCategories, func(srv DashboardServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return srv.ListCategories(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "eqrev/v1/dashboard.proto",
}

// RegisterDashboardServer registers srv on s.
func RegisterDashboardServer(s grpc.ServiceRegistrar, srv DashboardServer) {
	s.RegisterService(&DashboardServiceDesc, srv)
}

// DashboardClient calls the dashboard service on a client connection.
type DashboardClient struct {
	cc grpc.ClientConnInterface
}

func NewDashboardClient(cc grpc.ClientConnInterface) *DashboardClient {
	return &DashboardClient{cc: cc}
}

func (c *DashboardClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DashboardClient) GetDashboardMetrics(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodGetDashboardMetrics, in, opts...)
}

func (c *DashboardClient) GetDailyMetrics(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodGetDailyMetrics, in, opts...)
}

func (c *DashboardClient) ListCategories(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodListCategories, in, opts...)
}
