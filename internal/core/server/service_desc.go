package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Service and method names on the wire.
const (
	ServiceName       = "rulefold.v1.RuleService"
	ConsolidateMethod = "/" + ServiceName + "/Consolidate"
)

// RuleServer is implemented by api.RuleService.
type RuleServer interface {
	Consolidate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ruleServiceDesc registers RuleServer without generated stubs; both
// messages are well-known Struct types.
var ruleServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RuleServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Consolidate", Handler: consolidateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rulefold/v1/rules.proto",
}

func consolidateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RuleServer).Consolidate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ConsolidateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RuleServer).Consolidate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls a remote RuleService.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Consolidate invokes RuleService/Consolidate.
func (c *Client) Consolidate(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ConsolidateMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
