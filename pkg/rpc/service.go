// Package rpc 通过 gRPC 提供模板匹配服务
//
// 消息使用 JSON 编码（content-subtype "json"），服务描述手写，不依赖 protoc:
//
//	c, _ := rpc.Dial("localhost:50051")
//	reply, err := c.Match(ctx, &rpc.MatchRequest{Source: png1, Template: png2})
package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName gRPC 服务全名
const ServiceName = "screenmatch.v1.MatchService"

const (
	methodMatch = "/" + ServiceName + "/Match"
	methodWait  = "/" + ServiceName + "/Wait"
	methodInfo  = "/" + ServiceName + "/Info"
)

// MatchServer 服务端接口
type MatchServer interface {
	Match(context.Context, *MatchRequest) (*MatchReply, error)
	Wait(context.Context, *WaitRequest) (*MatchReply, error)
	Info(context.Context, *InfoRequest) (*SystemInfo, error)
}

// ServiceDesc MatchService 描述，消息使用 JSON 编码，无需生成代码
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MatchServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Match", Handler: matchHandler},
		{MethodName: "Wait", Handler: waitHandler},
		{MethodName: "Info", Handler: infoHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "screenmatch/v1/match.proto",
}

// RegisterMatchServer 注册服务
func RegisterMatchServer(s grpc.ServiceRegistrar, srv MatchServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func matchHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(MatchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MatchServer).Match(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodMatch}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MatchServer).Match(ctx, req.(*MatchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func waitHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(WaitRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MatchServer).Wait(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodWait}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MatchServer).Wait(ctx, req.(*WaitRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func infoHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(InfoRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MatchServer).Info(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodInfo}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MatchServer).Info(ctx, req.(*InfoRequest))
	}
	return interceptor(ctx, in, info, handler)
}
