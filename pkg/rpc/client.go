package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client MatchService 客户端
type Client struct {
	conn *grpc.ClientConn
}

// Dial 创建客户端，默认不加密并使用 JSON 编码
// 连接在第一次调用时建立
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, opts...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("连接 %s 失败: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

// Match 在 req.Source 中查找 req.Template
func (c *Client) Match(ctx context.Context, req *MatchRequest, opts ...grpc.CallOption) (*MatchReply, error) {
	out := new(MatchReply)
	if err := c.conn.Invoke(ctx, methodMatch, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Wait 等待模板出现在服务端画面上
func (c *Client) Wait(ctx context.Context, req *WaitRequest, opts ...grpc.CallOption) (*MatchReply, error) {
	out := new(MatchReply)
	if err := c.conn.Invoke(ctx, methodWait, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Info 查询服务端信息
func (c *Client) Info(ctx context.Context, opts ...grpc.CallOption) (*SystemInfo, error) {
	out := new(SystemInfo)
	if err := c.conn.Invoke(ctx, methodInfo, &InfoRequest{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Close 关闭连接
func (c *Client) Close() error {
	return c.conn.Close()
}
