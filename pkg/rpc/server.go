package rpc

import (
	"context"
	"fmt"
	"net"
	"slices"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/zoeyai/screenmatch/internal/logger"
	"github.com/zoeyai/screenmatch/pkg/auto"
	"github.com/zoeyai/screenmatch/pkg/device"
	"github.com/zoeyai/screenmatch/pkg/vision"
	"github.com/zoeyai/screenmatch/pkg/vision/codec"
)

// Server MatchService 实现
// Match 只依赖请求中的图像；Wait 在配置的画面源上轮询
type Server struct {
	source    device.FrameSource
	matchOpts []vision.Option
	log       *logger.Logger
}

// ServerOption 服务端选项
type ServerOption func(*Server)

// WithFrameSource 设置 Wait 使用的画面源
func WithFrameSource(src device.FrameSource) ServerOption {
	return func(s *Server) {
		s.source = src
	}
}

// WithMatchOptions 设置匹配引擎选项
func WithMatchOptions(opts ...vision.Option) ServerOption {
	return func(s *Server) {
		s.matchOpts = append(s.matchOpts, opts...)
	}
}

// WithLogger 设置日志
func WithLogger(l *logger.Logger) ServerOption {
	return func(s *Server) {
		s.log = l
	}
}

// NewServer 创建服务
func NewServer(opts ...ServerOption) *Server {
	s := &Server{log: logger.Default().Named("rpc")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) matcher(sizeThreshold int) (vision.Matcher, error) {
	opts := s.matchOpts
	if sizeThreshold > 0 {
		opts = append(slices.Clone(opts), vision.WithSizeThreshold(sizeThreshold))
	}
	return vision.NewMatcher(opts...)
}

// Match 实现 MatchServer
func (s *Server) Match(ctx context.Context, req *MatchRequest) (*MatchReply, error) {
	source, err := codec.Decode(req.Source)
	if err != nil {
		return nil, toStatus(fmt.Errorf("source: %w", err))
	}
	template, err := codec.Decode(req.Template)
	if err != nil {
		return nil, toStatus(fmt.Errorf("template: %w", err))
	}
	m, err := s.matcher(req.SizeThreshold)
	if err != nil {
		return nil, toStatus(err)
	}

	res, err := m.MatchCenter(source, template)
	if err != nil {
		s.log.LogEvent("MATCH", false, 0, err.Error())
		return nil, toStatus(err)
	}
	s.log.LogEvent("MATCH", true, res.Time,
		fmt.Sprintf("center=%s conf=%.3f scale=%.2f", res.Result, res.Confidence, res.Scale))
	return &MatchReply{Result: res}, nil
}

// Wait 实现 MatchServer，客户端 deadline 与 TimeoutMs 取较早者
func (s *Server) Wait(ctx context.Context, req *WaitRequest) (*MatchReply, error) {
	if s.source == nil {
		return nil, status.Error(codes.FailedPrecondition, "服务端未配置画面源")
	}
	img, err := codec.Decode(req.Template)
	if err != nil {
		return nil, toStatus(fmt.Errorf("template: %w", err))
	}
	name := req.Name
	if name == "" {
		name = "rpc"
	}
	tmpl, err := auto.NewTemplate(name, img)
	if err != nil {
		return nil, toStatus(err)
	}
	m, err := s.matcher(0)
	if err != nil {
		return nil, toStatus(err)
	}

	opts := []auto.Option{auto.WithMatcher(m), auto.WithLogger(s.log)}
	if r := req.Region; r != nil {
		opts = append(opts, auto.WithRegion(r.X, r.Y, r.Width, r.Height))
	}
	finder := auto.NewFinder(s.source, opts...)

	res, err := finder.WaitTimeout(ctx, tmpl, req.Threshold,
		time.Duration(req.IntervalMs)*time.Millisecond,
		time.Duration(req.TimeoutMs)*time.Millisecond)
	if err != nil {
		return nil, toStatus(err)
	}
	return &MatchReply{Result: res}, nil
}

// Info 实现 MatchServer
func (s *Server) Info(ctx context.Context, _ *InfoRequest) (*SystemInfo, error) {
	info := GetSystemInfo(ctx)
	o := vision.DefaultOptions
	for _, opt := range s.matchOpts {
		opt(&o)
	}
	info.Backend = o.Backend
	info.FrameSource = s.source != nil
	return info, nil
}

// Serve 在 lis 上提供服务，ctx 结束时优雅停止
func (s *Server) Serve(ctx context.Context, lis net.Listener, opts ...grpc.ServerOption) error {
	gs := grpc.NewServer(opts...)
	RegisterMatchServer(gs, s)

	stop := context.AfterFunc(ctx, gs.GracefulStop)
	defer stop()

	s.log.Info("MatchService 监听 %s", lis.Addr())
	if err := gs.Serve(lis); err != nil {
		return fmt.Errorf("gRPC 服务退出: %w", err)
	}
	return nil
}
