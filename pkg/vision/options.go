package vision

import (
	"github.com/zoeyai/screenmatch/pkg/config"
	"github.com/zoeyai/screenmatch/pkg/vision/cv"
)

// Options 匹配器配置
type Options struct {
	Backend       string // 引擎名，默认 native
	SizeThreshold int    // 降采样阈值，默认 500
	Workers       int    // 仅 native 使用，<= 0 时为 CPU 核数
}

// DefaultOptions 默认配置
var DefaultOptions = Options{
	Backend:       BackendNative,
	SizeThreshold: cv.DefaultSizeThreshold,
}

// Option 配置选项函数类型
type Option func(*Options)

// WithBackend 设置引擎
func WithBackend(name string) Option {
	return func(o *Options) {
		o.Backend = name
	}
}

// WithSizeThreshold 设置降采样阈值
func WithSizeThreshold(n int) Option {
	return func(o *Options) {
		o.SizeThreshold = n
	}
}

// WithWorkers 设置并行度
func WithWorkers(n int) Option {
	return func(o *Options) {
		o.Workers = n
	}
}

// WithConfig 从配置文件读取引擎和匹配参数
func WithConfig(cfg *config.Config) Option {
	return func(o *Options) {
		o.Backend = cfg.Backend
		o.SizeThreshold = cfg.Match.SizeThreshold
		o.Workers = cfg.Match.Workers
	}
}
