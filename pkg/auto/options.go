// Package auto 等待模板出现在画面中并点击
//
// Finder 反复截图、匹配，直到分数严格大于阈值或 context 结束:
//
//	f := auto.NewFinder(adb.New(""), auto.WithRegion(0, 0, 1080, 600))
//	res, err := f.WaitTimeout(ctx, tmpl, 0.9, auto.DefaultPollInterval, 10*time.Second)
package auto

import (
	"image"
	"time"

	"github.com/zoeyai/screenmatch/internal/logger"
	"github.com/zoeyai/screenmatch/pkg/vision/cv"
)

const (
	// DefaultPollInterval 默认轮询间隔
	DefaultPollInterval = 200 * time.Millisecond
	// DefaultThreshold 默认匹配阈值
	DefaultThreshold = 0.8
)

// Matcher 匹配引擎，cv.TemplateMatching 和 opencv.Matcher 都实现了它
type Matcher interface {
	MatchGray(source, template *image.Gray) (cv.MatchResult, error)
}

// Region 表示矩形区域
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect 转换为 image.Rectangle
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Center 区域中心点
func (r Region) Center() cv.Point {
	return cv.Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// RegionFromRectangle 由匹配结果的四角矩形得到外接区域
func RegionFromRectangle(rect cv.Rectangle) Region {
	minX := min(rect.TopLeft.X, rect.TopRight.X, rect.BottomLeft.X, rect.BottomRight.X)
	maxX := max(rect.TopLeft.X, rect.TopRight.X, rect.BottomLeft.X, rect.BottomRight.X)
	minY := min(rect.TopLeft.Y, rect.TopRight.Y, rect.BottomLeft.Y, rect.BottomRight.Y)
	maxY := max(rect.TopLeft.Y, rect.TopRight.Y, rect.BottomLeft.Y, rect.BottomRight.Y)
	return Region{
		X:      minX,
		Y:      minY,
		Width:  max(1, maxX-minX),
		Height: max(1, maxY-minY),
	}
}

// Option Finder 配置选项
type Option func(*Finder)

// WithMatcher 替换匹配引擎，默认 cv.NewTemplateMatching()
func WithMatcher(m Matcher) Option {
	return func(f *Finder) {
		f.matcher = m
	}
}

// WithRegion 只在截图的指定区域内搜索，结果仍为整张截图的坐标
func WithRegion(x, y, width, height int) Option {
	return func(f *Finder) {
		f.region = &Region{X: x, Y: y, Width: width, Height: height}
	}
}

// WithLogger 设置日志
func WithLogger(l *logger.Logger) Option {
	return func(f *Finder) {
		f.log = l
	}
}

// WithStateHook 每次状态变化时调用 fn
func WithStateHook(fn func(State)) Option {
	return func(f *Finder) {
		f.hook = fn
	}
}
