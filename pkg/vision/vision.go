// Package vision 按名称选择模板匹配引擎
//
// 可选引擎:
//   - native: 纯 Go 的亮度归一化互相关 (pkg/vision/cv)
//   - opencv: gocv TM_CCOEFF_NORMED (pkg/vision/cv/opencv)
//
// 基本用法:
//
//	m, err := vision.NewMatcher(vision.WithBackend("opencv"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := m.MatchCenter(screen, template)
//	fmt.Printf("找到位置: %s 置信度 %.3f\n", res.Result, res.Confidence)
package vision

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/zoeyai/screenmatch/pkg/config"
	"github.com/zoeyai/screenmatch/pkg/vision/codec"
	"github.com/zoeyai/screenmatch/pkg/vision/cv"
	"github.com/zoeyai/screenmatch/pkg/vision/cv/opencv"
)

// Version 版本号
const Version = "0.3.0"

const (
	BackendNative = config.BackendNative
	BackendOpenCV = config.BackendOpenCV
)

// ErrUnknownBackend 未知的匹配引擎
var ErrUnknownBackend = errors.New("未知的匹配引擎")

// Matcher 两种引擎共有的接口
type Matcher interface {
	MatchCenter(source, template image.Image) (cv.MatchResult, error)
	MatchGray(source, template *image.Gray) (cv.MatchResult, error)
}

// NewMatcher 按选项创建匹配器
func NewMatcher(opts ...Option) (Matcher, error) {
	o := DefaultOptions
	for _, opt := range opts {
		opt(&o)
	}

	switch strings.ToLower(o.Backend) {
	case "", BackendNative:
		return cv.NewTemplateMatching(
			cv.WithSizeThreshold(o.SizeThreshold),
			cv.WithWorkers(o.Workers),
		), nil
	case BackendOpenCV:
		return opencv.NewMatcher(o.SizeThreshold), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, o.Backend)
	}
}

// FindLocation 在 screen 中查找 template
func FindLocation(screen, template image.Image, opts ...Option) (cv.MatchResult, error) {
	m, err := NewMatcher(opts...)
	if err != nil {
		return cv.MatchResult{}, err
	}
	return m.MatchCenter(screen, template)
}

// FindLocationFile 读取两个图像文件后查找
func FindLocationFile(screenPath, templatePath string, opts ...Option) (cv.MatchResult, error) {
	screen, err := codec.LoadFile(screenPath)
	if err != nil {
		return cv.MatchResult{}, err
	}
	template, err := codec.LoadFile(templatePath)
	if err != nil {
		return cv.MatchResult{}, err
	}
	return FindLocation(screen, template, opts...)
}
