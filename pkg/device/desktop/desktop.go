// Package desktop 基于 robotgo 的本地显示器截图与鼠标点击
package desktop

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/go-vgo/robotgo"

	"github.com/zoeyai/screenmatch/pkg/device"
	"github.com/zoeyai/screenmatch/pkg/vision/cv"
)

const backendName = "robotgo"

// Screen 本地显示器截图
type Screen struct {
	// Display 显示器序号，< 0 表示主显示器
	Display int
}

// NewScreen 创建截图源
func NewScreen(display int) *Screen {
	return &Screen{Display: display}
}

// Capture 截取整个显示器（物理像素）
func (s *Screen) Capture(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		img image.Image
		err error
	)
	if s.Display >= 0 {
		if n := robotgo.DisplaysNum(); s.Display >= n {
			return nil, &device.CaptureError{
				Backend: backendName,
				Err:     fmt.Errorf("显示器 %d 不存在（共 %d 个）", s.Display, n),
			}
		}
		x, y, w, h := robotgo.GetDisplayBounds(s.Display)
		img, err = robotgo.CaptureImg(x, y, w, h)
	} else {
		img, err = robotgo.CaptureImg()
	}
	if err != nil {
		return nil, &device.CaptureError{Backend: backendName, Err: err}
	}
	if img == nil || img.Bounds().Empty() {
		return nil, &device.CaptureError{Backend: backendName, Err: cv.ErrEmptyImage}
	}
	return img, nil
}

// Mouse 鼠标点击
// 截图坐标除以 ScaleFactor 得到输入坐标，ScaleFactor 由配置给出
type Mouse struct {
	ScaleFactor float64
	button      string
	double      bool
}

// MouseOption 鼠标选项
type MouseOption func(*Mouse)

// WithRightClick 使用右键
func WithRightClick() MouseOption {
	return func(m *Mouse) {
		m.button = "right"
	}
}

// WithDoubleClick 双击
func WithDoubleClick() MouseOption {
	return func(m *Mouse) {
		m.double = true
	}
}

// NewMouse 创建鼠标，scaleFactor <= 0 时按 1 处理
func NewMouse(scaleFactor float64, opts ...MouseOption) *Mouse {
	m := &Mouse{ScaleFactor: scaleFactor, button: "left"}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Click 移动到 p 并点击
func (m *Mouse) Click(ctx context.Context, p cv.Point) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	in := m.InputPoint(p)
	robotgo.Move(in.X, in.Y)
	robotgo.Click(m.button, m.double)
	return nil
}

// InputPoint 截图坐标转换为输入坐标
func (m *Mouse) InputPoint(p cv.Point) cv.Point {
	return cv.Point{X: ScaleCoord(p.X, m.ScaleFactor), Y: ScaleCoord(p.Y, m.ScaleFactor)}
}

// ScaleCoord 按比例缩放坐标值
func ScaleCoord(value int, scale float64) int {
	if scale <= 0 {
		return value
	}
	return int(math.Round(float64(value) / scale))
}

// DisplayCount 显示器数量
func DisplayCount() int {
	return robotgo.DisplaysNum()
}

// ScreenSize 主显示器尺寸
func ScreenSize() (width, height int) {
	return robotgo.GetScreenSize()
}
