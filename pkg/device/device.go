// Package device 定义截图和输入注入的抽象
//
// 远程设备实现见 adb 子包，本地显示器实现见 desktop 子包。
// 所有错误都直接返回给调用方，不在这里重试。
package device

import (
	"context"
	"image"

	"github.com/zoeyai/screenmatch/pkg/vision/cv"
)

// FrameSource 获取当前画面
type FrameSource interface {
	Capture(ctx context.Context) (image.Image, error)
}

// Inputer 在画面坐标上点击
type Inputer interface {
	Click(ctx context.Context, p cv.Point) error
}

// Device 同时具备截图和点击能力
type Device interface {
	FrameSource
	Inputer
}

// FrameSourceFunc 函数适配器
type FrameSourceFunc func(ctx context.Context) (image.Image, error)

// Capture 调用 f(ctx)
func (f FrameSourceFunc) Capture(ctx context.Context) (image.Image, error) {
	return f(ctx)
}

// InputerFunc 函数适配器
type InputerFunc func(ctx context.Context, p cv.Point) error

// Click 调用 f(ctx, p)
func (f InputerFunc) Click(ctx context.Context, p cv.Point) error {
	return f(ctx, p)
}

// Static 始终返回同一张图的 FrameSource，用于离线匹配
func Static(img image.Image) FrameSource {
	return FrameSourceFunc(func(ctx context.Context) (image.Image, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return img, nil
	})
}
