package cv

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyImage 图像为空或面积为 0
	ErrEmptyImage = errors.New("图像为空或尺寸为 0")
	// ErrInvalidSizeThreshold 降采样阈值必须大于 0
	ErrInvalidSizeThreshold = errors.New("降采样阈值必须大于 0")
)

// ImageSizeError 模板尺寸大于源图像
type ImageSizeError struct {
	SourceSize [2]int
	SearchSize [2]int
}

func (e *ImageSizeError) Error() string {
	return fmt.Sprintf("模板尺寸 %dx%d 大于源图像 %dx%d",
		e.SearchSize[0], e.SearchSize[1], e.SourceSize[0], e.SourceSize[1])
}

// PixelBufferError 像素缓冲区与声明的尺寸/格式不一致
type PixelBufferError struct {
	Format PixelFormat
	Width  int
	Height int
	Stride int
	Len    int
}

func (e *PixelBufferError) Error() string {
	return fmt.Sprintf("无效的 %s 像素缓冲区: %dx%d stride=%d len=%d",
		e.Format, e.Width, e.Height, e.Stride, e.Len)
}

// checkSourceLargerThanSearch 检查源图像是否不小于模板
func checkSourceLargerThanSearch(srcW, srcH, tplW, tplH int) error {
	if srcW < tplW || srcH < tplH {
		return &ImageSizeError{
			SourceSize: [2]int{srcW, srcH},
			SearchSize: [2]int{tplW, tplH},
		}
	}
	return nil
}
