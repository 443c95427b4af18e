// Package opencv 基于 OpenCV (gocv) 的模板匹配后端
//
// 与 cv 包的纯 Go 引擎接口一致，数值由 OpenCV TM_CCOEFF_NORMED 计算。
// 分数相同时返回的位置由 OpenCV 决定。
package opencv

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/zoeyai/screenmatch/pkg/vision/cv"
)

// GrayMat 将亮度图转换为单通道 Mat，调用方负责 Close
func GrayMat(g *image.Gray) (gocv.Mat, error) {
	g = cv.ToGray(g)
	b := g.Bounds()
	mat, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC1, g.Pix[:b.Dx()*b.Dy()])
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("创建灰度 Mat 失败: %w", err)
	}
	return mat, nil
}

// ImageToMat 将 image.Image 转换为 BGR 三通道 Mat，调用方负责 Close
func ImageToMat(img image.Image) (gocv.Mat, error) {
	b := img.Bounds()
	pix, _ := cv.PixelsFromImage(img, cv.FormatBGR)
	if pix == nil {
		return gocv.Mat{}, cv.ErrEmptyImage
	}
	mat, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC3, pix)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("图像转换失败: %w", err)
	}
	return mat, nil
}

// MatToImage 将 8 位 Mat（灰度/BGR/BGRA）转换为 image.Image
func MatToImage(mat gocv.Mat) (image.Image, error) {
	if mat.Empty() {
		return nil, cv.ErrEmptyImage
	}
	if !mat.IsContinuous() {
		mat = mat.Clone()
		defer mat.Close()
	}

	var format cv.PixelFormat
	switch mat.Channels() {
	case 1:
		format = cv.FormatGray
	case 3:
		format = cv.FormatBGR
	case 4:
		format = cv.FormatBGRA
	default:
		return nil, fmt.Errorf("不支持的通道数: %d", mat.Channels())
	}

	w, h := mat.Cols(), mat.Rows()
	data := mat.ToBytes()
	if format == cv.FormatGray {
		return cv.GrayFromPixels(data, w, h, w, format)
	}
	return cv.RGBAFromPixels(data, w, h, w*format.Channels(), format)
}

// resizeNearest 最近邻缩放到 w*h，调用方负责 Close
func resizeNearest(src gocv.Mat, w, h int) gocv.Mat {
	dst := gocv.NewMat()
	gocv.Resize(src, &dst, image.Point{X: w, Y: h}, 0, 0, gocv.InterpolationNearestNeighbor)
	return dst
}
