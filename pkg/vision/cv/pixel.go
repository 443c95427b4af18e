package cv

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// PixelFormat 原始像素缓冲区的通道布局
type PixelFormat int

const (
	// FormatGray 单通道亮度
	FormatGray PixelFormat = iota
	// FormatRGB 三通道 R,G,B
	FormatRGB
	// FormatBGR 三通道 B,G,R（OpenCV 默认布局）
	FormatBGR
	// FormatRGBA 四通道 R,G,B,A
	FormatRGBA
	// FormatBGRA 四通道 B,G,R,A（Windows DIB 布局）
	FormatBGRA
)

func (f PixelFormat) String() string {
	switch f {
	case FormatGray:
		return "GRAY"
	case FormatRGB:
		return "RGB"
	case FormatBGR:
		return "BGR"
	case FormatRGBA:
		return "RGBA"
	case FormatBGRA:
		return "BGRA"
	default:
		return "UNKNOWN"
	}
}

// Channels 每个像素的字节数
func (f PixelFormat) Channels() int {
	switch f {
	case FormatGray:
		return 1
	case FormatRGB, FormatBGR:
		return 3
	case FormatRGBA, FormatBGRA:
		return 4
	default:
		return 0
	}
}

// rgbOffsets 返回 R,G,B 在单个像素内的字节偏移
func (f PixelFormat) rgbOffsets() (r, g, b int) {
	switch f {
	case FormatBGR, FormatBGRA:
		return 2, 1, 0
	case FormatGray:
		return 0, 0, 0
	default:
		return 0, 1, 2
	}
}

// luma 按 Rec.709 权重计算 8 位亮度
func luma(r, g, b uint8) uint8 {
	return uint8((2126*uint32(r) + 7152*uint32(g) + 722*uint32(b) + 5000) / 10000)
}

func checkPixelBuffer(pix []byte, w, h, stride int, f PixelFormat) error {
	ch := f.Channels()
	if ch == 0 || w <= 0 || h <= 0 || stride < w*ch || len(pix) < (h-1)*stride+w*ch {
		return &PixelBufferError{Format: f, Width: w, Height: h, Stride: stride, Len: len(pix)}
	}
	return nil
}

// GrayFromPixels 将原始像素缓冲区转换为亮度图
// alpha 通道被忽略
func GrayFromPixels(pix []byte, w, h, stride int, f PixelFormat) (*image.Gray, error) {
	if err := checkPixelBuffer(pix, w, h, stride, f); err != nil {
		return nil, err
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	ch := f.Channels()
	ro, gOff, bo := f.rgbOffsets()
	for y := 0; y < h; y++ {
		row := pix[y*stride : y*stride+w*ch]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		if ch == 1 {
			copy(out, row)
			continue
		}
		for x := 0; x < w; x++ {
			i := x * ch
			out[x] = luma(row[i+ro], row[i+gOff], row[i+bo])
		}
	}
	return dst, nil
}

// RGBAFromPixels 将原始像素缓冲区转换为 *image.RGBA
// 用显式拷贝代替对缓冲区的重新解释，例如 BGRA -> RGBA 交换 R/B 通道
func RGBAFromPixels(pix []byte, w, h, stride int, f PixelFormat) (*image.RGBA, error) {
	if err := checkPixelBuffer(pix, w, h, stride, f); err != nil {
		return nil, err
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	ch := f.Channels()
	ro, gOff, bo := f.rgbOffsets()
	for y := 0; y < h; y++ {
		row := pix[y*stride : y*stride+w*ch]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := 0; x < w; x++ {
			i, o := x*ch, x*4
			out[o+0] = row[i+ro]
			out[o+1] = row[i+gOff]
			out[o+2] = row[i+bo]
			if ch == 4 {
				out[o+3] = row[i+3]
			} else {
				out[o+3] = 0xFF
			}
		}
	}
	return dst, nil
}

// PixelsFromImage 将图像编码为指定布局的紧凑像素缓冲区，返回缓冲区和行跨度
func PixelsFromImage(img image.Image, f PixelFormat) ([]byte, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	ch := f.Channels()
	if ch == 0 || w <= 0 || h <= 0 {
		return nil, 0
	}
	if f == FormatGray {
		g := ToGray(img)
		out := make([]byte, w*h)
		for y := 0; y < h; y++ {
			copy(out[y*w:(y+1)*w], g.Pix[y*g.Stride:y*g.Stride+w])
		}
		return out, w
	}

	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
	}
	stride := w * ch
	out := make([]byte, stride*h)
	ro, gOff, bo := f.rgbOffsets()
	for y := 0; y < h; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
		dst := out[y*stride : (y+1)*stride]
		for x := 0; x < w; x++ {
			i, o := x*4, x*ch
			dst[o+ro] = row[i+0]
			dst[o+gOff] = row[i+1]
			dst[o+bo] = row[i+2]
			if ch == 4 {
				dst[o+3] = row[i+3]
			}
		}
	}
	return out, stride
}

// ToGray 转换为以 (0,0) 为原点的灰度图
// 输入已经是紧凑的 *image.Gray 时直接返回，调用方不得修改结果
// 亮度只取颜色通道，忽略 alpha；其他图像类型先去掉预乘再计算
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	switch src := img.(type) {
	case *image.Gray:
		if src.Rect.Min == (image.Point{}) && src.Stride == w {
			return src
		}
		dst := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*w:(y+1)*w], src.Pix[off:off+w])
		}
		return dst
	case *image.RGBA:
		return grayFromRGBARows(src.Pix, src.Stride, src.PixOffset(b.Min.X, b.Min.Y), w, h)
	case *image.NRGBA:
		return grayFromRGBARows(src.Pix, src.Stride, src.PixOffset(b.Min.X, b.Min.Y), w, h)
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			dst.Pix[y*w+x] = luma(c.R, c.G, c.B)
		}
	}
	return dst
}

func grayFromRGBARows(pix []byte, stride, start, w, h int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w <= 0 || h <= 0 {
		return dst
	}
	for y := 0; y < h; y++ {
		row := pix[start+y*stride : start+y*stride+w*4]
		out := dst.Pix[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			i := x * 4
			out[x] = luma(row[i], row[i+1], row[i+2])
		}
	}
	return dst
}
