package cv

import "image"

// NormalizedImage 去均值后的亮度网格
type NormalizedImage struct {
	Width  int
	Height int
	// Values 行优先存储的 pixel - Mean
	Values []float64
	Mean   float64
	// SumSquares Σ(pixel - Mean)²，为 0 表示纯色
	SumSquares float64
}

// flatEpsilon 低于 8 位亮度图可能出现的最小非零方差和 (0.5)
const flatEpsilon = 1e-3

// Normalize 计算去均值亮度和平方和
func Normalize(g *image.Gray) (*NormalizedImage, error) {
	if g == nil {
		return nil, ErrEmptyImage
	}
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyImage
	}

	var sum uint64
	for y := 0; y < h; y++ {
		off := g.PixOffset(b.Min.X, b.Min.Y+y)
		for _, v := range g.Pix[off : off+w] {
			sum += uint64(v)
		}
	}
	mean := float64(sum) / float64(w*h)

	n := &NormalizedImage{
		Width:  w,
		Height: h,
		Values: make([]float64, w*h),
		Mean:   mean,
	}
	for y := 0; y < h; y++ {
		off := g.PixOffset(b.Min.X, b.Min.Y+y)
		row := n.Values[y*w : (y+1)*w]
		for x, v := range g.Pix[off : off+w] {
			d := float64(v) - mean
			row[x] = d
			n.SumSquares += d * d
		}
	}
	return n, nil
}

// Row 返回第 y 行
func (n *NormalizedImage) Row(y int) []float64 {
	return n.Values[y*n.Width : (y+1)*n.Width]
}

// Flat 是否为纯色
func (n *NormalizedImage) Flat() bool {
	return n.SumSquares < flatEpsilon
}
