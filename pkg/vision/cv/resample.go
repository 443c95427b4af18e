package cv

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// ScaleFactor 计算降采样比例，最长边不超过 threshold 时返回 1
func ScaleFactor(w, h, threshold int) float64 {
	m := max(w, h)
	if m <= threshold {
		return 1
	}
	return float64(m) / float64(threshold)
}

// ScaledDim 降采样后的边长 floor(dim/scale)，至少为 1
func ScaledDim(dim int, scale float64) int {
	return max(1, int(math.Floor(float64(dim)/scale)))
}

// Downsample 最近邻降采样
func Downsample(g *image.Gray, scale float64) *image.Gray {
	if scale <= 1 {
		return g
	}
	b := g.Bounds()
	dst := image.NewGray(image.Rect(0, 0, ScaledDim(b.Dx(), scale), ScaledDim(b.Dy(), scale)))
	draw.NearestNeighbor.Scale(dst, dst.Rect, g, b, draw.Src, nil)
	return dst
}
