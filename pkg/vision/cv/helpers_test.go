package cv

import (
	"image"
	"image/color"
	"math/rand"
)

// solidGray 纯色灰度图
func solidGray(w, h int, v uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

// noiseRGBA 固定种子的随机彩色图
func noiseRGBA(w, h int, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 0xFF,
			})
		}
	}
	return img
}

// blockRGBA 由 block*block 随机色块组成的图，适合降采样测试
func blockRGBA(w, h, block int, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	cols, rows := (w+block-1)/block, (h+block-1)/block
	palette := make([]color.RGBA, cols*rows)
	for i := range palette {
		palette[i] = color.RGBA{
			R: uint8(rng.Intn(256)),
			G: uint8(rng.Intn(256)),
			B: uint8(rng.Intn(256)),
			A: 0xFF,
		}
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, palette[(y/block)*cols+x/block])
		}
	}
	return img
}

// crop 复制 img 的子区域，原点归零
func crop(img *image.RGBA, x, y, w, h int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			out.SetRGBA(dx, dy, img.RGBAAt(x+dx, y+dy))
		}
	}
	return out
}

// paste 把 patch 贴到 dst 的 (x, y)
func paste(dst, patch *image.RGBA, x, y int) {
	b := patch.Bounds()
	for dy := 0; dy < b.Dy(); dy++ {
		for dx := 0; dx < b.Dx(); dx++ {
			dst.SetRGBA(x+dx, y+dy, patch.RGBAAt(dx, dy))
		}
	}
}

func fillRGBA(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
