package cv

import (
	"image"
	"math"
	"math/bits"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/floats"
)

// DefaultSizeThreshold 源图像最长边超过该值时降采样
const DefaultSizeThreshold = 500

// TemplateMatching 基于亮度归一化互相关的模板匹配器
// 同一个实例可以被多个 goroutine 并发使用
type TemplateMatching struct {
	sizeThreshold int
	workers       int
}

// Option 匹配器选项
type Option func(*TemplateMatching)

// WithSizeThreshold 设置降采样阈值
func WithSizeThreshold(n int) Option {
	return func(m *TemplateMatching) {
		m.sizeThreshold = n
	}
}

// WithWorkers 设置并行扫描的 goroutine 数量，<= 0 时使用 CPU 核数
func WithWorkers(n int) Option {
	return func(m *TemplateMatching) {
		m.workers = n
	}
}

// NewTemplateMatching 创建模板匹配器
func NewTemplateMatching(opts ...Option) *TemplateMatching {
	m := &TemplateMatching{
		sizeThreshold: DefaultSizeThreshold,
		workers:       runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.workers <= 0 {
		m.workers = runtime.NumCPU()
	}
	return m
}

// MatchTemplateCenter 在 source 中查找 template，返回中心点和分数
func MatchTemplateCenter(source, template image.Image, sizeThreshold int) (MatchResult, error) {
	return NewTemplateMatching(WithSizeThreshold(sizeThreshold)).MatchCenter(source, template)
}

// MatchCenter 在 source 中查找 template 的最佳位置
func (m *TemplateMatching) MatchCenter(source, template image.Image) (MatchResult, error) {
	if source == nil || template == nil || source.Bounds().Empty() || template.Bounds().Empty() {
		return MatchResult{}, ErrEmptyImage
	}
	return m.MatchGray(ToGray(source), ToGray(template))
}

// MatchGray 与 MatchCenter 相同，输入为已提取的亮度图
func (m *TemplateMatching) MatchGray(source, template *image.Gray) (MatchResult, error) {
	start := time.Now()

	if source == nil || template == nil || source.Bounds().Empty() || template.Bounds().Empty() {
		return MatchResult{}, ErrEmptyImage
	}
	if m.sizeThreshold <= 0 {
		return MatchResult{}, ErrInvalidSizeThreshold
	}
	srcW, srcH := source.Bounds().Dx(), source.Bounds().Dy()
	tplW, tplH := template.Bounds().Dx(), template.Bounds().Dy()
	if err := checkSourceLargerThanSearch(srcW, srcH, tplW, tplH); err != nil {
		return MatchResult{}, err
	}

	scale := ScaleFactor(srcW, srcH, m.sizeThreshold)
	src := Downsample(ToGray(source), scale)
	tpl := Downsample(ToGray(template), scale)

	best, err := m.scan(src, tpl)
	if err != nil {
		return MatchResult{}, err
	}

	x := clamp(int(math.Round(float64(best.x)*scale)), 0, srcW-tplW)
	y := clamp(int(math.Round(float64(best.y)*scale)), 0, srcH-tplH)

	return MatchResult{
		Result:     Point{X: x + tplW/2, Y: y + tplH/2},
		Rectangle:  NewRectangle(x, y, tplW, tplH),
		Confidence: best.score,
		Scale:      scale,
		Time:       float64(time.Since(start).Microseconds()) / 1000,
	}, nil
}

// candidate 单个 worker 的最佳位置
type candidate struct {
	x, y  int
	score float64
}

func (c candidate) better(o candidate) bool {
	if c.score != o.score {
		return c.score > o.score
	}
	if c.y != o.y {
		return c.y < o.y
	}
	return c.x < o.x
}

// rowSums 每行的前缀和，宽度为 w+1
type rowSums struct {
	w    int
	sum  []int64
	sum2 []int64
}

func newRowSums(g *image.Gray) *rowSums {
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	rs := &rowSums{
		w:    w,
		sum:  make([]int64, h*(w+1)),
		sum2: make([]int64, h*(w+1)),
	}
	for y := 0; y < h; y++ {
		base := y * (w + 1)
		row := g.Pix[y*g.Stride : y*g.Stride+w]
		for x, v := range row {
			p := int64(v)
			rs.sum[base+x+1] = rs.sum[base+x] + p
			rs.sum2[base+x+1] = rs.sum2[base+x] + p*p
		}
	}
	return rs
}

// window 返回 (ox, oy) 处 tw*th 窗口的像素和与平方和
func (rs *rowSums) window(ox, oy, tw, th int) (s1, s2 int64) {
	for r := oy; r < oy+th; r++ {
		base := r * (rs.w + 1)
		s1 += rs.sum[base+ox+tw] - rs.sum[base+ox]
		s2 += rs.sum2[base+ox+tw] - rs.sum2[base+ox]
	}
	return s1, s2
}

// scan 逐个偏移计算 NCC，按行并行，结果与 worker 数量无关
func (m *TemplateMatching) scan(src, tpl *image.Gray) (candidate, error) {
	sn, err := Normalize(src)
	if err != nil {
		return candidate{}, err
	}
	tn, err := Normalize(tpl)
	if err != nil {
		return candidate{}, err
	}
	sums := newRowSums(src)

	tw, th := tn.Width, tn.Height
	nx, ny := sn.Width-tw+1, sn.Height-th+1
	n := int64(tw * th)
	tplFlat := tn.Flat()
	tplValue := int64(tpl.Pix[0])

	score := func(ox, oy int) float64 {
		s1, s2 := sums.window(ox, oy, tw, th)
		v, flat := windowVariance(n, s1, s2)
		if tplFlat || flat {
			if tplFlat && flat && s1 == n*tplValue {
				return 1
			}
			return 0
		}
		var num float64
		for r := 0; r < th; r++ {
			num += floats.Dot(sn.Row(oy + r)[ox:ox+tw], tn.Row(r))
		}
		ssWin := v / float64(n)
		return clampScore(num / math.Sqrt(ssWin*tn.SumSquares))
	}

	workers := min(m.workers, ny)
	if workers < 1 {
		workers = 1
	}
	results := make([]candidate, workers)
	var next atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			best := candidate{score: math.Inf(-1)}
			for {
				oy := int(next.Add(1) - 1)
				if oy >= ny {
					break
				}
				for ox := 0; ox < nx; ox++ {
					c := candidate{x: ox, y: oy, score: score(ox, oy)}
					if c.better(best) {
						best = c
					}
				}
			}
			results[i] = best
		}(i)
	}
	wg.Wait()

	best := results[0]
	for _, c := range results[1:] {
		if c.better(best) {
			best = c
		}
	}
	return best, nil
}

// windowVariance 返回 n*s2 - s1²（即 n 倍的窗口平方和），用 128 位整数精确计算
func windowVariance(n, s1, s2 int64) (float64, bool) {
	hi, lo := bits.Mul64(uint64(n), uint64(s2))
	shi, slo := bits.Mul64(uint64(s1), uint64(s1))
	lo, borrow := bits.Sub64(lo, slo, 0)
	hi, _ = bits.Sub64(hi, shi, borrow)
	if hi == 0 && lo == 0 {
		return 0, true
	}
	return float64(hi)*(1<<64) + float64(lo), false
}

func clampScore(s float64) float64 {
	if math.IsNaN(s) {
		return 0
	}
	return math.Max(-1, math.Min(1, s))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
