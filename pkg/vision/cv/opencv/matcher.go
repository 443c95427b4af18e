package opencv

import (
	"image"
	"math"
	"time"

	"gocv.io/x/gocv"

	"github.com/zoeyai/screenmatch/pkg/vision/cv"
)

// Matcher OpenCV 模板匹配器
type Matcher struct {
	sizeThreshold int
}

// NewMatcher 创建 OpenCV 匹配器，sizeThreshold 语义与 cv.WithSizeThreshold 相同
func NewMatcher(sizeThreshold int) *Matcher {
	return &Matcher{sizeThreshold: sizeThreshold}
}

// MatchCenter 在 source 中查找 template 的最佳位置
func (m *Matcher) MatchCenter(source, template image.Image) (cv.MatchResult, error) {
	if source == nil || template == nil || source.Bounds().Empty() || template.Bounds().Empty() {
		return cv.MatchResult{}, cv.ErrEmptyImage
	}
	return m.MatchGray(cv.ToGray(source), cv.ToGray(template))
}

// MatchGray 输入为亮度图的 MatchCenter
func (m *Matcher) MatchGray(source, template *image.Gray) (cv.MatchResult, error) {
	start := time.Now()

	if source == nil || template == nil || source.Bounds().Empty() || template.Bounds().Empty() {
		return cv.MatchResult{}, cv.ErrEmptyImage
	}
	if m.sizeThreshold <= 0 {
		return cv.MatchResult{}, cv.ErrInvalidSizeThreshold
	}
	srcW, srcH := source.Bounds().Dx(), source.Bounds().Dy()
	tplW, tplH := template.Bounds().Dx(), template.Bounds().Dy()
	if srcW < tplW || srcH < tplH {
		return cv.MatchResult{}, &cv.ImageSizeError{
			SourceSize: [2]int{srcW, srcH},
			SearchSize: [2]int{tplW, tplH},
		}
	}

	srcMat, err := GrayMat(source)
	if err != nil {
		return cv.MatchResult{}, err
	}
	defer srcMat.Close()
	tplMat, err := GrayMat(template)
	if err != nil {
		return cv.MatchResult{}, err
	}
	defer tplMat.Close()

	scale := cv.ScaleFactor(srcW, srcH, m.sizeThreshold)
	if scale > 1 {
		small := resizeNearest(srcMat, cv.ScaledDim(srcW, scale), cv.ScaledDim(srcH, scale))
		srcMat.Close()
		srcMat = small
		smallTpl := resizeNearest(tplMat, cv.ScaledDim(tplW, scale), cv.ScaledDim(tplH, scale))
		tplMat.Close()
		tplMat = smallTpl
	}

	// TmCcoeffNormed 对纯色模板整幅填 1，纯色模板改用纯 Go 引擎的平坦策略
	if lo, hi, _, _ := gocv.MinMaxLoc(tplMat); lo == hi {
		return cv.NewTemplateMatching(cv.WithSizeThreshold(m.sizeThreshold)).MatchGray(source, template)
	}

	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.MatchTemplate(srcMat, tplMat, &result, gocv.TmCcoeffNormed, mask)

	_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)
	confidence := float64(maxVal)
	if math.IsNaN(confidence) || math.IsInf(confidence, 0) {
		confidence = 0
	}
	confidence = math.Max(-1, math.Min(1, confidence))

	x := clamp(int(math.Round(float64(maxLoc.X)*scale)), 0, srcW-tplW)
	y := clamp(int(math.Round(float64(maxLoc.Y)*scale)), 0, srcH-tplH)

	return cv.MatchResult{
		Result:     cv.Point{X: x + tplW/2, Y: y + tplH/2},
		Rectangle:  cv.NewRectangle(x, y, tplW, tplH),
		Confidence: confidence,
		Scale:      scale,
		Time:       float64(time.Since(start).Microseconds()) / 1000,
	}, nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
