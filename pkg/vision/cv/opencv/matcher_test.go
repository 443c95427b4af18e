package opencv

import (
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/zoeyai/screenmatch/pkg/vision/cv"
)

func noiseGray(w, h int, seed int64) *image.Gray {
	rng := rand.New(rand.NewSource(seed))
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = uint8(rng.Intn(256))
	}
	return g
}

func TestMatcherSelfMatch(t *testing.T) {
	source := noiseGray(200, 150, 1)
	template := source.SubImage(image.Rect(40, 60, 72, 84)).(*image.Gray)

	result, err := NewMatcher(cv.DefaultSizeThreshold).MatchGray(source, template)
	if err != nil {
		t.Fatalf("匹配失败: %v", err)
	}
	t.Logf("OpenCV 匹配: 中心=%s 置信度=%.4f", result.Result, result.Confidence)

	if result.Result != cv.NewPoint(56, 72) {
		t.Errorf("中心点 = %s, 期望 (56, 72)", result.Result)
	}
	if result.Confidence < 0.99 {
		t.Errorf("置信度 = %f, 期望接近 1", result.Confidence)
	}
}

func TestMatcherAgreesWithNative(t *testing.T) {
	source := noiseGray(640, 360, 3)
	template := source.SubImage(image.Rect(320, 120, 400, 180)).(*image.Gray)

	// 640 像素时不降采样；320 时比例为 2，偶数偏移下两种最近邻采样对齐
	for _, size := range []int{cv.DefaultSizeThreshold * 2, 320} {
		native, err := cv.NewTemplateMatching(cv.WithSizeThreshold(size)).MatchGray(source, template)
		if err != nil {
			t.Fatalf("纯 Go 匹配失败: %v", err)
		}
		ocv, err := NewMatcher(size).MatchGray(source, template)
		if err != nil {
			t.Fatalf("OpenCV 匹配失败: %v", err)
		}
		t.Logf("size=%d native=%s/%.4f opencv=%s/%.4f", size, native.Result, native.Confidence, ocv.Result, ocv.Confidence)

		if native.Scale != ocv.Scale {
			t.Errorf("size=%d Scale 不一致: %f vs %f", size, native.Scale, ocv.Scale)
		}
		tol := int(math.Ceil(native.Scale))
		dx, dy := native.Result.X-ocv.Result.X, native.Result.Y-ocv.Result.Y
		if dx < -tol || dx > tol || dy < -tol || dy > tol {
			t.Errorf("size=%d 中心点相差过大: %s vs %s", size, native.Result, ocv.Result)
		}
		if math.Abs(native.Confidence-ocv.Confidence) > 1e-3 {
			t.Errorf("size=%d 置信度不一致: %f vs %f", size, native.Confidence, ocv.Confidence)
		}
	}
}

func TestMatcherFlatTemplate(t *testing.T) {
	// 100x100 灰底，(5,5) 处 10x10 白块
	source := image.NewGray(image.Rect(0, 0, 100, 100))
	for i := range source.Pix {
		source.Pix[i] = 128
	}
	white := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range white.Pix {
		white.Pix[i] = 255
	}
	for y := 5; y < 15; y++ {
		for x := 5; x < 15; x++ {
			source.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	m := NewMatcher(cv.DefaultSizeThreshold)
	res, err := m.MatchGray(source, white)
	if err != nil {
		t.Fatalf("匹配失败: %v", err)
	}
	if res.Result != cv.NewPoint(10, 10) || res.Confidence != 1 {
		t.Errorf("白块: 中心=%s 置信度=%f, 期望 (10, 10) 1", res.Result, res.Confidence)
	}

	native, err := cv.NewTemplateMatching().MatchGray(source, white)
	if err != nil {
		t.Fatalf("纯 Go 匹配失败: %v", err)
	}
	if native.Result != res.Result || native.Confidence != res.Confidence {
		t.Errorf("与纯 Go 结果不一致: %s/%f vs %s/%f", native.Result, native.Confidence, res.Result, res.Confidence)
	}

	// 纯色模板在噪声图中不存在
	black := image.NewGray(image.Rect(0, 0, 10, 10))
	res, err = m.MatchGray(noiseGray(100, 100, 4), black)
	if err != nil {
		t.Fatalf("匹配失败: %v", err)
	}
	if res.Confidence != 0 {
		t.Errorf("黑色模板置信度 = %f, 期望 0", res.Confidence)
	}
}

func TestMatcherPreconditions(t *testing.T) {
	source := noiseGray(20, 20, 1)
	big := noiseGray(30, 10, 2)

	_, err := NewMatcher(cv.DefaultSizeThreshold).MatchGray(source, big)
	var sizeErr *cv.ImageSizeError
	if !errors.As(err, &sizeErr) {
		t.Errorf("期望 ImageSizeError, 实际 %v", err)
	}
	if _, err := NewMatcher(0).MatchGray(source, source); !errors.Is(err, cv.ErrInvalidSizeThreshold) {
		t.Errorf("期望 ErrInvalidSizeThreshold, 实际 %v", err)
	}
	if _, err := NewMatcher(10).MatchCenter(nil, source); !errors.Is(err, cv.ErrEmptyImage) {
		t.Errorf("期望 ErrEmptyImage, 实际 %v", err)
	}
}

func TestImageMatRoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 200, G: 10, B: 30, A: 0xFF})
	img.SetRGBA(2, 1, color.RGBA{R: 1, G: 2, B: 3, A: 0xFF})

	mat, err := ImageToMat(img)
	if err != nil {
		t.Fatalf("ImageToMat 失败: %v", err)
	}
	defer mat.Close()
	if mat.Channels() != 3 || mat.Cols() != 3 || mat.Rows() != 2 {
		t.Fatalf("Mat 尺寸 %dx%dx%d", mat.Cols(), mat.Rows(), mat.Channels())
	}

	back, err := MatToImage(mat)
	if err != nil {
		t.Fatalf("MatToImage 失败: %v", err)
	}
	rgba := back.(*image.RGBA)
	if rgba.RGBAAt(0, 0) != img.RGBAAt(0, 0) || rgba.RGBAAt(2, 1) != img.RGBAAt(2, 1) {
		t.Errorf("往返转换不一致: %v %v", rgba.RGBAAt(0, 0), rgba.RGBAAt(2, 1))
	}
}
