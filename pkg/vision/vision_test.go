package vision

import (
	"errors"
	"image"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/zoeyai/screenmatch/pkg/config"
	"github.com/zoeyai/screenmatch/pkg/vision/codec"
	"github.com/zoeyai/screenmatch/pkg/vision/cv"
	"github.com/zoeyai/screenmatch/pkg/vision/cv/opencv"
)

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version 不应为空")
	}
	t.Logf("Version: %s", Version)
}

func noise(w, h int, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		if i%4 == 3 {
			img.Pix[i] = 0xff
			continue
		}
		img.Pix[i] = uint8(rng.Intn(256))
	}
	return img
}

func TestNewMatcherBackends(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		check   func(Matcher) bool
	}{
		{"默认", "", func(m Matcher) bool { _, ok := m.(*cv.TemplateMatching); return ok }},
		{"native", "native", func(m Matcher) bool { _, ok := m.(*cv.TemplateMatching); return ok }},
		{"大写", "OpenCV", func(m Matcher) bool { _, ok := m.(*opencv.Matcher); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatcher(WithBackend(tt.backend))
			if err != nil {
				t.Fatalf("NewMatcher 失败: %v", err)
			}
			if !tt.check(m) {
				t.Errorf("引擎类型错误: %T", m)
			}
		})
	}

	if _, err := NewMatcher(WithBackend("sift")); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("未知引擎应返回 ErrUnknownBackend, 实际 %v", err)
	}
}

func TestFindLocation(t *testing.T) {
	screen := noise(160, 120, 3)
	template := screen.SubImage(image.Rect(30, 20, 60, 44))

	for _, backend := range []string{BackendNative, BackendOpenCV} {
		t.Run(backend, func(t *testing.T) {
			res, err := FindLocation(screen, template, WithBackend(backend), WithWorkers(2))
			if err != nil {
				t.Fatalf("FindLocation 失败: %v", err)
			}
			if res.Result != cv.NewPoint(45, 32) {
				t.Errorf("中心点 = %s, 期望 (45, 32)", res.Result)
			}
			if res.Confidence < 0.99 {
				t.Errorf("置信度 = %f", res.Confidence)
			}
		})
	}
}

func TestFindLocationInvalidThreshold(t *testing.T) {
	screen := noise(40, 40, 1)
	_, err := FindLocation(screen, screen.SubImage(image.Rect(0, 0, 8, 8)), WithSizeThreshold(0))
	if !errors.Is(err, cv.ErrInvalidSizeThreshold) {
		t.Errorf("期望 ErrInvalidSizeThreshold, 实际 %v", err)
	}
}

func TestFindLocationFile(t *testing.T) {
	dir := t.TempDir()
	screen := noise(120, 90, 9)
	template := image.NewRGBA(image.Rect(0, 0, 20, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 20; x++ {
			template.Set(x, y, screen.At(70+x, 50+y))
		}
	}

	screenPath := filepath.Join(dir, "screen.png")
	templatePath := filepath.Join(dir, "template.png")
	if err := codec.SaveFile(screenPath, screen); err != nil {
		t.Fatalf("保存失败: %v", err)
	}
	if err := codec.SaveFile(templatePath, template); err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	res, err := FindLocationFile(screenPath, templatePath)
	if err != nil {
		t.Fatalf("FindLocationFile 失败: %v", err)
	}
	if res.Result != cv.NewPoint(80, 58) {
		t.Errorf("中心点 = %s, 期望 (80, 58)", res.Result)
	}

	if _, err := FindLocationFile(filepath.Join(dir, "missing.png"), templatePath); err == nil {
		t.Error("文件不存在应返回错误")
	}
}

func TestWithConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendOpenCV
	cfg.Match.SizeThreshold = 320
	cfg.Match.Workers = 3

	o := DefaultOptions
	WithConfig(cfg)(&o)
	if o.Backend != BackendOpenCV || o.SizeThreshold != 320 || o.Workers != 3 {
		t.Errorf("WithConfig 结果错误: %+v", o)
	}
}
