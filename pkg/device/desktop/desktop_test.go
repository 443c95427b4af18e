package desktop

import (
	"context"
	"errors"
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/zoeyai/screenmatch/pkg/device"
	"github.com/zoeyai/screenmatch/pkg/vision/cv"
)

func TestScaleCoord(t *testing.T) {
	tests := []struct {
		value int
		scale float64
		want  int
	}{
		{100, 1, 100},
		{300, 1.5, 200},
		{301, 2, 151},
		{100, 0, 100},
		{100, -2, 100},
	}
	for _, tt := range tests {
		if got := ScaleCoord(tt.value, tt.scale); got != tt.want {
			t.Errorf("ScaleCoord(%d, %v) = %d, 期望 %d", tt.value, tt.scale, got, tt.want)
		}
	}
}

func TestMouseInputPoint(t *testing.T) {
	m := NewMouse(2)
	if got := m.InputPoint(cv.NewPoint(200, 101)); got != cv.NewPoint(100, 51) {
		t.Errorf("InputPoint = %s", got)
	}
	if m.button != "left" || m.double {
		t.Errorf("默认应为左键单击: %+v", m)
	}

	m = NewMouse(1, WithRightClick(), WithDoubleClick())
	if m.button != "right" || !m.double {
		t.Errorf("选项未生效: %+v", m)
	}
}

func TestMouseClickCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewMouse(1).Click(ctx, cv.NewPoint(1, 1)); !errors.Is(err, context.Canceled) {
		t.Errorf("期望 context.Canceled, 实际 %v", err)
	}
}

// TestScreenCapture 需要图形环境
func TestScreenCapture(t *testing.T) {
	if runtime.GOOS == "linux" && os.Getenv("DISPLAY") == "" {
		t.Skip("没有 DISPLAY")
	}
	img, err := NewScreen(-1).Capture(context.Background())
	if err != nil {
		var capErr *device.CaptureError
		if !errors.As(err, &capErr) {
			t.Fatalf("期望 CaptureError, 实际 %v", err)
		}
		t.Skipf("截屏失败 (可能没有图形环境或权限): %v", err)
	}
	b := img.Bounds()
	t.Logf("截屏成功: %dx%d", b.Dx(), b.Dy())
}

func TestPermissionsInstructions(t *testing.T) {
	all := Permissions{Accessibility: true, ScreenRecording: true}
	if !all.Granted() || all.Instructions() != "" {
		t.Errorf("全部授权时不应有提示: %q", all.Instructions())
	}

	missing := Permissions{Accessibility: true}
	if missing.Granted() {
		t.Error("缺少屏幕录制时 Granted 应为 false")
	}
	msg := missing.Instructions()
	if !strings.Contains(msg, "屏幕录制") || strings.Contains(msg, "辅助功能 (") {
		t.Errorf("提示内容错误: %q", msg)
	}

	if runtime.GOOS != "darwin" && !CheckPermissions().Granted() {
		t.Error("非 macOS 系统应视为已授权")
	}
}
