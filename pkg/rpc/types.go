package rpc

import (
	"context"
	"os"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"

	"github.com/zoeyai/screenmatch/pkg/auto"
	"github.com/zoeyai/screenmatch/pkg/vision"
	"github.com/zoeyai/screenmatch/pkg/vision/cv"
)

// MatchRequest 在给定截图中查找模板
type MatchRequest struct {
	// Source, Template 为 PNG/JPEG 等编码后的图像
	Source   []byte `json:"source"`
	Template []byte `json:"template"`
	// SizeThreshold <= 0 时使用服务端配置
	SizeThreshold int `json:"size_threshold,omitempty"`
}

// WaitRequest 在服务端设备画面上等待模板出现
type WaitRequest struct {
	Template   []byte       `json:"template"`
	Name       string       `json:"name,omitempty"`
	Threshold  float64      `json:"threshold"`
	IntervalMs int64        `json:"interval_ms,omitempty"`
	TimeoutMs  int64        `json:"timeout_ms,omitempty"`
	Region     *auto.Region `json:"region,omitempty"`
}

// MatchReply 匹配结果
type MatchReply struct {
	Result cv.MatchResult `json:"result"`
}

// InfoRequest 查询服务端信息
type InfoRequest struct{}

// SystemInfo 服务端系统信息
type SystemInfo struct {
	Hostname      string `json:"hostname"`
	Platform      string `json:"platform"`
	OSVersion     string `json:"os_version"`
	KernelArch    string `json:"kernel_arch"`
	UptimeSeconds uint64 `json:"uptime_seconds"`
	NumCPU        int    `json:"num_cpu"`
	Version       string `json:"version"`
	Backend       string `json:"backend"`
	FrameSource   bool   `json:"frame_source"`
}

// GetSystemInfo 获取当前系统信息，gopsutil 不可用时退回 runtime 信息
func GetSystemInfo(ctx context.Context) *SystemInfo {
	info := &SystemInfo{
		Platform:   strings.ToUpper(runtime.GOOS),
		OSVersion:  runtime.GOOS + "/" + runtime.GOARCH,
		KernelArch: runtime.GOARCH,
		NumCPU:     runtime.NumCPU(),
		Version:    vision.Version,
	}
	if info.Platform == "DARWIN" {
		info.Platform = "MACOS"
	}

	hi, err := host.InfoWithContext(ctx)
	if err != nil {
		info.Hostname, _ = os.Hostname()
		return info
	}
	info.Hostname = hi.Hostname
	if hi.Platform != "" {
		info.OSVersion = strings.TrimSpace(hi.Platform + " " + hi.PlatformVersion)
	}
	if hi.KernelArch != "" {
		info.KernelArch = hi.KernelArch
	}
	info.UptimeSeconds = hi.Uptime
	return info
}
