// Package adb 通过 adb 命令行对 Android 设备截图和点击
package adb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/zoeyai/screenmatch/internal/logger"
	"github.com/zoeyai/screenmatch/pkg/device"
	"github.com/zoeyai/screenmatch/pkg/vision/cv"
)

// Decoder 把 screencap 输出解码为图像
type Decoder func(data []byte) (image.Image, error)

// Device adb 设备
type Device struct {
	path    string
	serial  string
	runner  Runner
	decoder Decoder
	log     *logger.Logger
}

// Option 设备选项
type Option func(*Device)

// WithSerial 指定设备序列号（adb -s）
func WithSerial(serial string) Option {
	return func(d *Device) {
		d.serial = serial
	}
}

// WithRunner 替换命令执行器
func WithRunner(r Runner) Option {
	return func(d *Device) {
		d.runner = r
	}
}

// WithDecoder 替换截图解码器，默认使用 image/png
func WithDecoder(dec Decoder) Option {
	return func(d *Device) {
		d.decoder = dec
	}
}

// WithLogger 设置日志
func WithLogger(l *logger.Logger) Option {
	return func(d *Device) {
		d.log = l
	}
}

// New 创建 adb 设备，adbPath 为空时使用 PATH 中的 adb
func New(adbPath string, opts ...Option) *Device {
	if adbPath == "" {
		adbPath = "adb"
	}
	d := &Device{
		path:    adbPath,
		runner:  ExecRunner{},
		decoder: decodePNG,
		log:     logger.Default().Named("adb"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func decodePNG(data []byte) (image.Image, error) {
	return png.Decode(bytes.NewReader(data))
}

// Capture 执行 screencap -p 并解码
func (d *Device) Capture(ctx context.Context) (image.Image, error) {
	start := time.Now()
	out, err := d.run(ctx, "exec-out", "screencap", "-p")
	if err != nil {
		return nil, err
	}

	img, err := d.decoder(out)
	if err != nil {
		return nil, &device.DecodeError{Err: err}
	}
	b := img.Bounds()
	d.log.Debug("截图 %dx%d, %d 字节, 耗时 %v", b.Dx(), b.Dy(), len(out), time.Since(start))
	return img, nil
}

// Click 执行 input tap x y
func (d *Device) Click(ctx context.Context, p cv.Point) error {
	d.log.Debug("点击 %s", p)
	_, err := d.run(ctx, "shell", "input", "tap", strconv.Itoa(p.X), strconv.Itoa(p.Y))
	return err
}

// Size 读取 wm size 返回的屏幕尺寸，优先使用 Override size
func (d *Device) Size(ctx context.Context) (width, height int, err error) {
	out, err := d.run(ctx, "shell", "wm", "size")
	if err != nil {
		return 0, 0, err
	}
	return parseWMSize(string(out))
}

func parseWMSize(output string) (width, height int, err error) {
	found := false
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		var w, h int
		if _, err := fmt.Sscanf(line, "Override size: %dx%d", &w, &h); err == nil {
			return w, h, nil
		}
		if _, err := fmt.Sscanf(line, "Physical size: %dx%d", &w, &h); err == nil {
			width, height, found = w, h, true
		}
	}
	if !found {
		return 0, 0, fmt.Errorf("无法解析屏幕尺寸: %q", strings.TrimSpace(output))
	}
	return width, height, nil
}

// Devices 列出已连接的设备序列号
func (d *Device) Devices(ctx context.Context) ([]string, error) {
	res, err := d.runner.Run(ctx, d.path, "devices")
	if err := d.check("devices", res, err); err != nil {
		return nil, err
	}
	var serials []string
	for _, line := range strings.Split(string(res.Stdout), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[1] == "device" {
			serials = append(serials, fields[0])
		}
	}
	return serials, nil
}

func (d *Device) run(ctx context.Context, args ...string) ([]byte, error) {
	full := args
	if d.serial != "" {
		full = append([]string{"-s", d.serial}, args...)
	}
	res, err := d.runner.Run(ctx, d.path, full...)
	if err := d.check(strings.Join(full, " "), res, err); err != nil {
		return nil, err
	}
	return res.Stdout, nil
}

func (d *Device) check(args string, res Result, err error) error {
	command := d.path + " " + args
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		d.log.Warn("命令无法启动: %s: %v", command, err)
		return &device.InvocationError{Command: command, Err: err}
	}
	if res.ExitCode != 0 {
		d.log.Debug("stdout: %s", res.Stdout)
		d.log.Debug("stderr: %s", res.Stderr)
		return &device.ExecutionError{
			Command: command,
			Code:    res.ExitCode,
			Stdout:  string(res.Stdout),
			Stderr:  string(res.Stderr),
		}
	}
	return nil
}

// LookPath 查找 adb 可执行文件
// 依次尝试 preferred、$ANDROID_HOME/platform-tools 和 PATH
func LookPath(preferred string) (string, error) {
	name := "adb"
	if runtime.GOOS == "windows" {
		name = "adb.exe"
	}

	var candidates []string
	if preferred != "" {
		candidates = append(candidates, preferred, filepath.Join(preferred, name))
	}
	for _, env := range []string{"ANDROID_HOME", "ANDROID_SDK_ROOT"} {
		if dir := os.Getenv(env); dir != "" {
			candidates = append(candidates, filepath.Join(dir, "platform-tools", name))
		}
	}
	for _, c := range candidates {
		if fi, err := os.Stat(c); err == nil && !fi.IsDir() {
			return c, nil
		}
	}

	if p, err := exec.LookPath(name); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("未找到 adb，请在配置中指定 adb_path")
}

// ServerPIDs 返回正在运行的 adb 进程 PID
func ServerPIDs(ctx context.Context) ([]int32, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取进程列表失败: %w", err)
	}

	var pids []int32
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if isADBProcess(name) {
			pids = append(pids, p.Pid)
		}
	}
	return pids, nil
}

func isADBProcess(name string) bool {
	name = strings.ToLower(name)
	return name == "adb" || name == "adb.exe"
}
