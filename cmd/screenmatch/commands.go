package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/zoeyai/screenmatch/pkg/auto"
	"github.com/zoeyai/screenmatch/pkg/config"
	"github.com/zoeyai/screenmatch/pkg/device"
	"github.com/zoeyai/screenmatch/pkg/device/adb"
	"github.com/zoeyai/screenmatch/pkg/device/desktop"
	"github.com/zoeyai/screenmatch/pkg/rpc"
	"github.com/zoeyai/screenmatch/pkg/vision"
	"github.com/zoeyai/screenmatch/pkg/vision/codec"
	"github.com/zoeyai/screenmatch/pkg/vision/cv"
)

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("screenmatch "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// waitFlags wait 和 click 共用的参数
type waitFlags struct {
	template  *string
	threshold *float64
	interval  *time.Duration
	timeout   *time.Duration
	region    *string
	asJSON    *bool
}

func (a *app) addWaitFlags(fs *flag.FlagSet) *waitFlags {
	return &waitFlags{
		template:  fs.String("template", "", "模板图像文件"),
		threshold: fs.Float64("threshold", a.cfg.Match.Threshold, "匹配阈值，分数需严格大于该值"),
		interval:  fs.Duration("interval", time.Duration(a.cfg.Wait.IntervalMs)*time.Millisecond, "轮询间隔"),
		timeout:   fs.Duration("timeout", time.Duration(a.cfg.Wait.TimeoutMs)*time.Millisecond, "超时时间，0 表示不限时"),
		region:    fs.String("region", "", "只在区域 x,y,w,h 内查找"),
		asJSON:    fs.Bool("json", false, "以 JSON 输出结果"),
	}
}

// cmdMatch 在截图文件中查找模板
func (a *app) cmdMatch(ctx context.Context, args []string) error {
	fs := a.flagSet("match")
	var (
		source   = fs.String("source", "", "截图文件")
		template = fs.String("template", "", "模板图像文件")
		size     = fs.Int("size", a.cfg.Match.SizeThreshold, "最长边超过该值时降采样")
		backend  = fs.String("backend", a.cfg.Backend, "匹配引擎 native|opencv")
		asJSON   = fs.Bool("json", false, "以 JSON 输出结果")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *source == "" || *template == "" {
		return fmt.Errorf("%w: match 需要 -source 和 -template", errUsage)
	}

	res, err := vision.FindLocationFile(*source, *template,
		vision.WithConfig(a.cfg),
		vision.WithBackend(*backend),
		vision.WithSizeThreshold(*size))
	if err != nil {
		return err
	}
	a.log.LogEvent("MATCH", true, res.Time, fmt.Sprintf("%s conf=%.3f", res.Result, res.Confidence))
	return a.printResult(res, *asJSON)
}

// cmdWait 等待模板出现
func (a *app) cmdWait(ctx context.Context, args []string) error {
	fs := a.flagSet("wait")
	wf := a.addWaitFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	finder, tmpl, _, err := a.prepareWait(ctx, wf, false)
	if err != nil {
		return err
	}
	res, err := finder.WaitTimeout(ctx, tmpl, *wf.threshold, *wf.interval, *wf.timeout)
	if err != nil {
		return err
	}
	return a.printResult(res, *wf.asJSON)
}

// cmdClick 等待模板出现后点击
func (a *app) cmdClick(ctx context.Context, args []string) error {
	fs := a.flagSet("click")
	wf := a.addWaitFlags(fs)
	var (
		offset = fs.String("offset", "0,0", "相对中心点的点击偏移 x,y")
		grid   = fs.String("grid", "", "点击匹配区域内的网格位置 rows.cols.row.col")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	off, err := parsePoint(*offset)
	if err != nil {
		return fmt.Errorf("%w: -offset: %v", errUsage, err)
	}
	if *grid != "" {
		if _, err := auto.ParseGridPosition(*grid); err != nil {
			return fmt.Errorf("%w: -grid: %v", errUsage, err)
		}
	}

	finder, tmpl, in, err := a.prepareWait(ctx, wf, true)
	if err != nil {
		return err
	}
	if *wf.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *wf.timeout)
		defer cancel()
	}

	var res cv.MatchResult
	if *grid != "" {
		res, err = finder.ClickGrid(ctx, in, tmpl, *wf.threshold, *wf.interval, *grid)
	} else {
		res, err = finder.Click(ctx, in, tmpl, *wf.threshold, *wf.interval, off)
	}
	if err != nil {
		return err
	}
	return a.printResult(res, *wf.asJSON)
}

// prepareWait 读取模板、打开设备并创建 Finder
func (a *app) prepareWait(ctx context.Context, wf *waitFlags, needInput bool) (*auto.Finder, *auto.Template, device.Inputer, error) {
	if *wf.template == "" {
		return nil, nil, nil, fmt.Errorf("%w: 需要 -template", errUsage)
	}
	region, err := parseRegion(*wf.region)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: -region: %v", errUsage, err)
	}
	img, err := codec.LoadFile(*wf.template)
	if err != nil {
		return nil, nil, nil, err
	}
	tmpl, err := auto.NewTemplate(templateName(*wf.template), img)
	if err != nil {
		return nil, nil, nil, err
	}

	src, in, err := a.openDevice(ctx, needInput)
	if err != nil {
		return nil, nil, nil, err
	}
	finder, err := a.newFinder(src, region)
	if err != nil {
		return nil, nil, nil, err
	}
	return finder, tmpl, in, nil
}

func (a *app) newFinder(src device.FrameSource, region *auto.Region) (*auto.Finder, error) {
	m, err := vision.NewMatcher(vision.WithConfig(a.cfg))
	if err != nil {
		return nil, err
	}
	log := a.log.Named("auto")
	opts := []auto.Option{
		auto.WithMatcher(m),
		auto.WithLogger(log),
		auto.WithStateHook(func(s auto.State) { log.Debug("状态: %s", s) }),
	}
	if region != nil {
		opts = append(opts, auto.WithRegion(region.X, region.Y, region.Width, region.Height))
	}
	return auto.NewFinder(src, opts...), nil
}

// openDevice 按配置创建画面源和输入设备
func (a *app) openDevice(ctx context.Context, needInput bool) (device.FrameSource, device.Inputer, error) {
	dc := a.cfg.Device
	switch dc.Kind {
	case config.DeviceDesktop:
		if p := desktop.CheckPermissions(); !p.Granted() {
			a.log.Warn("%s", p.Instructions())
			desktop.OpenSettings(p)
		}
		var in device.Inputer
		if needInput {
			in = desktop.NewMouse(dc.ScaleFactor)
		}
		return desktop.NewScreen(dc.Display), in, nil
	default:
		path, err := adb.LookPath(dc.AdbPath)
		if err != nil {
			return nil, nil, err
		}
		opts := []adb.Option{
			adb.WithLogger(a.log.Named("adb")),
			adb.WithDecoder(codec.Decode),
		}
		if dc.Serial != "" {
			opts = append(opts, adb.WithSerial(dc.Serial))
		}
		d := adb.New(path, opts...)
		return d, d, nil
	}
}

// cmdServe 启动 gRPC 服务
func (a *app) cmdServe(ctx context.Context, args []string) error {
	fs := a.flagSet("serve")
	var (
		listen   = fs.String("listen", a.cfg.Listen, "监听地址")
		noDevice = fs.Bool("no-device", false, "不连接设备，只提供 Match")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := []rpc.ServerOption{
		rpc.WithLogger(a.log.Named("rpc")),
		rpc.WithMatchOptions(vision.WithConfig(a.cfg)),
	}
	if !*noDevice {
		src, _, err := a.openDevice(ctx, false)
		if err != nil {
			return err
		}
		opts = append(opts, rpc.WithFrameSource(src))
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		return fmt.Errorf("监听 %s 失败: %w", *listen, err)
	}
	a.log.Info("按 Ctrl+C 退出")
	return rpc.NewServer(opts...).Serve(ctx, lis)
}

// cmdInfo 显示系统与设备信息
func (a *app) cmdInfo(ctx context.Context, args []string) error {
	fs := a.flagSet("info")
	remote := fs.String("remote", "", "查询远程 screenmatch 服务的地址")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *remote != "" {
		c, err := rpc.Dial(*remote)
		if err != nil {
			return err
		}
		defer c.Close()
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		info, err := c.Info(ctx)
		if err != nil {
			return fmt.Errorf("查询 %s 失败: %w", *remote, err)
		}
		return a.printJSON(info)
	}

	info := rpc.GetSystemInfo(ctx)
	info.Backend = a.cfg.Backend
	w := a.stdout
	fmt.Fprintf(w, "screenmatch v%s\n", Version)
	fmt.Fprintf(w, "主机:     %s (%s, %s, %d CPU)\n", info.Hostname, info.OSVersion, info.KernelArch, info.NumCPU)
	fmt.Fprintf(w, "配置文件: %s (存在: %v)\n", a.manager.GetConfigFile(), a.manager.Exists())
	fmt.Fprintf(w, "匹配引擎: %s, 降采样阈值 %d\n", a.cfg.Backend, a.cfg.Match.SizeThreshold)
	fmt.Fprintf(w, "设备类型: %s\n", a.cfg.Device.Kind)

	switch a.cfg.Device.Kind {
	case config.DeviceDesktop:
		width, height := desktop.ScreenSize()
		p := desktop.CheckPermissions()
		fmt.Fprintf(w, "显示器:   %d 个, 主显示器 %dx%d\n", desktop.DisplayCount(), width, height)
		fmt.Fprintf(w, "权限:     辅助功能 %v, 屏幕录制 %v\n", p.Accessibility, p.ScreenRecording)
	default:
		path, err := adb.LookPath(a.cfg.Device.AdbPath)
		if err != nil {
			fmt.Fprintf(w, "adb:      %v\n", err)
			return nil
		}
		fmt.Fprintf(w, "adb:      %s\n", path)
		if pids, err := adb.ServerPIDs(ctx); err == nil {
			fmt.Fprintf(w, "adb 进程: %v\n", pids)
		}
		devices, err := adb.New(path, adb.WithLogger(a.log.Named("adb"))).Devices(ctx)
		if err != nil {
			fmt.Fprintf(w, "设备列表: %v\n", err)
			return nil
		}
		fmt.Fprintf(w, "设备列表: %s\n", strings.Join(devices, ", "))
	}
	return nil
}

// cmdInit 写入当前生效的配置
func (a *app) cmdInit(ctx context.Context, args []string) error {
	fs := a.flagSet("init")
	force := fs.Bool("force", false, "覆盖已存在的配置文件")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if a.manager.Exists() && !*force {
		return fmt.Errorf("配置文件 %s 已存在，使用 -force 覆盖", a.manager.GetConfigFile())
	}
	if err := a.manager.Save(a.cfg); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "配置已保存到 %s\n", a.manager.GetConfigFile())
	return nil
}

func (a *app) printResult(res cv.MatchResult, asJSON bool) error {
	if asJSON {
		return a.printJSON(res)
	}
	fmt.Fprintf(a.stdout, "center=%d,%d confidence=%.4f scale=%.2f time=%.1fms\n",
		res.Result.X, res.Result.Y, res.Confidence, res.Scale, res.Time)
	return nil
}

func (a *app) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, string(data))
	return nil
}

// templateName 取文件名（不含扩展名）作为模板名
func templateName(path string) string {
	name := path
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name
}

// parsePoint 解析 "x,y"
func parsePoint(s string) (cv.Point, error) {
	v, err := parseInts(s, 2)
	if err != nil {
		return cv.Point{}, err
	}
	return cv.NewPoint(v[0], v[1]), nil
}

// parseRegion 解析 "x,y,w,h"，空字符串返回 nil
func parseRegion(s string) (*auto.Region, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	v, err := parseInts(s, 4)
	if err != nil {
		return nil, err
	}
	if v[2] <= 0 || v[3] <= 0 {
		return nil, fmt.Errorf("区域宽高必须大于 0: %q", s)
	}
	return &auto.Region{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

func parseInts(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("需要 %d 个以逗号分隔的整数: %q", n, s)
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("无效的整数 %q", p)
		}
		out[i] = v
	}
	return out, nil
}
