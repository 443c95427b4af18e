// screenmatch 在截图中查找模板图像，等待其出现并点击
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/zoeyai/screenmatch/internal/logger"
	"github.com/zoeyai/screenmatch/pkg/auto"
	"github.com/zoeyai/screenmatch/pkg/config"
)

// 版本信息 (可通过 ldflags 注入)
var (
	Version   = "0.3.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// 退出码
const (
	exitOK       = 0
	exitError    = 1
	exitUsage    = 2
	exitNotFound = 3
)

// errUsage 参数错误，打印子命令帮助
var errUsage = errors.New("参数错误")

type command struct {
	summary string
	run     func(a *app, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"match": {"在截图文件中查找模板", (*app).cmdMatch},
	"wait":  {"等待模板出现在设备画面上", (*app).cmdWait},
	"click": {"等待模板出现后点击", (*app).cmdClick},
	"serve": {"启动 gRPC 匹配服务", (*app).cmdServe},
	"info":  {"显示系统、设备和配置信息", (*app).cmdInfo},
	"init":  {"写入默认配置文件", (*app).cmdInit},
}

// app 子命令共享的运行环境
type app struct {
	cfg     *config.Config
	manager *config.Manager
	log     *logger.Logger
	stdout  io.Writer
	stderr  io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("screenmatch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath  = fs.String("config", "", "配置文件路径 (.json/.yaml)，默认 ~/.screenmatch/config.json")
		logLevel    = fs.String("log-level", "", "日志级别 DEBUG|INFO|WARN|ERROR")
		showVersion = fs.Bool("version", false, "显示版本信息")
	)
	fs.Usage = func() { printHelp(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if *showVersion {
		printVersion(stdout)
		return exitOK
	}
	if fs.NArg() == 0 {
		printHelp(stderr, fs)
		return exitUsage
	}
	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "[ERROR] 未知命令: %s\n\n", name)
		printHelp(stderr, fs)
		return exitUsage
	}

	manager := config.NewManager()
	if *configPath != "" {
		manager = config.NewManagerWithFile(*configPath)
	}
	cfg, err := manager.Load()
	if err != nil {
		fmt.Fprintf(stderr, "[ERROR] 加载配置失败: %v\n", err)
		return exitError
	}
	// 命令行参数优先级高于配置文件
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	log := logger.NewWithWriter(stderr)
	if err := log.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		fmt.Fprintf(stderr, "[WARN] %v\n", err)
	}
	defer log.Close()

	a := &app{cfg: cfg, manager: manager, log: log, stdout: stdout, stderr: stderr}
	err = cmd.run(a, ctx, fs.Args()[1:])
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "[ERROR] %v\n", err)
		return exitUsage
	case errors.Is(err, auto.ErrWaitCanceled):
		fmt.Fprintf(stderr, "[ERROR] %v\n", err)
		return exitNotFound
	default:
		fmt.Fprintf(stderr, "[ERROR] %v\n", err)
		return exitError
	}
}

// printVersion 打印版本信息
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "screenmatch v%s\n", Version)
	fmt.Fprintf(w, "Build Time: %s\n", BuildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", GitCommit)
}

// printHelp 打印帮助信息
func printHelp(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "screenmatch - 屏幕模板匹配工具")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "用法:")
	fmt.Fprintln(w, "  screenmatch [全局选项] <命令> [选项]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "命令:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-8s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "全局选项:")
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "示例:")
	fmt.Fprintln(w, "  screenmatch match -source screen.png -template button.png")
	fmt.Fprintln(w, "  screenmatch -config bot.yaml wait -template button.png -timeout 10s")
	fmt.Fprintln(w, "  screenmatch click -template button.png -grid 2.2.1.1")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "退出码: 0 成功, 1 错误, 2 参数错误, 3 等待超时")
}
