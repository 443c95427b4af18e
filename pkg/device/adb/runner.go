package adb

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Result 命令执行结果
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner 执行外部命令
// 命令无法启动时返回 error；命令已运行但退出码非零时返回 Result 和 nil
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner 基于 os/exec 的 Runner
type ExecRunner struct{}

// Run 执行命令并收集输出
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	hideWindow(cmd)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, err
}
