package device

import (
	"fmt"
	"strings"
)

// InvocationError 外部命令无法启动
type InvocationError struct {
	Command string
	Err     error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("无法执行命令 %q: %v", e.Command, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// ExecutionError 外部命令返回非零退出码
type ExecutionError struct {
	Command string
	// Code 退出码，被信号终止时为 -1
	Code   int
	Stdout string
	Stderr string
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("命令 %q 执行失败，退出码 %d", e.Command, e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// DecodeError 截图数据无法解码为图像
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("截图解码失败: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// CaptureError 本地截图失败
type CaptureError struct {
	Backend string
	Err     error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("%s 截屏失败: %v", e.Backend, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }
