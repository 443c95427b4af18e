package adb

import (
	"os/exec"
	"syscall"
)

// hideWindow 不为 adb 子进程弹出控制台窗口
func hideWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
}
