package desktop

import "strings"

// Permissions 本地截屏与鼠标控制所需的系统权限
type Permissions struct {
	Accessibility   bool `json:"accessibility"`
	ScreenRecording bool `json:"screen_recording"`
}

// Granted 两项权限都已授予
func (p Permissions) Granted() bool {
	return p.Accessibility && p.ScreenRecording
}

// Instructions 缺少权限时的提示文本，全部授予时为空
func (p Permissions) Instructions() string {
	if p.Granted() {
		return ""
	}
	var b strings.Builder
	b.WriteString("需要授权以下权限:\n")
	if !p.ScreenRecording {
		b.WriteString("  屏幕录制 (用于截屏): 系统设置 > 隐私与安全性 > 屏幕录制\n")
	}
	if !p.Accessibility {
		b.WriteString("  辅助功能 (用于点击): 系统设置 > 隐私与安全性 > 辅助功能\n")
	}
	b.WriteString("授权后需要重启应用才能生效。")
	return b.String()
}
