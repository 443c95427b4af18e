//go:build !darwin

package desktop

// CheckPermissions 非 macOS 系统不需要额外授权
func CheckPermissions() Permissions {
	return Permissions{Accessibility: true, ScreenRecording: true}
}

// OpenSettings 非 macOS 系统为空实现
func OpenSettings(Permissions) {}
