//go:build darwin

package desktop

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa -framework ApplicationServices -framework CoreGraphics
#include <stdlib.h>
#import <Cocoa/Cocoa.h>
#import <ApplicationServices/ApplicationServices.h>
#import <CoreGraphics/CoreGraphics.h>

int smAccessibilityTrusted() {
    NSDictionary *options = @{(__bridge NSString *)kAXTrustedCheckOptionPrompt: @NO};
    return AXIsProcessTrustedWithOptions((__bridge CFDictionaryRef)options) ? 1 : 0;
}

// 无录屏权限时其他应用的窗口标题不可见
int smScreenRecordingGranted() {
    if (@available(macOS 10.15, *)) {
        CFArrayRef windows = CGWindowListCopyWindowInfo(
            kCGWindowListOptionOnScreenOnly | kCGWindowListExcludeDesktopElements,
            kCGNullWindowID
        );
        if (windows == NULL) {
            return 0;
        }
        CFIndex count = CFArrayGetCount(windows);
        int named = 0;
        for (CFIndex i = 0; i < count; i++) {
            CFDictionaryRef w = (CFDictionaryRef)CFArrayGetValueAtIndex(windows, i);
            CFStringRef name = (CFStringRef)CFDictionaryGetValue(w, kCGWindowName);
            if (name != NULL && CFStringGetLength(name) > 0) {
                named = 1;
                break;
            }
        }
        CFRelease(windows);
        return (count == 0 || named) ? 1 : 0;
    }
    return 1;
}

void smOpenPrivacyPane(const char *anchor) {
    NSString *url = [NSString stringWithFormat:@"x-apple.systempreferences:com.apple.preference.security?%s", anchor];
    [[NSWorkspace sharedWorkspace] openURL:[NSURL URLWithString:url]];
}
*/
import "C"

import "unsafe"

// CheckPermissions 检查截屏和点击所需的系统权限，不触发弹窗
func CheckPermissions() Permissions {
	return Permissions{
		Accessibility:   C.smAccessibilityTrusted() == 1,
		ScreenRecording: C.smScreenRecordingGranted() == 1,
	}
}

// OpenSettings 打开缺失权限对应的系统设置页
func OpenSettings(p Permissions) {
	open := func(anchor string) {
		cs := C.CString(anchor)
		defer C.free(unsafe.Pointer(cs))
		C.smOpenPrivacyPane(cs)
	}
	if !p.ScreenRecording {
		open("Privacy_ScreenCapture")
	}
	if !p.Accessibility {
		open("Privacy_Accessibility")
	}
}
