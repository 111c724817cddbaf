//go:build darwin && cgo

package darwin

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework CoreGraphics -framework Foundation
#include <ApplicationServices/ApplicationServices.h>
#include <CoreGraphics/CoreGraphics.h>

static int is_trusted() {
    return AXIsProcessTrusted();
}

// Enumerating displays fails or yields nothing when the process is not
// allowed to see the screen.
static int active_display_count() {
    uint32_t count = 0;
    if (CGGetActiveDisplayList(0, NULL, &count) != kCGErrorSuccess) {
        return -1;
    }
    return (int)count;
}

static int can_create_event_source() {
    CGEventSourceRef src = CGEventSourceCreate(kCGEventSourceStateHIDSystemState);
    if (!src) return 0;
    CFRelease(src);
    return 1;
}
*/
import "C"
import "errors"

var (
	errNoDisplays = errors.New(
		"screen recording permission required: no displays could be enumerated\n" +
			"Grant permission at: System Settings > Privacy & Security > Screen Recording")
	errNotTrusted = errors.New(
		"accessibility permission required\n" +
			"Grant permission at: System Settings > Privacy & Security > Accessibility")
	errNoEventSource = errors.New("could not create an input event source")
)

// DarwinPermissionChecker implements platform.PermissionChecker for macOS.
type DarwinPermissionChecker struct{}

// NewPermissionChecker creates a new macOS permission checker.
func NewPermissionChecker() *DarwinPermissionChecker {
	return &DarwinPermissionChecker{}
}

func (DarwinPermissionChecker) ScreenRecording() error {
	if C.active_display_count() <= 0 {
		return errNoDisplays
	}
	return nil
}

func (DarwinPermissionChecker) Accessibility() error {
	if C.can_create_event_source() == 0 {
		return errNoEventSource
	}
	if C.is_trusted() == 0 {
		return errNotTrusted
	}
	return nil
}
