//go:build darwin && cgo

package darwin

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework ApplicationServices -framework Foundation -framework Carbon
#include <CoreGraphics/CoreGraphics.h>
#include <Carbon/Carbon.h>
#include <unistd.h>

static int post_mouse(CGEventType type, CGPoint p, CGMouseButton button, int clickState) {
    CGEventRef ev = CGEventCreateMouseEvent(NULL, type, p, button);
    if (!ev) return -1;
    if (clickState > 0) {
        CGEventSetIntegerValueField(ev, kCGMouseEventClickState, clickState);
    }
    CGEventPost(kCGHIDEventTap, ev);
    CFRelease(ev);
    return 0;
}

// button: 0=left, 1=right, 2=middle.
static int ab_click(double x, double y, int button, int count) {
    CGPoint p = CGPointMake(x, y);
    CGEventType down = kCGEventLeftMouseDown, up = kCGEventLeftMouseUp;
    CGMouseButton b = kCGMouseButtonLeft;
    if (button == 1) {
        down = kCGEventRightMouseDown; up = kCGEventRightMouseUp; b = kCGMouseButtonRight;
    } else if (button == 2) {
        down = kCGEventOtherMouseDown; up = kCGEventOtherMouseUp; b = kCGMouseButtonCenter;
    }
    for (int i = 1; i <= count; i++) {
        if (post_mouse(down, p, b, i) != 0) return -1;
        if (post_mouse(up, p, b, i) != 0) return -1;
    }
    return 0;
}

static int ab_move(double x, double y) {
    return post_mouse(kCGEventMouseMoved, CGPointMake(x, y), kCGMouseButtonLeft, 0);
}

static int ab_cursor(double *x, double *y) {
    CGEventRef ev = CGEventCreate(NULL);
    if (!ev) return -1;
    CGPoint p = CGEventGetLocation(ev);
    CFRelease(ev);
    *x = p.x;
    *y = p.y;
    return 0;
}

// Posts one character given as UTF-16 code units (two for surrogate pairs).
static int ab_type_units(UniChar *units, int n) {
    CGEventRef down = CGEventCreateKeyboardEvent(NULL, 0, true);
    CGEventRef up = CGEventCreateKeyboardEvent(NULL, 0, false);
    if (!down || !up) {
        if (down) CFRelease(down);
        if (up) CFRelease(up);
        return -1;
    }
    CGEventKeyboardSetUnicodeString(down, n, units);
    CGEventKeyboardSetUnicodeString(up, n, units);
    CGEventPost(kCGHIDEventTap, down);
    CGEventPost(kCGHIDEventTap, up);
    CFRelease(down);
    CFRelease(up);
    return 0;
}

static int ab_key(CGKeyCode code, CGEventFlags flags) {
    CGEventRef down = CGEventCreateKeyboardEvent(NULL, code, true);
    CGEventRef up = CGEventCreateKeyboardEvent(NULL, code, false);
    if (!down || !up) {
        if (down) CFRelease(down);
        if (up) CFRelease(up);
        return -1;
    }
    CGEventSetFlags(down, flags);
    CGEventSetFlags(up, flags);
    CGEventPost(kCGHIDEventTap, down);
    CGEventPost(kCGHIDEventTap, up);
    CFRelease(down);
    CFRelease(up);
    return 0;
}

// Line-unit wheel event. Positive dy scrolls up, positive dx scrolls left.
static int ab_scroll(int dy, int dx) {
    CGEventRef ev = CGEventCreateScrollWheelEvent(NULL, kCGScrollEventUnitLine, 2, dy, dx);
    if (!ev) return -1;
    CGEventPost(kCGHIDEventTap, ev);
    CFRelease(ev);
    return 0;
}

// Left-button drag interpolated over steps events, stepUs microseconds apart.
// The button is always released, even when an intermediate event fails.
static int ab_drag(double fx, double fy, double tx, double ty, int steps, int stepUs) {
    CGPoint start = CGPointMake(fx, fy);
    if (post_mouse(kCGEventMouseMoved, start, kCGMouseButtonLeft, 0) != 0) return -1;
    usleep(10000);
    if (post_mouse(kCGEventLeftMouseDown, start, kCGMouseButtonLeft, 1) != 0) return -1;

    CGPoint p = start;
    int rc = 0;
    for (int i = 1; i <= steps; i++) {
        double t = (double)i / (double)steps;
        p = CGPointMake(fx + (tx - fx) * t, fy + (ty - fy) * t);
        if (post_mouse(kCGEventLeftMouseDragged, p, kCGMouseButtonLeft, 0) != 0) {
            rc = -1;
            break;
        }
        usleep(stepUs);
    }
    if (post_mouse(kCGEventLeftMouseUp, p, kCGMouseButtonLeft, 1) != 0) return -1;
    return rc;
}
*/
import "C"

import (
	"fmt"
	"time"
	"unicode/utf16"

	"github.com/pluxuryv8/astra-bridge/internal/platform"
)

const (
	dragSteps    = 20
	dragDuration = 100 * time.Millisecond
	settleDelay  = 10 * time.Millisecond
)

// DarwinInputter posts CoreGraphics events to the HID event tap. Calls must
// be made from the main thread.
type DarwinInputter struct{}

// NewInputter creates a new macOS inputter.
func NewInputter() *DarwinInputter {
	return &DarwinInputter{}
}

func (inp *DarwinInputter) Click(x, y int, button platform.MouseButton, count int) error {
	if count < 1 {
		count = 1
	}
	if C.ab_click(C.double(x), C.double(y), C.int(button), C.int(count)) != 0 {
		return fmt.Errorf("failed to click at (%d, %d)", x, y)
	}
	return nil
}

func (inp *DarwinInputter) MoveMouse(x, y int) error {
	if C.ab_move(C.double(x), C.double(y)) != 0 {
		return fmt.Errorf("failed to move mouse to (%d, %d)", x, y)
	}
	return nil
}

// Scroll moves the pointer to (x, y) and scrolls there.
func (inp *DarwinInputter) Scroll(x, y int, dx, dy int) error {
	if err := inp.MoveMouse(x, y); err != nil {
		return err
	}
	time.Sleep(settleDelay)
	if C.ab_scroll(C.int(dy), C.int(dx)) != 0 {
		return fmt.Errorf("failed to scroll at (%d, %d)", x, y)
	}
	return nil
}

func (inp *DarwinInputter) Drag(fromX, fromY, toX, toY int) error {
	stepUs := C.int(dragDuration.Microseconds() / dragSteps)
	if C.ab_drag(C.double(fromX), C.double(fromY), C.double(toX), C.double(toY), dragSteps, stepUs) != 0 {
		return fmt.Errorf("failed to drag from (%d,%d) to (%d,%d)", fromX, fromY, toX, toY)
	}
	return nil
}

func (inp *DarwinInputter) CursorPosition() (int, int, error) {
	var x, y C.double
	if C.ab_cursor(&x, &y) != 0 {
		return 0, 0, fmt.Errorf("failed to read cursor position")
	}
	return int(x), int(y), nil
}

// TypeText posts text one character at a time as Unicode keyboard events, so
// the active keyboard layout does not matter.
func (inp *DarwinInputter) TypeText(text string) error {
	var units [2]C.UniChar
	for i, r := range []rune(text) {
		n := 0
		for _, u := range utf16.Encode([]rune{r}) {
			units[n] = C.UniChar(u)
			n++
		}
		if C.ab_type_units(&units[0], C.int(n)) != 0 {
			return fmt.Errorf("failed to type character %d of %d", i+1, len([]rune(text)))
		}
	}
	return nil
}

func (inp *DarwinInputter) KeyCombo(keys []string) error {
	ks, err := parseKeyCombo(keys)
	if err != nil {
		return err
	}
	if C.ab_key(C.CGKeyCode(ks.Code), C.CGEventFlags(ks.Flags)) != 0 {
		return fmt.Errorf("failed to press %q", keys)
	}
	return nil
}
