//go:build darwin && cgo

package darwin

/*
#cgo LDFLAGS: -framework CoreGraphics
#include <CoreGraphics/CoreGraphics.h>

static void main_display_size(int *w, int *h) {
    CGRect r = CGDisplayBounds(CGMainDisplayID());
    *w = (int)r.size.width;
    *h = (int)r.size.height;
}
*/
import "C"
import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
)

// DarwinScreenshotter implements platform.Screenshotter for macOS.
type DarwinScreenshotter struct {
	// Command is the screencapture binary; overridable for tests.
	Command string
}

// NewScreenshotter creates a new macOS screenshotter.
func NewScreenshotter() *DarwinScreenshotter {
	return &DarwinScreenshotter{Command: "/usr/sbin/screencapture"}
}

// CaptureScreen captures the main display at native resolution.
func (s *DarwinScreenshotter) CaptureScreen() (image.Image, error) {
	f, err := os.CreateTemp("", "astra-capture-*.png")
	if err != nil {
		return nil, fmt.Errorf("create capture file: %w", err)
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	// -x: no sound, -m: main display only.
	out, err := exec.Command(s.Command, "-x", "-m", "-t", "png", path).CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("screencapture failed (check Screen Recording permission in System Settings > Privacy & Security > Screen Recording): %w: %s", err, bytes.TrimSpace(out))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read capture: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("screencapture produced an empty image (screen recording permission denied?)")
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode capture: %w", err)
	}
	return img, nil
}

// ScreenSize returns the main display bounds in points.
func (s *DarwinScreenshotter) ScreenSize() (int, int, error) {
	var w, h C.int
	C.main_display_size(&w, &h)
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("main display has no size")
	}
	return int(w), int(h), nil
}
