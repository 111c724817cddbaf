package automation

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/pluxuryv8/astra-bridge/internal/platform"
)

// fakeInputter records every call as a compact string.
type fakeInputter struct {
	calls   []string
	cursorX int
	cursorY int
	failOn  string
	panicOn string
}

func (f *fakeInputter) record(call string) error {
	f.calls = append(f.calls, call)
	name := call[:strings.IndexByte(call, '(')]
	if f.panicOn == name {
		panic("fake inputter panic in " + name)
	}
	if f.failOn == name {
		return errors.New(name + " failed")
	}
	return nil
}

func (f *fakeInputter) Click(x, y int, button platform.MouseButton, count int) error {
	return f.record(fmt.Sprintf("click(%d,%d,%d,%d)", x, y, button, count))
}

func (f *fakeInputter) MoveMouse(x, y int) error {
	return f.record(fmt.Sprintf("move(%d,%d)", x, y))
}

func (f *fakeInputter) Scroll(x, y, dx, dy int) error {
	return f.record(fmt.Sprintf("scroll(%d,%d,%d,%d)", x, y, dx, dy))
}

func (f *fakeInputter) Drag(fromX, fromY, toX, toY int) error {
	return f.record(fmt.Sprintf("drag(%d,%d,%d,%d)", fromX, fromY, toX, toY))
}

func (f *fakeInputter) TypeText(text string) error {
	return f.record(fmt.Sprintf("type(%s)", text))
}

func (f *fakeInputter) KeyCombo(keys []string) error {
	return f.record(fmt.Sprintf("key(%s)", strings.Join(keys, "+")))
}

func (f *fakeInputter) CursorPosition() (int, int, error) {
	if err := f.record("cursor()"); err != nil {
		return 0, 0, err
	}
	return f.cursorX, f.cursorY, nil
}

// fakeScreen serves a solid image of imgW x imgH pixels for a screen of
// screenW x screenH points.
type fakeScreen struct {
	imgW, imgH       int
	screenW, screenH int
	err              error
}

func (f *fakeScreen) CaptureScreen() (image.Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	img := image.NewRGBA(image.Rect(0, 0, f.imgW, f.imgH))
	for y := 0; y < f.imgH; y++ {
		for x := 0; x < f.imgW; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img, nil
}

func (f *fakeScreen) ScreenSize() (int, int, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	return f.screenW, f.screenH, nil
}

func newFakeService(inp *fakeInputter, screen *fakeScreen) *Service {
	p := &platform.Provider{Inputter: inp}
	if screen != nil {
		p.Screenshotter = screen
	}
	return New(p, nil, Options{ShellEnabled: true})
}

func ptr[T any](v T) *T { return &v }
