package platform

import "image"

// Inputter simulates mouse and keyboard input. Coordinates are screen points.
type Inputter interface {
	Click(x, y int, button MouseButton, count int) error
	MoveMouse(x, y int) error
	Scroll(x, y int, dx, dy int) error
	Drag(fromX, fromY, toX, toY int) error
	TypeText(text string) error
	KeyCombo(keys []string) error
	CursorPosition() (int, int, error)
}

// Screenshotter captures the main display.
type Screenshotter interface {
	// CaptureScreen returns the main display at native pixel resolution.
	CaptureScreen() (image.Image, error)

	// ScreenSize returns the main display size in screen points, the
	// coordinate space Inputter works in.
	ScreenSize() (width, height int, err error)
}

// PermissionChecker performs best-effort OS grant checks. A nil error means
// the underlying facility could be instantiated.
type PermissionChecker interface {
	ScreenRecording() error
	Accessibility() error
}
