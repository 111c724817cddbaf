package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pluxuryv8/astra-bridge/internal/mainthread"
	"github.com/pluxuryv8/astra-bridge/internal/platform"
)

const defaultWaitMS = 500

// ErrInvalidImageSize is returned when an autopilot action references an
// image with a zero or negative dimension.
var ErrInvalidImageSize = errors.New("image_width and image_height must be positive")

// scaler maps image-space coordinates to screen points.
type scaler struct {
	imageW, imageH   int
	screenW, screenH int
}

func (m scaler) point(x, y int) (int, int) {
	sx := int(math.Round(float64(x) * float64(m.screenW) / float64(m.imageW)))
	sy := int(math.Round(float64(y) * float64(m.screenH) / float64(m.imageH)))
	return clamp(sx, 0, m.screenW-1), clamp(sy, 0, m.screenH-1)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

// ExecuteAutopilot performs one action whose coordinates refer to a captured
// image of imageW x imageH pixels, and returns a short summary of what was
// done in screen coordinates. OS work runs through the main-thread executor.
func (s *Service) ExecuteAutopilot(ctx context.Context, a platform.AutopilotAction, imageW, imageH int) (string, error) {
	inp, err := s.inputter()
	if err != nil {
		return "", err
	}
	shot, err := s.screenshotter()
	if err != nil {
		return "", err
	}
	if imageW <= 0 || imageH <= 0 {
		return "", ErrInvalidImageSize
	}

	switch a.Type {
	case platform.AutopilotDone:
		return "done", nil
	case platform.AutopilotWait:
		ms := a.MS
		if ms <= 0 {
			ms = defaultWaitMS
		}
		t := time.NewTimer(time.Duration(ms) * time.Millisecond)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		return fmt.Sprintf("wait(%d)", ms), nil
	}

	return mainthread.Call(ctx, s.exec, func(context.Context) (string, error) {
		sw, sh, err := shot.ScreenSize()
		if err != nil {
			return "", fmt.Errorf("screen size: %w", err)
		}
		return performAutopilot(inp, a, scaler{imageW: imageW, imageH: imageH, screenW: sw, screenH: sh})
	})
}

func performAutopilot(inp platform.Inputter, a platform.AutopilotAction, m scaler) (string, error) {
	switch a.Type {
	case platform.AutopilotMoveMouse, platform.AutopilotClick, platform.AutopilotDoubleClick:
		if a.X == nil || a.Y == nil {
			return "", fmt.Errorf("%s requires x and y", a.Type)
		}
		x, y := m.point(*a.X, *a.Y)
		if a.Type == platform.AutopilotMoveMouse {
			if err := inp.MoveMouse(x, y); err != nil {
				return "", err
			}
			return fmt.Sprintf("move_mouse(%d,%d)", x, y), nil
		}
		button, err := platform.ParseMouseButton(a.Button)
		if err != nil {
			return "", err
		}
		count := 1
		if a.Type == platform.AutopilotDoubleClick {
			count = 2
		}
		if err := inp.Click(x, y, button, count); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%d,%d)", a.Type, x, y), nil

	case platform.AutopilotDrag:
		if a.StartX == nil || a.StartY == nil || a.EndX == nil || a.EndY == nil {
			return "", fmt.Errorf("drag requires start_x, start_y, end_x and end_y")
		}
		fx, fy := m.point(*a.StartX, *a.StartY)
		tx, ty := m.point(*a.EndX, *a.EndY)
		if err := inp.Drag(fx, fy, tx, ty); err != nil {
			return "", err
		}
		return fmt.Sprintf("drag(%d,%d)->(%d,%d)", fx, fy, tx, ty), nil

	case platform.AutopilotType:
		if a.Text == "" {
			return "", fmt.Errorf("type requires text")
		}
		if err := inp.TypeText(a.Text); err != nil {
			return "", err
		}
		return fmt.Sprintf("type:%d chars", len([]rune(a.Text))), nil

	case platform.AutopilotKey:
		if len(a.Keys) == 0 {
			return "", fmt.Errorf("key requires keys")
		}
		if err := inp.KeyCombo(a.Keys); err != nil {
			return "", err
		}
		return "key:" + strings.Join(a.Keys, "+"), nil

	case platform.AutopilotScroll:
		x, y := 0, 0
		if a.X != nil && a.Y != nil {
			x, y = m.point(*a.X, *a.Y)
		}
		// dy follows screen orientation: positive scrolls down.
		if err := inp.Scroll(x, y, 0, -a.DY); err != nil {
			return "", err
		}
		return fmt.Sprintf("scroll(%d)", a.DY), nil

	default:
		return "", fmt.Errorf("unknown autopilot action %q", a.Type)
	}
}
