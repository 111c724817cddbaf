package automation

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/pluxuryv8/astra-bridge/internal/platform"
)

const defaultScrollAmount = 3

// BatchResponse is the outcome of a computer batch. Results[i] belongs to
// the i-th submitted action.
type BatchResponse struct {
	Summary string   `json:"summary"`
	Results []string `json:"results"`
}

// BatchSummary is the summary line reported for a batch of n actions.
func BatchSummary(n int) string {
	return fmt.Sprintf("%d actions", n)
}

// ExecuteBatch runs actions in submission order. A failing action records
// "error: ..." in its slot and execution continues with the next one. The
// error return is only set when automation is unavailable.
func (s *Service) ExecuteBatch(ctx context.Context, actions []platform.ComputerAction) (BatchResponse, error) {
	inp, err := s.inputter()
	if err != nil {
		return BatchResponse{}, err
	}

	results := make([]string, 0, len(actions))
	for i, a := range actions {
		out, err := s.runComputerAction(ctx, inp, a)
		if err != nil {
			s.logger.Debug("computer action failed", "index", i, "action", a.Action, "error", err)
			results = append(results, "error: "+err.Error())
			continue
		}
		results = append(results, out)
	}
	return BatchResponse{Summary: BatchSummary(len(actions)), Results: results}, nil
}

func (s *Service) runComputerAction(ctx context.Context, inp platform.Inputter, a platform.ComputerAction) (string, error) {
	if a.Action == platform.ActionScreenshot {
		// Capture is not thread-bound; keep it off the main loop.
		return s.screenshotAction(a)
	}
	var out string
	err := s.exec.Do(ctx, func(context.Context) error {
		var err error
		out, err = performComputerAction(inp, a)
		return err
	})
	return out, err
}

func performComputerAction(inp platform.Inputter, a platform.ComputerAction) (string, error) {
	switch a.Action {
	case platform.ActionMove, platform.ActionMouseMove:
		if a.Coordinate == nil {
			return "", fmt.Errorf("%s requires coordinate", a.Action)
		}
		return "", inp.MoveMouse(a.Coordinate[0], a.Coordinate[1])

	case platform.ActionLeftClick, platform.ActionRightClick, platform.ActionMiddleClick, platform.ActionDoubleClick:
		button, count := clickParams(a.Action)
		x, y, err := pointOrCursor(inp, a.Coordinate)
		if err != nil {
			return "", err
		}
		return "", inp.Click(x, y, button, count)

	case platform.ActionLeftClickDrag:
		if a.Coordinate == nil {
			return "", fmt.Errorf("%s requires coordinate", a.Action)
		}
		fromX, fromY, err := pointOrCursor(inp, a.StartCoordinate)
		if err != nil {
			return "", err
		}
		return "", inp.Drag(fromX, fromY, a.Coordinate[0], a.Coordinate[1])

	case platform.ActionType:
		if a.Text == nil {
			return "", fmt.Errorf("%s requires text", a.Action)
		}
		return "", inp.TypeText(*a.Text)

	case platform.ActionKey:
		if a.Key == nil {
			return "", fmt.Errorf("%s requires key", a.Action)
		}
		keys := platform.SplitKeyCombo(*a.Key)
		if len(keys) == 0 {
			return "", fmt.Errorf("empty key combo")
		}
		return "", inp.KeyCombo(keys)

	case platform.ActionScroll:
		dx, dy, err := scrollDelta(a.ScrollDirection, a.ScrollAmount)
		if err != nil {
			return "", err
		}
		x, y := 0, 0
		if a.Coordinate != nil {
			x, y = a.Coordinate[0], a.Coordinate[1]
		}
		return "", inp.Scroll(x, y, dx, dy)

	case platform.ActionCursorPosition:
		x, y, err := inp.CursorPosition()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d,%d", x, y), nil

	default:
		return "", fmt.Errorf("unknown action %q", a.Action)
	}
}

func clickParams(action string) (platform.MouseButton, int) {
	switch action {
	case platform.ActionRightClick:
		return platform.MouseRight, 1
	case platform.ActionMiddleClick:
		return platform.MouseMiddle, 1
	case platform.ActionDoubleClick:
		return platform.MouseLeft, 2
	default:
		return platform.MouseLeft, 1
	}
}

// pointOrCursor returns p, or the current cursor position when p is nil.
func pointOrCursor(inp platform.Inputter, p *[2]int) (int, int, error) {
	if p != nil {
		return p[0], p[1], nil
	}
	x, y, err := inp.CursorPosition()
	if err != nil {
		return 0, 0, fmt.Errorf("no coordinate given and cursor position unknown: %w", err)
	}
	return x, y, nil
}

// scrollDelta converts a direction and amount into inputter deltas, where
// positive dy scrolls up and positive dx scrolls left.
func scrollDelta(direction *string, amount *int) (int, int, error) {
	dir := "down"
	if direction != nil {
		dir = strings.ToLower(strings.TrimSpace(*direction))
	}
	n := defaultScrollAmount
	if amount != nil {
		n = *amount
	}
	if n < 0 {
		return 0, 0, fmt.Errorf("scroll_amount must not be negative, got %d", n)
	}
	switch dir {
	case "up":
		return 0, n, nil
	case "down":
		return 0, -n, nil
	case "left":
		return n, 0, nil
	case "right":
		return -n, 0, nil
	default:
		return 0, 0, fmt.Errorf("unknown scroll_direction %q (expected up, down, left, or right)", dir)
	}
}

// screenshotAction captures the screen, optionally cropped to a region given
// in screen points, and returns it as base64 PNG.
func (s *Service) screenshotAction(a platform.ComputerAction) (string, error) {
	shot, err := s.screenshotter()
	if err != nil {
		return "", err
	}
	img, err := shot.CaptureScreen()
	if err != nil {
		return "", err
	}
	if a.Region != nil {
		b, err := platform.BoundsFromRegion(*a.Region)
		if err != nil {
			return "", err
		}
		sw, _, err := shot.ScreenSize()
		if err != nil {
			return "", err
		}
		img, err = cropPoints(img, b, sw)
		if err != nil {
			return "", err
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode screenshot: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// cropPoints crops img to b, converting points to pixels using the ratio of
// the image width to the screen width in points.
func cropPoints(img image.Image, b platform.Bounds, screenWidth int) (image.Image, error) {
	ib := img.Bounds()
	scale := 1.0
	if screenWidth > 0 {
		scale = float64(ib.Dx()) / float64(screenWidth)
	}
	r := image.Rect(
		int(float64(b.X)*scale), int(float64(b.Y)*scale),
		int(float64(b.X+b.Width)*scale), int(float64(b.Y+b.Height)*scale),
	).Add(ib.Min).Intersect(ib)
	if r.Empty() {
		return nil, fmt.Errorf("region %+v lies outside the screen", b)
	}
	si, ok := img.(subImager)
	if !ok {
		si = imageToRGBA(img)
	}
	return si.SubImage(r), nil
}
