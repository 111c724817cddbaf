package platform

import (
	"fmt"
	"strings"
)

// MouseButton represents a mouse button.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

// ParseMouseButton converts a button name to MouseButton. An empty name is the left button.
func ParseMouseButton(s string) (MouseButton, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "left":
		return MouseLeft, nil
	case "right":
		return MouseRight, nil
	case "middle":
		return MouseMiddle, nil
	default:
		return MouseLeft, fmt.Errorf("unknown mouse button: %q (expected left, right, or middle)", s)
	}
}

// Bounds represents a screen rectangle.
type Bounds struct {
	X, Y, Width, Height int
}

// BoundsFromRegion converts an [x, y, w, h] region into Bounds.
func BoundsFromRegion(r [4]int) (Bounds, error) {
	if r[2] <= 0 || r[3] <= 0 {
		return Bounds{}, fmt.Errorf("invalid region %v: width and height must be positive", r)
	}
	return Bounds{X: r[0], Y: r[1], Width: r[2], Height: r[3]}, nil
}

// SplitKeyCombo splits a combo such as "cmd+shift+t" into its key names.
// A trailing "+" names the plus key itself ("cmd++").
func SplitKeyCombo(combo string) []string {
	combo = strings.TrimSpace(combo)
	if combo == "" {
		return nil
	}
	var keys []string
	plus := false
	if strings.HasSuffix(combo, "++") || combo == "+" {
		plus = true
		combo = strings.TrimSuffix(strings.TrimSuffix(combo, "+"), "+")
	}
	for _, k := range strings.Split(combo, "+") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if plus {
		keys = append(keys, "+")
	}
	return keys
}

// Computer action kinds accepted in a batch.
const (
	ActionMouseMove      = "mouse_move"
	ActionMove           = "move"
	ActionLeftClick      = "left_click"
	ActionRightClick     = "right_click"
	ActionMiddleClick    = "middle_click"
	ActionDoubleClick    = "double_click"
	ActionLeftClickDrag  = "left_click_drag"
	ActionType           = "type"
	ActionKey            = "key"
	ActionScroll         = "scroll"
	ActionScreenshot     = "screenshot"
	ActionCursorPosition = "cursor_position"
)

// ComputerAction is one entry of a /computer batch. Action selects which of
// the optional fields are read; the rest are ignored.
type ComputerAction struct {
	Action          string  `json:"action"                     binding:"required"`
	Coordinate      *[2]int `json:"coordinate,omitempty"`
	StartCoordinate *[2]int `json:"start_coordinate,omitempty"`
	Text            *string `json:"text,omitempty"`
	ScrollDirection *string `json:"scroll_direction,omitempty"`
	ScrollAmount    *int    `json:"scroll_amount,omitempty"`
	Key             *string `json:"key,omitempty"`
	Region          *[4]int `json:"region,omitempty"`
}

// Autopilot action types. Coordinates of an AutopilotAction are expressed in
// the space of a previously captured image.
const (
	AutopilotMoveMouse   = "move_mouse"
	AutopilotClick       = "click"
	AutopilotDoubleClick = "double_click"
	AutopilotDrag        = "drag"
	AutopilotType        = "type"
	AutopilotKey         = "key"
	AutopilotScroll      = "scroll"
	AutopilotWait        = "wait"
	AutopilotDone        = "done"
)

// AutopilotAction is a single image-relative action sent to /autopilot/act.
type AutopilotAction struct {
	Type   string   `json:"type"              binding:"required,oneof=move_mouse click double_click drag type key scroll wait done"`
	X      *int     `json:"x,omitempty"`
	Y      *int     `json:"y,omitempty"`
	StartX *int     `json:"start_x,omitempty"`
	StartY *int     `json:"start_y,omitempty"`
	EndX   *int     `json:"end_x,omitempty"`
	EndY   *int     `json:"end_y,omitempty"`
	Text   string   `json:"text,omitempty"`
	Keys   []string `json:"keys,omitempty"`
	DY     int      `json:"dy,omitempty"`
	Button string   `json:"button,omitempty"`
	MS     int      `json:"ms,omitempty"`
}
