package automation

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image/png"
	"reflect"
	"strings"
	"testing"

	"github.com/pluxuryv8/astra-bridge/internal/platform"
)

func TestExecuteBatch_OneResultPerAction(t *testing.T) {
	inp := &fakeInputter{}
	svc := newFakeService(inp, nil)

	actions := []platform.ComputerAction{
		{Action: platform.ActionMouseMove, Coordinate: &[2]int{10, 20}},
		{Action: platform.ActionLeftClick, Coordinate: &[2]int{30, 40}},
		{Action: platform.ActionType, Text: ptr("hello")},
	}
	resp, err := svc.ExecuteBatch(context.Background(), actions)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(resp.Results))
	}
	if !strings.Contains(resp.Summary, "3") {
		t.Errorf("summary %q should mention 3", resp.Summary)
	}
	want := []string{"move(10,20)", "click(30,40,0,1)", "type(hello)"}
	if !reflect.DeepEqual(inp.calls, want) {
		t.Errorf("calls = %v, want %v", inp.calls, want)
	}
}

func TestExecuteBatch_FailureDoesNotAbortRest(t *testing.T) {
	inp := &fakeInputter{failOn: "click"}
	svc := newFakeService(inp, nil)

	resp, err := svc.ExecuteBatch(context.Background(), []platform.ComputerAction{
		{Action: platform.ActionLeftClick, Coordinate: &[2]int{1, 1}},
		{Action: "teleport"},
		{Action: platform.ActionKey, Key: ptr("cmd+shift+t")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(resp.Results))
	}
	if !strings.HasPrefix(resp.Results[0], "error: ") {
		t.Errorf("result[0] = %q, want error", resp.Results[0])
	}
	if !strings.Contains(resp.Results[1], "unknown action") {
		t.Errorf("result[1] = %q, want unknown action error", resp.Results[1])
	}
	if resp.Results[2] != "" {
		t.Errorf("result[2] = %q, want empty success", resp.Results[2])
	}
	if got := inp.calls[len(inp.calls)-1]; got != "key(cmd+shift+t)" {
		t.Errorf("last call = %q, want key combo", got)
	}
}

func TestExecuteBatch_PanicIsPerItem(t *testing.T) {
	inp := &fakeInputter{panicOn: "type"}
	svc := newFakeService(inp, nil)

	resp, err := svc.ExecuteBatch(context.Background(), []platform.ComputerAction{
		{Action: platform.ActionType, Text: ptr("x")},
		{Action: platform.ActionMove, Coordinate: &[2]int{5, 5}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Results[0], "panic") {
		t.Errorf("result[0] = %q, want panic error", resp.Results[0])
	}
	if resp.Results[1] != "" {
		t.Errorf("result[1] = %q, want success after panic", resp.Results[1])
	}
}

func TestExecuteBatch_Empty(t *testing.T) {
	svc := newFakeService(&fakeInputter{}, nil)
	resp, err := svc.ExecuteBatch(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Results == nil || len(resp.Results) != 0 {
		t.Errorf("Results = %#v, want empty non-nil slice", resp.Results)
	}
	if resp.Summary != "0 actions" {
		t.Errorf("Summary = %q", resp.Summary)
	}
}

func TestExecuteBatch_Unavailable(t *testing.T) {
	svc := New(nil, nil, Options{})
	_, err := svc.ExecuteBatch(context.Background(), []platform.ComputerAction{{Action: platform.ActionMove}})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestPerformComputerAction(t *testing.T) {
	tests := []struct {
		name     string
		action   platform.ComputerAction
		wantCall []string
		wantOut  string
		wantErr  bool
	}{
		{"right click", platform.ComputerAction{Action: platform.ActionRightClick, Coordinate: &[2]int{3, 4}}, []string{"click(3,4,1,1)"}, "", false},
		{"middle click", platform.ComputerAction{Action: platform.ActionMiddleClick, Coordinate: &[2]int{3, 4}}, []string{"click(3,4,2,1)"}, "", false},
		{"double click", platform.ComputerAction{Action: platform.ActionDoubleClick, Coordinate: &[2]int{3, 4}}, []string{"click(3,4,0,2)"}, "", false},
		{"click at cursor", platform.ComputerAction{Action: platform.ActionLeftClick}, []string{"cursor()", "click(7,8,0,1)"}, "", false},
		{"drag", platform.ComputerAction{Action: platform.ActionLeftClickDrag, StartCoordinate: &[2]int{1, 2}, Coordinate: &[2]int{3, 4}}, []string{"drag(1,2,3,4)"}, "", false},
		{"drag from cursor", platform.ComputerAction{Action: platform.ActionLeftClickDrag, Coordinate: &[2]int{3, 4}}, []string{"cursor()", "drag(7,8,3,4)"}, "", false},
		{"drag without end", platform.ComputerAction{Action: platform.ActionLeftClickDrag}, nil, "", true},
		{"move without coordinate", platform.ComputerAction{Action: platform.ActionMove}, nil, "", true},
		{"type without text", platform.ComputerAction{Action: platform.ActionType}, nil, "", true},
		{"empty key", platform.ComputerAction{Action: platform.ActionKey, Key: ptr(" ")}, nil, "", true},
		{"scroll default", platform.ComputerAction{Action: platform.ActionScroll}, []string{"scroll(0,0,0,-3)"}, "", false},
		{"scroll up at point", platform.ComputerAction{Action: platform.ActionScroll, Coordinate: &[2]int{9, 9}, ScrollDirection: ptr("up"), ScrollAmount: ptr(5)}, []string{"scroll(9,9,0,5)"}, "", false},
		{"scroll left", platform.ComputerAction{Action: platform.ActionScroll, ScrollDirection: ptr("left"), ScrollAmount: ptr(2)}, []string{"scroll(0,0,2,0)"}, "", false},
		{"scroll right", platform.ComputerAction{Action: platform.ActionScroll, ScrollDirection: ptr("Right"), ScrollAmount: ptr(2)}, []string{"scroll(0,0,-2,0)"}, "", false},
		{"scroll bad direction", platform.ComputerAction{Action: platform.ActionScroll, ScrollDirection: ptr("sideways")}, nil, "", true},
		{"scroll negative", platform.ComputerAction{Action: platform.ActionScroll, ScrollAmount: ptr(-1)}, nil, "", true},
		{"cursor position", platform.ComputerAction{Action: platform.ActionCursorPosition}, []string{"cursor()"}, "7,8", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inp := &fakeInputter{cursorX: 7, cursorY: 8}
			out, err := performComputerAction(inp, tt.action)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if out != tt.wantOut {
				t.Errorf("out = %q, want %q", out, tt.wantOut)
			}
			if !reflect.DeepEqual(inp.calls, tt.wantCall) {
				t.Errorf("calls = %v, want %v", inp.calls, tt.wantCall)
			}
		})
	}
}

func TestExecuteBatch_ScreenshotRegion(t *testing.T) {
	// Retina-like: 200x100 pixels for a 100x50 point screen.
	svc := newFakeService(&fakeInputter{}, &fakeScreen{imgW: 200, imgH: 100, screenW: 100, screenH: 50})

	resp, err := svc.ExecuteBatch(context.Background(), []platform.ComputerAction{
		{Action: platform.ActionScreenshot, Region: &[4]int{10, 10, 20, 5}},
	})
	if err != nil {
		t.Fatal(err)
	}
	data, err := base64.StdEncoding.DecodeString(resp.Results[0])
	if err != nil {
		t.Fatalf("result is not base64: %v (%q)", err, resp.Results[0])
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 10 {
		t.Errorf("cropped size = %dx%d, want 40x10", b.Dx(), b.Dy())
	}
}

func TestExecuteBatch_ScreenshotWithoutBackend(t *testing.T) {
	svc := newFakeService(&fakeInputter{}, nil)

	resp, err := svc.ExecuteBatch(context.Background(), []platform.ComputerAction{{Action: platform.ActionScreenshot}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(resp.Results[0], "error: ") {
		t.Errorf("result = %q, want error", resp.Results[0])
	}
}

func TestExecuteBatch_RegionOutsideScreen(t *testing.T) {
	svc := newFakeService(&fakeInputter{}, &fakeScreen{imgW: 100, imgH: 100, screenW: 100, screenH: 100})
	resp, _ := svc.ExecuteBatch(context.Background(), []platform.ComputerAction{
		{Action: platform.ActionScreenshot, Region: &[4]int{500, 500, 10, 10}},
	})
	if !strings.Contains(resp.Results[0], "outside the screen") {
		t.Errorf("result = %q, want outside-screen error", resp.Results[0])
	}
}
