package cmd

import (
	"testing"

	"github.com/pluxuryv8/astra-bridge/internal/automation"
)

func TestParseActions(t *testing.T) {
	yamlInput := `
- action: left_click
  coordinate: [640, 400]
- action: type
  text: hello
- action: scroll
  scroll_direction: up
  scroll_amount: 5
- action: screenshot
  region: [0, 0, 100, 50]
`
	actions, err := parseActions([]byte(yamlInput))
	if err != nil {
		t.Fatalf("parseActions: %v", err)
	}
	if len(actions) != 4 {
		t.Fatalf("got %d actions, want 4", len(actions))
	}
	if actions[0].Coordinate == nil || *actions[0].Coordinate != [2]int{640, 400} {
		t.Errorf("coordinate = %v", actions[0].Coordinate)
	}
	if actions[1].Text == nil || *actions[1].Text != "hello" {
		t.Errorf("text = %v", actions[1].Text)
	}
	if actions[2].ScrollDirection == nil || *actions[2].ScrollDirection != "up" || actions[2].ScrollAmount == nil || *actions[2].ScrollAmount != 5 {
		t.Errorf("scroll = %+v", actions[2])
	}
	if actions[3].Region == nil || *actions[3].Region != [4]int{0, 0, 100, 50} {
		t.Errorf("region = %v", actions[3].Region)
	}
}

func TestParseActions_JSON(t *testing.T) {
	actions, err := parseActions([]byte(`[{"action": "key", "key": "cmd+l"}]`))
	if err != nil {
		t.Fatalf("parseActions: %v", err)
	}
	if len(actions) != 1 || actions[0].Key == nil || *actions[0].Key != "cmd+l" {
		t.Errorf("actions = %+v", actions)
	}
}

func TestParseActions_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "  \n"},
		{"empty list", "[]"},
		{"not a list", "action: left_click"},
		{"missing action", "- text: hello"},
		{"wrong coordinate type", "- action: move\n  coordinate: here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseActions([]byte(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCountFailed(t *testing.T) {
	resp := automation.BatchResponse{Results: []string{"", "error: boom", "12,34", "error: nope"}}
	if got := countFailed(resp); got != 2 {
		t.Errorf("countFailed = %d, want 2", got)
	}
}

func TestParams(t *testing.T) {
	params := map[string]interface{}{
		"s":  "text",
		"n":  float64(42),
		"i":  7,
		"b":  true,
		"sn": 3.5,
	}
	if got := stringParam(params, "s", ""); got != "text" {
		t.Errorf("stringParam = %q", got)
	}
	if got := stringParam(params, "sn", ""); got != "3.5" {
		t.Errorf("stringParam numeric = %q", got)
	}
	if got := stringParam(params, "missing", "def"); got != "def" {
		t.Errorf("stringParam default = %q", got)
	}
	if got := intParam(params, "n", 0); got != 42 {
		t.Errorf("intParam float = %d", got)
	}
	if got := intParam(params, "i", 0); got != 7 {
		t.Errorf("intParam int = %d", got)
	}
	if got := intParam(params, "s", -1); got != -1 {
		t.Errorf("intParam wrong type = %d", got)
	}
	if !boolParam(params, "b", false) || boolParam(params, "missing", false) {
		t.Error("boolParam")
	}
}
