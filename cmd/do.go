package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pluxuryv8/astra-bridge/internal/automation"
	"github.com/pluxuryv8/astra-bridge/internal/mainthread"
	"github.com/pluxuryv8/astra-bridge/internal/output"
	"github.com/pluxuryv8/astra-bridge/internal/platform"
)

var doCmd = &cobra.Command{
	Use:   "do",
	Short: "Execute a batch of computer actions",
	Long: `Execute a sequence of computer actions from a YAML (or JSON) list on stdin.

Steps use the same fields as the bridge's /computer/execute endpoint and run
in order. A failing step is reported in its result slot and the rest still run.

Example:
  astra-bridge do <<'EOF'
  - action: left_click
    coordinate: [640, 400]
  - action: type
    text: "hello"
  - action: key
    key: cmd+s
  EOF`,
	RunE: runDo,
}

func init() {
	rootCmd.AddCommand(doCmd)
}

func runDo(cmd *cobra.Command, args []string) error {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	actions, err := parseActions(data)
	if err != nil {
		return err
	}

	// Commands run on the locked main goroutine, so inline execution is
	// already on the main thread.
	svc, err := newService(appConfig, mainthread.Inline{})
	if err != nil {
		return err
	}
	resp, err := svc.ExecuteBatch(cmd.Context(), actions)
	if err != nil {
		return err
	}
	if err := output.Print(resp); err != nil {
		return err
	}
	if failed := countFailed(resp); failed > 0 {
		return fmt.Errorf("%d of %d actions failed", failed, len(actions))
	}
	return nil
}

// parseActions decodes a YAML or JSON list of actions. Keys follow the
// bridge's JSON field names.
func parseActions(data []byte) ([]platform.ComputerAction, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("no actions provided on stdin; pipe a YAML list of actions")
	}
	var raw []map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse actions: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no actions provided; expected a YAML list of actions")
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse actions: %w", err)
	}
	var actions []platform.ComputerAction
	if err := json.Unmarshal(b, &actions); err != nil {
		return nil, fmt.Errorf("failed to parse actions: %w", err)
	}
	for i, a := range actions {
		if a.Action == "" {
			return nil, fmt.Errorf("step %d: action is required", i+1)
		}
	}
	return actions, nil
}

func countFailed(resp automation.BatchResponse) int {
	n := 0
	for _, r := range resp.Results {
		if strings.HasPrefix(r, "error: ") {
			n++
		}
	}
	return n
}

// Parameter extraction helpers for tool argument maps

func stringParam(params map[string]interface{}, key, defaultVal string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

func intParam(params map[string]interface{}, key string, defaultVal int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case int64:
			return int(n)
		}
	}
	return defaultVal
}

func boolParam(params map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}
