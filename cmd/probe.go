package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pluxuryv8/astra-bridge/internal/mainthread"
	"github.com/pluxuryv8/astra-bridge/internal/output"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check screen recording and accessibility permissions",
	Long: `Probe the OS grants the bridge needs and print the result, the same
status /autopilot/permissions returns. Nothing is cached; run it again after
changing a system setting.`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	svc, err := newService(appConfig, mainthread.Inline{})
	if err != nil {
		return err
	}
	status, err := svc.Permissions(cmd.Context())
	if err != nil {
		return fmt.Errorf("cannot probe permissions: %w", err)
	}
	return output.Print(status)
}
