package cmd

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pluxuryv8/astra-bridge/internal/automation"
	"github.com/pluxuryv8/astra-bridge/internal/mainthread"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture the main display as JPEG",
	Long:  "Capture the main display the same way /autopilot/capture does and write the JPEG to a file or stdout as base64.",
	RunE:  runScreenshot,
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	screenshotCmd.Flags().String("output", "", "Output file path (default: stdout as base64)")
	screenshotCmd.Flags().Int("max-width", 0, "Maximum width in pixels (default from config, 1280)")
	screenshotCmd.Flags().Int("quality", 0, "JPEG quality 1-100 (default from config, 60)")
	screenshotCmd.Flags().Bool("grid", false, "Overlay a labelled coordinate grid")
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	outPath, _ := cmd.Flags().GetString("output")
	maxWidth, _ := cmd.Flags().GetInt("max-width")
	quality, _ := cmd.Flags().GetInt("quality")
	grid, _ := cmd.Flags().GetBool("grid")

	if maxWidth < 0 || quality < 0 || quality > 100 {
		return fmt.Errorf("max-width must be >= 0 and quality 1-100")
	}
	if maxWidth == 0 {
		maxWidth = appConfig.Capture.MaxWidth
	}
	if quality == 0 {
		quality = appConfig.Capture.Quality
	}

	svc, err := newService(appConfig, mainthread.Inline{})
	if err != nil {
		return err
	}
	res, err := svc.CaptureScreen(cmd.Context(), automation.CaptureOptions{
		MaxWidth: maxWidth,
		Quality:  quality,
		Grid:     grid,
	})
	if err != nil {
		return err
	}
	logger.Info("captured screen",
		"width", res.Width, "height", res.Height,
		"screen_width", res.ScreenWidth, "screen_height", res.ScreenHeight,
	)

	if outPath != "" {
		data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
		if err != nil {
			return err
		}
		return os.WriteFile(outPath, data, 0644)
	}

	// Default: write to stdout as base64 for easy agent consumption
	fmt.Fprintln(cmd.OutOrStdout(), res.ImageBase64)
	return nil
}
