package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pluxuryv8/astra-bridge/internal/config"
	"github.com/pluxuryv8/astra-bridge/internal/output"
	"github.com/pluxuryv8/astra-bridge/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "astra-bridge",
	Short: "Local automation bridge for the Astra desktop front-end",
	Long: `A loopback service that performs mouse, keyboard, shell and screen
capture actions on behalf of a separate front-end process.`,
	SilenceUsage: true,
}

// Set by the root command's PersistentPreRunE.
var (
	appConfig *config.Config
	logger    = slog.Default()
)

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := rootCmd.PersistentFlags().GetString("format")
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = f
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")

		path, _ := rootCmd.PersistentFlags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		appConfig = cfg

		logger = newLogger(cfg.LogLevel)
		slog.SetDefault(logger)
		for _, w := range cfg.Warnings {
			logger.Warn(w)
		}
		return nil
	}
}

// newLogger logs to stderr so stdout stays free for command output and the
// MCP stdio transport.
func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
