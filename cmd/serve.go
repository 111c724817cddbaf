package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pluxuryv8/astra-bridge/internal/bridge"
	"github.com/pluxuryv8/astra-bridge/internal/mainthread"
	"github.com/pluxuryv8/astra-bridge/internal/platform"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the loopback automation bridge",
	Long: `Start the HTTP bridge the desktop front-end talks to.

The listen address comes from ASTRA_BRIDGE_BASE_URL, ASTRA_BRIDGE_PORT or
ASTRA_DESKTOP_BRIDGE_PORT (in that order) and defaults to 127.0.0.1:43124.

Examples:
  astra-bridge serve
  ASTRA_BRIDGE_PORT=5050 astra-bridge serve
  astra-bridge serve --config bridge.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exec := mainthread.ForPlatform(platform.RequiresMainThread)
	svc, err := newService(appConfig, exec)
	if err != nil {
		return fmt.Errorf("failed to initialise automation: %w", err)
	}

	srv := bridge.New(svc, bridge.Options{
		Addr:            appConfig.Addr,
		MaxBodyBytes:    appConfig.MaxBodyBytes,
		ShutdownTimeout: appConfig.ShutdownTimeout,
		CaptureWidth:    appConfig.Capture.MaxWidth,
		CaptureQuality:  appConfig.Capture.Quality,
		Logger:          logger,
	})
	return runWithDispatcher(ctx, exec, srv.Serve)
}

// runWithDispatcher runs serve on a background goroutine while the calling
// goroutine, which must be the locked main goroutine, drives exec's loop when
// exec is a *mainthread.Dispatcher. The loop outlives serve so in-flight
// requests can finish during graceful shutdown.
func runWithDispatcher(ctx context.Context, exec mainthread.Executor, serve func(context.Context) error) error {
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stopLoop()
		return serve(gctx)
	})

	if d, ok := exec.(*mainthread.Dispatcher); ok {
		if err := d.Run(loopCtx); err != nil {
			return err
		}
	}
	return g.Wait()
}
