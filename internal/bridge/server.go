// Package bridge is the loopback HTTP surface of the automation service.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pluxuryv8/astra-bridge/internal/automation"
	"github.com/pluxuryv8/astra-bridge/internal/permissions"
	"github.com/pluxuryv8/astra-bridge/internal/platform"
)

// Automation is the capability set the bridge routes requests to.
// *automation.Service implements it.
type Automation interface {
	ExecuteBatch(ctx context.Context, actions []platform.ComputerAction) (automation.BatchResponse, error)
	ExecuteShell(ctx context.Context, command string) (string, error)
	CaptureScreen(ctx context.Context, opts automation.CaptureOptions) (automation.CaptureResult, error)
	ExecuteAutopilot(ctx context.Context, a platform.AutopilotAction, imageW, imageH int) (string, error)
	Permissions(ctx context.Context) (permissions.Status, error)
	Available() bool
	ShellAvailable() bool
}

// Options configures a Server. Zero values fall back to defaults.
type Options struct {
	Addr            string
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
	CaptureWidth    int
	CaptureQuality  int
	Logger          *slog.Logger
}

const (
	defaultMaxBodyBytes    = 32 << 20
	defaultShutdownTimeout = 5 * time.Second
)

// Server owns the listener address, the router and the automation backend
// for the lifetime of the process.
type Server struct {
	addr            string
	auto            Automation
	engine          *gin.Engine
	logger          *slog.Logger
	maxBody         int64
	shutdownTimeout time.Duration
	captureWidth    int
	captureQuality  int
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// New builds a Server routing to auto.
func New(auto Automation, opts Options) *Server {
	s := &Server{
		addr:            opts.Addr,
		auto:            auto,
		logger:          opts.Logger,
		maxBody:         opts.MaxBodyBytes,
		shutdownTimeout: opts.ShutdownTimeout,
		captureWidth:    opts.CaptureWidth,
		captureQuality:  opts.CaptureQuality,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.maxBody <= 0 {
		s.maxBody = defaultMaxBodyBytes
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = defaultShutdownTimeout
	}
	if s.captureWidth <= 0 {
		s.captureWidth = automation.DefaultCaptureWidth
	}
	if s.captureQuality <= 0 {
		s.captureQuality = automation.DefaultCaptureQuality
	}
	s.engine = s.setupRoutes()
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the address the server binds.
func (s *Server) Addr() string {
	return s.addr
}

// Serve binds the configured address and serves until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is done, then shuts down gracefully.
// Per-request failures never end the loop.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("desktop bridge listening", "addr", "http://"+ln.Addr().String())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("desktop bridge stopped")
	return nil
}
