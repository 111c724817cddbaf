// Package automation executes bridge actions against the platform provider.
package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pluxuryv8/astra-bridge/internal/mainthread"
	"github.com/pluxuryv8/astra-bridge/internal/permissions"
	"github.com/pluxuryv8/astra-bridge/internal/platform"
)

// ErrUnavailable is returned when the running build or platform lacks the
// capability an operation needs.
var ErrUnavailable = errors.New("automation unavailable")

// ErrShellDisabled is returned by ExecuteShell when shell execution is turned off.
var ErrShellDisabled = fmt.Errorf("%w: shell execution is disabled", ErrUnavailable)

// Options configures a Service.
type Options struct {
	ShellEnabled bool
	// Shell overrides how commands are run; nil uses the platform shell.
	Shell  ShellRunner
	Logger *slog.Logger
}

// Service is the action executor consumed by the bridge and the MCP tools.
// A nil provider makes every OS-facing operation report ErrUnavailable.
type Service struct {
	provider     *platform.Provider
	exec         mainthread.Executor
	prober       *permissions.Prober
	shell        ShellRunner
	shellEnabled bool
	logger       *slog.Logger
}

// New creates a Service. Input actions run through exec.
func New(provider *platform.Provider, exec mainthread.Executor, opts Options) *Service {
	s := &Service{
		provider:     provider,
		exec:         exec,
		shell:        opts.Shell,
		shellEnabled: opts.ShellEnabled,
		logger:       opts.Logger,
	}
	if s.exec == nil {
		s.exec = mainthread.Inline{}
	}
	if s.shell == nil {
		s.shell = runPlatformShell
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if provider != nil {
		s.prober = permissions.NewProber(provider.Permissions)
	}
	return s
}

// Available reports whether input automation is available.
func (s *Service) Available() bool {
	return s.provider != nil && s.provider.Inputter != nil
}

// ShellAvailable reports whether ExecuteShell can run commands.
func (s *Service) ShellAvailable() bool {
	return s.shellEnabled
}

// Permissions probes the OS grants. Every call queries the OS afresh.
func (s *Service) Permissions(_ context.Context) (permissions.Status, error) {
	if s.prober == nil {
		return permissions.Status{}, ErrUnavailable
	}
	return s.prober.Probe(), nil
}

func (s *Service) inputter() (platform.Inputter, error) {
	if s.provider == nil || s.provider.Inputter == nil {
		return nil, fmt.Errorf("%w: no input backend", ErrUnavailable)
	}
	return s.provider.Inputter, nil
}

func (s *Service) screenshotter() (platform.Screenshotter, error) {
	if s.provider == nil || s.provider.Screenshotter == nil {
		return nil, fmt.Errorf("%w: no screen capture backend", ErrUnavailable)
	}
	return s.provider.Screenshotter, nil
}
