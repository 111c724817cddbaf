package cmd

import (
	"errors"

	"github.com/pluxuryv8/astra-bridge/internal/automation"
	"github.com/pluxuryv8/astra-bridge/internal/config"
	"github.com/pluxuryv8/astra-bridge/internal/mainthread"
	"github.com/pluxuryv8/astra-bridge/internal/platform"
)

// newProvider resolves the platform backends once. A platform without a
// backend yields a nil provider and every automation call reports
// unavailable.
func newProvider() (*platform.Provider, error) {
	provider, err := platform.NewProvider()
	if errors.Is(err, platform.ErrUnsupported) {
		logger.Warn("desktop automation unavailable", "error", err)
		return nil, nil
	}
	return provider, err
}

// newService builds the automation service shared by the bridge and MCP commands.
func newService(cfg *config.Config, exec mainthread.Executor) (*automation.Service, error) {
	provider, err := newProvider()
	if err != nil {
		return nil, err
	}
	return automation.New(provider, exec, automation.Options{
		ShellEnabled: cfg.ShellEnabled,
		Logger:       logger,
	}), nil
}
