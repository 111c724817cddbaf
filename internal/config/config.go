// Package config resolves the bridge's runtime configuration from the
// environment and an optional YAML file. Environment variables win.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort            = "43124"
	DefaultMaxBodyBytes    = 32 << 20
	DefaultShutdownTimeout = 5 * time.Second
	DefaultCaptureWidth    = 1280
	DefaultCaptureQuality  = 60
)

// Environment variables read by Load.
const (
	EnvBaseURL         = "ASTRA_BRIDGE_BASE_URL"
	EnvPort            = "ASTRA_BRIDGE_PORT"
	EnvDesktopPort     = "ASTRA_DESKTOP_BRIDGE_PORT"
	EnvShellEnabled    = "ASTRA_BRIDGE_SHELL_ENABLED"
	EnvMaxBodyBytes    = "ASTRA_BRIDGE_MAX_BODY_BYTES"
	EnvShutdownTimeout = "ASTRA_BRIDGE_SHUTDOWN_TIMEOUT"
	EnvLogLevel        = "ASTRA_BRIDGE_LOG_LEVEL"
)

// Config holds the bridge configuration. Addr is resolved once and never changes.
type Config struct {
	Addr            string
	ShellEnabled    bool
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
	LogLevel        slog.Level
	Capture         CaptureDefaults

	// Warnings are non-fatal problems found while loading, such as an
	// unusable base URL that was skipped.
	Warnings []string
}

// CaptureDefaults apply when a capture request omits max_width or quality.
type CaptureDefaults struct {
	MaxWidth int `yaml:"max_width"`
	Quality  int `yaml:"quality"`
}

// fileConfig mirrors the YAML file layout.
type fileConfig struct {
	BaseURL         string          `yaml:"base_url"`
	Port            string          `yaml:"port"`
	ShellEnabled    *bool           `yaml:"shell_enabled"`
	MaxBodyBytes    int64           `yaml:"max_body_bytes"`
	ShutdownTimeout string          `yaml:"shutdown_timeout"`
	LogLevel        string          `yaml:"log_level"`
	Capture         CaptureDefaults `yaml:"capture"`
}

// Load reads the configuration. path may be empty for environment-only setup.
func Load(path string) (*Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (*Config, error) {
	var fc fileConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg := &Config{
		ShellEnabled:    true,
		MaxBodyBytes:    DefaultMaxBodyBytes,
		ShutdownTimeout: DefaultShutdownTimeout,
		Capture:         CaptureDefaults{MaxWidth: DefaultCaptureWidth, Quality: DefaultCaptureQuality},
	}

	addr, warnings, err := resolveAddr(getenv, fc)
	if err != nil {
		return nil, err
	}
	cfg.Addr = addr
	cfg.Warnings = warnings

	if fc.ShellEnabled != nil {
		cfg.ShellEnabled = *fc.ShellEnabled
	}
	cfg.ShellEnabled = getEnvAsBool(getenv, EnvShellEnabled, cfg.ShellEnabled)

	if fc.MaxBodyBytes > 0 {
		cfg.MaxBodyBytes = fc.MaxBodyBytes
	}
	if cfg.MaxBodyBytes, err = getEnvAsInt64(getenv, EnvMaxBodyBytes, cfg.MaxBodyBytes); err != nil {
		return nil, err
	}
	if cfg.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("max body bytes must be positive, got %d", cfg.MaxBodyBytes)
	}

	if fc.ShutdownTimeout != "" {
		d, err := time.ParseDuration(fc.ShutdownTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid shutdown_timeout %q: %w", fc.ShutdownTimeout, err)
		}
		cfg.ShutdownTimeout = d
	}
	if cfg.ShutdownTimeout, err = getEnvAsDuration(getenv, EnvShutdownTimeout, cfg.ShutdownTimeout); err != nil {
		return nil, err
	}

	level := getEnv(getenv, EnvLogLevel, fc.LogLevel)
	if level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	if fc.Capture.MaxWidth > 0 {
		cfg.Capture.MaxWidth = fc.Capture.MaxWidth
	}
	if fc.Capture.Quality > 0 {
		if fc.Capture.Quality > 100 {
			return nil, fmt.Errorf("capture quality must be 1-100, got %d", fc.Capture.Quality)
		}
		cfg.Capture.Quality = fc.Capture.Quality
	}

	return cfg, nil
}

// resolveAddr applies the address precedence: base URL, then the two port
// variables, then the file port, then the default port on loopback.
func resolveAddr(getenv func(string) string, fc fileConfig) (string, []string, error) {
	var warnings []string

	baseURL := getEnv(getenv, EnvBaseURL, fc.BaseURL)
	if baseURL != "" {
		if addr, ok := AddrFromBaseURL(baseURL); ok {
			return addr, nil, nil
		}
		warnings = append(warnings, fmt.Sprintf("invalid %s=%q, falling back to %s/%s", EnvBaseURL, baseURL, EnvPort, EnvDesktopPort))
	}

	port := getenv(EnvPort)
	if port == "" {
		port = getenv(EnvDesktopPort)
	}
	if port == "" {
		port = fc.Port
	}
	if port == "" {
		port = DefaultPort
	}
	n, err := strconv.Atoi(strings.TrimSpace(port))
	if err != nil || n < 0 || n > 65535 {
		return "", warnings, fmt.Errorf("invalid bridge port %q", port)
	}
	return net.JoinHostPort("127.0.0.1", strconv.Itoa(n)), warnings, nil
}

// AddrFromBaseURL derives host:port from an http or https base URL. A URL
// without an explicit port gets the scheme's default. Anything else yields
// ok=false.
func AddrFromBaseURL(baseURL string) (addr string, ok bool) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		return "", false
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	if p := u.Port(); p != "" {
		return net.JoinHostPort(u.Hostname(), p), true
	}
	port := "80"
	if u.Scheme == "https" {
		port = "443"
	}
	return net.JoinHostPort(u.Hostname(), port), true
}

func getEnv(getenv func(string) string, key, defaultValue string) string {
	if value := getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(getenv func(string) string, key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(getenv(key))) {
	case "":
		return defaultValue
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}

func getEnvAsInt64(getenv func(string) string, key string, defaultValue int64) (int64, error) {
	value := getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q (expected integer)", key, value)
	}
	return n, nil
}

func getEnvAsDuration(getenv func(string) string, key string, defaultValue time.Duration) (time.Duration, error) {
	value := getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q (expected duration, e.g., '5s', '1m')", key, value)
	}
	return d, nil
}
