package automation

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// ShellRunner runs command to completion and returns its combined output.
type ShellRunner func(ctx context.Context, command string) ([]byte, error)

func runPlatformShell(ctx context.Context, command string) ([]byte, error) {
	name, flag := "/bin/sh", "-c"
	if runtime.GOOS == "windows" {
		name, flag = "cmd", "/C"
	}
	return exec.CommandContext(ctx, name, flag, command).CombinedOutput()
}

// ExecuteShell runs a single command and returns its combined stdout and
// stderr. A non-zero exit is an error whose text includes the output.
func (s *Service) ExecuteShell(ctx context.Context, command string) (string, error) {
	if !s.shellEnabled {
		return "", ErrShellDisabled
	}
	out, err := s.shell(ctx, command)
	if err != nil {
		s.logger.Debug("shell command failed", "error", err)
		if trimmed := bytes.TrimSpace(out); len(trimmed) > 0 {
			return string(out), fmt.Errorf("command failed: %w: %s", err, trimmed)
		}
		return string(out), fmt.Errorf("command failed: %w", err)
	}
	return string(out), nil
}
