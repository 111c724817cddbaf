package automation

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
)

func TestExecuteShell_UsesRunner(t *testing.T) {
	var got string
	svc := New(nil, nil, Options{
		ShellEnabled: true,
		Shell: func(_ context.Context, command string) ([]byte, error) {
			got = command
			return []byte("ok\n"), nil
		},
	})
	out, err := svc.ExecuteShell(context.Background(), "echo ok")
	if err != nil {
		t.Fatal(err)
	}
	if out != "ok\n" {
		t.Errorf("output = %q", out)
	}
	if got != "echo ok" {
		t.Errorf("runner received %q", got)
	}
}

func TestExecuteShell_Disabled(t *testing.T) {
	svc := New(nil, nil, Options{ShellEnabled: false})
	_, err := svc.ExecuteShell(context.Background(), "true")
	if !errors.Is(err, ErrShellDisabled) || !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrShellDisabled wrapping ErrUnavailable, got %v", err)
	}
}

func TestExecuteShell_FailureCarriesOutput(t *testing.T) {
	svc := New(nil, nil, Options{
		ShellEnabled: true,
		Shell: func(context.Context, string) ([]byte, error) {
			return []byte("no such file\n"), errors.New("exit status 1")
		},
	})
	_, err := svc.ExecuteShell(context.Background(), "cat missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "no such file") || !strings.Contains(err.Error(), "exit status 1") {
		t.Errorf("error %q should carry exit status and output", err)
	}
}

func TestExecuteShell_RealShell(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}
	svc := New(nil, nil, Options{ShellEnabled: true})
	out, err := svc.ExecuteShell(context.Background(), "echo out; echo err 1>&2")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "out") || !strings.Contains(out, "err") {
		t.Errorf("combined output = %q, want stdout and stderr", out)
	}

	if _, err := svc.ExecuteShell(context.Background(), "exit 3"); err == nil {
		t.Error("non-zero exit should fail")
	}
}
