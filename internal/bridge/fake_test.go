package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/pluxuryv8/astra-bridge/internal/automation"
	"github.com/pluxuryv8/astra-bridge/internal/permissions"
	"github.com/pluxuryv8/astra-bridge/internal/platform"
)

// fakeAutomation records every call and returns canned results. errs and
// panics are keyed by operation name.
type fakeAutomation struct {
	mu    sync.Mutex
	calls []string

	errs   map[string]error
	panics map[string]bool

	shellOutput string
	summary     string
	perm        permissions.Status

	lastActions []platform.ComputerAction
	lastCapture automation.CaptureOptions
	lastAct     platform.AutopilotAction
	lastImage   [2]int
}

func newFake() *fakeAutomation {
	return &fakeAutomation{
		errs:   map[string]error{},
		panics: map[string]bool{},
		perm: permissions.Status{
			ScreenRecording: permissions.Granted,
			Accessibility:   permissions.Granted,
			InputControl:    permissions.Available,
			Message:         permissions.MessageOK,
		},
	}
}

func (f *fakeAutomation) record(op string) error {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	f.mu.Unlock()
	if f.panics[op] {
		panic("fake " + op + " panic")
	}
	return f.errs[op]
}

func (f *fakeAutomation) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAutomation) ExecuteBatch(_ context.Context, actions []platform.ComputerAction) (automation.BatchResponse, error) {
	if err := f.record("batch"); err != nil {
		return automation.BatchResponse{}, err
	}
	f.lastActions = actions
	results := make([]string, len(actions))
	for i, a := range actions {
		if a.Action == "explode" {
			results[i] = "error: unknown action \"explode\""
		}
	}
	return automation.BatchResponse{Summary: automation.BatchSummary(len(actions)), Results: results}, nil
}

func (f *fakeAutomation) ExecuteShell(_ context.Context, command string) (string, error) {
	if err := f.record("shell"); err != nil {
		return "", err
	}
	if f.shellOutput != "" {
		return f.shellOutput, nil
	}
	return "ran " + command, nil
}

func (f *fakeAutomation) CaptureScreen(_ context.Context, opts automation.CaptureOptions) (automation.CaptureResult, error) {
	if err := f.record("capture"); err != nil {
		return automation.CaptureResult{}, err
	}
	f.lastCapture = opts
	return automation.CaptureResult{
		ImageBase64:  "AAAA",
		Width:        opts.MaxWidth,
		Height:       opts.MaxWidth * 9 / 16,
		ScreenWidth:  1920,
		ScreenHeight: 1080,
		Format:       "jpeg",
	}, nil
}

func (f *fakeAutomation) ExecuteAutopilot(_ context.Context, a platform.AutopilotAction, imageW, imageH int) (string, error) {
	if err := f.record("autopilot"); err != nil {
		return "", err
	}
	f.lastAct = a
	f.lastImage = [2]int{imageW, imageH}
	if f.summary != "" {
		return f.summary, nil
	}
	return a.Type, nil
}

func (f *fakeAutomation) Permissions(context.Context) (permissions.Status, error) {
	if err := f.record("permissions"); err != nil {
		return permissions.Status{}, err
	}
	return f.perm, nil
}

func (f *fakeAutomation) Available() bool      { return f.errs["batch"] == nil }
func (f *fakeAutomation) ShellAvailable() bool { return f.errs["shell"] == nil }

var errUnavailable = fmt.Errorf("%w: test", automation.ErrUnavailable)

var errBoom = errors.New("boom")

func newTestServer(auto Automation, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return New(auto, opts)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func assertCORS(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	want := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type, Authorization",
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}
