package cmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pluxuryv8/astra-bridge/internal/mainthread"
)

func TestRunWithDispatcher_ServesOnLoop(t *testing.T) {
	d := mainthread.New()
	ran := false
	err := runWithDispatcher(context.Background(), d, func(ctx context.Context) error {
		return d.Do(ctx, func(ctx context.Context) error {
			ran = mainthread.OnMain(ctx, d)
			return nil
		})
	})
	if err != nil {
		t.Fatalf("runWithDispatcher: %v", err)
	}
	if !ran {
		t.Error("work did not run on the dispatcher loop")
	}
}

func TestRunWithDispatcher_ServeError(t *testing.T) {
	errBind := errors.New("address in use")
	done := make(chan error, 1)
	go func() {
		done <- runWithDispatcher(context.Background(), mainthread.New(), func(context.Context) error {
			return errBind
		})
	}()
	select {
	case err := <-done:
		if !errors.Is(err, errBind) {
			t.Errorf("err = %v, want %v", err, errBind)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher loop did not stop after serve failed")
	}
}

func TestRunWithDispatcher_CancelStopsServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runWithDispatcher(ctx, mainthread.Inline{}, func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		})
	}()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("err = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not observe cancellation")
	}
}
