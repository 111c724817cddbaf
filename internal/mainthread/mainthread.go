// Package mainthread runs units of work on a designated OS thread.
//
// Some automation APIs may only be called from the process main thread. An
// Executor hides that constraint from callers: on platforms that have it the
// work is handed to a Dispatcher loop running on the locked main goroutine,
// elsewhere it runs inline. Either way a panic inside the work is recovered
// and returned as a *PanicError instead of unwinding through the caller.
package mainthread

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
)

// ErrPanic matches any *PanicError with errors.Is.
var ErrPanic = errors.New("panic in dispatched work")

// ErrStopped is returned by Dispatcher.Do once the loop has exited.
var ErrStopped = errors.New("main-thread dispatcher is not running")

// PanicError carries a value recovered from a panicking unit of work.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in dispatched work: %v", e.Value)
}

func (e *PanicError) Is(target error) bool {
	return target == ErrPanic
}

// Executor runs work where it must run and blocks until it returns.
type Executor interface {
	Do(ctx context.Context, work func(ctx context.Context) error) error
}

// Call runs work on ex and returns its result. On failure the zero value of T
// is returned together with the error.
func Call[T any](ctx context.Context, ex Executor, work func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := ex.Do(ctx, func(ctx context.Context) error {
		v, err := work(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// ForPlatform returns a Dispatcher when requiresMain is set and Inline otherwise.
// A returned *Dispatcher only makes progress once its Run loop is started.
func ForPlatform(requiresMain bool) Executor {
	if requiresMain {
		return New()
	}
	return Inline{}
}

// Inline runs work on the calling goroutine.
type Inline struct{}

func (Inline) Do(ctx context.Context, work func(ctx context.Context) error) error {
	return protect(ctx, work)
}

func protect(ctx context.Context, work func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return work(ctx)
}
