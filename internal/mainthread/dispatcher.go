package mainthread

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

type onMainKey struct{}

// job lives in the frame of the Dispatcher.Do call that created it; the loop
// touches it only until done is closed.
type job struct {
	ctx  context.Context
	work func(ctx context.Context) error
	err  error
	done chan struct{}
}

// Dispatcher hands work to a loop running on the main thread.
//
// The program must lock its main goroutine to the main OS thread
// (runtime.LockOSThread in an init function of package main) and call Run
// from that goroutine. Do may then be called from any goroutine.
type Dispatcher struct {
	queue    chan *job
	stopped  chan struct{}
	stopOnce sync.Once
	running  atomic.Bool
	pending  atomic.Int64
}

// New returns a Dispatcher whose loop has not started yet.
func New() *Dispatcher {
	return &Dispatcher{
		queue:   make(chan *job),
		stopped: make(chan struct{}),
	}
}

// Run executes queued work on the calling goroutine until ctx is done.
// It returns nil on cancellation and can only be called once.
func (d *Dispatcher) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return errors.New("mainthread: Run called more than once")
	}
	defer d.stopOnce.Do(func() { close(d.stopped) })

	for {
		select {
		case <-ctx.Done():
			return nil
		case j := <-d.queue:
			j.err = protect(context.WithValue(j.ctx, onMainKey{}, d), j.work)
			close(j.done)
		}
	}
}

// Do runs work on the loop goroutine and blocks until it completes.
//
// When ctx comes from work already running on this loop, the work runs inline
// so nested calls cannot deadlock. The caller's ctx only bounds the wait for
// the loop to accept the work; once accepted, Do waits for it to finish.
func (d *Dispatcher) Do(ctx context.Context, work func(ctx context.Context) error) error {
	if OnMain(ctx, d) {
		return protect(ctx, work)
	}

	d.pending.Add(1)
	defer d.pending.Add(-1)

	j := &job{ctx: ctx, work: work, done: make(chan struct{})}
	select {
	case d.queue <- j:
	case <-d.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-j.done
	return j.err
}

// Pending reports how many Do calls are waiting on the loop. Zero means idle.
func (d *Dispatcher) Pending() int {
	return int(d.pending.Load())
}

// OnMain reports whether ctx belongs to work currently executing on d's loop.
func OnMain(ctx context.Context, d *Dispatcher) bool {
	v, _ := ctx.Value(onMainKey{}).(*Dispatcher)
	return v != nil && v == d
}
