package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// countingWorker runs a configurable body and counts invocations.
type countingWorker struct {
	calls atomic.Int32
	body  func(ctx context.Context) error
}

func (w *countingWorker) Run(ctx context.Context) error {
	w.calls.Add(1)
	return w.body(ctx)
}

func TestSupervisor_RestartOnPanic(t *testing.T) {
	req := require.New(t)
	log := slog.Default()

	worker := &countingWorker{body: func(ctx context.Context) error {
		panic("boom")
	}}

	sup := NewSupervisor(log)

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	go sup.Add(worker).Run(ctx)

	// Waiting for panics and restarts
	time.Sleep(900 * time.Millisecond)

	req.GreaterOrEqual(worker.calls.Load(), int32(2))
}

func TestSupervisor_StopOnSuccess(t *testing.T) {
	req := require.New(t)
	log := slog.Default()

	// Given a worker running only once
	worker := &countingWorker{body: func(ctx context.Context) error {
		return nil
	}}

	sup := NewSupervisor(log)

	// Given a channel to notify when Run() terminated
	done := make(chan struct{})
	go func() {
		defer close(done)
		sup.Add(worker).Run(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		req.Fail("supervisor did not stop after worker success")
	}
	req.Equal(int32(1), worker.calls.Load())
}

func TestSupervisor_StopCancelsWorkers(t *testing.T) {
	req := require.New(t)
	log := slog.Default()

	started := make(chan struct{})
	worker := &countingWorker{body: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return nil
	}}

	sup := NewSupervisor(log)
	done := make(chan struct{})
	go func() {
		defer close(done)
		sup.Add(worker).Run(context.Background())
	}()

	<-started
	sup.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		req.Fail("supervisor did not unwind after Stop")
	}
}

func TestSupervisor_ParentContextCancellation(t *testing.T) {
	req := require.New(t)
	log := slog.Default()

	worker := &countingWorker{body: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}

	ctx, cancel := context.WithCancel(context.Background())
	sup := NewSupervisor(log)
	done := make(chan struct{})
	go func() {
		defer close(done)
		sup.Add(worker).Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		req.Fail("supervisor did not stop on parent cancellation")
	}
}
