package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call_transcriber/internal/domain"
)

type fakeRunner struct {
	runs atomic.Int32
	err  error

	sawDeadline atomic.Bool
}

func (f *fakeRunner) RunOnce(ctx context.Context) (*domain.CycleStats, error) {
	f.runs.Add(1)
	if _, ok := ctx.Deadline(); ok {
		f.sawDeadline.Store(true)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.CycleStats{Outcome: domain.OutcomeNoCandidate}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestScheduler_RunsImmediatelyThenOnInterval(t *testing.T) {
	runner := &fakeRunner{}
	sched := New(runner, 10*time.Millisecond, time.Second, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()

	err := sched.Start(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// One immediate run plus at least a few ticks.
	assert.GreaterOrEqual(t, runner.runs.Load(), int32(3))
	assert.True(t, runner.sawDeadline.Load(), "cycles must run under the cycle timeout")
}

func TestScheduler_CycleFailureDoesNotStopLoop(t *testing.T) {
	runner := &fakeRunner{err: errors.New("upstream down")}
	sched := New(runner, 10*time.Millisecond, time.Second, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 35*time.Millisecond)
	defer cancel()

	err := sched.Start(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, runner.runs.Load(), int32(2))
}

func TestScheduler_StopsOnCancel(t *testing.T) {
	runner := &fakeRunner{}
	sched := New(runner, time.Hour, time.Second, testLogger())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- sched.Start(ctx) }()

	// Give the immediate cycle a moment, then cancel.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}

	assert.Equal(t, int32(1), runner.runs.Load())
}
