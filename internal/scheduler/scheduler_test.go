package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_RejectsBadSpec(t *testing.T) {
	_, err := New("not a cron spec", func(context.Context) error { return nil }, 0, zap.NewNop())
	require.Error(t, err)
}

func TestScheduler_RunNow(t *testing.T) {
	var calls atomic.Int32
	s, err := New("0 0 * * *", func(context.Context) error {
		calls.Add(1)
		return nil
	}, time.Second, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.RunNow(context.Background()))
	require.NoError(t, s.RunNow(context.Background()))
	assert.Equal(t, int32(2), calls.Load())
}

func TestScheduler_RunNow_ReturnsJobError(t *testing.T) {
	boom := errors.New("db error")
	s, err := New("0 0 * * *", func(context.Context) error { return boom }, 0, zap.NewNop())
	require.NoError(t, err)

	assert.ErrorIs(t, s.RunNow(context.Background()), boom)
	assert.ErrorIs(t, s.RunNow(context.Background()), boom, "a failed run does not block the next")
}

func TestScheduler_RunNow_SkipsOverlappingRun(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	s, err := New("0 0 * * *", func(context.Context) error {
		close(started)
		<-release
		return nil
	}, 0, zap.NewNop())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.RunNow(context.Background()) }()
	<-started

	assert.ErrorIs(t, s.RunNow(context.Background()), ErrAlreadyRunning)

	close(release)
	require.NoError(t, <-done)
}

func TestScheduler_Exclusive_SharesGuardWithScheduledJob(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	s, err := New("0 0 * * *", func(context.Context) error {
		close(started)
		<-release
		return nil
	}, 0, zap.NewNop())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.RunNow(context.Background()) }()
	<-started

	var called atomic.Bool
	err = s.Exclusive(context.Background(), func(context.Context) error {
		called.Store(true)
		return nil
	})
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.False(t, called.Load())

	close(release)
	require.NoError(t, <-done)

	require.NoError(t, s.Exclusive(context.Background(), func(context.Context) error {
		called.Store(true)
		return nil
	}))
	assert.True(t, called.Load())
}

func TestScheduler_RunNow_AppliesTimeout(t *testing.T) {
	s, err := New("0 0 * * *", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, 20*time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	assert.ErrorIs(t, s.RunNow(context.Background()), context.DeadlineExceeded)
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := New("0 0 * * *", func(context.Context) error { return nil }, 0, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, s.Next().IsZero())

	require.NoError(t, s.Start())
	next := s.Next()
	assert.False(t, next.IsZero())
	assert.Equal(t, 0, next.Hour())
	assert.Equal(t, 0, next.Minute())

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
