// Package scheduler runs the availability sweep on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is the unit of work the scheduler runs.
type Job func(ctx context.Context) error

// Scheduler triggers a Job on a cron spec. Runs never overlap.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	job     Job
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a Scheduler. timeout bounds each run; zero means no bound.
func New(spec string, job Job, timeout time.Duration, logger *zap.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		spec:    spec,
		job:     job,
		timeout: timeout,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start registers the job and starts the cron loop in the background.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() { _ = s.RunNow(s.ctx) }); err != nil {
		return fmt.Errorf("failed to schedule job: %w", err)
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.spec))
	return nil
}

// Stop halts future runs, cancels a run in progress and waits for it to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunNow runs the job immediately unless a run is already in progress, in
// which case it returns ErrAlreadyRunning.
func (s *Scheduler) RunNow(ctx context.Context) error {
	return s.Exclusive(ctx, s.job)
}

// Exclusive runs fn under the same guard and timeout as scheduled runs. It
// returns ErrAlreadyRunning while another run is in progress.
func (s *Scheduler) Exclusive(ctx context.Context, fn Job) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("skipping run, previous run still in progress")
		return ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := fn(ctx); err != nil {
		s.logger.Error("scheduled job failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return err
	}
	s.logger.Debug("scheduled job finished", zap.Duration("elapsed", time.Since(start)))
	return nil
}

// Next returns the next scheduled run time, or zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
