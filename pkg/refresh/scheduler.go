package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/converter/pkg/records"

	"github.com/robfig/cron/v3"
)

// Fetcher loads a new record set. *source.Adapter satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context) (records.RecordSet, error)
}

// Scheduler runs a fetch on a cron schedule.
type Scheduler struct {
	schedule string
	fetcher  Fetcher
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a scheduler for schedule.
func NewScheduler(schedule string, fetcher Fetcher) *Scheduler {
	return &Scheduler{
		schedule: schedule,
		fetcher:  fetcher,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "refresh.scheduler"),
	}
}

// Start schedules the refresh job. It stops when ctx is cancelled or Stop
// is called. If the schedule is empty, Start does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("refresh schedule not configured, skipping scheduler")
		return nil
	}
	if s.running {
		return errors.New("refresh scheduler already running")
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.Run(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("refresh scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Run performs one refresh. A fetch already in flight is not an error.
func (s *Scheduler) Run(ctx context.Context) {
	set, err := s.fetcher.Fetch(ctx)
	switch {
	case errors.Is(err, records.ErrBusy):
		s.logger.Debug("scheduled refresh skipped, fetch in progress")
	case err != nil:
		s.logger.Error("scheduled refresh failed", "error", err)
	default:
		s.logger.Info("scheduled refresh completed", "records", set.Len())
	}
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("refresh scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled refresh, or nil when not scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
