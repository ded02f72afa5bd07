package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ResyncScheduler reloads the configuration on a cron schedule. It covers
// file systems where change notifications are unreliable, such as network
// mounts.
type ResyncScheduler struct {
	reloader Reloader
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
	stopCh   chan struct{}
}

// NewResyncScheduler creates a scheduler that calls reloader.Reload on the
// given standard five-field cron schedule.
func NewResyncScheduler(reloader Reloader, schedule string, logger *slog.Logger) *ResyncScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResyncScheduler{
		reloader: reloader,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "config.resync"),
	}
}

// Start begins the scheduled resync.
//
// Common cron expressions:
//   - "*/5 * * * *"  - Every 5 minutes
//   - "0 * * * *"    - Hourly
//
// If the schedule is empty, the scheduler does nothing.
func (s *ResyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("resync scheduler already running")
	}

	if s.schedule == "" {
		s.logger.Info("resync schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, s.runResync); err != nil {
		return fmt.Errorf("failed to schedule resync: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.stopCh = make(chan struct{})

	s.logger.Info("resync scheduler started", "schedule", s.schedule)

	stopCh := s.stopCh
	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-stopCh:
		}
	}()

	return nil
}

// runResync executes one resync.
func (s *ResyncScheduler) runResync() {
	start := time.Now()
	if err := s.reloader.Reload(); err != nil {
		s.logger.Error("scheduled resync failed", "error", err)
		return
	}
	s.logger.Debug("scheduled resync completed",
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// Stop stops the scheduler and waits for a running resync to complete.
func (s *ResyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	close(s.stopCh)
	s.running = false
	s.logger.Info("resync scheduler stopped")
}

// IsRunning returns true if the scheduler is running.
func (s *ResyncScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled resync time, or nil when not running.
func (s *ResyncScheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
