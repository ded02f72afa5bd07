package manager

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingReloader struct {
	calls atomic.Int32
	err   error
}

func (r *countingReloader) Reload() error {
	r.calls.Add(1)
	return r.err
}

func TestResyncScheduler_EmptyScheduleIsNoop(t *testing.T) {
	s := NewResyncScheduler(&countingReloader{}, "", discardLogger())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.IsRunning() {
		t.Error("scheduler running with empty schedule")
	}
	if s.NextRun() != nil {
		t.Error("NextRun should be nil when not running")
	}
	s.Stop()
}

func TestResyncScheduler_InvalidSchedule(t *testing.T) {
	s := NewResyncScheduler(&countingReloader{}, "not a schedule", discardLogger())
	if err := s.Start(context.Background()); err == nil {
		t.Error("expected error for invalid schedule")
	}
	if s.IsRunning() {
		t.Error("scheduler running after failed start")
	}
}

func TestResyncScheduler_StartStop(t *testing.T) {
	s := NewResyncScheduler(&countingReloader{}, "*/5 * * * *", discardLogger())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.IsRunning() {
		t.Fatal("scheduler not running after Start")
	}
	if err := s.Start(context.Background()); err == nil {
		t.Error("second Start should fail")
	}

	next := s.NextRun()
	if next == nil {
		t.Fatal("NextRun() = nil")
	}
	if !next.After(time.Now()) {
		t.Errorf("NextRun() = %v, want a future time", next)
	}

	s.Stop()
	if s.IsRunning() {
		t.Error("scheduler running after Stop")
	}
	s.Stop()
}

func TestResyncScheduler_StopsOnContextCancel(t *testing.T) {
	s := NewResyncScheduler(&countingReloader{}, "0 * * * *", discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()

	deadline := time.Now().Add(time.Second)
	for s.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.IsRunning() {
		t.Error("scheduler still running after context cancel")
	}
}

func TestResyncScheduler_RunResync(t *testing.T) {
	ok := &countingReloader{}
	NewResyncScheduler(ok, "@hourly", discardLogger()).runResync()
	if ok.calls.Load() != 1 {
		t.Errorf("Reload calls = %d, want 1", ok.calls.Load())
	}

	failing := &countingReloader{err: errors.New("boom")}
	NewResyncScheduler(failing, "@hourly", discardLogger()).runResync()
	if failing.calls.Load() != 1 {
		t.Errorf("Reload calls = %d, want 1", failing.calls.Load())
	}
}
