package audit

import (
	"context"
	"testing"
	"time"
)

type stubStore struct {
	cutoff  time.Time
	deleted int64
}

func (s *stubStore) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.cutoff = cutoff
	return s.deleted, nil
}

func TestPrunerCutoff(t *testing.T) {
	store := &stubStore{deleted: 7}
	pruner := NewPruner(store, &RetentionConfig{RetentionDays: 30})
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	pruner.now = func() time.Time { return now }

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	if deleted != 7 {
		t.Errorf("deleted = %d, want 7", deleted)
	}
	if want := now.AddDate(0, 0, -30); !store.cutoff.Equal(want) {
		t.Errorf("cutoff = %v, want %v", store.cutoff, want)
	}
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	pruner := NewPruner(&stubStore{}, &RetentionConfig{RetentionDays: 30, PruneSchedule: "not a cron line"})
	s := NewScheduler(pruner)

	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for malformed cron expression")
	}
	if s.IsRunning() {
		t.Error("scheduler should not be running after a failed start")
	}
}

func TestSchedulerEmptyScheduleIsNoop(t *testing.T) {
	pruner := NewPruner(&stubStore{}, &RetentionConfig{RetentionDays: 30})
	s := NewScheduler(pruner)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if s.IsRunning() {
		t.Error("scheduler without a schedule should stay stopped")
	}
}

func TestSchedulerStartStop(t *testing.T) {
	pruner := NewPruner(&stubStore{}, &RetentionConfig{RetentionDays: 30, PruneSchedule: "0 3 * * *"})
	s := NewScheduler(pruner)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if !s.IsRunning() {
		t.Error("scheduler should be running after Start")
	}

	s.Stop()
	if s.IsRunning() {
		t.Error("scheduler should be stopped after Stop")
	}
}
