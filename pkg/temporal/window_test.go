package temporal

import (
	"testing"
	"time"
)

func TestTimeWindowContains(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		window *TimeWindow
		now    time.Time
		want   bool
	}{
		{"nil window matches", nil, start, true},
		{"both bounds nil matches", &TimeWindow{}, start, true},
		{"inside window", &TimeWindow{Start: &start, End: &end}, start.Add(time.Hour), true},
		{"exactly at start matches", &TimeWindow{Start: &start, End: &end}, start, true},
		{"exactly at end does not match", &TimeWindow{Start: &start, End: &end}, end, false},
		{"before start", &TimeWindow{Start: &start, End: &end}, start.Add(-time.Second), false},
		{"after end", &TimeWindow{Start: &start, End: &end}, end.Add(time.Second), false},
		{"open start", &TimeWindow{End: &end}, start.Add(-24 * time.Hour), true},
		{"open end", &TimeWindow{Start: &start}, end.Add(24 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.window.Contains(tt.now); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestNewTimeWindowRejectsInvertedBounds(t *testing.T) {
	start := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	if _, err := NewTimeWindow(&start, &end); err == nil {
		t.Fatal("expected error for end before start")
	}
	if _, err := NewTimeWindow(&start, &start); err == nil {
		t.Fatal("expected error for end equal to start")
	}
}

func TestParseTimeWindow(t *testing.T) {
	w, err := ParseTimeWindow("2026-03-10T09:00:00Z", "2026-03-10T17:00:00Z")
	if err != nil {
		t.Fatalf("ParseTimeWindow returned error: %v", err)
	}
	if w.Start == nil || w.End == nil {
		t.Fatal("expected both bounds set")
	}
	if w.Unbounded() {
		t.Error("bounded window reported Unbounded")
	}

	open, err := ParseTimeWindow("", "")
	if err != nil {
		t.Fatalf("ParseTimeWindow with empty bounds returned error: %v", err)
	}
	if !open.Unbounded() {
		t.Error("window with empty bounds should be unbounded")
	}

	if _, err := ParseTimeWindow("not-a-time", ""); err == nil {
		t.Error("expected error for malformed start bound")
	}
}
