package temporal

import (
	"fmt"
	"time"
)

// TimeWindow is a bounded interval during which access is permitted.
// The start bound is inclusive and the end bound is exclusive. A nil bound
// imposes no constraint on that side; a window with both bounds nil is
// unconstrained.
type TimeWindow struct {
	Start *time.Time
	End   *time.Time
}

// NewTimeWindow creates a window from optional bounds. It returns an error
// when both bounds are set and the end is not after the start.
func NewTimeWindow(start, end *time.Time) (*TimeWindow, error) {
	if start != nil && end != nil && !end.After(*start) {
		return nil, fmt.Errorf("time window end %v must be after start %v", end, start)
	}
	return &TimeWindow{Start: start, End: end}, nil
}

// ParseTimeWindow parses ISO-8601 (RFC 3339) bounds. Empty strings leave the
// corresponding side unbounded.
func ParseTimeWindow(start, end string) (*TimeWindow, error) {
	var startT, endT *time.Time

	if start != "" {
		t, err := time.Parse(time.RFC3339, start)
		if err != nil {
			return nil, fmt.Errorf("invalid window start %q: %w", start, err)
		}
		startT = &t
	}

	if end != "" {
		t, err := time.Parse(time.RFC3339, end)
		if err != nil {
			return nil, fmt.Errorf("invalid window end %q: %w", end, err)
		}
		endT = &t
	}

	return NewTimeWindow(startT, endT)
}

// Contains reports whether now falls within the window: start <= now < end.
func (w *TimeWindow) Contains(now time.Time) bool {
	if w == nil {
		return true
	}
	if w.Start != nil && now.Before(*w.Start) {
		return false
	}
	if w.End != nil && !now.Before(*w.End) {
		// Exclusive end: now == end does not match.
		return false
	}
	return true
}

// Unbounded reports whether the window imposes no constraint at all.
func (w *TimeWindow) Unbounded() bool {
	return w == nil || (w.Start == nil && w.End == nil)
}
