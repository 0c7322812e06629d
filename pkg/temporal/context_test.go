package temporal

import (
	"errors"
	"testing"
	"time"
)

func TestTemporalContextFreshness(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		horizon int
		age     time.Duration
		fresh   bool
	}{
		{"zero horizon is always fresh", 0, 24 * time.Hour, true},
		{"well within horizon", 300, time.Minute, true},
		{"just under horizon", 300, 5*time.Minute - time.Millisecond, true},
		{"exactly at horizon", 300, 5 * time.Minute, true},
		{"just past horizon", 300, 5*time.Minute + time.Millisecond, false},
		{"far past horizon", 60, time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := &TemporalContext{
				Timestamp:            base,
				DataFreshnessSeconds: tt.horizon,
			}
			now := base.Add(tt.age)

			if got := tc.Fresh(now); got != tt.fresh {
				t.Errorf("Fresh() = %v, want %v", got, tt.fresh)
			}

			err := tc.CheckFresh(now)
			if tt.fresh && err != nil {
				t.Errorf("CheckFresh() = %v, want nil", err)
			}
			if !tt.fresh {
				var stale *StaleContextError
				if !errors.As(err, &stale) {
					t.Fatalf("CheckFresh() = %v, want StaleContextError", err)
				}
				if stale.Age != tt.age {
					t.Errorf("StaleContextError.Age = %v, want %v", stale.Age, tt.age)
				}
			}
		})
	}
}

func TestEmergencyActive(t *testing.T) {
	tests := []struct {
		name string
		tc   TemporalContext
		want bool
	}{
		{"quiet context", TemporalContext{Situation: SituationNormal}, false},
		{"override flag", TemporalContext{EmergencyOverride: true}, true},
		{"emergency situation", TemporalContext{Situation: SituationEmergency}, true},
		{"authorization id only", TemporalContext{EmergencyAuthorizationID: "INC-7"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tc.EmergencyActive(); got != tt.want {
				t.Errorf("EmergencyActive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewAccessRequest(t *testing.T) {
	req, err := NewAccessRequest("financial", "patient-001", "dr-smith", "oncall-team", "treatment", TemporalContext{})
	if err != nil {
		t.Fatalf("NewAccessRequest returned error: %v", err)
	}
	if req.RequestID == "" {
		t.Error("expected a generated request ID")
	}
	if req.Context.Situation != SituationNormal {
		t.Errorf("Situation defaulted to %q, want NORMAL", req.Context.Situation)
	}
	if req.RiskLevel != RiskMedium {
		t.Errorf("RiskLevel defaulted to %q, want MEDIUM", req.RiskLevel)
	}

	if _, err := NewAccessRequest("", "s", "x", "y", "tp", TemporalContext{}); err == nil {
		t.Error("expected error for empty data_type")
	}
	if _, err := NewAccessRequest("d", "s", "x", "y", "tp", TemporalContext{Situation: "PANIC"}); err == nil {
		t.Error("expected error for unknown situation")
	}
}
