package engine

import (
	"errors"
	"testing"
	"time"

	"veritas-hq/meridian/pkg/audit"
	"veritas-hq/meridian/pkg/registry"
	"veritas-hq/meridian/pkg/temporal"
)

type memRecorder struct {
	records []audit.DecisionRecord
}

func (m *memRecorder) RecordDecision(rec audit.DecisionRecord) {
	m.records = append(m.records, rec)
}

type stubMetrics struct {
	actions     map[string]int
	rulesLoaded int
}

func newStubMetrics() *stubMetrics {
	return &stubMetrics{actions: make(map[string]int)}
}

func (s *stubMetrics) RecordDecisionAction(action string) { s.actions[action]++ }
func (s *stubMetrics) SetRulesLoaded(n int)               { s.rulesLoaded = n }

func freshContext(now time.Time) temporal.TemporalContext {
	return temporal.TemporalContext{
		Timestamp:            now,
		Situation:            temporal.SituationNormal,
		ServiceID:            "payments-api",
		DataFreshnessSeconds: 900,
	}
}

func newRequest(t *testing.T, ctx temporal.TemporalContext) *temporal.AccessRequest {
	t.Helper()
	req, err := temporal.NewAccessRequest("financial", "alice", "x", "oncall-team", "tp", ctx)
	if err != nil {
		t.Fatalf("NewAccessRequest returned error: %v", err)
	}
	return req
}

func mustCompile(t *testing.T, records []RuleRecord) []CompiledRule {
	t.Helper()
	compiled, err := Compile(records)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	return compiled
}

func TestEvaluateStaleContext(t *testing.T) {
	rec := &memRecorder{}
	ev := NewEvaluator(nil, rec, nil, nil)

	ctx := freshContext(time.Now().Add(-time.Hour))
	ctx.DataFreshnessSeconds = 60
	req := newRequest(t, ctx)

	_, err := ev.Evaluate(req, nil)
	if err == nil {
		t.Fatal("Evaluate succeeded on a stale context")
	}
	var stale *temporal.StaleContextError
	if !errors.As(err, &stale) {
		t.Fatalf("error type = %T, want *StaleContextError", err)
	}
	if len(rec.records) != 0 {
		t.Errorf("stale rejection was audited: %+v", rec.records)
	}
}

func TestEvaluateLegalHoldDominates(t *testing.T) {
	holds := registry.NewLegalHoldRegistry()
	holds.Add("HOLD-1", registry.HoldSubjectDataSubject, "alice", "litigation")

	rec := &memRecorder{}
	ev := NewEvaluator(holds, rec, nil, nil)

	// An unconditional ALLOW that would match without the hold.
	rules := mustCompile(t, []RuleRecord{{ID: "OPEN", Action: "ALLOW"}})
	req := newRequest(t, freshContext(time.Now()))

	d, err := ev.Evaluate(req, rules)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if d.Action != ActionDeny || d.MatchedRuleID != "" {
		t.Errorf("decision = %+v, want DENY with no matched rule", d)
	}
	if len(d.Reasons) != 1 || d.Reasons[0] != ReasonLegalHold {
		t.Errorf("reasons = %v, want [legal_hold_active]", d.Reasons)
	}
	if len(rec.records) != 1 || rec.records[0].Action != "DENY" {
		t.Errorf("hold denial not audited: %+v", rec.records)
	}
}

func TestEvaluateLegalHoldOnService(t *testing.T) {
	holds := registry.NewLegalHoldRegistry()
	holds.Add("HOLD-2", registry.HoldSubjectService, "payments-api", "regulator request")

	ev := NewEvaluator(holds, nil, nil, nil)
	rules := mustCompile(t, []RuleRecord{{ID: "OPEN", Action: "ALLOW"}})

	d, err := ev.Evaluate(newRequest(t, freshContext(time.Now())), rules)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if d.Action != ActionDeny || d.Reasons[0] != ReasonLegalHold {
		t.Errorf("decision = %+v, want legal-hold DENY", d)
	}
}

func TestEvaluateClearedHoldNoLongerApplies(t *testing.T) {
	holds := registry.NewLegalHoldRegistry()
	holds.Add("HOLD-3", registry.HoldSubjectDataSubject, "alice", "litigation")
	holds.Clear("HOLD-3")

	ev := NewEvaluator(holds, nil, nil, nil)
	rules := mustCompile(t, []RuleRecord{{ID: "OPEN", Action: "ALLOW"}})

	d, err := ev.Evaluate(newRequest(t, freshContext(time.Now())), rules)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if d.Action != ActionAllow {
		t.Errorf("action = %s, want ALLOW after hold cleared", d.Action)
	}
}

func TestEvaluateFirstMatchWins(t *testing.T) {
	ev := NewEvaluator(nil, nil, nil, nil)
	rules := mustCompile(t, []RuleRecord{
		{ID: "DENY-FIN", Action: "DENY", Tuples: TupleMatchers{DataType: MatchSpec("financial")}},
		{ID: "ALLOW-ALL", Action: "ALLOW"},
	})

	d, err := ev.Evaluate(newRequest(t, freshContext(time.Now())), rules)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if d.Action != ActionDeny || d.MatchedRuleID != "DENY-FIN" {
		t.Errorf("decision = %+v, want DENY via DENY-FIN", d)
	}
	if d.Reasons[0] != ReasonMatchedRule {
		t.Errorf("reasons = %v, want [matched rule]", d.Reasons)
	}
}

func TestEvaluateDefaultBlock(t *testing.T) {
	metrics := newStubMetrics()
	rec := &memRecorder{}
	ev := NewEvaluator(nil, rec, metrics, nil)

	rules := mustCompile(t, []RuleRecord{
		{ID: "MED", Action: "ALLOW", Tuples: TupleMatchers{DataType: MatchSpec("medical")}},
	})

	d, err := ev.Evaluate(newRequest(t, freshContext(time.Now())), rules)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if d.Action != ActionBlock || d.MatchedRuleID != "" {
		t.Errorf("decision = %+v, want default BLOCK", d)
	}
	if d.Reasons[0] != ReasonNoMatch {
		t.Errorf("reasons = %v, want [no rule matched]", d.Reasons)
	}
	if metrics.actions["BLOCK"] != 1 {
		t.Errorf("BLOCK count = %d, want 1", metrics.actions["BLOCK"])
	}
	if len(rec.records) != 1 {
		t.Fatalf("audited %d records, want 1", len(rec.records))
	}
	got := rec.records[0]
	if got.DataSubject != "alice" || got.ServiceID != "payments-api" || got.LatencyMicros < 0 {
		t.Errorf("audit record fields wrong: %+v", got)
	}
}

func TestEvaluateEmergencyOverrideGate(t *testing.T) {
	ev := NewEvaluator(nil, nil, nil, nil)
	rules := mustCompile(t, []RuleRecord{
		{
			ID:     "EMRG-ONLY",
			Action: "ALLOW",
			TemporalContext: TemporalConstraints{
				RequireEmergencyOverride: true,
			},
		},
	})

	ctx := freshContext(time.Now())
	d, err := ev.Evaluate(newRequest(t, ctx), rules)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if d.Action != ActionBlock {
		t.Errorf("action without override = %s, want BLOCK", d.Action)
	}

	ctx.EmergencyOverride = true
	d, err = ev.Evaluate(newRequest(t, ctx), rules)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if d.Action != ActionAllow || d.MatchedRuleID != "EMRG-ONLY" {
		t.Errorf("decision with override = %+v, want ALLOW via EMRG-ONLY", d)
	}
}

func TestEvaluateSituationMismatch(t *testing.T) {
	ev := NewEvaluator(nil, nil, nil, nil)
	rules := mustCompile(t, []RuleRecord{
		{
			ID:     "MAINT",
			Action: "ALLOW",
			TemporalContext: TemporalConstraints{
				Situation: "MAINTENANCE",
			},
		},
	})

	d, err := ev.Evaluate(newRequest(t, freshContext(time.Now())), rules)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if d.Action != ActionBlock {
		t.Errorf("action = %s, want BLOCK on situation mismatch", d.Action)
	}
}

func TestEvaluateAccessWindowExclusiveEnd(t *testing.T) {
	ev := NewEvaluator(nil, nil, nil, nil)

	end := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	rules := mustCompile(t, []RuleRecord{
		{
			ID:     "WINDOWED",
			Action: "ALLOW",
			TemporalContext: TemporalConstraints{
				AccessWindow: &WindowSpec{
					Start: "2026-03-10T09:00:00Z",
					End:   "2026-03-10T17:00:00Z",
				},
			},
		},
	})

	// Context timestamps are what the window is checked against; keep them
	// fresh by removing the horizon.
	inside := freshContext(end.Add(-time.Second))
	inside.DataFreshnessSeconds = 0
	d, err := ev.Evaluate(newRequest(t, inside), rules)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if d.Action != ActionAllow {
		t.Errorf("action just before end = %s, want ALLOW", d.Action)
	}

	atEnd := freshContext(end)
	atEnd.DataFreshnessSeconds = 0
	d, err = ev.Evaluate(newRequest(t, atEnd), rules)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if d.Action != ActionBlock {
		t.Errorf("action at exclusive end = %s, want BLOCK", d.Action)
	}
}

func TestEvaluateEmergencyScenario(t *testing.T) {
	metrics := newStubMetrics()
	rec := &memRecorder{}
	ev := NewEvaluator(registry.NewLegalHoldRegistry(), rec, metrics, nil)

	rules := mustCompile(t, []RuleRecord{
		{
			ID:     "EMRG-1",
			Action: "ALLOW",
			Tuples: TupleMatchers{
				DataType:      MatchSpec("financial"),
				DataRecipient: MatchSpec("oncall-team"),
			},
			TemporalContext: TemporalConstraints{
				RequireEmergencyOverride: true,
			},
		},
	})

	ctx := freshContext(time.Now())
	ctx.EmergencyOverride = true
	ctx.Situation = temporal.SituationEmergency
	req := newRequest(t, ctx)

	d, err := ev.Evaluate(req, rules)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if d.Action != ActionAllow || d.MatchedRuleID != "EMRG-1" {
		t.Errorf("decision = %+v, want ALLOW via EMRG-1", d)
	}
	if metrics.actions["ALLOW"] != 1 {
		t.Errorf("ALLOW count = %d, want 1", metrics.actions["ALLOW"])
	}
	if len(rec.records) != 1 || rec.records[0].MatchedRuleID != "EMRG-1" {
		t.Fatalf("audit records = %+v, want one EMRG-1 record", rec.records)
	}
	if rec.records[0].RequestID != req.RequestID {
		t.Error("audit record lost the request correlation ID")
	}
}
