package engine

import (
	"log/slog"
	"time"

	"veritas-hq/meridian/pkg/audit"
	"veritas-hq/meridian/pkg/registry"
	"veritas-hq/meridian/pkg/temporal"
)

// DecisionRecorder receives decisions for asynchronous audit. The audit
// pipeline implements it; a nil recorder disables auditing.
type DecisionRecorder interface {
	RecordDecision(rec audit.DecisionRecord)
}

// Metrics receives evaluator and engine events for export. The telemetry
// collector implements it.
type Metrics interface {
	RecordDecisionAction(action string)
	SetRulesLoaded(n int)
}

// NopMetrics discards all events.
type NopMetrics struct{}

func (NopMetrics) RecordDecisionAction(string) {}
func (NopMetrics) SetRulesLoaded(int)          {}

// Evaluator decides access requests against a compiled rule list. It holds
// the collaborators every decision consults: the legal-hold registry, the
// audit recorder, and the metrics sink.
type Evaluator struct {
	holds    *registry.LegalHoldRegistry
	recorder DecisionRecorder
	metrics  Metrics
	logger   *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewEvaluator creates an evaluator. The holds registry may be nil, in which
// case no legal-hold enforcement happens. A nil recorder disables auditing.
func NewEvaluator(holds *registry.LegalHoldRegistry, recorder DecisionRecorder, metrics Metrics, logger *slog.Logger) *Evaluator {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		holds:    holds,
		recorder: recorder,
		metrics:  metrics,
		logger:   logger.With("component", "policy-evaluator"),
		now:      time.Now,
	}
}

// Evaluate decides one request against the rules, in order:
//
//  1. Freshness: a context past its freshness horizon fails with a
//     StaleContextError. Nothing is audited; the caller must regenerate the
//     context and retry.
//  2. Legal holds: an active hold on the data subject or the context's
//     service forces DENY before any rule is consulted.
//  3. First matching rule decides.
//  4. No match defaults to BLOCK.
//
// Steps 2 through 4 are audited with wall-clock latency.
func (e *Evaluator) Evaluate(req *temporal.AccessRequest, rules []CompiledRule) (*Decision, error) {
	if err := req.Context.CheckFresh(e.now()); err != nil {
		e.logger.Warn("rejecting stale temporal context",
			"request_id", req.RequestID,
			"error", err,
		)
		return nil, err
	}

	start := time.Now()

	if e.holds != nil {
		if e.holds.IsOnHold(registry.HoldSubjectDataSubject, req.DataSubject) ||
			(req.Context.ServiceID != "" && e.holds.IsOnHold(registry.HoldSubjectService, req.Context.ServiceID)) {
			return e.finish(req, start, &Decision{
				Action:  ActionDeny,
				Reasons: []string{ReasonLegalHold},
			}), nil
		}
	}

	// Temporal conditions are checked against the context's own timestamp;
	// the freshness gate above bounds how far it can lag the wall clock.
	now := req.Context.Timestamp

	for i := range rules {
		if rules[i].Matches(req, now) {
			return e.finish(req, start, &Decision{
				Action:        rules[i].Action,
				MatchedRuleID: rules[i].ID,
				Reasons:       []string{ReasonMatchedRule},
			}), nil
		}
	}

	return e.finish(req, start, &Decision{
		Action:  ActionBlock,
		Reasons: []string{ReasonNoMatch},
	}), nil
}

// finish records metrics and audit for a completed decision.
func (e *Evaluator) finish(req *temporal.AccessRequest, start time.Time, d *Decision) *Decision {
	latency := time.Since(start)
	e.metrics.RecordDecisionAction(string(d.Action))

	if e.recorder != nil {
		e.recorder.RecordDecision(audit.DecisionRecord{
			RequestID: req.RequestID,
			Timestamp: time.Now().UTC(),

			DataType:              req.DataType,
			DataSubject:           req.DataSubject,
			DataSender:            req.DataSender,
			DataRecipient:         req.DataRecipient,
			TransmissionPrinciple: req.TransmissionPrinciple,

			ServiceID:         req.Context.ServiceID,
			Situation:         string(req.Context.Situation),
			TemporalRole:      req.Context.TemporalRole,
			EmergencyOverride: req.Context.EmergencyOverride,

			Action:        string(d.Action),
			MatchedRuleID: d.MatchedRuleID,
			Reasons:       d.Reasons,
			LatencyMicros: latency.Microseconds(),
		})
	}
	return d
}
