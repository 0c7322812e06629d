package audit

import "time"

// DecisionRecord is one audited policy decision, flattened for durable
// storage and downstream log shippers.
type DecisionRecord struct {
	RecordID  string    `json:"record_id"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`

	DataType              string `json:"data_type"`
	DataSubject           string `json:"data_subject"`
	DataSender            string `json:"data_sender"`
	DataRecipient         string `json:"data_recipient"`
	TransmissionPrinciple string `json:"transmission_principle"`

	ServiceID         string `json:"service_id,omitempty"`
	Situation         string `json:"situation,omitempty"`
	TemporalRole      string `json:"temporal_role,omitempty"`
	EmergencyOverride bool   `json:"emergency_override,omitempty"`

	Action        string   `json:"action"`
	MatchedRuleID string   `json:"matched_rule_id,omitempty"`
	Reasons       []string `json:"reasons,omitempty"`

	// LatencyMicros is the wall-clock evaluation latency in microseconds.
	LatencyMicros int64 `json:"latency_us"`
}

// MetricsSnapshot is a point-in-time view of the pipeline counters, exposed
// for pull-based metrics collaborators.
type MetricsSnapshot struct {
	Enqueued       uint64
	Dropped        uint64
	FlushedBatches uint64
	LastFlush      time.Duration

	// DecisionCount and DecisionTotal aggregate evaluation latency across
	// all decisions, sampled or not.
	DecisionCount uint64
	DecisionTotal time.Duration
}

// AvgLatency returns the mean decision latency, or zero with no decisions.
func (m MetricsSnapshot) AvgLatency() time.Duration {
	if m.DecisionCount == 0 {
		return 0
	}
	return m.DecisionTotal / time.Duration(m.DecisionCount)
}

// MetricsSink receives pipeline events for export. Implementations must be
// cheap and non-blocking; the pipeline calls them from the hot path.
type MetricsSink interface {
	DecisionObserved(latency time.Duration)
	RecordEnqueued()
	RecordDropped()
	BatchFlushed(records int, duration time.Duration)
}

// NopMetricsSink discards all events.
type NopMetricsSink struct{}

func (NopMetricsSink) DecisionObserved(time.Duration)  {}
func (NopMetricsSink) RecordEnqueued()                 {}
func (NopMetricsSink) RecordDropped()                  {}
func (NopMetricsSink) BatchFlushed(int, time.Duration) {}
