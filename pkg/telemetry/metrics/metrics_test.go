package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorCounters(t *testing.T) {
	c := NewCollector(nil, prometheus.NewRegistry())

	c.RecordEnqueued()
	c.RecordEnqueued()
	c.RecordDropped()
	c.BatchFlushed(10, 2*time.Millisecond)
	c.RecordOrgCacheHit()
	c.RecordOrgCacheMiss()
	c.RecordOrgGraphLookup()
	c.RecordDecisionAction("ALLOW")
	c.RecordDecisionAction("ALLOW")
	c.RecordDecisionAction("DENY")
	c.SetRulesLoaded(12)

	if got := testutil.ToFloat64(c.auditEnqueued); got != 2 {
		t.Errorf("enqueued = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.auditDropped); got != 1 {
		t.Errorf("dropped = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.auditFlushedBatch); got != 1 {
		t.Errorf("flushed batches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.decisionsTotal.WithLabelValues("ALLOW")); got != 2 {
		t.Errorf("ALLOW decisions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.rulesLoaded); got != 12 {
		t.Errorf("rules loaded = %v, want 12", got)
	}
}

func TestCollectorDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	c := NewCollector(cfg, prometheus.NewRegistry())

	c.RecordEnqueued()
	c.DecisionObserved(time.Millisecond)
	c.RecordDecisionAction("BLOCK")

	if got := testutil.ToFloat64(c.auditEnqueued); got != 0 {
		t.Errorf("disabled collector recorded enqueued = %v", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	c := NewCollector(nil, prometheus.NewRegistry())
	c.RecordDecisionAction("ALLOW")
	c.DecisionObserved(250 * time.Microsecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "meridian_policy_decisions_total") {
		t.Error("exposition missing decisions counter")
	}
	if !strings.Contains(body, "meridian_policy_decision_duration_seconds") {
		t.Error("exposition missing decision latency histogram")
	}
}
