package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config contains configuration for the metrics collector.
type Config struct {
	// Enabled enables metric recording.
	Enabled bool

	// Namespace is the metric namespace prefix.
	// Default: "meridian"
	Namespace string

	// DecisionDurationBuckets are the histogram buckets for decision
	// latency in seconds. Defaults cover the expected microsecond-to-
	// millisecond range of in-memory evaluation.
	DecisionDurationBuckets []float64
}

// DefaultConfig returns the default metrics configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:                 true,
		Namespace:               "meridian",
		DecisionDurationBuckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
	}
}

// Collector registers and records all Prometheus metrics for the evaluator.
// It implements the audit pipeline's metrics sink.
type Collector struct {
	config   *Config
	registry *prometheus.Registry

	decisionDuration prometheus.Histogram
	decisionsTotal   *prometheus.CounterVec

	auditEnqueued      prometheus.Counter
	auditDropped       prometheus.Counter
	auditFlushedBatch  prometheus.Counter
	auditFlushDuration prometheus.Histogram

	orgCacheHits    prometheus.Counter
	orgCacheMisses  prometheus.Counter
	orgGraphLookups prometheus.Counter

	rulesLoaded prometheus.Gauge
}

// NewCollector creates a collector on the given registry. A nil registry
// gets a fresh one.
func NewCollector(cfg *Config, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "meridian"
	}
	if len(cfg.DecisionDurationBuckets) == 0 {
		cfg.DecisionDurationBuckets = DefaultConfig().DecisionDurationBuckets
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		decisionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "policy",
			Name:      "decision_duration_seconds",
			Help:      "Wall-clock latency of policy decisions.",
			Buckets:   cfg.DecisionDurationBuckets,
		}),
		decisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "policy",
			Name:      "decisions_total",
			Help:      "Policy decisions by action.",
		}, []string{"action"}),

		auditEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "audit",
			Name:      "enqueued_total",
			Help:      "Audit records accepted onto the queue.",
		}),
		auditDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "audit",
			Name:      "dropped_total",
			Help:      "Audit records dropped because the queue was full.",
		}),
		auditFlushedBatch: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "audit",
			Name:      "flushed_batches_total",
			Help:      "Audit batches persisted to the sink.",
		}),
		auditFlushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "audit",
			Name:      "flush_duration_seconds",
			Help:      "Duration of audit batch writes.",
			Buckets:   prometheus.DefBuckets,
		}),

		orgCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "org",
			Name:      "cache_hits_total",
			Help:      "Org lookups answered by the local cache.",
		}),
		orgCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "org",
			Name:      "cache_misses_total",
			Help:      "Org lookups the local cache could not answer.",
		}),
		orgGraphLookups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "org",
			Name:      "graph_lookups_total",
			Help:      "Org lookups answered by the graph backend.",
		}),

		rulesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: "policy",
			Name:      "rules_loaded",
			Help:      "Number of compiled rules currently active.",
		}),
	}

	registry.MustRegister(
		c.decisionDuration,
		c.decisionsTotal,
		c.auditEnqueued,
		c.auditDropped,
		c.auditFlushedBatch,
		c.auditFlushDuration,
		c.orgCacheHits,
		c.orgCacheMisses,
		c.orgGraphLookups,
		c.rulesLoaded,
	)

	return c
}

// DecisionObserved records one decision's latency.
func (c *Collector) DecisionObserved(latency time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.decisionDuration.Observe(latency.Seconds())
}

// RecordDecisionAction counts a decision outcome.
func (c *Collector) RecordDecisionAction(action string) {
	if !c.config.Enabled {
		return
	}
	c.decisionsTotal.WithLabelValues(action).Inc()
}

// RecordEnqueued counts an audit record accepted onto the queue.
func (c *Collector) RecordEnqueued() {
	if !c.config.Enabled {
		return
	}
	c.auditEnqueued.Inc()
}

// RecordDropped counts an audit record dropped by a full queue.
func (c *Collector) RecordDropped() {
	if !c.config.Enabled {
		return
	}
	c.auditDropped.Inc()
}

// BatchFlushed records a persisted audit batch.
func (c *Collector) BatchFlushed(records int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.auditFlushedBatch.Inc()
	c.auditFlushDuration.Observe(duration.Seconds())
}

// RecordOrgCacheHit counts a lookup served by the local cache.
func (c *Collector) RecordOrgCacheHit() {
	if !c.config.Enabled {
		return
	}
	c.orgCacheHits.Inc()
}

// RecordOrgCacheMiss counts a lookup the local cache failed.
func (c *Collector) RecordOrgCacheMiss() {
	if !c.config.Enabled {
		return
	}
	c.orgCacheMisses.Inc()
}

// RecordOrgGraphLookup counts a lookup answered by the graph backend.
func (c *Collector) RecordOrgGraphLookup() {
	if !c.config.Enabled {
		return
	}
	c.orgGraphLookups.Inc()
}

// SetRulesLoaded sets the active compiled-rule count.
func (c *Collector) SetRulesLoaded(n int) {
	if !c.config.Enabled {
		return
	}
	c.rulesLoaded.Set(float64(n))
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
