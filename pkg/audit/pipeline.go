package audit

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Config contains configuration for the audit pipeline.
type Config struct {
	// Enabled enables decision recording. The pipeline still aggregates
	// latency metrics while disabled.
	Enabled bool

	// SampleRate is the fraction of decisions enqueued, in [0, 1].
	// Default: 1.0
	SampleRate float64

	// QueueSize is the capacity of the bounded enqueue channel. A full
	// queue drops records rather than blocking the caller.
	// Default: 1024
	QueueSize int

	// BatchSize is the number of records that triggers an immediate flush.
	// Default: 64
	BatchSize int

	// FlushInterval flushes any partial batch on a fixed cadence.
	// Default: 500 milliseconds
	FlushInterval time.Duration

	// WriteTimeout bounds a single sink write.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// ShutdownTimeout bounds the wait for the background worker on Close.
	// Default: 5 seconds
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		SampleRate:      1.0,
		QueueSize:       1024,
		BatchSize:       64,
		FlushInterval:   500 * time.Millisecond,
		WriteTimeout:    5 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("sample rate must be in [0, 1], got %v", c.SampleRate)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue size must be positive, got %d", c.QueueSize)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.FlushInterval <= 0 {
		return fmt.Errorf("flush interval must be positive, got %v", c.FlushInterval)
	}
	return nil
}

// Pipeline records policy decisions asynchronously. Producers enqueue onto a
// bounded channel without blocking; one background consumer batches records
// and appends them to the sink. Sink failures are logged and swallowed.
type Pipeline struct {
	config  *Config
	sink    Sink
	metrics MetricsSink
	logger  *slog.Logger

	queue    chan DecisionRecord
	flushReq chan chan struct{}
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once

	enabled atomic.Bool

	enqueued       atomic.Uint64
	dropped        atomic.Uint64
	flushedBatches atomic.Uint64
	lastFlushNanos atomic.Int64
	decisionCount  atomic.Uint64
	decisionNanos  atomic.Int64
}

// NewPipeline creates a pipeline writing to sink and starts its background
// consumer. A nil metrics sink disables export; counters are still kept for
// Snapshot.
func NewPipeline(config *Config, sink Sink, metrics MetricsSink, logger *slog.Logger) (*Pipeline, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid audit config: %w", err)
	}
	if sink == nil {
		return nil, fmt.Errorf("audit sink cannot be nil")
	}
	if metrics == nil {
		metrics = NopMetricsSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pipeline{
		config:   config,
		sink:     sink,
		metrics:  metrics,
		logger:   logger.With("component", "audit.pipeline"),
		queue:    make(chan DecisionRecord, config.QueueSize),
		flushReq: make(chan chan struct{}),
		done:     make(chan struct{}),
	}
	p.enabled.Store(config.Enabled)

	p.wg.Add(1)
	go p.worker()

	p.logger.Info("audit pipeline started",
		"sample_rate", config.SampleRate,
		"queue_size", config.QueueSize,
		"batch_size", config.BatchSize,
		"flush_interval", config.FlushInterval,
	)
	return p, nil
}

// SetEnabled toggles recording at runtime. Disabling short-circuits
// RecordDecision before sampling.
func (p *Pipeline) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

// Enabled reports whether recording is active.
func (p *Pipeline) Enabled() bool {
	return p.enabled.Load()
}

// RecordDecision submits a decision for audit. The latency aggregate is
// updated for every call; sampling and the enable switch only govern
// enqueueing. Never blocks: a full queue drops the record.
func (p *Pipeline) RecordDecision(rec DecisionRecord) {
	latency := time.Duration(rec.LatencyMicros) * time.Microsecond
	p.decisionCount.Add(1)
	p.decisionNanos.Add(int64(latency))
	p.metrics.DecisionObserved(latency)

	if !p.enabled.Load() {
		return
	}
	if p.config.SampleRate <= 0 {
		return
	}
	if p.config.SampleRate < 1 && rand.Float64() >= p.config.SampleRate {
		return
	}

	if rec.RecordID == "" {
		rec.RecordID = uuid.New().String()
	}

	select {
	case p.queue <- rec:
		p.enqueued.Add(1)
		p.metrics.RecordEnqueued()
	default:
		p.dropped.Add(1)
		p.metrics.RecordDropped()
		p.logger.Debug("audit queue full, dropping record",
			"request_id", rec.RequestID,
			"queue_size", p.config.QueueSize,
		)
	}
}

// Flush synchronously drains the queue and persists all pending records.
// Returns once the flush completes or the pipeline is closed.
func (p *Pipeline) Flush() {
	reply := make(chan struct{})
	select {
	case p.flushReq <- reply:
		<-reply
	case <-p.done:
	}
}

// Snapshot returns the current pipeline counters.
func (p *Pipeline) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Enqueued:       p.enqueued.Load(),
		Dropped:        p.dropped.Load(),
		FlushedBatches: p.flushedBatches.Load(),
		LastFlush:      time.Duration(p.lastFlushNanos.Load()),
		DecisionCount:  p.decisionCount.Load(),
		DecisionTotal:  time.Duration(p.decisionNanos.Load()),
	}
}

// Close stops the consumer after a final flush of everything enqueued. The
// wait for the worker is bounded by ShutdownTimeout.
func (p *Pipeline) Close() error {
	p.once.Do(func() {
		p.logger.Info("shutting down audit pipeline")
		close(p.done)

		workerDone := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(workerDone)
		}()

		select {
		case <-workerDone:
			p.logger.Info("audit pipeline shut down")
		case <-time.After(p.config.ShutdownTimeout):
			p.logger.Warn("audit worker did not stop within timeout",
				"timeout", p.config.ShutdownTimeout,
			)
		}
	})
	return nil
}

// worker is the single background consumer. It batches records up to
// BatchSize or FlushInterval, whichever comes first.
func (p *Pipeline) worker() {
	defer p.wg.Done()

	batch := make([]DecisionRecord, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case rec := <-p.queue:
			batch = append(batch, rec)
			if len(batch) >= p.config.BatchSize {
				batch = p.flushBatch(batch)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				batch = p.flushBatch(batch)
			}

		case reply := <-p.flushReq:
			batch = p.drainInto(batch)
			batch = p.flushBatch(batch)
			close(reply)

		case <-p.done:
			batch = p.drainInto(batch)
			p.flushBatch(batch)
			return
		}
	}
}

// drainInto empties the queue into the current batch without blocking.
func (p *Pipeline) drainInto(batch []DecisionRecord) []DecisionRecord {
	for {
		select {
		case rec := <-p.queue:
			batch = append(batch, rec)
		default:
			return batch
		}
	}
}

// flushBatch appends the batch to the sink, swallowing write failures, and
// returns an empty batch reusing the same backing array.
func (p *Pipeline) flushBatch(batch []DecisionRecord) []DecisionRecord {
	if len(batch) == 0 {
		return batch
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	if err := p.sink.Append(ctx, batch); err != nil {
		p.logger.Error("audit flush failed",
			"records", len(batch),
			"error", err,
		)
		return batch[:0]
	}
	duration := time.Since(start)

	p.flushedBatches.Add(1)
	p.lastFlushNanos.Store(int64(duration))
	p.metrics.BatchFlushed(len(batch), duration)

	p.logger.Debug("audit batch flushed",
		"records", len(batch),
		"duration_ms", duration.Milliseconds(),
	)
	return batch[:0]
}
