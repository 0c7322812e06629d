// Package meridian wires the temporal contextual-integrity evaluator into
// one runtime: rule engine, context enricher, legal-hold and incident
// registries, role inheritance validation, organizational lookups, the
// audit pipeline, and metrics.
package meridian

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"veritas-hq/meridian/pkg/audit"
	"veritas-hq/meridian/pkg/config"
	"veritas-hq/meridian/pkg/org"
	"veritas-hq/meridian/pkg/policy/engine"
	"veritas-hq/meridian/pkg/policy/source"
	"veritas-hq/meridian/pkg/registry"
	"veritas-hq/meridian/pkg/telemetry/metrics"
	"veritas-hq/meridian/pkg/temporal"
)

// Options carries optional collaborators for a Runtime.
type Options struct {
	// Logger is used by all components. Nil uses slog.Default().
	Logger *slog.Logger

	// Graph is the optional organizational graph backend. Nil means
	// cache-only org lookups.
	Graph org.GraphLookup

	// RuleSource overrides the file source built from the configuration.
	RuleSource engine.RuleSource
}

// Runtime owns the full decision path: enrichment, rule evaluation, legal
// holds, incidents, role inheritance, org lookups, audit, and metrics.
// Construct with New, release with Close.
type Runtime struct {
	Engine      *engine.Engine
	Enricher    *temporal.Enricher
	Inheritance *temporal.RoleInheritanceValidator
	Holds       *registry.LegalHoldRegistry
	Incidents   *registry.IncidentRegistry
	Org         *org.Service
	Audit       *audit.Pipeline
	Metrics     *metrics.Collector

	cfg    *config.Config
	logger *slog.Logger

	sink      audit.Sink
	scheduler *audit.Scheduler
	watcher   *source.FileWatcher
}

// New builds a runtime from the configuration. The initial rule load must
// succeed; everything else degrades gracefully (no org export, no
// incidents, metrics disabled).
func New(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Runtime{
		cfg:       cfg,
		logger:    logger.With("component", "runtime"),
		Holds:     registry.NewLegalHoldRegistry(),
		Incidents: registry.NewIncidentRegistry(),
	}

	metricsCfg := metrics.DefaultConfig()
	metricsCfg.Enabled = cfg.Telemetry.Metrics.Enabled
	r.Metrics = metrics.NewCollector(metricsCfg, nil)

	catalog := temporal.DefaultServiceCatalog()
	if cfg.Catalog.Path != "" {
		var err error
		if catalog, err = temporal.LoadServiceCatalog(cfg.Catalog.Path); err != nil {
			return nil, err
		}
	}

	enricher, err := temporal.NewEnricher(catalog, r.Incidents, logger)
	if err != nil {
		return nil, err
	}
	r.Enricher = enricher
	r.Inheritance = temporal.NewRoleInheritanceValidator(logger)

	r.Org = org.NewService(org.NewCache(), opts.Graph, r.Metrics, logger)
	if cfg.Org.ExportPath != "" {
		if err := r.loadOrgExport(cfg.Org.ExportPath, cfg.Org.CacheTTL); err != nil {
			return nil, err
		}
	}

	if err := r.startAudit(ctx, cfg); err != nil {
		r.Close()
		return nil, err
	}

	ruleSource := opts.RuleSource
	if ruleSource == nil {
		ruleSource = source.NewFileSource(cfg.Rules.Path, logger)
	}

	eng, err := engine.NewEngine(ctx, ruleSource, r.Holds, r.Audit, r.Metrics, logger)
	if err != nil {
		r.Close()
		return nil, err
	}
	r.Engine = eng

	if cfg.Rules.Watch && opts.RuleSource == nil {
		if err := r.startWatcher(ctx, cfg); err != nil {
			r.Close()
			return nil, err
		}
	}

	return r, nil
}

// Evaluate decides a fully constructed request against the active rules.
func (r *Runtime) Evaluate(req *temporal.AccessRequest) (*engine.Decision, error) {
	return r.Engine.Evaluate(req)
}

// EvaluateService enriches a temporal context for the service and evaluates
// the 6-tuple against the active rules in one call.
func (r *Runtime) EvaluateService(dataType, dataSubject, dataSender, dataRecipient, transmissionPrinciple, serviceID string) (*engine.Decision, error) {
	tc, err := r.Enricher.Enrich(serviceID, time.Now())
	if err != nil {
		return nil, err
	}

	req, err := temporal.NewAccessRequest(dataType, dataSubject, dataSender, dataRecipient, transmissionPrinciple, *tc)
	if err != nil {
		return nil, err
	}
	return r.Engine.Evaluate(req)
}

// MetricsHandler returns the Prometheus scrape handler.
func (r *Runtime) MetricsHandler() http.Handler {
	return r.Metrics.Handler()
}

// Close flushes the audit pipeline and releases all background resources.
func (r *Runtime) Close() error {
	if r.watcher != nil {
		if err := r.watcher.Stop(); err != nil {
			r.logger.Warn("failed to stop rule watcher", "error", err)
		}
	}
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
	if r.Audit != nil {
		r.Audit.Flush()
		if err := r.Audit.Close(); err != nil {
			r.logger.Warn("failed to close audit pipeline", "error", err)
		}
	}
	if r.sink != nil {
		if err := r.sink.Close(); err != nil {
			return fmt.Errorf("closing audit sink: %w", err)
		}
	}
	return nil
}

func (r *Runtime) loadOrgExport(path string, ttl time.Duration) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read org export %q: %w", path, err)
	}
	var export org.Export
	if err := json.Unmarshal(data, &export); err != nil {
		return fmt.Errorf("failed to parse org export %q: %w", path, err)
	}
	return r.Org.Load(export, ttl)
}

func (r *Runtime) startAudit(ctx context.Context, cfg *config.Config) error {
	switch cfg.Audit.Backend {
	case "sqlite":
		sink, err := audit.NewSQLiteSink(&audit.SQLiteConfig{
			Path:        cfg.Audit.SQLite.Path,
			WALMode:     cfg.Audit.SQLite.WALMode,
			BusyTimeout: cfg.Audit.SQLite.BusyTimeout,
		})
		if err != nil {
			return err
		}
		r.sink = sink

		if cfg.Audit.Retention.Days > 0 && cfg.Audit.Retention.PruneSchedule != "" {
			pruner := audit.NewPruner(sink, &audit.RetentionConfig{
				RetentionDays: cfg.Audit.Retention.Days,
				PruneSchedule: cfg.Audit.Retention.PruneSchedule,
			})
			r.scheduler = audit.NewScheduler(pruner)
			if err := r.scheduler.Start(ctx); err != nil {
				return err
			}
		}
	default:
		sink, err := audit.NewFileSink(cfg.Audit.File.Path)
		if err != nil {
			return err
		}
		r.sink = sink
	}

	auditCfg := audit.DefaultConfig()
	auditCfg.Enabled = cfg.Audit.Enabled
	auditCfg.SampleRate = cfg.Audit.SampleRate
	auditCfg.QueueSize = cfg.Audit.QueueSize
	auditCfg.BatchSize = cfg.Audit.BatchSize
	auditCfg.FlushInterval = cfg.Audit.FlushInterval

	pipeline, err := audit.NewPipeline(auditCfg, r.sink, r.Metrics, r.logger)
	if err != nil {
		return err
	}
	r.Audit = pipeline
	return nil
}

func (r *Runtime) startWatcher(ctx context.Context, cfg *config.Config) error {
	wcfg := source.DefaultFileWatcherConfig()
	wcfg.Path = cfg.Rules.Path
	if cfg.Rules.DebounceInterval > 0 {
		wcfg.DebounceInterval = cfg.Rules.DebounceInterval
	}

	watcher, err := source.NewFileWatcher(wcfg, r.logger)
	if err != nil {
		return err
	}
	r.watcher = watcher

	go func() {
		if err := watcher.Watch(ctx, func() error {
			return r.Engine.Reload(context.Background())
		}); err != nil {
			r.logger.Error("rule watcher exited", "error", err)
		}
	}()
	return nil
}
