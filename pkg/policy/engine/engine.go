package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"veritas-hq/meridian/pkg/registry"
	"veritas-hq/meridian/pkg/temporal"
)

// RuleSource loads raw rule records. Sources are free to read files, hit a
// store, or serve from memory; the engine only sees the record list.
type RuleSource interface {
	LoadRules(ctx context.Context) ([]RuleRecord, error)
}

// Engine couples an evaluator with a reloadable compiled rule set. Rule
// swaps are atomic with respect to in-flight evaluations: an evaluation
// sees either the old list or the new one, never a mix.
type Engine struct {
	evaluator *Evaluator
	source    RuleSource
	metrics   Metrics
	logger    *slog.Logger

	rulesMu sync.RWMutex
	rules   []CompiledRule
}

// NewEngine creates an engine and performs the initial rule load from the
// source. A nil source starts the engine with an empty rule list, which
// blocks everything until SetRules or a source is supplied via Reload.
func NewEngine(ctx context.Context, source RuleSource, holds *registry.LegalHoldRegistry, recorder DecisionRecorder, metrics Metrics, logger *slog.Logger) (*Engine, error) {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		evaluator: NewEvaluator(holds, recorder, metrics, logger),
		source:    source,
		metrics:   metrics,
		logger:    logger.With("component", "policy-engine"),
	}

	if source != nil {
		if err := e.Reload(ctx); err != nil {
			return nil, fmt.Errorf("initial rule load: %w", err)
		}
	}
	return e, nil
}

// Reload fetches rules from the source, compiles them, and swaps the active
// set. On any error the previous rules stay active.
func (e *Engine) Reload(ctx context.Context) error {
	if e.source == nil {
		return fmt.Errorf("no rule source configured")
	}

	records, err := e.source.LoadRules(ctx)
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}

	compiled, err := Compile(records)
	if err != nil {
		return fmt.Errorf("compiling rules: %w", err)
	}

	e.swap(compiled)
	e.logger.Info("rules reloaded", "count", len(compiled))
	return nil
}

// SetRules compiles and installs the given records, replacing the active
// set. Used by callers that manage rules in code rather than via a source.
func (e *Engine) SetRules(records []RuleRecord) error {
	compiled, err := Compile(records)
	if err != nil {
		return err
	}
	e.swap(compiled)
	return nil
}

func (e *Engine) swap(compiled []CompiledRule) {
	e.rulesMu.Lock()
	e.rules = compiled
	e.rulesMu.Unlock()
	e.metrics.SetRulesLoaded(len(compiled))
}

// Rules returns a copy of the active compiled rules in priority order.
func (e *Engine) Rules() []CompiledRule {
	e.rulesMu.RLock()
	defer e.rulesMu.RUnlock()
	out := make([]CompiledRule, len(e.rules))
	copy(out, e.rules)
	return out
}

// RuleCount returns the number of active compiled rules.
func (e *Engine) RuleCount() int {
	e.rulesMu.RLock()
	defer e.rulesMu.RUnlock()
	return len(e.rules)
}

// Evaluate decides one request against the active rule set.
func (e *Engine) Evaluate(req *temporal.AccessRequest) (*Decision, error) {
	e.rulesMu.RLock()
	rules := e.rules
	e.rulesMu.RUnlock()
	return e.evaluator.Evaluate(req, rules)
}
