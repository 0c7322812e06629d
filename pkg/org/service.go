package org

import (
	"context"
	"log/slog"
	"time"
)

// GraphLookup answers relationship queries from an external graph backend.
// Implementations must fail fast; the service falls back to the local cache
// on any error.
type GraphLookup interface {
	Lookup(ctx context.Context, senderID, recipientID string) (*OrgContext, error)
}

// Metrics receives lookup outcome counters.
type Metrics interface {
	RecordOrgCacheHit()
	RecordOrgCacheMiss()
	RecordOrgGraphLookup()
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) RecordOrgCacheHit()    {}
func (NopMetrics) RecordOrgCacheMiss()   {}
func (NopMetrics) RecordOrgGraphLookup() {}

// Service answers organizational lookups, preferring a graph backend over
// the local TTL cache. A successful graph answer wins even when the cache is
// still fresh.
type Service struct {
	cache   *Cache
	graph   GraphLookup
	metrics Metrics
	logger  *slog.Logger

	now func() time.Time
}

// NewService creates a lookup service. A nil graph means cache-only
// operation.
func NewService(cache *Cache, graph GraphLookup, metrics Metrics, logger *slog.Logger) *Service {
	if cache == nil {
		cache = NewCache()
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cache:   cache,
		graph:   graph,
		metrics: metrics,
		logger:  logger.With("component", "org-service"),
		now:     time.Now,
	}
}

// Load ingests an export snapshot into the local cache, logging any
// normalization warnings.
func (s *Service) Load(export Export, ttl time.Duration) error {
	warnings, err := s.cache.Load(export, ttl, s.now())
	if err != nil {
		return err
	}
	for _, w := range warnings {
		s.logger.Warn("org export normalization warning", "warning", w)
	}
	s.logger.Info("org snapshot loaded",
		"users", len(export.Users),
		"departments", len(export.Departments),
		"projects", len(export.Projects),
		"warnings", len(warnings),
	)
	return nil
}

// Lookup resolves the organizational context between two people. The graph
// backend is tried first when configured; on graph failure the local cache
// answers, and an expired cache fails the lookup with OrgCacheExpiredError.
func (s *Service) Lookup(ctx context.Context, senderID, recipientID string) (*OrgContext, error) {
	if s.graph != nil {
		oc, err := s.graph.Lookup(ctx, senderID, recipientID)
		if err == nil {
			s.metrics.RecordOrgGraphLookup()
			return oc, nil
		}
		s.logger.Debug("graph lookup failed, falling back to cache",
			"sender", senderID,
			"recipient", recipientID,
			"error", err,
		)
	}

	oc, err := s.cache.Context(senderID, recipientID, s.now())
	if err != nil {
		s.metrics.RecordOrgCacheMiss()
		return nil, err
	}
	s.metrics.RecordOrgCacheHit()
	return oc, nil
}
