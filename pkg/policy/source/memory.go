package source

import (
	"context"
	"sync"

	"veritas-hq/meridian/pkg/policy/engine"
)

// MemorySource serves rule records from memory. Useful for embedding the
// engine and for tests.
type MemorySource struct {
	mu      sync.RWMutex
	records []engine.RuleRecord
}

// NewMemorySource creates a source with the given records.
func NewMemorySource(records []engine.RuleRecord) *MemorySource {
	s := &MemorySource{}
	s.SetRules(records)
	return s
}

// SetRules replaces the stored records. Callers still need to reload the
// engine for the change to take effect.
func (s *MemorySource) SetRules(records []engine.RuleRecord) {
	copied := make([]engine.RuleRecord, len(records))
	copy(copied, records)

	s.mu.Lock()
	s.records = copied
	s.mu.Unlock()
}

// LoadRules returns a copy of the stored records.
func (s *MemorySource) LoadRules(ctx context.Context) ([]engine.RuleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]engine.RuleRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}
