package registry

import (
	"sync"
	"time"
)

// HoldSubjectType identifies what kind of subject a legal hold applies to.
type HoldSubjectType string

const (
	HoldSubjectDataSubject HoldSubjectType = "data_subject"
	HoldSubjectService     HoldSubjectType = "service"
	HoldSubjectProject     HoldSubjectType = "project"
)

// LegalHold is an administrative preservation flag. An active hold on a
// subject forces denial of matching requests regardless of ordinary policy.
type LegalHold struct {
	HoldID      string
	SubjectType HoldSubjectType
	SubjectID   string
	Reason      string
	Active      bool
	CreatedAt   time.Time
}

// LegalHoldRegistry is a thread-safe in-memory set of legal holds.
type LegalHoldRegistry struct {
	mu    sync.RWMutex
	holds map[string]LegalHold

	// now is swappable for tests.
	now func() time.Time
}

// NewLegalHoldRegistry creates an empty registry.
func NewLegalHoldRegistry() *LegalHoldRegistry {
	return &LegalHoldRegistry{
		holds: make(map[string]LegalHold),
		now:   time.Now,
	}
}

// Add registers or replaces a hold. New holds are active.
func (r *LegalHoldRegistry) Add(holdID string, subjectType HoldSubjectType, subjectID, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.holds[holdID] = LegalHold{
		HoldID:      holdID,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Reason:      reason,
		Active:      true,
		CreatedAt:   r.now().UTC(),
	}
}

// Clear deactivates a hold without removing its record.
func (r *LegalHoldRegistry) Clear(holdID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.holds[holdID]; ok {
		h.Active = false
		r.holds[holdID] = h
	}
}

// Remove deletes a hold record entirely.
func (r *LegalHoldRegistry) Remove(holdID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.holds, holdID)
}

// List returns a copy of all hold records, active or not.
func (r *LegalHoldRegistry) List() []LegalHold {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]LegalHold, 0, len(r.holds))
	for _, h := range r.holds {
		out = append(out, h)
	}
	return out
}

// IsOnHold reports whether any active hold applies to the given subject.
func (r *LegalHoldRegistry) IsOnHold(subjectType HoldSubjectType, subjectID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, h := range r.holds {
		if h.Active && h.SubjectType == subjectType && h.SubjectID == subjectID {
			return true
		}
	}
	return false
}
