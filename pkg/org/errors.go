package org

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownPerson indicates a lookup referenced a sender or recipient that
// is not present in the loaded snapshot.
var ErrUnknownPerson = errors.New("person not found in org snapshot")

// OrgCacheExpiredError indicates the local snapshot aged past its TTL and no
// graph fallback was available. The lookup fails rather than serving stale
// organizational facts.
type OrgCacheExpiredError struct {
	// LoadedAt is when the expired snapshot was loaded; zero when no
	// snapshot was ever loaded.
	LoadedAt time.Time

	// TTL is the snapshot's configured lifetime.
	TTL time.Duration
}

// Error returns the error message.
func (e *OrgCacheExpiredError) Error() string {
	if e.LoadedAt.IsZero() {
		return "org cache expired: no snapshot loaded"
	}
	return fmt.Sprintf("org cache expired: snapshot loaded at %s exceeded ttl %v; reload the export", e.LoadedAt.Format(time.RFC3339), e.TTL)
}

// ImportError aggregates the fatal problems found while validating an
// export. Warnings never appear here.
type ImportError struct {
	Errors []string
}

// Error returns the error message.
func (e *ImportError) Error() string {
	return fmt.Sprintf("org export rejected with %d error(s): %s", len(e.Errors), e.Errors[0])
}
