package org

import (
	"fmt"
	"sync"
	"time"
)

// DefaultTTL is the snapshot lifetime used when the caller does not pass one.
const DefaultTTL = 5 * time.Minute

// Cache holds the most recently loaded snapshot for TTL-bounded lookups.
// Load replaces the whole snapshot atomically; there is no background
// refresh, invalidation is explicit reload only.
type Cache struct {
	mu       sync.RWMutex
	snapshot *Snapshot
	loadedAt time.Time
	ttl      time.Duration
}

// NewCache creates an empty cache. A cache with no snapshot is expired.
func NewCache() *Cache {
	return &Cache{ttl: DefaultTTL}
}

// Load normalizes an export and installs it as the current snapshot. A
// non-positive ttl keeps the default. The snapshot's warnings are returned
// for the caller to surface.
func (c *Cache) Load(export Export, ttl time.Duration, now time.Time) ([]string, error) {
	snapshot, err := Normalize(export)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c.mu.Lock()
	c.snapshot = snapshot
	c.loadedAt = now
	c.ttl = ttl
	c.mu.Unlock()

	return snapshot.Warnings, nil
}

// Expired reports whether the cache has no usable snapshot.
func (c *Cache) Expired(now time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot == nil || now.Sub(c.loadedAt) > c.ttl
}

// Context computes the organizational relationship between two people from
// the current snapshot. It returns an OrgCacheExpiredError when the snapshot
// is missing or past its TTL, and ErrUnknownPerson when either party is not
// in the snapshot.
func (c *Cache) Context(senderID, recipientID string, now time.Time) (*OrgContext, error) {
	c.mu.RLock()
	snapshot, loadedAt, ttl := c.snapshot, c.loadedAt, c.ttl
	c.mu.RUnlock()

	if snapshot == nil || now.Sub(loadedAt) > ttl {
		return nil, &OrgCacheExpiredError{LoadedAt: loadedAt, TTL: ttl}
	}

	sender, ok := snapshot.findUser(senderID)
	if !ok {
		return nil, fmt.Errorf("sender %q: %w", senderID, ErrUnknownPerson)
	}
	recipient, ok := snapshot.findUser(recipientID)
	if !ok {
		return nil, fmt.Errorf("recipient %q: %w", recipientID, ErrUnknownPerson)
	}

	relationship := RelationshipPeer
	switch {
	case sender.ManagerID == recipient.ID:
		relationship = RelationshipSubordinate
	case recipient.ManagerID == sender.ID:
		relationship = RelationshipManager
	}

	return &OrgContext{
		SenderDepartment:        snapshot.departmentName(sender.DepartmentID),
		RecipientDepartment:     snapshot.departmentName(recipient.DepartmentID),
		RelationshipType:        relationship,
		OrganizationalDistance:  snapshot.distance(sender, recipient, relationship),
		SenderClearance:         sender.SecurityClearance,
		RecipientClearance:      recipient.SecurityClearance,
		EmergencyAuthorizations: sender.EmergencyAuthorizations,
		SharedProjects:          snapshot.sharedProjects(sender, recipient),
	}, nil
}

// findUser resolves a person by ID first, then by display name.
func (s *Snapshot) findUser(ref string) (normalizedUser, bool) {
	if u, ok := s.Users[ref]; ok {
		return u, true
	}
	for _, u := range s.Users {
		if u.Name == ref {
			return u, true
		}
	}
	return normalizedUser{}, false
}

func (s *Snapshot) departmentName(id string) string {
	if d, ok := s.Departments[id]; ok {
		return d.Name
	}
	return ""
}

// distance is a coarse hop count: direct reporting lines and same-department
// peers are one hop apart, everyone else two.
func (s *Snapshot) distance(sender, recipient normalizedUser, relationship RelationshipType) int {
	if relationship != RelationshipPeer {
		return 1
	}
	if sender.DepartmentID != "" && sender.DepartmentID == recipient.DepartmentID {
		return 1
	}
	return 2
}

// sharedProjects returns the IDs of projects both people are members of,
// in snapshot iteration order.
func (s *Snapshot) sharedProjects(sender, recipient normalizedUser) []string {
	var shared []string
	for id, p := range s.Projects {
		if p.hasMember(sender) && p.hasMember(recipient) {
			shared = append(shared, id)
		}
	}
	return shared
}

func (p normalizedProject) hasMember(u normalizedUser) bool {
	for _, m := range p.TeamMemberIDs {
		if m == u.ID || m == u.Name {
			return true
		}
	}
	return false
}
