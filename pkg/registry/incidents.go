package registry

import (
	"sort"
	"sync"
	"time"
)

// StatusInvestigating is the incident status that activates emergency
// handling during context enrichment.
const StatusInvestigating = "investigating"

// Incident describes an operational incident reported against a service.
type Incident struct {
	IncidentID string
	Service    string
	Status     string
	Type       string
	Severity   string
	Metadata   map[string]string
	CreatedAt  time.Time
}

// Active reports whether the incident is currently under investigation.
func (in Incident) Active() bool {
	return in.Status == StatusInvestigating
}

// TemporalRole derives the role elevation an incident confers on responders.
// An explicit metadata role wins; otherwise the role follows the incident
// type and severity.
func (in Incident) TemporalRole() string {
	if role, ok := in.Metadata["role"]; ok && role != "" {
		return role
	}
	if in.Type == "security" {
		if in.Severity == "critical" {
			return "security_incident_lead"
		}
		return "incident_responder"
	}
	return "incident_responder"
}

// IncidentRegistry is a thread-safe in-memory set of incidents.
type IncidentRegistry struct {
	mu        sync.RWMutex
	incidents map[string]Incident

	now func() time.Time
}

// NewIncidentRegistry creates an empty registry.
func NewIncidentRegistry() *IncidentRegistry {
	return &IncidentRegistry{
		incidents: make(map[string]Incident),
		now:       time.Now,
	}
}

// Add registers or replaces an incident. The metadata map is copied.
func (r *IncidentRegistry) Add(in Incident) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if in.CreatedAt.IsZero() {
		in.CreatedAt = r.now().UTC()
	}
	if in.Metadata != nil {
		md := make(map[string]string, len(in.Metadata))
		for k, v := range in.Metadata {
			md[k] = v
		}
		in.Metadata = md
	}
	r.incidents[in.IncidentID] = in
}

// Clear removes a single incident.
func (r *IncidentRegistry) Clear(incidentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.incidents, incidentID)
}

// ClearAll removes every incident.
func (r *IncidentRegistry) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.incidents = make(map[string]Incident)
}

// List returns a copy of all incidents ordered by creation time.
func (r *IncidentRegistry) List() []Incident {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Incident, 0, len(r.incidents))
	for _, in := range r.incidents {
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// ActiveForService returns the incidents under investigation for a service,
// oldest first.
func (r *IncidentRegistry) ActiveForService(service string) []Incident {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Incident
	for _, in := range r.incidents {
		if in.Service == service && in.Active() {
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// PrimaryForService returns the oldest active incident for a service, if any.
func (r *IncidentRegistry) PrimaryForService(service string) (Incident, bool) {
	active := r.ActiveForService(service)
	if len(active) == 0 {
		return Incident{}, false
	}
	return active[0], true
}
