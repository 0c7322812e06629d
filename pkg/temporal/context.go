package temporal

import (
	"time"
)

// Situation classifies the operational situation a request is evaluated under.
type Situation string

const (
	SituationNormal      Situation = "NORMAL"
	SituationEmergency   Situation = "EMERGENCY"
	SituationIncident    Situation = "INCIDENT"
	SituationMaintenance Situation = "MAINTENANCE"
	SituationAudit       Situation = "AUDIT"
)

// Valid reports whether s is one of the recognized situations.
func (s Situation) Valid() bool {
	switch s {
	case SituationNormal, SituationEmergency, SituationIncident, SituationMaintenance, SituationAudit:
		return true
	}
	return false
}

// TemporalContext captures the situational facts of an access request at a
// point in time. Contexts are produced by the Enricher and treated as
// immutable by the evaluator.
type TemporalContext struct {
	// Timestamp is when this context was derived.
	Timestamp time.Time

	// Timezone is the IANA timezone name the business-hours flag was
	// computed in (e.g. "America/New_York").
	Timezone string

	// BusinessHours indicates the timestamp fell within the owning
	// service's business hours.
	BusinessHours bool

	// EmergencyOverride relaxes rules that require an active emergency.
	EmergencyOverride bool

	// Situation is the operational situation (NORMAL, EMERGENCY, ...).
	Situation Situation

	// ServiceID is the service this context was derived for, if any.
	ServiceID string

	// TemporalRole is the active time-bounded role elevation, if any
	// (e.g. "oncall_critical", "acting_manager", "security_incident_lead").
	TemporalRole string

	// BaseRole is the permanent role the temporal role elevates from.
	BaseRole string

	// InheritedPermissions are the permissions granted by the temporal role.
	InheritedPermissions map[string]struct{}

	// PermissionInheritanceChain is the ordered chain of roles the current
	// elevation inherits through; the last element is the temporal role.
	PermissionInheritanceChain []string

	// TemporalRoleValidUntil is when the temporal role elevation expires.
	TemporalRoleValidUntil *time.Time

	// AccessWindow restricts when this context permits access, if set.
	AccessWindow *TimeWindow

	// DataFreshnessSeconds is the freshness horizon: the maximum age of
	// this context before it must be regenerated. Zero means no horizon.
	DataFreshnessSeconds int

	// AuthorizationSource identifies who or what granted the temporal role.
	AuthorizationSource string

	// EmergencyAuthorizationID is the emergency ticket or incident that
	// authorized an emergency role elevation.
	EmergencyAuthorizationID string
}

// Age returns how old the context is relative to now.
func (tc *TemporalContext) Age(now time.Time) time.Duration {
	return now.Sub(tc.Timestamp)
}

// Fresh reports whether the context satisfies its freshness horizon.
// A context without a horizon is always fresh.
func (tc *TemporalContext) Fresh(now time.Time) bool {
	if tc.DataFreshnessSeconds <= 0 {
		return true
	}
	return tc.Age(now) <= time.Duration(tc.DataFreshnessSeconds)*time.Second
}

// CheckFresh returns a StaleContextError when the context has aged past its
// freshness horizon. Callers must not evaluate a stale context against rules.
func (tc *TemporalContext) CheckFresh(now time.Time) error {
	if tc.Fresh(now) {
		return nil
	}
	return &StaleContextError{
		Age:     tc.Age(now),
		Horizon: time.Duration(tc.DataFreshnessSeconds) * time.Second,
	}
}

// HasTemporalRole reports whether a temporal role elevation is active on the
// context.
func (tc *TemporalContext) HasTemporalRole() bool {
	return tc.TemporalRole != ""
}

// EmergencyActive reports whether the context carries any emergency signal:
// an override flag, an EMERGENCY situation, or an emergency authorization.
func (tc *TemporalContext) EmergencyActive() bool {
	return tc.EmergencyOverride ||
		tc.Situation == SituationEmergency ||
		tc.EmergencyAuthorizationID != ""
}
