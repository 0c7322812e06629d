package temporal

import (
	"fmt"
	"log/slog"
	"time"

	"veritas-hq/meridian/pkg/registry"
)

// Enricher derives a request's temporal facts from the service catalog and
// the incident registry: business hours in the service's timezone, emergency
// override from active incidents, criticality-tiered freshness horizon and
// access window, and the effective temporal role.
type Enricher struct {
	catalog   *ServiceCatalog
	incidents *registry.IncidentRegistry
	logger    *slog.Logger

	now func() time.Time
}

// NewEnricher creates an enricher over a service catalog and an incident
// registry. The catalog must not be nil; a nil incident registry means no
// incident-driven emergency handling.
func NewEnricher(catalog *ServiceCatalog, incidents *registry.IncidentRegistry, logger *slog.Logger) (*Enricher, error) {
	if catalog == nil {
		return nil, fmt.Errorf("service catalog cannot be nil")
	}
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service catalog: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Enricher{
		catalog:   catalog,
		incidents: incidents,
		logger:    logger.With("component", "temporal-enricher"),
		now:       time.Now,
	}, nil
}

// Enrich builds the temporal context for a service at the given instant.
// It returns ErrUnknownService when the service is not in the catalog.
func (e *Enricher) Enrich(serviceID string, now time.Time) (*TemporalContext, error) {
	svc, ok := e.catalog.Service(serviceID)
	if !ok {
		return nil, fmt.Errorf("service %q: %w", serviceID, ErrUnknownService)
	}

	criticality := svc.Criticality
	if criticality == "" {
		criticality = CriticalityMedium
	}

	loc := e.serviceLocation(serviceID, svc.Timezone)
	local := now.In(loc)

	bh := e.catalog.BusinessHours
	businessHours := bh.StartHour <= local.Hour() && local.Hour() < bh.EndHour

	// Saturday and Sunday get criticality-dependent treatment.
	if weekend := local.Weekday() == time.Saturday || local.Weekday() == time.Sunday; weekend && bh.WeekendSupport != nil {
		switch {
		case bh.WeekendSupport.CriticalOnly && criticality != CriticalityCritical:
			businessHours = false
		case bh.WeekendSupport.ReducedHours != nil:
			reduced := bh.WeekendSupport.ReducedHours
			businessHours = reduced.StartHour <= local.Hour() && local.Hour() < reduced.EndHour
		}
	}

	tc := &TemporalContext{
		Timestamp:            now,
		Timezone:             loc.String(),
		BusinessHours:        businessHours,
		Situation:            SituationNormal,
		ServiceID:            serviceID,
		DataFreshnessSeconds: FreshnessHorizonSeconds(criticality),
		AccessWindow:         e.accessWindow(criticality, local),
		AuthorizationSource:  "oncall_schedule",
		TemporalRole:         "oncall_" + criticality,
	}

	if e.incidents != nil {
		if primary, active := e.incidents.PrimaryForService(serviceID); active {
			tc.EmergencyOverride = true
			tc.Situation = SituationEmergency
			tc.TemporalRole = primary.TemporalRole()
			tc.AuthorizationSource = "incident_registry"
			tc.EmergencyAuthorizationID = primary.IncidentID

			e.logger.Info("active incident elevated context",
				"service", serviceID,
				"incident_id", primary.IncidentID,
				"temporal_role", tc.TemporalRole,
			)
		}
	}

	return tc, nil
}

// accessWindow builds the daily access window for a criticality tier in the
// service's local day. 24x7 tiers are unconstrained.
func (e *Enricher) accessWindow(criticality string, local time.Time) *TimeWindow {
	pattern, ok := e.catalog.AccessWindows[criticality]
	if !ok {
		pattern = AccessPatternBusinessHours
	}

	bh := e.catalog.BusinessHours
	var startHour, endHour int

	switch pattern {
	case AccessPattern24x7:
		return nil
	case AccessPatternBusinessHoursExtended:
		startHour = max(0, bh.StartHour-2)
		endHour = min(24, bh.EndHour+2)
	default:
		startHour = bh.StartHour
		endHour = bh.EndHour
	}

	// time.Date normalizes hour 24 to midnight of the next day, which keeps
	// the end bound exclusive.
	start := time.Date(local.Year(), local.Month(), local.Day(), startHour, 0, 0, 0, local.Location())
	end := time.Date(local.Year(), local.Month(), local.Day(), endHour, 0, 0, 0, local.Location())

	return &TimeWindow{Start: &start, End: &end}
}

// serviceLocation resolves a service's configured timezone, falling back to
// UTC on an unknown name.
func (e *Enricher) serviceLocation(serviceID, tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		e.logger.Warn("unknown service timezone, falling back to UTC",
			"service", serviceID,
			"timezone", tz,
			"error", err,
		)
		return time.UTC
	}
	return loc
}
