// Package temporal defines the temporal context model used by the policy
// engine: the contextual-integrity access request, time windows, the
// service-aware context enricher, and temporal role inheritance validation.
//
// A TemporalContext captures the situational facts of an access request at a
// point in time: business hours, emergency overrides, active temporal role
// elevations, and a freshness horizon after which the context must be
// regenerated rather than evaluated.
package temporal
