package engine

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"veritas-hq/meridian/pkg/temporal"
)

// Action is the outcome a rule assigns to a matching request.
type Action string

const (
	ActionAllow Action = "ALLOW"
	ActionDeny  Action = "DENY"
	ActionBlock Action = "BLOCK"
)

// Valid reports whether a is a recognized action.
func (a Action) Valid() bool {
	switch a {
	case ActionAllow, ActionDeny, ActionBlock:
		return true
	}
	return false
}

// Decision reasons. Kept as stable strings for audit consumers.
const (
	ReasonLegalHold   = "legal_hold_active"
	ReasonMatchedRule = "matched rule"
	ReasonNoMatch     = "no rule matched"
)

// Decision is the result of evaluating one access request.
type Decision struct {
	Action        Action
	MatchedRuleID string
	Reasons       []string
}

// MatcherSpec is the raw rule-file form of a field matcher: absent, the
// wildcard "*", a single string, or a list of strings.
type MatcherSpec struct {
	values  []string
	defined bool
}

// MatchAnySpec returns a spec matching any value.
func MatchAnySpec() MatcherSpec {
	return MatcherSpec{}
}

// MatchSpec returns a spec matching the given values. A single "*" matches
// any value.
func MatchSpec(values ...string) MatcherSpec {
	return MatcherSpec{values: values, defined: true}
}

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (m *MatcherSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*m = MatcherSpec{}
			return nil
		}
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*m = MatcherSpec{values: []string{s}, defined: true}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*m = MatcherSpec{values: list, defined: true}
		return nil
	}
	return fmt.Errorf("matcher must be a string or a list of strings (line %d)", node.Line)
}

// WindowSpec is the raw rule-file form of an access window. Bounds are
// RFC 3339 timestamps; an empty bound leaves that side open.
type WindowSpec struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// TupleMatchers are the raw field matchers of a rule.
type TupleMatchers struct {
	DataType              MatcherSpec `yaml:"data_type"`
	DataSender            MatcherSpec `yaml:"data_sender"`
	DataRecipient         MatcherSpec `yaml:"data_recipient"`
	TransmissionPrinciple MatcherSpec `yaml:"transmission_principle"`
}

// TemporalConstraints are the raw temporal conditions of a rule.
type TemporalConstraints struct {
	Situation                string      `yaml:"situation"`
	RequireEmergencyOverride bool        `yaml:"require_emergency_override"`
	AccessWindow             *WindowSpec `yaml:"access_window"`
}

// RuleRecord is one rule as loaded from a source, before compilation. The
// position of a record in its list is its evaluation priority.
type RuleRecord struct {
	ID              string              `yaml:"id"`
	Action          string              `yaml:"action"`
	Tuples          TupleMatchers       `yaml:"tuples"`
	TemporalContext TemporalConstraints `yaml:"temporal_context"`
}

type matcherKind int

const (
	matchAny matcherKind = iota
	matchExact
	matchOneOf
)

// FieldMatcher is a compiled field matcher: Any, Exact, or OneOf. The
// variant is resolved once at compile time so evaluation never inspects the
// raw rule shape.
type FieldMatcher struct {
	kind  matcherKind
	exact string
	oneOf map[string]struct{}
}

// Matches reports whether the matcher accepts the value.
func (m FieldMatcher) Matches(value string) bool {
	switch m.kind {
	case matchExact:
		return value == m.exact
	case matchOneOf:
		_, ok := m.oneOf[value]
		return ok
	default:
		return true
	}
}

// CompiledRule is an evaluation-ready rule. Compiled rules are immutable;
// the engine swaps whole slices on reload.
type CompiledRule struct {
	ID     string
	Action Action

	DataType              FieldMatcher
	DataSender            FieldMatcher
	DataRecipient         FieldMatcher
	TransmissionPrinciple FieldMatcher

	// Situation, when set, must equal the request context's situation.
	Situation temporal.Situation

	// RequireEmergencyOverride gates the rule on an active override flag.
	RequireEmergencyOverride bool

	// AccessWindow, when set, must contain the evaluation time.
	AccessWindow *temporal.TimeWindow
}

// Matches reports whether the rule matches the request at the given time.
// All four field matchers and every temporal condition must pass.
func (r *CompiledRule) Matches(req *temporal.AccessRequest, now time.Time) bool {
	if !r.DataType.Matches(req.DataType) {
		return false
	}
	if !r.DataSender.Matches(req.DataSender) {
		return false
	}
	if !r.DataRecipient.Matches(req.DataRecipient) {
		return false
	}
	if !r.TransmissionPrinciple.Matches(req.TransmissionPrinciple) {
		return false
	}
	if r.Situation != "" && r.Situation != req.Context.Situation {
		return false
	}
	if r.RequireEmergencyOverride && !req.Context.EmergencyOverride {
		return false
	}
	if r.AccessWindow != nil && !r.AccessWindow.Contains(now) {
		return false
	}
	return true
}
