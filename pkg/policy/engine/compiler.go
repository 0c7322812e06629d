package engine

import (
	"fmt"

	"veritas-hq/meridian/pkg/temporal"
)

// Compile transforms raw rule records into evaluation-ready compiled rules.
// Input order is preserved and defines evaluation priority. Compilation is a
// pure transformation with no I/O; any malformed matcher, action, situation,
// or access window fails the whole compile with a CompileError.
func Compile(records []RuleRecord) ([]CompiledRule, error) {
	compiled := make([]CompiledRule, 0, len(records))

	for i, rec := range records {
		rule, err := compileRule(rec, i)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, rule)
	}
	return compiled, nil
}

func compileRule(rec RuleRecord, index int) (CompiledRule, error) {
	fail := func(field string, err error) (CompiledRule, error) {
		return CompiledRule{}, &CompileError{RuleID: rec.ID, Index: index, Field: field, Err: err}
	}

	action := Action(rec.Action)
	if rec.Action == "" {
		action = ActionBlock
	}
	if !action.Valid() {
		return fail("action", fmt.Errorf("unknown action %q", rec.Action))
	}

	rule := CompiledRule{
		ID:                       rec.ID,
		Action:                   action,
		RequireEmergencyOverride: rec.TemporalContext.RequireEmergencyOverride,
	}

	var err error
	if rule.DataType, err = compileMatcher(rec.Tuples.DataType); err != nil {
		return fail("data_type matcher", err)
	}
	if rule.DataSender, err = compileMatcher(rec.Tuples.DataSender); err != nil {
		return fail("data_sender matcher", err)
	}
	if rule.DataRecipient, err = compileMatcher(rec.Tuples.DataRecipient); err != nil {
		return fail("data_recipient matcher", err)
	}
	if rule.TransmissionPrinciple, err = compileMatcher(rec.Tuples.TransmissionPrinciple); err != nil {
		return fail("transmission_principle matcher", err)
	}

	if s := rec.TemporalContext.Situation; s != "" {
		situation := temporal.Situation(s)
		if !situation.Valid() {
			return fail("situation", fmt.Errorf("unknown situation %q", s))
		}
		rule.Situation = situation
	}

	if w := rec.TemporalContext.AccessWindow; w != nil {
		window, err := temporal.ParseTimeWindow(w.Start, w.End)
		if err != nil {
			return fail("access_window", err)
		}
		rule.AccessWindow = window
	}

	return rule, nil
}

// compileMatcher resolves a raw matcher spec into its variant. An absent
// spec or a lone "*" matches anything; a single value matches exactly; a
// list becomes a set for O(1) membership.
func compileMatcher(spec MatcherSpec) (FieldMatcher, error) {
	if !spec.defined {
		return FieldMatcher{kind: matchAny}, nil
	}
	switch len(spec.values) {
	case 0:
		return FieldMatcher{}, fmt.Errorf("matcher list cannot be empty")
	case 1:
		if spec.values[0] == "*" {
			return FieldMatcher{kind: matchAny}, nil
		}
		return FieldMatcher{kind: matchExact, exact: spec.values[0]}, nil
	}

	set := make(map[string]struct{}, len(spec.values))
	for _, v := range spec.values {
		set[v] = struct{}{}
	}
	return FieldMatcher{kind: matchOneOf, oneOf: set}, nil
}
