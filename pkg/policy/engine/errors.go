package engine

import "fmt"

// CompileError reports a rule that could not be compiled. Compilation fails
// eagerly; a malformed rule never reaches evaluation.
type CompileError struct {
	// RuleID is the rule's declared ID, possibly empty.
	RuleID string

	// Index is the rule's position in the input list.
	Index int

	// Field names the offending part of the rule.
	Field string

	// Err is the underlying cause.
	Err error
}

// Error returns a string representation of the error.
func (e *CompileError) Error() string {
	id := e.RuleID
	if id == "" {
		id = fmt.Sprintf("#%d", e.Index)
	}
	return fmt.Sprintf("rule %s: invalid %s: %v", id, e.Field, e.Err)
}

// Unwrap returns the underlying error.
func (e *CompileError) Unwrap() error {
	return e.Err
}
