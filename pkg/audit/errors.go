package audit

import "fmt"

// SinkError wraps a failure in a durable sink operation.
type SinkError struct {
	Sink string
	Op   string
	Err  error
}

// NewSinkError creates a sink error.
func NewSinkError(sink, op string, err error) *SinkError {
	return &SinkError{Sink: sink, Op: op, Err: err}
}

// Error returns the error message.
func (e *SinkError) Error() string {
	return fmt.Sprintf("audit sink %s: %s: %v", e.Sink, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *SinkError) Unwrap() error {
	return e.Err
}
