package temporal

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownService indicates the enricher was asked about a service that is
// not present in the service catalog.
var ErrUnknownService = errors.New("service not found in catalog")

// StaleContextError indicates a temporal context aged past its freshness
// horizon. It is a fatal precondition failure for the current call: the
// caller must re-enrich the context before retrying. It is never converted
// into a decision and never audited as one.
type StaleContextError struct {
	// Age is how old the context was when checked.
	Age time.Duration

	// Horizon is the maximum permitted age.
	Horizon time.Duration
}

// Error returns the error message.
func (e *StaleContextError) Error() string {
	return fmt.Sprintf("temporal context stale: age %v exceeds freshness horizon %v; re-enrich before retrying", e.Age, e.Horizon)
}
