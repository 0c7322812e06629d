package audit

import "context"

// Sink is a durable destination for audit batches. Append is called only by
// the pipeline's single background consumer.
type Sink interface {
	// Append persists a batch of records.
	Append(ctx context.Context, records []DecisionRecord) error

	// Close releases the sink's resources.
	Close() error
}

// ReadableSink is a sink that can return its stored records, used by
// operational tooling and durability tests.
type ReadableSink interface {
	Sink

	// ReadEntries returns all stored records in append order.
	ReadEntries(ctx context.Context) ([]DecisionRecord, error)

	// Clear removes all stored records.
	Clear(ctx context.Context) error
}
