// Package audit provides the asynchronous decision audit pipeline: sampled,
// non-blocking enqueue from the evaluation hot path, a single background
// consumer that batches records to a durable sink, and scheduled retention
// pruning. Audit failures never propagate into the decision path.
package audit
