// Package metrics provides the Prometheus collector for the policy
// evaluator: decision latency and outcomes, audit pipeline throughput, and
// org cache effectiveness. The collector is an optional strategy; components
// fall back to no-op sinks when metrics are disabled.
package metrics
