// Package engine compiles contextual-integrity policy rules and evaluates
// access requests against them. Evaluation is fully in-memory: a freshness
// gate on the temporal context, a legal-hold check, then an ordered
// first-match scan of the compiled rules with a default BLOCK.
package engine
