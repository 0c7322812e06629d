// Package org ingests organizational export snapshots and answers
// relationship lookups for policy evaluation. Lookups prefer a graph-backed
// source when one is configured and otherwise serve from a TTL-bounded local
// cache; an expired cache fails the lookup rather than serving stale
// organizational facts.
package org
