// Package registry provides the in-memory operational state feeding policy
// evaluation: legal holds and active incidents. Registries are thread-safe,
// constructor-injected services with no persistence; durability is an
// external collaborator's responsibility.
package registry
