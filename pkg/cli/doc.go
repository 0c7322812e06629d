// Package cli provides shared helpers for the meridian command line:
// typed command errors and shutdown signal handling.
package cli
