// Package source provides rule sources for the policy engine: YAML files
// on disk, an in-memory source for embedding and tests, and an fsnotify
// watcher that debounces file changes into engine reloads.
package source
