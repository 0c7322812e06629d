// Package config defines the YAML service configuration for meridian: rule
// source, service catalog, org directory, audit pipeline, and telemetry
// settings, with defaults, validation, and environment overrides.
package config
