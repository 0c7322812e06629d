package config

import (
	"fmt"
	"strings"
)

// FieldError describes a single invalid configuration field.
type FieldError struct {
	Field   string
	Value   any
	Message string
}

// Error returns a string representation of the error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Message, e.Value)
}

// ValidationError aggregates all invalid fields found in one pass.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a string representation of the error.
func (e ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Error()
	}
	return fmt.Sprintf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// Validate checks the configuration and reports every invalid field.
func Validate(cfg *Config) error {
	var errs []FieldError

	if cfg.Rules.Path == "" {
		errs = append(errs, FieldError{"rules.path", cfg.Rules.Path, "cannot be empty"})
	}
	if cfg.Rules.DebounceInterval < 0 {
		errs = append(errs, FieldError{"rules.debounce_interval", cfg.Rules.DebounceInterval, "cannot be negative"})
	}

	if cfg.Org.CacheTTL <= 0 {
		errs = append(errs, FieldError{"org.cache_ttl", cfg.Org.CacheTTL, "must be positive"})
	}

	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	if cfg.SampleRate < 0 || cfg.SampleRate > 1 {
		errs = append(errs, FieldError{"audit.sample_rate", cfg.SampleRate, "must be in [0, 1]"})
	}
	if cfg.QueueSize <= 0 {
		errs = append(errs, FieldError{"audit.queue_size", cfg.QueueSize, "must be positive"})
	}
	if cfg.BatchSize <= 0 {
		errs = append(errs, FieldError{"audit.batch_size", cfg.BatchSize, "must be positive"})
	}
	if cfg.FlushInterval <= 0 {
		errs = append(errs, FieldError{"audit.flush_interval", cfg.FlushInterval, "must be positive"})
	}

	switch cfg.Backend {
	case "file":
		if cfg.File.Path == "" {
			errs = append(errs, FieldError{"audit.file.path", cfg.File.Path, "cannot be empty"})
		}
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{"audit.sqlite.path", cfg.SQLite.Path, "cannot be empty"})
		}
	default:
		errs = append(errs, FieldError{"audit.backend", cfg.Backend, "must be file or sqlite"})
	}

	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{"audit.retention.days", cfg.Retention.Days, "cannot be negative"})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{"telemetry.logging.level", cfg.Logging.Level, "must be debug, info, warn, or error"})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{"telemetry.logging.format", cfg.Logging.Format, "must be json or text"})
	}

	if cfg.Metrics.Enabled && cfg.Metrics.ListenAddress == "" {
		errs = append(errs, FieldError{"telemetry.metrics.listen_address", cfg.Metrics.ListenAddress, "cannot be empty when metrics are enabled"})
	}

	return errs
}
