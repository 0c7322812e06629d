package config

import "time"

// Config is the root configuration structure for meridian.
type Config struct {
	// Rules configures where policy rules are loaded from.
	Rules RulesConfig `yaml:"rules"`

	// Catalog configures the service catalog used by the context enricher.
	Catalog CatalogConfig `yaml:"catalog"`

	// Org configures the organizational directory used for relationship
	// lookups.
	Org OrgConfig `yaml:"org"`

	// Audit configures the asynchronous decision audit pipeline.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// RulesConfig configures the policy rule source.
type RulesConfig struct {
	// Path is a rule file or a directory of rule files.
	// Default: "./rules.yaml"
	Path string `yaml:"path"`

	// Watch enables hot reload of rules on file changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval is the quiet period before a reload fires.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// CatalogConfig configures the service catalog.
type CatalogConfig struct {
	// Path is the catalog YAML file. Empty uses the built-in defaults.
	Path string `yaml:"path"`
}

// OrgConfig configures the organizational directory.
type OrgConfig struct {
	// ExportPath is a JSON export of users, departments, and projects.
	// Empty disables org lookups.
	ExportPath string `yaml:"export_path"`

	// CacheTTL is how long a loaded export stays fresh.
	// Default: 5m
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// AuditConfig configures the decision audit pipeline.
type AuditConfig struct {
	// Enabled enables decision recording.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// SampleRate is the fraction of decisions recorded, in [0, 1].
	// Default: 1.0
	SampleRate float64 `yaml:"sample_rate"`

	// QueueSize is the capacity of the bounded enqueue channel.
	// Default: 1024
	QueueSize int `yaml:"queue_size"`

	// BatchSize is the number of records that triggers an immediate flush.
	// Default: 64
	BatchSize int `yaml:"batch_size"`

	// FlushInterval flushes any partial batch on a fixed cadence.
	// Default: 500ms
	FlushInterval time.Duration `yaml:"flush_interval"`

	// Backend selects the sink: "file" (NDJSON) or "sqlite".
	// Default: "file"
	Backend string `yaml:"backend"`

	// File configures the NDJSON sink.
	File FileSinkConfig `yaml:"file"`

	// SQLite configures the SQLite sink.
	SQLite SQLiteSinkConfig `yaml:"sqlite"`

	// Retention configures periodic pruning of aged records.
	Retention RetentionConfig `yaml:"retention"`
}

// FileSinkConfig configures the NDJSON audit sink.
type FileSinkConfig struct {
	// Path is the NDJSON log file.
	// Default: "data/audit.ndjson"
	Path string `yaml:"path"`
}

// SQLiteSinkConfig configures the SQLite audit sink.
type SQLiteSinkConfig struct {
	// Path is the database file.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the SQLite busy timeout.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig configures audit record retention.
type RetentionConfig struct {
	// Days is how long records are kept. Zero disables pruning.
	// Default: 90
	Days int `yaml:"days"`

	// PruneSchedule is the cron expression for pruning runs. Empty
	// disables the scheduler.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig configures observability.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled enables metric collection and the scrape endpoint.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the scrape endpoint's listen address.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// Path is the scrape endpoint path.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
