package config

import "time"

// Default values for configuration fields.
const (
	DefaultRulesPath        = "./rules.yaml"
	DefaultRulesWatch       = false
	DefaultDebounceInterval = 100 * time.Millisecond

	DefaultOrgCacheTTL = 5 * time.Minute

	DefaultAuditEnabled       = true
	DefaultAuditSampleRate    = 1.0
	DefaultAuditQueueSize     = 1024
	DefaultAuditBatchSize     = 64
	DefaultAuditFlushInterval = 500 * time.Millisecond
	DefaultAuditBackend       = "file"
	DefaultAuditFilePath      = "data/audit.ndjson"
	DefaultAuditSQLitePath    = "data/audit.db"
	DefaultSQLiteWALMode      = true
	DefaultSQLiteBusyTimeout  = 5 * time.Second
	DefaultRetentionDays      = 90
	DefaultPruneSchedule      = "0 3 * * *"

	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"

	DefaultMetricsEnabled = true
	DefaultMetricsAddress = "127.0.0.1:9090"
	DefaultMetricsPath    = "/metrics"
)

// DefaultConfig returns a configuration populated with defaults. LoadConfig
// unmarshals on top of it, so fields absent from the file keep their
// default values.
func DefaultConfig() *Config {
	return &Config{
		Rules: RulesConfig{
			Path:             DefaultRulesPath,
			Watch:            DefaultRulesWatch,
			DebounceInterval: DefaultDebounceInterval,
		},
		Org: OrgConfig{
			CacheTTL: DefaultOrgCacheTTL,
		},
		Audit: AuditConfig{
			Enabled:       DefaultAuditEnabled,
			SampleRate:    DefaultAuditSampleRate,
			QueueSize:     DefaultAuditQueueSize,
			BatchSize:     DefaultAuditBatchSize,
			FlushInterval: DefaultAuditFlushInterval,
			Backend:       DefaultAuditBackend,
			File: FileSinkConfig{
				Path: DefaultAuditFilePath,
			},
			SQLite: SQLiteSinkConfig{
				Path:        DefaultAuditSQLitePath,
				WALMode:     DefaultSQLiteWALMode,
				BusyTimeout: DefaultSQLiteBusyTimeout,
			},
			Retention: RetentionConfig{
				Days:          DefaultRetentionDays,
				PruneSchedule: DefaultPruneSchedule,
			},
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:  DefaultLoggingLevel,
				Format: DefaultLoggingFormat,
			},
			Metrics: MetricsConfig{
				Enabled:       DefaultMetricsEnabled,
				ListenAddress: DefaultMetricsAddress,
				Path:          DefaultMetricsPath,
			},
		},
	}
}
