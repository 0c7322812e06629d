package config

import "time"

// ConfigBuilder constructs configurations programmatically, starting from
// the defaults. Intended for tests and embedding.
type ConfigBuilder struct {
	cfg *Config
}

// NewConfigBuilder creates a builder seeded with DefaultConfig.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{cfg: DefaultConfig()}
}

// WithRulesPath sets the rule source path.
func (b *ConfigBuilder) WithRulesPath(path string) *ConfigBuilder {
	b.cfg.Rules.Path = path
	return b
}

// WithRuleWatching enables hot reload with the given debounce interval.
func (b *ConfigBuilder) WithRuleWatching(debounce time.Duration) *ConfigBuilder {
	b.cfg.Rules.Watch = true
	b.cfg.Rules.DebounceInterval = debounce
	return b
}

// WithCatalogPath sets the service catalog path.
func (b *ConfigBuilder) WithCatalogPath(path string) *ConfigBuilder {
	b.cfg.Catalog.Path = path
	return b
}

// WithOrgExport sets the org export path and cache TTL.
func (b *ConfigBuilder) WithOrgExport(path string, ttl time.Duration) *ConfigBuilder {
	b.cfg.Org.ExportPath = path
	b.cfg.Org.CacheTTL = ttl
	return b
}

// WithAuditBackend selects the audit sink backend.
func (b *ConfigBuilder) WithAuditBackend(backend string) *ConfigBuilder {
	b.cfg.Audit.Backend = backend
	return b
}

// WithAuditSampleRate sets the audit sampling rate.
func (b *ConfigBuilder) WithAuditSampleRate(rate float64) *ConfigBuilder {
	b.cfg.Audit.SampleRate = rate
	return b
}

// WithMetricsDisabled turns off metric collection.
func (b *ConfigBuilder) WithMetricsDisabled() *ConfigBuilder {
	b.cfg.Telemetry.Metrics.Enabled = false
	return b
}

// Build validates and returns the configuration.
func (b *ConfigBuilder) Build() (*Config, error) {
	if err := Validate(b.cfg); err != nil {
		return nil, err
	}
	return b.cfg, nil
}
