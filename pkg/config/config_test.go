package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
rules:
  path: /etc/meridian/rules.d
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Rules.Path != "/etc/meridian/rules.d" {
		t.Errorf("Rules.Path = %q, want /etc/meridian/rules.d", cfg.Rules.Path)
	}
	if cfg.Audit.QueueSize != DefaultAuditQueueSize {
		t.Errorf("Audit.QueueSize = %d, want default %d", cfg.Audit.QueueSize, DefaultAuditQueueSize)
	}
	if !cfg.Audit.Enabled {
		t.Error("Audit.Enabled lost its true default")
	}
	if cfg.Org.CacheTTL != DefaultOrgCacheTTL {
		t.Errorf("Org.CacheTTL = %v, want default %v", cfg.Org.CacheTTL, DefaultOrgCacheTTL)
	}
	if cfg.Telemetry.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
audit:
  enabled: false
  sample_rate: 0.25
  backend: sqlite
telemetry:
  logging:
    level: debug
    format: text
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Audit.Enabled {
		t.Error("Audit.Enabled = true, want false from file")
	}
	if cfg.Audit.SampleRate != 0.25 {
		t.Errorf("Audit.SampleRate = %v, want 0.25", cfg.Audit.SampleRate)
	}
	if cfg.Audit.Backend != "sqlite" {
		t.Errorf("Audit.Backend = %q, want sqlite", cfg.Audit.Backend)
	}
	if cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want text", cfg.Telemetry.Logging.Format)
	}
}

func TestLoadConfigValidationFailure(t *testing.T) {
	path := writeConfig(t, `
audit:
  sample_rate: 2.5
  backend: kafka
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig succeeded with invalid config")
	}
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error type = %T, want ValidationError", err)
	}
	if len(ve.Errors) != 2 {
		t.Errorf("reported %d field errors, want 2: %v", len(ve.Errors), ve)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadConfig succeeded on a missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "rules:\n  path: ./rules.yaml\n")

	t.Setenv("MERIDIAN_RULES_PATH", "/override/rules.yaml")
	t.Setenv("MERIDIAN_AUDIT_SAMPLE_RATE", "0.5")
	t.Setenv("MERIDIAN_AUDIT_ENABLED", "false")
	t.Setenv("MERIDIAN_ORG_CACHE_TTL", "90s")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides returned error: %v", err)
	}
	if cfg.Rules.Path != "/override/rules.yaml" {
		t.Errorf("Rules.Path = %q, want env override", cfg.Rules.Path)
	}
	if cfg.Audit.SampleRate != 0.5 {
		t.Errorf("Audit.SampleRate = %v, want 0.5", cfg.Audit.SampleRate)
	}
	if cfg.Audit.Enabled {
		t.Error("Audit.Enabled = true, want env override false")
	}
	if cfg.Org.CacheTTL != 90*time.Second {
		t.Errorf("Org.CacheTTL = %v, want 90s", cfg.Org.CacheTTL)
	}
}

func TestConfigBuilder(t *testing.T) {
	cfg, err := NewConfigBuilder().
		WithRulesPath("/tmp/rules.yaml").
		WithRuleWatching(50 * time.Millisecond).
		WithAuditBackend("sqlite").
		WithAuditSampleRate(0.1).
		WithMetricsDisabled().
		Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if cfg.Rules.Path != "/tmp/rules.yaml" || !cfg.Rules.Watch {
		t.Errorf("rules config not applied: %+v", cfg.Rules)
	}
	if cfg.Audit.Backend != "sqlite" || cfg.Audit.SampleRate != 0.1 {
		t.Errorf("audit config not applied: %+v", cfg.Audit)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("metrics still enabled after WithMetricsDisabled")
	}
}

func TestBuilderRejectsInvalid(t *testing.T) {
	if _, err := NewConfigBuilder().WithAuditSampleRate(3).Build(); err == nil {
		t.Fatal("Build succeeded with invalid sample rate")
	}
}
