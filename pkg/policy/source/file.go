package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"veritas-hq/meridian/pkg/policy/engine"
)

// ruleDocument is the on-disk shape of a rule file.
type ruleDocument struct {
	Rules []engine.RuleRecord `yaml:"rules"`
}

// FileSource loads rule records from YAML files on disk. The path can be a
// single file or a directory; a directory contributes every .yaml and .yml
// file it contains, walked in lexical order so rule priority across files
// is stable.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a file-based rule source.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:   path,
		logger: logger.With("component", "rule-source"),
	}
}

// Path returns the configured file or directory path.
func (s *FileSource) Path() string {
	return s.path
}

// LoadRules loads all rule records from the configured path. A malformed
// file fails the whole load; a partial rule set must never go active.
func (s *FileSource) LoadRules(ctx context.Context) ([]engine.RuleRecord, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path %q: %w", s.path, err)
	}

	var records []engine.RuleRecord
	if info.IsDir() {
		records, err = s.loadDirectory()
	} else {
		records, err = s.loadFile(s.path)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("loaded rules from source",
		"path", s.path,
		"rule_count", len(records),
	)
	return records, nil
}

func (s *FileSource) loadDirectory() ([]engine.RuleRecord, error) {
	var records []engine.RuleRecord

	err := filepath.Walk(s.path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		fileRecords, err := s.loadFile(path)
		if err != nil {
			return err
		}
		records = append(records, fileRecords...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %q: %w", s.path, err)
	}

	return records, nil
}

func (s *FileSource) loadFile(path string) ([]engine.RuleRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}

	var doc ruleDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rule file %q: %w", path, err)
	}

	s.logger.Debug("loaded rule file",
		"path", path,
		"rule_count", len(doc.Rules),
	)
	return doc.Rules, nil
}
