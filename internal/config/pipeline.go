package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mesocyclon/docxpipeline/internal/extractor"
)

// MonitoringLevel enumerates how much per-stage telemetry the
// orchestrator records.
type MonitoringLevel string

const (
	MonitoringBasic       MonitoringLevel = "basic"
	MonitoringDetailed    MonitoringLevel = "detailed"
	MonitoringDebug       MonitoringLevel = "debug"
	MonitoringPerformance MonitoringLevel = "performance"
)

// StyleRule mirrors model.Style's shape for YAML-authored validation
// rules; kept separate from model.Style so the config file's optional
// fields don't force every model.Style consumer to handle zero-values
// as "unspecified".
type StyleRule struct {
	FontEastAsian   string  `yaml:"font_east_asian,omitempty"`
	FontLatin       string  `yaml:"font_latin,omitempty"`
	FontSizePt      float64 `yaml:"font_size_pt,omitempty"`
	FontBold        bool    `yaml:"font_bold,omitempty"`
	LineSpacingMode string  `yaml:"line_spacing_mode,omitempty"`
	Alignment       string  `yaml:"alignment,omitempty"`
}

// ValidationRules is the YAML-authored set of Validator assertion
// parameters.
type ValidationRules struct {
	ForbiddenLevel1Headings []string             `yaml:"forbidden_level1_headings,omitempty"`
	StyleSpecs              map[string]StyleRule `yaml:"style_specs,omitempty"`
}

// RunConfig is the options bag process_document accepts, per spec.md
// §6's entry-point signature. Loaded from YAML, never from environment
// variables directly — env vars feed only the HTTP front end's Config.
type RunConfig struct {
	ModelID                string                     `yaml:"model_id"`
	Temperature            float64                    `yaml:"temperature"`
	AuditDir               string                     `yaml:"audit_dir"`
	ExecutionTimeLimitS    int                        `yaml:"execution_time_limit_s"`
	MemoryWarningMB        int                        `yaml:"memory_warning_mb"`
	MemoryCriticalMB       int                        `yaml:"memory_critical_mb"`
	MonitoringLevel        MonitoringLevel            `yaml:"monitoring_level"`
	Localisation           map[string]string          `yaml:"localisation,omitempty"`
	ValidationRules        ValidationRules            `yaml:"validation_rules,omitempty"`
	RevisionStrategy       extractor.RevisionStrategy `yaml:"revision_strategy"`
	CommentsEnabled        bool                       `yaml:"comments_enabled"`
	CommentsExecuteTagOnly bool                       `yaml:"comments_execute_tag_only"`
	CommentsLLMFallback    bool                       `yaml:"comments_llm_fallback"`
	MaxTokens              int                        `yaml:"max_tokens"`
}

// DefaultRunConfig returns a RunConfig with the spec's documented
// defaults applied.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		ModelID:             "gpt-4o",
		Temperature:         0.1,
		AuditDir:            "./audit",
		ExecutionTimeLimitS: 120,
		MemoryWarningMB:     512,
		MemoryCriticalMB:    1024,
		MonitoringLevel:     MonitoringBasic,
		RevisionStrategy:    extractor.RevisionBypass,
		MaxTokens:           4096,
	}
}

// LoadRunConfig reads and parses a YAML run-configuration file, applying
// defaults for any field left zero-valued.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := DefaultRunConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid %s: %w", path, err)
	}
	return cfg, nil
}

// Validate enforces the config-level sanity checks the orchestrator
// relies on before starting a run.
func (c *RunConfig) Validate() error {
	if c.ModelID == "" {
		return fmt.Errorf("config: model_id must not be empty")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config: temperature %.2f out of range [0,2]", c.Temperature)
	}
	switch c.RevisionStrategy {
	case extractor.RevisionAccept, extractor.RevisionReject, extractor.RevisionBypass:
	default:
		return fmt.Errorf("config: invalid revision_strategy %q", c.RevisionStrategy)
	}
	switch c.MonitoringLevel {
	case MonitoringBasic, MonitoringDetailed, MonitoringDebug, MonitoringPerformance:
	default:
		return fmt.Errorf("config: invalid monitoring_level %q", c.MonitoringLevel)
	}
	return nil
}

// StageTimeout returns the per-stage deadline derived from
// ExecutionTimeLimitS, per spec.md §5's "each stage honours a
// configurable deadline".
func (c *RunConfig) StageTimeout() time.Duration {
	if c.ExecutionTimeLimitS <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.ExecutionTimeLimitS) * time.Second
}

// WriteTemplate writes the default run configuration to path as plain
// YAML (no comments), backing
// the `config create` CLI subcommand.
func WriteTemplate(path string) error {
	cfg := DefaultRunConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshaling template: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
