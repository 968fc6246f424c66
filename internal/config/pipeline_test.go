package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mesocyclon/docxpipeline/internal/config"
	"github.com/mesocyclon/docxpipeline/internal/extractor"
)

func TestDefaultRunConfig_IsValid(t *testing.T) {
	t.Parallel()
	cfg := config.DefaultRunConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
}

func TestRunConfig_Validate_RejectsEmptyModelID(t *testing.T) {
	t.Parallel()
	cfg := config.DefaultRunConfig()
	cfg.ModelID = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for empty model_id")
	}
}

func TestRunConfig_Validate_RejectsOutOfRangeTemperature(t *testing.T) {
	t.Parallel()
	cfg := config.DefaultRunConfig()
	cfg.Temperature = 3.5
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for temperature out of range")
	}
}

func TestRunConfig_Validate_RejectsInvalidRevisionStrategy(t *testing.T) {
	t.Parallel()
	cfg := config.DefaultRunConfig()
	cfg.RevisionStrategy = extractor.RevisionStrategy("invalid")
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for an invalid revision_strategy")
	}
}

func TestRunConfig_StageTimeout_DefaultsWhenUnset(t *testing.T) {
	t.Parallel()
	cfg := &config.RunConfig{}
	if cfg.StageTimeout().Seconds() != 120 {
		t.Errorf("expected a 120s default, got %v", cfg.StageTimeout())
	}
}

func TestLoadRunConfig_RoundTripsThroughTemplate(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := config.WriteTemplate(path); err != nil {
		t.Fatalf("WriteTemplate failed: %v", err)
	}

	cfg, err := config.LoadRunConfig(path)
	if err != nil {
		t.Fatalf("LoadRunConfig failed: %v", err)
	}
	if cfg.ModelID != config.DefaultRunConfig().ModelID {
		t.Errorf("loaded model_id %q does not match default", cfg.ModelID)
	}
}

func TestLoadRunConfig_OverridesDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "custom.yaml")
	contents := "model_id: gpt-5\ntemperature: 0.4\nrevision_strategy: reject\nmonitoring_level: debug\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := config.LoadRunConfig(path)
	if err != nil {
		t.Fatalf("LoadRunConfig failed: %v", err)
	}
	if cfg.ModelID != "gpt-5" {
		t.Errorf("expected overridden model_id, got %q", cfg.ModelID)
	}
	if cfg.RevisionStrategy != extractor.RevisionReject {
		t.Errorf("expected overridden revision_strategy, got %q", cfg.RevisionStrategy)
	}
	// audit_dir was left unset in the fixture; the default must still apply.
	if cfg.AuditDir != config.DefaultRunConfig().AuditDir {
		t.Errorf("expected default audit_dir to survive a partial override, got %q", cfg.AuditDir)
	}
}

func TestLoadRunConfig_MissingFile(t *testing.T) {
	t.Parallel()
	if _, err := config.LoadRunConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
