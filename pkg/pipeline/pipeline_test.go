package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mesocyclon/docxpipeline/internal/config"
	"github.com/mesocyclon/docxpipeline/internal/planner"
	"github.com/mesocyclon/docxpipeline/pkg/pipeline"
)

func testDocxPath(t *testing.T) string {
	t.Helper()
	candidates := []string{
		"../../test/testdata/sample.docx",
		"test/testdata/sample.docx",
	}
	for _, p := range candidates {
		if abs, err := filepath.Abs(p); err == nil {
			if _, err := os.Stat(abs); err == nil {
				return abs
			}
		}
	}
	t.Skip("no test .docx found in test/testdata/sample.docx — skipping integration test")
	return ""
}

type stubLM struct{ reply string }

func (s *stubLM) Complete(ctx context.Context, prompt string, opts planner.CompletionOptions) (string, error) {
	return s.reply, nil
}

func TestProcessDocument_SuccessReportsRunIDAndOutputPath(t *testing.T) {
	docPath := testDocxPath(t)

	lm := &stubLM{reply: `{"schema_version":"plan.v1","ops":[{"operation":"update_toc"}]}`}
	cfg := config.DefaultRunConfig()
	cfg.AuditDir = t.TempDir()
	opts := pipeline.Options{LanguageModel: lm, Config: cfg}

	result, err := pipeline.ProcessDocument(context.Background(), docPath, "refresh the table of contents", opts)
	if err != nil {
		t.Fatalf("ProcessDocument failed: %v", err)
	}
	if result.RunID == "" {
		t.Error("expected a non-empty run_id")
	}
	if result.OutputPath == "" {
		t.Error("expected a non-empty output_path on a successful run")
	}
}

func TestProcessDocument_NilConfigFallsBackToDefaults(t *testing.T) {
	docPath := testDocxPath(t)
	t.Chdir(t.TempDir()) // config.DefaultRunConfig's audit_dir is relative

	lm := &stubLM{reply: `{"schema_version":"plan.v1","ops":[{"operation":"update_toc"}]}`}
	_, err := pipeline.ProcessDocument(context.Background(), docPath, "refresh the table of contents", pipeline.Options{LanguageModel: lm})
	if err != nil {
		t.Fatalf("ProcessDocument with a nil Config should fall back to defaults, got: %v", err)
	}
}
