package orchestrator_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mesocyclon/docxpipeline/internal/auditor"
	"github.com/mesocyclon/docxpipeline/internal/config"
	"github.com/mesocyclon/docxpipeline/internal/orchestrator"
	"github.com/mesocyclon/docxpipeline/internal/planner"
)

// testDocxPath mirrors the service package's integration-test convention:
// skip unless a sample .docx has been placed under test/testdata/.
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

// stubLM replays canned completions in order, recording every prompt it
// was asked to complete.
type stubLM struct {
	replies []string
	prompts []string
	err     error
	calls   int
}

func (s *stubLM) Complete(ctx context.Context, prompt string, opts planner.CompletionOptions) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	reply := s.replies[s.calls%len(s.replies)]
	s.calls++
	return reply, nil
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcess_SuccessRunWritesAuditTrail(t *testing.T) {
	docPath := testDocxPath(t)

	lm := &stubLM{replies: []string{`{"schema_version":"plan.v1","ops":[{"operation":"update_toc"}]}`}}
	o := orchestrator.New(lm, silentLogger())

	cfg := config.DefaultRunConfig()
	cfg.AuditDir = t.TempDir()

	result, err := o.Process(context.Background(), docPath, "refresh the table of contents", cfg)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Status != auditor.StatusSuccess {
		t.Fatalf("expected SUCCESS, got %s (errors: %v)", result.Status, result.Errors)
	}
	if result.AuditDirectory == "" {
		t.Fatal("expected a non-empty audit directory")
	}
	if result.RunID == "" {
		t.Error("expected a non-empty run_id for log correlation")
	}
	wantOutput := filepath.Join(result.AuditDirectory, "after.docx")
	if result.OutputPath != wantOutput {
		t.Errorf("expected output_path %q, got %q", wantOutput, result.OutputPath)
	}
	for _, name := range []string{"before.docx", "before_structure.v1.json", "plan.v1.json", "after.docx", "diff.report.json", "result.status.txt"} {
		if _, err := os.Stat(filepath.Join(result.AuditDirectory, name)); err != nil {
			t.Errorf("expected audit artifact %s: %v", name, err)
		}
	}
	if len(lm.prompts) != 1 {
		t.Errorf("expected exactly 1 language model call, got %d", len(lm.prompts))
	}
}

func TestProcess_InvalidPlanAfterRetriesRollsBack(t *testing.T) {
	docPath := testDocxPath(t)

	lm := &stubLM{replies: []string{"not json at all"}}
	o := orchestrator.New(lm, silentLogger())

	cfg := config.DefaultRunConfig()
	cfg.AuditDir = t.TempDir()

	result, err := o.Process(context.Background(), docPath, "do something unparseable", cfg)
	if err != nil {
		t.Fatalf("Process returned a Go error instead of a structured failure result: %v", err)
	}
	if result.Status != auditor.StatusInvalidPlan {
		t.Fatalf("expected INVALID_PLAN, got %s", result.Status)
	}
	if _, err := os.Stat(filepath.Join(result.AuditDirectory, "after.docx")); err == nil {
		t.Error("an invalid-plan run must not produce after.docx")
	}
}
