package validator_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mesocyclon/docxpipeline/internal/extractor"
	"github.com/mesocyclon/docxpipeline/internal/model"
	"github.com/mesocyclon/docxpipeline/internal/validator"
)

// testDocxPath mirrors the service package's own integration-test
// convention: skip unless a sample .docx has been placed under
// test/testdata/.
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

func TestValidate_Integration_RoundTripIsValid(t *testing.T) {
	data, err := os.ReadFile(testDocxPath(t))
	if err != nil {
		t.Fatalf("reading test docx: %v", err)
	}

	ext := extractor.New(extractor.RevisionBypass, model.NewWarningSink())
	before, err := ext.ExtractBytes(context.Background(), data)
	if err != nil {
		t.Fatalf("extracting before-structure: %v", err)
	}

	v := validator.New(extractor.RevisionBypass, model.NewWarningSink())
	// PriorModifiedTime is pinned in the past rather than left to default
	// to before.Metadata.ModifiedTime, since a pure round-trip leaves the
	// document's own modified_time unchanged — the pagination assertion's
	// "must advance" check would otherwise always fail on unmodified data.
	rules := validator.Rules{PriorModifiedTime: "2000-01-01T00:00:00Z"}
	result, _, err := v.Validate(context.Background(), before.Structure, data, rules)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !result.IsValid {
		t.Errorf("expected an untouched round-trip to validate cleanly, got failures: %v", result.Failures)
	}
}
