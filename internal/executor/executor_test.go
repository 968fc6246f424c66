package executor_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mesocyclon/docxpipeline/internal/docmodel"
	"github.com/mesocyclon/docxpipeline/internal/executor"
	"github.com/mesocyclon/docxpipeline/internal/model"
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

func openTestDoc(t *testing.T) *docmodel.Document {
	t.Helper()
	data, err := os.ReadFile(testDocxPath(t))
	if err != nil {
		t.Fatalf("reading test docx: %v", err)
	}
	doc, err := docmodel.Open(data)
	if err != nil {
		t.Fatalf("opening test docx: %v", err)
	}
	return doc
}

func planWith(ops ...model.AtomicOp) *model.Plan {
	plan := model.NewPlan()
	for _, op := range ops {
		plan.Ops = append(plan.Ops, model.Op{Operation: op.Kind(), Value: op})
	}
	return plan
}

func TestExecute_UpdateTOC_NOOPWhenNoTOCField(t *testing.T) {
	doc := openTestDoc(t)
	warnings := model.NewWarningSink()
	x := executor.New(nil, nil, warnings)

	result, err := x.Execute(doc, planWith(&model.UpdateTOC{}))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(result.Results) != 1 {
		t.Fatalf("expected 1 op result, got %d", len(result.Results))
	}
	// Either the document has a TOC field (Applied) or it doesn't (NOOP) —
	// both are valid outcomes; the point is Execute never errors on this op.
	if result.Results[0].Operation != string(model.OpUpdateTOC) {
		t.Errorf("unexpected operation label: %q", result.Results[0].Operation)
	}
}

func TestExecute_DeleteSectionByHeading_NOOPOnUnmatchedHeading(t *testing.T) {
	doc := openTestDoc(t)
	x := executor.New(nil, nil, model.NewWarningSink())

	op := &model.DeleteSectionByHeading{
		HeadingText: "a heading that almost certainly does not exist in the fixture",
		Level:       1,
		Match:       model.MatchExact,
	}
	result, err := x.Execute(doc, planWith(op))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Results[0].NOOP {
		t.Error("expected a NOOP result for an unmatched heading")
	}
}

func TestExecute_SetStyleRule_ResolvesStyleAndFontNames(t *testing.T) {
	doc := openTestDoc(t)
	warnings := model.NewWarningSink()

	resolveStyle := func(name string) string {
		if name == "H1" {
			return "Heading 1"
		}
		return name
	}
	resolveFont := func(name string) string {
		if name == "MissingFont" {
			return "Fallback Font"
		}
		return name
	}
	x := executor.New(resolveStyle, resolveFont, warnings)

	missing := "MissingFont"
	op := &model.SetStyleRule{TargetStyle: "H1", FontEastAsian: &missing}
	result, err := x.Execute(doc, planWith(op))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Results[0].Applied {
		t.Error("expected set_style_rule to apply")
	}

	foundFallbackWarning := false
	for _, w := range warnings.All() {
		if w.Code == "FONT_FALLBACK" {
			foundFallbackWarning = true
		}
	}
	if !foundFallbackWarning {
		t.Error("expected a FONT_FALLBACK warning when the resolver changes the requested font")
	}
}

func TestExecute_SetStyleRule_NOOPOnMissingStyle(t *testing.T) {
	doc := openTestDoc(t)
	warnings := model.NewWarningSink()
	x := executor.New(nil, nil, warnings)

	op := &model.SetStyleRule{TargetStyle: "a style that almost certainly does not exist in the fixture"}
	result, err := x.Execute(doc, planWith(op))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Results[0].NOOP {
		t.Error("expected a NOOP result for a missing target style, not an error")
	}
}

func TestExecute_ClearDirectFormatting_RequiresAuthorization(t *testing.T) {
	doc := openTestDoc(t)
	x := executor.New(nil, nil, model.NewWarningSink())

	// The executor trusts the plan's own Validate() to have rejected a
	// missing authorization token before execution ever runs; this test
	// only exercises the happy path the executor itself is responsible for.
	op := &model.ClearDirectFormatting{
		Scope:         model.ScopeDocument,
		Authorization: model.ExplicitUserRequestToken,
	}
	if _, err := x.Execute(doc, planWith(op)); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
}

func TestExecute_StopsAtFirstHardError(t *testing.T) {
	doc := openTestDoc(t)
	x := executor.New(nil, nil, model.NewWarningSink())

	// An invalid regex in a REGEX match is a hard error from docmodel, not
	// a NOOP — it must abort the run rather than continue past it.
	bad := &model.DeleteSectionByHeading{HeadingText: "(unterminated", Level: 1, Match: model.MatchRegex}
	ok := &model.UpdateTOC{}
	result, err := x.Execute(doc, planWith(bad, ok))
	if err == nil {
		t.Fatal("expected an error from an invalid regex match")
	}
	if len(result.Results) != 0 {
		t.Errorf("expected no op results recorded before the failing op, got %d", len(result.Results))
	}
}
