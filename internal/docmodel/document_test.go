package docmodel_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mesocyclon/docxpipeline/internal/docmodel"
	"github.com/mesocyclon/docxpipeline/internal/model"
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

func TestOpen_ProducesValidStructure(t *testing.T) {
	doc := openTestDoc(t)
	structure := doc.Structure()
	if err := structure.Validate(); err != nil {
		t.Errorf("extracted structure failed its own invariants: %v", err)
	}
}

func TestOpen_ProducesValidInventory(t *testing.T) {
	doc := openTestDoc(t)
	if err := doc.Inventory().Validate(); err != nil {
		t.Errorf("extracted inventory failed its own invariants: %v", err)
	}
}

func TestSaveBytes_RoundTripsToReopenableDocument(t *testing.T) {
	doc := openTestDoc(t)
	data, err := doc.SaveBytes()
	if err != nil {
		t.Fatalf("SaveBytes failed: %v", err)
	}
	reopened, err := docmodel.Open(data)
	if err != nil {
		t.Fatalf("re-opening saved bytes failed: %v", err)
	}
	if err := reopened.Structure().Validate(); err != nil {
		t.Errorf("round-tripped document's structure failed validation: %v", err)
	}
}

func TestStyleNames_AreNonEmptyAndUnique(t *testing.T) {
	doc := openTestDoc(t)
	seen := make(map[string]bool)
	for _, name := range doc.StyleNames() {
		if name == "" {
			t.Error("expected no empty style names")
		}
		if seen[name] {
			t.Errorf("style name %q appeared more than once", name)
		}
		seen[name] = true
	}
}

func TestMarkTOCDirty_IsIdempotentAboutCount(t *testing.T) {
	doc := openTestDoc(t)
	first, err := doc.MarkTOCDirty()
	if err != nil {
		t.Fatalf("MarkTOCDirty failed: %v", err)
	}
	second, err := doc.MarkTOCDirty()
	if err != nil {
		t.Fatalf("second MarkTOCDirty failed: %v", err)
	}
	if first != second {
		t.Errorf("expected the same TOC field count on repeated calls, got %d then %d", first, second)
	}
}

func TestDeleteSectionByHeading_NOOPForUnmatchedText(t *testing.T) {
	doc := openTestDoc(t)
	applied, err := doc.DeleteSectionByHeading(model.DeleteSectionByHeading{
		HeadingText: "a heading that almost certainly does not exist",
		Level:       1,
		Match:       model.MatchExact,
	})
	if err != nil {
		t.Fatalf("DeleteSectionByHeading failed: %v", err)
	}
	if applied {
		t.Error("expected no match for an unmatched heading text")
	}
}

func TestDeleteSectionByHeading_RejectsInvalidRegex(t *testing.T) {
	doc := openTestDoc(t)
	_, err := doc.DeleteSectionByHeading(model.DeleteSectionByHeading{
		HeadingText: "(unterminated",
		Level:       1,
		Match:       model.MatchRegex,
	})
	if err == nil {
		t.Error("expected an error for an invalid regular expression")
	}
}

func TestApplyStyleRule_ChangesDeclaredFontName(t *testing.T) {
	doc := openTestDoc(t)
	styles := doc.Styles()
	if len(styles) == 0 {
		t.Skip("fixture document defines no styles")
	}
	target := styles[0].Name
	newFont := "Verdana"

	applied, err := doc.ApplyStyleRule(model.SetStyleRule{TargetStyle: target, FontLatin: &newFont})
	if err != nil {
		t.Fatalf("ApplyStyleRule failed: %v", err)
	}
	if !applied {
		t.Fatal("expected ApplyStyleRule to apply against a style the document defines")
	}

	for _, s := range doc.Styles() {
		if s.Name == target && s.Font.LatinName == newFont {
			return
		}
	}
	t.Errorf("expected style %q to carry the new latin font name %q", target, newFont)
}

func TestApplyStyleRule_NOOPOnMissingStyle(t *testing.T) {
	doc := openTestDoc(t)
	newFont := "Verdana"

	applied, err := doc.ApplyStyleRule(model.SetStyleRule{TargetStyle: "a style that almost certainly does not exist", FontLatin: &newFont})
	if err != nil {
		t.Fatalf("ApplyStyleRule should not error on a missing style, got: %v", err)
	}
	if applied {
		t.Error("expected ApplyStyleRule to report NOOP for a missing style")
	}
}

func TestHasTrackedChangesAndAcceptAllRevisions(t *testing.T) {
	doc := openTestDoc(t)
	_ = doc.HasTrackedChanges()
	doc.AcceptAllRevisions()
	if doc.HasTrackedChanges() {
		t.Error("expected no tracked changes to remain after AcceptAllRevisions")
	}
}

func TestDeclaredFontNames_ReturnsNoDuplicates(t *testing.T) {
	doc := openTestDoc(t)
	seen := make(map[string]bool)
	for _, name := range doc.DeclaredFontNames() {
		if seen[name] {
			t.Errorf("font name %q appeared more than once", name)
		}
		seen[name] = true
	}
}
