package validator

import (
	"fmt"
	"testing"

	"github.com/mesocyclon/docxpipeline/internal/model"
)

func collectFailures(f func(fail func(string, ...any))) []string {
	var failures []string
	f(func(format string, args ...any) {
		failures = append(failures, fmt.Sprintf(format, args...))
	})
	return failures
}

func TestCheckChapterAssertion_FailsOnForbiddenHeading(t *testing.T) {
	t.Parallel()
	after := &model.Structure{
		Headings: []model.Heading{{Level: 1, Text: "摘要", ParagraphIndex: 0}},
	}
	rules := Rules{ForbiddenLevel1Headings: []string{"摘要", "参考文献"}}

	failures := collectFailures(func(fail func(string, ...any)) {
		checkChapterAssertion(after, rules, fail)
	})
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d: %v", len(failures), failures)
	}
}

func TestCheckChapterAssertion_PassesWhenAbsent(t *testing.T) {
	t.Parallel()
	after := &model.Structure{
		Headings: []model.Heading{{Level: 1, Text: "Introduction", ParagraphIndex: 0}},
	}
	rules := Rules{ForbiddenLevel1Headings: []string{"摘要"}}

	failures := collectFailures(func(fail func(string, ...any)) {
		checkChapterAssertion(after, rules, fail)
	})
	if len(failures) != 0 {
		t.Fatalf("expected no failures, got %v", failures)
	}
}

func TestCheckChapterAssertion_IgnoresDeeperLevels(t *testing.T) {
	t.Parallel()
	after := &model.Structure{
		Headings: []model.Heading{{Level: 2, Text: "摘要", ParagraphIndex: 0}},
	}
	rules := Rules{ForbiddenLevel1Headings: []string{"摘要"}}

	failures := collectFailures(func(fail func(string, ...any)) {
		checkChapterAssertion(after, rules, fail)
	})
	if len(failures) != 0 {
		t.Errorf("a level-2 heading should not trigger the level-1 chapter assertion, got %v", failures)
	}
}

func TestCheckStyleAssertion_DetectsMismatch(t *testing.T) {
	t.Parallel()
	after := &model.Structure{
		Styles: []model.Style{{
			Name: "Heading1",
			Font: model.Font{EastAsianName: "SimSun", SizePt: 12},
		}},
	}
	rules := Rules{StyleSpecs: map[string]model.Style{
		"Heading1": {Font: model.Font{EastAsianName: "黑体", SizePt: 16}},
	}}

	failures := collectFailures(func(fail func(string, ...any)) {
		checkStyleAssertion(after, rules, fail)
	})
	if len(failures) != 2 {
		t.Fatalf("expected 2 failures (font name + size), got %d: %v", len(failures), failures)
	}
}

func TestCheckStyleAssertion_MissingStyle(t *testing.T) {
	t.Parallel()
	after := &model.Structure{}
	rules := Rules{StyleSpecs: map[string]model.Style{"Heading1": {}}}

	failures := collectFailures(func(fail func(string, ...any)) {
		checkStyleAssertion(after, rules, fail)
	})
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure for a missing style, got %d: %v", len(failures), failures)
	}
}

func TestCheckTOCAssertion_FailsOnOrphanEntry(t *testing.T) {
	t.Parallel()
	after := &model.Structure{
		Headings: []model.Heading{{Text: "Introduction"}},
		Fields:   []model.Field{{Type: model.FieldTOC, Result: "Introduction\nConclusion"}},
	}

	failures := collectFailures(func(fail func(string, ...any)) {
		checkTOCAssertion(after, fail)
	})
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure for the orphan 'Conclusion' entry, got %d: %v", len(failures), failures)
	}
}

func TestCheckTOCAssertion_PassesWhenEveryEntryMatches(t *testing.T) {
	t.Parallel()
	after := &model.Structure{
		Headings: []model.Heading{{Text: "Introduction"}, {Text: "Conclusion"}},
		Fields:   []model.Field{{Type: model.FieldTOC, Result: "Introduction\nConclusion"}},
	}

	failures := collectFailures(func(fail func(string, ...any)) {
		checkTOCAssertion(after, fail)
	})
	if len(failures) != 0 {
		t.Errorf("expected no failures, got %v", failures)
	}
}

func TestCheckPaginationAssertion_FailsOnDirtyField(t *testing.T) {
	t.Parallel()
	after := &model.Structure{
		Fields:   []model.Field{{Code: "TOC", NeedsUpdate: true}},
		Metadata: model.Metadata{ModifiedTime: "2026-01-02T00:00:00Z"},
	}
	before := &model.Structure{Metadata: model.Metadata{ModifiedTime: "2026-01-01T00:00:00Z"}}

	failures := collectFailures(func(fail func(string, ...any)) {
		checkPaginationAssertion(before, after, Rules{}, fail)
	})
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure for a dirty field, got %d: %v", len(failures), failures)
	}
}

func TestCheckPaginationAssertion_FailsWhenTimeDidNotAdvance(t *testing.T) {
	t.Parallel()
	after := &model.Structure{Metadata: model.Metadata{ModifiedTime: "2026-01-01T00:00:00Z"}}
	before := &model.Structure{Metadata: model.Metadata{ModifiedTime: "2026-01-01T00:00:00Z"}}

	failures := collectFailures(func(fail func(string, ...any)) {
		checkPaginationAssertion(before, after, Rules{}, fail)
	})
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure for a non-advancing modified_time, got %d: %v", len(failures), failures)
	}
}

func TestCheckIntegrityAssertions_FailsOnOrphanStyleReference(t *testing.T) {
	t.Parallel()
	after := &model.Structure{
		SchemaVersion: model.StructureSchemaVersion,
		Paragraphs:    []model.Paragraph{{Index: 0, StyleName: "GhostStyle"}},
	}

	failures := collectFailures(func(fail func(string, ...any)) {
		checkIntegrityAssertions(after, fail)
	})
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure for an orphan style reference, got %d: %v", len(failures), failures)
	}
}

func TestCheckIntegrityAssertions_PassesOnValidStructure(t *testing.T) {
	t.Parallel()
	after := &model.Structure{
		SchemaVersion: model.StructureSchemaVersion,
		Styles:        []model.Style{{Name: "Normal"}},
		Paragraphs:    []model.Paragraph{{Index: 0, StyleName: "Normal"}},
	}

	failures := collectFailures(func(fail func(string, ...any)) {
		checkIntegrityAssertions(after, fail)
	})
	if len(failures) != 0 {
		t.Errorf("expected no failures, got %v", failures)
	}
}
