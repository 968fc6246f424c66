// Package validator re-runs the Extractor on the modified document and
// evaluates the configured post-execution assertions: chapter, style,
// TOC, pagination, and integrity. A failure triggers the orchestrator's
// rollback path; warnings alone do not.
package validator

import (
	"context"
	"fmt"
	"strings"

	"github.com/mesocyclon/docxpipeline/internal/extractor"
	"github.com/mesocyclon/docxpipeline/internal/model"
)

// Rules carries the configured assertion parameters, sourced from
// internal/config's validation_rules table.
type Rules struct {
	// ForbiddenLevel1Headings lists heading text that must not appear as
	// a level-1 heading after execution (e.g. "摘要", "参考文献").
	ForbiddenLevel1Headings []string

	// StyleSpecs names exact style requirements to check within zero
	// tolerance for enums, exact for numeric fields. Keyed by style name.
	StyleSpecs map[string]model.Style

	// PriorModifiedTime is the document's modified_time before execution,
	// used for the pagination assertion's monotonic timestamp check.
	PriorModifiedTime string
}

// Result is the outcome of a validation pass.
type Result struct {
	IsValid  bool     `json:"is_valid"`
	Failures []string `json:"failures,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Validator holds the extractor used to re-project the modified document.
type Validator struct {
	extractor *extractor.Extractor
}

// New returns a Validator backed by an extractor configured identically
// to the one used for pre-execution extraction (same revision strategy),
// so before/after projections are directly comparable.
func New(revisionStrategy extractor.RevisionStrategy, warnings *model.WarningSink) *Validator {
	return &Validator{extractor: extractor.New(revisionStrategy, warnings)}
}

// Validate re-extracts the modified document and checks it against
// structureBefore and rules.
func (v *Validator) Validate(ctx context.Context, structureBefore *model.Structure, modifiedData []byte, rules Rules) (*Result, *model.Structure, error) {
	after, err := v.extractor.ExtractBytes(ctx, modifiedData)
	if err != nil {
		return nil, nil, model.NewStageError(model.StageValidation, err, "re-extracting modified document")
	}
	structureAfter := after.Structure

	res := &Result{IsValid: true}
	add := func(format string, args ...any) {
		res.IsValid = false
		res.Failures = append(res.Failures, fmt.Sprintf(format, args...))
	}

	checkChapterAssertion(structureAfter, rules, add)
	checkStyleAssertion(structureAfter, rules, add)
	checkTOCAssertion(structureAfter, add)
	checkPaginationAssertion(structureBefore, structureAfter, rules, add)
	checkIntegrityAssertions(structureAfter, add)

	return res, structureAfter, nil
}

// checkChapterAssertion fails if any configured forbidden heading text
// remains as a level-1 heading.
func checkChapterAssertion(after *model.Structure, rules Rules, fail func(string, ...any)) {
	if len(rules.ForbiddenLevel1Headings) == 0 {
		return
	}
	forbidden := make(map[string]bool, len(rules.ForbiddenLevel1Headings))
	for _, h := range rules.ForbiddenLevel1Headings {
		forbidden[h] = true
	}
	for _, h := range after.Headings {
		if h.Level == 1 && forbidden[strings.TrimSpace(h.Text)] {
			fail("chapter assertion: forbidden level-1 heading %q still present", h.Text)
		}
	}
}

// checkStyleAssertion fails if any configured style spec does not match
// exactly: enum fields with zero tolerance, numeric fields exact.
func checkStyleAssertion(after *model.Structure, rules Rules, fail func(string, ...any)) {
	if len(rules.StyleSpecs) == 0 {
		return
	}
	byName := make(map[string]model.Style, len(after.Styles))
	for _, s := range after.Styles {
		byName[s.Name] = s
	}
	for name, want := range rules.StyleSpecs {
		got, ok := byName[name]
		if !ok {
			fail("style assertion: style %q not found after execution", name)
			continue
		}
		if want.Font.EastAsianName != "" && got.Font.EastAsianName != want.Font.EastAsianName {
			fail("style assertion: %q font_east_asian = %q, want %q", name, got.Font.EastAsianName, want.Font.EastAsianName)
		}
		if want.Font.LatinName != "" && got.Font.LatinName != want.Font.LatinName {
			fail("style assertion: %q font_latin = %q, want %q", name, got.Font.LatinName, want.Font.LatinName)
		}
		if want.Font.SizePt != 0 && got.Font.SizePt != want.Font.SizePt {
			fail("style assertion: %q font_size_pt = %.1f, want %.1f", name, got.Font.SizePt, want.Font.SizePt)
		}
		if want.Font.Bold != got.Font.Bold {
			fail("style assertion: %q bold = %v, want %v", name, got.Font.Bold, want.Font.Bold)
		}
		if want.Paragraph.LineSpacingMode != "" && got.Paragraph.LineSpacingMode != want.Paragraph.LineSpacingMode {
			fail("style assertion: %q line_spacing_mode = %q, want %q", name, got.Paragraph.LineSpacingMode, want.Paragraph.LineSpacingMode)
		}
		if want.Paragraph.Alignment != "" && got.Paragraph.Alignment != want.Paragraph.Alignment {
			fail("style assertion: %q alignment = %q, want %q", name, got.Paragraph.Alignment, want.Paragraph.Alignment)
		}
	}
}

// checkTOCAssertion fails if a line of a TOC field's cached result text
// does not correspond to an existing heading. Dirty (needs_update) fields
// are checked by the pagination assertion, not here.
func checkTOCAssertion(after *model.Structure, fail func(string, ...any)) {
	headingTexts := make(map[string]bool, len(after.Headings))
	for _, h := range after.Headings {
		headingTexts[strings.TrimSpace(h.Text)] = true
	}
	for _, f := range after.Fields {
		if f.Type != model.FieldTOC {
			continue
		}
		if f.Result == "" {
			continue
		}
		for _, line := range strings.Split(f.Result, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if !headingTexts[line] {
				fail("TOC assertion: TOC entry %q has no matching heading", line)
			}
		}
	}
}

// checkPaginationAssertion fails if any field is still marked dirty
// (needs_update) or modified_time has not advanced.
func checkPaginationAssertion(before, after *model.Structure, rules Rules, fail func(string, ...any)) {
	for _, f := range after.Fields {
		if f.NeedsUpdate {
			fail("pagination assertion: field %q still needs update", f.Code)
		}
	}
	prior := rules.PriorModifiedTime
	if prior == "" && before != nil {
		prior = before.Metadata.ModifiedTime
	}
	if prior != "" && after.Metadata.ModifiedTime != "" && after.Metadata.ModifiedTime <= prior {
		fail("pagination assertion: modified_time %q did not advance past %q", after.Metadata.ModifiedTime, prior)
	}
}

// checkIntegrityAssertions fails on dangling references or non-contiguous
// paragraph indices; Structure.Validate already enforces these, this is
// a second independent pass over the post-execution document, since
// validator assertions must not simply trust the extractor's own checks
// silently passed.
func checkIntegrityAssertions(after *model.Structure, fail func(string, ...any)) {
	if err := after.Validate(); err != nil {
		fail("integrity assertion: %v", err)
		return
	}
	styleNames := make(map[string]bool, len(after.Styles))
	for _, s := range after.Styles {
		styleNames[s.Name] = true
	}
	for i, p := range after.Paragraphs {
		if p.StyleName != "" && !styleNames[p.StyleName] {
			fail("integrity assertion: paragraph %d references unknown style %q", i, p.StyleName)
		}
	}
}
