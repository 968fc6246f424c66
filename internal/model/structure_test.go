package model_test

import (
	"strings"
	"testing"

	"github.com/mesocyclon/docxpipeline/internal/model"
)

func validStructure() *model.Structure {
	s := model.NewStructure()
	s.Paragraphs = []model.Paragraph{
		{Index: 0, StyleName: "Heading1", IsHeading: true, PreviewText: "Introduction"},
		{Index: 1, StyleName: "Normal", PreviewText: "body text"},
	}
	s.Headings = []model.Heading{{Text: "Introduction", Level: 1, ParagraphIndex: 0}}
	return s
}

func TestStructure_Validate_EmptyStructureIsValid(t *testing.T) {
	t.Parallel()
	s := model.NewStructure()
	if err := s.Validate(); err != nil {
		t.Errorf("expected an empty structure to validate cleanly, got %v", err)
	}
}

func TestStructure_Validate_Valid(t *testing.T) {
	t.Parallel()
	if err := validStructure().Validate(); err != nil {
		t.Errorf("expected a well-formed structure to validate cleanly, got %v", err)
	}
}

func TestStructure_Validate_RejectsWrongSchemaVersion(t *testing.T) {
	t.Parallel()
	s := validStructure()
	s.SchemaVersion = "structure.v0"
	if err := s.Validate(); err == nil {
		t.Error("expected an error for a mismatched schema_version")
	}
}

func TestStructure_Validate_RejectsNonDenseParagraphIndices(t *testing.T) {
	t.Parallel()
	s := model.NewStructure()
	s.Paragraphs = []model.Paragraph{{Index: 0}, {Index: 2}}
	if err := s.Validate(); err == nil {
		t.Error("expected an error for a non-contiguous paragraph index sequence")
	}
}

func TestStructure_Validate_RejectsPreviewTextOverCap(t *testing.T) {
	t.Parallel()
	s := model.NewStructure()
	s.Paragraphs = []model.Paragraph{{Index: 0, PreviewText: strings.Repeat("x", model.PreviewTextMaxScalars+1)}}
	if err := s.Validate(); err == nil {
		t.Error("expected an error for preview text exceeding the scalar cap")
	}
}

func TestStructure_Validate_RejectsHeadingReferencingMissingParagraph(t *testing.T) {
	t.Parallel()
	s := model.NewStructure()
	s.Paragraphs = []model.Paragraph{{Index: 0}}
	s.Headings = []model.Heading{{Text: "Ghost", Level: 1, ParagraphIndex: 5}}
	if err := s.Validate(); err == nil {
		t.Error("expected an error for a heading referencing a non-existent paragraph")
	}
}

func TestStructure_Validate_RejectsHeadingOnEmptyDocument(t *testing.T) {
	t.Parallel()
	s := model.NewStructure()
	s.Headings = []model.Heading{{Text: "Ghost", Level: 1, ParagraphIndex: 0}}
	if err := s.Validate(); err == nil {
		t.Error("expected an error for any heading referencing a paragraph in a document with none")
	}
}

func TestStructure_Validate_RejectsOutOfRangeHeadingLevel(t *testing.T) {
	t.Parallel()
	s := validStructure()
	s.Headings[0].Level = 10
	if err := s.Validate(); err == nil {
		t.Error("expected an error for a heading level outside [1,9]")
	}
}

func TestStructure_Validate_RejectsInvalidStyleType(t *testing.T) {
	t.Parallel()
	s := validStructure()
	s.Styles = []model.Style{{Name: "Bad", Type: "bogus"}}
	if err := s.Validate(); err == nil {
		t.Error("expected an error for an unrecognised style type")
	}
}

func TestStructure_Validate_RejectsEmptyStyleName(t *testing.T) {
	t.Parallel()
	s := validStructure()
	s.Styles = []model.Style{{Name: "", Type: model.StyleTypeParagraph}}
	if err := s.Validate(); err == nil {
		t.Error("expected an error for an empty style name")
	}
}

func TestStructure_Validate_RejectsInvalidHexColor(t *testing.T) {
	t.Parallel()
	s := validStructure()
	s.Styles = []model.Style{{Name: "Normal", Type: model.StyleTypeParagraph, Font: model.Font{ColorHex: "red"}}}
	if err := s.Validate(); err == nil {
		t.Error("expected an error for a non-hex color_hex value")
	}
}

func TestStructure_Validate_RejectsFontSizeOutOfRange(t *testing.T) {
	t.Parallel()
	s := validStructure()
	s.Styles = []model.Style{{Name: "Normal", Type: model.StyleTypeParagraph, Font: model.Font{SizePt: 200}}}
	if err := s.Validate(); err == nil {
		t.Error("expected an error for a font size outside [6,72]")
	}
}

func TestStructure_Validate_RejectsTableReferencingMissingCellParagraph(t *testing.T) {
	t.Parallel()
	s := validStructure()
	s.Tables = []model.Table{{Index: 0, ParagraphIndex: 0, Rows: 1, Columns: 1, CellReferences: [][]int{{99}}}}
	if err := s.Validate(); err == nil {
		t.Error("expected an error for a table cell referencing a non-existent paragraph")
	}
}
