package model

import (
	"fmt"
	"unicode/utf8"
)

const StructureSchemaVersion = "structure.v1"

// PreviewTextMaxScalars is the hard cap on Paragraph.PreviewText, measured
// in Unicode scalar values (runes), never splitting a surrogate pair —
// moot in Go since strings are UTF-8 and there are no lone surrogates to
// split, but the cap itself is enforced at rune boundaries.
const PreviewTextMaxScalars = 120

// StyleType enumerates the closed set of Word style types.
type StyleType string

const (
	StyleTypeParagraph StyleType = "paragraph"
	StyleTypeCharacter StyleType = "character"
	StyleTypeTable     StyleType = "table"
	StyleTypeLinked    StyleType = "linked"
)

func (t StyleType) valid() bool {
	switch t {
	case StyleTypeParagraph, StyleTypeCharacter, StyleTypeTable, StyleTypeLinked:
		return true
	}
	return false
}

// LineSpacingMode enumerates the closed set of paragraph line-spacing modes.
type LineSpacingMode string

const (
	LineSpacingSingle  LineSpacingMode = "SINGLE"
	LineSpacingMultiple LineSpacingMode = "MULTIPLE"
	LineSpacingExactly LineSpacingMode = "EXACTLY"
)

func (m LineSpacingMode) valid() bool {
	switch m {
	case LineSpacingSingle, LineSpacingMultiple, LineSpacingExactly, "":
		return true
	}
	return false
}

// Alignment enumerates the closed set of paragraph alignments.
type Alignment string

const (
	AlignLeft    Alignment = "LEFT"
	AlignCenter  Alignment = "CENTER"
	AlignRight   Alignment = "RIGHT"
	AlignJustify Alignment = "JUSTIFY"
)

func (a Alignment) valid() bool {
	switch a {
	case AlignLeft, AlignCenter, AlignRight, AlignJustify, "":
		return true
	}
	return false
}

// Font is the resolved font record attached to a style.
type Font struct {
	EastAsianName string  `json:"east_asian_name,omitempty"`
	LatinName     string  `json:"latin_name,omitempty"`
	SizePt        float64 `json:"size_pt,omitempty"`
	Bold          bool    `json:"bold"`
	Italic        bool    `json:"italic"`
	Underline     bool    `json:"underline"`
	ColorHex      string  `json:"color_hex,omitempty"` // #RRGGBB
}

func (f Font) validate(path string) error {
	if f.SizePt != 0 && (f.SizePt < 6 || f.SizePt > 72) {
		return NewPathError(StageExtraction, path+".size_pt", "font size %.1f out of range [6,72]", f.SizePt)
	}
	if f.ColorHex != "" && !isHexColor(f.ColorHex) {
		return NewPathError(StageExtraction, path+".color_hex", "invalid hex color %q", f.ColorHex)
	}
	return nil
}

// ParagraphProps is the resolved paragraph-format record attached to a style.
type ParagraphProps struct {
	LineSpacingMode  LineSpacingMode `json:"line_spacing_mode,omitempty"`
	LineSpacingValue float64         `json:"line_spacing_value,omitempty"`
	SpaceBeforePt    float64         `json:"space_before_pt,omitempty"`
	SpaceAfterPt     float64         `json:"space_after_pt,omitempty"`
	Alignment        Alignment       `json:"alignment,omitempty"`
	IndentLeftPt     float64         `json:"indent_left_pt,omitempty"`
	IndentRightPt    float64         `json:"indent_right_pt,omitempty"`
	IndentFirstLinePt float64        `json:"indent_first_line_pt,omitempty"`
}

func (p ParagraphProps) validate(path string) error {
	if !p.LineSpacingMode.valid() {
		return NewPathError(StageExtraction, path+".line_spacing_mode", "invalid line spacing mode %q", p.LineSpacingMode)
	}
	if p.LineSpacingValue != 0 && (p.LineSpacingValue < 0.5 || p.LineSpacingValue > 10.0) {
		return NewPathError(StageExtraction, path+".line_spacing_value", "line spacing value %.2f out of range [0.5,10.0]", p.LineSpacingValue)
	}
	if !p.Alignment.valid() {
		return NewPathError(StageExtraction, path+".alignment", "invalid alignment %q", p.Alignment)
	}
	return nil
}

// Style describes one named style in the document's style table.
type Style struct {
	Name       string         `json:"name"`
	Type       StyleType      `json:"type"`
	Font       Font           `json:"font"`
	Paragraph  ParagraphProps `json:"paragraph"`
	IsBuiltin  bool           `json:"is_builtin"`
	IsModified bool           `json:"is_modified"`
}

func (s Style) validate(path string) error {
	if s.Name == "" {
		return NewPathError(StageExtraction, path+".name", "style name must not be empty")
	}
	if !s.Type.valid() {
		return NewPathError(StageExtraction, path+".type", "invalid style type %q", s.Type)
	}
	if err := s.Font.validate(path + ".font"); err != nil {
		return err
	}
	return s.Paragraph.validate(path + ".paragraph")
}

// Paragraph is one entry in the dense, 0-based paragraph skeleton.
type Paragraph struct {
	Index        int    `json:"index"`
	StyleName    string `json:"style_name,omitempty"`
	PreviewText  string `json:"preview_text"`
	IsHeading    bool   `json:"is_heading"`
	HeadingLevel *int   `json:"heading_level,omitempty"` // 1..9
	PageNumber   int    `json:"page_number,omitempty"`
}

func (p Paragraph) validate(path string, expectedIndex int) error {
	if p.Index != expectedIndex {
		return NewPathError(StageExtraction, path+".index", "paragraph index %d is not dense/contiguous (expected %d)", p.Index, expectedIndex)
	}
	if n := utf8.RuneCountInString(p.PreviewText); n > PreviewTextMaxScalars {
		return NewPathError(StageExtraction, path+".preview_text", "preview text has %d scalars, exceeds cap %d", n, PreviewTextMaxScalars)
	}
	if p.HeadingLevel != nil && (*p.HeadingLevel < 1 || *p.HeadingLevel > 9) {
		return NewPathError(StageExtraction, path+".heading_level", "heading level %d out of range [1,9]", *p.HeadingLevel)
	}
	return nil
}

// Heading is a filtered, order-preserving view over heading paragraphs.
type Heading struct {
	Text           string `json:"text"`
	Level          int    `json:"level"`
	StyleName      string `json:"style_name,omitempty"`
	ParagraphIndex int    `json:"paragraph_index"`
	PageNumber     int    `json:"page_number,omitempty"`
	InTable        bool   `json:"in_table"`
	TableIndex     *int   `json:"table_index,omitempty"`
}

func (h Heading) validate(path string, maxParagraphIndex int) error {
	if h.Level < 1 || h.Level > 9 {
		return NewPathError(StageExtraction, path+".level", "heading level %d out of range [1,9]", h.Level)
	}
	if h.ParagraphIndex < 0 || h.ParagraphIndex > maxParagraphIndex {
		return NewPathError(StageExtraction, path+".paragraph_index", "heading references non-existent paragraph %d", h.ParagraphIndex)
	}
	return nil
}

// FieldType enumerates common OOXML field codes this system recognises.
// Unrecognised codes are preserved verbatim as their raw code text.
type FieldType string

const (
	FieldTOC      FieldType = "TOC"
	FieldPage     FieldType = "PAGE"
	FieldRef      FieldType = "REF"
	FieldHyperlink FieldType = "HYPERLINK"
	FieldDate     FieldType = "DATE"
	FieldFilename FieldType = "FILENAME"
	FieldOther    FieldType = "OTHER"
)

// Field is one field instruction found in the document.
type Field struct {
	Type           FieldType `json:"type"`
	Code           string    `json:"code"`
	Result         string    `json:"result,omitempty"`
	ParagraphIndex int       `json:"paragraph_index"`
	IsLocked       bool      `json:"is_locked"`
	NeedsUpdate    bool      `json:"needs_update"`
}

func (f Field) validate(path string, maxParagraphIndex int) error {
	if f.ParagraphIndex < 0 || f.ParagraphIndex > maxParagraphIndex {
		return NewPathError(StageExtraction, path+".paragraph_index", "field references non-existent paragraph %d", f.ParagraphIndex)
	}
	return nil
}

// Table describes one table's shape and cell-to-paragraph mapping.
type Table struct {
	Index          int     `json:"index"`
	ParagraphIndex int     `json:"paragraph_index"` // anchoring paragraph
	Rows           int     `json:"rows"`
	Columns        int     `json:"columns"`
	HasHeader      bool    `json:"has_header"`
	StyleName      string  `json:"style_name,omitempty"`
	CellReferences [][]int `json:"cell_references"` // [row][col] -> paragraph index
}

func (t Table) validate(path string, maxParagraphIndex int) error {
	if t.ParagraphIndex < 0 || t.ParagraphIndex > maxParagraphIndex {
		return NewPathError(StageExtraction, path+".paragraph_index", "table references non-existent anchor paragraph %d", t.ParagraphIndex)
	}
	for r, row := range t.CellReferences {
		for c, idx := range row {
			if idx < 0 || idx > maxParagraphIndex {
				return NewPathError(StageExtraction, fmt.Sprintf("%s.cell_references[%d][%d]", path, r, c), "table cell references non-existent paragraph %d", idx)
			}
		}
	}
	return nil
}

// Metadata mirrors DOCX core/app properties plus structural counts.
type Metadata struct {
	Title            string `json:"title,omitempty"`
	Author           string `json:"author,omitempty"`
	CreatedTime      string `json:"created_time,omitempty"`  // RFC3339
	ModifiedTime     string `json:"modified_time,omitempty"` // RFC3339
	ApplicationVersion string `json:"application_version,omitempty"`
	PageCount        int    `json:"page_count"`
	ParagraphCount   int    `json:"paragraph_count"`
	WordCount        int    `json:"word_count"`
}

// Structure is the skeleton projection of a DOCX: structure.v1.
type Structure struct {
	SchemaVersion string      `json:"schema_version"`
	Metadata      Metadata    `json:"metadata"`
	Styles        []Style     `json:"styles"`
	Paragraphs    []Paragraph `json:"paragraphs"`
	Headings      []Heading   `json:"headings"`
	Fields        []Field     `json:"fields"`
	Tables        []Table     `json:"tables"`
}

// NewStructure returns an empty Structure stamped with the current schema
// version.
func NewStructure() *Structure {
	return &Structure{SchemaVersion: StructureSchemaVersion}
}

// Validate enforces every invariant in the data model: dense paragraph
// indices, valid reference targets, preview-text cap, exact hex colours,
// closed enum fields.
func (s *Structure) Validate() error {
	if s.SchemaVersion != StructureSchemaVersion {
		return NewPathError(StageExtraction, "schema_version", "expected %q, got %q", StructureSchemaVersion, s.SchemaVersion)
	}
	maxIdx := len(s.Paragraphs) - 1
	for i, p := range s.Paragraphs {
		if err := p.validate(fmt.Sprintf("paragraphs[%d]", i), i); err != nil {
			return err
		}
	}
	for i, st := range s.Styles {
		if err := st.validate(fmt.Sprintf("styles[%d]", i)); err != nil {
			return err
		}
	}
	for i, h := range s.Headings {
		if err := h.validate(fmt.Sprintf("headings[%d]", i), maxIdx); err != nil {
			return err
		}
	}
	for i, f := range s.Fields {
		if err := f.validate(fmt.Sprintf("fields[%d]", i), maxIdx); err != nil {
			return err
		}
	}
	for i, t := range s.Tables {
		if err := t.validate(fmt.Sprintf("tables[%d]", i), maxIdx); err != nil {
			return err
		}
	}
	return nil
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		if !((c >= '0' && c <= '9') || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}
