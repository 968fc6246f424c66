package docmodel

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"

	"github.com/mesocyclon/docxpipeline/internal/model"
	"github.com/mesocyclon/docxpipeline/internal/oxmlpkg"
)

func validOutlineValue(v string) bool {
	n := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return false
		}
		n = n*10 + int(c-'0')
	}
	return n >= 0 && n <= 8
}

// paraEntry is one body-order paragraph element with the table context it
// was found in, the intermediate form the body walk builds before
// projecting into model.Paragraph/model.Heading/model.Table.
type paraEntry struct {
	el         *etree.Element
	inTable    bool
	tableIndex *int
}

// body returns the document's <w:body> element.
func (d *Document) body() *etree.Element {
	return oxmlpkg.FirstChild(d.documentXML, "w", "body")
}

// walkBody performs a single document-order traversal of the body,
// collecting every paragraph (including ones nested in table cells, so
// indices stay dense across the whole document) alongside every table's
// shape and cell-to-paragraph mapping.
func (d *Document) walkBody() ([]paraEntry, []model.Table) {
	body := d.body()
	if body == nil {
		return nil, nil
	}
	var paras []paraEntry
	var tables []model.Table
	tableCounter := 0

	var walkTable func(tbl *etree.Element, anchor int) model.Table
	walkTable = func(tbl *etree.Element, anchor int) model.Table {
		idx := tableCounter
		tableCounter++
		t := model.Table{Index: idx, ParagraphIndex: anchor}
		if tblPr := oxmlpkg.FirstChild(tbl, "w", "tblPr"); tblPr != nil {
			if style := oxmlpkg.FirstChild(tblPr, "w", "tblStyle"); style != nil {
				t.StyleName = d.StyleNameByID(oxmlpkg.Attr(style, "w", "val"))
			}
		}
		rows := oxmlpkg.Children(tbl, "w", "tr")
		t.Rows = len(rows)
		for ri, row := range rows {
			if ri == 0 {
				if trPr := oxmlpkg.FirstChild(row, "w", "trPr"); trPr != nil {
					if oxmlpkg.FirstChild(trPr, "w", "tblHeader") != nil {
						t.HasHeader = true
					}
				}
			}
			cells := oxmlpkg.Children(row, "w", "tc")
			if len(cells) > t.Columns {
				t.Columns = len(cells)
			}
			rowRefs := make([]int, 0, len(cells))
			for _, cell := range cells {
				firstIdx := -1
				tIdx := idx
				for _, child := range cell.ChildElements() {
					switch {
					case oxmlpkg.Is(child, "w", "p"):
						paraIdx := len(paras)
						if firstIdx == -1 {
							firstIdx = paraIdx
						}
						paras = append(paras, paraEntry{el: child, inTable: true, tableIndex: &tIdx})
					case oxmlpkg.Is(child, "w", "tbl"):
						nestedAnchor := len(paras) - 1
						if nestedAnchor < 0 {
							nestedAnchor = 0
						}
						nested := walkTable(child, nestedAnchor)
						tables = append(tables, nested)
					}
				}
				if firstIdx == -1 {
					firstIdx = len(paras) - 1
					if firstIdx < 0 {
						firstIdx = 0
					}
				}
				rowRefs = append(rowRefs, firstIdx)
			}
			t.CellReferences = append(t.CellReferences, rowRefs)
		}
		return t
	}

	for _, child := range body.ChildElements() {
		switch {
		case oxmlpkg.Is(child, "w", "p"):
			paras = append(paras, paraEntry{el: child})
		case oxmlpkg.Is(child, "w", "tbl"):
			anchor := len(paras) - 1
			if anchor < 0 {
				anchor = 0
			}
			t := walkTable(child, anchor)
			tables = append(tables, t)
		}
	}
	return paras, tables
}

// Paragraphs projects the body walk into the dense structure.v1 paragraph
// skeleton plus its filtered heading view.
func (d *Document) Paragraphs() ([]model.Paragraph, []model.Heading) {
	entries, _ := d.walkBody()
	d.clampedOutlines = nil
	paras := make([]model.Paragraph, 0, len(entries))
	var headings []model.Heading

	page := 1
	for i, e := range entries {
		p := model.Paragraph{Index: i, PageNumber: page}
		pPr := oxmlpkg.FirstChild(e.el, "w", "pPr")
		var styleID string
		if pPr != nil {
			if pStyle := oxmlpkg.FirstChild(pPr, "w", "pStyle"); pStyle != nil {
				styleID = oxmlpkg.Attr(pStyle, "w", "val")
			}
		}
		styleName := d.StyleNameByID(styleID)
		p.StyleName = styleName
		p.PreviewText = previewText(e.el)

		if pPr != nil {
			if outline := oxmlpkg.FirstChild(pPr, "w", "outlineLvl"); outline != nil {
				if v := oxmlpkg.Attr(outline, "w", "val"); v != "" && !validOutlineValue(v) {
					d.clampedOutlines = append(d.clampedOutlines, fmt.Sprintf("paragraph %d: invalid outline level %q, treated as non-heading", i, v))
				}
			}
		}

		level, isHeading := headingLevel(styleName, pPr)
		if isHeading {
			p.IsHeading = true
			p.HeadingLevel = &level
			headings = append(headings, model.Heading{
				Text:           p.PreviewText,
				Level:          level,
				StyleName:      styleName,
				ParagraphIndex: i,
				PageNumber:     page,
				InTable:        e.inTable,
				TableIndex:     e.tableIndex,
			})
		}

		page += countPageBreaks(e.el)
		paras = append(paras, p)
	}
	return paras, headings
}

// Tables projects the body walk into the structure.v1 table skeleton.
func (d *Document) Tables() []model.Table {
	_, tables := d.walkBody()
	return tables
}

// previewText concatenates every run's text within a paragraph, capped at
// PreviewTextMaxScalars runes — the extractor's skeleton never carries
// full body text, only enough to disambiguate and audit against.
func previewText(p *etree.Element) string {
	var b strings.Builder
	for _, run := range oxmlpkg.Children(p, "w", "r") {
		for _, t := range oxmlpkg.Children(run, "w", "t") {
			b.WriteString(t.Text())
		}
	}
	text := b.String()
	if utf8.RuneCountInString(text) <= model.PreviewTextMaxScalars {
		return text
	}
	runes := []rune(text)
	return string(runes[:model.PreviewTextMaxScalars])
}

// headingLevel decides whether a paragraph is a heading and at what
// level, preferring an explicit outline level over style-name pattern
// matching, and clamping out-of-range outline levels to "not a heading"
// per the edge-case policy rather than producing an invalid level.
func headingLevel(styleName string, pPr *etree.Element) (int, bool) {
	if pPr != nil {
		if outline := oxmlpkg.FirstChild(pPr, "w", "outlineLvl"); outline != nil {
			if v := oxmlpkg.Attr(outline, "w", "val"); v != "" {
				n := 0
				valid := true
				for _, c := range v {
					if c < '0' || c > '9' {
						valid = false
						break
					}
					n = n*10 + int(c-'0')
				}
				if valid && n >= 0 && n <= 8 {
					return n + 1, true
				}
				return 0, false
			}
		}
	}
	lower := strings.ToLower(strings.TrimSpace(styleName))
	const prefix = "heading "
	if strings.HasPrefix(lower, prefix) {
		suffix := lower[len(prefix):]
		n := 0
		for _, c := range suffix {
			if c < '0' || c > '9' {
				return 0, false
			}
			n = n*10 + int(c-'0')
		}
		if n >= 1 && n <= 9 {
			return n, true
		}
	}
	return 0, false
}

// countPageBreaks counts explicit manual page breaks (w:br w:type="page")
// within a paragraph. Word computes true page numbers through full text
// layout, which this engine does not perform (no rendering pipeline is in
// scope); counting explicit breaks is the same approximation python-docx
// users rely on when asking what page a paragraph falls on without a
// renderer.
func countPageBreaks(p *etree.Element) int {
	count := 0
	for _, run := range oxmlpkg.Children(p, "w", "r") {
		for _, br := range oxmlpkg.Children(run, "w", "br") {
			if oxmlpkg.Attr(br, "w", "type") == "page" {
				count++
			}
		}
	}
	return count
}
