package docmodel

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/mesocyclon/docxpipeline/internal/model"
	"github.com/mesocyclon/docxpipeline/internal/oxmlpkg"
)

// styleEntry pairs a style's w:style element with its resolved display
// name, for the two lookup directions the executor and extractor need:
// styleId -> name (paragraph w:pStyle references point at IDs) and
// name -> element (plan operations address styles by display name).
type styleEntry struct {
	el   *etree.Element
	id   string
	name string
}

// StyleNameByID resolves a style's styleId attribute to its display
// name, the indirection every w:pStyle/@w:val reference requires.
func (d *Document) StyleNameByID(id string) string {
	if e, ok := d.styleByID()[id]; ok {
		return e.name
	}
	return ""
}

func (d *Document) styleByID() map[string]styleEntry {
	out := make(map[string]styleEntry)
	if d.stylesXML == nil {
		return out
	}
	for _, el := range oxmlpkg.Children(d.stylesXML, "w", "style") {
		id := oxmlpkg.Attr(el, "w", "styleId")
		name := id
		if nameEl := oxmlpkg.FirstChild(el, "w", "name"); nameEl != nil {
			if v := oxmlpkg.Attr(nameEl, "w", "val"); v != "" {
				name = v
			}
		}
		out[id] = styleEntry{el: el, id: id, name: name}
	}
	return out
}

func (d *Document) styleByName(name string) *styleEntry {
	for id, e := range d.styleByID() {
		_ = id
		if e.name == name {
			ec := e
			return &ec
		}
	}
	return nil
}

// Styles returns the document's style table in structure.v1 shape.
func (d *Document) Styles() []model.Style {
	var out []model.Style
	for _, e := range d.styleByID() {
		out = append(out, styleFromElement(e))
	}
	return out
}

// StyleNames returns every defined style's display name, the
// "knownStyles" set localisation.Resolve consults.
func (d *Document) StyleNames() []string {
	var names []string
	for _, e := range d.styleByID() {
		names = append(names, e.name)
	}
	return names
}

func styleFromElement(e styleEntry) model.Style {
	s := model.Style{Name: e.name}
	switch oxmlpkg.Attr(e.el, "w", "type") {
	case "character":
		s.Type = model.StyleTypeCharacter
	case "table":
		s.Type = model.StyleTypeTable
	default:
		s.Type = model.StyleTypeParagraph
	}
	if link := oxmlpkg.FirstChild(e.el, "w", "link"); link != nil {
		s.Type = model.StyleTypeLinked
	}
	s.IsBuiltin = oxmlpkg.Attr(e.el, "w", "default") == "1" || oxmlpkg.Attr(e.el, "w", "customStyle") == ""
	s.IsModified = oxmlpkg.FirstChild(e.el, "w", "qFormat") == nil

	if rPr := oxmlpkg.FirstChild(e.el, "w", "rPr"); rPr != nil {
		s.Font = fontFromRPr(rPr)
	}
	if pPr := oxmlpkg.FirstChild(e.el, "w", "pPr"); pPr != nil {
		s.Paragraph = paragraphPropsFromPPr(pPr)
	}
	return s
}

func fontFromRPr(rPr *etree.Element) model.Font {
	var f model.Font
	if rFonts := oxmlpkg.FirstChild(rPr, "w", "rFonts"); rFonts != nil {
		f.EastAsianName = oxmlpkg.Attr(rFonts, "w", "eastAsia")
		f.LatinName = oxmlpkg.Attr(rFonts, "w", "ascii")
	}
	if sz := oxmlpkg.FirstChild(rPr, "w", "sz"); sz != nil {
		if v, err := strconv.Atoi(oxmlpkg.Attr(sz, "w", "val")); err == nil {
			f.SizePt = float64(v) / 2
		}
	}
	f.Bold = boolProp(rPr, "b")
	f.Italic = boolProp(rPr, "i")
	f.Underline = oxmlpkg.FirstChild(rPr, "w", "u") != nil
	if color := oxmlpkg.FirstChild(rPr, "w", "color"); color != nil {
		if v := oxmlpkg.Attr(color, "w", "val"); v != "" && v != "auto" {
			f.ColorHex = "#" + v
		}
	}
	return f
}

func boolProp(parent *etree.Element, local string) bool {
	el := oxmlpkg.FirstChild(parent, "w", local)
	if el == nil {
		return false
	}
	v := oxmlpkg.Attr(el, "w", "val")
	return v == "" || v == "1" || v == "true" || v == "on"
}

func paragraphPropsFromPPr(pPr *etree.Element) model.ParagraphProps {
	var p model.ParagraphProps
	if spacing := oxmlpkg.FirstChild(pPr, "w", "spacing"); spacing != nil {
		if before := oxmlpkg.Attr(spacing, "w", "before"); before != "" {
			p.SpaceBeforePt = twipsToPt(before)
		}
		if after := oxmlpkg.Attr(spacing, "w", "after"); after != "" {
			p.SpaceAfterPt = twipsToPt(after)
		}
		lineRule := oxmlpkg.Attr(spacing, "w", "lineRule")
		line := oxmlpkg.Attr(spacing, "w", "line")
		if line != "" {
			lv, _ := strconv.Atoi(line)
			switch lineRule {
			case "exact", "atLeast":
				p.LineSpacingMode = model.LineSpacingExactly
				p.LineSpacingValue = float64(lv) / 20
			default:
				if lv == 240 {
					p.LineSpacingMode = model.LineSpacingSingle
				} else {
					p.LineSpacingMode = model.LineSpacingMultiple
					p.LineSpacingValue = float64(lv) / 240
				}
			}
		}
	}
	if jc := oxmlpkg.FirstChild(pPr, "w", "jc"); jc != nil {
		switch oxmlpkg.Attr(jc, "w", "val") {
		case "center":
			p.Alignment = model.AlignCenter
		case "right":
			p.Alignment = model.AlignRight
		case "both", "justify":
			p.Alignment = model.AlignJustify
		default:
			p.Alignment = model.AlignLeft
		}
	}
	if ind := oxmlpkg.FirstChild(pPr, "w", "ind"); ind != nil {
		if l := oxmlpkg.Attr(ind, "w", "left"); l != "" {
			p.IndentLeftPt = twipsToPt(l)
		}
		if r := oxmlpkg.Attr(ind, "w", "right"); r != "" {
			p.IndentRightPt = twipsToPt(r)
		}
		if fl := oxmlpkg.Attr(ind, "w", "firstLine"); fl != "" {
			p.IndentFirstLinePt = twipsToPt(fl)
		}
	}
	return p
}

func twipsToPt(raw string) float64 {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return float64(v) / 20
}

// ApplyStyleRule mutates the named style's rPr/pPr to match the given
// rule, creating its rPr/pPr child (and their property children) if absent. A
// target style the document does not define is a NOOP, not an error —
// per spec.md §4.3 item 4 — so the caller can tell applied from missing.
// This is the object-model write path for the set_style_rule atomic
// operation — never textual search-and-replace.
func (d *Document) ApplyStyleRule(op model.SetStyleRule) (bool, error) {
	entry := d.styleByName(op.TargetStyle)
	if entry == nil {
		return false, nil
	}
	el := entry.el

	if op.FontEastAsian != nil || op.FontLatin != nil || op.FontSizePt != nil || op.FontBold != nil || op.FontItalic != nil || op.FontColorHex != nil {
		rPr := getOrAddChild(el, "w", "rPr")
		if op.FontEastAsian != nil || op.FontLatin != nil {
			rFonts := getOrAddChild(rPr, "w", "rFonts")
			if op.FontEastAsian != nil {
				oxmlpkg.SetAttr(rFonts, "w", "eastAsia", *op.FontEastAsian)
			}
			if op.FontLatin != nil {
				oxmlpkg.SetAttr(rFonts, "w", "ascii", *op.FontLatin)
				oxmlpkg.SetAttr(rFonts, "w", "hAnsi", *op.FontLatin)
			}
		}
		if op.FontSizePt != nil {
			sz := getOrAddChild(rPr, "w", "sz")
			oxmlpkg.SetAttr(sz, "w", "val", strconv.Itoa(int(*op.FontSizePt*2)))
			szCs := getOrAddChild(rPr, "w", "szCs")
			oxmlpkg.SetAttr(szCs, "w", "val", strconv.Itoa(int(*op.FontSizePt*2)))
		}
		if op.FontBold != nil {
			setBoolProp(rPr, "b", *op.FontBold)
		}
		if op.FontItalic != nil {
			setBoolProp(rPr, "i", *op.FontItalic)
		}
		if op.FontColorHex != nil {
			color := getOrAddChild(rPr, "w", "color")
			oxmlpkg.SetAttr(color, "w", "val", (*op.FontColorHex)[1:])
		}
	}

	if op.LineSpacingMode != nil || op.LineSpacingValue != nil || op.SpaceBeforePt != nil || op.SpaceAfterPt != nil || op.Alignment != nil {
		pPr := getOrAddChild(el, "w", "pPr")
		if op.LineSpacingMode != nil || op.LineSpacingValue != nil || op.SpaceBeforePt != nil || op.SpaceAfterPt != nil {
			spacing := getOrAddChild(pPr, "w", "spacing")
			if op.SpaceBeforePt != nil {
				oxmlpkg.SetAttr(spacing, "w", "before", strconv.Itoa(int(*op.SpaceBeforePt*20)))
			}
			if op.SpaceAfterPt != nil {
				oxmlpkg.SetAttr(spacing, "w", "after", strconv.Itoa(int(*op.SpaceAfterPt*20)))
			}
			if op.LineSpacingMode != nil {
				switch *op.LineSpacingMode {
				case model.LineSpacingExactly:
					oxmlpkg.SetAttr(spacing, "w", "lineRule", "exact")
					if op.LineSpacingValue != nil {
						oxmlpkg.SetAttr(spacing, "w", "line", strconv.Itoa(int(*op.LineSpacingValue*20)))
					}
				case model.LineSpacingSingle:
					oxmlpkg.SetAttr(spacing, "w", "lineRule", "auto")
					oxmlpkg.SetAttr(spacing, "w", "line", "240")
				case model.LineSpacingMultiple:
					oxmlpkg.SetAttr(spacing, "w", "lineRule", "auto")
					if op.LineSpacingValue != nil {
						oxmlpkg.SetAttr(spacing, "w", "line", strconv.Itoa(int(*op.LineSpacingValue*240)))
					}
				}
			}
		}
		if op.Alignment != nil {
			jc := getOrAddChild(pPr, "w", "jc")
			switch *op.Alignment {
			case model.AlignCenter:
				oxmlpkg.SetAttr(jc, "w", "val", "center")
			case model.AlignRight:
				oxmlpkg.SetAttr(jc, "w", "val", "right")
			case model.AlignJustify:
				oxmlpkg.SetAttr(jc, "w", "val", "both")
			default:
				oxmlpkg.SetAttr(jc, "w", "val", "left")
			}
		}
	}
	d.touchModified()
	return true, nil
}

func setBoolProp(parent *etree.Element, local string, val bool) {
	el := getOrAddChild(parent, "w", local)
	if val {
		el.RemoveAttr("w:val")
	} else {
		oxmlpkg.SetAttr(el, "w", "val", "0")
	}
}

func getOrAddChild(parent *etree.Element, prefix, local string) *etree.Element {
	if existing := oxmlpkg.FirstChild(parent, prefix, local); existing != nil {
		return existing
	}
	child := oxmlpkg.NewElement(prefix, local)
	parent.AddChild(child)
	return child
}
