package docmodel

import (
	"fmt"
	"path"
	"strings"

	"github.com/beevik/etree"

	"github.com/mesocyclon/docxpipeline/internal/model"
	"github.com/mesocyclon/docxpipeline/internal/oxmlpkg"
)

// OpenBytes is an alias for Open kept for parity with the teacher
// package's OpenBytes/OpenReader naming (internal/packaging/document.go).
func OpenBytes(data []byte) (*Document, error) {
	return Open(data)
}

// Structure projects the open document into the structure.v1 skeleton:
// styles, the dense paragraph list, the filtered heading view, fields,
// tables, and metadata.
func (d *Document) Structure() *model.Structure {
	s := model.NewStructure()
	s.Styles = d.Styles()
	paras, headings := d.Paragraphs()
	s.Paragraphs = paras
	s.Headings = headings
	s.Fields = d.Fields()
	s.Tables = d.Tables()
	s.Metadata = d.metadata(paras)
	return s
}

func (d *Document) metadata(paras []model.Paragraph) model.Metadata {
	m := model.Metadata{ParagraphCount: len(paras)}
	if d.CoreProps != nil {
		m.Title = d.CoreProps.Title
		m.Author = d.CoreProps.Creator
		m.CreatedTime = d.CoreProps.Created
		m.ModifiedTime = d.CoreProps.Modified
	}
	if d.AppProps != nil {
		m.ApplicationVersion = d.AppProps.Application
	}
	maxPage := 0
	for _, p := range paras {
		if p.PageNumber > maxPage {
			maxPage = p.PageNumber
		}
	}
	if maxPage == 0 {
		maxPage = 1
	}
	m.PageCount = maxPage
	m.WordCount = d.wordCount()
	return m
}

// wordCount sums whitespace-delimited tokens across every paragraph's
// full run text — unlike PreviewText, this is not capped, since the word
// count is a structural fact about the document, not a disambiguation aid.
func (d *Document) wordCount() int {
	entries, _ := d.walkBody()
	total := 0
	for _, e := range entries {
		var b strings.Builder
		for _, run := range oxmlpkg.Children(e.el, "w", "r") {
			for _, t := range oxmlpkg.Children(run, "w", "t") {
				b.WriteString(t.Text())
			}
		}
		total += len(strings.Fields(b.String()))
	}
	return total
}

// Inventory projects the open document into the inventory.full.v1
// artifact: every non-skeleton part and embedded object the structure
// view drops, captured for the loss-closure pairing with structure.v1.
// Nothing in this package rebuilds a document from that pair.
func (d *Document) Inventory() *model.Inventory {
	inv := model.NewInventory()

	addFragment := func(key string, blob []byte) {
		if len(blob) > 0 {
			inv.OOXMLFragments[key] = string(blob)
		}
	}
	for name, blob := range d.Headers {
		addFragment("header:"+name, blob)
	}
	for name, blob := range d.Footers {
		addFragment("footer:"+name, blob)
	}
	addFragment("footnotes", d.Footnotes)
	addFragment("endnotes", d.Endnotes)
	addFragment("comments", d.Comments)
	addFragment("numbering", d.Numbering)
	addFragment("settings", d.Settings)
	addFragment("webSettings", d.WebSettings)
	for name, blob := range d.Theme {
		addFragment("theme:"+name, blob)
	}
	for name, blob := range d.CustomXML {
		addFragment("customXml:"+name, blob)
	}
	for name, blob := range d.UnknownParts {
		addFragment("unknown:"+name, blob)
	}

	i := 0
	for name, blob := range d.Media {
		i++
		inv.MediaIndexes[name] = model.MediaDescriptor{
			MediaID:     fmt.Sprintf("media%d", i),
			Filename:    path.Base(name),
			ContentType: mediaContentType(name),
			SizeBytes:   len(blob),
			Embedded:    true,
		}
	}

	entries, _ := d.walkBody()
	for idx, e := range entries {
		for _, sdt := range descendants(e.el, "w", "sdt") {
			ref := model.ContentControlRef{ParagraphIndex: idx}
			if sdtPr := oxmlpkg.FirstChild(sdt, "w", "sdtPr"); sdtPr != nil {
				if tag := oxmlpkg.FirstChild(sdtPr, "w", "tag"); tag != nil {
					ref.Tag = oxmlpkg.Attr(tag, "w", "val")
				}
				if alias := oxmlpkg.FirstChild(sdtPr, "w", "alias"); alias != nil {
					ref.Alias = oxmlpkg.Attr(alias, "w", "val")
				}
			}
			if xmlBytes, err := oxmlpkg.SerializeXML(sdt); err == nil {
				ref.SDTXML = string(xmlBytes)
			}
			inv.ContentControls = append(inv.ContentControls, ref)
		}
		for _, formula := range descendants(e.el, "m", "oMath") {
			xmlBytes, err := oxmlpkg.SerializeXML(formula)
			if err != nil {
				continue
			}
			inv.Formulas = append(inv.Formulas, model.FormulaRef{XML: string(xmlBytes), ParagraphIndex: idx})
		}
		for _, graphicData := range descendants(e.el, "a", "graphicData") {
			uri := oxmlpkg.Attr(graphicData, "", "uri")
			var kind string
			switch {
			case strings.Contains(uri, "chart"):
				kind = "chart"
			case strings.Contains(uri, "diagram"):
				kind = "smartart"
			default:
				continue
			}
			xmlBytes, err := oxmlpkg.SerializeXML(graphicData)
			if err != nil {
				continue
			}
			inv.Charts = append(inv.Charts, model.ChartRef{Kind: kind, XML: string(xmlBytes), ParagraphIndex: idx})
		}
		for _, obj := range descendants(e.el, "w", "object") {
			xmlBytes, err := oxmlpkg.SerializeXML(obj)
			if err != nil {
				continue
			}
			inv.Charts = append(inv.Charts, model.ChartRef{Kind: "ole", XML: string(xmlBytes), ParagraphIndex: idx})
		}
	}

	return inv
}

// descendants recursively collects every element at any depth under el
// matching prefix/local, depth-first in document order.
func descendants(el *etree.Element, prefix, local string) []*etree.Element {
	var out []*etree.Element
	for _, child := range el.ChildElements() {
		if oxmlpkg.Is(child, prefix, local) {
			out = append(out, child)
		}
		out = append(out, descendants(child, prefix, local)...)
	}
	return out
}

func mediaContentType(partName string) string {
	switch {
	case strings.HasSuffix(partName, ".png"):
		return "image/png"
	case strings.HasSuffix(partName, ".jpg"), strings.HasSuffix(partName, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(partName, ".gif"):
		return "image/gif"
	case strings.HasSuffix(partName, ".emf"):
		return "image/x-emf"
	case strings.HasSuffix(partName, ".wmf"):
		return "image/x-wmf"
	default:
		return "application/octet-stream"
	}
}
