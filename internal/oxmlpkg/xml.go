// Package oxmlpkg provides low-level XML element helpers for Office Open XML
// parts. It is the thin layer between raw part bytes and the typed walk
// performed by internal/docmodel — parse, serialize, and namespace lookup
// only; no part- or document-specific semantics live here.
package oxmlpkg

import (
	"bytes"
	"fmt"

	"github.com/beevik/etree"
)

// Nsmap maps the namespace prefixes this module cares about to their URIs.
// OOXML documents declare these prefixes on the package root elements
// themselves; we match on the literal prefix (Element.Space) the same way
// the source documents do, rather than resolving through the URI, so this
// map exists for element construction and for the rare case a part needs a
// declaration added that the source did not already carry.
var Nsmap = map[string]string{
	"w":   "http://schemas.openxmlformats.org/wordprocessingml/2006/main",
	"r":   "http://schemas.openxmlformats.org/officeDocument/2006/relationships",
	"w14": "http://schemas.microsoft.com/office/word/2010/wordml",
	"mc":  "http://schemas.openxmlformats.org/markup-compatibility/2006",
	"cp":  "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
	"dc":  "http://purl.org/dc/elements/1.1/",
	"dcterms": "http://purl.org/dc/terms/",
	"xsi": "http://www.w3.org/2001/XMLSchema-instance",
}

// ParseXML parses XML bytes into an *etree.Element root.
func ParseXML(data []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("oxmlpkg: parse xml: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("oxmlpkg: parse xml: no root element")
	}
	return root, nil
}

// SerializeXML serializes el as a standalone OOXML part: declaration plus
// compact body, no added insignificant whitespace.
func SerializeXML(el *etree.Element) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	doc.SetRoot(el.Copy())
	doc.WriteSettings.CanonicalEndTags = true

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("oxmlpkg: serialize xml: %w", err)
	}
	return buf.Bytes(), nil
}

// NewElement creates an element with the given namespace prefix and local
// name, e.g. NewElement("w", "p") for <w:p>.
func NewElement(prefix, local string) *etree.Element {
	el := etree.NewElement(local)
	el.Space = prefix
	return el
}

// Attr returns the value of a namespace-prefixed attribute, e.g. Attr(el,
// "w", "val"), or "" if absent. Falls back to the bare local name for
// attributes serialized without a prefix (some parts omit it on w:val).
func Attr(el *etree.Element, prefix, local string) string {
	if prefix != "" {
		if a := el.SelectAttr(prefix + ":" + local); a != nil {
			return a.Value
		}
	}
	if a := el.SelectAttr(local); a != nil {
		return a.Value
	}
	return ""
}

// SetAttr sets a namespace-prefixed attribute on el.
func SetAttr(el *etree.Element, prefix, local, value string) {
	el.CreateAttr(prefix+":"+local, value)
}

// Children returns direct child elements matching the given namespace
// prefix and local name.
func Children(el *etree.Element, prefix, local string) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if c.Space == prefix && c.Tag == local {
			out = append(out, c)
		}
	}
	return out
}

// FirstChild returns the first direct child matching prefix/local, or nil.
func FirstChild(el *etree.Element, prefix, local string) *etree.Element {
	for _, c := range el.ChildElements() {
		if c.Space == prefix && c.Tag == local {
			return c
		}
	}
	return nil
}

// Is reports whether el has the given namespace prefix and local name.
func Is(el *etree.Element, prefix, local string) bool {
	return el != nil && el.Space == prefix && el.Tag == local
}
