// Package localisation provides the style-alias table and font-fallback
// chains the executor consults when resolving a plan's style/font targets
// against the open document. It generalises the teacher library's
// oxml.BabelFish table (go-docx/pkg/docx/oxml/babelfish.go): that table is
// a fixed, English-only, 12-entry UI<->internal mapping; this table is an
// open, multi-locale, bidirectional mapping loaded from YAML, with a
// dynamic fallback scan of the open document's own defined styles.
package localisation

import "strings"

// StyleAliasTable is a bidirectional mapping between canonical style names
// and localised equivalents, e.g. "Heading 1" <-> "标题 1".
type StyleAliasTable struct {
	canonical2local map[string]string
	local2canonical map[string]string
}

// StyleAlias is one canonical/localised pair, the YAML-facing shape.
type StyleAlias struct {
	Canonical  string `yaml:"canonical" json:"canonical"`
	Localised  string `yaml:"localised" json:"localised"`
}

// NewStyleAliasTable builds a table from a list of aliases. Mirrors the
// shape of babelFishAliases in the teacher library, generalized from a
// fixed slice of [2]string pairs to a configurable, documented struct.
func NewStyleAliasTable(aliases []StyleAlias) *StyleAliasTable {
	t := &StyleAliasTable{
		canonical2local: make(map[string]string, len(aliases)),
		local2canonical: make(map[string]string, len(aliases)),
	}
	for _, a := range aliases {
		t.canonical2local[a.Canonical] = a.Localised
		t.local2canonical[a.Localised] = a.Canonical
	}
	return t
}

// DefaultStyleAliasTable seeds the table with the Word built-in styles most
// commonly localised, matching the teacher's babelFishAliases set plus the
// Simplified Chinese equivalents named explicitly in the specification
// (Heading 1 <-> 标题 1, Normal <-> 正文).
func DefaultStyleAliasTable() *StyleAliasTable {
	return NewStyleAliasTable([]StyleAlias{
		{Canonical: "Normal", Localised: "正文"},
		{Canonical: "Heading 1", Localised: "标题 1"},
		{Canonical: "Heading 2", Localised: "标题 2"},
		{Canonical: "Heading 3", Localised: "标题 3"},
		{Canonical: "Heading 4", Localised: "标题 4"},
		{Canonical: "Heading 5", Localised: "标题 5"},
		{Canonical: "Heading 6", Localised: "标题 6"},
		{Canonical: "Heading 7", Localised: "标题 7"},
		{Canonical: "Heading 8", Localised: "标题 8"},
		{Canonical: "Heading 9", Localised: "标题 9"},
		{Canonical: "Caption", Localised: "题注"},
		{Canonical: "Footer", Localised: "页脚"},
		{Canonical: "Header", Localised: "页眉"},
		{Canonical: "Title", Localised: "标题"},
		{Canonical: "Table of Figures", Localised: "图表目录"},
	})
}

// Resolve returns name itself if knownStyles (the document's own defined
// style names) contains it exactly; otherwise it looks name up in the
// canonical-to-localised table, then the localised-to-canonical table,
// then falls back to a case-insensitive scan of knownStyles, for
// documents whose localisation the static tables don't cover. Returns the
// resolved name and whether a match was found at all: when nothing
// matches, name comes back unchanged with found=false, so callers can
// distinguish "no match anywhere" from "matched, unchanged".
func (t *StyleAliasTable) Resolve(name string, knownStyles []string) (resolved string, found bool) {
	for _, s := range knownStyles {
		if s == name {
			return s, true
		}
	}
	if local, ok := t.canonical2local[name]; ok {
		for _, s := range knownStyles {
			if s == local {
				return s, true
			}
		}
		return local, true
	}
	if canon, ok := t.local2canonical[name]; ok {
		for _, s := range knownStyles {
			if s == canon {
				return s, true
			}
		}
		return canon, true
	}
	for _, s := range knownStyles {
		if strings.EqualFold(s, name) {
			return s, true
		}
	}
	return name, false
}
