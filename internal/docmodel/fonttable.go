package docmodel

import (
	"github.com/mesocyclon/docxpipeline/internal/oxmlpkg"
)

// DeclaredFontNames returns every font name declared in fontTable.xml
// (w:font/@w:name), the set the executor's localisation font-fallback
// resolver treats as "available on the host" in the absence of a real
// Word automation handle to query actual installed fonts.
func (d *Document) DeclaredFontNames() []string {
	if len(d.FontTable) == 0 {
		return nil
	}
	root, err := oxmlpkg.ParseXML(d.FontTable)
	if err != nil {
		return nil
	}
	var names []string
	for _, f := range oxmlpkg.Children(root, "w", "font") {
		if name := oxmlpkg.Attr(f, "w", "name"); name != "" {
			names = append(names, name)
		}
	}
	return names
}
