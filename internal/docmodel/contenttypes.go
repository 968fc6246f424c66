package docmodel

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// contentTypesXML mirrors [Content_Types].xml: a handful of Default
// entries keyed by file extension and Override entries keyed by exact
// part name, the latter taking precedence.
type contentTypesXML struct {
	XMLName   xml.Name `xml:"Types"`
	Defaults  []struct {
		Extension   string `xml:"Extension,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Default"`
	Overrides []struct {
		PartName    string `xml:"PartName,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Override"`
}

type contentTypeTable struct {
	byExtension map[string]string
	byPartName  map[string]string
}

func (t *contentTypeTable) lookup(partName string) string {
	name := "/" + partName
	if ct, ok := t.byPartName[name]; ok {
		return ct
	}
	if ct, ok := t.byPartName[partName]; ok {
		return ct
	}
	if i := strings.LastIndex(partName, "."); i >= 0 {
		ext := strings.ToLower(partName[i+1:])
		if ct, ok := t.byExtension[ext]; ok {
			return ct
		}
	}
	return ""
}

func parseContentTypes(blob []byte) (*contentTypeTable, error) {
	if blob == nil {
		return nil, fmt.Errorf("missing [Content_Types].xml")
	}
	var parsed contentTypesXML
	if err := xml.Unmarshal(blob, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshaling content types: %w", err)
	}
	t := &contentTypeTable{
		byExtension: make(map[string]string, len(parsed.Defaults)),
		byPartName:  make(map[string]string, len(parsed.Overrides)),
	}
	for _, d := range parsed.Defaults {
		t.byExtension[strings.ToLower(d.Extension)] = d.ContentType
	}
	for _, o := range parsed.Overrides {
		t.byPartName[o.PartName] = o.ContentType
	}
	return t, nil
}
