package docmodel

import (
	"encoding/xml"
	"time"

	"github.com/mesocyclon/docxpipeline/internal/oxmlpkg"
)

// CoreProperties holds Dublin Core metadata from docProps/core.xml.
// Grounded in the teacher's internal/packaging.CoreProperties, extended
// with the timestamp fields the structure.v1 metadata block requires
// (Created/Modified/LastModifiedBy weren't needed by the teacher's
// packaging-info endpoint but are load-bearing here for the metadata
// timestamp-advance invariant).
type CoreProperties struct {
	Title           string
	Creator         string
	Description     string
	LastModifiedBy  string
	Created         string
	Modified        string
}

// AppProperties holds extended-property metadata from docProps/app.xml.
type AppProperties struct {
	Application string
}

type xmlCoreProperties struct {
	XMLName        xml.Name `xml:"coreProperties"`
	Title          string   `xml:"title"`
	Creator        string   `xml:"creator"`
	Description    string   `xml:"description"`
	LastModifiedBy string   `xml:"lastModifiedBy"`
	Created        string   `xml:"created"`
	Modified       string   `xml:"modified"`
}

func parseCoreProps(blob []byte) *CoreProperties {
	if len(blob) == 0 {
		return nil
	}
	var props xmlCoreProperties
	if err := xml.Unmarshal(blob, &props); err != nil {
		return &CoreProperties{}
	}
	return &CoreProperties{
		Title:          props.Title,
		Creator:        props.Creator,
		Description:    props.Description,
		LastModifiedBy: props.LastModifiedBy,
		Created:        props.Created,
		Modified:       props.Modified,
	}
}

type xmlAppProperties struct {
	XMLName     xml.Name `xml:"Properties"`
	Application string   `xml:"Application"`
}

func parseAppProps(blob []byte) *AppProperties {
	if len(blob) == 0 {
		return nil
	}
	var props xmlAppProperties
	if err := xml.Unmarshal(blob, &props); err != nil {
		return &AppProperties{}
	}
	return &AppProperties{Application: props.Application}
}

// touchModified stamps docProps/core.xml's dcterms:modified with the
// current time, the metadata-advance signal checkPaginationAssertion
// looks for after any operation actually changes the document. A
// document with no core.xml part at all carries no modified timestamp
// to advance, so this is a no-op in that case.
func (d *Document) touchModified() {
	if d.coreXML == nil {
		return
	}
	now := time.Now().UTC().Format(time.RFC3339)
	el := oxmlpkg.FirstChild(d.coreXML, "dcterms", "modified")
	if el == nil {
		el = oxmlpkg.NewElement("dcterms", "modified")
		oxmlpkg.SetAttr(el, "xsi", "type", "dcterms:W3CDTF")
		d.coreXML.AddChild(el)
	}
	el.SetText(now)
	if d.CoreProps == nil {
		d.CoreProps = &CoreProperties{}
	}
	d.CoreProps.Modified = now
}
