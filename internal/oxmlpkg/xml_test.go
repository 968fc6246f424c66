package oxmlpkg_test

import (
	"strings"
	"testing"

	"github.com/mesocyclon/docxpipeline/internal/oxmlpkg"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:pPr><w:pStyle w:val="Heading1"/></w:pPr>
      <w:r><w:t>Hello</w:t></w:r>
    </w:p>
  </w:body>
</w:document>`

func TestParseXML_ReturnsRootElement(t *testing.T) {
	t.Parallel()
	root, err := oxmlpkg.ParseXML([]byte(sampleXML))
	if err != nil {
		t.Fatalf("ParseXML failed: %v", err)
	}
	if !oxmlpkg.Is(root, "w", "document") {
		t.Errorf("expected root to be w:document, got %s:%s", root.Space, root.Tag)
	}
}

func TestParseXML_RejectsMalformedInput(t *testing.T) {
	t.Parallel()
	if _, err := oxmlpkg.ParseXML([]byte("<w:document><unterminated>")); err == nil {
		t.Error("expected an error for malformed XML")
	}
}

func TestChildrenAndFirstChild(t *testing.T) {
	t.Parallel()
	root, err := oxmlpkg.ParseXML([]byte(sampleXML))
	if err != nil {
		t.Fatalf("ParseXML failed: %v", err)
	}
	body := oxmlpkg.FirstChild(root, "w", "body")
	if body == nil {
		t.Fatal("expected to find w:body")
	}
	paragraphs := oxmlpkg.Children(body, "w", "p")
	if len(paragraphs) != 1 {
		t.Fatalf("expected 1 paragraph, got %d", len(paragraphs))
	}
	if oxmlpkg.FirstChild(body, "w", "tbl") != nil {
		t.Error("expected no w:tbl child to be found")
	}
}

func TestAttrReadsNamespacedValue(t *testing.T) {
	t.Parallel()
	root, err := oxmlpkg.ParseXML([]byte(sampleXML))
	if err != nil {
		t.Fatalf("ParseXML failed: %v", err)
	}
	body := oxmlpkg.FirstChild(root, "w", "body")
	p := oxmlpkg.FirstChild(body, "w", "p")
	pPr := oxmlpkg.FirstChild(p, "w", "pPr")
	pStyle := oxmlpkg.FirstChild(pPr, "w", "pStyle")

	if got := oxmlpkg.Attr(pStyle, "w", "val"); got != "Heading1" {
		t.Errorf("expected Heading1, got %q", got)
	}
	if got := oxmlpkg.Attr(pStyle, "w", "nonexistent"); got != "" {
		t.Errorf("expected empty string for a missing attribute, got %q", got)
	}
}

func TestSetAttrAndNewElementRoundTripThroughSerialize(t *testing.T) {
	t.Parallel()
	el := oxmlpkg.NewElement("w", "pStyle")
	oxmlpkg.SetAttr(el, "w", "val", "Heading2")

	data, err := oxmlpkg.SerializeXML(el)
	if err != nil {
		t.Fatalf("SerializeXML failed: %v", err)
	}
	if !strings.Contains(string(data), `w:val="Heading2"`) {
		t.Errorf("expected the serialized element to carry the attribute, got %s", data)
	}

	reparsed, err := oxmlpkg.ParseXML(data)
	if err != nil {
		t.Fatalf("re-parsing serialized output failed: %v", err)
	}
	if got := oxmlpkg.Attr(reparsed, "w", "val"); got != "Heading2" {
		t.Errorf("expected the attribute to survive a round trip, got %q", got)
	}
}

func TestIs_DistinguishesPrefixAndNilSafety(t *testing.T) {
	t.Parallel()
	el := oxmlpkg.NewElement("w", "p")
	if !oxmlpkg.Is(el, "w", "p") {
		t.Error("expected a matching prefix/local to report true")
	}
	if oxmlpkg.Is(el, "r", "p") {
		t.Error("expected a mismatched prefix to report false")
	}
	if oxmlpkg.Is(nil, "w", "p") {
		t.Error("expected Is(nil, ...) to report false, not panic")
	}
}
