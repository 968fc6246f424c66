package model

const InventorySchemaVersion = "inventory.full.v1"

// MediaDescriptor describes one embedded media file.
type MediaDescriptor struct {
	MediaID     string `json:"media_id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	SizeBytes   int    `json:"size_bytes"`
	Embedded    bool   `json:"embedded"`
}

// ContentControlRef is an opaque reference to a content control, with its
// captured OOXML for round-tripping.
type ContentControlRef struct {
	Tag       string `json:"tag,omitempty"`
	Alias     string `json:"alias,omitempty"`
	SDTXML    string `json:"sdt_xml"`
	ParagraphIndex int `json:"paragraph_index"`
}

// FormulaRef is an opaque reference to an OMML formula.
type FormulaRef struct {
	XML            string `json:"xml"`
	ParagraphIndex int    `json:"paragraph_index"`
}

// ChartRef is an opaque reference to a chart, SmartArt diagram, or OLE
// object, with its captured OOXML.
type ChartRef struct {
	Kind           string `json:"kind"` // chart | smartart | ole
	PartName       string `json:"part_name"`
	XML            string `json:"xml"`
	ParagraphIndex int    `json:"paragraph_index"`
}

// Inventory is the loss-closure partner of Structure: inventory.full.v1.
// Together (structure, inventory) form a lossless projection of the input
// DOCX for the purposes of planning and validation.
type Inventory struct {
	SchemaVersion   string                     `json:"schema_version"`
	OOXMLFragments  map[string]string          `json:"ooxml_fragments"` // part key -> raw xml
	MediaIndexes    map[string]MediaDescriptor `json:"media_indexes"`
	ContentControls []ContentControlRef        `json:"content_controls,omitempty"`
	Formulas        []FormulaRef               `json:"formulas,omitempty"`
	Charts          []ChartRef                 `json:"charts,omitempty"`
}

// NewInventory returns an empty Inventory stamped with the current schema
// version.
func NewInventory() *Inventory {
	return &Inventory{
		SchemaVersion:  InventorySchemaVersion,
		OOXMLFragments: make(map[string]string),
		MediaIndexes:   make(map[string]MediaDescriptor),
	}
}

// Validate checks the schema discriminator only; the lossless-pairing
// invariant (every complex object not representable in Structure has a
// reference here) is enforced by the Extractor at construction time, not
// re-derivable from the Inventory alone.
func (inv *Inventory) Validate() error {
	if inv.SchemaVersion != InventorySchemaVersion {
		return NewPathError(StageExtraction, "schema_version", "expected %q, got %q", InventorySchemaVersion, inv.SchemaVersion)
	}
	return nil
}
