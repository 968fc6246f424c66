package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const PlanSchemaVersion = "plan.v1"

// OpKind is the closed set of atomic-operation names the planner gateway
// may emit. It is the JSON discriminator for the Op tagged union.
type OpKind string

const (
	OpDeleteSectionByHeading       OpKind = "delete_section_by_heading"
	OpUpdateTOC                    OpKind = "update_toc"
	OpDeleteTOC                    OpKind = "delete_toc"
	OpSetStyleRule                 OpKind = "set_style_rule"
	OpReassignParagraphsToStyle    OpKind = "reassign_paragraphs_to_style"
	OpClearDirectFormatting        OpKind = "clear_direct_formatting"
)

// whitelist is the closed set of operation kinds. Any JSON "operation"
// value outside this set fails to decode: Op.UnmarshalJSON looks the tag
// up in this table and rejects any tag it does not find.
var whitelist = map[OpKind]func() AtomicOp{
	OpDeleteSectionByHeading:    func() AtomicOp { return &DeleteSectionByHeading{} },
	OpUpdateTOC:                 func() AtomicOp { return &UpdateTOC{} },
	OpDeleteTOC:                 func() AtomicOp { return &DeleteTOC{} },
	OpSetStyleRule:              func() AtomicOp { return &SetStyleRule{} },
	OpReassignParagraphsToStyle: func() AtomicOp { return &ReassignParagraphsToStyle{} },
	OpClearDirectFormatting:     func() AtomicOp { return &ClearDirectFormatting{} },
}

// AtomicOp is implemented by exactly the six whitelisted operation structs.
// Executor dispatch is a type switch over AtomicOp, not a string-keyed map
// of handler funcs — the whitelist is physically visible at the type
// level, and an unknown tag is simply unrepresentable once decoded.
type AtomicOp interface {
	Kind() OpKind
}

// MatchMode enumerates how delete_section_by_heading locates its target.
type MatchMode string

const (
	MatchExact    MatchMode = "EXACT"
	MatchContains MatchMode = "CONTAINS"
	MatchRegex    MatchMode = "REGEX"
)

// DeleteSectionByHeading deletes content from the N-th matching heading at
// Level up to (not including) the next heading of level <= Level, or to
// end of document.
type DeleteSectionByHeading struct {
	HeadingText     string    `json:"heading_text"`
	Level           int       `json:"level"`
	Match           MatchMode `json:"match"`
	CaseSensitive   bool      `json:"case_sensitive"`
	OccurrenceIndex *int      `json:"occurrence_index,omitempty"`
}

func (DeleteSectionByHeading) Kind() OpKind { return OpDeleteSectionByHeading }

func (o *DeleteSectionByHeading) validate(path string) error {
	if o.HeadingText == "" {
		return NewPathError(StageInvalidPlan, path+".heading_text", "heading_text must not be empty")
	}
	if o.Level < 1 || o.Level > 9 {
		return NewPathError(StageInvalidPlan, path+".level", "level %d out of range [1,9]", o.Level)
	}
	switch o.Match {
	case MatchExact, MatchContains, MatchRegex:
	default:
		return NewPathError(StageInvalidPlan, path+".match", "invalid match mode %q", o.Match)
	}
	if o.OccurrenceIndex != nil && *o.OccurrenceIndex < 1 {
		return NewPathError(StageInvalidPlan, path+".occurrence_index", "occurrence_index must be >= 1")
	}
	return nil
}

// UpdateTOC forces an update of all TOC fields and repagination.
type UpdateTOC struct{}

func (UpdateTOC) Kind() OpKind { return OpUpdateTOC }
func (o *UpdateTOC) validate(string) error { return nil }

// TOCDeleteMode enumerates which TOC field(s) delete_toc removes.
type TOCDeleteMode string

const (
	TOCAll   TOCDeleteMode = "ALL"
	TOCFirst TOCDeleteMode = "FIRST"
	TOCLast  TOCDeleteMode = "LAST"
)

// DeleteTOC removes the selected TOC field(s) and their surrounding TOC
// paragraph block.
type DeleteTOC struct {
	Mode TOCDeleteMode `json:"mode"`
}

func (DeleteTOC) Kind() OpKind { return OpDeleteTOC }

func (o *DeleteTOC) validate(path string) error {
	switch o.Mode {
	case TOCAll, TOCFirst, TOCLast:
		return nil
	default:
		return NewPathError(StageInvalidPlan, path+".mode", "invalid toc delete mode %q", o.Mode)
	}
}

// SetStyleRule applies the supplied subset of properties to a style,
// resolved via the localisation table. Pointer fields distinguish "leave
// unchanged" (nil) from an explicit value, including an explicit zero/false.
type SetStyleRule struct {
	TargetStyle      string   `json:"target_style"`
	FontEastAsian    *string  `json:"font_east_asian,omitempty"`
	FontLatin        *string  `json:"font_latin,omitempty"`
	FontSizePt       *float64 `json:"font_size_pt,omitempty"`
	FontBold         *bool    `json:"font_bold,omitempty"`
	FontItalic       *bool    `json:"font_italic,omitempty"`
	FontColorHex     *string  `json:"font_color_hex,omitempty"`
	LineSpacingMode  *LineSpacingMode `json:"line_spacing_mode,omitempty"`
	LineSpacingValue *float64 `json:"line_spacing_value,omitempty"`
	SpaceBeforePt    *float64 `json:"space_before_pt,omitempty"`
	SpaceAfterPt     *float64 `json:"space_after_pt,omitempty"`
	Alignment        *Alignment `json:"alignment,omitempty"`
}

func (SetStyleRule) Kind() OpKind { return OpSetStyleRule }

func (o *SetStyleRule) validate(path string) error {
	if o.TargetStyle == "" {
		return NewPathError(StageInvalidPlan, path+".target_style", "target_style must not be empty")
	}
	if o.FontSizePt != nil && (*o.FontSizePt < 6 || *o.FontSizePt > 72) {
		return NewPathError(StageInvalidPlan, path+".font_size_pt", "font_size_pt %.1f out of range [6,72]", *o.FontSizePt)
	}
	if o.FontColorHex != nil && !isHexColor(*o.FontColorHex) {
		return NewPathError(StageInvalidPlan, path+".font_color_hex", "invalid hex color %q", *o.FontColorHex)
	}
	if o.LineSpacingMode != nil && !o.LineSpacingMode.valid() {
		return NewPathError(StageInvalidPlan, path+".line_spacing_mode", "invalid line spacing mode %q", *o.LineSpacingMode)
	}
	if o.LineSpacingValue != nil && (*o.LineSpacingValue < 0.5 || *o.LineSpacingValue > 10.0) {
		return NewPathError(StageInvalidPlan, path+".line_spacing_value", "line_spacing_value %.2f out of range [0.5,10.0]", *o.LineSpacingValue)
	}
	if o.Alignment != nil && !o.Alignment.valid() {
		return NewPathError(StageInvalidPlan, path+".alignment", "invalid alignment %q", *o.Alignment)
	}
	return nil
}

// PositionMatch enumerates the text-position test used by the selector's
// "position" sub-criterion.
type PositionMatch string

const (
	PositionStartsWith PositionMatch = "starts_with"
	PositionEndsWith   PositionMatch = "ends_with"
	PositionContains   PositionMatch = "contains"
)

// ParagraphSelector combines zero or more criteria by conjunction (AND).
// A zero-value field means that criterion is not applied.
type ParagraphSelector struct {
	CurrentStyle string        `json:"current_style,omitempty"`
	TextContains string        `json:"text_contains,omitempty"`
	HeadingLevel *int          `json:"heading_level,omitempty"`
	Position     PositionMatch `json:"position,omitempty"`
}

// ReassignParagraphsToStyle re-assigns every paragraph matching Selector to
// TargetStyle, optionally clearing direct formatting on those paragraphs.
type ReassignParagraphsToStyle struct {
	Selector               ParagraphSelector `json:"selector"`
	TargetStyle            string            `json:"target_style"`
	ClearDirectFormatting  bool              `json:"clear_direct_formatting"`
}

func (ReassignParagraphsToStyle) Kind() OpKind { return OpReassignParagraphsToStyle }

func (o *ReassignParagraphsToStyle) validate(path string) error {
	if o.TargetStyle == "" {
		return NewPathError(StageInvalidPlan, path+".target_style", "target_style must not be empty")
	}
	if o.Selector.HeadingLevel != nil && (*o.Selector.HeadingLevel < 1 || *o.Selector.HeadingLevel > 9) {
		return NewPathError(StageInvalidPlan, path+".selector.heading_level", "heading_level %d out of range [1,9]", *o.Selector.HeadingLevel)
	}
	switch o.Selector.Position {
	case "", PositionStartsWith, PositionEndsWith, PositionContains:
	default:
		return NewPathError(StageInvalidPlan, path+".selector.position", "invalid position match %q", o.Selector.Position)
	}
	return nil
}

// ClearFormattingScope enumerates the scope clear_direct_formatting applies to.
type ClearFormattingScope string

const (
	ScopeDocument  ClearFormattingScope = "DOCUMENT"
	ScopeSelection ClearFormattingScope = "SELECTION"
	ScopeStyle     ClearFormattingScope = "STYLE"
)

// ExplicitUserRequestToken is the literal authorization token
// clear_direct_formatting must carry; it is not a secret, it is a
// deliberate friction device required verbatim in the plan JSON.
const ExplicitUserRequestToken = "EXPLICIT_USER_REQUEST"

// ClearDirectFormatting removes run-level direct formatting only; style-
// defined formatting is preserved.
type ClearDirectFormatting struct {
	Scope         ClearFormattingScope `json:"scope"`
	RangeSpec     string               `json:"range_spec,omitempty"`
	Authorization string               `json:"authorization"`
}

func (ClearDirectFormatting) Kind() OpKind { return OpClearDirectFormatting }

func (o *ClearDirectFormatting) validate(path string) error {
	switch o.Scope {
	case ScopeDocument, ScopeSelection, ScopeStyle:
	default:
		return NewPathError(StageInvalidPlan, path+".scope", "invalid scope %q", o.Scope)
	}
	if o.Authorization != ExplicitUserRequestToken {
		return NewPathError(StageInvalidPlan, path+".authorization", "missing or invalid authorization token")
	}
	if o.Scope == ScopeSelection && o.RangeSpec == "" {
		return NewPathError(StageInvalidPlan, path+".range_spec", "range_spec required when scope is SELECTION")
	}
	return nil
}

// Op wraps one atomic operation as decoded from plan JSON. Source is
// reserved metadata for the comments-as-instructions extension (anchor,
// section, global, template priority) — unused by this spec but carried so
// a future planner can stamp provenance without a schema break.
type Op struct {
	Operation OpKind   `json:"operation"`
	Value     AtomicOp `json:"-"`
	Source    string   `json:"source,omitempty"`
}

// UnmarshalJSON decodes a flat {"operation": "...", <fields>} object into
// the matching whitelisted struct. Unknown operation names, and any field
// not recognised by the matching struct, are rejected here — this is
// schema + whitelist enforcement happening in the same pass, per the
// planner gateway's validation pipeline step 1/2.
func (o *Op) UnmarshalJSON(data []byte) error {
	var probe struct {
		Operation OpKind `json:"operation"`
		Source    string `json:"source,omitempty"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&probe); err != nil {
		return fmt.Errorf("model: decoding operation tag: %w", err)
	}
	factory, ok := whitelist[probe.Operation]
	if !ok {
		return NewPathError(StageInvalidPlan, "operation", "unknown or non-whitelisted operation %q", probe.Operation)
	}
	val := factory()

	// Strip the two envelope fields, then decode the rest strictly into the
	// concrete op so any field it does not declare is rejected as unknown.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return NewPathError(StageInvalidPlan, "operation", "decoding %q: %v", probe.Operation, err)
	}
	delete(fields, "operation")
	delete(fields, "source")
	rest, _ := json.Marshal(fields)
	full := json.NewDecoder(bytes.NewReader(rest))
	full.DisallowUnknownFields()
	if err := full.Decode(val); err != nil {
		return NewPathError(StageInvalidPlan, "operation", "decoding %q: %v", probe.Operation, err)
	}

	o.Operation = probe.Operation
	o.Source = probe.Source
	o.Value = val
	return nil
}

// MarshalJSON re-flattens the op back to {"operation": ..., <fields>}.
func (o Op) MarshalJSON() ([]byte, error) {
	valueBytes, err := json.Marshal(o.Value)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(valueBytes, &fields); err != nil {
		return nil, err
	}
	fields["operation"] = json.RawMessage(fmt.Sprintf("%q", o.Operation))
	if o.Source != "" {
		fields["source"] = json.RawMessage(fmt.Sprintf("%q", o.Source))
	}
	return json.Marshal(fields)
}

// Validate runs parameter-sanity checks (validation pipeline step 3) on
// this op. Structural coherence (step 4 — referenced style names/heading
// levels need only be syntactically valid) is covered by the same checks
// here; existence against a live document is intentionally not required,
// per spec: unmatched targets become NOOPs at execute time.
func (o *Op) Validate(path string) error {
	switch v := o.Value.(type) {
	case *DeleteSectionByHeading:
		return v.validate(path)
	case *UpdateTOC:
		return v.validate(path)
	case *DeleteTOC:
		return v.validate(path)
	case *SetStyleRule:
		return v.validate(path)
	case *ReassignParagraphsToStyle:
		return v.validate(path)
	case *ClearDirectFormatting:
		return v.validate(path)
	default:
		return NewPathError(StageInvalidPlan, path, "unrecognised operation value %T", v)
	}
}

// Plan is the only artifact the language model is allowed to produce:
// plan.v1.
type Plan struct {
	SchemaVersion string `json:"schema_version"`
	Ops           []Op   `json:"ops"`
}

// NewPlan returns an empty Plan stamped with the current schema version.
func NewPlan() *Plan {
	return &Plan{SchemaVersion: PlanSchemaVersion}
}

// Validate enforces schema conformance (required fields, schema_version)
// and runs parameter-sanity validation over every op. Whitelist
// conformance already happened during UnmarshalJSON — an Op with a
// non-whitelisted Kind cannot exist in a decoded Plan.
func (p *Plan) Validate() error {
	if p.SchemaVersion != PlanSchemaVersion {
		return NewPathError(StageInvalidPlan, "schema_version", "expected %q, got %q", PlanSchemaVersion, p.SchemaVersion)
	}
	for i, op := range p.Ops {
		if op.Value == nil {
			return NewPathError(StageInvalidPlan, fmt.Sprintf("ops[%d]", i), "operation missing or failed to decode")
		}
		if err := op.Validate(fmt.Sprintf("ops[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}
