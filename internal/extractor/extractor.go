// Package extractor projects an opened DOCX into the structure.v1 +
// inventory.full.v1 pair, with zero information loss between the two
// artifacts taken together. Grounded in the teacher's
// internal/packaging.classify walk (open an OPC package, classify every
// part) extended to also walk word/document.xml body content, which the
// teacher's own packaging-info endpoint never needed to do.
package extractor

import (
	"context"
	"fmt"

	"github.com/mesocyclon/docxpipeline/internal/docmodel"
	"github.com/mesocyclon/docxpipeline/internal/model"
)

// RevisionStrategy selects how tracked changes are handled before the
// skeleton walk runs.
type RevisionStrategy string

const (
	RevisionAccept RevisionStrategy = "accept"
	RevisionReject RevisionStrategy = "reject"
	RevisionBypass RevisionStrategy = "bypass"
)

// Extractor opens a DOCX and produces its structure/inventory pair.
type Extractor struct {
	revisionStrategy RevisionStrategy
	warnings         *model.WarningSink
}

// New returns an Extractor configured with the given revision strategy
// and a warnings sink shared with the rest of the run.
func New(revisionStrategy RevisionStrategy, warnings *model.WarningSink) *Extractor {
	if revisionStrategy == "" {
		revisionStrategy = RevisionBypass
	}
	return &Extractor{revisionStrategy: revisionStrategy, warnings: warnings}
}

// Result is the (structure, inventory) pair the Extractor produces.
type Result struct {
	Structure *model.Structure
	Inventory *model.Inventory
}

// ExtractBytes runs the extraction algorithm against raw DOCX bytes:
// apply the configured revision strategy, walk styles/paragraphs/
// headings/fields/tables, and capture everything the skeleton drops into
// the inventory. Any failure is wrapped as model.ErrExtraction.
func (e *Extractor) ExtractBytes(ctx context.Context, data []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.NewStageError(model.StageExtraction, err, "extraction cancelled before start")
	}

	doc, err := docmodel.Open(data)
	if err != nil {
		return nil, model.NewStageError(model.StageExtraction, err, "opening document")
	}

	if err := e.applyRevisionStrategy(doc); err != nil {
		return nil, model.NewStageError(model.StageExtraction, err, "applying revision strategy %q", e.revisionStrategy)
	}

	structure := doc.Structure()
	if err := structure.Validate(); err != nil {
		return nil, model.NewStageError(model.StageExtraction, err, "validating structure")
	}
	inventory := doc.Inventory()
	if err := inventory.Validate(); err != nil {
		return nil, model.NewStageError(model.StageExtraction, err, "validating inventory")
	}

	e.recordClampedHeadings(doc, structure)

	return &Result{Structure: structure, Inventory: inventory}, nil
}

// applyRevisionStrategy accepts, rejects, or bypasses tracked changes
// (w:ins/w:del) before the skeleton walk. bypass is the default: extract
// as-is with a warning, matching spec.md §9's "pre-processing step, not
// an atomic operation" framing.
func (e *Extractor) applyRevisionStrategy(doc *docmodel.Document) error {
	switch e.revisionStrategy {
	case RevisionAccept:
		doc.AcceptAllRevisions()
	case RevisionReject:
		doc.RejectAllRevisions()
	case RevisionBypass:
		if doc.HasTrackedChanges() && e.warnings != nil {
			e.warnings.Add(string(model.StageExtraction), "TRACKED_CHANGES_BYPASSED", "document has unresolved tracked changes; extracting as-is")
		}
	default:
		return fmt.Errorf("unknown revision strategy %q", e.revisionStrategy)
	}
	return nil
}

// recordClampedHeadings emits one warning per paragraph whose outline
// level was out of the valid [0,8] range and was therefore represented
// as a non-heading paragraph, per the edge-case policy.
func (e *Extractor) recordClampedHeadings(doc *docmodel.Document, structure *model.Structure) {
	if e.warnings == nil {
		return
	}
	for _, code := range doc.ClampedOutlineWarnings() {
		e.warnings.Add(string(model.StageExtraction), "OUTLINE_LEVEL_CLAMPED", "%s", code)
	}
}
