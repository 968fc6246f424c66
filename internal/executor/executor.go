// Package executor applies a validated plan.v1 to an open document, one
// atomic operation at a time, through the docmodel object-model writers —
// never through textual search-and-replace. Dispatch is a closed Go type
// switch over the six whitelisted operations, mirroring the closed sum
// type model.AtomicOp itself defines.
package executor

import (
	"fmt"

	"github.com/mesocyclon/docxpipeline/internal/docmodel"
	"github.com/mesocyclon/docxpipeline/internal/model"
)

// OpResult records what happened when one plan operation was applied.
type OpResult struct {
	Index     int    `json:"index"`
	Operation string `json:"operation"`
	Applied   bool   `json:"applied"`
	NOOP      bool   `json:"noop,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// Result is the outcome of executing a whole plan.v1.
type Result struct {
	Results []OpResult `json:"results"`
}

// Executor applies plan operations to a document, resolving style names
// through an optional alias table and font names through an optional
// fallback chain before handing them to docmodel.
type Executor struct {
	resolveStyle func(name string) string
	resolveFont  func(name string) string
	warnings     *model.WarningSink
}

// New returns an Executor. resolveStyle/resolveFont may be nil, in which
// case names are passed through unchanged; otherwise resolveStyle is
// consulted for every operation naming a target style and resolveFont
// for every font name a set_style_rule supplies, the hooks
// internal/localisation's alias table and font-fallback chain plug into.
func New(resolveStyle func(string) string, resolveFont func(string) string, warnings *model.WarningSink) *Executor {
	if resolveStyle == nil {
		resolveStyle = func(s string) string { return s }
	}
	if resolveFont == nil {
		resolveFont = func(s string) string { return s }
	}
	return &Executor{resolveStyle: resolveStyle, resolveFont: resolveFont, warnings: warnings}
}

// Execute applies every op in plan, in order, to doc. It does not stop on
// a NOOP — only a hard error aborts the run, per spec.md §4.3's per-op
// NOOP/reject semantics. The caller decides whether partial application
// is acceptable; Result records exactly what happened to each op.
func (x *Executor) Execute(doc *docmodel.Document, plan *model.Plan) (*Result, error) {
	res := &Result{}
	for i, op := range plan.Ops {
		r := OpResult{Index: i, Operation: string(op.Operation)}
		if err := x.applyOne(doc, op, &r); err != nil {
			return res, fmt.Errorf("executor: op[%d] %s: %w", i, op.Operation, err)
		}
		res.Results = append(res.Results, r)
	}
	return res, nil
}

func (x *Executor) applyOne(doc *docmodel.Document, op model.Op, r *OpResult) error {
	switch v := op.Value.(type) {
	case *model.DeleteSectionByHeading:
		applied, err := doc.DeleteSectionByHeading(*v)
		if err != nil {
			return err
		}
		r.Applied = applied
		r.NOOP = !applied
		if !applied {
			r.Detail = "no matching heading occurrence found"
			x.warn("EXECUTION", "DELETE_SECTION_NOOP", "delete_section_by_heading found no matching occurrence for %q", v.HeadingText)
		}
		return nil

	case *model.UpdateTOC:
		updated, err := doc.MarkTOCDirty()
		if err != nil {
			return err
		}
		r.Applied = updated > 0
		r.NOOP = updated == 0
		r.Detail = fmt.Sprintf("%d TOC field(s) recalculated", updated)
		if updated == 0 {
			x.warn("EXECUTION", "UPDATE_TOC_NOOP", "update_toc found no TOC fields")
		}
		return nil

	case *model.DeleteTOC:
		removed, err := doc.DeleteTOCFields(v.Mode)
		if err != nil {
			return err
		}
		r.Applied = removed > 0
		r.NOOP = removed == 0
		r.Detail = fmt.Sprintf("%d TOC field paragraph(s) removed", removed)
		if removed == 0 {
			x.warn("EXECUTION", "DELETE_TOC_NOOP", "delete_toc found no TOC fields")
		}
		return nil

	case *model.SetStyleRule:
		resolved := *v
		resolved.TargetStyle = x.resolveStyle(v.TargetStyle)
		if v.FontEastAsian != nil {
			f := x.resolveFont(*v.FontEastAsian)
			resolved.FontEastAsian = &f
			if f != *v.FontEastAsian {
				x.warn("EXECUTION", "FONT_FALLBACK", "east-asian font %q resolved to fallback %q", *v.FontEastAsian, f)
			}
		}
		if v.FontLatin != nil {
			f := x.resolveFont(*v.FontLatin)
			resolved.FontLatin = &f
			if f != *v.FontLatin {
				x.warn("EXECUTION", "FONT_FALLBACK", "latin font %q resolved to fallback %q", *v.FontLatin, f)
			}
		}
		applied, err := doc.ApplyStyleRule(resolved)
		if err != nil {
			return err
		}
		r.Applied = applied
		r.NOOP = !applied
		if !applied {
			r.Detail = "target style not found"
			x.warn("EXECUTION", "SET_STYLE_RULE_NOOP", "set_style_rule found no style named %q", v.TargetStyle)
		}
		return nil

	case *model.ReassignParagraphsToStyle:
		resolved := *v
		resolved.TargetStyle = x.resolveStyle(v.TargetStyle)
		if resolved.Selector.CurrentStyle != "" {
			resolved.Selector.CurrentStyle = x.resolveStyle(resolved.Selector.CurrentStyle)
		}
		changed, err := doc.ReassignParagraphsToStyle(resolved)
		if err != nil {
			return err
		}
		r.Applied = changed > 0
		r.NOOP = changed == 0
		r.Detail = fmt.Sprintf("%d paragraph(s) reassigned", changed)
		if changed == 0 {
			x.warn("EXECUTION", "REASSIGN_NOOP", "reassign_paragraphs_to_style matched no paragraphs")
		}
		return nil

	case *model.ClearDirectFormatting:
		changed, err := doc.ClearDirectFormatting(*v)
		if err != nil {
			return err
		}
		r.Applied = changed > 0
		r.NOOP = changed == 0
		r.Detail = fmt.Sprintf("%d paragraph/style run(s) cleared", changed)
		return nil

	default:
		return fmt.Errorf("executor: unhandled operation type %T", op.Value)
	}
}

func (x *Executor) warn(stage, code, format string, args ...any) {
	if x.warnings != nil {
		x.warnings.Add(stage, code, format, args...)
	}
}
