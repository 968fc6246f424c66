// Package auditor owns the timestamped, append-only run directory every
// run produces: before/after snapshots, structure/inventory/plan JSON,
// a diff report, a warnings log, and a single-token status file. Writes
// use atomic file replacement (github.com/natefinch/atomic), the same
// technique the retrieval pack's task-cache layer uses for crash-safe
// persistence, generalized here to a whole directory of fixed-name
// artifacts instead of one cache file.
package auditor

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"

	"github.com/mesocyclon/docxpipeline/internal/model"
)

// Status is the single token written to result.status.txt.
type Status string

const (
	StatusSuccess          Status = "SUCCESS"
	StatusRollback         Status = "ROLLBACK"
	StatusFailedValidation Status = "FAILED_VALIDATION"
	StatusInvalidPlan      Status = "INVALID_PLAN"

	// StatusDryRun marks a run directory produced by the dry-run CLI
	// subcommand, which stops after planning and never executes.
	StatusDryRun Status = "DRY_RUN"
)

// DiffReport is the per-run structural delta written as diff.report.json.
type DiffReport struct {
	AddedStyles        []string `json:"added_styles,omitempty"`
	RemovedStyles      []string `json:"removed_styles,omitempty"`
	RenamedStyles      []string `json:"renamed_styles,omitempty"`
	AddedHeadings      []string `json:"added_headings,omitempty"`
	RemovedHeadings    []string `json:"removed_headings,omitempty"`
	TOCEntryDelta      int      `json:"toc_entry_delta"`
	ModifiedTimeBefore string   `json:"modified_time_before,omitempty"`
	ModifiedTimeAfter  string   `json:"modified_time_after,omitempty"`
}

// Auditor writes one run's artifacts into its own run directory under
// baseDir.
type Auditor struct {
	baseDir string
	dir     string
}

// New creates the run directory under baseDir, named
// run_YYYYMMDD_HHMMSS_<rand>, the <rand> suffix drawn from crypto/rand
// (not math/rand) since it exists purely to disambiguate two runs
// started within the same second, not for anything security-sensitive,
// but crypto/rand is the teacher corpus's default source for any random
// suffix and there is no reason to special-case this one.
func New(baseDir string, now time.Time) (*Auditor, error) {
	suffix, err := randomSuffix()
	if err != nil {
		return nil, model.NewStageError(model.StageAudit, err, "generating run directory suffix")
	}
	dir := filepath.Join(baseDir, fmt.Sprintf("run_%s_%s", now.Format("20060102_150405"), suffix))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, model.NewStageError(model.StageAudit, err, "creating run directory %s", dir)
	}
	return &Auditor{baseDir: baseDir, dir: dir}, nil
}

// Dir returns the run directory path.
func (a *Auditor) Dir() string { return a.dir }

func randomSuffix() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// WriteBefore writes before.docx and before_structure.v1.json.
func (a *Auditor) WriteBefore(data []byte, structure *model.Structure) error {
	if err := a.writeFile("before.docx", data); err != nil {
		return err
	}
	return a.writeJSON("before_structure.v1.json", structure)
}

// WriteAfter writes after.docx and after_structure.v1.json. Only called
// on a successful run; on rollback, before.docx alone is sufficient.
func (a *Auditor) WriteAfter(data []byte, structure *model.Structure) error {
	if err := a.writeFile("after.docx", data); err != nil {
		return err
	}
	return a.writeJSON("after_structure.v1.json", structure)
}

// WriteInventory writes inventory.full.v1.json.
func (a *Auditor) WriteInventory(inv *model.Inventory) error {
	return a.writeJSON("inventory.full.v1.json", inv)
}

// WritePlan writes plan.v1.json.
func (a *Auditor) WritePlan(plan *model.Plan) error {
	return a.writeJSON("plan.v1.json", plan)
}

// WriteDiffReport writes diff.report.json.
func (a *Auditor) WriteDiffReport(diff *DiffReport) error {
	return a.writeJSON("diff.report.json", diff)
}

// WriteWarnings writes warnings.log, one line per warning in emission
// order.
func (a *Auditor) WriteWarnings(sink *model.WarningSink) error {
	var buf bytes.Buffer
	if sink != nil {
		for _, w := range sink.All() {
			buf.WriteString(w.String())
			buf.WriteByte('\n')
		}
	}
	return a.writeFile("warnings.log", buf.Bytes())
}

// Finalize writes result.status.txt, the last artifact of every run.
func (a *Auditor) Finalize(status Status) error {
	return a.writeFile("result.status.txt", []byte(string(status)+"\n"))
}

func (a *Auditor) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return model.NewStageError(model.StageAudit, err, "marshaling %s", name)
	}
	return a.writeFile(name, data)
}

func (a *Auditor) writeFile(name string, data []byte) error {
	path := filepath.Join(a.dir, name)
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return model.NewStageError(model.StageAudit, err, "writing %s", name)
	}
	return nil
}

// BuildDiffReport computes the structural delta between before and after
// structure.v1 projections.
func BuildDiffReport(before, after *model.Structure) *DiffReport {
	d := &DiffReport{}
	beforeStyles := styleSet(before)
	afterStyles := styleSet(after)
	for name := range afterStyles {
		if !beforeStyles[name] {
			d.AddedStyles = append(d.AddedStyles, name)
		}
	}
	for name := range beforeStyles {
		if !afterStyles[name] {
			d.RemovedStyles = append(d.RemovedStyles, name)
		}
	}

	beforeHeadings := headingSet(before)
	afterHeadings := headingSet(after)
	for h := range afterHeadings {
		if !beforeHeadings[h] {
			d.AddedHeadings = append(d.AddedHeadings, h)
		}
	}
	for h := range beforeHeadings {
		if !afterHeadings[h] {
			d.RemovedHeadings = append(d.RemovedHeadings, h)
		}
	}

	d.TOCEntryDelta = tocEntryCount(after) - tocEntryCount(before)
	if before != nil {
		d.ModifiedTimeBefore = before.Metadata.ModifiedTime
	}
	if after != nil {
		d.ModifiedTimeAfter = after.Metadata.ModifiedTime
	}
	return d
}

func styleSet(s *model.Structure) map[string]bool {
	out := make(map[string]bool)
	if s == nil {
		return out
	}
	for _, st := range s.Styles {
		out[st.Name] = true
	}
	return out
}

func headingSet(s *model.Structure) map[string]bool {
	out := make(map[string]bool)
	if s == nil {
		return out
	}
	for _, h := range s.Headings {
		out[fmt.Sprintf("%d:%s", h.Level, h.Text)] = true
	}
	return out
}

func tocEntryCount(s *model.Structure) int {
	if s == nil {
		return 0
	}
	count := 0
	for _, f := range s.Fields {
		if f.Type == model.FieldTOC {
			count++
		}
	}
	return count
}
