// Package orchestrator sequences Extractor, Planner, Executor, Validator,
// and Auditor into one run, owning the working copy, per-stage timeouts,
// and the rollback decision. It drives every full run; pkg/pipeline's dry
// run calls the Extractor, Planner and Auditor directly instead.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mesocyclon/docxpipeline/internal/auditor"
	"github.com/mesocyclon/docxpipeline/internal/config"
	"github.com/mesocyclon/docxpipeline/internal/docmodel"
	"github.com/mesocyclon/docxpipeline/internal/executor"
	"github.com/mesocyclon/docxpipeline/internal/extractor"
	"github.com/mesocyclon/docxpipeline/internal/localisation"
	"github.com/mesocyclon/docxpipeline/internal/model"
	"github.com/mesocyclon/docxpipeline/internal/monitoring"
	"github.com/mesocyclon/docxpipeline/internal/planner"
	"github.com/mesocyclon/docxpipeline/internal/validator"
)

// State enumerates the orchestrator's run states.
type State string

const (
	StateIdle        State = "IDLE"
	StateExtracting  State = "EXTRACTING"
	StatePlanning    State = "PLANNING"
	StateExecuting   State = "EXECUTING"
	StateValidating  State = "VALIDATING"
	StateAuditing    State = "AUDITING"
	StateRollingBack State = "ROLLING_BACK"
	StateDone        State = "DONE"
)

// Result is the entry point's return value, per spec.md §6. OutputPath is
// only set on a successful run, and always points at the audit
// directory's own after.docx — this engine never writes the modified
// document anywhere else.
type Result struct {
	RunID          string         `json:"run_id"`
	Status         auditor.Status `json:"status"`
	OutputPath     string         `json:"output_path,omitempty"`
	AuditDirectory string         `json:"audit_directory"`
	Errors         []string       `json:"errors,omitempty"`
	Warnings       []string       `json:"warnings,omitempty"`
}

// Orchestrator wires the stage packages together for one run.
type Orchestrator struct {
	lm     planner.LanguageModel
	logger *slog.Logger
}

// New returns an Orchestrator invoking lm for every plan it generates.
func New(lm planner.LanguageModel, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{lm: lm, logger: logger}
}

// Process runs the full five-stage pipeline against docxPath with
// userIntent, per cfg. The working copy is read into memory up front;
// the orchestrator never mutates docxPath itself. On any failure or a
// failed validation, the run is rolled back: no output file is produced
// and the audit directory's before.docx is the only docx artifact.
func (o *Orchestrator) Process(ctx context.Context, docxPath, userIntent string, cfg *config.RunConfig) (*Result, error) {
	state := StateIdle
	runID := uuid.New().String()
	logger := o.logger.With(slog.String("run_id", runID))
	warnings := model.NewWarningSink()
	rec := monitoring.New(logger, monitoring.Level(cfg.MonitoringLevel), cfg.MemoryWarningMB, cfg.MemoryCriticalMB)

	aud, err := auditor.New(cfg.AuditDir, time.Now())
	if err != nil {
		return nil, err
	}
	result := &Result{RunID: runID, AuditDirectory: aud.Dir()}

	before, err := os.ReadFile(docxPath)
	if err != nil {
		return o.fail(result, auditor.StatusRollback, warnings, aud, model.NewStageError(model.StageExtraction, err, "reading input %s", docxPath))
	}

	fontTable := localisation.DefaultFontTable()
	aliasTable := buildAliasTable(cfg.Localisation)

	// EXTRACTING
	state = StateExtracting
	done := rec.StageStart(string(state))
	stageCtx, cancel := context.WithTimeout(ctx, cfg.StageTimeout())
	ext := extractor.New(cfg.RevisionStrategy, warnings)
	extractResult, err := ext.ExtractBytes(stageCtx, before)
	cancel()
	done()
	if err != nil {
		return o.fail(result, auditor.StatusRollback, warnings, aud, err)
	}
	if err := aud.WriteBefore(before, extractResult.Structure); err != nil {
		return o.fail(result, auditor.StatusRollback, warnings, aud, err)
	}
	if err := aud.WriteInventory(extractResult.Inventory); err != nil {
		return o.fail(result, auditor.StatusRollback, warnings, aud, err)
	}

	// PLANNING
	state = StatePlanning
	done = rec.StageStart(string(state))
	stageCtx, cancel = context.WithTimeout(ctx, cfg.StageTimeout())
	gateway := planner.New(o.lm, planner.Config{ModelID: cfg.ModelID, Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens}, warnings)
	plan, err := gateway.Plan(stageCtx, extractResult.Structure, userIntent)
	cancel()
	done()
	if err != nil {
		if aErr := aud.WritePlan(model.NewPlan()); aErr != nil {
			logger.Error("audit write failed after invalid plan", slog.String("error", aErr.Error()))
		}
		return o.fail(result, auditor.StatusInvalidPlan, warnings, aud, err)
	}
	if err := aud.WritePlan(plan); err != nil {
		return o.fail(result, auditor.StatusRollback, warnings, aud, err)
	}

	// EXECUTING
	state = StateExecuting
	done = rec.StageStart(string(state))
	doc, err := docmodel.Open(before)
	if err != nil {
		done()
		return o.fail(result, auditor.StatusRollback, warnings, aud, model.NewStageError(model.StageExecution, err, "reopening working copy"))
	}
	exec := executor.New(aliasResolver(aliasTable, doc), fontResolver(fontTable, doc), warnings)
	if _, err := exec.Execute(doc, plan); err != nil {
		done()
		return o.fail(result, auditor.StatusRollback, warnings, aud, model.NewStageError(model.StageExecution, err, "applying plan"))
	}
	after, err := doc.SaveBytes()
	done()
	if err != nil {
		return o.fail(result, auditor.StatusRollback, warnings, aud, model.NewStageError(model.StageExecution, err, "saving executed document"))
	}

	// VALIDATING
	state = StateValidating
	done = rec.StageStart(string(state))
	stageCtx, cancel = context.WithTimeout(ctx, cfg.StageTimeout())
	v := validator.New(cfg.RevisionStrategy, warnings)
	valResult, structureAfter, err := v.Validate(stageCtx, extractResult.Structure, after, toValidatorRules(cfg.ValidationRules, extractResult.Structure))
	cancel()
	done()
	if err != nil {
		return o.fail(result, auditor.StatusRollback, warnings, aud, err)
	}
	if !valResult.IsValid {
		for _, f := range valResult.Failures {
			warnings.Add(string(model.StageValidation), "ASSERTION_FAILED", "%s", f)
		}
		return o.fail(result, auditor.StatusFailedValidation, warnings, aud, fmt.Errorf("validation failed: %d assertion(s)", len(valResult.Failures)))
	}

	// AUDITING (success path)
	state = StateAuditing
	done = rec.StageStart(string(state))
	if err := aud.WriteAfter(after, structureAfter); err != nil {
		done()
		return o.fail(result, auditor.StatusRollback, warnings, aud, err)
	}
	diff := auditor.BuildDiffReport(extractResult.Structure, structureAfter)
	if err := aud.WriteDiffReport(diff); err != nil {
		done()
		return o.fail(result, auditor.StatusRollback, warnings, aud, err)
	}
	if err := aud.WriteWarnings(warnings); err != nil {
		done()
		return o.fail(result, auditor.StatusRollback, warnings, aud, err)
	}
	if err := aud.Finalize(auditor.StatusSuccess); err != nil {
		done()
		return nil, err
	}
	done()

	state = StateDone
	logger.Info("run complete", slog.String("state", string(state)), slog.String("audit_dir", aud.Dir()))

	result.Status = auditor.StatusSuccess
	result.OutputPath = filepath.Join(aud.Dir(), "after.docx")
	result.Warnings = warningStrings(warnings)
	return result, nil
}

// fail finalizes the audit directory with status and returns a Result
// carrying the triggering error, the ROLLING_BACK transition itself
// being implicit: no after.docx is ever written once a stage fails.
func (o *Orchestrator) fail(result *Result, status auditor.Status, warnings *model.WarningSink, aud *auditor.Auditor, cause error) (*Result, error) {
	if cause != nil {
		warnings.Add("ORCHESTRATOR", "STAGE_FAILED", "%v", cause)
	}
	if err := aud.WriteWarnings(warnings); err != nil {
		o.logger.Error("failed writing warnings.log", slog.String("error", err.Error()))
	}
	if err := aud.Finalize(status); err != nil {
		return nil, err
	}
	result.Status = status
	if cause != nil {
		result.Errors = append(result.Errors, cause.Error())
	}
	result.Warnings = warningStrings(warnings)
	return result, nil
}

func warningStrings(sink *model.WarningSink) []string {
	all := sink.All()
	out := make([]string, len(all))
	for i, w := range all {
		out[i] = w.String()
	}
	return out
}

func buildAliasTable(localisationMap map[string]string) *localisation.StyleAliasTable {
	if len(localisationMap) == 0 {
		return localisation.DefaultStyleAliasTable()
	}
	aliases := make([]localisation.StyleAlias, 0, len(localisationMap))
	for canonical, localised := range localisationMap {
		aliases = append(aliases, localisation.StyleAlias{Canonical: canonical, Localised: localised})
	}
	return localisation.NewStyleAliasTable(aliases)
}

// aliasResolver adapts a StyleAliasTable into the plain func(string) string
// the Executor expects, consulting the live document's own style names for
// the dynamic-scan fallback.
func aliasResolver(table *localisation.StyleAliasTable, doc *docmodel.Document) func(string) string {
	return func(name string) string {
		resolved, _ := table.Resolve(name, doc.StyleNames())
		return resolved
	}
}

// fontResolver adapts a FontTable into the plain func(string) string the
// Executor expects, treating the document's own declared fontTable.xml
// entries as the "available on the host" set, in the absence of a real
// automation handle capable of querying actually-installed fonts.
func fontResolver(table *localisation.FontTable, doc *docmodel.Document) func(string) string {
	declared := doc.DeclaredFontNames()
	available := make(map[string]bool, len(declared))
	for _, name := range declared {
		available[name] = true
	}
	return func(requested string) string {
		outcome := table.Resolve(requested, available, requested)
		return outcome.Resolved
	}
}

func toValidatorRules(rules config.ValidationRules, before *model.Structure) validator.Rules {
	out := validator.Rules{
		ForbiddenLevel1Headings: rules.ForbiddenLevel1Headings,
	}
	if before != nil {
		out.PriorModifiedTime = before.Metadata.ModifiedTime
	}
	if len(rules.StyleSpecs) > 0 {
		out.StyleSpecs = make(map[string]model.Style, len(rules.StyleSpecs))
		for name, spec := range rules.StyleSpecs {
			out.StyleSpecs[name] = model.Style{
				Name: name,
				Font: model.Font{
					EastAsianName: spec.FontEastAsian,
					LatinName:     spec.FontLatin,
					SizePt:        spec.FontSizePt,
					Bold:          spec.FontBold,
				},
				Paragraph: model.ParagraphProps{
					LineSpacingMode: model.LineSpacingMode(spec.LineSpacingMode),
					Alignment:       model.Alignment(spec.Alignment),
				},
			}
		}
	}
	return out
}
