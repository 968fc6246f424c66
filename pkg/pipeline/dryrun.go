package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/mesocyclon/docxpipeline/internal/auditor"
	"github.com/mesocyclon/docxpipeline/internal/config"
	"github.com/mesocyclon/docxpipeline/internal/extractor"
	"github.com/mesocyclon/docxpipeline/internal/model"
	"github.com/mesocyclon/docxpipeline/internal/planner"
)

// DryRunResult is what DryRunDocument returns: the plan it generated and
// the audit directory it wrote plan.v1.json into. A dry run never calls
// the Executor, so there is no AfterDocument or OutputPath to report.
type DryRunResult struct {
	AuditDirectory string      `json:"audit_directory"`
	Plan           *model.Plan `json:"plan,omitempty"`
	Warnings       []string    `json:"warnings,omitempty"`
}

// DryRunDocument runs Extractor and Planner only against docxPath and
// writes the resulting plan into its own audit directory, per spec.md's
// dry-run operation. cmd/docxpipeline's dry-run subcommand and the HTTP
// front end's dry-run endpoint both call this instead of duplicating the
// extract/plan sequence.
func DryRunDocument(ctx context.Context, docxPath, userIntent string, opts Options) (DryRunResult, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultRunConfig()
	}

	aud, err := auditor.New(cfg.AuditDir, time.Now())
	if err != nil {
		return DryRunResult{}, err
	}

	before, err := os.ReadFile(docxPath)
	if err != nil {
		return DryRunResult{}, err
	}

	warnings := model.NewWarningSink()

	ext := extractor.New(cfg.RevisionStrategy, warnings)
	extractResult, err := ext.ExtractBytes(ctx, before)
	if err != nil {
		_ = aud.Finalize(auditor.StatusInvalidPlan)
		return DryRunResult{AuditDirectory: aud.Dir()}, err
	}
	if err := aud.WriteBefore(before, extractResult.Structure); err != nil {
		return DryRunResult{AuditDirectory: aud.Dir()}, err
	}
	if err := aud.WriteInventory(extractResult.Inventory); err != nil {
		return DryRunResult{AuditDirectory: aud.Dir()}, err
	}

	gateway := planner.New(opts.LanguageModel, planner.Config{ModelID: cfg.ModelID, Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens}, warnings)
	plan, err := gateway.Plan(ctx, extractResult.Structure, userIntent)
	if err != nil {
		_ = aud.WriteWarnings(warnings)
		_ = aud.Finalize(auditor.StatusInvalidPlan)
		return DryRunResult{AuditDirectory: aud.Dir(), Warnings: warningStrings(warnings)}, err
	}
	if err := aud.WritePlan(plan); err != nil {
		return DryRunResult{AuditDirectory: aud.Dir()}, err
	}
	if err := aud.WriteWarnings(warnings); err != nil {
		return DryRunResult{AuditDirectory: aud.Dir()}, err
	}
	if err := aud.Finalize(auditor.StatusDryRun); err != nil {
		return DryRunResult{AuditDirectory: aud.Dir()}, err
	}

	return DryRunResult{AuditDirectory: aud.Dir(), Plan: plan, Warnings: warningStrings(warnings)}, nil
}

func warningStrings(sink *model.WarningSink) []string {
	all := sink.All()
	out := make([]string, len(all))
	for i, w := range all {
		out[i] = w.String()
	}
	return out
}
