// Package pipeline is the library entry point named in the external
// interfaces: a single call runs the full extract/plan/execute/validate/
// audit cycle against a .docx file and returns a structured outcome,
// without requiring callers to know about internal/orchestrator's state
// machine or any of the individual stage packages. cmd/docxpipeline and
// cmd/docxpipelined are both thin callers of ProcessDocument; neither
// imports internal/orchestrator directly.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/mesocyclon/docxpipeline/internal/config"
	"github.com/mesocyclon/docxpipeline/internal/orchestrator"
	"github.com/mesocyclon/docxpipeline/internal/planner"
)

// Result is the outcome ProcessDocument returns — the orchestrator's own
// Result type, re-exported here so callers never need to import
// internal/orchestrator to read a field off it.
type Result = orchestrator.Result

// Options configures one ProcessDocument call: the language model
// generating the edit plan, the run's configuration, and an optional
// structured logger. Config defaults to config.DefaultRunConfig() when
// nil; Logger defaults to slog.Default() when nil.
type Options struct {
	LanguageModel planner.LanguageModel
	Config        *config.RunConfig
	Logger        *slog.Logger
}

// ProcessDocument runs the full five-stage pipeline against docxPath with
// userIntent and returns the resulting Result, exactly as a single call
// to internal/orchestrator.Process would, except callers never construct
// an Orchestrator value themselves.
func ProcessDocument(ctx context.Context, docxPath, userIntent string, opts Options) (Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultRunConfig()
	}
	o := orchestrator.New(opts.LanguageModel, opts.Logger)
	result, err := o.Process(ctx, docxPath, userIntent, cfg)
	if err != nil {
		return Result{}, err
	}
	return *result, nil
}
