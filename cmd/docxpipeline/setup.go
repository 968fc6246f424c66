package main

import (
	"fmt"
	"os"

	"github.com/mesocyclon/docxpipeline/internal/config"
	"github.com/mesocyclon/docxpipeline/internal/planner"
	"github.com/mesocyclon/docxpipeline/pkg/pipeline"
)

// loadConfig reads cfgPath if given, otherwise falls back to defaults.
func loadConfig(cfgPath string) (*config.RunConfig, error) {
	if cfgPath == "" {
		return config.DefaultRunConfig(), nil
	}
	return config.LoadRunConfig(cfgPath)
}

// newPipelineOptions wires a planner.LanguageModel reading its API key
// from the environment strictly here, at the CLI boundary, and never
// inside internal/planner, internal/orchestrator, or pkg/pipeline itself.
func newPipelineOptions(cfg *config.RunConfig) pipeline.Options {
	apiKey := os.Getenv("OPENAI_API_KEY")
	baseURL := os.Getenv("OPENAI_BASE_URL")
	lm := planner.NewOpenAIClient(baseURL, apiKey)
	return pipeline.Options{LanguageModel: lm, Config: cfg, Logger: logger}
}

func modelKeyConfigured() bool {
	return os.Getenv("OPENAI_API_KEY") != ""
}

func fatalf(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(code)
}
