// Package planner wraps an external language model with the strict
// JSON/schema/whitelist/parameter validation pipeline that turns a free-
// form user intent into a plan.v1. The model itself is an external
// collaborator, modeled here as the narrow LanguageModel interface.
// OpenAIClient is one implementation over an OpenAI-compatible HTTP
// endpoint; it takes its API key from the caller and never reads the
// environment.
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mesocyclon/docxpipeline/internal/model"
)

// CompletionOptions carries the sampling parameters the gateway wants for
// a plan-generation call: low temperature, hard token ceiling.
type CompletionOptions struct {
	Temperature   float64
	MaxTokens     int
	ModelID       string
}

// LanguageModel is the single, strongly typed boundary to the external
// model: text in, text out. The rest of the system depends only on the
// plan.v1 this gateway produces from that text, never on the model itself.
type LanguageModel interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

// Config carries the gateway's tunables, sourced from internal/config.
type Config struct {
	ModelID         string
	Temperature     float64
	MaxTokens       int
	MaxRetries      int
}

// DefaultMaxRetries bounds the JSON-only retry loop, per spec.md §4.2's
// "retry up to a small bounded number of times".
const DefaultMaxRetries = 2

// Gateway assembles prompts, invokes the language model, and validates its
// reply into a plan.v1.
type Gateway struct {
	lm     LanguageModel
	cfg    Config
	warnings *model.WarningSink
}

// New returns a Gateway bound to the given language model and config.
func New(lm LanguageModel, cfg Config, warnings *model.WarningSink) *Gateway {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	return &Gateway{lm: lm, cfg: cfg, warnings: warnings}
}

// Plan runs the full algorithm: assemble the prompt from structure.v1 and
// the user's intent, invoke the model, parse the reply strictly as JSON,
// retrying on parse failure, then run it through the four-stage
// validation pipeline. Any failure is reported as model.ErrInvalidPlan.
func (g *Gateway) Plan(ctx context.Context, structure *model.Structure, userIntent string) (*model.Plan, error) {
	prompt, err := assemblePrompt(structure, userIntent)
	if err != nil {
		return nil, model.NewStageError(model.StageInvalidPlan, err, "assembling prompt")
	}

	opts := CompletionOptions{
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
		ModelID:     g.cfg.ModelID,
	}

	var lastErr error
	for attempt := 0; attempt <= g.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, model.NewStageError(model.StageInvalidPlan, err, "plan generation cancelled")
		}

		reply, err := g.lm.Complete(ctx, prompt, opts)
		if err != nil {
			return nil, model.NewStageError(model.StageInvalidPlan, err, "language model call failed")
		}

		plan, err := parsePlan(reply)
		if err != nil {
			lastErr = err
			if attempt < g.cfg.MaxRetries {
				prompt = prompt + "\n\nYour previous reply failed to parse as strict JSON: " + err.Error() + "\nReply with JSON only, matching the plan.v1 schema exactly. No prose, no markdown fences."
				if g.warnings != nil {
					g.warnings.Add(string(model.StageInvalidPlan), "JSON_RETRY", "retrying after parse failure (attempt %d): %v", attempt+1, err)
				}
				continue
			}
			return nil, model.NewStageError(model.StageInvalidPlan, lastErr, "model reply failed to parse as plan.v1 after %d attempts", g.cfg.MaxRetries+1)
		}

		if err := plan.Validate(); err != nil {
			return nil, err
		}
		return plan, nil
	}
	return nil, model.NewStageError(model.StageInvalidPlan, lastErr, "exhausted retries")
}

// parsePlan decodes a raw model reply strictly as a plan.v1 object,
// rejecting unknown fields, trailing data, and anything that is not a
// bare JSON object once a single surrounding code fence has been stripped.
func parsePlan(reply string) (*model.Plan, error) {
	trimmed := stripCodeFence(reply)

	dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
	dec.DisallowUnknownFields()

	var plan model.Plan
	if err := dec.Decode(&plan); err != nil {
		return nil, fmt.Errorf("decoding plan.v1: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after plan.v1 JSON object")
	}
	return &plan, nil
}

// stripCodeFence removes a single leading/trailing ``` or ```json fence,
// the most common way a model wraps "JSON only" output despite
// instructions not to. Anything else — free text before/after the
// object — is left for json.Decoder to reject as trailing data.
func stripCodeFence(s string) string {
	start := 0
	for start < len(s) && (s[start] == ' ' || s[start] == '\n' || s[start] == '\t' || s[start] == '\r') {
		start++
	}
	s = s[start:]
	if len(s) >= 3 && s[:3] == "```" {
		nl := -1
		for i := 3; i < len(s); i++ {
			if s[i] == '\n' {
				nl = i
				break
			}
		}
		if nl >= 0 {
			s = s[nl+1:]
		}
		if end := lastIndexFence(s); end >= 0 {
			s = s[:end]
		}
	}
	return s
}

func lastIndexFence(s string) int {
	for i := len(s) - 3; i >= 0; i-- {
		if s[i:i+3] == "```" {
			return i
		}
	}
	return -1
}
