package planner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mesocyclon/docxpipeline/internal/model"
	"github.com/mesocyclon/docxpipeline/internal/planner"
)

// stubLM replays a canned sequence of replies, one per Complete call, and
// records every prompt it was given.
type stubLM struct {
	replies []string
	prompts []string
	err     error
}

func (s *stubLM) Complete(ctx context.Context, prompt string, opts planner.CompletionOptions) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.prompts = append(s.prompts, prompt)
	i := len(s.prompts) - 1
	if i >= len(s.replies) {
		return s.replies[len(s.replies)-1], nil
	}
	return s.replies[i], nil
}

func validPlanJSON() string {
	return `{"schema_version":"plan.v1","ops":[{"operation":"update_toc"}]}`
}

func TestGateway_Plan_Success(t *testing.T) {
	t.Parallel()
	lm := &stubLM{replies: []string{validPlanJSON()}}
	g := planner.New(lm, planner.Config{ModelID: "gpt-4o", Temperature: 0.1}, model.NewWarningSink())

	structure := &model.Structure{SchemaVersion: model.StructureSchemaVersion}
	plan, err := g.Plan(context.Background(), structure, "delete the abstract")
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(plan.Ops) != 1 || plan.Ops[0].Operation != model.OpUpdateTOC {
		t.Errorf("unexpected plan: %+v", plan)
	}
}

func TestGateway_Plan_StripsCodeFence(t *testing.T) {
	t.Parallel()
	lm := &stubLM{replies: []string{"```json\n" + validPlanJSON() + "\n```"}}
	g := planner.New(lm, planner.Config{ModelID: "gpt-4o"}, model.NewWarningSink())

	structure := &model.Structure{SchemaVersion: model.StructureSchemaVersion}
	if _, err := g.Plan(context.Background(), structure, "intent"); err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
}

func TestGateway_Plan_RetriesOnParseFailure(t *testing.T) {
	t.Parallel()
	lm := &stubLM{replies: []string{"not json at all", validPlanJSON()}}
	warnings := model.NewWarningSink()
	g := planner.New(lm, planner.Config{ModelID: "gpt-4o", MaxRetries: 2}, warnings)

	structure := &model.Structure{SchemaVersion: model.StructureSchemaVersion}
	plan, err := g.Plan(context.Background(), structure, "intent")
	if err != nil {
		t.Fatalf("Plan failed after retry: %v", err)
	}
	if len(plan.Ops) != 1 {
		t.Errorf("unexpected plan after retry: %+v", plan)
	}
	if len(lm.prompts) != 2 {
		t.Fatalf("expected 2 completion calls, got %d", len(lm.prompts))
	}
	if len(warnings.All()) == 0 {
		t.Error("expected a JSON_RETRY warning to be recorded")
	}
}

func TestGateway_Plan_ExhaustsRetries(t *testing.T) {
	t.Parallel()
	lm := &stubLM{replies: []string{"garbage", "still garbage", "more garbage"}}
	g := planner.New(lm, planner.Config{ModelID: "gpt-4o", MaxRetries: 2}, model.NewWarningSink())

	structure := &model.Structure{SchemaVersion: model.StructureSchemaVersion}
	_, err := g.Plan(context.Background(), structure, "intent")
	if err == nil {
		t.Fatal("expected an error once retries are exhausted")
	}
	if len(lm.prompts) != 3 {
		t.Errorf("expected 3 completion calls (1 + 2 retries), got %d", len(lm.prompts))
	}
}

func TestGateway_Plan_RejectsUnknownOperation(t *testing.T) {
	t.Parallel()
	lm := &stubLM{replies: []string{`{"schema_version":"plan.v1","ops":[{"operation":"reboot_the_computer"}]}`}}
	g := planner.New(lm, planner.Config{ModelID: "gpt-4o", MaxRetries: 0}, model.NewWarningSink())

	structure := &model.Structure{SchemaVersion: model.StructureSchemaVersion}
	_, err := g.Plan(context.Background(), structure, "intent")
	if err == nil {
		t.Fatal("expected an error for a non-whitelisted operation")
	}
}

func TestGateway_Plan_RejectsWrongSchemaVersion(t *testing.T) {
	t.Parallel()
	lm := &stubLM{replies: []string{`{"schema_version":"plan.v2","ops":[]}`}}
	g := planner.New(lm, planner.Config{ModelID: "gpt-4o", MaxRetries: 0}, model.NewWarningSink())

	structure := &model.Structure{SchemaVersion: model.StructureSchemaVersion}
	_, err := g.Plan(context.Background(), structure, "intent")
	if err == nil {
		t.Fatal("expected an error for an unexpected schema_version")
	}
}

func TestGateway_Plan_PropagatesModelError(t *testing.T) {
	t.Parallel()
	lm := &stubLM{err: errors.New("connection reset")}
	g := planner.New(lm, planner.Config{ModelID: "gpt-4o"}, model.NewWarningSink())

	structure := &model.Structure{SchemaVersion: model.StructureSchemaVersion}
	_, err := g.Plan(context.Background(), structure, "intent")
	if err == nil {
		t.Fatal("expected the model's error to propagate")
	}
}

func TestGateway_Plan_CancelledContext(t *testing.T) {
	t.Parallel()
	lm := &stubLM{replies: []string{validPlanJSON()}}
	g := planner.New(lm, planner.Config{ModelID: "gpt-4o"}, model.NewWarningSink())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	structure := &model.Structure{SchemaVersion: model.StructureSchemaVersion}
	_, err := g.Plan(ctx, structure, "intent")
	if err == nil {
		t.Fatal("expected an error for an already-cancelled context")
	}
}
