package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/axon-cua/agent/internal/history"
	"github.com/axon-cua/agent/internal/inference"
)

// WorkBlock is a planner-issued unit of work (spec.md §3): a directive
// addressed to the executor plus a visually-verifiable expected outcome.
// Immutable once planned.
type WorkBlock struct {
	Directive       string
	ExpectedOutcome string
}

// PlanResponse is the planner's reply to plan_pipeline/replan calls: an
// ordered list of blocks plus optional clarification questions.
type PlanResponse struct {
	Blocks         []WorkBlock
	Clarifications []string
}

type blockEvaluation struct {
	Status  string `json:"status"`
	Summary string `json:"summary"`
}

// AskFunc asks the user a clarification question out-of-band (via the
// voice loop's clarification bridge, spec.md §4.5) and reports whether an
// answer was obtained before it was cancelled.
type AskFunc func(ctx context.Context, question string) (answer string, ok bool)

// Planner drives the escalation-path pipeline (spec.md §4.3.2): a
// JSON-only, no-tools model role invoked through the same inference
// client the executor uses.
type Planner struct {
	Infer        *inference.Client
	Model        string
	SystemPrompt string
	Executor     *Executor
}

// RunPlan executes one full planner turn: plan, execute blocks
// sequentially (replanning on failure, up to MaxReplans), and, when the plan
// carried a clarification question, wait after those blocks for the answer
// (or for ctx to be cancelled) and fold in a clarified continuation.
func (p *Planner) RunPlan(ctx context.Context, userRequest string, screenshot []byte, ask AskFunc) (Result, error) {
	plan, err := p.PlanPipeline(ctx, userRequest, screenshot)
	if err != nil {
		return Result{}, err
	}

	blocks := plan.Blocks
	type askOutcome struct {
		answer string
		ok     bool
	}
	var askDone chan askOutcome
	if len(plan.Clarifications) > 0 && ask != nil {
		if len(blocks) > 0 {
			blocks = blocks[:len(blocks)-1]
		}
		askDone = make(chan askOutcome, 1)
		question := plan.Clarifications[0]
		go func() {
			answer, ok := ask(ctx, question)
			askDone <- askOutcome{answer, ok}
		}()
	}

	accomplished, status := p.executeBlocks(ctx, userRequest, blocks, screenshot, 0)

	if askDone != nil {
		select {
		case outcome := <-askDone:
			if outcome.ok {
				frame, err := p.Executor.Screen.Capture(ctx, p.Executor.MaxModelWidth)
				if err == nil {
					cont, err := p.ReplanWithClarification(ctx, userRequest, outcome.answer, accomplished, frame.Image)
					if err == nil {
						more, moreStatus := p.executeBlocks(ctx, userRequest, cont.Blocks, frame.Image, 0)
						accomplished = strings.TrimSpace(accomplished + " " + more)
						status = moreStatus
					}
				}
			}
		case <-ctx.Done():
		}
	}

	return Result{Status: status, Summary: accomplished}, nil
}

func (p *Planner) executeBlocks(ctx context.Context, userRequest string, blocks []WorkBlock, screenshot []byte, replans int) (string, Status) {
	var accomplished []string
	i := 0
	for i < len(blocks) {
		if err := ctx.Err(); err != nil {
			return strings.Join(accomplished, " "), StatusDone
		}

		block := blocks[i]
		frame, err := p.Executor.Screen.Capture(ctx, p.Executor.MaxModelWidth)
		if err != nil {
			return strings.Join(accomplished, " "), StatusEscalate
		}

		messages := []history.Message{history.NewUserImage(block.Directive, frame.Image)}
		result, _ := p.Executor.RunDirect(ctx, messages, MaxIterationsPerBlock)
		hitIterationLimit := result.Status == StatusEscalate

		postFrame, err := p.Executor.Screen.Capture(ctx, p.Executor.MaxModelWidth)
		if err != nil {
			postFrame = frame
		}
		evaluation, err := p.EvaluateBlock(ctx, block.ExpectedOutcome, postFrame.Image, result.Iterations, hitIterationLimit, i, len(blocks))
		if err == nil && evaluation.Status == "ok" {
			if evaluation.Summary != "" {
				accomplished = append(accomplished, evaluation.Summary)
			}
			i++
			continue
		}

		if replans >= MaxReplans {
			return strings.Join(accomplished, " "), StatusDone
		}
		fresh, err := p.Replan(ctx, userRequest, strings.Join(accomplished, " "), postFrame.Image)
		if err != nil {
			return strings.Join(accomplished, " "), StatusEscalate
		}
		blocks = fresh.Blocks
		i = 0
		replans++
	}
	return strings.Join(accomplished, " "), StatusDone
}

func (p *Planner) PlanPipeline(ctx context.Context, userRequest string, screenshot []byte) (PlanResponse, error) {
	prompt := fmt.Sprintf("Plan 1 to 4 work blocks to satisfy this request:\n\n%s", userRequest)
	return p.planCall(ctx, prompt, screenshot)
}

func (p *Planner) Replan(ctx context.Context, userRequest, accomplishedSoFar string, screenshot []byte) (PlanResponse, error) {
	prompt := fmt.Sprintf("Replan. Original request: %s\nAccomplished so far: %s", userRequest, accomplishedSoFar)
	return p.planCall(ctx, prompt, screenshot)
}

func (p *Planner) ReplanWithClarification(ctx context.Context, userRequest, answer, accomplishedSoFar string, screenshot []byte) (PlanResponse, error) {
	prompt := fmt.Sprintf("Replan using the user's clarification.\nOriginal request: %s\nClarification answer: %s\nAccomplished so far: %s", userRequest, answer, accomplishedSoFar)
	return p.planCall(ctx, prompt, screenshot)
}

func (p *Planner) EvaluateBlock(ctx context.Context, expectedOutcome string, screenshot []byte, iterations int, hitIterationLimit bool, blockIndex, total int) (blockEvaluation, error) {
	prompt := fmt.Sprintf(
		"Block %d of %d. Expected outcome: %s\nIterations used: %d (hit limit: %v)\nRespond with JSON: {\"status\": \"ok\"|\"failed\", \"summary\": string}.",
		blockIndex+1, total, expectedOutcome, iterations, hitIterationLimit,
	)
	messages := []history.Message{history.NewUserImage(prompt, screenshot)}
	completion, err := p.Infer.Complete(ctx, inference.Request{System: p.SystemPrompt, Messages: messages, Model: p.Model})
	if err != nil {
		return blockEvaluation{}, fmt.Errorf("pipeline: evaluate block: %w", err)
	}
	return parseEvaluation(completion.Text)
}

func (p *Planner) planCall(ctx context.Context, prompt string, screenshot []byte) (PlanResponse, error) {
	messages := []history.Message{history.NewUserImage(prompt, screenshot)}
	completion, err := p.Infer.Complete(ctx, inference.Request{System: p.SystemPrompt, Messages: messages, Model: p.Model})
	if err != nil {
		return PlanResponse{}, fmt.Errorf("pipeline: plan call: %w", err)
	}
	return parsePlanResponse(completion.Text)
}

// extractJSON finds the first '{' and last '}' in text and returns that
// substring, tolerating markdown fences or prose surrounding the JSON
// object (spec.md §4.3.2).
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return text[start : end+1]
}

func parsePlanResponse(text string) (PlanResponse, error) {
	raw := extractJSON(text)
	if raw == "" {
		return PlanResponse{}, fmt.Errorf("pipeline: no JSON object in planner response")
	}
	var decoded struct {
		Blocks []struct {
			Directive       string `json:"directive"`
			ExpectedOutcome string `json:"expected_outcome"`
		} `json:"blocks"`
		Clarifications []string `json:"clarifications"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return PlanResponse{}, fmt.Errorf("pipeline: parse plan response: %w", err)
	}
	resp := PlanResponse{Clarifications: decoded.Clarifications}
	for _, b := range decoded.Blocks {
		resp.Blocks = append(resp.Blocks, WorkBlock{Directive: b.Directive, ExpectedOutcome: b.ExpectedOutcome})
	}
	return resp, nil
}

func parseEvaluation(text string) (blockEvaluation, error) {
	raw := extractJSON(text)
	if raw == "" {
		return blockEvaluation{}, fmt.Errorf("pipeline: no JSON object in evaluation response")
	}
	var decoded blockEvaluation
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return blockEvaluation{}, fmt.Errorf("pipeline: parse evaluation: %w", err)
	}
	return decoded, nil
}
