package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/axon-cua/agent/internal/action"
	"github.com/axon-cua/agent/internal/coreerrors"
	"github.com/axon-cua/agent/internal/history"
	"github.com/axon-cua/agent/internal/inference"
	"github.com/axon-cua/agent/internal/repeatclick"
)

// RunDirect runs the direct-execution loop (spec.md §4.3.1): up to
// maxIterations rounds of "stream a response, act on it or execute its
// tool calls", returning the terminal Result and the message history as
// it stood when the loop ended.
func (e *Executor) RunDirect(ctx context.Context, messages []history.Message, maxIterations int) (Result, []history.Message) {
	detector := repeatclick.New()

	for i := 0; i < maxIterations; i++ {
		iterations := i + 1
		if err := ctx.Err(); err != nil {
			return Result{Status: StatusDone, Summary: "Cancelled.", Iterations: iterations}, messages
		}

		messages = history.Trim(messages)

		completion, err := e.streamRound(ctx, messages)
		if err != nil {
			if e.Log != nil {
				e.Log.Error("direct-execution round failed", "error", err)
			}
			return Result{Status: StatusEscalate, Iterations: iterations}, messages
		}

		kind, payload := classifyResponse(completion.Text)
		switch kind {
		case kindDone:
			return Result{Status: StatusDone, Summary: payload, Iterations: iterations}, messages
		case kindClarify:
			return Result{Status: StatusClarify, Question: payload, Iterations: iterations}, messages
		case kindGuide:
			messages, err = e.runGuideRound(ctx, messages, payload)
			if err != nil {
				return Result{Status: StatusEscalate, Iterations: iterations}, messages
			}
			continue
		}

		if len(completion.ToolCalls) == 0 {
			if strings.Contains(completion.Text, "?") {
				return Result{Status: StatusClarify, Question: completion.Text, Iterations: iterations}, messages
			}
			return Result{Status: StatusDone, Summary: completion.Text, Iterations: iterations}, messages
		}

		messages = append(messages, assistantMessage(completion))
		resultMsg, err := e.executeToolCalls(ctx, completion.ToolCalls, detector)
		if err != nil {
			return Result{Status: StatusEscalate, Iterations: iterations}, messages
		}
		messages = append(messages, resultMsg)

		if e.Actions != nil {
			_ = e.Actions.MaximizeOnce()
		}
	}
	return Result{Status: StatusEscalate, Iterations: maxIterations}, messages
}

// streamRound issues one streaming completion, narrating the first
// sentence as it arrives (unless the response turns out to start with
// GUIDE:, DONE: or CLARIFY:; a leading NARRATE: is stripped before the
// sentence is spoken), and collects the final Completion.
func (e *Executor) streamRound(ctx context.Context, messages []history.Message) (inference.Completion, error) {
	stream, err := e.Infer.Stream(ctx, inference.Request{
		System:   e.SystemPrompt,
		Messages: messages,
		Tools:    e.toolDefinitions(),
		Model:    e.Model,
	})
	if err != nil {
		return inference.Completion{}, fmt.Errorf("pipeline: stream round: %w", err)
	}
	defer stream.Close()

	var (
		text      strings.Builder
		toolCalls []inference.ToolCall
		stopReas  string
		narrated  bool
	)

	for {
		ev, err := stream.Recv()
		if err != nil {
			break
		}
		switch ev.Kind {
		case inference.EventText:
			text.WriteString(ev.Text)
			if !narrated && e.Narration != nil {
				accumulated := text.String()
				narrate := strings.HasPrefix(accumulated, tokenNarrate)
				if narrate {
					accumulated = strings.TrimSpace(accumulated[len(tokenNarrate):])
				}
				if !narrate && hasStreamPrefix(accumulated) {
					narrated = true
				} else if narrate || !couldStillBePrefix(accumulated) {
					if sentence := firstSentence(accumulated); sentence != accumulated || strings.ContainsAny(sentence, ".!?") {
						narrated = true
						e.Narration.Enqueue(sentence)
					}
				}
			}
		case inference.EventToolCall:
			toolCalls = append(toolCalls, ev.ToolCall)
		case inference.EventMessageStop:
			stopReas = ev.StopReason
		}
	}

	return inference.Completion{Text: text.String(), ToolCalls: toolCalls, StopReason: stopReas}, nil
}

func (e *Executor) runGuideRound(ctx context.Context, messages []history.Message, payload string) ([]history.Message, error) {
	point, instruction := parseGuidePayload(payload)
	if e.Overlay != nil {
		e.Overlay.Highlight(point, instruction)
	}
	if e.Narration != nil && instruction != "" {
		e.Narration.Enqueue(instruction)
	}

	select {
	case <-time.After(GuideWaitDuration):
	case <-ctx.Done():
		return messages, ctx.Err()
	}

	frame, err := e.Screen.Capture(ctx, e.MaxModelWidth)
	if err != nil {
		return messages, fmt.Errorf("pipeline: guide round: %w: %v", coreerrors.ErrScreenCaptureLost, err)
	}
	messages = append(messages, history.NewUserImage(GuidedFollowupNote, frame.Image))
	return messages, nil
}

// executeToolCalls dispatches every tool call in order, with a settle
// sleep after each and after the batch, then builds the tool-result
// message carrying a fresh screenshot on the last result and any
// repeat-click warning appended to it.
func (e *Executor) executeToolCalls(ctx context.Context, calls []inference.ToolCall, detector *repeatclick.Detector) (history.Message, error) {
	results := make([]history.Block, 0, len(calls))
	var warned bool

	for _, call := range calls {
		act, ok := action.Parse(call.Name, call.Input)
		resultText := "ok"
		isError := false
		if !ok {
			resultText = action.UnknownActionWarning(call.Name)
			isError = true
		} else {
			if err := e.Actions.Dispatch(act); err != nil {
				resultText = fmt.Sprintf("failed: %v", err)
				isError = true
			}
			if detector.Observe(act) {
				warned = true
			}
		}

		results = append(results, history.Block{
			Kind:          history.BlockToolResult,
			ToolResultFor: call.ID,
			ToolResultText: resultText,
			IsError:       isError,
		})

		select {
		case <-time.After(PostActionSettle):
		case <-ctx.Done():
			return history.Message{}, ctx.Err()
		}
	}

	select {
	case <-time.After(BatchSettle):
	case <-ctx.Done():
		return history.Message{}, ctx.Err()
	}

	frame, err := e.Screen.Capture(ctx, e.MaxModelWidth)
	if err != nil {
		return history.Message{}, fmt.Errorf("pipeline: post-action screenshot: %w: %v", coreerrors.ErrScreenCaptureLost, err)
	}
	if len(results) > 0 {
		last := &results[len(results)-1]
		last.ToolResultImage = frame.Image
		if warned {
			last.ToolResultExtra = repeatclick.Warning
		}
	}

	return history.Message{Role: history.RoleUser, Blocks: results}, nil
}

func assistantMessage(c inference.Completion) history.Message {
	blocks := make([]history.Block, 0, len(c.ToolCalls)+1)
	if c.Text != "" {
		blocks = append(blocks, history.Block{Kind: history.BlockText, Text: c.Text})
	}
	for _, tc := range c.ToolCalls {
		blocks = append(blocks, history.Block{
			Kind:       history.BlockToolUse,
			ToolUseID:  tc.ID,
			ToolName:   tc.Name,
			ToolInput:  tc.Input,
		})
	}
	return history.Message{Role: history.RoleAssistant, Blocks: blocks}
}

func (e *Executor) toolDefinitions() []inference.ToolDefinition {
	return []inference.ToolDefinition{{
		Name:        "computer",
		Description: "Controls the mouse and keyboard and takes screenshots of the user's desktop.",
		InputSchema: action.InputSchema(0, 0),
	}}
}
