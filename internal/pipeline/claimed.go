package pipeline

import (
	"context"

	"github.com/axon-cua/agent/internal/history"
	"github.com/axon-cua/agent/internal/inference"
	"github.com/axon-cua/agent/internal/repeatclick"
)

// ContinueFromClaimed executes a claimed speculative completion's tool
// calls (round zero of the direct-execution loop, already decided before
// the final transcript arrived) and then continues RunDirect for the
// remaining iteration budget, exactly as if that completion had been the
// first streamed round of a fresh RunDirect call.
func (e *Executor) ContinueFromClaimed(ctx context.Context, transcript string, screenshot []byte, completion inference.Completion, maxIterations int) (Result, []history.Message) {
	messages := []history.Message{history.NewUserImage(transcript, screenshot)}
	messages = append(messages, assistantMessage(completion))

	detector := repeatclick.New()
	resultMsg, err := e.executeToolCalls(ctx, completion.ToolCalls, detector)
	if err != nil {
		return Result{Status: StatusEscalate}, messages
	}
	messages = append(messages, resultMsg)

	if e.Actions != nil {
		_ = e.Actions.MaximizeOnce()
	}

	return e.RunDirect(ctx, messages, maxIterations-1)
}
