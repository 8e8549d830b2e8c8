package pipeline

import (
	"context"

	"github.com/axon-cua/agent/internal/history"
	"github.com/axon-cua/agent/internal/inference"
)

// SpeculativeRound issues one streaming round against transcript and
// screenshot, exactly like the first round of RunDirect but without
// stream-narration: the caller (the speculative dispatcher's fire call)
// decides what to do with the response only once it is claimed, and
// narrating a response that may never be used would talk over the user
// still finishing their sentence.
func (e *Executor) SpeculativeRound(ctx context.Context, transcript string, screenshot []byte) (inference.Completion, error) {
	silent := *e
	silent.Narration = nil

	messages := []history.Message{history.NewUserImage(transcript, screenshot)}
	return silent.streamRound(ctx, messages)
}
