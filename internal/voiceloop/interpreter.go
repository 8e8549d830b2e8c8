package voiceloop

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/axon-cua/agent/internal/history"
	"github.com/axon-cua/agent/internal/inference"
)

// InterpretationType tags the complex-path interpreter's verdict on a
// transcript (spec.md §4.5).
type InterpretationType string

const (
	InterpretCommand  InterpretationType = "command"
	InterpretFollowup InterpretationType = "followup"
	InterpretInterrupt InterpretationType = "interrupt"
	InterpretChat     InterpretationType = "chat"
	InterpretMemory   InterpretationType = "memory"
)

// Interpretation is interpret_voice_input's structured reply.
type Interpretation struct {
	Type      InterpretationType
	Directive string
	Response  string
	Remember  string
}

// Interpreter drives the complex path's interpret_voice_input call: a
// single JSON-only inference turn classifying a transcript against the
// rolling session context and persisted memory.
type Interpreter struct {
	Infer        *inference.Client
	Model        string
	SystemPrompt string
}

// Interpret classifies raw against sessionLines and memoryFacts. A failed
// or malformed response is reported as an error; callers fall back to the
// simple path on error (spec.md §4.5: "If the interpreter call fails, fall
// back to the simple path").
func (ip *Interpreter) Interpret(ctx context.Context, raw string, sessionLines, memoryFacts []string) (Interpretation, error) {
	prompt := fmt.Sprintf(
		"Recent conversation:\n%s\n\nRemembered facts:\n%s\n\nClassify this transcript: %q\n\n"+
			"Respond with JSON: {\"type\": \"command\"|\"followup\"|\"interrupt\"|\"chat\"|\"memory\", "+
			"\"directive\": string, \"response\": string, \"remember\": string}.",
		strings.Join(sessionLines, "\n"), strings.Join(memoryFacts, "\n"), raw,
	)

	messages := []history.Message{history.NewUserText(prompt)}
	completion, err := ip.Infer.Complete(ctx, inference.Request{
		System:   ip.SystemPrompt,
		Messages: messages,
		Model:    ip.Model,
	})
	if err != nil {
		return Interpretation{}, fmt.Errorf("voiceloop: interpret voice input: %w", err)
	}
	return parseInterpretation(completion.Text)
}

func parseInterpretation(text string) (Interpretation, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return Interpretation{}, fmt.Errorf("voiceloop: no JSON object in interpreter response")
	}

	var decoded struct {
		Type      string `json:"type"`
		Directive string `json:"directive"`
		Response  string `json:"response"`
		Remember  string `json:"remember"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &decoded); err != nil {
		return Interpretation{}, fmt.Errorf("voiceloop: parse interpreter response: %w", err)
	}

	switch InterpretationType(decoded.Type) {
	case InterpretCommand, InterpretFollowup, InterpretInterrupt, InterpretChat, InterpretMemory:
	default:
		return Interpretation{}, fmt.Errorf("voiceloop: unrecognized interpretation type %q", decoded.Type)
	}

	return Interpretation{
		Type:      InterpretationType(decoded.Type),
		Directive: decoded.Directive,
		Response:  decoded.Response,
		Remember:  decoded.Remember,
	}, nil
}
