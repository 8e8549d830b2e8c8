package voiceloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterpretationParsesCommand(t *testing.T) {
	text := `{"type": "command", "directive": "open settings", "response": "", "remember": ""}`
	got, err := parseInterpretation(text)
	require.NoError(t, err)
	assert.Equal(t, InterpretCommand, got.Type)
	assert.Equal(t, "open settings", got.Directive)
}

func TestParseInterpretationToleratesSurroundingProse(t *testing.T) {
	text := "Here's my read on that:\n{\"type\": \"chat\", \"directive\": \"\", \"response\": \"Sure, I can help.\", \"remember\": \"\"}\nLet me know if that's right."
	got, err := parseInterpretation(text)
	require.NoError(t, err)
	assert.Equal(t, InterpretChat, got.Type)
	assert.Equal(t, "Sure, I can help.", got.Response)
}

func TestParseInterpretationRejectsUnknownType(t *testing.T) {
	_, err := parseInterpretation(`{"type": "unknown", "directive": "", "response": "", "remember": ""}`)
	assert.Error(t, err)
}

func TestParseInterpretationErrorsWithoutJSON(t *testing.T) {
	_, err := parseInterpretation("I'm not sure what that means.")
	assert.Error(t, err)
}
