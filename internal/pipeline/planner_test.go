package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONStripsMarkdownFence(t *testing.T) {
	raw := "Here is the plan:\n```json\n{\"blocks\": []}\n```\nLet me know."
	assert.Equal(t, `{"blocks": []}`, extractJSON(raw))
}

func TestExtractJSONReturnsEmptyWithoutBraces(t *testing.T) {
	assert.Equal(t, "", extractJSON("no json here"))
}

func TestParsePlanResponseParsesBlocksAndClarifications(t *testing.T) {
	text := `{"blocks": [{"directive": "open settings", "expected_outcome": "settings window visible"}], "clarifications": ["which browser?"]}`

	resp, err := parsePlanResponse(text)
	require.NoError(t, err)
	require.Len(t, resp.Blocks, 1)
	assert.Equal(t, "open settings", resp.Blocks[0].Directive)
	assert.Equal(t, "settings window visible", resp.Blocks[0].ExpectedOutcome)
	assert.Equal(t, []string{"which browser?"}, resp.Clarifications)
}

func TestParsePlanResponseToleratesSurroundingProse(t *testing.T) {
	text := "Sure, here's my plan.\n{\"blocks\": [{\"directive\": \"click search\", \"expected_outcome\": \"search box focused\"}]}\nHope that helps!"

	resp, err := parsePlanResponse(text)
	require.NoError(t, err)
	require.Len(t, resp.Blocks, 1)
	assert.Equal(t, "click search", resp.Blocks[0].Directive)
}

func TestParsePlanResponseErrorsWithoutJSON(t *testing.T) {
	_, err := parsePlanResponse("I don't have a plan for that.")
	assert.Error(t, err)
}

func TestParsePlanResponseErrorsOnMalformedJSON(t *testing.T) {
	_, err := parsePlanResponse(`{"blocks": [}`)
	assert.Error(t, err)
}

func TestParseEvaluationParsesStatusAndSummary(t *testing.T) {
	eval, err := parseEvaluation(`{"status": "ok", "summary": "settings window is open"}`)
	require.NoError(t, err)
	assert.Equal(t, "ok", eval.Status)
	assert.Equal(t, "settings window is open", eval.Summary)
}

func TestParseEvaluationErrorsWithoutJSON(t *testing.T) {
	_, err := parseEvaluation("looks good to me")
	assert.Error(t, err)
}
