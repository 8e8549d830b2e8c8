package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axon-cua/agent/internal/history"
)

func TestEncodeMessagesSkipsEmptyBlocks(t *testing.T) {
	msgs := []history.Message{
		history.NewUserText("hello"),
		{Role: history.RoleAssistant, Blocks: []history.Block{{Kind: history.BlockText, Text: ""}}},
	}
	encoded, err := encodeMessages(msgs)
	require.NoError(t, err)
	// The assistant message has no non-empty blocks and is dropped entirely.
	assert.Len(t, encoded, 1)
}

func TestEncodeMessagesRejectsUnknownRole(t *testing.T) {
	msgs := []history.Message{{Role: "system", Blocks: []history.Block{{Kind: history.BlockText, Text: "x"}}}}
	_, err := encodeMessages(msgs)
	assert.Error(t, err)
}

func TestToolBufferFinalInputJoinsFragments(t *testing.T) {
	tb := &toolBuffer{id: "tool_1", name: "computer", fragments: []string{`{"action":`, `"left_click","coordinate":[1,2]}`}}
	input := tb.finalInput()
	assert.Equal(t, "left_click", input["action"])
}

func TestToolBufferFinalInputDropsIncompleteJSON(t *testing.T) {
	tb := &toolBuffer{id: "tool_1", name: "computer", fragments: []string{`{"action": "left_click"`}}
	input := tb.finalInput()
	assert.Nil(t, input)
}
