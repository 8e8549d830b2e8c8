package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func img(n byte) []byte { return []byte{n} }

func TestTrimKeepsAtMostMaxScreenshots(t *testing.T) {
	var msgs []Message
	for i := 0; i < 5; i++ {
		msgs = append(msgs, NewUserImage("", img(byte(i))))
	}
	trimmed := Trim(msgs)
	assert.LessOrEqual(t, ImageCount(trimmed), MaxScreenshots)
	assert.Equal(t, MaxScreenshots, ImageCount(trimmed))
}

func TestTrimPreservesOtherBlocks(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Blocks: []Block{{Kind: BlockText, Text: "hello"}, {Kind: BlockImage, ImageData: img(1)}}},
		{Role: RoleAssistant, Blocks: []Block{{Kind: BlockText, Text: "ok"}}},
		{Role: RoleUser, Blocks: []Block{{Kind: BlockImage, ImageData: img(2)}}},
		{Role: RoleUser, Blocks: []Block{{Kind: BlockImage, ImageData: img(3)}}},
		{Role: RoleUser, Blocks: []Block{{Kind: BlockImage, ImageData: img(4)}}},
	}
	trimmed := Trim(msgs)
	assert.Equal(t, "hello", trimmed[0].Blocks[0].Text)
	assert.Equal(t, ScreenshotOmittedPlaceholder, trimmed[0].Blocks[1].Text)
	assert.Nil(t, trimmed[0].Blocks[1].ImageData)
	assert.Equal(t, "ok", trimmed[1].Blocks[0].Text)
}

func TestTrimUnderLimitUnchanged(t *testing.T) {
	msgs := []Message{NewUserImage("", img(1)), NewUserImage("", img(2))}
	trimmed := Trim(msgs)
	assert.Equal(t, 2, ImageCount(trimmed))
}

func TestPairToolResults(t *testing.T) {
	ids := []string{"a", "b"}
	results := []Block{
		{Kind: BlockToolResult, ToolResultFor: "a"},
		{Kind: BlockToolResult, ToolResultFor: "b"},
	}
	assert.True(t, PairToolResults(ids, results))

	bad := []Block{{Kind: BlockToolResult, ToolResultFor: "b"}, {Kind: BlockToolResult, ToolResultFor: "a"}}
	assert.False(t, PairToolResults(ids, bad))
}
