// Package history implements the message-history data model shared between
// the direct-execution loop and the inference client, and the trimming
// rule that keeps at most MaxScreenshots images alive in history
// (spec.md §3, §4.3 invariant 4).
package history

// MaxScreenshots is the invariant cap on live images in history after
// trimming; older images are replaced by a placeholder text block.
const MaxScreenshots = 3

// ScreenshotOmittedPlaceholder replaces a trimmed image block's payload.
const ScreenshotOmittedPlaceholder = "[screenshot omitted]"

// Role is the speaker of a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// BlockKind tags the variant carried by a Block.
type BlockKind string

const (
	BlockText       BlockKind = "text"
	BlockImage      BlockKind = "image"
	BlockToolUse    BlockKind = "tool_use"
	BlockToolResult BlockKind = "tool_result"
)

// Block is one content block within a Message.
type Block struct {
	Kind BlockKind

	Text string

	// ImageData is a base64-ready image payload; present only when
	// Kind == BlockImage.
	ImageData []byte

	// ToolUseID/ToolName/ToolInput are populated for BlockToolUse.
	ToolUseID  string
	ToolName   string
	ToolInput  map[string]any

	// ToolResultFor/ToolResultText/IsError are populated for BlockToolResult.
	// ToolResultExtra carries an additional text block appended alongside
	// the acknowledgement (used for the repeat-click warning, §4.4) and the
	// trailing image (used to carry the post-action screenshot, §4.3.1 step 4).
	ToolResultFor   string
	ToolResultText  string
	IsError         bool
	ToolResultExtra string
	ToolResultImage []byte
}

// Message is one turn in the conversation with the executor model.
type Message struct {
	Role   Role
	Blocks []Block
}

// NewUserText is a convenience constructor for a plain user text message.
func NewUserText(text string) Message {
	return Message{Role: RoleUser, Blocks: []Block{{Kind: BlockText, Text: text}}}
}

// NewUserImage is a convenience constructor for a user message carrying a
// screenshot plus an optional accompanying note.
func NewUserImage(note string, image []byte) Message {
	blocks := []Block{{Kind: BlockImage, ImageData: image}}
	if note != "" {
		blocks = append(blocks, Block{Kind: BlockText, Text: note})
	}
	return Message{Role: RoleUser, Blocks: blocks}
}

// ImageCount returns the number of live (non-placeholder) image blocks
// across the whole history.
func ImageCount(messages []Message) int {
	n := 0
	for _, m := range messages {
		for _, b := range m.Blocks {
			if b.Kind == BlockImage && len(b.ImageData) > 0 {
				n++
			}
			if b.Kind == BlockToolResult && len(b.ToolResultImage) > 0 {
				n++
			}
		}
	}
	return n
}

// Trim replaces all but the most recent MaxScreenshots images in messages
// with the omitted-placeholder text, preserving every other block
// (invariant: after trimming, the live image count is <= MaxScreenshots).
// It returns a new slice; the input is not mutated.
func Trim(messages []Message) []Message {
	type imgRef struct {
		msgIdx, blockIdx int
		isToolResult     bool
	}
	var refs []imgRef
	for mi, m := range messages {
		for bi, b := range m.Blocks {
			if b.Kind == BlockImage && len(b.ImageData) > 0 {
				refs = append(refs, imgRef{mi, bi, false})
			}
			if b.Kind == BlockToolResult && len(b.ToolResultImage) > 0 {
				refs = append(refs, imgRef{mi, bi, true})
			}
		}
	}

	out := make([]Message, len(messages))
	for i, m := range messages {
		blocks := make([]Block, len(m.Blocks))
		copy(blocks, m.Blocks)
		out[i] = Message{Role: m.Role, Blocks: blocks}
	}

	if len(refs) <= MaxScreenshots {
		return out
	}
	toDrop := refs[:len(refs)-MaxScreenshots]
	for _, r := range toDrop {
		if r.isToolResult {
			out[r.msgIdx].Blocks[r.blockIdx].ToolResultImage = nil
			out[r.msgIdx].Blocks[r.blockIdx].ToolResultExtra = joinNote(out[r.msgIdx].Blocks[r.blockIdx].ToolResultExtra, ScreenshotOmittedPlaceholder)
		} else {
			out[r.msgIdx].Blocks[r.blockIdx].ImageData = nil
			out[r.msgIdx].Blocks[r.blockIdx].Text = ScreenshotOmittedPlaceholder
		}
	}
	return out
}

func joinNote(existing, addition string) string {
	if existing == "" {
		return addition
	}
	return existing + "\n" + addition
}

// PairToolResults verifies that result blocks pair 1:1 with the given
// tool-use ids, in order, per invariant 5.
func PairToolResults(toolUseIDs []string, results []Block) bool {
	if len(toolUseIDs) != len(results) {
		return false
	}
	for i, id := range toolUseIDs {
		if results[i].Kind != BlockToolResult || results[i].ToolResultFor != id {
			return false
		}
	}
	return true
}
