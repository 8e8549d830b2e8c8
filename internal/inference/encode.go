package inference

import (
	"encoding/base64"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/axon-cua/agent/internal/history"
)

func encodeMessages(messages []history.Message) ([]sdk.MessageParam, error) {
	out := make([]sdk.MessageParam, 0, len(messages))
	for _, m := range messages {
		blocks, err := encodeBlocks(m.Blocks)
		if err != nil {
			return nil, err
		}
		if len(blocks) == 0 {
			continue
		}
		switch m.Role {
		case history.RoleUser:
			out = append(out, sdk.NewUserMessage(blocks...))
		case history.RoleAssistant:
			out = append(out, sdk.NewAssistantMessage(blocks...))
		default:
			return nil, fmt.Errorf("inference: unsupported role %q", m.Role)
		}
	}
	return out, nil
}

func encodeBlocks(blocks []history.Block) ([]sdk.ContentBlockParamUnion, error) {
	out := make([]sdk.ContentBlockParamUnion, 0, len(blocks))
	for _, b := range blocks {
		switch b.Kind {
		case history.BlockText:
			if b.Text != "" {
				out = append(out, sdk.NewTextBlock(b.Text))
			}
		case history.BlockImage:
			if len(b.ImageData) > 0 {
				out = append(out, sdk.NewImageBlockBase64("image/png", base64.StdEncoding.EncodeToString(b.ImageData)))
			}
		case history.BlockToolUse:
			out = append(out, sdk.NewToolUseBlock(b.ToolUseID, b.ToolInput, b.ToolName))
		case history.BlockToolResult:
			text := b.ToolResultText
			if b.ToolResultExtra != "" {
				text += "\n" + b.ToolResultExtra
			}
			out = append(out, sdk.NewToolResultBlock(b.ToolResultFor, text, b.IsError))
			if len(b.ToolResultImage) > 0 {
				out = append(out, sdk.NewImageBlockBase64("image/png", base64.StdEncoding.EncodeToString(b.ToolResultImage)))
			}
		}
	}
	return out, nil
}
