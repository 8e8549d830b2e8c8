// Package inference wraps github.com/anthropics/anthropic-sdk-go behind
// spec.md §6's inference backend contract: a system block (with an
// "ephemeral" cache marker), a list of tool definitions, a message list of
// text/image/tool-use/tool-result blocks, and a streaming SSE surface.
//
// The client construction and streaming adaptation are grounded on
// goadesign-goa-ai/features/model/anthropic/{client,stream}.go: the same
// sdk.NewClient(option.WithAPIKey(...)) + MessageNewParams shape, and the
// same per-content-block-index delta buffering collapsed at
// content_block_stop.
package inference

import (
	"context"
	"encoding/json"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/axon-cua/agent/internal/coreerrors"
	"github.com/axon-cua/agent/internal/history"
)

// ToolDefinition describes one tool exposed to the model. The computer
// control tool (§6) is the only one this system uses.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Request is one turn sent to the model.
type Request struct {
	System      string // system prompt text; always marked ephemeral-cacheable
	Messages    []history.Message
	Tools       []ToolDefinition
	Model       string
	MaxTokens   int64
	Temperature float64
}

// Client wraps the raw SDK client with the model defaults this system uses
// for the executor (streaming, tool-calling) and the planner (JSON-only,
// no tools) roles.
type Client struct {
	sdk          sdk.Client
	defaultModel string
	maxTokens    int64
}

// New builds a Client. apiKey may be the bundled demo key (internal/config
// supplies the fallback); defaultModel names the concrete model id.
func New(apiKey, defaultModel string) *Client {
	return &Client{
		sdk:          sdk.NewClient(option.WithAPIKey(apiKey)),
		defaultModel: defaultModel,
		maxTokens:    4096,
	}
}

// Stream issues a streaming request and returns a Stream that yields Events
// until the response completes.
func (c *Client) Stream(ctx context.Context, req Request) (*Stream, error) {
	params, err := c.buildParams(req)
	if err != nil {
		return nil, err
	}
	raw := c.sdk.Messages.NewStreaming(ctx, *params)
	return newStream(ctx, raw), nil
}

// Complete issues a non-streaming request and returns the assistant's full
// text plus any tool calls, for callers (the planner) that don't need
// incremental output.
func (c *Client) Complete(ctx context.Context, req Request) (Completion, error) {
	params, err := c.buildParams(req)
	if err != nil {
		return Completion{}, err
	}
	msg, err := c.sdk.Messages.New(ctx, *params)
	if err != nil {
		return Completion{}, fmt.Errorf("inference: complete: %w: %v", coreerrors.ErrNetworkTransient, err)
	}
	return completionFromMessage(msg), nil
}

// Completion is a fully-materialized model response.
type Completion struct {
	Text       string
	ToolCalls  []ToolCall
	StopReason string
}

// ToolCall is one finalized tool invocation.
type ToolCall struct {
	ID    string
	Name  string
	Input map[string]any
}

func completionFromMessage(msg *sdk.Message) Completion {
	var c Completion
	c.StopReason = string(msg.StopReason)
	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case sdk.TextBlock:
			c.Text += b.Text
		case sdk.ToolUseBlock:
			var input map[string]any
			if raw, err := json.Marshal(b.Input); err == nil {
				_ = json.Unmarshal(raw, &input)
			}
			c.ToolCalls = append(c.ToolCalls, ToolCall{ID: b.ID, Name: b.Name, Input: input})
		}
	}
	return c
}

func (c *Client) buildParams(req Request) (*sdk.MessageNewParams, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	msgs, err := encodeMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	params := &sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: maxTokens,
		Messages:  msgs,
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{
			{
				Text: req.System,
				CacheControl: sdk.CacheControlEphemeralParam{
					Type: "ephemeral",
				},
			},
		}
	}
	if req.Temperature > 0 {
		params.Temperature = sdk.Float(req.Temperature)
	}
	if len(req.Tools) > 0 {
		tools, err := encodeTools(req.Tools)
		if err != nil {
			return nil, err
		}
		params.Tools = tools
	}
	return params, nil
}

func encodeTools(defs []ToolDefinition) ([]sdk.ToolUnionParam, error) {
	out := make([]sdk.ToolUnionParam, 0, len(defs))
	for _, d := range defs {
		raw, err := json.Marshal(d.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("inference: tool %q schema: %w", d.Name, err)
		}
		var schemaFields map[string]any
		if err := json.Unmarshal(raw, &schemaFields); err != nil {
			return nil, fmt.Errorf("inference: tool %q schema decode: %w", d.Name, err)
		}
		u := sdk.ToolUnionParamOfTool(sdk.ToolInputSchemaParam{ExtraFields: schemaFields}, d.Name)
		if u.OfTool != nil {
			u.OfTool.Description = sdk.String(d.Description)
		}
		out = append(out, u)
	}
	return out, nil
}
