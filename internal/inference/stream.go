package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
)

// EventKind tags the variant carried by an Event.
type EventKind string

const (
	EventText         EventKind = "text"
	EventToolCall     EventKind = "tool_call"
	EventMessageStop  EventKind = "message_stop"
)

// Event is one incremental unit of a streamed response: either a piece of
// assistant text, a finalized tool call (buffered across deltas and
// released at content_block_stop per spec.md §9's streaming-JSON-deltas
// note), or the terminal message_stop carrying the stop reason.
type Event struct {
	Kind EventKind

	Text string

	ToolCall ToolCall

	StopReason string
}

// Stream adapts the SDK's *ssestream.Stream[sdk.MessageStreamEventUnion]
// into a simple Recv()-style API, the same adaptation goa-ai's
// anthropicStreamer performs: a background goroutine drives the SSE
// stream and a chunk processor buffers partial-JSON tool input by
// content-block index, finalizing at content_block_stop.
type Stream struct {
	ctx    context.Context
	cancel context.CancelFunc
	raw    *ssestream.Stream[sdk.MessageStreamEventUnion]
	events chan Event
	errCh  chan error
}

func newStream(ctx context.Context, raw *ssestream.Stream[sdk.MessageStreamEventUnion]) *Stream {
	cctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		ctx:    cctx,
		cancel: cancel,
		raw:    raw,
		events: make(chan Event, 32),
		errCh:  make(chan error, 1),
	}
	go s.run()
	return s
}

// Recv blocks for the next Event, returning io.EOF once the stream has
// finished without error.
func (s *Stream) Recv() (Event, error) {
	select {
	case ev, ok := <-s.events:
		if ok {
			return ev, nil
		}
		select {
		case err := <-s.errCh:
			return Event{}, err
		default:
			return Event{}, io.EOF
		}
	case <-s.ctx.Done():
		return Event{}, s.ctx.Err()
	}
}

// Close stops the stream and releases the underlying connection.
func (s *Stream) Close() error {
	s.cancel()
	if s.raw == nil {
		return nil
	}
	return s.raw.Close()
}

type toolBuffer struct {
	id        string
	name      string
	fragments []string
}

func (t *toolBuffer) finalInput() map[string]any {
	joined := ""
	for _, f := range t.fragments {
		joined += f
	}
	var input map[string]any
	if joined == "" {
		return input
	}
	// Incomplete JSON at end-of-stream drops the block rather than erroring
	// the whole turn (spec.md §9).
	_ = json.Unmarshal([]byte(joined), &input)
	return input
}

func (s *Stream) run() {
	defer close(s.events)
	defer func() {
		if s.raw != nil {
			_ = s.raw.Close()
		}
	}()

	toolBlocks := make(map[int]*toolBuffer)

	for s.raw.Next() {
		event := s.raw.Current()
		switch ev := event.AsAny().(type) {
		case sdk.ContentBlockStartEvent:
			idx := int(ev.Index)
			if tu, ok := ev.ContentBlock.AsAny().(sdk.ToolUseBlock); ok {
				toolBlocks[idx] = &toolBuffer{id: tu.ID, name: tu.Name}
			}
		case sdk.ContentBlockDeltaEvent:
			idx := int(ev.Index)
			switch delta := ev.Delta.AsAny().(type) {
			case sdk.TextDelta:
				if delta.Text != "" {
					if !s.emit(Event{Kind: EventText, Text: delta.Text}) {
						return
					}
				}
			case sdk.InputJSONDelta:
				if tb := toolBlocks[idx]; tb != nil && delta.PartialJSON != "" {
					tb.fragments = append(tb.fragments, delta.PartialJSON)
				}
			}
		case sdk.ContentBlockStopEvent:
			idx := int(ev.Index)
			if tb := toolBlocks[idx]; tb != nil {
				delete(toolBlocks, idx)
				input := tb.finalInput()
				if input != nil {
					if !s.emit(Event{Kind: EventToolCall, ToolCall: ToolCall{ID: tb.id, Name: tb.name, Input: input}}) {
						return
					}
				}
			}
		case sdk.MessageDeltaEvent:
			if ev.Delta.StopReason != "" {
				if !s.emit(Event{Kind: EventMessageStop, StopReason: string(ev.Delta.StopReason)}) {
					return
				}
			}
		}
	}
	if err := s.raw.Err(); err != nil {
		select {
		case s.errCh <- fmt.Errorf("inference: stream: %w", err):
		default:
		}
	}
}

func (s *Stream) emit(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.ctx.Done():
		return false
	}
}
