package voiceloop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axon-cua/agent/internal/pipeline"
)

func TestTaskCompletionBoxWaitReturnsOnComplete(t *testing.T) {
	box := NewTaskCompletionBox()
	go func() {
		time.Sleep(10 * time.Millisecond)
		box.Complete(pipeline.Result{Status: pipeline.StatusDone, Summary: "opened the browser"})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	result, err := box.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "opened the browser", result.Summary)
}

func TestTaskCompletionBoxCompleteIsIdempotent(t *testing.T) {
	box := NewTaskCompletionBox()
	box.Complete(pipeline.Result{Status: pipeline.StatusDone, Summary: "first"})
	box.Complete(pipeline.Result{Status: pipeline.StatusEscalate, Summary: "second"})

	result, done := box.Poll()
	assert.True(t, done)
	assert.Equal(t, "first", result.Summary)
}

func TestTaskCompletionBoxWaitRespectsContextCancellation(t *testing.T) {
	box := NewTaskCompletionBox()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := box.Wait(ctx)
	assert.Error(t, err)
}

func TestHoldForNarrationReturnsOnceInactive(t *testing.T) {
	var active atomic.Bool
	active.Store(true)
	go func() {
		time.Sleep(20 * time.Millisecond)
		active.Store(false)
	}()

	start := time.Now()
	HoldForNarration(context.Background(), active.Load)
	assert.Less(t, time.Since(start), PostCompletionHold)
}
