package voiceloop

import (
	"context"
	"sync"
	"time"

	"github.com/axon-cua/agent/internal/pipeline"
)

// TaskCompletionPoll is the interval the voice loop polls a TaskCompletionBox
// at, without opening the microphone, so narration plays uninterrupted
// (spec.md §4.5).
const TaskCompletionPoll = 200 * time.Millisecond

// PostCompletionHold bounds how long the voice loop waits, after a task
// completes, for the completion summary to finish speaking before the next
// listen() call mutes the queue.
const PostCompletionHold = 5 * time.Second

// TaskCompletionBox is a single-use result box an action task writes to
// exactly once when it finishes, and the voice loop polls for.
type TaskCompletionBox struct {
	mu     sync.Mutex
	done   bool
	result pipeline.Result
}

// NewTaskCompletionBox builds an empty box.
func NewTaskCompletionBox() *TaskCompletionBox {
	return &TaskCompletionBox{}
}

// Complete records the task's terminal Result. A no-op on a second call.
func (b *TaskCompletionBox) Complete(result pipeline.Result) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return
	}
	b.done = true
	b.result = result
}

// Poll reports whether the task has completed and, if so, its Result.
func (b *TaskCompletionBox) Poll() (pipeline.Result, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.result, b.done
}

// Wait blocks, polling at TaskCompletionPoll, until the box completes or ctx
// is cancelled.
func (b *TaskCompletionBox) Wait(ctx context.Context) (pipeline.Result, error) {
	ticker := time.NewTicker(TaskCompletionPoll)
	defer ticker.Stop()
	for {
		if result, done := b.Poll(); done {
			return result, nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return pipeline.Result{}, ctx.Err()
		}
	}
}

// IsActiveFunc reports whether the narration queue is still speaking or has
// queued entries, used to decide when PostCompletionHold can end early.
type IsActiveFunc func() bool

// HoldForNarration waits up to PostCompletionHold for isActive to report
// false (the narration queue has drained), so a completion summary finishes
// speaking before the next listen() call mutes the queue.
func HoldForNarration(ctx context.Context, isActive IsActiveFunc) {
	deadline := time.NewTimer(PostCompletionHold)
	defer deadline.Stop()
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if !isActive() {
			return
		}
		select {
		case <-ticker.C:
		case <-deadline.C:
			return
		case <-ctx.Done():
			return
		}
	}
}
