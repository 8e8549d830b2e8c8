// Package pipeline implements the two-model pipeline (spec.md §4.3): a
// fast tool-calling executor driving a direct-execution loop, and a
// JSON-only planner that escalation falls back to.
package pipeline

import (
	"time"

	"github.com/axon-cua/agent/internal/action"
	"github.com/axon-cua/agent/internal/inference"
	"github.com/axon-cua/agent/internal/logging"
	"github.com/axon-cua/agent/internal/narration"
	"github.com/axon-cua/agent/internal/screen"
)

// Status is the terminal state of one direct-execution loop or one whole
// turn of the planner pipeline.
type Status string

const (
	StatusDone     Status = "done"
	StatusClarify  Status = "clarify"
	StatusEscalate Status = "escalate"
)

// Result is what a direct-execution loop or planner turn reports back to
// the voice loop.
type Result struct {
	Status     Status
	Summary    string
	Question   string
	Iterations int
}

// MaxDirectIterations bounds the simple-path direct-execution loop run
// standalone (outside a planner block). spec.md names the cap as a
// parameter without a literal value; 8 mirrors the conservative rounding
// used for max_iterations_per_block (10) while staying lower, since this
// path escalates to the planner rather than being the planner's own
// per-block budget.
const MaxDirectIterations = 8

const (
	// MaxIterationsPerBlock bounds each planner work block's own
	// direct-execution loop.
	MaxIterationsPerBlock = 10

	// MaxReplans caps planner replans per user turn.
	MaxReplans = 2

	// PostActionSettle is the pause after each dispatched action.
	PostActionSettle = 200 * time.Millisecond

	// BatchSettle is the pause after a whole batch of actions, before the
	// follow-up screenshot.
	BatchSettle = 300 * time.Millisecond

	// GuideWaitDuration is how long the executor waits after showing a
	// GUIDE highlight before capturing the next screenshot.
	GuideWaitDuration = 1500 * time.Millisecond
)

// GuidedFollowupNote is appended as a system note to the message history
// after a GUIDE round, per spec.md §4.3.1 step 3.
const GuidedFollowupNote = "The user was guided. Here is the current screen. Continue helping."

// Overlay shows the executor's GUIDE highlight. The concrete on-screen
// widget is an external collaborator (spec.md's non-goals).
type Overlay interface {
	Highlight(p action.Point, instruction string)
}

// Executor drives the direct-execution loop (spec.md §4.3.1) for one
// round of user request or planner work block.
type Executor struct {
	Infer         *inference.Client
	Actions       *action.ScaledSink
	Screen        screen.Source
	Narration     *narration.Queue
	Overlay       Overlay
	Log           logging.Logger
	MaxModelWidth int
	SystemPrompt  string
	Model         string
}
