// Package voiceloop implements the voice loop and utterance lifecycle
// (spec.md §4.5): one Utterance at a time flows from microphone open
// through routing (simple/complex path, speculative claim, clarification
// bridge, special tokens) to a terminal action-task Result, narrated back
// to the user.
//
// The session-object shape (an exported-field struct wired up once at
// startup, methods operating on shared collaborators under their own
// internal locks) follows pkg/orchestrator/conversation.go's style; the
// wait-for-done polling loop is grounded on the same package's managed
// stream event loop.
package voiceloop

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/axon-cua/agent/internal/history"
	"github.com/axon-cua/agent/internal/inference"
	"github.com/axon-cua/agent/internal/logging"
	"github.com/axon-cua/agent/internal/memory"
	"github.com/axon-cua/agent/internal/narration"
	"github.com/axon-cua/agent/internal/perf"
	"github.com/axon-cua/agent/internal/pipeline"
	"github.com/axon-cua/agent/internal/screen"
	"github.com/axon-cua/agent/internal/speculative"
	"github.com/axon-cua/agent/internal/stt"
)

// MuteSettle is how long the voice loop waits after muting the narration
// queue before starting to listen, per spec.md §4.5 step 1.
const MuteSettle = 300 * time.Millisecond

// Loop owns one Utterance at a time and wires together every shared
// collaborator the orchestration core depends on (spec.md §5's ownership
// table).
type Loop struct {
	STT         stt.Provider
	Dispatcher  *speculative.Dispatcher
	Narration   *narration.Queue
	Executor    *pipeline.Executor
	Planner     *pipeline.Planner
	Interpreter *Interpreter
	Bridge      *ClarificationBridge
	SessionCtx  *SessionContext
	Memory      *memory.Store
	Perf        *perf.Tracker
	Screen      screen.Source
	Log         logging.Logger

	MaxModelWidth int

	mu          sync.Mutex
	nextID      int
	currentTask *runningTask
}

type runningTask struct {
	cancel context.CancelFunc
	box    *TaskCompletionBox
}

// Run drives the voice loop until ctx is cancelled or the user says a quit
// token.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.awaitTaskOrClarification(ctx)

		quit, err := l.runUtterance(ctx)
		if err != nil && l.Log != nil {
			l.Log.Warn("voiceloop: utterance failed", "error", err)
		}
		if quit {
			return nil
		}
	}
}

// awaitTaskOrClarification implements the wait-for-done polling: while a
// task is running, the loop polls its TaskCompletionBox at
// TaskCompletionPoll intervals without opening the microphone, unless the
// clarification bridge goes pending, in which case it returns immediately
// so the next listen() call can collect the answer.
func (l *Loop) awaitTaskOrClarification(ctx context.Context) {
	l.mu.Lock()
	task := l.currentTask
	l.mu.Unlock()
	if task == nil {
		return
	}

	ticker := time.NewTicker(TaskCompletionPoll)
	defer ticker.Stop()
	for {
		if l.Bridge.IsPending() {
			return
		}
		if _, done := task.box.Poll(); done {
			HoldForNarration(ctx, l.Narration.IsActive)
			l.mu.Lock()
			l.currentTask = nil
			l.mu.Unlock()
			return
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// runUtterance runs one full listen-then-route cycle. It returns
// (true, nil) if the user asked to quit.
func (l *Loop) runUtterance(ctx context.Context) (bool, error) {
	l.Narration.Mute()
	select {
	case <-time.After(MuteSettle):
	case <-ctx.Done():
		return false, ctx.Err()
	}

	workingID := l.peekNextID()

	if l.Dispatcher != nil {
		l.Dispatcher.Cancel()
		l.Dispatcher.Reset()
	}

	var shotMu sync.Mutex
	var screenshot []byte

	onStablePartial := func(partial string) {
		if frame, err := l.Screen.Capture(ctx, l.effectiveMaxModelWidth()); err == nil {
			shotMu.Lock()
			screenshot = frame.Image
			shotMu.Unlock()
		}
		l.maybeSpeculate(ctx, workingID, partial, &shotMu, &screenshot)
	}

	raw, err := l.STT.Listen(ctx, onStablePartial)
	l.Narration.Unmute()
	if err != nil {
		return false, err
	}

	if strings.TrimSpace(raw) == "" {
		if l.Dispatcher != nil {
			l.Dispatcher.Cancel()
		}
		return false, nil
	}
	l.commitID(workingID)

	cleaned := FixEmailWhitespace(raw)
	l.SessionCtx.AddUser(cleaned)

	switch ClassifySpecialToken(cleaned) {
	case SpecialQuit:
		l.cancelCurrentTask()
		l.Narration.EnqueueAndWait("Goodbye.")
		return true, nil
	case SpecialStop:
		l.cancelCurrentTask()
		l.Narration.Interrupt()
		l.Narration.Enqueue("Cancelled.")
		return false, nil
	}

	if l.Bridge.IsPending() {
		l.Bridge.ProvideAnswer(cleaned)
		return false, nil
	}

	l.cancelCurrentTask()

	shotMu.Lock()
	shot := screenshot
	shotMu.Unlock()
	if shot == nil {
		if frame, err := l.Screen.Capture(ctx, l.effectiveMaxModelWidth()); err == nil {
			shot = frame.Image
		}
	}

	l.launchTask(ctx, workingID, cleaned, shot)
	return false, nil
}

func (l *Loop) effectiveMaxModelWidth() int {
	if l.MaxModelWidth > 0 {
		return l.MaxModelWidth
	}
	return screen.DefaultMaxModelWidth
}

// peekNextID returns the id this utterance would get without committing to
// it, so speculative fire/claim can be matched even if the transcript turns
// out empty (spec.md §4.5 step 3: an empty transcript does not consume an
// id).
func (l *Loop) peekNextID() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextID + 1
}

func (l *Loop) commitID(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id > l.nextID {
		l.nextID = id
	}
}

func (l *Loop) cancelCurrentTask() {
	l.mu.Lock()
	task := l.currentTask
	l.currentTask = nil
	l.mu.Unlock()
	if task != nil {
		task.cancel()
	}
	l.Bridge.Cancel()
}

// maybeSpeculate fires the speculative dispatcher against partial if it is
// enabled and the partial looks like a simple command (spec.md §4.5 step
// 1, §4.2 rules 1-2).
func (l *Loop) maybeSpeculate(ctx context.Context, utteranceID int, partial string, shotMu *sync.Mutex, screenshot *[]byte) {
	if l.Dispatcher == nil || l.Dispatcher.Disabled() {
		return
	}
	if !IsSimpleCommand(partial) {
		return
	}
	l.Dispatcher.Fire(ctx, utteranceID, partial, func(ctx context.Context) (any, error) {
		shotMu.Lock()
		shot := *screenshot
		shotMu.Unlock()
		return l.Executor.SpeculativeRound(ctx, partial, shot)
	})
}

// launchTask starts the action task for this utterance's routed request: a
// speculative preemption, the simple direct-execution path, or the complex
// interpreter path, escalating to the planner as needed. It runs in its own
// goroutine so the voice loop can keep polling for completion or a
// clarification without blocking on it.
func (l *Loop) launchTask(parent context.Context, utteranceID int, transcript string, screenshot []byte) {
	taskCtx, cancel := context.WithCancel(parent)
	box := NewTaskCompletionBox()
	l.mu.Lock()
	l.currentTask = &runningTask{cancel: cancel, box: box}
	l.mu.Unlock()

	guard := l.Perf.NewGuard(utteranceID)

	go func() {
		defer cancel()
		result := l.route(taskCtx, utteranceID, transcript, screenshot)
		if result.Status == pipeline.StatusDone && result.Summary != "" {
			guard.EmitAction()
		} else {
			guard.EmitNoAction()
		}
		if result.Summary != "" {
			l.SessionCtx.AddAgent(result.Summary)
		}
		box.Complete(result)
	}()
}

// route decides between the complex interpreter path and the simple path
// (with speculative preemption), per spec.md §4.5.
func (l *Loop) route(ctx context.Context, utteranceID int, transcript string, screenshot []byte) pipeline.Result {
	if !IsSimpleCommand(transcript) && l.Interpreter != nil {
		interpretation, err := l.Interpreter.Interpret(ctx, transcript, l.SessionCtx.Lines(), l.Memory.All())
		if err == nil {
			if result, handled := l.runComplex(ctx, transcript, screenshot, interpretation); handled {
				return result
			}
		}
		// Interpreter failed or produced nothing actionable: fall back to
		// the simple path (spec.md §4.5: "If the interpreter call fails,
		// fall back to the simple path").
	}
	return l.runSimple(ctx, utteranceID, transcript, screenshot)
}

func (l *Loop) runComplex(ctx context.Context, transcript string, screenshot []byte, interp Interpretation) (pipeline.Result, bool) {
	switch interp.Type {
	case InterpretInterrupt:
		l.Narration.Enqueue("Okay.")
		return pipeline.Result{Status: pipeline.StatusDone, Summary: "Acknowledged."}, true

	case InterpretChat:
		l.Narration.Enqueue(interp.Response)
		return pipeline.Result{Status: pipeline.StatusDone, Summary: interp.Response}, true

	case InterpretMemory:
		if interp.Remember != "" {
			_ = l.Memory.Add(interp.Remember)
		}
		l.Narration.Enqueue(interp.Response)
		return pipeline.Result{Status: pipeline.StatusDone, Summary: interp.Response}, true

	case InterpretCommand, InterpretFollowup:
		directive := interp.Directive
		if directive == "" {
			directive = transcript
		}
		messages := []history.Message{history.NewUserImage(directive, screenshot)}
		result, _ := l.Executor.RunDirect(ctx, messages, pipeline.MaxDirectIterations)
		return l.resolveOutcome(ctx, directive, screenshot, result), true
	}
	return pipeline.Result{}, false
}

func (l *Loop) runSimple(ctx context.Context, utteranceID int, transcript string, screenshot []byte) pipeline.Result {
	l.Narration.Enqueue(FillerPhrase(rand.Int()))

	if completion, ok := l.claimSpeculative(transcript, utteranceID); ok {
		return l.runClaimed(ctx, transcript, screenshot, completion)
	}
	if l.Dispatcher != nil {
		l.Dispatcher.Cancel()
	}

	messages := []history.Message{history.NewUserImage(transcript, screenshot)}
	result, _ := l.Executor.RunDirect(ctx, messages, pipeline.MaxDirectIterations)
	return l.resolveOutcome(ctx, transcript, screenshot, result)
}

// claimSpeculative attempts to claim the dispatcher's Ready result against
// the final transcript. A claim with zero tool calls is treated as a miss
// by this caller, not the dispatcher (spec.md §4.2 rule 4).
func (l *Loop) claimSpeculative(transcript string, utteranceID int) (inference.Completion, bool) {
	if l.Dispatcher == nil {
		return inference.Completion{}, false
	}
	raw, ok := l.Dispatcher.Claim(transcript, utteranceID)
	if !ok {
		return inference.Completion{}, false
	}
	completion, ok := raw.(inference.Completion)
	if !ok || len(completion.ToolCalls) == 0 {
		return inference.Completion{}, false
	}
	return completion, true
}

func (l *Loop) runClaimed(ctx context.Context, transcript string, screenshot []byte, completion inference.Completion) pipeline.Result {
	if narrated := StripRoutingPrefix(completion.Text); narrated != "" {
		l.Narration.InterruptAndEnqueue(narrated)
	}
	result, _ := l.Executor.ContinueFromClaimed(ctx, transcript, screenshot, completion, pipeline.MaxDirectIterations)
	return l.resolveOutcome(ctx, transcript, screenshot, result)
}

// resolveOutcome handles a direct-execution Result that came back clarify
// or escalate: clarify loops a clarification round through the bridge and
// re-runs the direct-execution loop with the answer folded in; escalate
// falls through to the planner pipeline.
func (l *Loop) resolveOutcome(ctx context.Context, originalRequest string, screenshot []byte, result pipeline.Result) pipeline.Result {
	switch result.Status {
	case pipeline.StatusClarify:
		answer, ok := l.ask(ctx, result.Question)
		if !ok {
			return pipeline.Result{Status: pipeline.StatusDone, Summary: "Cancelled."}
		}
		messages := []history.Message{history.NewUserImage(originalRequest+" "+answer, screenshot)}
		next, _ := l.Executor.RunDirect(ctx, messages, pipeline.MaxDirectIterations)
		return l.resolveOutcome(ctx, originalRequest, screenshot, next)

	case pipeline.StatusEscalate:
		if l.Planner == nil {
			return pipeline.Result{Status: pipeline.StatusDone, Summary: "I wasn't able to finish that."}
		}
		planResult, err := l.Planner.RunPlan(ctx, originalRequest, screenshot, l.ask)
		if err != nil {
			return pipeline.Result{Status: pipeline.StatusDone, Summary: "I wasn't able to finish that."}
		}
		return planResult

	default:
		if result.Summary != "" {
			result.Summary = StripRoutingPrefix(result.Summary)
			l.Narration.Enqueue(result.Summary)
		}
		return result
	}
}

// ask satisfies pipeline.AskFunc via the clarification bridge: mark a
// pending question, speak it, and suspend for the answer. Cancelling ctx
// cancels the bridge so the suspended task doesn't leak.
func (l *Loop) ask(ctx context.Context, question string) (string, bool) {
	l.Bridge.MarkPending()
	l.Narration.Enqueue(question)

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			l.Bridge.Cancel()
		case <-done:
		}
	}()
	answer, ok := l.Bridge.WaitForAnswer()
	close(done)
	return answer, ok
}
