// Package narration implements the Narration Queue (spec.md §4.1): a
// serialized FIFO TTS speaker with mute, interrupt, stale-skip, and preempt
// semantics, so that the action loop is never blocked on speech and spoken
// text is never accidentally fed back into the microphone.
//
// The processing loop is grounded on the teacher pack's speech dispatcher
// pattern (a notify channel waking a single drain goroutine that dequeues
// and plays one item at a time) generalized from a priority queue to a
// strict FIFO per spec.md's ordering requirement, and extended with the
// mute/interrupt/debounced-preempt semantics the spec requires.
package narration

import (
	"strings"
	"sync"
	"time"
)

// InterruptDebounce is the pause between interrupt() and the deferred
// enqueue in interrupt_and_enqueue, giving the audio graph time to quiesce.
const InterruptDebounce = 50 * time.Millisecond

// Logger is the narrowed logging contract this package depends on.
type Logger interface {
	Debug(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
}

type noOpLogger struct{}

func (noOpLogger) Debug(string, ...interface{}) {}
func (noOpLogger) Warn(string, ...interface{})  {}

// Backend is the swappable TTS playback backend. Speak starts playback of
// text asynchronously and must call onDone exactly once when playback ends
// (successfully, on error, or because Stop interrupted it). Stop halts
// whatever is currently playing immediately; Queue calls it at most once
// per in-flight utterance.
type Backend interface {
	Speak(text string, onDone func()) error
	Stop()
}

type entry struct {
	text string
	wait chan struct{} // closed when this entry finishes; nil for fire-and-forget
}

// Queue is the process-wide narration queue. Exactly one utterance speaks
// at a time (invariant a); a muted queue has length zero and is not
// speaking (invariant b); enqueue_and_wait wakes exactly one waiter
// (invariant c).
type Queue struct {
	mu      sync.Mutex
	backend Backend
	log     Logger

	pending []entry
	speaking bool
	muted    bool

	// debouncing tracks whether we're inside the gap between interrupt()
	// and a scheduled interrupt_and_enqueue delivery; is_active must stay
	// true throughout so callers don't race to reopen the microphone
	// (spec.md §9's narration preempt debounce note).
	debouncing bool
	debounceTimer *time.Timer
	generation    int
}

// New builds a Queue around backend. A nil logger installs a no-op logger.
func New(backend Backend, log Logger) *Queue {
	if log == nil {
		log = noOpLogger{}
	}
	return &Queue{backend: backend, log: log}
}

// Enqueue appends text to the FIFO, starting playback immediately if idle.
// Non-blocking. Silently drops while muted or when text is empty/whitespace
// (spec.md §3: "empty/whitespace entries are rejected at enqueue").
func (q *Queue) Enqueue(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	q.mu.Lock()
	if q.muted {
		q.mu.Unlock()
		q.log.Debug("narration: dropped while muted", text)
		return
	}
	q.pending = append(q.pending, entry{text: text})
	q.mu.Unlock()
	q.pump()
}

// EnqueueAndWait appends text and blocks the caller until exactly that
// utterance has finished playing. Returns immediately (without speaking)
// if muted.
func (q *Queue) EnqueueAndWait(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	q.mu.Lock()
	if q.muted {
		q.mu.Unlock()
		return
	}
	wait := make(chan struct{})
	q.pending = append(q.pending, entry{text: text, wait: wait})
	q.mu.Unlock()
	q.pump()
	<-wait
}

// Interrupt stops the current utterance immediately and clears the queue.
// Returns whether anything was playing or queued.
func (q *Queue) Interrupt() bool {
	q.mu.Lock()
	wasActive := q.speaking || len(q.pending) > 0
	q.drainWaitersLocked()
	q.pending = nil
	wasSpeaking := q.speaking
	q.mu.Unlock()

	if wasSpeaking {
		q.backend.Stop()
	}
	return wasActive
}

// InterruptAndEnqueue interrupts and schedules text after InterruptDebounce,
// so that is_active stays true across the gap (spec.md §9).
func (q *Queue) InterruptAndEnqueue(text string) {
	q.Interrupt()

	q.mu.Lock()
	q.debouncing = true
	q.generation++
	gen := q.generation
	if q.debounceTimer != nil {
		q.debounceTimer.Stop()
	}
	q.debounceTimer = time.AfterFunc(InterruptDebounce, func() {
		q.mu.Lock()
		if gen != q.generation {
			q.mu.Unlock()
			return
		}
		q.debouncing = false
		if !q.muted && strings.TrimSpace(text) != "" {
			q.pending = append(q.pending, entry{text: text})
		}
		q.mu.Unlock()
		q.pump()
	})
	q.mu.Unlock()
}

// Mute stops current playback, clears the queue, and rejects subsequent
// enqueues until Unmute.
func (q *Queue) Mute() {
	q.mu.Lock()
	q.muted = true
	q.drainWaitersLocked()
	q.pending = nil
	wasSpeaking := q.speaking
	q.debouncing = false
	q.generation++ // invalidate any pending debounced enqueue
	q.mu.Unlock()

	if wasSpeaking {
		q.backend.Stop()
	}
}

// Unmute re-enables enqueues.
func (q *Queue) Unmute() {
	q.mu.Lock()
	q.muted = false
	q.mu.Unlock()
}

// SkipStale drops queued entries but lets the in-progress utterance finish.
func (q *Queue) SkipStale() {
	q.mu.Lock()
	q.drainWaitersLocked()
	q.pending = nil
	q.mu.Unlock()
}

// IsActive is true iff currently speaking, the queue is non-empty, or the
// queue is inside the interrupt_and_enqueue debounce window.
func (q *Queue) IsActive() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.speaking || len(q.pending) > 0 || q.debouncing
}

// drainWaitersLocked releases any EnqueueAndWait callers still queued,
// since their utterance will never play. Must be called with q.mu held.
func (q *Queue) drainWaitersLocked() {
	for _, e := range q.pending {
		if e.wait != nil {
			close(e.wait)
		}
	}
}

// pump starts playback of the head entry if nothing is currently speaking.
func (q *Queue) pump() {
	q.mu.Lock()
	if q.speaking || len(q.pending) == 0 {
		q.mu.Unlock()
		return
	}
	head := q.pending[0]
	q.pending = q.pending[1:]
	q.speaking = true
	q.mu.Unlock()

	err := q.backend.Speak(head.text, func() {
		q.onPlaybackDone(head)
	})
	if err != nil {
		q.log.Warn("narration: speak failed", err)
		q.onPlaybackDone(head)
	}
}

func (q *Queue) onPlaybackDone(head entry) {
	q.mu.Lock()
	q.speaking = false
	q.mu.Unlock()

	if head.wait != nil {
		close(head.wait)
	}
	q.pump()
}
