// Package perf implements the Perf Tracker: a shared, mutex-guarded ring
// buffer of the 50 most recent per-utterance voice-to-first-action
// latencies (spec.md §2, §3, §5).
package perf

import (
	"sync"
	"time"
)

// RingSize is the bound on retained samples.
const RingSize = 50

// Outcome classifies how an utterance concluded.
type Outcome string

const (
	OutcomeAction   Outcome = "action"
	OutcomeNoAction Outcome = "no_action"
)

// Sample is one recorded outcome.
type Sample struct {
	UtteranceID int
	Outcome     Outcome
	Latency     time.Duration
}

// Tracker is the process-wide perf ring buffer.
type Tracker struct {
	mu      sync.Mutex
	samples []Sample
}

// NewTracker builds an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Guard tracks one utterance's voice-to-first-action latency and guarantees
// exactly one of EmitAction/EmitNoAction takes effect (invariant 1:
// "the PerfGuard emits exactly one outcome ... idempotence of its emit_*
// methods"). Later calls after the first are no-ops.
type Guard struct {
	tracker     *Tracker
	utteranceID int
	start       time.Time
	emitted     bool
}

// NewGuard starts timing utteranceID from now.
func (t *Tracker) NewGuard(utteranceID int) *Guard {
	return &Guard{tracker: t, utteranceID: utteranceID, start: time.Now()}
}

// EmitAction records the elapsed time as an "action" outcome. A no-op if
// this guard (or EmitNoAction) already emitted.
func (g *Guard) EmitAction() {
	g.emit(OutcomeAction)
}

// EmitNoAction records the elapsed time as a "no_action" outcome. A no-op
// if this guard already emitted.
func (g *Guard) EmitNoAction() {
	g.emit(OutcomeNoAction)
}

func (g *Guard) emit(outcome Outcome) {
	if g.emitted {
		return
	}
	g.emitted = true
	g.tracker.record(Sample{
		UtteranceID: g.utteranceID,
		Outcome:     outcome,
		Latency:     time.Since(g.start),
	})
}

func (t *Tracker) record(s Sample) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples = append(t.samples, s)
	if len(t.samples) > RingSize {
		t.samples = t.samples[len(t.samples)-RingSize:]
	}
}

// Samples returns a copy of the retained samples, oldest first.
func (t *Tracker) Samples() []Sample {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Sample, len(t.samples))
	copy(out, t.samples)
	return out
}
