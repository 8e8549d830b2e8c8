package speculative

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Cooldown is the minimum gap between two fire() calls.
const Cooldown = 500 * time.Millisecond

// MinProcessingTime is the minimum ready_at - fired_at gap required for a
// claim to succeed (§4.2 rule 3).
const MinProcessingTime = 200 * time.Millisecond

const (
	minHitRateSampleSize  = 10
	minHitRateThreshold   = 0.30
	maxConsecutiveMisses  = 5
)

// State is one of the five speculative-slot states (spec.md §3, §4.2).
type State int

const (
	Idle State = iota
	Inflight
	Ready
	Claimed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Inflight:
		return "inflight"
	case Ready:
		return "ready"
	case Claimed:
		return "claimed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// CallFunc performs the speculative inference call; the dispatcher does not
// know or care what it returns, only whether it errored.
type CallFunc func(ctx context.Context) (any, error)

// Dispatcher is the process-wide, single-slot speculative state machine.
type Dispatcher struct {
	mu sync.Mutex

	state       State
	generation  int
	utteranceID int
	partial     string
	firedAt     time.Time
	readyAt     time.Time
	result      any
	lastFireAt  time.Time

	isSimple IsSimpleCommandFn

	disabled          bool
	attempts          int
	hits              int
	consecutiveMisses int
}

// New builds a Dispatcher. isSimple implements gate 1 of the similarity
// predicate (routing agreement); it is the voice loop's is_simple_command.
func New(isSimple IsSimpleCommandFn) *Dispatcher {
	return &Dispatcher{isSimple: isSimple}
}

// State returns the current state under lock.
func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Disabled reports whether runtime auto-disable has tripped.
func (d *Dispatcher) Disabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disabled
}

// Fire attempts to launch a speculative call against partial for
// utteranceID. It is rejected (returns false, call is never invoked) unless
// the dispatcher is enabled, Idle, partial has at least two whitespace
// tokens, and the cooldown has elapsed. On acceptance, call runs in a
// background goroutine; its result (or error) transitions the slot to Ready
// or Cancelled, guarded by a captured generation token so a late result
// from a since-cancelled fire is a no-op.
func (d *Dispatcher) Fire(ctx context.Context, utteranceID int, partial string, call CallFunc) bool {
	d.mu.Lock()
	if d.disabled || d.state != Idle {
		d.mu.Unlock()
		return false
	}
	if len(strings.Fields(partial)) < 2 {
		d.mu.Unlock()
		return false
	}
	if !d.lastFireAt.IsZero() && time.Since(d.lastFireAt) < Cooldown {
		d.mu.Unlock()
		return false
	}

	d.generation++
	myGen := d.generation
	d.state = Inflight
	d.utteranceID = utteranceID
	d.partial = partial
	d.firedAt = time.Now()
	d.lastFireAt = d.firedAt
	d.mu.Unlock()

	go func() {
		result, err := call(ctx)
		d.mu.Lock()
		defer d.mu.Unlock()
		if myGen != d.generation {
			return // stale; a cancel or new fire already moved on
		}
		if err != nil {
			d.state = Cancelled
			return
		}
		d.state = Ready
		d.readyAt = time.Now()
		d.result = result
	}()
	return true
}

// Cancel forces the slot to Cancelled and bumps the generation token so any
// in-flight callback becomes a no-op.
func (d *Dispatcher) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.generation++
	d.state = Cancelled
}

// Claim attempts to consume the Ready result for utteranceID, validating it
// against finalText via the similarity predicate. On success the slot moves
// to Claimed and the result is returned. If the slot is not Ready or holds a
// different utterance id, (nil, false) is returned and the state is left
// untouched; if the timing or similarity check fails, the slot moves to
// Cancelled and (nil, false) is returned. Each timing/similarity verdict
// counts toward the runtime auto-disable statistics.
func (d *Dispatcher) Claim(finalText string, utteranceID int) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != Ready || d.utteranceID != utteranceID {
		return nil, false
	}
	if d.readyAt.Sub(d.firedAt) < MinProcessingTime {
		d.state = Cancelled
		d.recordOutcomeLocked(false)
		return nil, false
	}
	if !Similar(d.partial, finalText, d.isSimple) {
		d.state = Cancelled
		d.recordOutcomeLocked(false)
		return nil, false
	}

	d.state = Claimed
	d.recordOutcomeLocked(true)
	return d.result, true
}

func (d *Dispatcher) recordOutcomeLocked(hit bool) {
	d.attempts++
	if hit {
		d.hits++
		d.consecutiveMisses = 0
	} else {
		d.consecutiveMisses++
	}

	if d.attempts >= minHitRateSampleSize && float64(d.hits)/float64(d.attempts) < minHitRateThreshold {
		d.disabled = true
	}
	if d.consecutiveMisses > maxConsecutiveMisses && d.hits == 0 {
		d.disabled = true
	}
}

// Reset returns the slot to Idle without affecting statistics or the
// disabled flag. Used once a new utterance begins and the previous slot's
// outcome has already been recorded (or discarded via Cancel).
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = Idle
	d.result = nil
}
