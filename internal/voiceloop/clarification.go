package voiceloop

import "sync"

// ClarificationBridge is the single-slot rendezvous between an in-flight
// action task that needs a question answered and the voice loop that
// collects the answer through the same microphone (spec.md §4.5).
type ClarificationBridge struct {
	mu      sync.Mutex
	pending bool
	answer  chan string // nil channel means no answer was obtained
}

// NewClarificationBridge builds an idle bridge.
func NewClarificationBridge() *ClarificationBridge {
	return &ClarificationBridge{}
}

// MarkPending opens a new continuation slot before the task asks its
// question. A second MarkPending while one is already pending replaces it,
// waking any existing waiter with no answer.
func (b *ClarificationBridge) MarkPending() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending && b.answer != nil {
		close(b.answer)
	}
	b.pending = true
	b.answer = make(chan string, 1)
}

// IsPending reports whether a question is currently awaiting an answer.
func (b *ClarificationBridge) IsPending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

// WaitForAnswer suspends until ProvideAnswer or Cancel resolves the pending
// slot. Returns the answer text and whether one was actually provided.
func (b *ClarificationBridge) WaitForAnswer() (string, bool) {
	b.mu.Lock()
	ch := b.answer
	b.mu.Unlock()
	if ch == nil {
		return "", false
	}
	text, ok := <-ch
	return text, ok
}

// ProvideAnswer feeds text to the waiting task and closes the slot. A no-op
// if nothing is pending.
func (b *ClarificationBridge) ProvideAnswer(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.pending {
		return
	}
	b.answer <- text
	close(b.answer)
	b.pending = false
	b.answer = nil
}

// Cancel wakes the waiting task with no answer and closes the slot. A no-op
// if nothing is pending.
func (b *ClarificationBridge) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.pending {
		return
	}
	close(b.answer)
	b.pending = false
	b.answer = nil
}
