package voiceloop

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/axon-cua/agent/internal/speculative"
)

func TestClaimSpeculativeReturnsFalseWithoutDispatcher(t *testing.T) {
	l := &Loop{}
	_, ok := l.claimSpeculative("open settings", 1)
	assert.False(t, ok)
}

func TestClaimSpeculativeReturnsFalseWhenNeverFired(t *testing.T) {
	l := &Loop{Dispatcher: speculative.New(IsSimpleCommand)}
	_, ok := l.claimSpeculative("open settings", 1)
	assert.False(t, ok)
}

func TestPeekNextIDDoesNotCommitUntilCommitIDCalled(t *testing.T) {
	l := &Loop{}
	first := l.peekNextID()
	assert.Equal(t, 1, first)

	// Peeking again without committing returns the same candidate id
	// (spec.md §4.5 step 3: an empty transcript doesn't consume an id).
	second := l.peekNextID()
	assert.Equal(t, first, second)

	l.commitID(first)
	assert.Equal(t, first+1, l.peekNextID())
}
