package speculative

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alwaysSimple(string) bool { return true }

func waitForState(t *testing.T, d *Dispatcher, s State) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if d.State() == s {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("dispatcher never reached state %s, stuck at %s", s, d.State())
}

func TestFireRejectsSingleWordPartial(t *testing.T) {
	d := New(alwaysSimple)
	ok := d.Fire(context.Background(), 1, "open", func(ctx context.Context) (any, error) { return nil, nil })
	assert.False(t, ok)
	assert.Equal(t, Idle, d.State())
}

func TestFireThenClaimSucceedsAfterMinProcessingTime(t *testing.T) {
	d := New(alwaysSimple)
	ok := d.Fire(context.Background(), 1, "open chrome", func(ctx context.Context) (any, error) {
		time.Sleep(MinProcessingTime + 10*time.Millisecond)
		return "tool-calls", nil
	})
	require.True(t, ok)
	waitForState(t, d, Ready)

	result, claimed := d.Claim("open chrome", 1)
	assert.True(t, claimed)
	assert.Equal(t, "tool-calls", result)
	assert.Equal(t, Claimed, d.State())
}

func TestClaimFailsOnUtteranceMismatch(t *testing.T) {
	d := New(alwaysSimple)
	d.Fire(context.Background(), 1, "open chrome", func(ctx context.Context) (any, error) {
		time.Sleep(MinProcessingTime + 10*time.Millisecond)
		return "x", nil
	})
	waitForState(t, d, Ready)

	_, claimed := d.Claim("open chrome", 2)
	assert.False(t, claimed)
	assert.Equal(t, Ready, d.State()) // mismatched utterance id doesn't touch state
}

func TestCooldownRejectsRapidRefire(t *testing.T) {
	d := New(alwaysSimple)
	d.Fire(context.Background(), 1, "open chrome", func(ctx context.Context) (any, error) { return "x", nil })
	waitForState(t, d, Ready)
	d.Reset()
	ok := d.Fire(context.Background(), 2, "open settings", func(ctx context.Context) (any, error) { return "y", nil })
	assert.False(t, ok, "fire within cooldown window should be rejected")
}

func TestCancelInvalidatesInflightResult(t *testing.T) {
	d := New(alwaysSimple)
	started := make(chan struct{})
	d.Fire(context.Background(), 1, "open chrome", func(ctx context.Context) (any, error) {
		close(started)
		time.Sleep(50 * time.Millisecond)
		return "late result", nil
	})
	<-started
	d.Cancel()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, Cancelled, d.State(), "stale callback must not resurrect the slot")
}

func TestSimilarityPredicateSpeculativeMismatchScenario(t *testing.T) {
	// Scenario 6 from spec.md §8: partial "open chrome", final "open the
	// settings" — verb gate passes but tier B prefix fails.
	assert.False(t, Similar("open chrome", "open the settings", alwaysSimple))
}

func TestRuntimeAutoDisableOnLowHitRate(t *testing.T) {
	d := New(alwaysSimple)
	for i := 0; i < 10; i++ {
		d.Reset()
		d.Fire(context.Background(), i, "open chrome", func(ctx context.Context) (any, error) {
			time.Sleep(MinProcessingTime + time.Millisecond)
			return "x", nil
		})
		waitForState(t, d, Ready)
		final := "completely different final text here"
		if i == 0 {
			// One hit keeps the "> 5 consecutive misses with 0 hits" rule
			// from tripping first, so the hit-rate rule is what disables it.
			final = "open chrome"
		}
		d.Claim(final, i)
		time.Sleep(Cooldown)
	}
	assert.True(t, d.Disabled())
}
