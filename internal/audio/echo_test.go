package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func toneFrame(n int, amplitude int16) []byte {
	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		v := amplitude
		if i%2 == 1 {
			v = -amplitude
		}
		out[2*i] = byte(v)
		out[2*i+1] = byte(v >> 8)
	}
	return out
}

func TestCleanPassesThroughWhenNothingRecentlyPlayed(t *testing.T) {
	es := newEchoSuppressor()
	captured := toneFrame(64, 8000)

	out := es.clean(captured)

	assert.Equal(t, captured, out)
}

func TestCleanPassesThroughAfterSilenceWindowElapses(t *testing.T) {
	es := newEchoSuppressor()
	played := toneFrame(64, 8000)
	es.recordPlayed(played)
	es.lastPlayed = time.Now().Add(-2 * echoSilenceWindow)

	out := es.clean(played)

	assert.Equal(t, played, out)
}

func TestCleanMutesFrameCorrelatedWithRecentPlayback(t *testing.T) {
	es := newEchoSuppressor()
	played := toneFrame(64, 8000)
	es.recordPlayed(played)

	out := es.clean(played)

	assert.Equal(t, make([]byte, len(played)), out)
}

func TestCleanLeavesUncorrelatedCaptureAlone(t *testing.T) {
	es := newEchoSuppressor()
	es.recordPlayed(toneFrame(64, 8000))

	silence := make([]byte, 64*2)
	out := es.clean(silence)

	assert.Equal(t, silence, out)
}

func TestRecordPlayedBoundsBufferSize(t *testing.T) {
	es := newEchoSuppressor()
	for i := 0; i < 10; i++ {
		es.recordPlayed(make([]byte, echoMaxBufBytes))
	}

	assert.LessOrEqual(t, es.played.Len(), echoMaxBufBytes)
}

func TestCorrelateIdenticalSignalsIsOne(t *testing.T) {
	a := []float64{0.5, -0.5, 0.5, -0.5}

	assert.InDelta(t, 1.0, correlate(a, a), 1e-9)
}

func TestCorrelateSilenceIsZero(t *testing.T) {
	a := make([]float64, 8)
	b := []float64{0.5, -0.5, 0.5, -0.5, 0.5, -0.5, 0.5, -0.5}

	assert.Equal(t, 0.0, correlate(a, b))
}
