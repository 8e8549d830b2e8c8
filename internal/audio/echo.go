package audio

import (
	"bytes"
	"math"
	"sync"
	"time"
)

// echoSilenceWindow is how long after the last playback write the echo
// suppressor still treats captured audio as a candidate echo.
const echoSilenceWindow = 1200 * time.Millisecond

// echoMaxBufBytes bounds the rolling played-audio reference buffer (~2s at
// 44.1kHz, 16-bit mono).
const echoMaxBufBytes = 176400

// echoThreshold is the normalized-correlation cutoff above which captured
// audio is classified as the device's own played-back narration rather
// than the user's voice.
const echoThreshold = 0.55

// echoSuppressor mutes a whole captured frame when it correlates with
// recently played-back audio, so narration played through the same
// duplex device doesn't get fed back into the STT pipeline as if the user
// had spoken. Adapted from pkg/orchestrator/echo_suppression.go's
// correlation-based detector, generalized from the teacher's single
// Realtime/PostProcess pair (tied to its own stream loop) down to the two
// calls Device's onSamples callback needs: record what was just played,
// then clean what was just captured.
type echoSuppressor struct {
	mu          sync.Mutex
	played      bytes.Buffer
	lastPlayed  time.Time
}

func newEchoSuppressor() *echoSuppressor {
	return &echoSuppressor{}
}

// recordPlayed appends pcm (the bytes just handed to the output device) to
// the reference buffer.
func (es *echoSuppressor) recordPlayed(pcm []byte) {
	if len(pcm) == 0 {
		return
	}
	es.mu.Lock()
	defer es.mu.Unlock()
	es.played.Write(pcm)
	es.lastPlayed = time.Now()
	if es.played.Len() > echoMaxBufBytes {
		data := es.played.Bytes()
		trimmed := data[len(data)-echoMaxBufBytes:]
		es.played.Reset()
		es.played.Write(trimmed)
	}
}

// clean mutes input if it correlates highly with recently played audio,
// returning a cleaned copy; otherwise returns input unmodified (no copy).
func (es *echoSuppressor) clean(input []byte) []byte {
	if len(input) == 0 {
		return input
	}
	es.mu.Lock()
	if time.Since(es.lastPlayed) > echoSilenceWindow || es.played.Len() == 0 {
		es.mu.Unlock()
		return input
	}
	ref := make([]byte, es.played.Len())
	copy(ref, es.played.Bytes())
	es.mu.Unlock()

	inSamples := pcmToFloat(input)
	refSamples := pcmToFloat(ref)
	if len(inSamples) == 0 || len(refSamples) == 0 {
		return input
	}

	compareLen := len(inSamples)
	if compareLen > len(refSamples) {
		compareLen = len(refSamples)
	}
	refStart := len(refSamples) - compareLen
	corr := correlate(inSamples, refSamples[refStart:])
	if corr < echoThreshold {
		return input
	}

	muted := make([]byte, len(input))
	return muted
}

func pcmToFloat(data []byte) []float64 {
	samples := make([]float64, len(data)/2)
	for i := range samples {
		s := int16(data[2*i]) | int16(data[2*i+1])<<8
		samples[i] = float64(s) / 32768.0
	}
	return samples
}

func correlate(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var energyA, energyB, dot float64
	for i := 0; i < n; i++ {
		energyA += a[i] * a[i]
		energyB += b[i] * b[i]
		dot += a[i] * b[i]
	}
	if energyA == 0 || energyB == 0 {
		return 0
	}
	c := dot / math.Sqrt(energyA*energyB)
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
