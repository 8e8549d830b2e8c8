// Package stt implements the two interchangeable speech-to-text backends
// described in spec.md §4.6: a cloud recognizer backed by a streaming
// transcription session, and an on-device recognizer backed by sherpa-onnx.
// Both satisfy the same three-method capability.
package stt

import (
	"context"
	"time"
)

// These are vars, not consts, so tests can shrink them rather than
// burning real wall-clock time on the production deadlines.
var (
	// PartialStabilityWindow is how long a partial transcript must stay
	// unchanged before on_stable_partial fires, shared by both backends.
	PartialStabilityWindow = 500 * time.Millisecond

	// NoSpeechDeadline aborts Listen if no speech is ever detected.
	NoSpeechDeadline = 60 * time.Second

	// CloudSilenceTimeout ends listening after this much silence on the
	// cloud backend.
	CloudSilenceTimeout = 1200 * time.Millisecond

	// OnDeviceSilenceWindow ends listening once measured buffer energy
	// stays below OnDeviceEnergyFloor for at least this long.
	OnDeviceSilenceWindow = 350 * time.Millisecond
)

// OnDeviceEnergyFloor is the RMS energy threshold below which audio
// counts as silence for the on-device backend's end-of-speech check.
const OnDeviceEnergyFloor = 0.02

// onDevicePlaceholder is the on-device recognizer's own placeholder text
// while nothing has been recognized yet; it is filtered rather than
// surfaced to on_stable_partial or returned as a final transcript.
const onDevicePlaceholder = "waiting for speech..."

// Provider is the capability both STT backends implement (spec.md §4.6).
type Provider interface {
	// Setup performs one-shot initialization (model load, connection
	// warm-up) and reports whether the backend is ready for use.
	Setup(ctx context.Context) error

	// Listen streams audio until an end-of-speech or deadline condition
	// fires, invoking onStablePartial at most once per stability window,
	// and returns the final transcript (empty if nothing was heard).
	Listen(ctx context.Context, onStablePartial func(partial string)) (string, error)

	// StopListening cancels an in-progress Listen call, if any.
	StopListening()
}
