//go:build darwin

// Package sherpa re-exports the platform-specific sherpa-onnx bindings so
// the rest of internal/stt can depend on one set of names regardless of
// build target.
package sherpa

import impl "github.com/k2-fsa/sherpa-onnx-go-macos"

type VoiceActivityDetector = impl.VoiceActivityDetector
type VadModelConfig = impl.VadModelConfig
type SpeechSegment = impl.SpeechSegment

type OfflineRecognizer = impl.OfflineRecognizer
type OfflineRecognizerConfig = impl.OfflineRecognizerConfig
type OfflineStream = impl.OfflineStream
type OfflineRecognizerResult = impl.OfflineRecognizerResult

var NewVoiceActivityDetector = impl.NewVoiceActivityDetector
var DeleteVoiceActivityDetector = impl.DeleteVoiceActivityDetector

var NewOfflineRecognizer = impl.NewOfflineRecognizer
var DeleteOfflineRecognizer = impl.DeleteOfflineRecognizer
var NewOfflineStream = impl.NewOfflineStream
var DeleteOfflineStream = impl.DeleteOfflineStream

// DefaultProvider returns the recommended provider for this platform.
// CoreML acceleration is left to explicit configuration rather than
// auto-detection.
func DefaultProvider() string {
	return "cpu"
}
