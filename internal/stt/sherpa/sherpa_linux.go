//go:build linux

// Package sherpa re-exports the platform-specific sherpa-onnx bindings so
// the rest of internal/stt can depend on one set of names regardless of
// build target.
package sherpa

import (
	"os"

	impl "github.com/k2-fsa/sherpa-onnx-go-linux"
)

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

// DefaultProvider returns "cuda" if an NVIDIA GPU is likely available,
// otherwise "cpu".
func DefaultProvider() string {
	if hasNvidiaGPU() {
		return "cuda"
	}
	return "cpu"
}

func hasNvidiaGPU() bool {
	for _, path := range []string{"/usr/bin/nvidia-smi", "/dev/nvidia0"} {
		if _, err := os.Stat(path); err == nil {
			return true
		}
	}
	return false
}
