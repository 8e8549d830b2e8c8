package stt

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/axon-cua/agent/internal/stt/sherpa"
)

// AudioSource is the external collaborator boundary for the on-device
// recognizer: a live PCM sample stream from the microphone. Device
// enumeration and the platform audio API are out of scope here (spec.md's
// own non-goals carve these out as external collaborators).
type AudioSource interface {
	Stream(ctx context.Context) (<-chan []float32, error)
}

// OnDeviceConfig configures model paths and decoding for OnDeviceRecognizer.
type OnDeviceConfig struct {
	VADModel       string
	VADThreshold   float32
	WhisperEncoder string
	WhisperDecoder string
	WhisperTokens  string
	SampleRate     int
	Language       string
	NumThreads     int
}

// OnDeviceRecognizer is the on-device STT backend (spec.md §4.6). It loads
// its speech model on first Setup call and declares end-of-speech once
// measured buffer energy stays below OnDeviceEnergyFloor for at least
// OnDeviceSilenceWindow.
type OnDeviceRecognizer struct {
	source AudioSource
	cfg    OnDeviceConfig

	mu         sync.Mutex
	vad        *sherpa.VoiceActivityDetector
	recognizer *sherpa.OfflineRecognizer
	loaded     bool
	cancel     context.CancelFunc
}

// NewOnDeviceRecognizer returns a recognizer that reads audio from source.
func NewOnDeviceRecognizer(source AudioSource, cfg OnDeviceConfig) *OnDeviceRecognizer {
	return &OnDeviceRecognizer{source: source, cfg: cfg}
}

func (r *OnDeviceRecognizer) Setup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return nil
	}

	vadConfig := &sherpa.VadModelConfig{}
	vadConfig.SileroVad.Model = r.cfg.VADModel
	vadConfig.SileroVad.Threshold = r.cfg.VADThreshold
	vadConfig.SileroVad.MinSilenceDuration = float32(OnDeviceSilenceWindow.Seconds())
	vadConfig.SileroVad.MinSpeechDuration = 0.1
	vadConfig.SileroVad.MaxSpeechDuration = 30.0
	vadConfig.SileroVad.WindowSize = 512
	vadConfig.SampleRate = r.cfg.SampleRate
	vadConfig.NumThreads = r.cfg.NumThreads

	vad := sherpa.NewVoiceActivityDetector(vadConfig, 60.0)
	if vad == nil {
		return fmt.Errorf("stt: on-device: failed to load VAD model %q", r.cfg.VADModel)
	}

	recConfig := &sherpa.OfflineRecognizerConfig{}
	recConfig.ModelConfig.Whisper.Encoder = r.cfg.WhisperEncoder
	recConfig.ModelConfig.Whisper.Decoder = r.cfg.WhisperDecoder
	language := r.cfg.Language
	if strings.EqualFold(language, "auto") {
		language = ""
	}
	recConfig.ModelConfig.Whisper.Language = language
	recConfig.ModelConfig.Whisper.Task = "transcribe"
	recConfig.ModelConfig.Whisper.TailPaddings = -1
	recConfig.ModelConfig.Tokens = r.cfg.WhisperTokens
	recConfig.ModelConfig.NumThreads = r.cfg.NumThreads
	recConfig.ModelConfig.Provider = sherpa.DefaultProvider()
	recConfig.DecodingMethod = "greedy_search"

	recognizer := sherpa.NewOfflineRecognizer(recConfig)
	if recognizer == nil {
		sherpa.DeleteVoiceActivityDetector(vad)
		return fmt.Errorf("stt: on-device: failed to load whisper model")
	}

	r.vad = vad
	r.recognizer = recognizer
	r.loaded = true
	return nil
}

func (r *OnDeviceRecognizer) Listen(ctx context.Context, onStablePartial func(string)) (string, error) {
	r.mu.Lock()
	loaded := r.loaded
	r.mu.Unlock()
	if !loaded {
		return "", ErrNotReady
	}

	frames, err := r.source.Stream(ctx)
	if err != nil {
		return "", fmt.Errorf("stt: on-device: audio stream: %w", err)
	}

	lctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
	defer cancel()

	noSpeech := time.NewTimer(NoSpeechDeadline)
	defer noSpeech.Stop()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var (
		buffer       []float32
		belowFloorAt time.Time
		heardAny     bool
		lastPartial  string
		lastChange   time.Time
		fired        bool
	)

	decode := func() string {
		r.mu.Lock()
		defer r.mu.Unlock()
		stream := sherpa.NewOfflineStream(r.recognizer)
		if stream == nil {
			return ""
		}
		defer sherpa.DeleteOfflineStream(stream)
		stream.AcceptWaveform(r.cfg.SampleRate, buffer)
		r.recognizer.Decode(stream)
		text := strings.TrimSpace(stream.GetResult().Text)
		if text == onDevicePlaceholder {
			return ""
		}
		return text
	}

	for {
		select {
		case <-lctx.Done():
			return "", lctx.Err()
		case <-noSpeech.C:
			if !heardAny {
				return "", nil
			}
		case samples, ok := <-frames:
			if !ok {
				return decode(), nil
			}
			buffer = append(buffer, samples...)
			energy := rmsEnergy(samples)
			if energy >= OnDeviceEnergyFloor {
				heardAny = true
				belowFloorAt = time.Time{}
				continue
			}
			if !heardAny {
				continue
			}
			if belowFloorAt.IsZero() {
				belowFloorAt = time.Now()
			} else if time.Since(belowFloorAt) >= OnDeviceSilenceWindow {
				return decode(), nil
			}
		case <-ticker.C:
			if !heardAny {
				continue
			}
			partial := decode()
			if partial == "" {
				continue
			}
			if partial != lastPartial {
				lastPartial = partial
				lastChange = time.Now()
				fired = false
				continue
			}
			if !fired && time.Since(lastChange) >= PartialStabilityWindow {
				fired = true
				onStablePartial(partial)
			}
		}
	}
}

func (r *OnDeviceRecognizer) StopListening() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
}

// Close releases the loaded models. Safe to call even if Setup never
// succeeded.
func (r *OnDeviceRecognizer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.vad != nil {
		sherpa.DeleteVoiceActivityDetector(r.vad)
		r.vad = nil
	}
	if r.recognizer != nil {
		sherpa.DeleteOfflineRecognizer(r.recognizer)
		r.recognizer = nil
	}
	r.loaded = false
}

func rmsEnergy(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
