// Package audio wires the malgo duplex sound device to the two external
// collaborator boundaries internal/stt and internal/narration declare
// (AudioSource and narration.Backend's playback side): device enumeration
// and the platform audio API stay out of scope for those packages, but the
// running binary still needs one real capture/playback device, grounded on
// the teacher's cmd/agent malgo.InitDevice/onSamples duplex callback.
package audio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

// DefaultSampleRate matches the teacher's microphone configuration.
const DefaultSampleRate = 44100

// Device owns one duplex malgo sound device: capture samples are fanned out
// to the current MicSource subscriber, playback bytes written through
// Sink() are drained into the output callback.
type Device struct {
	sampleRate int

	mctx *malgo.AllocatedContext
	dev  *malgo.Device

	capMu  sync.Mutex
	capSub chan<- []float32

	playMu  sync.Mutex
	playbuf []byte

	echo *echoSuppressor
}

// Open initializes the malgo context and starts a duplex device at
// sampleRate, mono, signed 16-bit PCM.
func Open(sampleRate int) (*Device, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("audio: init context: %w", err)
	}

	d := &Device{sampleRate: sampleRate, mctx: mctx, echo: newEchoSuppressor()}

	cfg := malgo.DefaultDeviceConfig(malgo.Duplex)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = 1
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = 1
	cfg.SampleRate = uint32(sampleRate)
	cfg.Alsa.NoMMap = 1

	dev, err := malgo.InitDevice(mctx.Context, cfg, malgo.DeviceCallbacks{
		Data: d.onSamples,
	})
	if err != nil {
		mctx.Uninit()
		return nil, fmt.Errorf("audio: init device: %w", err)
	}
	d.dev = dev

	if err := dev.Start(); err != nil {
		dev.Uninit()
		mctx.Uninit()
		return nil, fmt.Errorf("audio: start device: %w", err)
	}
	return d, nil
}

// Close stops the device and releases the malgo context.
func (d *Device) Close() {
	if d.dev != nil {
		d.dev.Uninit()
	}
	if d.mctx != nil {
		d.mctx.Uninit()
	}
}

func (d *Device) onSamples(pOutput, pInput []byte, frameCount uint32) {
	if pInput != nil {
		d.capMu.Lock()
		sub := d.capSub
		d.capMu.Unlock()
		if sub != nil {
			cleaned := d.echo.clean(pInput)
			samples := make([]float32, len(cleaned)/2)
			for i := range samples {
				s := int16(cleaned[2*i]) | int16(cleaned[2*i+1])<<8
				samples[i] = float32(s) / 32768.0
			}
			select {
			case sub <- samples:
			default:
			}
		}
	}
	if pOutput != nil {
		d.playMu.Lock()
		n := copy(pOutput, d.playbuf)
		d.playbuf = d.playbuf[n:]
		for i := n; i < len(pOutput); i++ {
			pOutput[i] = 0
		}
		d.playMu.Unlock()
		if n > 0 {
			d.echo.recordPlayed(pOutput[:n])
		}
	}
}

// enqueuePlayback appends raw signed-16-bit PCM to the output ring drained
// by onSamples.
func (d *Device) enqueuePlayback(pcm []byte) {
	d.playMu.Lock()
	d.playbuf = append(d.playbuf, pcm...)
	d.playMu.Unlock()
}

// stopPlayback drops whatever is queued, silencing output immediately.
func (d *Device) stopPlayback() {
	d.playMu.Lock()
	d.playbuf = nil
	d.playMu.Unlock()
}

// MicSource adapts Device's capture stream to internal/stt.AudioSource.
// Only one Stream subscriber is supported at a time, matching the voice
// loop's single in-flight Listen call.
type MicSource struct {
	dev *Device
}

// NewMicSource returns a MicSource reading from dev.
func NewMicSource(dev *Device) *MicSource { return &MicSource{dev: dev} }

// Stream starts fanning out capture frames until ctx is cancelled.
func (m *MicSource) Stream(ctx context.Context) (<-chan []float32, error) {
	ch := make(chan []float32, 8)
	m.dev.capMu.Lock()
	m.dev.capSub = ch
	m.dev.capMu.Unlock()

	go func() {
		<-ctx.Done()
		m.dev.capMu.Lock()
		if m.dev.capSub == ch {
			m.dev.capSub = nil
		}
		m.dev.capMu.Unlock()
		close(ch)
	}()
	return ch, nil
}

// PlaybackSink is the narrow write/stop contract internal/narration's
// Lokutor-backed Backend drives the device's output ring through.
type PlaybackSink interface {
	Write(pcm []byte)
	Stop()
}

// Sink returns dev's playback side as a PlaybackSink.
func (d *Device) Sink() PlaybackSink { return (*sinkAdapter)(d) }

type sinkAdapter Device

func (s *sinkAdapter) Write(pcm []byte) { (*Device)(s).enqueuePlayback(pcm) }
func (s *sinkAdapter) Stop()            { (*Device)(s).stopPlayback() }
