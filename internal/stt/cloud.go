package stt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNotReady is returned by Listen when Setup has not completed.
var ErrNotReady = errors.New("stt: cloud recognizer not set up")

// TranscriptChunk is one increment from a streaming transcription session.
type TranscriptChunk struct {
	Text  string
	Final bool
}

// TranscriptSession is the external collaborator boundary for the cloud
// recognizer: a live streaming connection to a remote speech-to-text
// service. Authenticating, framing outbound audio, and the provider's
// wire protocol are out of scope here (spec.md's own non-goals carve out
// "the platform-specific speech APIs" as an external collaborator) —
// CloudRecognizer consumes only the decoded chunk stream.
type TranscriptSession interface {
	Recv(ctx context.Context) (TranscriptChunk, error)
	Close() error
}

// Dialer opens a new TranscriptSession against the remote provider, tapping
// the microphone and starting the upload in the background.
type Dialer interface {
	Dial(ctx context.Context) (TranscriptSession, error)
}

// CloudRecognizer is the cloud-recognizer STT backend (spec.md §4.6): a
// 1.2s silence timer and a 60s no-speech deadline wrapped around a
// streaming transcription session, firing on_stable_partial after 500ms
// of partial-text stability.
type CloudRecognizer struct {
	dialer Dialer

	mu     sync.Mutex
	ready  bool
	cancel context.CancelFunc
}

// NewCloudRecognizer returns a CloudRecognizer that dials sessions via d.
func NewCloudRecognizer(d Dialer) *CloudRecognizer {
	return &CloudRecognizer{dialer: d}
}

func (c *CloudRecognizer) Setup(ctx context.Context) error {
	c.mu.Lock()
	c.ready = true
	c.mu.Unlock()
	return nil
}

func (c *CloudRecognizer) Listen(ctx context.Context, onStablePartial func(string)) (string, error) {
	c.mu.Lock()
	ready := c.ready
	c.mu.Unlock()
	if !ready {
		return "", ErrNotReady
	}

	session, err := c.dialer.Dial(ctx)
	if err != nil {
		return "", fmt.Errorf("stt: cloud dial: %w", err)
	}
	lctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
	defer func() {
		cancel()
		session.Close()
	}()

	noSpeech := time.NewTimer(NoSpeechDeadline)
	defer noSpeech.Stop()
	// The silence timer is armed only once speech has been heard.
	silence := time.NewTimer(CloudSilenceTimeout)
	silence.Stop()
	defer silence.Stop()
	stability := time.NewTicker(50 * time.Millisecond)
	defer stability.Stop()

	var (
		lastPartial string
		lastChange  = time.Now()
		fired       bool
		heardAny    bool
	)

	type recvResult struct {
		chunk TranscriptChunk
		err   error
	}
	chunks := make(chan recvResult, 1)
	recvNext := func() {
		go func() {
			chunk, err := session.Recv(lctx)
			select {
			case chunks <- recvResult{chunk, err}:
			case <-lctx.Done():
			}
		}()
	}
	recvNext()

	for {
		select {
		case <-lctx.Done():
			return "", lctx.Err()
		case <-noSpeech.C:
			if !heardAny {
				return "", nil
			}
		case <-silence.C:
			return lastPartial, nil
		case <-stability.C:
			if !fired && lastPartial != "" && time.Since(lastChange) >= PartialStabilityWindow {
				fired = true
				onStablePartial(lastPartial)
			}
		case r := <-chunks:
			if r.err != nil {
				return "", fmt.Errorf("stt: cloud recv: %w", r.err)
			}
			if r.chunk.Text != "" {
				heardAny = true
				if !silence.Stop() {
					select {
					case <-silence.C:
					default:
					}
				}
				silence.Reset(CloudSilenceTimeout)
			}
			if r.chunk.Final {
				return r.chunk.Text, nil
			}
			if r.chunk.Text != lastPartial {
				lastPartial = r.chunk.Text
				lastChange = time.Now()
				fired = false
			}
			recvNext()
		}
	}
}

func (c *CloudRecognizer) StopListening() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}
