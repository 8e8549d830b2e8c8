package narration

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// PlaybackSink is the audio output side a Backend drives; internal/audio's
// Device.Sink() satisfies it.
type PlaybackSink interface {
	Write(pcm []byte)
	Stop()
}

// LokutorBackend adapts the Lokutor streaming TTS websocket API to Backend,
// grounded on pkg/providers/tts/lokutor.go's dial-once/request-per-call
// shape, generalized from a byte-buffer return to the Speak/onDone contract
// Queue drives.
type LokutorBackend struct {
	apiKey string
	host   string
	scheme string
	sink   PlaybackSink

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewLokutorBackend returns a Backend that speaks through sink using the
// given API key.
func NewLokutorBackend(apiKey string, sink PlaybackSink) *LokutorBackend {
	return &LokutorBackend{apiKey: apiKey, host: "api.lokutor.com", scheme: "wss", sink: sink}
}

func (t *LokutorBackend) getConn(ctx context.Context) (*websocket.Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn != nil {
		return t.conn, nil
	}
	u := url.URL{Scheme: t.scheme, Host: t.host, Path: "/ws", RawQuery: "api_key=" + t.apiKey}
	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("narration: lokutor dial: %w", err)
	}
	t.conn = conn
	return conn, nil
}

// Speak synthesizes text and streams the resulting PCM to the sink,
// invoking onDone exactly once when the stream ends, errors, or Stop cuts
// it short.
func (t *LokutorBackend) Speak(text string, onDone func()) error {
	ctx := context.Background()
	conn, err := t.getConn(ctx)
	if err != nil {
		return err
	}

	req := map[string]interface{}{
		"text":    text,
		"voice":   "default",
		"speed":   1.05,
		"steps":   5,
		"version": "versa-1.0",
	}
	if err := wsjson.Write(ctx, conn, req); err != nil {
		t.resetConn()
		return fmt.Errorf("narration: lokutor send: %w", err)
	}

	go t.readLoop(ctx, conn, onDone)
	return nil
}

func (t *LokutorBackend) readLoop(ctx context.Context, conn *websocket.Conn, onDone func()) {
	defer onDone()
	for {
		messageType, payload, err := conn.Read(ctx)
		if err != nil {
			t.resetConn()
			return
		}
		switch messageType {
		case websocket.MessageBinary:
			t.sink.Write(payload)
		case websocket.MessageText:
			msg := string(payload)
			if msg == "EOS" {
				return
			}
			if len(msg) >= 4 && msg[:4] == "ERR:" {
				return
			}
		}
	}
}

func (t *LokutorBackend) resetConn() {
	t.mu.Lock()
	if t.conn != nil {
		t.conn.Close(websocket.StatusAbnormalClosure, "")
		t.conn = nil
	}
	t.mu.Unlock()
}

// Stop halts playback immediately. The in-flight readLoop's next Read call
// (or the conn it was given) observes the close and runs onDone.
func (t *LokutorBackend) Stop() {
	t.sink.Stop()
	t.resetConn()
}
