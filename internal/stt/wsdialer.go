package stt

import (
	"context"
	"fmt"
	"net/url"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// WSDialer is a generic streaming-transcription Dialer over a websocket
// endpoint, grounded on pkg/providers/tts/lokutor.go's dial/wsjson-request
// pattern (the one streaming websocket shape the teacher pack actually
// uses) and generalized to speech-to-text framing: binary frames carry
// outbound microphone audio, text frames carry {"text":..., "is_final":...}
// transcript updates. The concrete vendor and its exact wire format are an
// external collaborator per spec.md's non-goals; this dialer only commits
// to that minimal shape so any compatible streaming endpoint can be
// plugged in via Endpoint/APIKey.
type WSDialer struct {
	Endpoint string
	APIKey   string
	Source   AudioSource
}

// Dial opens a websocket session and begins uploading microphone audio in
// the background.
func (w *WSDialer) Dial(ctx context.Context) (TranscriptSession, error) {
	u, err := url.Parse(w.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("stt: wsdialer: bad endpoint: %w", err)
	}
	q := u.Query()
	q.Set("api_key", w.APIKey)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("stt: wsdialer: dial: %w", err)
	}

	samples, err := w.Source.Stream(ctx)
	if err != nil {
		conn.Close(websocket.StatusAbnormalClosure, "")
		return nil, fmt.Errorf("stt: wsdialer: audio source: %w", err)
	}

	sess := &wsSession{conn: conn}
	go sess.uploadLoop(ctx, samples)
	return sess, nil
}

type wsSession struct {
	conn *websocket.Conn
}

func (s *wsSession) uploadLoop(ctx context.Context, samples <-chan []float32) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-samples:
			if !ok {
				return
			}
			pcm := make([]byte, len(frame)*2)
			for i, f := range frame {
				v := int16(f * 32767)
				pcm[2*i] = byte(v)
				pcm[2*i+1] = byte(v >> 8)
			}
			if err := s.conn.Write(ctx, websocket.MessageBinary, pcm); err != nil {
				return
			}
		}
	}
}

func (s *wsSession) Recv(ctx context.Context) (TranscriptChunk, error) {
	var chunk struct {
		Text    string `json:"text"`
		IsFinal bool   `json:"is_final"`
	}
	if err := wsjson.Read(ctx, s.conn, &chunk); err != nil {
		return TranscriptChunk{}, err
	}
	return TranscriptChunk{Text: chunk.Text, Final: chunk.IsFinal}, nil
}

func (s *wsSession) Close() error {
	return s.conn.Close(websocket.StatusNormalClosure, "")
}
