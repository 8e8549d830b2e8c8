package stt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAudioSource struct {
	frames chan []float32
}

func newFakeAudioSource() *fakeAudioSource {
	return &fakeAudioSource{frames: make(chan []float32, 8)}
}

func (f *fakeAudioSource) Stream(ctx context.Context) (<-chan []float32, error) {
	return f.frames, nil
}

func TestWSDialerUploadsAudioAndReceivesTranscripts(t *testing.T) {
	received := make(chan []byte, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "closing")

		_, payload, err := conn.Read(r.Context())
		if err != nil {
			return
		}
		received <- payload

		conn.Write(r.Context(), websocket.MessageText, []byte(`{"text":"open chrome","is_final":false}`))
		conn.Write(r.Context(), websocket.MessageText, []byte(`{"text":"open chrome please","is_final":true}`))
	}))
	defer server.Close()

	source := newFakeAudioSource()
	dialer := &WSDialer{
		Endpoint: "ws://" + strings.TrimPrefix(server.URL, "http://"),
		APIKey:   "test-key",
		Source:   source,
	}

	session, err := dialer.Dial(context.Background())
	require.NoError(t, err)
	defer session.Close()

	source.frames <- []float32{0.5, -0.5}

	select {
	case payload := <-received:
		assert.Equal(t, []byte{0xff, 0x3f, 0x01, 0xc0}, payload)
	case <-time.After(time.Second):
		t.Fatal("server did not receive uploaded audio")
	}

	chunk, err := session.Recv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TranscriptChunk{Text: "open chrome", Final: false}, chunk)

	chunk, err = session.Recv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TranscriptChunk{Text: "open chrome please", Final: true}, chunk)
}

func TestWSDialerDialFailureSurfacesError(t *testing.T) {
	dialer := &WSDialer{
		Endpoint: "ws://127.0.0.1:1",
		APIKey:   "test-key",
		Source:   newFakeAudioSource(),
	}

	_, err := dialer.Dial(context.Background())

	assert.Error(t, err)
}
