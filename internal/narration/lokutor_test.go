package narration

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlaybackSink struct {
	mu      sync.Mutex
	written []byte
	stopped bool
}

func (s *fakePlaybackSink) Write(pcm []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written = append(s.written, pcm...)
}

func (s *fakePlaybackSink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

func (s *fakePlaybackSink) bytesWritten() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, len(s.written))
	copy(out, s.written)
	return out
}

func TestLokutorBackendStreamsAudioAndSignalsDone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "closing")

		var req map[string]interface{}
		if err := wsjson.Read(r.Context(), conn, &req); err != nil {
			return
		}
		conn.Write(r.Context(), websocket.MessageBinary, []byte{1, 2, 3})
		conn.Write(r.Context(), websocket.MessageBinary, []byte{4, 5, 6})
		conn.Write(r.Context(), websocket.MessageText, []byte("EOS"))
	}))
	defer server.Close()

	sink := &fakePlaybackSink{}
	backend := &LokutorBackend{
		apiKey: "test-key",
		host:   strings.TrimPrefix(server.URL, "http://"),
		scheme: "ws",
		sink:   sink,
	}

	done := make(chan struct{})
	err := backend.Speak("hello", func() { close(done) })
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("onDone was not called")
	}
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, sink.bytesWritten())
}

func TestLokutorBackendStopStopsSinkAndResetsConn(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "closing")
		var req map[string]interface{}
		if err := wsjson.Read(r.Context(), conn, &req); err != nil {
			return
		}
		<-r.Context().Done()
	}))
	defer server.Close()

	sink := &fakePlaybackSink{}
	backend := &LokutorBackend{
		apiKey: "test-key",
		host:   strings.TrimPrefix(server.URL, "http://"),
		scheme: "ws",
		sink:   sink,
	}

	done := make(chan struct{})
	require.NoError(t, backend.Speak("hello", func() { close(done) }))
	time.Sleep(50 * time.Millisecond)

	backend.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("onDone was not called after Stop")
	}
	assert.True(t, sink.stopped)
}
