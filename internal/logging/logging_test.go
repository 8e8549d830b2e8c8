package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	messages []string
}

func (r *recordingLogger) Debug(msg string, args ...interface{}) { r.messages = append(r.messages, "debug:"+msg) }
func (r *recordingLogger) Info(msg string, args ...interface{})  { r.messages = append(r.messages, "info:"+msg) }
func (r *recordingLogger) Warn(msg string, args ...interface{})  { r.messages = append(r.messages, "warn:"+msg) }
func (r *recordingLogger) Error(msg string, args ...interface{}) { r.messages = append(r.messages, "error:"+msg) }

func TestTeeLoggerFansOutToEveryBackend(t *testing.T) {
	a := &recordingLogger{}
	b := &recordingLogger{}
	tee := NewTeeLogger(a, b)

	tee.Info("hello")
	tee.Error("boom")

	assert.Equal(t, []string{"info:hello", "error:boom"}, a.messages)
	assert.Equal(t, []string{"info:hello", "error:boom"}, b.messages)
}

func TestTeeLoggerSkipsNilBackends(t *testing.T) {
	a := &recordingLogger{}
	tee := NewTeeLogger(a, nil)

	assert.NotPanics(t, func() { tee.Warn("careful") })
	assert.Equal(t, []string{"warn:careful"}, a.messages)
}
