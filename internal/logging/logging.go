// Package logging carries the orchestrator.Logger contract forward and adds
// two concrete backends: a zap-backed structured logger for stdout/stderr,
// and a session file writer that satisfies the persisted session-log
// contract.
package logging

import (
	"go.uber.org/zap"
)

// Logger is the same four-method contract every component in this module
// takes, copied from the teacher's pkg/orchestrator/types.go so existing
// call sites need no changes.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// NoOpLogger discards everything. Used as the zero-value default.
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, args ...interface{}) {}
func (n *NoOpLogger) Info(msg string, args ...interface{})  {}
func (n *NoOpLogger) Warn(msg string, args ...interface{})  {}
func (n *NoOpLogger) Error(msg string, args ...interface{}) {}

// ZapLogger adapts a *zap.SugaredLogger to the Logger interface.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger builds a zap logger from zap's development config
// (console-encoded, debug level, stack traces disabled) wrapped as a Logger. Voice mode runs on a user's desktop, not in a log
// aggregation pipeline, so a human-readable console encoder is used rather
// than zap's JSON default.
func NewZapLogger() (*ZapLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &ZapLogger{sugar: l.Sugar()}, nil
}

func (z *ZapLogger) Debug(msg string, args ...interface{}) { z.sugar.Debugw(msg, args...) }
func (z *ZapLogger) Info(msg string, args ...interface{})  { z.sugar.Infow(msg, args...) }
func (z *ZapLogger) Warn(msg string, args ...interface{})  { z.sugar.Warnw(msg, args...) }
func (z *ZapLogger) Error(msg string, args ...interface{}) { z.sugar.Errorw(msg, args...) }

// Sync flushes the underlying zap core.
func (z *ZapLogger) Sync() error { return z.sugar.Sync() }

// TeeLogger fans a single Logger call out to every backend it wraps, so the
// console-facing ZapLogger and the persisted SessionLog (spec.md §6) can
// both be satisfied from the one Logger every component already takes.
type TeeLogger struct {
	backends []Logger
}

// NewTeeLogger wraps backends for fan-out. Nil backends are skipped.
func NewTeeLogger(backends ...Logger) *TeeLogger {
	out := make([]Logger, 0, len(backends))
	for _, b := range backends {
		if b != nil {
			out = append(out, b)
		}
	}
	return &TeeLogger{backends: out}
}

func (t *TeeLogger) Debug(msg string, args ...interface{}) {
	for _, b := range t.backends {
		b.Debug(msg, args...)
	}
}

func (t *TeeLogger) Info(msg string, args ...interface{}) {
	for _, b := range t.backends {
		b.Info(msg, args...)
	}
}

func (t *TeeLogger) Warn(msg string, args ...interface{}) {
	for _, b := range t.backends {
		b.Warn(msg, args...)
	}
}

func (t *TeeLogger) Error(msg string, args ...interface{}) {
	for _, b := range t.backends {
		b.Error(msg, args...)
	}
}
