package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const sessionLogDir = "logs"
const maxRetainedLogs = 5

// SessionLog writes one line per event to ./logs/session_<timestamp>.log,
// formatted as "[%7.2fs] message" with seconds elapsed since the session
// started, per spec.md §6's persisted-state contract. It also implements
// Logger so it can be wired in wherever a Logger is expected.
type SessionLog struct {
	mu      sync.Mutex
	file    *os.File
	started time.Time
}

// NewSessionLog ensures the logs directory exists, prunes older session log
// files so that, together with the fresh one it opens (named after the
// current timestamp), at most maxRetainedLogs remain.
func NewSessionLog(now time.Time) (*SessionLog, error) {
	if err := os.MkdirAll(sessionLogDir, 0o755); err != nil {
		return nil, fmt.Errorf("session log: ensure directory: %w", err)
	}
	if err := pruneOldLogs(sessionLogDir, maxRetainedLogs-1); err != nil {
		return nil, fmt.Errorf("session log: prune: %w", err)
	}
	name := fmt.Sprintf("session_%s.log", now.Format("2006-01-02_15-04-05"))
	f, err := os.Create(filepath.Join(sessionLogDir, name))
	if err != nil {
		return nil, fmt.Errorf("session log: create: %w", err)
	}
	return &SessionLog{file: f, started: now}, nil
}

func pruneOldLogs(dir string, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var logs []os.DirEntry
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".log" {
			logs = append(logs, e)
		}
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Name() > logs[j].Name()
	})
	for i := keep; i < len(logs); i++ {
		_ = os.Remove(filepath.Join(dir, logs[i].Name()))
	}
	return nil
}

func (s *SessionLog) writeLine(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := time.Since(s.started).Seconds()
	fmt.Fprintf(s.file, "[%7.2fs] %s\n", elapsed, msg)
}

func (s *SessionLog) Debug(msg string, args ...interface{}) { s.writeLine(format(msg, args...)) }
func (s *SessionLog) Info(msg string, args ...interface{})  { s.writeLine(format(msg, args...)) }
func (s *SessionLog) Warn(msg string, args ...interface{})  { s.writeLine(format(msg, args...)) }
func (s *SessionLog) Error(msg string, args ...interface{}) { s.writeLine(format(msg, args...)) }

func format(msg string, args ...interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf("%s %v", msg, args)
}

// Close flushes and closes the underlying file.
func (s *SessionLog) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
