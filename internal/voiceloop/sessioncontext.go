package voiceloop

import (
	"fmt"
	"sync"
)

// SessionContextCap is the bound on retained lines (spec.md §3).
const SessionContextCap = 10

// SessionContext is a shared, bounded ring of recent "User: …"/"Agent: …"
// lines, oldest evicted first.
type SessionContext struct {
	mu    sync.Mutex
	lines []string
}

// NewSessionContext builds an empty SessionContext.
func NewSessionContext() *SessionContext {
	return &SessionContext{}
}

// AddUser appends a "User: …" line, evicting the oldest line if the ring
// is already at capacity.
func (s *SessionContext) AddUser(text string) {
	s.append(fmt.Sprintf("User: %s", text))
}

// AddAgent appends an "Agent: …" line, evicting the oldest line if the ring
// is already at capacity.
func (s *SessionContext) AddAgent(text string) {
	s.append(fmt.Sprintf("Agent: %s", text))
}

func (s *SessionContext) append(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
	if len(s.lines) > SessionContextCap {
		s.lines = s.lines[len(s.lines)-SessionContextCap:]
	}
}

// Lines returns a copy of the retained lines, oldest first.
func (s *SessionContext) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}
