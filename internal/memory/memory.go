// Package memory implements the persisted fact store: a JSON array of
// short fact strings at ~/.cua/memory.json, de-duplicated
// case-insensitively, appended in insertion order (spec.md §3, §6).
package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const memoryRelPath = ".cua/memory.json"

// Store is a process-wide, mutex-guarded fact list with file-flush-on-add
// persistence, matching the teacher's discipline for shared singletons
// (§5: "Shared; internal mutex; list + file flush on add").
type Store struct {
	mu    sync.Mutex
	path  string
	facts []string
	seen  map[string]struct{}
}

// Open loads the memory file if present, creating the parent directory so a
// later Add can flush. A missing file is not an error — the store starts
// empty.
func Open(homeDir string) (*Store, error) {
	path := filepath.Join(homeDir, memoryRelPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("memory: ensure directory: %w", err)
	}
	s := &Store{path: path, seen: map[string]struct{}{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("memory: read: %w", err)
	}
	var facts []string
	if err := json.Unmarshal(data, &facts); err != nil {
		return nil, fmt.Errorf("memory: parse: %w", err)
	}
	for _, f := range facts {
		s.addLocked(f)
	}
	return s, nil
}

// Add appends fact unless an equal (case-insensitive) fact is already
// present, then flushes to disk. A no-op duplicate still returns nil.
func (s *Store) Add(fact string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.addLocked(fact) {
		return nil
	}
	return s.flushLocked()
}

func (s *Store) addLocked(fact string) bool {
	key := strings.ToLower(strings.TrimSpace(fact))
	if key == "" {
		return false
	}
	if _, dup := s.seen[key]; dup {
		return false
	}
	s.seen[key] = struct{}{}
	s.facts = append(s.facts, fact)
	return true
}

func (s *Store) flushLocked() error {
	data, err := json.MarshalIndent(s.facts, "", "  ")
	if err != nil {
		return fmt.Errorf("memory: marshal: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("memory: write: %w", err)
	}
	return nil
}

// All returns a copy of the facts in insertion order.
func (s *Store) All() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.facts))
	copy(out, s.facts)
	return out
}
