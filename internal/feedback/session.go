package feedback

import (
	"sync"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/model"
)

// SessionTracker remembers the most recent generation event of each session.
type SessionTracker struct {
	mu   sync.Mutex
	last map[string]model.GenerationEvent
}

// NewSessionTracker returns an empty tracker.
func NewSessionTracker() *SessionTracker {
	return &SessionTracker{last: map[string]model.GenerationEvent{}}
}

// Swap records ev as the latest event of its session and returns the event
// it replaced, if any. Lookup and replacement happen under one lock so two
// callers in the same session each see a distinct predecessor.
func (s *SessionTracker) Swap(ev model.GenerationEvent) (model.GenerationEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.last[ev.SessionID]
	s.last[ev.SessionID] = ev
	return prev, ok
}

// Last returns the latest event of a session.
func (s *SessionTracker) Last(sessionID string) (model.GenerationEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.last[sessionID]
	return ev, ok
}

// Len returns the number of tracked sessions.
func (s *SessionTracker) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.last)
}

// Reset forgets every session.
func (s *SessionTracker) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = map[string]model.GenerationEvent{}
}
