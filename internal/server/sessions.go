package server

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Transport is a client's live delivery handle. The websocket Connection
// implements it; tests substitute an in-memory fake.
type Transport interface {
	Send(msg *Message) error
	Connected() bool
}

// Sessions maps persistent user ids to their current transport. A
// reconnect replaces the handle under the same id, which is how anonymous
// players keep their seat binding across drops.
type Sessions struct {
	logger *log.Logger

	mu     sync.RWMutex
	byUser map[string]Transport
}

// NewSessions creates an empty session directory.
func NewSessions(logger *log.Logger) *Sessions {
	return &Sessions{
		logger: logger.WithPrefix("sessions"),
		byUser: make(map[string]Transport),
	}
}

// Register installs or replaces the transport for a user.
func (s *Sessions) Register(userID string, t Transport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[userID] = t
}

// Remove drops the mapping, but only if it still points at the given
// transport; a reconnect that already replaced it is left alone.
func (s *Sessions) Remove(userID string, t Transport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.byUser[userID]; ok && current == t {
		delete(s.byUser, userID)
	}
}

// Lookup returns the user's live transport, evicting a dead handle
// lazily.
func (s *Sessions) Lookup(userID string) (Transport, bool) {
	s.mu.RLock()
	t, ok := s.byUser[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !t.Connected() {
		s.mu.Lock()
		if current, still := s.byUser[userID]; still && current == t {
			delete(s.byUser, userID)
		}
		s.mu.Unlock()
		return nil, false
	}
	return t, true
}

// Count returns the number of live mappings.
func (s *Sessions) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byUser)
}
