// Package session holds per-user conversation state for the create-habit
// flow. State lives in process memory only; a restart drops in-flight
// conversations, which is acceptable because starting over is cheap.
package session

import (
	"sync"
	"time"
)

// State is the position of a user's create-habit conversation.
type State int

const (
	// StateIdle means no conversation is in progress.
	StateIdle State = iota
	// StateAwaitingName means the next free-text message becomes the name.
	StateAwaitingName
	// StateAwaitingDescription means the next message becomes the
	// description ("-" maps to empty).
	StateAwaitingDescription
	// StateAwaitingFrequency means the flow is waiting for one of the
	// enumerated frequency choices.
	StateAwaitingFrequency
)

// Draft accumulates the partial habit while the flow runs.
type Draft struct {
	Name        string
	Description string
}

type session struct {
	state     State
	draft     Draft
	touchedAt time.Time
}

// Manager tracks one session per user id. All methods are safe for
// concurrent use.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*session
	ttl      time.Duration
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[int64]*session),
		ttl:      ttl,
	}
}

// Begin starts a fresh flow for the user, overwriting any abandoned one.
func (m *Manager) Begin(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = &session{state: StateAwaitingName, touchedAt: time.Now()}
}

// State returns the user's current conversation state. Sessions idle past
// the TTL report StateIdle.
func (m *Manager) State(userID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return StateIdle
	}
	if m.expired(s) {
		delete(m.sessions, userID)
		return StateIdle
	}
	return s.state
}

// SetName records the habit name and advances to the description state.
// Returns false if the user is not awaiting a name.
func (m *Manager) SetName(userID int64, name string) bool {
	return m.advance(userID, StateAwaitingName, func(s *session) {
		s.draft.Name = name
		s.state = StateAwaitingDescription
	})
}

// SetDescription records the description and advances to the frequency
// state. Returns false if the user is not awaiting a description.
func (m *Manager) SetDescription(userID int64, description string) bool {
	return m.advance(userID, StateAwaitingDescription, func(s *session) {
		s.draft.Description = description
		s.state = StateAwaitingFrequency
	})
}

// Take returns the accumulated draft and ends the flow. Returns false if
// the user is not awaiting a frequency choice.
func (m *Manager) Take(userID int64) (Draft, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok || m.expired(s) || s.state != StateAwaitingFrequency {
		return Draft{}, false
	}
	delete(m.sessions, userID)
	return s.draft, true
}

// Cancel drops the user's session, if any. Returns true if a flow was in
// progress.
func (m *Manager) Cancel(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[userID]
	delete(m.sessions, userID)
	return ok
}

// Len reports how many sessions are currently held, expired or not.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep removes expired sessions. Call periodically.
func (m *Manager) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for userID, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, userID)
		}
	}
}

func (m *Manager) advance(userID int64, want State, apply func(*session)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok || m.expired(s) || s.state != want {
		return false
	}
	apply(s)
	s.touchedAt = time.Now()
	return true
}

func (m *Manager) expired(s *session) bool {
	return m.ttl > 0 && time.Since(s.touchedAt) > m.ttl
}
