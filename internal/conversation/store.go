// Package conversation drives the per-chat finite state machine: menu
// selection, typed input collection, action dispatch, and the return to the
// main menu.
package conversation

import "sync"

// State identifies what kind of input a chat is currently expected to supply.
type State string

const (
	// StateIdle indicates there is no active conversation with the chat.
	StateIdle State = "idle"
	// StateAwaitingFlight expects "ORIGIN DESTINATION DATE".
	StateAwaitingFlight State = "awaiting_flight"
	// StateAwaitingHotel expects "CITY CHECKIN CHECKOUT".
	StateAwaitingHotel State = "awaiting_hotel"
	// StateAwaitingRoute expects a space-separated city list.
	StateAwaitingRoute State = "awaiting_route"
	// StateAwaitingRemind expects "YYYY-MM-DD_HH:MM MESSAGE".
	StateAwaitingRemind State = "awaiting_remind"
)

// Session stores conversation state and temporary data for a chat.
type Session struct {
	State    State
	TempData map[string]interface{}
}

// Store orchestrates chat sessions and FSM state transitions.
type Store interface {
	GetState(chatID int64) State
	SetState(chatID int64, st State)
	ClearState(chatID int64)
	InProgress(chatID int64) bool

	SetTemp(chatID int64, key string, value interface{})
	GetTemp(chatID int64, key string) (interface{}, bool)
	ClearTemp(chatID int64, key string)
	Clear(chatID int64)
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewMemoryStore constructs an in-memory Store. Sessions are created lazily
// on first mutation; an unknown chat is implicitly idle.
func NewMemoryStore() Store {
	return &memoryStore{sessions: make(map[int64]*Session)}
}

func (m *memoryStore) session(chatID int64) *Session {
	sess, ok := m.sessions[chatID]
	if !ok {
		sess = &Session{State: StateIdle, TempData: make(map[string]interface{})}
		m.sessions[chatID] = sess
	}
	return sess
}

// GetState returns the current FSM state of a chat, or StateIdle if none exists.
func (m *memoryStore) GetState(chatID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[chatID]; ok {
		return sess.State
	}
	return StateIdle
}

// SetState sets the FSM state for the given chat.
func (m *memoryStore) SetState(chatID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(chatID).State = st
}

// ClearState resets the FSM state to idle without removing session data.
func (m *memoryStore) ClearState(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[chatID]; ok {
		sess.State = StateIdle
	}
}

// InProgress reports whether the chat has an active state other than idle.
func (m *memoryStore) InProgress(chatID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[chatID]
	return ok && sess.State != StateIdle
}

// SetTemp stores a temporary key/value pair for the given chat session.
func (m *memoryStore) SetTemp(chatID int64, key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(chatID).TempData[key] = value
}

// GetTemp retrieves a temporary value by key for the given chat session.
func (m *memoryStore) GetTemp(chatID int64, key string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[chatID]
	if !ok {
		return nil, false
	}
	val, ok := sess.TempData[key]
	return val, ok
}

// ClearTemp removes a temporary key/value pair for the given chat session.
func (m *memoryStore) ClearTemp(chatID int64, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[chatID]; ok {
		delete(sess.TempData, key)
	}
}

// Clear removes the entire session for a chat.
func (m *memoryStore) Clear(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
}
