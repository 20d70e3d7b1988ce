package llm

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultMaxContextMessages bounds how many messages flow back into
	// a chat request. Sessions retain twice this many.
	DefaultMaxContextMessages = 10

	// DefaultRetention is how long an idle session survives.
	DefaultRetention = 24 * time.Hour

	cleanupInterval = time.Hour
)

// stored is a message with its arrival time, for retention pruning.
type stored struct {
	msg Message
	at  time.Time
}

type session struct {
	messages []stored
	updated  time.Time
}

// Memory keeps bounded per-session conversation history in memory.
// Nothing is persisted across restarts.
type Memory struct {
	mu          sync.Mutex
	sessions    map[string]*session
	maxContext  int
	retention   time.Duration
	lastCleanup time.Time
	now         func() time.Time
}

// NewMemory creates a conversation memory. A maxContext of zero or
// less uses the default.
func NewMemory(maxContext int, retention time.Duration) *Memory {
	if maxContext <= 0 {
		maxContext = DefaultMaxContextMessages
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Memory{
		sessions:   make(map[string]*session),
		maxContext: maxContext,
		retention:  retention,
		now:        time.Now,
	}
}

// NewSession returns a fresh session id.
func (m *Memory) NewSession() string {
	return uuid.NewString()
}

// Add appends a message to a session, creating the session if needed.
func (m *Memory) Add(sessionID, role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s, ok := m.sessions[sessionID]
	if !ok {
		s = &session{}
		m.sessions[sessionID] = s
	}
	s.messages = append(s.messages, stored{msg: Message{Role: role, Content: content}, at: now})

	// Keep double the context window so the reply half of each exchange
	// survives trimming.
	if limit := m.maxContext * 2; len(s.messages) > limit {
		s.messages = s.messages[len(s.messages)-limit:]
	}
	s.updated = now

	m.cleanupLocked(now)
}

// History returns the most recent messages of a session, at most the
// context window.
func (m *Memory) History(sessionID string) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}
	msgs := s.messages
	if len(msgs) > m.maxContext {
		msgs = msgs[len(msgs)-m.maxContext:]
	}
	out := make([]Message, len(msgs))
	for i, st := range msgs {
		out[i] = st.msg
	}
	return out
}

// ClearSession drops one session.
func (m *Memory) ClearSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// ClearAll drops every session.
func (m *Memory) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*session)
}

// Stats reports memory usage counters.
func (m *Memory) Stats() (sessions, messages int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		messages += len(s.messages)
	}
	return len(m.sessions), messages
}

// cleanupLocked drops idle sessions. Runs at most once per hour.
func (m *Memory) cleanupLocked(now time.Time) {
	if now.Sub(m.lastCleanup) < cleanupInterval {
		return
	}
	m.lastCleanup = now
	cutoff := now.Add(-m.retention)
	for id, s := range m.sessions {
		if s.updated.Before(cutoff) {
			delete(m.sessions, id)
		}
	}
}
