// ABOUTME: Session records and the in-memory session store shared by all request handlers.
// ABOUTME: Transport close is the only teardown signal; closing is idempotent.

package mcp

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Transport represents the logical streamable-HTTP transport of one
// session. The gateway owns it exclusively; closing it tears the session
// down and the id is never reused.
type Transport struct {
	sessionID string

	mu      sync.Mutex
	closed  bool
	onClose func(sessionID string)
}

// newTransport creates a transport with a collision-resistant session id.
func newTransport() *Transport {
	return &Transport{sessionID: uuid.New().String()}
}

// SessionID returns the transport's session id.
func (t *Transport) SessionID() string { return t.sessionID }

// OnClose registers the cleanup callback fired exactly once when the
// transport closes.
func (t *Transport) OnClose(fn func(sessionID string)) {
	t.mu.Lock()
	t.onClose = fn
	t.mu.Unlock()
}

// Close marks the transport closed and fires the cleanup callback. Safe to
// call multiple times; only the first close has any effect.
func (t *Transport) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	fn := t.onClose
	t.mu.Unlock()

	if fn != nil {
		fn(t.sessionID)
	}
}

// Closed reports whether the transport has been closed.
func (t *Transport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Session binds one protocol engine to one transport. Both are destroyed
// together; no other component holds a long-lived reference.
type Session struct {
	ID        string
	Engine    *Engine
	Transport *Transport
	CreatedAt time.Time
}

// sessionStore manages active sessions in memory. Creation is a
// check-then-insert guarded by the mutex so concurrent initialize calls
// can never register duplicate ids.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*Session)}
}

// register adds a session to the active map.
func (s *sessionStore) register(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
}

// get returns the active session for the id.
func (s *sessionStore) get(id string) (*Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	return sess, ok
}

// remove deletes a session from the active map. Removal of an absent id is
// a no-op so double-close stays harmless.
func (s *sessionStore) remove(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// count returns the number of active sessions.
func (s *sessionStore) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
