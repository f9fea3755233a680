package p2p

import (
	"sync"

	"blockledger_go/utils"

	"github.com/gorilla/websocket"
)

/**
 * Session binds an authenticated identity to one live connection.
 * A write mutex serializes frames on the connection, since broadcasts and
 * the connection's own handler may send concurrently.
 */
type Session struct {
	Identity string
	conn     *websocket.Conn
	writeMu  sync.Mutex
}

// NewSession wraps a live connection. Identity stays empty until the
// connection authenticates.
func NewSession(conn *websocket.Conn) *Session {
	return &Session{conn: conn}
}

// Send writes one JSON frame to the session's connection
func (s *Session) Send(msg interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(msg)
}

/**
 * SessionRegistry maps authenticated identities to their live sessions.
 * It is the fan-out table for broadcasts.
 */
type SessionRegistry struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

// NewSessionRegistry creates an empty session registry
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*Session),
	}
}

// Register inserts or overwrites the session for an identity.
// A second login under the same identity replaces the mapping entry
// (last writer wins); the prior connection is left open and simply stops
// receiving broadcasts.
func (sr *SessionRegistry) Register(session *Session) {
	sr.mutex.Lock()
	defer sr.mutex.Unlock()

	if _, exists := sr.sessions[session.Identity]; exists {
		utils.LogDebug("Session for %s replaced by a newer connection", session.Identity)
	}
	sr.sessions[session.Identity] = session

	SessionsConnected.Set(float64(len(sr.sessions)))
}

// Remove deletes the mapping for an identity, but only if it still points
// at the given session. A stale connection closing must not evict the
// session that replaced it.
func (sr *SessionRegistry) Remove(session *Session) {
	sr.mutex.Lock()
	defer sr.mutex.Unlock()

	if current, exists := sr.sessions[session.Identity]; exists && current == session {
		delete(sr.sessions, session.Identity)
	}

	SessionsConnected.Set(float64(len(sr.sessions)))
}

// Get retrieves the session for an identity
func (sr *SessionRegistry) Get(identity string) (*Session, bool) {
	sr.mutex.RLock()
	defer sr.mutex.RUnlock()

	session, exists := sr.sessions[identity]
	return session, exists
}

// Count returns the number of registered sessions
func (sr *SessionRegistry) Count() int {
	sr.mutex.RLock()
	defer sr.mutex.RUnlock()

	return len(sr.sessions)
}

/**
 * Broadcast sends a message to every registered session.
 * When includeSender is true the sender's own session receives the echo as
 * well; block broadcasts rely on that. A failed send is logged and skipped
 * so one broken peer cannot stall delivery to the others; cleanup is left
 * to the failed session's own read loop.
 */
func (sr *SessionRegistry) Broadcast(msg interface{}, includeSender bool, sender string) {
	for _, session := range sr.snapshot() {
		if !includeSender && session.Identity == sender {
			continue
		}
		if err := session.Send(msg); err != nil {
			utils.LogError("Error broadcasting to %s: %v", session.Identity, err)
			continue
		}
		BroadcastMessages.Inc()
	}
}

// ForEachExcept runs fn on every registered session except the sender's
func (sr *SessionRegistry) ForEachExcept(sender string, fn func(*Session)) {
	for _, session := range sr.snapshot() {
		if session.Identity == sender {
			continue
		}
		fn(session)
	}
}

// snapshot copies the session table so sends happen outside the lock
func (sr *SessionRegistry) snapshot() []*Session {
	sr.mutex.RLock()
	defer sr.mutex.RUnlock()

	sessions := make([]*Session, 0, len(sr.sessions))
	for _, session := range sr.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}
