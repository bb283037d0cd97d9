package session

import (
	"container/list"
	"sync"

	"github.com/astrea-space/astrea/backend/pkg/ai"
)

// DefaultSessionID is used when a chat request carries no session id.
const DefaultSessionID = "default"

const defaultMaxSessions = 1000

// Store keeps ordered conversation turns per session id.
type Store interface {
	Append(sessionID string, turns ...ai.ChatMessage)
	Get(sessionID string) []ai.ChatMessage
}

type session struct {
	mu    sync.Mutex
	turns []ai.ChatMessage
	elem  *list.Element
}

// MemoryStore is an in-memory session store with per-session locking and
// an LRU cap on the number of live sessions. The least recently touched
// session is dropped when the cap is exceeded.
type MemoryStore struct {
	mu          sync.Mutex
	sessions    map[string]*session
	order       *list.List
	maxSessions int
}

// NewMemoryStore creates a session store holding at most maxSessions
// sessions. Non-positive values fall back to the default cap.
func NewMemoryStore(maxSessions int) *MemoryStore {
	if maxSessions <= 0 {
		maxSessions = defaultMaxSessions
	}
	return &MemoryStore{
		sessions:    make(map[string]*session),
		order:       list.New(),
		maxSessions: maxSessions,
	}
}

// touch returns the session for the given id, creating it if needed, and
// marks it most recently used. Called with s.mu held.
func (s *MemoryStore) touch(sessionID string) *session {
	if sess, ok := s.sessions[sessionID]; ok {
		s.order.MoveToFront(sess.elem)
		return sess
	}

	sess := &session{}
	sess.elem = s.order.PushFront(sessionID)
	s.sessions[sessionID] = sess

	for len(s.sessions) > s.maxSessions {
		oldest := s.order.Back()
		if oldest == nil {
			break
		}
		s.order.Remove(oldest)
		delete(s.sessions, oldest.Value.(string))
	}

	return sess
}

// Append adds turns to the end of a session's history in order.
func (s *MemoryStore) Append(sessionID string, turns ...ai.ChatMessage) {
	s.mu.Lock()
	sess := s.touch(sessionID)
	s.mu.Unlock()

	sess.mu.Lock()
	sess.turns = append(sess.turns, turns...)
	sess.mu.Unlock()
}

// Get returns a copy of the session's history in chronological order.
// Unknown sessions yield an empty history without creating state.
func (s *MemoryStore) Get(sessionID string) []ai.ChatMessage {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if ok {
		s.order.MoveToFront(sess.elem)
	}
	s.mu.Unlock()

	if !ok {
		return []ai.ChatMessage{}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]ai.ChatMessage, len(sess.turns))
	copy(out, sess.turns)
	return out
}
