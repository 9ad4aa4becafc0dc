package memory

import (
	"sync"

	"github.com/connorrli/cs1531-Project-Backend-sub000/internal/app"
	"github.com/connorrli/cs1531-Project-Backend-sub000/internal/domain"
)

// SessionStore is the in-memory implementation of app.SessionStore. It is
// the single owner of every live session record and of the player index
// used by player-facing operations.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
	players  map[string]string // playerID -> sessionID
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Session),
		players:  make(map[string]string),
	}
}

func (s *SessionStore) Put(sess *app.Session) {
	view := sess.View()
	s.mu.Lock()
	s.sessions[view.ID] = sess
	s.mu.Unlock()
}

// PutIfActiveUnder inserts sess only while its quiz has fewer than max
// sessions that are not ended. Counting and inserting share the write lock,
// so concurrent starts cannot both slip under the cap.
func (s *SessionStore) PutIfActiveUnder(sess *app.Session, max int) bool {
	view := sess.View()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.countActiveLocked(view.QuizID) >= max {
		return false
	}
	s.sessions[view.ID] = sess
	return true
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	return sess, ok
}

func (s *SessionStore) GetByPlayer(playerID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessionID, ok := s.players[playerID]
	if !ok {
		return nil, false
	}
	sess, ok := s.sessions[sessionID]
	return sess, ok
}

func (s *SessionStore) IndexPlayer(playerID, sessionID string) {
	s.mu.Lock()
	s.players[playerID] = sessionID
	s.mu.Unlock()
}

// CountActive reports how many of a quiz's sessions have not ended.
func (s *SessionStore) CountActive(quizID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countActiveLocked(quizID)
}

func (s *SessionStore) countActiveLocked(quizID string) int {
	n := 0
	for _, sess := range s.sessions {
		if sess.QuizID() == quizID && sess.State() != domain.StateEnd {
			n++
		}
	}
	return n
}
