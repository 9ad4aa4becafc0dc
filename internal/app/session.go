package app

import (
	"sync"

	"github.com/connorrli/cs1531-Project-Backend-sub000/internal/domain"
)

// Session is the live, lock-guarded record of one running quiz session.
// Every mutation step (administrator action, timer firing, player join,
// answer submission) runs to completion under mu, so no two steps for the
// same session ever interleave their reads and writes.
type Session struct {
	mu          sync.Mutex
	data        domain.Session
	timer       *TimerHandle
	subscribers map[chan domain.SessionEvent]struct{}
}

func NewSession(data domain.Session) *Session {
	return &Session{
		data:        data,
		subscribers: make(map[chan domain.SessionEvent]struct{}),
	}
}

// View returns a snapshot copy of the session record.
func (s *Session) View() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// State reports the session's current lifecycle state.
func (s *Session) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.State
}

// QuizID reports the quiz the session was started from.
func (s *Session) QuizID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.QuizID
}

func (s *Session) viewLocked() domain.Session {
	view := s.data
	view.Players = make([]domain.Player, len(s.data.Players))
	for i, p := range s.data.Players {
		cp := p
		cp.Points = append([]int(nil), p.Points...)
		cp.TimeTaken = append([]int64(nil), p.TimeTaken...)
		view.Players[i] = cp
	}
	// Questions are immutable after start, sharing the slice is safe.
	return view
}

// Subscribe returns a channel receiving session events. The caller must
// invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.SessionEvent, func()) {
	ch := make(chan domain.SessionEvent, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// broadcastLocked fans an event out to subscribers without blocking on
// slow consumers; a stale queued event is dropped to make room.
func (s *Session) broadcastLocked(ev domain.SessionEvent) {
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}
