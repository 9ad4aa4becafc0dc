package app

import (
	"sync"
	"time"
)

// Scheduler schedules a single cancellable delayed callback per session.
// The session state machine is responsible for cancelling a pending handle
// before scheduling a new one; the scheduler only guarantees that a
// cancelled handle never fires and that Cancel is idempotent. fn receives
// its own handle, so the callback never reads state the caller assigns
// after Schedule returns.
type Scheduler interface {
	Schedule(sessionID string, delay time.Duration, fn func(*TimerHandle)) *TimerHandle
	Cancel(h *TimerHandle)
}

// TimerHandle is one scheduled callback. Once cancelled or fired it is
// spent; it cannot be reused or rearmed.
type TimerHandle struct {
	sessionID string

	mu    sync.Mutex
	spent bool
	timer *time.Timer
}

// SessionID reports the session the handle was scheduled for.
func (h *TimerHandle) SessionID() string { return h.sessionID }

// TimerScheduler runs callbacks on real timers. It keeps an arena of the
// pending handle per session so tests and invariant checks can observe
// that no session ever has more than one outstanding timer.
type TimerScheduler struct {
	mu      sync.Mutex
	pending map[string]*TimerHandle
}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{pending: make(map[string]*TimerHandle)}
}

// Schedule arms a timer that invokes fn once after delay, unless the
// returned handle is cancelled first. The handle is fully built before the
// timer is armed, so fn observes it even when the delay is zero.
func (s *TimerScheduler) Schedule(sessionID string, delay time.Duration, fn func(*TimerHandle)) *TimerHandle {
	h := &TimerHandle{sessionID: sessionID}

	s.mu.Lock()
	s.pending[sessionID] = h
	s.mu.Unlock()

	h.mu.Lock()
	h.timer = time.AfterFunc(delay, func() {
		h.mu.Lock()
		if h.spent {
			h.mu.Unlock()
			return
		}
		h.spent = true
		h.mu.Unlock()

		s.forget(h)
		fn(h)
	})
	h.mu.Unlock()

	return h
}

// Cancel stops the handle before it fires. Cancelling a nil, already
// cancelled, or already fired handle is a no-op.
func (s *TimerScheduler) Cancel(h *TimerHandle) {
	if h == nil {
		return
	}

	h.mu.Lock()
	if h.spent {
		h.mu.Unlock()
		return
	}
	h.spent = true
	h.timer.Stop()
	h.mu.Unlock()

	s.forget(h)
}

// Pending returns the live handle for a session, if any.
func (s *TimerScheduler) Pending(sessionID string) (*TimerHandle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.pending[sessionID]
	return h, ok
}

// forget drops h from the arena unless a newer handle replaced it.
func (s *TimerScheduler) forget(h *TimerHandle) {
	s.mu.Lock()
	if s.pending[h.sessionID] == h {
		delete(s.pending, h.sessionID)
	}
	s.mu.Unlock()
}
