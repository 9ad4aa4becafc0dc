package app

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/connorrli/cs1531-Project-Backend-sub000/internal/domain"
)

// SessionStore owns every live session record. Sessions are looked up by
// session ID or, for player-facing operations, via the player index.
// PutIfActiveUnder counts and inserts under one lock: two concurrent
// starts for the same quiz can never both slip under the cap.
type SessionStore interface {
	PutIfActiveUnder(sess *Session, max int) bool
	Get(sessionID string) (*Session, bool)
	GetByPlayer(playerID string) (*Session, bool)
	IndexPlayer(playerID, sessionID string)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// SnapshotStore persists a session record after every mutating step, so a
// restarted process can recover in-flight sessions.
type SnapshotStore interface {
	Save(ctx context.Context, sess domain.Session) error
}

// NopSnapshotStore discards snapshots. Used when no redis is configured.
type NopSnapshotStore struct{}

func (NopSnapshotStore) Save(context.Context, domain.Session) error { return nil }

const (
	// DefaultCountdown is the fixed delay between a question being
	// announced and it opening for answers.
	DefaultCountdown = 3 * time.Second
	// DefaultMaxActiveSessions caps sessions per quiz that are not ended.
	DefaultMaxActiveSessions = 10
	// DefaultMaxAutoStart caps the configurable auto-start threshold.
	DefaultMaxAutoStart = 50
)

// Config wires the session service's collaborators.
type Config struct {
	Sessions  SessionStore
	Quizzes   QuizRepository
	Snapshots SnapshotStore
	Scheduler Scheduler

	Countdown         time.Duration
	MaxActiveSessions int
	MaxAutoStart      int

	// Now overrides the clock, for deterministic tests.
	Now func() time.Time
}

// SessionService drives the session lifecycle. It is the only component
// that assigns a session's state or question pointer; player admission and
// answer recording go through it so every step shares one lock discipline.
type SessionService struct {
	sessions  SessionStore
	quizzes   QuizRepository
	snapshots SnapshotStore
	scheduler Scheduler

	countdown    time.Duration
	maxActive    int
	maxAutoStart int
	now          func() time.Time
}

func NewSessionService(c Config) *SessionService {
	s := &SessionService{
		sessions:     c.Sessions,
		quizzes:      c.Quizzes,
		snapshots:    c.Snapshots,
		scheduler:    c.Scheduler,
		countdown:    c.Countdown,
		maxActive:    c.MaxActiveSessions,
		maxAutoStart: c.MaxAutoStart,
		now:          c.Now,
	}
	if s.snapshots == nil {
		s.snapshots = NopSnapshotStore{}
	}
	if s.scheduler == nil {
		s.scheduler = NewTimerScheduler()
	}
	if s.countdown <= 0 {
		s.countdown = DefaultCountdown
	}
	if s.maxActive <= 0 {
		s.maxActive = DefaultMaxActiveSessions
	}
	if s.maxAutoStart <= 0 {
		s.maxAutoStart = DefaultMaxAutoStart
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// StartSession creates a session for a quiz in the LOBBY state. The quiz's
// questions are copied into the session, so the session is isolated from
// later quiz edits.
func (s *SessionService) StartSession(ctx context.Context, quizID string, autoStartNum int) (string, error) {
	if autoStartNum > s.maxAutoStart {
		return "", domain.ErrAutoStartTooHigh
	}

	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return "", err
	}
	if len(quiz.Questions) == 0 {
		return "", domain.ErrNoQuestions
	}

	sess := NewSession(domain.Session{
		ID:           uuid.NewString(),
		QuizID:       quizID,
		State:        domain.StateLobby,
		AutoStartNum: autoStartNum,
		Questions:    append([]domain.Question(nil), quiz.Questions...),
	})
	if !s.sessions.PutIfActiveUnder(sess, s.maxActive) {
		return "", domain.ErrTooManySessions
	}

	view := sess.View()
	s.saveSnapshot(ctx, view)
	return view.ID, nil
}

// ApplyAction validates and applies an administrator action. An invalid
// action leaves the session's state and any pending timer untouched.
func (s *SessionService) ApplyAction(ctx context.Context, sessionID, action string) error {
	act, err := domain.ParseAction(action)
	if err != nil {
		return err
	}

	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}

	sess.mu.Lock()
	err = s.applyLocked(sess, act)
	view := sess.viewLocked()
	sess.mu.Unlock()

	if err != nil {
		return err
	}
	s.saveSnapshot(ctx, view)
	return nil
}

// applyLocked is the transition table. Legality is checked before the
// pending timer is cancelled, so a rejected action never disturbs an
// in-flight countdown or question deadline.
func (s *SessionService) applyLocked(sess *Session, act domain.Action) error {
	d := &sess.data

	switch act {
	case domain.ActionNextQuestion:
		if d.State != domain.StateLobby && d.State != domain.StateQuestionClose && d.State != domain.StateAnswerShow {
			return domain.ErrInvalidTransition
		}
		if d.AtQuestion >= len(d.Questions) {
			return domain.ErrInvalidTransition
		}
		s.cancelTimerLocked(sess)
		d.AtQuestion++
		s.setStateLocked(sess, domain.StateQuestionCountdown)
		s.scheduleLocked(sess, s.countdown, domain.StateQuestionCountdown)

	case domain.ActionSkipCountdown:
		if d.State != domain.StateQuestionCountdown {
			return domain.ErrInvalidTransition
		}
		s.cancelTimerLocked(sess)
		s.openQuestionLocked(sess)

	case domain.ActionGoToAnswer:
		if d.State != domain.StateQuestionOpen && d.State != domain.StateQuestionClose {
			return domain.ErrInvalidTransition
		}
		s.cancelTimerLocked(sess)
		s.setStateLocked(sess, domain.StateAnswerShow)

	case domain.ActionGoToFinalResults:
		if d.State != domain.StateQuestionClose && d.State != domain.StateAnswerShow {
			return domain.ErrInvalidTransition
		}
		s.cancelTimerLocked(sess)
		s.setStateLocked(sess, domain.StateFinalResults)

	case domain.ActionEnd:
		s.cancelTimerLocked(sess)
		s.setStateLocked(sess, domain.StateEnd)

	default:
		return domain.ErrInvalidTransition
	}

	return nil
}

// openQuestionLocked moves the session into QUESTION_OPEN, records when the
// question opened, and arms the question-duration timer.
func (s *SessionService) openQuestionLocked(sess *Session) {
	s.setStateLocked(sess, domain.StateQuestionOpen)
	sess.data.OpenedAtMs = s.now().UnixMilli()

	q, ok := sess.data.CurrentQuestion()
	if !ok {
		return
	}
	s.scheduleLocked(sess, time.Duration(q.Duration)*time.Second, domain.StateQuestionOpen)
}

func (s *SessionService) setStateLocked(sess *Session, state domain.State) {
	sess.data.State = state
	sess.broadcastLocked(domain.SessionEvent{
		Type:       domain.EventStateChanged,
		SessionID:  sess.data.ID,
		State:      state,
		AtQuestion: sess.data.AtQuestion,
	})
}

func (s *SessionService) cancelTimerLocked(sess *Session) {
	if sess.timer != nil {
		s.scheduler.Cancel(sess.timer)
		sess.timer = nil
	}
}

// scheduleLocked arms the session's next deadline. The caller must have
// cancelled the previous timer already; both happen under the session lock,
// so cancel-and-reschedule is one atomic step relative to other mutations.
// The scheduler hands the callback its own handle; an immediate fire blocks
// on the session lock until this mutation step has assigned sess.timer.
func (s *SessionService) scheduleLocked(sess *Session, delay time.Duration, from domain.State) {
	id := sess.data.ID
	sess.timer = s.scheduler.Schedule(id, delay, func(h *TimerHandle) {
		s.timerFired(id, h, from)
	})
}

// timerFired re-enters the state machine when a deadline elapses. A stale
// handle (superseded or for a session that was since ended or removed) is
// a benign no-op.
func (s *SessionService) timerFired(sessionID string, h *TimerHandle, from domain.State) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}

	sess.mu.Lock()
	if sess.timer != h || sess.data.State != from {
		sess.mu.Unlock()
		return
	}
	sess.timer = nil

	switch from {
	case domain.StateQuestionCountdown:
		s.openQuestionLocked(sess)
	case domain.StateQuestionOpen:
		s.setStateLocked(sess, domain.StateQuestionClose)
	}
	view := sess.viewLocked()
	sess.mu.Unlock()

	s.saveSnapshot(context.Background(), view)
}

// Status returns the administrator view of a session.
func (s *SessionService) Status(sessionID string) (domain.SessionStatus, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionStatus{}, domain.ErrSessionNotFound
	}

	view := sess.View()
	names := make([]string, len(view.Players))
	for i, p := range view.Players {
		names[i] = p.Name
	}
	return domain.SessionStatus{
		State:      view.State,
		AtQuestion: view.AtQuestion,
		Players:    names,
	}, nil
}

// Subscribe returns a channel of session events for connected clients.
func (s *SessionService) Subscribe(sessionID string) (<-chan domain.SessionEvent, func(), error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := sess.Subscribe()
	return ch, cancel, nil
}

// saveSnapshot persists the session view. Snapshotting is best-effort and
// happens outside the session lock, after the mutation step completed.
func (s *SessionService) saveSnapshot(ctx context.Context, view domain.Session) {
	if err := s.snapshots.Save(ctx, view); err != nil {
		log.Printf("snapshot session %s: %v", view.ID, err)
	}
}
