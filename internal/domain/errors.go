package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no session exists for the given ID.
	ErrSessionNotFound = errors.New("session not found")
	// ErrPlayerNotFound is returned when no session contains the given player.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidTransition covers an unknown action string or an action that
	// is not legal from the session's current state.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrWrongState is returned when an operation is attempted in a session
	// state that does not permit it.
	ErrWrongState = errors.New("operation not allowed in current session state")
	// ErrWrongQuestionPosition is returned when a player targets a question
	// position other than the session's current one.
	ErrWrongQuestionPosition = errors.New("question position is not the current question")
	// ErrDuplicateName is returned when a joining player's name is taken.
	ErrDuplicateName = errors.New("player name already in use")
	// ErrInvalidAnswerSelection covers empty, unknown, or duplicated answer IDs.
	ErrInvalidAnswerSelection = errors.New("invalid answer selection")
	// ErrNoQuestions rejects starting a session from a quiz with no questions.
	ErrNoQuestions = errors.New("quiz has no questions")
	// ErrTooManySessions rejects starting a session when the quiz already has
	// the maximum number of sessions that are not in the END state.
	ErrTooManySessions = errors.New("too many active sessions for quiz")
	// ErrAutoStartTooHigh rejects an auto-start threshold above the limit.
	ErrAutoStartTooHigh = errors.New("autoStartNum exceeds the allowed maximum")
)
