package domain

// State is the lifecycle phase of a running session.
type State string

const (
	StateLobby             State = "LOBBY"
	StateQuestionCountdown State = "QUESTION_COUNTDOWN"
	StateQuestionOpen      State = "QUESTION_OPEN"
	StateQuestionClose     State = "QUESTION_CLOSE"
	StateAnswerShow        State = "ANSWER_SHOW"
	StateFinalResults      State = "FINAL_RESULTS"
	StateEnd               State = "END"
)

// Action is an administrator command requesting a session transition.
type Action string

const (
	ActionNextQuestion     Action = "NEXT_QUESTION"
	ActionSkipCountdown    Action = "SKIP_COUNTDOWN"
	ActionGoToAnswer       Action = "GO_TO_ANSWER"
	ActionGoToFinalResults Action = "GO_TO_FINAL_RESULTS"
	ActionEnd              Action = "END"
)

// ParseAction converts a wire string into an Action. Unknown strings are
// rejected with ErrInvalidTransition so callers never dispatch on raw input.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionNextQuestion, ActionSkipCountdown, ActionGoToAnswer, ActionGoToFinalResults, ActionEnd:
		return a, nil
	}
	return "", ErrInvalidTransition
}

// Answer is one selectable option of a question.
type Answer struct {
	ID      string `json:"answerId"`
	Text    string `json:"answer"`
	Colour  string `json:"colour"`
	Correct bool   `json:"correct"`
}

// Question models a timed MCQ question. One or more answers may be correct;
// a submission scores only when it matches the correct set exactly.
type Question struct {
	ID       string   `json:"questionId"`
	Prompt   string   `json:"question"`
	Duration int      `json:"duration"` // seconds the question stays open
	Points   int      `json:"points"`
	MediaURL string   `json:"thumbnailUrl,omitempty"`
	Answers  []Answer `json:"answers"`
}

// CorrectAnswerIDs returns the set of answer IDs flagged correct.
func (q Question) CorrectAnswerIDs() map[string]struct{} {
	ids := make(map[string]struct{})
	for _, a := range q.Answers {
		if a.Correct {
			ids[a.ID] = struct{}{}
		}
	}
	return ids
}

// Quiz is a collection of questions.
type Quiz struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}

// NotAnswered marks a player's timeTaken slot for a question they have not
// answered yet.
const NotAnswered int64 = -1

// Player is one participant of a session. Points and TimeTaken are indexed
// by question position minus one and always span every question of the quiz.
type Player struct {
	ID        string  `json:"playerId"`
	Name      string  `json:"name"`
	Points    []int   `json:"points"`
	TimeTaken []int64 `json:"timeTaken"` // milliseconds, NotAnswered if unanswered
}

// Session is the mutable record of one running quiz. Questions are copied
// from the quiz at start time, so editing or deleting the quiz afterwards
// never affects a session already in flight.
type Session struct {
	ID           string     `json:"sessionId"`
	QuizID       string     `json:"quizId"`
	State        State      `json:"state"`
	AtQuestion   int        `json:"atQuestion"` // 1-indexed, 0 while in the lobby
	AutoStartNum int        `json:"autoStartNum"`
	Players      []Player   `json:"players"`
	Questions    []Question `json:"questions"`
	OpenedAtMs   int64      `json:"openedAtMs"` // wall clock when the current question opened
}

// CurrentQuestion returns the question at AtQuestion, or false when the
// session has not advanced past the lobby.
func (s Session) CurrentQuestion() (Question, bool) {
	if s.AtQuestion < 1 || s.AtQuestion > len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.AtQuestion-1], true
}
