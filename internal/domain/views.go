package domain

// AnswerInfo is the player-facing view of an answer. It deliberately omits
// the correctness flag.
type AnswerInfo struct {
	ID     string `json:"answerId"`
	Text   string `json:"answer"`
	Colour string `json:"colour"`
}

// QuestionInfo is the player-facing view of the current question.
type QuestionInfo struct {
	QuestionID string       `json:"questionId"`
	Prompt     string       `json:"question"`
	Duration   int          `json:"duration"`
	Points     int          `json:"points"`
	MediaURL   string       `json:"thumbnailUrl,omitempty"`
	Answers    []AnswerInfo `json:"answers"`
}

// QuestionResults captures the aggregated outcome of one question.
type QuestionResults struct {
	QuestionID         string   `json:"questionId"`
	PlayersCorrectList []string `json:"playersCorrectList"`
	AverageAnswerTime  int      `json:"averageAnswerTime"` // seconds
	PercentCorrect     int      `json:"percentCorrect"`
}

// RankedPlayer is one row of the final scoreboard.
type RankedPlayer struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// FinalResults is the complete outcome of a finished session.
type FinalResults struct {
	UsersRankedByScore []RankedPlayer    `json:"usersRankedByScore"`
	QuestionResults    []QuestionResults `json:"questionResults"`
}

// SessionStatus is the administrator-facing view of a session.
type SessionStatus struct {
	State      State    `json:"state"`
	AtQuestion int      `json:"atQuestion"`
	Players    []string `json:"players"`
}

// Session event types published to subscribers.
const (
	EventPlayerJoined = "playerJoined"
	EventStateChanged = "stateChanged"
)

// SessionEvent notifies subscribers of session activity.
type SessionEvent struct {
	Type       string `json:"type"`
	SessionID  string `json:"sessionId"`
	State      State  `json:"state"`
	AtQuestion int    `json:"atQuestion"`
	PlayerName string `json:"playerName,omitempty"`
}
