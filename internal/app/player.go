package app

import (
	"context"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/connorrli/cs1531-Project-Backend-sub000/internal/domain"
)

// Join admits a player into a session's lobby and returns the player ID.
// A blank name gets a generated one. When the lobby reaches the session's
// auto-start threshold the session advances to its first question as if
// the administrator had requested it.
func (s *SessionService) Join(ctx context.Context, sessionID, name string) (string, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return "", domain.ErrSessionNotFound
	}

	sess.mu.Lock()
	d := &sess.data

	if d.State != domain.StateLobby {
		sess.mu.Unlock()
		return "", domain.ErrWrongState
	}

	if name == "" {
		for {
			name = randomPlayerName()
			if !nameTakenLocked(d, name) {
				break
			}
		}
	} else if nameTakenLocked(d, name) {
		sess.mu.Unlock()
		return "", domain.ErrDuplicateName
	}

	player := domain.Player{
		ID:        uuid.NewString(),
		Name:      name,
		Points:    make([]int, len(d.Questions)),
		TimeTaken: make([]int64, len(d.Questions)),
	}
	for i := range player.TimeTaken {
		player.TimeTaken[i] = domain.NotAnswered
	}
	d.Players = append(d.Players, player)

	sess.broadcastLocked(domain.SessionEvent{
		Type:       domain.EventPlayerJoined,
		SessionID:  d.ID,
		State:      d.State,
		AtQuestion: d.AtQuestion,
		PlayerName: name,
	})

	if d.AutoStartNum > 0 && len(d.Players) == d.AutoStartNum {
		// Cannot fail from LOBBY with questions remaining.
		_ = s.applyLocked(sess, domain.ActionNextQuestion)
	}

	view := sess.viewLocked()
	sess.mu.Unlock()

	s.sessions.IndexPlayer(player.ID, sessionID)
	s.saveSnapshot(ctx, view)
	return player.ID, nil
}

// QuestionInfo returns the current question as shown to a player, with the
// correctness flags stripped.
func (s *SessionService) QuestionInfo(playerID string, position int) (domain.QuestionInfo, error) {
	sess, ok := s.sessions.GetByPlayer(playerID)
	if !ok {
		return domain.QuestionInfo{}, domain.ErrPlayerNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	d := &sess.data

	if d.AtQuestion != position {
		return domain.QuestionInfo{}, domain.ErrWrongQuestionPosition
	}
	switch d.State {
	case domain.StateLobby, domain.StateQuestionCountdown, domain.StateEnd:
		return domain.QuestionInfo{}, domain.ErrWrongState
	}

	q, ok := d.CurrentQuestion()
	if !ok {
		return domain.QuestionInfo{}, domain.ErrWrongQuestionPosition
	}

	info := domain.QuestionInfo{
		QuestionID: q.ID,
		Prompt:     q.Prompt,
		Duration:   q.Duration,
		Points:     q.Points,
		MediaURL:   q.MediaURL,
		Answers:    make([]domain.AnswerInfo, len(q.Answers)),
	}
	for i, a := range q.Answers {
		info.Answers[i] = domain.AnswerInfo{ID: a.ID, Text: a.Text, Colour: a.Colour}
	}
	return info, nil
}

func nameTakenLocked(d *domain.Session, name string) bool {
	for _, p := range d.Players {
		if p.Name == name {
			return true
		}
	}
	return false
}

// randomPlayerName builds a readable name of five distinct letters followed
// by three distinct digits, e.g. "kzptw481".
func randomPlayerName() string {
	letters := []byte("abcdefghijklmnopqrstuvwxyz")
	digits := []byte("0123456789")
	rand.Shuffle(len(letters), func(i, j int) { letters[i], letters[j] = letters[j], letters[i] })
	rand.Shuffle(len(digits), func(i, j int) { digits[i], digits[j] = digits[j], digits[i] })

	var b strings.Builder
	b.Write(letters[:5])
	b.Write(digits[:3])
	return b.String()
}
