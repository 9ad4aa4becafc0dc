package app

import (
	"context"

	"github.com/connorrli/cs1531-Project-Backend-sub000/internal/domain"
)

// SubmitAnswer records a player's answer selection for the currently open
// question. Resubmitting replaces the earlier answer outright; only the
// latest selection and its timing count.
func (s *SessionService) SubmitAnswer(ctx context.Context, playerID string, position int, answerIDs []string) error {
	sess, ok := s.sessions.GetByPlayer(playerID)
	if !ok {
		return domain.ErrPlayerNotFound
	}

	sess.mu.Lock()
	d := &sess.data

	if d.AtQuestion != position {
		sess.mu.Unlock()
		return domain.ErrWrongQuestionPosition
	}
	if d.State != domain.StateQuestionOpen {
		sess.mu.Unlock()
		return domain.ErrWrongState
	}

	q, _ := d.CurrentQuestion()
	submitted, err := validateSelection(q, answerIDs)
	if err != nil {
		sess.mu.Unlock()
		return err
	}

	idx := -1
	for i := range d.Players {
		if d.Players[i].ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		sess.mu.Unlock()
		return domain.ErrPlayerNotFound
	}

	elapsed := s.now().UnixMilli() - d.OpenedAtMs
	d.Players[idx].TimeTaken[position-1] = elapsed

	points := 0
	if matchesCorrectSet(q, submitted) {
		points = q.Points
	}
	d.Players[idx].Points[position-1] = points

	view := sess.viewLocked()
	sess.mu.Unlock()

	s.saveSnapshot(ctx, view)
	return nil
}

// validateSelection rejects an empty selection, an ID outside the
// question's answers, or a duplicated ID. It returns the selection as a set.
func validateSelection(q domain.Question, answerIDs []string) (map[string]struct{}, error) {
	if len(answerIDs) == 0 {
		return nil, domain.ErrInvalidAnswerSelection
	}

	known := make(map[string]struct{}, len(q.Answers))
	for _, a := range q.Answers {
		known[a.ID] = struct{}{}
	}

	submitted := make(map[string]struct{}, len(answerIDs))
	for _, id := range answerIDs {
		if _, ok := known[id]; !ok {
			return nil, domain.ErrInvalidAnswerSelection
		}
		if _, dup := submitted[id]; dup {
			return nil, domain.ErrInvalidAnswerSelection
		}
		submitted[id] = struct{}{}
	}
	return submitted, nil
}

// matchesCorrectSet reports whether the submitted set equals exactly the
// question's correct-answer set. There is no partial credit.
func matchesCorrectSet(q domain.Question, submitted map[string]struct{}) bool {
	correct := q.CorrectAnswerIDs()
	if len(correct) != len(submitted) {
		return false
	}
	for id := range correct {
		if _, ok := submitted[id]; !ok {
			return false
		}
	}
	return true
}
