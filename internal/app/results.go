package app

import (
	"sort"

	"github.com/connorrli/cs1531-Project-Backend-sub000/internal/domain"
)

// QuestionResults returns the aggregated outcome of the current question
// for a player's session. Results are only visible while the answer is
// being shown.
func (s *SessionService) QuestionResults(playerID string, position int) (domain.QuestionResults, error) {
	sess, ok := s.sessions.GetByPlayer(playerID)
	if !ok {
		return domain.QuestionResults{}, domain.ErrPlayerNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	d := &sess.data

	if d.AtQuestion != position {
		return domain.QuestionResults{}, domain.ErrWrongQuestionPosition
	}
	if d.State != domain.StateAnswerShow {
		return domain.QuestionResults{}, domain.ErrWrongState
	}

	return questionResults(d, position), nil
}

// FinalResults returns the final scoreboard of a session, by session ID.
func (s *SessionService) FinalResults(sessionID string) (domain.FinalResults, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.FinalResults{}, domain.ErrSessionNotFound
	}
	return finalResultsOf(sess)
}

// FinalResultsByPlayer returns the final scoreboard of the session a
// player belongs to.
func (s *SessionService) FinalResultsByPlayer(playerID string) (domain.FinalResults, error) {
	sess, ok := s.sessions.GetByPlayer(playerID)
	if !ok {
		return domain.FinalResults{}, domain.ErrPlayerNotFound
	}
	return finalResultsOf(sess)
}

func finalResultsOf(sess *Session) (domain.FinalResults, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	d := &sess.data

	if d.State != domain.StateFinalResults {
		return domain.FinalResults{}, domain.ErrWrongState
	}

	ranked := make([]domain.RankedPlayer, len(d.Players))
	for i, p := range d.Players {
		total := 0
		for _, pts := range p.Points {
			total += pts
		}
		ranked[i] = domain.RankedPlayer{Name: p.Name, Score: total}
	}
	// Stable: tied players keep their join order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	results := make([]domain.QuestionResults, len(d.Questions))
	for pos := 1; pos <= len(d.Questions); pos++ {
		results[pos-1] = questionResults(d, pos)
	}

	return domain.FinalResults{
		UsersRankedByScore: ranked,
		QuestionResults:    results,
	}, nil
}

// questionResults computes the per-question aggregate. The average answer
// time divides the answered players' total time by the full player count,
// so players who never answered dilute the average.
func questionResults(d *domain.Session, position int) domain.QuestionResults {
	q := d.Questions[position-1]

	correct := make([]string, 0, len(d.Players))
	var totalMs int64
	for _, p := range d.Players {
		if p.Points[position-1] > 0 {
			correct = append(correct, p.Name)
		}
		if t := p.TimeTaken[position-1]; t != domain.NotAnswered {
			totalMs += t
		}
	}
	sort.Strings(correct)

	res := domain.QuestionResults{
		QuestionID:         q.ID,
		PlayersCorrectList: correct,
	}
	if n := len(d.Players); n > 0 {
		res.AverageAnswerTime = int(totalMs / int64(n*1000))
		res.PercentCorrect = len(correct) * 100 / n
	}
	return res
}
