package memory

import (
	"testing"

	"github.com/connorrli/cs1531-Project-Backend-sub000/internal/app"
	"github.com/connorrli/cs1531-Project-Backend-sub000/internal/domain"
)

func TestSessionStoreLookup(t *testing.T) {
	store := NewSessionStore()

	sess := app.NewSession(domain.Session{ID: "sess-1", QuizID: "quiz-1", State: domain.StateLobby})
	store.Put(sess)

	got, ok := store.Get("sess-1")
	if !ok || got != sess {
		t.Fatalf("expected session back, got %v (ok=%v)", got, ok)
	}
	if _, ok := store.Get("sess-2"); ok {
		t.Fatalf("unexpected session for unknown id")
	}
}

func TestSessionStorePlayerIndex(t *testing.T) {
	store := NewSessionStore()

	sess := app.NewSession(domain.Session{ID: "sess-1", QuizID: "quiz-1", State: domain.StateLobby})
	store.Put(sess)

	if _, ok := store.GetByPlayer("p1"); ok {
		t.Fatalf("player resolved before being indexed")
	}

	store.IndexPlayer("p1", "sess-1")
	got, ok := store.GetByPlayer("p1")
	if !ok || got != sess {
		t.Fatalf("expected session via player index, got %v (ok=%v)", got, ok)
	}

	store.IndexPlayer("p2", "sess-gone")
	if _, ok := store.GetByPlayer("p2"); ok {
		t.Fatalf("player indexed to a missing session should not resolve")
	}
}

func TestSessionStorePutIfActiveUnder(t *testing.T) {
	store := NewSessionStore()

	for _, id := range []string{"s1", "s2", "s3"} {
		sess := app.NewSession(domain.Session{ID: id, QuizID: "quiz-1", State: domain.StateLobby})
		if !store.PutIfActiveUnder(sess, 3) {
			t.Fatalf("insert %s rejected below cap", id)
		}
	}

	extra := app.NewSession(domain.Session{ID: "s4", QuizID: "quiz-1", State: domain.StateLobby})
	if store.PutIfActiveUnder(extra, 3) {
		t.Fatalf("insert accepted at cap")
	}
	if _, ok := store.Get("s4"); ok {
		t.Fatalf("rejected session was stored")
	}

	// An ended session no longer counts against the cap.
	store.Put(app.NewSession(domain.Session{ID: "s1", QuizID: "quiz-1", State: domain.StateEnd}))
	if !store.PutIfActiveUnder(extra, 3) {
		t.Fatalf("ended session still holds a slot")
	}

	// Other quizzes have their own budget.
	other := app.NewSession(domain.Session{ID: "s5", QuizID: "quiz-2", State: domain.StateLobby})
	if !store.PutIfActiveUnder(other, 3) {
		t.Fatalf("cap leaked across quizzes")
	}
}

func TestSessionStoreCountActive(t *testing.T) {
	store := NewSessionStore()

	store.Put(app.NewSession(domain.Session{ID: "s1", QuizID: "quiz-1", State: domain.StateLobby}))
	store.Put(app.NewSession(domain.Session{ID: "s2", QuizID: "quiz-1", State: domain.StateQuestionOpen}))
	store.Put(app.NewSession(domain.Session{ID: "s3", QuizID: "quiz-1", State: domain.StateEnd}))
	store.Put(app.NewSession(domain.Session{ID: "s4", QuizID: "quiz-2", State: domain.StateLobby}))

	if n := store.CountActive("quiz-1"); n != 2 {
		t.Fatalf("expected 2 active sessions for quiz-1, got %d", n)
	}
	if n := store.CountActive("quiz-2"); n != 1 {
		t.Fatalf("expected 1 active session for quiz-2, got %d", n)
	}
	if n := store.CountActive("quiz-3"); n != 0 {
		t.Fatalf("expected 0 sessions for quiz-3, got %d", n)
	}
}
