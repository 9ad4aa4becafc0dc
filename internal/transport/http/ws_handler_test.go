package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/connorrli/cs1531-Project-Backend-sub000/internal/app"
	"github.com/connorrli/cs1531-Project-Backend-sub000/internal/infra/memory"
)

func TestWebSocketEventFeed(t *testing.T) {
	service := app.NewSessionService(app.Config{
		Sessions: memory.NewSessionStore(),
		Quizzes:  memory.NewQuizRepository(memory.NewStaticQuizLoader(sampleQuizzes()), time.Minute),
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", NewWSHandler(service).ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	sessionID, err := service.StartSession(context.Background(), "quiz-1", 0)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	u := "ws" + server.URL[len("http"):] + "/v1/ws?sessionId=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The feed opens with a status snapshot.
	typ, payload := readNext(conn, t, "status")
	if typ != "status" || payload["state"] != "LOBBY" {
		t.Fatalf("expected LOBBY status, got %s %v", typ, payload)
	}

	if _, err := service.Join(context.Background(), sessionID, "Alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	_, payload = readNext(conn, t, "playerJoined")
	if payload["playerName"] != "Alice" {
		t.Fatalf("expected Alice join event, got %v", payload)
	}

	if err := service.ApplyAction(context.Background(), sessionID, "NEXT_QUESTION"); err != nil {
		t.Fatalf("next question: %v", err)
	}
	_, payload = readNext(conn, t, "stateChanged")
	if payload["state"] != "QUESTION_COUNTDOWN" || payload["atQuestion"] != float64(1) {
		t.Fatalf("expected countdown event, got %v", payload)
	}
}

func TestWebSocketRejectsBadRequests(t *testing.T) {
	service := app.NewSessionService(app.Config{
		Sessions: memory.NewSessionStore(),
		Quizzes:  memory.NewQuizRepository(memory.NewStaticQuizLoader(sampleQuizzes()), time.Minute),
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", NewWSHandler(service).ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := http.Get(server.URL + "/v1/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing sessionId: status %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/v1/ws?sessionId=nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown session: status %d", resp.StatusCode)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
