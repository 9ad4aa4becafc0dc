package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/connorrli/cs1531-Project-Backend-sub000/internal/app"
	"github.com/connorrli/cs1531-Project-Backend-sub000/internal/domain"
)

// Handler binds the session service to a JSON HTTP API.
type Handler struct {
	service *app.SessionService
}

func NewHandler(service *app.SessionService) *Handler {
	return &Handler{service: service}
}

// Register installs the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/quizzes/{quizId}/sessions", h.startSession)
	mux.HandleFunc("PUT /v1/sessions/{sessionId}/action", h.applyAction)
	mux.HandleFunc("GET /v1/sessions/{sessionId}/status", h.sessionStatus)
	mux.HandleFunc("GET /v1/sessions/{sessionId}/results", h.finalResults)
	mux.HandleFunc("POST /v1/sessions/{sessionId}/players", h.joinSession)
	mux.HandleFunc("GET /v1/players/{playerId}/questions/{position}", h.questionInfo)
	mux.HandleFunc("PUT /v1/players/{playerId}/questions/{position}/answer", h.submitAnswer)
	mux.HandleFunc("GET /v1/players/{playerId}/questions/{position}/results", h.questionResults)
	mux.HandleFunc("GET /v1/players/{playerId}/results", h.finalResultsByPlayer)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AutoStartNum int `json:"autoStartNum"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	sessionID, err := h.service.StartSession(r.Context(), r.PathValue("quizId"), req.AutoStartNum)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"sessionId": sessionID})
}

func (h *Handler) applyAction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.service.ApplyAction(r.Context(), r.PathValue("sessionId"), req.Action); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *Handler) sessionStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.PathValue("sessionId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) finalResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.FinalResults(r.PathValue("sessionId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) joinSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	playerID, err := h.service.Join(r.Context(), r.PathValue("sessionId"), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"playerId": playerID})
}

func (h *Handler) questionInfo(w http.ResponseWriter, r *http.Request) {
	position, ok := parsePosition(w, r)
	if !ok {
		return
	}

	info, err := h.service.QuestionInfo(r.PathValue("playerId"), position)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	position, ok := parsePosition(w, r)
	if !ok {
		return
	}

	var req struct {
		AnswerIDs []string `json:"answerIds"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.service.SubmitAnswer(r.Context(), r.PathValue("playerId"), position, req.AnswerIDs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *Handler) questionResults(w http.ResponseWriter, r *http.Request) {
	position, ok := parsePosition(w, r)
	if !ok {
		return
	}

	results, err := h.service.QuestionResults(r.PathValue("playerId"), position)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) finalResultsByPlayer(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.FinalResultsByPlayer(r.PathValue("playerId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func parsePosition(w http.ResponseWriter, r *http.Request) (int, bool) {
	position, err := strconv.Atoi(r.PathValue("position"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("question position must be a number"))
		return 0, false
	}
	return position, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorBody(err.Error()))
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrPlayerNotFound),
		errors.Is(err, domain.ErrQuizNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrWrongState),
		errors.Is(err, domain.ErrWrongQuestionPosition),
		errors.Is(err, domain.ErrDuplicateName),
		errors.Is(err, domain.ErrInvalidAnswerSelection),
		errors.Is(err, domain.ErrNoQuestions),
		errors.Is(err, domain.ErrTooManySessions),
		errors.Is(err, domain.ErrAutoStartTooHigh):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
