package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"quiz-widget-service/internal/app"
	"quiz-widget-service/internal/domain"
	"quiz-widget-service/internal/logger"
)

type ScoreHandler struct {
	scores *app.ScoreService
	log    *logger.Logger
}

func NewScoreHandler(scores *app.ScoreService, log *logger.Logger) *ScoreHandler {
	return &ScoreHandler{scores: scores, log: log}
}

// saveScoreRequest uses pointers so a zero score is told apart from a missing one.
type saveScoreRequest struct {
	QuizID         *string `json:"quizId"`
	Score          *int    `json:"score"`
	TotalQuestions *int    `json:"totalQuestions"`
	Topic          string  `json:"topic"`
	QuizTitle      string  `json:"quizTitle"`
	AnonymousID    string  `json:"anonymousId"`
}

func (h *ScoreHandler) SaveScore(w http.ResponseWriter, r *http.Request) {
	var req saveScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.QuizID == nil || req.Score == nil || req.TotalQuestions == nil {
		writeErr(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	err := h.scores.SaveScore(r.Context(), domain.ScoreSubmission{
		QuizID:         *req.QuizID,
		Score:          *req.Score,
		TotalQuestions: *req.TotalQuestions,
		Topic:          req.Topic,
		QuizTitle:      req.QuizTitle,
		AnonymousID:    req.AnonymousID,
	})
	switch {
	case errors.Is(err, domain.ErrInvalidSubmission):
		writeErr(w, http.StatusBadRequest, "Missing required fields")
	case err != nil:
		h.log.Error("save score failed", "quizId", *req.QuizID, "error", err)
		writeErr(w, http.StatusInternalServerError, "Failed to save score")
	default:
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func (h *ScoreHandler) Stats(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		writeErr(w, http.StatusBadRequest, "Missing quizId parameter")
		return
	}
	st, err := h.scores.Stats(r.Context(), quizID)
	switch {
	case errors.Is(err, domain.ErrInvalidSubmission):
		writeErr(w, http.StatusBadRequest, "Missing quizId parameter")
	case err != nil:
		h.log.Error("quiz stats failed", "quizId", quizID, "error", err)
		writeErr(w, http.StatusInternalServerError, "Failed to fetch quiz statistics")
	default:
		writeJSON(w, http.StatusOK, st)
	}
}
