package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quiz-widget-service/internal/app"
	"quiz-widget-service/internal/domain"
	"quiz-widget-service/internal/logger"
)

type CatalogHandler struct {
	catalog *app.CatalogService
	log     *logger.Logger
}

func NewCatalogHandler(catalog *app.CatalogService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: log}
}

type quizList struct {
	Topic   string                `json:"topic"`
	Quizzes []domain.QuizMetadata `json:"quizzes"`
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	topic := h.catalog.Topic(r.URL.Query().Get("topic"))
	quizzes, err := h.catalog.ListQuizzes(r.Context(), topic, r.URL.Query().Get("q"))
	if err != nil {
		h.log.Error("list quizzes failed", "topic", topic, "error", err)
		writeErr(w, http.StatusInternalServerError, "Failed to load quizzes")
		return
	}
	writeJSON(w, http.StatusOK, quizList{Topic: topic, Quizzes: quizzes})
}

func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "topic")
	quizID := chi.URLParam(r, "quizID")
	quiz, err := h.catalog.LoadQuiz(r.Context(), quizID, topic)
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		writeErr(w, http.StatusNotFound, "Quiz not found")
	case errors.Is(err, domain.ErrInvalidQuiz):
		h.log.Warn("invalid quiz document", "topic", topic, "quizId", quizID, "error", err)
		writeErr(w, http.StatusUnprocessableEntity, "Quiz is invalid")
	case err != nil:
		h.log.Error("load quiz failed", "topic", topic, "quizId", quizID, "error", err)
		writeErr(w, http.StatusInternalServerError, "Failed to load quiz")
	default:
		writeJSON(w, http.StatusOK, quiz)
	}
}
