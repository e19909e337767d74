package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quiz-widget-service/internal/app"
	"quiz-widget-service/internal/domain"
	"quiz-widget-service/internal/infra/memory"
)

func newTestServices(t *testing.T) Services {
	t.Helper()
	return newServicesWithStore(memory.NewScoreStore(0))
}

func newServicesWithStore(store app.ScoreStore) Services {
	scores := app.NewScoreService(store, nil)
	catalog := app.NewCatalogService(memory.NewStaticCatalog(map[string]map[string]domain.QuizDefinition{
		"react": {
			"quiz-1": {
				Title: "Basics",
				Questions: []domain.Question{
					{ID: 1, Text: "Pick Right", Options: []string{"Wrong", "Right", "Nope"}, AnswerIndex: 1},
					{ID: 2, Text: "Pick Right again", Options: []string{"Right", "Wrong"}, AnswerIndex: 0},
				},
			},
		},
	}), "react")
	play := app.NewPlayService(memory.NewSessionStore(), catalog, scores, time.Minute, nil)
	return Services{Scores: scores, Catalog: catalog, Play: play}
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSaveScoreAndStats(t *testing.T) {
	h := NewRouter(newTestServices(t), nil)

	for _, path := range []string{"/save-score", "/save-score.php"} {
		rec := do(t, h, http.MethodPost, path, `{"quizId":"hooks","score":3,"totalQuestions":4,"anonymousId":"anon_1"}`)
		if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"success":true}` {
			t.Fatalf("%s: unexpected response %d %s", path, rec.Code, rec.Body.String())
		}
	}

	rec := do(t, h, http.MethodGet, "/quiz-stats.php?quizId=hooks", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status %d", rec.Code)
	}
	var st domain.QuizStats
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if st.TotalAttempts != 2 || st.AverageScorePercent != 75 || st.HighScorePercent != 75 {
		t.Fatalf("unexpected stats %+v", st)
	}
	if !strings.Contains(rec.Body.String(), `"averageScore":75`) || !strings.Contains(rec.Body.String(), `"61-80":2`) {
		t.Fatalf("unexpected stats body %s", rec.Body.String())
	}
}

func TestSaveScoreValidation(t *testing.T) {
	h := NewRouter(newTestServices(t), nil)
	cases := []string{
		`{"score":1,"totalQuestions":1}`,
		`{"quizId":"q","totalQuestions":1}`,
		`{"quizId":"q","score":1}`,
		`{"quizId":"../..","score":1,"totalQuestions":1}`,
		`{"quizId":"q","score":7,"totalQuestions":4}`,
		`not json`,
	}
	for _, body := range cases {
		rec := do(t, h, http.MethodPost, "/save-score", body)
		if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Missing required fields") {
			t.Fatalf("%s: expected 400, got %d %s", body, rec.Code, rec.Body.String())
		}
	}

	// A zero score is present, not missing.
	rec := do(t, h, http.MethodPost, "/save-score", `{"quizId":"q","score":0,"totalQuestions":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected zero score accepted, got %d", rec.Code)
	}
}

type brokenStore struct{}

func (brokenStore) Append(context.Context, string, domain.ScoreRecord) error {
	return errors.New("read-only filesystem")
}

func (brokenStore) ReadAll(context.Context, string) ([]domain.ScoreRecord, error) {
	return nil, errors.New("read-only filesystem")
}

func TestScoreStoreFailures(t *testing.T) {
	h := NewRouter(newServicesWithStore(brokenStore{}), nil)

	rec := do(t, h, http.MethodPost, "/save-score", `{"quizId":"q","score":1,"totalQuestions":1}`)
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "Failed to save score") {
		t.Fatalf("expected 500, got %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodGet, "/quiz-stats?quizId=q", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for stats, got %d", rec.Code)
	}
}

func TestStatsRequiresQuizID(t *testing.T) {
	h := NewRouter(newTestServices(t), nil)
	rec := do(t, h, http.MethodGet, "/quiz-stats", "")
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Missing quizId parameter") {
		t.Fatalf("expected 400, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestStatsForUnknownQuizIsZeroed(t *testing.T) {
	h := NewRouter(newTestServices(t), nil)
	rec := do(t, h, http.MethodGet, "/quiz-stats?quizId=nobody-played", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"totalAttempts":0`) || !strings.Contains(body, `"recentScores":[]`) {
		t.Fatalf("expected zeroed stats, got %s", body)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := NewRouter(newTestServices(t), nil)
	rec := do(t, h, http.MethodGet, "/save-score", "")
	if rec.Code != http.StatusMethodNotAllowed || !strings.Contains(rec.Body.String(), "Method not allowed") {
		t.Fatalf("expected 405, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestCatalogEndpoints(t *testing.T) {
	h := NewRouter(newTestServices(t), nil)

	rec := do(t, h, http.MethodGet, "/quizzes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status %d", rec.Code)
	}
	var list quizList
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Topic != "react" || len(list.Quizzes) != 1 || list.Quizzes[0].QuestionCount != 2 {
		t.Fatalf("unexpected list %+v", list)
	}

	rec = do(t, h, http.MethodGet, "/quizzes/react/quiz-1", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"title":"Basics"`) {
		t.Fatalf("unexpected quiz response %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodGet, "/quizzes/react/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCatalogRejectsInvalidQuiz(t *testing.T) {
	catalog := app.NewCatalogService(memory.NewStaticCatalog(map[string]map[string]domain.QuizDefinition{
		"react": {
			"broken": {
				Title:     "Broken",
				Questions: []domain.Question{{ID: 1, Text: "?", Options: []string{"a", "b"}, AnswerIndex: 5}},
			},
		},
	}), "react")
	h := NewRouter(Services{Catalog: catalog}, nil)

	rec := do(t, h, http.MethodGet, "/quizzes/react/broken", "")
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), "Quiz is invalid") {
		t.Fatalf("expected 422 for invalid quiz, got %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodGet, "/quizzes?topic=react", "")
	if rec.Code != http.StatusOK || strings.Contains(rec.Body.String(), "broken") {
		t.Fatalf("expected invalid quiz left out of the listing, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	h := NewRouter(newTestServices(t), nil)
	req := httptest.NewRequest(http.MethodOptions, "/save-score.php", nil)
	req.Header.Set("Origin", "https://blog.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected open CORS, got %q", got)
	}
}
