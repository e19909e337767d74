package app_test

import (
	"context"
	"errors"
	"testing"

	"quiz-widget-service/internal/app"
	"quiz-widget-service/internal/domain"
	"quiz-widget-service/internal/infra/memory"
)

func newTestCatalog() *app.CatalogService {
	q := func(title string) domain.QuizDefinition {
		return domain.QuizDefinition{
			Title:     title,
			Questions: []domain.Question{{ID: 1, Text: "?", Options: []string{"a", "b"}, AnswerIndex: 0}},
		}
	}
	return app.NewCatalogService(memory.NewStaticCatalog(map[string]map[string]domain.QuizDefinition{
		"react": {
			"hooks":   q("React Hooks"),
			"context": q("Context API"),
			"state":   q("State management"),
		},
		"go": {"channels": q("Channels")},
	}), "")
}

func TestTopicFallsBackToDefault(t *testing.T) {
	catalog := newTestCatalog()
	if got := catalog.Topic(""); got != app.DefaultTopic {
		t.Fatalf("expected default topic, got %q", got)
	}
	if got := catalog.Topic("../go"); got != "go" {
		t.Fatalf("expected sanitised topic, got %q", got)
	}
}

func TestListQuizzesFiltersByQuery(t *testing.T) {
	catalog := newTestCatalog()
	ctx := context.Background()

	all, err := catalog.ListQuizzes(ctx, "", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 react quizzes, got %d", len(all))
	}

	hits, err := catalog.ListQuizzes(ctx, "react", "hook")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "hooks" {
		t.Fatalf("expected hooks only, got %+v", hits)
	}
}

func TestLoadQuizSetsID(t *testing.T) {
	catalog := newTestCatalog()
	def, err := catalog.LoadQuiz(context.Background(), "channels", "go")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if def.ID != "channels" {
		t.Fatalf("expected id set from key, got %q", def.ID)
	}
	if _, err := catalog.LoadQuiz(context.Background(), "$$$", "go"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found for empty id, got %v", err)
	}
}

func TestInvalidQuizzesAreRejected(t *testing.T) {
	catalog := app.NewCatalogService(memory.NewStaticCatalog(map[string]map[string]domain.QuizDefinition{
		"react": {
			"good":         {Title: "Good", Questions: []domain.Question{{ID: 1, Text: "?", Options: []string{"a", "b"}, AnswerIndex: 1}}},
			"out-of-range": {Title: "Bad answer", Questions: []domain.Question{{ID: 1, Text: "?", Options: []string{"a", "b"}, AnswerIndex: 5}}},
			"one-option":   {Title: "One option", Questions: []domain.Question{{ID: 1, Text: "?", Options: []string{"a"}, AnswerIndex: 0}}},
		},
	}), "")
	ctx := context.Background()

	quizzes, err := catalog.ListQuizzes(ctx, "react", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quizzes) != 1 || quizzes[0].ID != "good" {
		t.Fatalf("expected only the valid quiz listed, got %+v", quizzes)
	}
	for _, id := range []string{"out-of-range", "one-option"} {
		if _, err := catalog.LoadQuiz(ctx, id, "react"); !errors.Is(err, domain.ErrInvalidQuiz) {
			t.Fatalf("%s: expected invalid quiz, got %v", id, err)
		}
	}
}
