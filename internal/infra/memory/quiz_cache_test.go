package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quiz-widget-service/internal/app"
	"quiz-widget-service/internal/domain"
)

func TestQuizCacheCaches(t *testing.T) {
	catalog := &countingCatalog{QuizCatalog: NewStaticCatalog(sampleTopics())}
	cache := NewQuizCache(catalog, time.Minute)

	if _, err := cache.LoadQuiz(context.Background(), "quiz-1", "react"); err != nil {
		t.Fatalf("load quiz: %v", err)
	}
	if _, err := cache.LoadQuiz(context.Background(), "quiz-1", "react"); err != nil {
		t.Fatalf("load quiz 2: %v", err)
	}
	if catalog.loads != 1 {
		t.Fatalf("expected cache hit, loader calls %d", catalog.loads)
	}

	list, err := cache.ListQuizzes(context.Background(), "react")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	_, _ = cache.ListQuizzes(context.Background(), "react")
	if catalog.lists != 1 || len(list) != 1 {
		t.Fatalf("expected one cached list of one quiz, got calls=%d len=%d", catalog.lists, len(list))
	}
}

func TestQuizCacheExpires(t *testing.T) {
	catalog := &countingCatalog{QuizCatalog: NewStaticCatalog(sampleTopics())}
	cache := NewQuizCache(catalog, time.Minute)
	now := time.Now()
	cache.clock = func() time.Time { return now }

	_, _ = cache.LoadQuiz(context.Background(), "quiz-1", "react")
	now = now.Add(2 * time.Minute)
	_, _ = cache.LoadQuiz(context.Background(), "quiz-1", "react")
	if catalog.loads != 2 {
		t.Fatalf("expected reload after ttl, got %d loads", catalog.loads)
	}
}

func TestQuizCacheDoesNotCacheErrors(t *testing.T) {
	catalog := &countingCatalog{QuizCatalog: NewStaticCatalog(sampleTopics())}
	cache := NewQuizCache(catalog, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cache.LoadQuiz(context.Background(), "missing", "react"); !errors.Is(err, domain.ErrQuizNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	}
	if catalog.loads != 2 {
		t.Fatalf("expected misses to reach the catalog, got %d", catalog.loads)
	}
}

type countingCatalog struct {
	app.QuizCatalog
	mu    sync.Mutex
	loads int
	lists int
}

func (c *countingCatalog) LoadQuiz(ctx context.Context, quizID, topic string) (domain.QuizDefinition, error) {
	c.mu.Lock()
	c.loads++
	c.mu.Unlock()
	return c.QuizCatalog.LoadQuiz(ctx, quizID, topic)
}

func (c *countingCatalog) ListQuizzes(ctx context.Context, topic string) ([]domain.QuizMetadata, error) {
	c.mu.Lock()
	c.lists++
	c.mu.Unlock()
	return c.QuizCatalog.ListQuizzes(ctx, topic)
}

func sampleTopics() map[string]map[string]domain.QuizDefinition {
	return map[string]map[string]domain.QuizDefinition{
		"react": {"quiz-1": sampleQuiz()},
	}
}

func sampleQuiz() domain.QuizDefinition {
	return domain.QuizDefinition{
		ID:    "quiz-1",
		Title: "React basics",
		Questions: []domain.Question{
			{ID: 1, Text: "What is 2 + 2?", Options: []string{"3", "4"}, AnswerIndex: 1},
		},
	}
}
