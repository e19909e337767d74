// Package storetest holds the behaviour every app.ScoreStore must share.
package storetest

import (
	"context"
	"fmt"
	"testing"

	"quiz-widget-service/internal/app"
	"quiz-widget-service/internal/domain"
)

// Factory returns an empty store for one subtest.
type Factory func(t *testing.T) app.ScoreStore

// Run exercises a store that keeps at most limit records per quiz.
func Run(t *testing.T, limit int, newStore Factory) {
	t.Run("UnknownQuizIsEmpty", func(t *testing.T) {
		store := newStore(t)
		records, err := store.ReadAll(context.Background(), "never-played")
		if err != nil {
			t.Fatalf("read all: %v", err)
		}
		if len(records) != 0 {
			t.Fatalf("expected no records, got %d", len(records))
		}
	})

	t.Run("AppendKeepsOrder", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		for i, pct := range []int{20, 81, 100} {
			if err := store.Append(ctx, "quiz-a", Record("quiz-a", i, pct)); err != nil {
				t.Fatalf("append %d: %v", i, err)
			}
		}
		records, err := store.ReadAll(ctx, "quiz-a")
		if err != nil {
			t.Fatalf("read all: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected 3 records, got %d", len(records))
		}
		for i, want := range []int{20, 81, 100} {
			got := records[i]
			if got.Percentage != want || got.UserID != fmt.Sprintf("anon_%d", i) {
				t.Fatalf("record %d: unexpected %+v", i, got)
			}
		}
		first := records[0]
		if first.QuizTitle != "Hooks" || first.Topic != "react" || first.Date == "" || first.Timestamp == 0 {
			t.Fatalf("fields not round-tripped: %+v", first)
		}
	})

	t.Run("QuizzesAreIsolated", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		if err := store.Append(ctx, "quiz-a", Record("quiz-a", 0, 50)); err != nil {
			t.Fatalf("append: %v", err)
		}
		records, err := store.ReadAll(ctx, "quiz-b")
		if err != nil {
			t.Fatalf("read all: %v", err)
		}
		if len(records) != 0 {
			t.Fatalf("expected quiz-b empty, got %d", len(records))
		}
	})

	t.Run("DropsOldestPastLimit", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		for i := 0; i <= limit; i++ {
			if err := store.Append(ctx, "quiz-a", Record("quiz-a", i, i%101)); err != nil {
				t.Fatalf("append %d: %v", i, err)
			}
		}
		records, err := store.ReadAll(ctx, "quiz-a")
		if err != nil {
			t.Fatalf("read all: %v", err)
		}
		if len(records) != limit {
			t.Fatalf("expected %d records, got %d", limit, len(records))
		}
		if records[0].UserID != "anon_1" || records[limit-1].UserID != fmt.Sprintf("anon_%d", limit) {
			t.Fatalf("expected oldest record dropped, got first=%s last=%s", records[0].UserID, records[limit-1].UserID)
		}
	})
}

// Record builds the n-th attempt for quizID.
func Record(quizID string, n, percentage int) domain.ScoreRecord {
	return domain.ScoreRecord{
		QuizID:         quizID,
		Topic:          "react",
		QuizTitle:      "Hooks",
		Score:          percentage,
		TotalQuestions: 100,
		Percentage:     percentage,
		UserID:         fmt.Sprintf("anon_%d", n),
		Timestamp:      1700000000000 + int64(n),
		Date:           "2024-11-22T10:00:00Z",
	}
}
