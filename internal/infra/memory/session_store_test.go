package memory

import (
	"testing"

	"quiz-widget-service/internal/quiz"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()
	created := 0
	factory := func(string) *quiz.Player {
		created++
		return quiz.NewPlayer(NewStaticCatalog(sampleTopics()), quiz.PlayerOptions{})
	}

	player := store.GetOrCreate("s1", factory)
	if player == nil {
		t.Fatalf("expected player")
	}
	if again := store.GetOrCreate("s1", factory); again != player || created != 1 {
		t.Fatalf("expected existing player reused")
	}
	if _, ok := store.Get("s1"); !ok {
		t.Fatalf("expected session present")
	}

	store.Delete("s1")
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("expected session removed")
	}
}
