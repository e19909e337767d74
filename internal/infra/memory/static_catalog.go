package memory

import (
	"context"
	"sort"

	"quiz-widget-service/internal/domain"
)

// StaticCatalog is a simple catalog backed by an in-memory map (useful for tests/demos).
// Quizzes are keyed by topic, then quiz id. Invalid definitions are never listed or loaded.
type StaticCatalog struct {
	topics map[string]map[string]domain.QuizDefinition
}

func NewStaticCatalog(topics map[string]map[string]domain.QuizDefinition) *StaticCatalog {
	return &StaticCatalog{topics: topics}
}

func (c *StaticCatalog) ListQuizzes(_ context.Context, topic string) ([]domain.QuizMetadata, error) {
	quizzes := c.topics[topic]
	ids := make([]string, 0, len(quizzes))
	for id := range quizzes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]domain.QuizMetadata, 0, len(ids))
	for _, id := range ids {
		if quizzes[id].Validate() != nil {
			continue
		}
		out = append(out, domain.MetadataFor(id, quizzes[id]))
	}
	return out, nil
}

func (c *StaticCatalog) LoadQuiz(_ context.Context, quizID, topic string) (domain.QuizDefinition, error) {
	if quiz, ok := c.topics[topic][quizID]; ok {
		if err := quiz.Validate(); err != nil {
			return domain.QuizDefinition{}, err
		}
		return quiz, nil
	}
	return domain.QuizDefinition{}, domain.ErrQuizNotFound
}
