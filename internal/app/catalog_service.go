package app

import (
	"context"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"

	"quiz-widget-service/internal/domain"
)

// DefaultTopic is used when a request names no topic.
const DefaultTopic = "react"

// CatalogService resolves topics and searches the quiz catalog.
type CatalogService struct {
	catalog      QuizCatalog
	defaultTopic string
}

func NewCatalogService(catalog QuizCatalog, defaultTopic string) *CatalogService {
	if defaultTopic == "" {
		defaultTopic = DefaultTopic
	}
	return &CatalogService{catalog: catalog, defaultTopic: defaultTopic}
}

// Topic sanitises topic, falling back to the default topic.
func (s *CatalogService) Topic(topic string) string {
	if t := SanitizeKey(topic); t != "" {
		return t
	}
	return s.defaultTopic
}

// ListQuizzes lists a topic's quizzes. A non-empty query keeps only fuzzy title
// matches, best first.
func (s *CatalogService) ListQuizzes(ctx context.Context, topic, query string) ([]domain.QuizMetadata, error) {
	quizzes, err := s.catalog.ListQuizzes(ctx, s.Topic(topic))
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return quizzes, nil
	}

	titles := lo.Map(quizzes, func(q domain.QuizMetadata, _ int) string { return q.Title })
	ranks := fuzzy.RankFindFold(query, titles)
	sort.Stable(ranks)
	return lo.Map(ranks, func(r fuzzy.Rank, _ int) domain.QuizMetadata { return quizzes[r.OriginalIndex] }), nil
}

// LoadQuiz loads one quiz definition, rejecting it with domain.ErrInvalidQuiz when a
// question breaks the option/answer rules.
func (s *CatalogService) LoadQuiz(ctx context.Context, quizID, topic string) (domain.QuizDefinition, error) {
	id := SanitizeKey(quizID)
	if id == "" {
		return domain.QuizDefinition{}, domain.ErrQuizNotFound
	}
	def, err := s.catalog.LoadQuiz(ctx, id, s.Topic(topic))
	if err != nil {
		return domain.QuizDefinition{}, err
	}
	if err := def.Validate(); err != nil {
		return domain.QuizDefinition{}, err
	}
	if def.ID == "" {
		def.ID = id
	}
	return def, nil
}
