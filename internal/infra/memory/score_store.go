package memory

import (
	"context"
	"sync"

	"quiz-widget-service/internal/app"
	"quiz-widget-service/internal/domain"
)

// ScoreStore keeps the most recent attempts per quiz in process memory.
type ScoreStore struct {
	limit int

	mu     sync.RWMutex
	scores map[string][]domain.ScoreRecord
}

// NewScoreStore keeps at most limit records per quiz; limit <= 0 means app.MaxScoreRecords.
func NewScoreStore(limit int) *ScoreStore {
	if limit <= 0 {
		limit = app.MaxScoreRecords
	}
	return &ScoreStore{limit: limit, scores: make(map[string][]domain.ScoreRecord)}
}

func (s *ScoreStore) Append(_ context.Context, quizID string, record domain.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := append(s.scores[quizID], record)
	if over := len(records) - s.limit; over > 0 {
		records = append([]domain.ScoreRecord(nil), records[over:]...)
	}
	s.scores[quizID] = records
	return nil
}

func (s *ScoreStore) ReadAll(_ context.Context, quizID string) ([]domain.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.scores[quizID]
	out := make([]domain.ScoreRecord, len(records))
	copy(out, records)
	return out, nil
}
