package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quiz-widget-service/internal/domain"
	"quiz-widget-service/internal/logger"
	"quiz-widget-service/internal/markup"
	"quiz-widget-service/internal/stats"
)

const maxTitleLength = 100

// ScoreService records attempts and computes their statistics.
type ScoreService struct {
	store    ScoreStore
	baseline Baseline
	now      func() time.Time
	log      *logger.Logger
}

// ScoreOption customises a ScoreService.
type ScoreOption func(*ScoreService)

// WithBaseline merges stats from b into every Stats result.
func WithBaseline(b Baseline) ScoreOption {
	return func(s *ScoreService) { s.baseline = b }
}

// WithClock is used by tests for deterministic timestamps.
func WithClock(now func() time.Time) ScoreOption {
	return func(s *ScoreService) { s.now = now }
}

func NewScoreService(store ScoreStore, log *logger.Logger, opts ...ScoreOption) *ScoreService {
	if log == nil {
		log = logger.Nop()
	}
	s := &ScoreService{store: store, now: time.Now, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record validates and stores a submission, returning the persisted record.
func (s *ScoreService) Record(ctx context.Context, sub domain.ScoreSubmission) (domain.ScoreRecord, error) {
	quizID := SanitizeKey(sub.QuizID)
	// A score above the question count would record a percentage over 100.
	if quizID == "" || sub.Score < 0 || sub.TotalQuestions < 0 || sub.Score > sub.TotalQuestions {
		return domain.ScoreRecord{}, domain.ErrInvalidSubmission
	}

	userID := sub.AnonymousID
	if userID == "" {
		userID = "anon_" + uuid.NewString()
	}
	now := s.now().UTC()
	record := domain.ScoreRecord{
		QuizID:         quizID,
		Topic:          SanitizeKey(sub.Topic),
		QuizTitle:      markup.Truncate(markup.StripTags(sub.QuizTitle), maxTitleLength),
		Score:          sub.Score,
		TotalQuestions: sub.TotalQuestions,
		Percentage:     stats.Percentage(sub.Score, sub.TotalQuestions),
		UserID:         userID,
		Timestamp:      now.UnixMilli(),
		Date:           now.Format(time.RFC3339Nano),
	}
	if err := s.store.Append(ctx, quizID, record); err != nil {
		return domain.ScoreRecord{}, fmt.Errorf("append score: %w", err)
	}
	s.log.Debug("score recorded", "quizId", quizID, "percentage", record.Percentage)
	return record, nil
}

// SaveScore stores a submission.
func (s *ScoreService) SaveScore(ctx context.Context, sub domain.ScoreSubmission) error {
	_, err := s.Record(ctx, sub)
	return err
}

// Stats aggregates every stored attempt for quizID, merged into the baseline when one
// is configured. Unknown quizzes yield the zeroed shape.
func (s *ScoreService) Stats(ctx context.Context, quizID string) (domain.QuizStats, error) {
	quizID = SanitizeKey(quizID)
	if quizID == "" {
		return domain.QuizStats{}, domain.ErrInvalidSubmission
	}
	records, err := s.store.ReadAll(ctx, quizID)
	if err != nil {
		return domain.QuizStats{}, fmt.Errorf("read scores: %w", err)
	}
	local := stats.Aggregate(quizID, records)
	if s.baseline == nil {
		return local, nil
	}

	base, ok, err := s.baseline.BaselineStats(ctx, quizID)
	if err != nil {
		s.log.Warn("baseline stats unavailable", "quizId", quizID, "error", err)
		return local, nil
	}
	if !ok {
		return local, nil
	}
	return stats.Merge(base, local), nil
}
