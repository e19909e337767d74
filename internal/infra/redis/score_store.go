package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"quiz-widget-service/internal/app"
	"quiz-widget-service/internal/domain"
)

// ScoreStore keeps attempts as a capped Redis list per quiz:
// RPUSH quiz:scores:{quizID} <record json>, then LTRIM to the newest limit entries.
type ScoreStore struct {
	client *redis.Client
	limit  int
}

func NewScoreStore(client *redis.Client, limit int) *ScoreStore {
	if limit <= 0 {
		limit = app.MaxScoreRecords
	}
	return &ScoreStore{client: client, limit: limit}
}

func (s *ScoreStore) Append(ctx context.Context, quizID string, record domain.ScoreRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	key := s.key(quizID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, int64(-s.limit), -1)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *ScoreStore) ReadAll(ctx context.Context, quizID string) ([]domain.ScoreRecord, error) {
	raw, err := s.client.LRange(ctx, s.key(quizID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	records := make([]domain.ScoreRecord, 0, len(raw))
	for _, item := range raw {
		var rec domain.ScoreRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *ScoreStore) key(quizID string) string {
	return "quiz:scores:" + quizID
}
