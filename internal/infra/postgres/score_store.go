package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-widget-service/internal/app"
	"quiz-widget-service/internal/domain"
)

// ScoreStore keeps attempts in the score_records table, trimmed to the newest limit
// rows per quiz on every append.
type ScoreStore struct {
	pool  *pgxpool.Pool
	limit int
}

func NewScoreStore(pool *pgxpool.Pool, limit int) *ScoreStore {
	if limit <= 0 {
		limit = app.MaxScoreRecords
	}
	return &ScoreStore{pool: pool, limit: limit}
}

func (s *ScoreStore) Append(ctx context.Context, quizID string, r domain.ScoreRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO score_records
			(quiz_id, topic, quiz_title, score, total_questions, percentage, user_id, timestamp_ms, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		quizID, r.Topic, r.QuizTitle, r.Score, r.TotalQuestions, r.Percentage, r.UserID, r.Timestamp, r.Date)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	_, err = tx.Exec(ctx, `
		DELETE FROM score_records
		WHERE quiz_id = $1 AND id NOT IN (
			SELECT id FROM score_records WHERE quiz_id = $1 ORDER BY id DESC LIMIT $2
		)`, quizID, s.limit)
	if err != nil {
		return fmt.Errorf("trim scores: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *ScoreStore) ReadAll(ctx context.Context, quizID string) ([]domain.ScoreRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT quiz_id, topic, quiz_title, score, total_questions, percentage, user_id, timestamp_ms, date
		FROM score_records WHERE quiz_id = $1 ORDER BY id`, quizID)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	records := []domain.ScoreRecord{}
	for rows.Next() {
		var r domain.ScoreRecord
		if err := rows.Scan(&r.QuizID, &r.Topic, &r.QuizTitle, &r.Score, &r.TotalQuestions,
			&r.Percentage, &r.UserID, &r.Timestamp, &r.Date); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
