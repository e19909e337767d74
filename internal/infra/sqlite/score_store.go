// Package sqlite is a single-file score backend on the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // driver: sqlite

	"quiz-widget-service/internal/app"
	"quiz-widget-service/internal/domain"
)

const defaultDSN = "file:quiz-scores.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"

// ScoreStore keeps attempts in a score_records table, trimmed to the newest limit rows
// per quiz on every append.
type ScoreStore struct {
	db    *sql.DB
	limit int
}

// Open opens dsn (a file DSN; empty means ./quiz-scores.db) and ensures the schema.
func Open(ctx context.Context, dsn string, limit int) (*ScoreStore, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer at a time.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := ensureSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if limit <= 0 {
		limit = app.MaxScoreRecords
	}
	return &ScoreStore{db: db, limit: limit}, nil
}

func (s *ScoreStore) Close() error {
	return s.db.Close()
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaSQLite)
	return err
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS score_records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  quiz_id TEXT NOT NULL,
  topic TEXT NOT NULL DEFAULT '',
  quiz_title TEXT NOT NULL DEFAULT '',
  score INTEGER NOT NULL,
  total_questions INTEGER NOT NULL,
  percentage INTEGER NOT NULL,
  user_id TEXT NOT NULL,
  timestamp_ms INTEGER NOT NULL,
  date TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS score_records_quiz_id_idx ON score_records (quiz_id, id);
`

func (s *ScoreStore) Append(ctx context.Context, quizID string, r domain.ScoreRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
INSERT INTO score_records
  (quiz_id, topic, quiz_title, score, total_questions, percentage, user_id, timestamp_ms, date)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		quizID, r.Topic, r.QuizTitle, r.Score, r.TotalQuestions, r.Percentage, r.UserID, r.Timestamp, r.Date)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
DELETE FROM score_records
WHERE quiz_id = ? AND id NOT IN (
  SELECT id FROM score_records WHERE quiz_id = ? ORDER BY id DESC LIMIT ?
)`, quizID, quizID, s.limit)
	if err != nil {
		return fmt.Errorf("trim scores: %w", err)
	}
	return tx.Commit()
}

func (s *ScoreStore) ReadAll(ctx context.Context, quizID string) ([]domain.ScoreRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT quiz_id, topic, quiz_title, score, total_questions, percentage, user_id, timestamp_ms, date
FROM score_records WHERE quiz_id = ? ORDER BY id`, quizID)
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
