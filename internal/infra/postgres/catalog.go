package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-widget-service/internal/domain"
	"quiz-widget-service/internal/logger"
)

// Catalog loads quiz JSONB documents from Postgres.
type Catalog struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewCatalog(pool *pgxpool.Pool, log *logger.Logger) *Catalog {
	if log == nil {
		log = logger.Nop()
	}
	return &Catalog{pool: pool, log: log}
}

func (c *Catalog) LoadQuiz(ctx context.Context, quizID, topic string) (domain.QuizDefinition, error) {
	var raw []byte
	err := c.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE topic=$1 AND id=$2`, topic, quizID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuizDefinition{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.QuizDefinition{}, fmt.Errorf("load quiz: %w", err)
	}
	var quiz domain.QuizDefinition
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.QuizDefinition{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	if err := quiz.Validate(); err != nil {
		return domain.QuizDefinition{}, err
	}
	quiz.ID = quizID
	return quiz, nil
}

// ListQuizzes returns metadata for every valid quiz in topic; unreadable or invalid
// documents are logged and skipped.
func (c *Catalog) ListQuizzes(ctx context.Context, topic string) ([]domain.QuizMetadata, error) {
	rows, err := c.pool.Query(ctx, `SELECT id, data FROM quizzes WHERE topic=$1 ORDER BY id`, topic)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	out := []domain.QuizMetadata{}
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		var quiz domain.QuizDefinition
		if err := json.Unmarshal(raw, &quiz); err != nil {
			c.log.Warn("skipping unreadable quiz", "topic", topic, "quizId", id, "error", err)
			continue
		}
		if err := quiz.Validate(); err != nil {
			c.log.Warn("skipping invalid quiz", "topic", topic, "quizId", id, "error", err)
			continue
		}
		out = append(out, domain.MetadataFor(id, quiz))
	}
	return out, rows.Err()
}

// Upsert stores or replaces a quiz document.
func (c *Catalog) Upsert(ctx context.Context, topic string, quiz domain.QuizDefinition) error {
	raw, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = c.pool.Exec(ctx, `
		INSERT INTO quizzes (topic, id, data) VALUES ($1, $2, $3)
		ON CONFLICT (topic, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		topic, quiz.ID, raw)
	if err != nil {
		return fmt.Errorf("upsert quiz: %w", err)
	}
	return nil
}
