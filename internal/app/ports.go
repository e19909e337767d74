package app

import (
	"context"
	"regexp"

	"quiz-widget-service/internal/domain"
	"quiz-widget-service/internal/quiz"
)

// MaxScoreRecords is how many attempts a server-side store keeps per quiz. Older
// records are dropped first.
const MaxScoreRecords = 1000

// ScoreStore abstracts durable, bounded, append-only attempt storage (file, memory,
// Redis, Postgres, SQLite, client-local).
type ScoreStore interface {
	Append(ctx context.Context, quizID string, record domain.ScoreRecord) error
	ReadAll(ctx context.Context, quizID string) ([]domain.ScoreRecord, error)
}

// QuizCatalog loads quiz content (from embedded files, a directory, HTTP, Postgres or a cache).
type QuizCatalog interface {
	ListQuizzes(ctx context.Context, topic string) ([]domain.QuizMetadata, error)
	LoadQuiz(ctx context.Context, quizID, topic string) (domain.QuizDefinition, error)
}

// Baseline supplies pre-aggregated stats that local attempts are merged into.
type Baseline interface {
	BaselineStats(ctx context.Context, quizID string) (domain.QuizStats, bool, error)
}

// PlayerFactory builds a fresh player for a new play session.
type PlayerFactory func(sessionID string) *quiz.Player

// SessionRepository abstracts how play sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(sessionID string, factory PlayerFactory) *quiz.Player
	Get(sessionID string) (*quiz.Player, bool)
	Save(sessionID string, player *quiz.Player)
	Delete(sessionID string)
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// SanitizeKey strips every character outside [A-Za-z0-9_-]. Quiz ids and topics pass
// through it before they are used as storage keys or paths.
func SanitizeKey(s string) string {
	return unsafeKeyChars.ReplaceAllString(s, "")
}
