// Package file keeps scores and quiz content as plain JSON documents on disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"quiz-widget-service/internal/app"
	"quiz-widget-service/internal/domain"
	"quiz-widget-service/internal/logger"
)

// ScoreStore keeps one <quizId>_scores.json array per quiz under dir.
// Writes are serialised per process; concurrent processes are last-writer-wins.
type ScoreStore struct {
	dir    string
	limit  int
	suffix string
	log    *logger.Logger

	mu sync.Mutex
}

// StoreOption customises a ScoreStore.
type StoreOption func(*ScoreStore)

// WithSuffix changes the document suffix from "_scores.json".
func WithSuffix(suffix string) StoreOption {
	return func(s *ScoreStore) { s.suffix = suffix }
}

func NewScoreStore(dir string, limit int, log *logger.Logger, opts ...StoreOption) (*ScoreStore, error) {
	if dir == "" {
		dir = "./scores"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = app.MaxScoreRecords
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &ScoreStore{dir: dir, limit: limit, suffix: "_scores.json", log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *ScoreStore) Append(_ context.Context, quizID string, record domain.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read(quizID)
	if err != nil {
		return err
	}
	records = append(records, record)
	if over := len(records) - s.limit; over > 0 {
		records = records[over:]
	}
	return s.write(quizID, records)
}

func (s *ScoreStore) ReadAll(_ context.Context, quizID string) ([]domain.ScoreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(quizID)
}

func (s *ScoreStore) path(quizID string) string {
	return filepath.Join(s.dir, filepath.Base(quizID)+s.suffix)
}

// read treats a missing or unreadable document as no attempts.
func (s *ScoreStore) read(quizID string) ([]domain.ScoreRecord, error) {
	data, err := os.ReadFile(s.path(quizID))
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.ScoreRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", quizID, err)
	}
	records := []domain.ScoreRecord{}
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		s.log.Warn("discarding corrupt score file", "quizId", quizID, "error", err)
		return []domain.ScoreRecord{}, nil
	}
	return records, nil
}

func (s *ScoreStore) write(quizID string, records []domain.ScoreRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, ".scores-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path(quizID))
}
