// Package local is the static-mode fallback used when no score backend is configured:
// a small score history in the user's config directory merged into a pre-aggregated
// snapshot.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"quiz-widget-service/internal/domain"
	"quiz-widget-service/internal/infra/file"
	"quiz-widget-service/internal/logger"
)

// MaxRecords is how many attempts the local store keeps per quiz.
const MaxRecords = 50

// DefaultDir is <user config dir>/quiz-widget.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "quiz-widget"), nil
}

// NewScoreStore keeps <dir>/scores/<quizId>.json, capped at MaxRecords.
func NewScoreStore(dir string, log *logger.Logger) (*file.ScoreStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return file.NewScoreStore(filepath.Join(dir, "scores"), MaxRecords, log, file.WithSuffix(".json"))
}

// Snapshot is pre-aggregated stats keyed by quiz id, as published alongside a static
// quiz catalog: {"<quizId>": QuizStats}.
type Snapshot map[string]domain.QuizStats

// LoadSnapshot reads a snapshot file. A missing file is an empty snapshot.
func LoadSnapshot(path string) (Snapshot, error) {
	if path == "" {
		return Snapshot{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return nil, err
	}
	snap := Snapshot{}
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// BaselineStats implements app.Baseline.
func (s Snapshot) BaselineStats(_ context.Context, quizID string) (domain.QuizStats, bool, error) {
	st, ok := s[quizID]
	if !ok {
		return domain.QuizStats{}, false, nil
	}
	if st.QuizID == "" {
		st.QuizID = quizID
	}
	return st, true, nil
}
