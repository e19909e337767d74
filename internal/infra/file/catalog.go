package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"quiz-widget-service/internal/domain"
	"quiz-widget-service/internal/logger"
)

// MetaFile lists a topic's quizzes: {"quizzes":[{"id":"...","file":"..."}]}.
const MetaFile = "quizzes-meta.json"

// Meta is the decoded MetaFile.
type Meta struct {
	Quizzes []MetaEntry `json:"quizzes"`
}

type MetaEntry struct {
	ID   string `json:"id"`
	File string `json:"file"`
}

// DocumentReader fetches a catalog document by slash-separated name, for example
// "react/quizzes-meta.json". A missing document is reported as fs.ErrNotExist.
type DocumentReader interface {
	ReadDocument(ctx context.Context, name string) ([]byte, error)
}

// Catalog serves quizzes laid out as <topic>/quizzes-meta.json plus one document per
// quiz, from any DocumentReader.
type Catalog struct {
	docs        DocumentReader
	log         *logger.Logger
	concurrency int
}

// NewCatalog reads documents from fsys (an embedded tree or os.DirFS).
func NewCatalog(fsys fs.FS, log *logger.Logger) *Catalog {
	return NewReaderCatalog(fsDocuments{fsys: fsys}, log)
}

func NewReaderCatalog(docs DocumentReader, log *logger.Logger) *Catalog {
	if log == nil {
		log = logger.Nop()
	}
	return &Catalog{docs: docs, log: log, concurrency: 8}
}

// ListQuizzes loads every quiz in the topic concurrently and returns metadata in meta
// order. Quizzes that fail to load are logged and left out.
func (c *Catalog) ListQuizzes(ctx context.Context, topic string) ([]domain.QuizMetadata, error) {
	meta, err := c.meta(ctx, topic)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.QuizMetadata{}, nil
	}
	if err != nil {
		return nil, err
	}

	loaded := make([]*domain.QuizMetadata, len(meta.Quizzes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, entry := range meta.Quizzes {
		g.Go(func() error {
			quiz, err := c.loadEntry(gctx, topic, entry)
			if err == nil {
				err = quiz.Validate()
			}
			if err != nil {
				c.log.Warn("skipping quiz", "topic", topic, "quizId", entry.ID, "error", err)
				return nil
			}
			md := domain.MetadataFor(entry.ID, quiz)
			loaded[i] = &md
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.QuizMetadata, 0, len(loaded))
	for _, md := range loaded {
		if md != nil {
			out = append(out, *md)
		}
	}
	return out, nil
}

func (c *Catalog) LoadQuiz(ctx context.Context, quizID, topic string) (domain.QuizDefinition, error) {
	meta, err := c.meta(ctx, topic)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.QuizDefinition{}, domain.ErrQuizNotFound
		}
		return domain.QuizDefinition{}, err
	}
	for _, entry := range meta.Quizzes {
		if entry.ID != quizID {
			continue
		}
		quiz, err := c.loadEntry(ctx, topic, entry)
		if err != nil {
			return domain.QuizDefinition{}, err
		}
		if err := quiz.Validate(); err != nil {
			return domain.QuizDefinition{}, err
		}
		return quiz, nil
	}
	return domain.QuizDefinition{}, domain.ErrQuizNotFound
}

func (c *Catalog) meta(ctx context.Context, topic string) (Meta, error) {
	var meta Meta
	data, err := c.docs.ReadDocument(ctx, path.Join(topic, MetaFile))
	if err != nil {
		return meta, fmt.Errorf("load quiz metadata: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("decode quiz metadata: %w", err)
	}
	return meta, nil
}

func (c *Catalog) loadEntry(ctx context.Context, topic string, entry MetaEntry) (domain.QuizDefinition, error) {
	data, err := c.docs.ReadDocument(ctx, documentName(topic, entry.File))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.QuizDefinition{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.QuizDefinition{}, fmt.Errorf("load quiz: %w", err)
	}
	var quiz domain.QuizDefinition
	if err := json.Unmarshal(data, &quiz); err != nil {
		return domain.QuizDefinition{}, fmt.Errorf("decode quiz: %w", err)
	}
	quiz.ID = entry.ID
	return quiz, nil
}

// documentName keeps file references inside the topic directory.
func documentName(topic, file string) string {
	return path.Join(topic, strings.TrimPrefix(path.Clean("/"+file), "/"))
}

type fsDocuments struct {
	fsys fs.FS
}

func (d fsDocuments) ReadDocument(_ context.Context, name string) ([]byte, error) {
	return fs.ReadFile(d.fsys, name)
}
