package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"quiz-widget-service/content"
	"quiz-widget-service/internal/app"
	"quiz-widget-service/internal/config"
	"quiz-widget-service/internal/infra/file"
	"quiz-widget-service/internal/infra/local"
	"quiz-widget-service/internal/infra/memory"
	"quiz-widget-service/internal/infra/postgres"
	redisinfra "quiz-widget-service/internal/infra/redis"
	"quiz-widget-service/internal/infra/remote"
	"quiz-widget-service/internal/infra/sqlite"
	"quiz-widget-service/internal/logger"
)

// backends holds the shared connections a command opened, so they can be closed once.
type backends struct {
	cfg     config.Config
	log     *logger.Logger
	redis   *redis.Client
	pool    *pgxpool.Pool
	closers []func()
}

func openBackends(ctx context.Context, cfg config.Config, log *logger.Logger) (*backends, error) {
	b := &backends{cfg: cfg, log: log}
	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = b.redis.Close() })
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.pool = pool
		b.closers = append(b.closers, pool.Close)
	}
	return b, nil
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

func (b *backends) scoreLimit() int {
	if b.cfg.Storage.Limit > 0 {
		return b.cfg.Storage.Limit
	}
	return app.MaxScoreRecords
}

// scoreStore picks the configured score backend. The local backend also returns the
// snapshot baseline its stats merge into.
func (b *backends) scoreStore(ctx context.Context) (app.ScoreStore, []app.ScoreOption, error) {
	switch b.cfg.Storage.Backend {
	case "", "file":
		dir := b.cfg.Storage.Dir
		if dir == "" {
			dir = "./scores"
		}
		store, err := file.NewScoreStore(dir, b.scoreLimit(), b.log)
		return store, nil, err
	case "memory":
		return memory.NewScoreStore(b.scoreLimit()), nil, nil
	case "redis":
		if b.redis == nil {
			return nil, nil, fmt.Errorf("storage backend redis needs redis.addr")
		}
		return redisinfra.NewScoreStore(b.redis, b.scoreLimit()), nil, nil
	case "postgres":
		if b.pool == nil {
			return nil, nil, fmt.Errorf("storage backend postgres needs postgres.url")
		}
		return postgres.NewScoreStore(b.pool, b.scoreLimit()), nil, nil
	case "sqlite":
		store, err := sqlite.Open(ctx, b.cfg.SQLite.DSN, b.scoreLimit())
		if err != nil {
			return nil, nil, err
		}
		b.closers = append(b.closers, func() { _ = store.Close() })
		return store, nil, nil
	case "local":
		store, err := local.NewScoreStore(b.cfg.Local.Dir, b.log)
		if err != nil {
			return nil, nil, err
		}
		snap, err := local.LoadSnapshot(b.cfg.Local.Snapshot)
		if err != nil {
			return nil, nil, err
		}
		return store, []app.ScoreOption{app.WithBaseline(snap)}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", b.cfg.Storage.Backend)
	}
}

// catalog picks the configured quiz source and puts a cache in front of the slow ones.
func (b *backends) catalog() (app.QuizCatalog, error) {
	cfg := b.cfg.Catalog
	var source app.QuizCatalog
	switch cfg.Source {
	case "", "embedded":
		return file.NewCatalog(content.Quizzes(), b.log), nil
	case "dir":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("catalog source dir needs catalog.dir")
		}
		source = file.NewCatalog(os.DirFS(cfg.Dir), b.log)
	case "remote":
		if cfg.URL == "" {
			return nil, fmt.Errorf("catalog source remote needs catalog.url")
		}
		source = remote.NewCatalog(cfg.URL, config.TTLDuration(cfg.Timeout, 10*time.Second), b.log)
	case "postgres":
		if b.pool == nil {
			return nil, fmt.Errorf("catalog source postgres needs postgres.url")
		}
		source = postgres.NewCatalog(b.pool, b.log)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}

	ttl := config.TTLDuration(b.cfg.Quiz.TTL, 10*time.Minute)
	if b.redis != nil {
		return redisinfra.NewQuizCache(b.redis, source, ttl), nil
	}
	return memory.NewQuizCache(source, ttl), nil
}

func (b *backends) sessions() app.SessionRepository {
	if b.redis != nil {
		return redisinfra.NewSessionStore(b.redis, config.TTLDuration(b.cfg.Redis.TTL, 10*time.Minute))
	}
	return memory.NewSessionStore()
}

func loadConfig(path string) (config.Config, *logger.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return cfg, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, log, nil
}
