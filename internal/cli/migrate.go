package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quiz-widget-service/content"
	"quiz-widget-service/internal/config"
	"quiz-widget-service/internal/infra/file"
	"quiz-widget-service/internal/infra/postgres"
	pgmigrations "quiz-widget-service/internal/infra/postgres/migrations"
	"quiz-widget-service/internal/logger"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()
			if err := runMigrationsWithConfig(cmd.Context(), cfg, log); err != nil {
				return err
			}
			if seed {
				return seedCatalog(cmd.Context(), cfg, log)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "load the embedded sample quizzes into the quizzes table")
	return cmd
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info("no new migrations")
		return nil
	}
	log.Info("migrations applied", "group", group.String())
	return nil
}

// seedCatalog upserts every embedded quiz so a fresh database can serve the catalog.
func seedCatalog(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	src := content.Quizzes()
	topics, err := fs.ReadDir(src, ".")
	if err != nil {
		return err
	}
	embedded := file.NewCatalog(src, log)
	target := postgres.NewCatalog(pool, log)

	var n int
	for _, dir := range topics {
		if !dir.IsDir() {
			continue
		}
		topic := dir.Name()
		quizzes, err := embedded.ListQuizzes(ctx, topic)
		if err != nil {
			return err
		}
		for _, md := range quizzes {
			def, err := embedded.LoadQuiz(ctx, md.ID, topic)
			if err != nil {
				return err
			}
			if err := target.Upsert(ctx, topic, def); err != nil {
				return err
			}
			n++
		}
	}
	log.Info("catalog seeded", "quizzes", n)
	return nil
}
