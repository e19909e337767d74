package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"quiz-widget-service/internal/app"
	"quiz-widget-service/internal/config"
	transport "quiz-widget-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the score API and play server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	store, scoreOpts, err := b.scoreStore(ctx)
	if err != nil {
		return err
	}
	quizzes, err := b.catalog()
	if err != nil {
		return err
	}

	scores := app.NewScoreService(store, log, scoreOpts...)
	catalog := app.NewCatalogService(quizzes, cfg.Catalog.DefaultTopic)
	play := app.NewPlayService(b.sessions(), catalog, scores,
		config.TTLDuration(cfg.Quiz.CelebrationTimeout, 2*time.Second), log)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(transport.Services{Scores: scores, Catalog: catalog, Play: play}, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz service", "port", finalPort, "storage", cfg.Storage.Backend, "catalog", cfg.Catalog.Source)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
