package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"quiz-widget-service/internal/app"
	"quiz-widget-service/internal/config"
	"quiz-widget-service/internal/infra/local"
	"quiz-widget-service/internal/infra/remote"
	"quiz-widget-service/internal/logger"
	"quiz-widget-service/internal/quiz"
	"quiz-widget-service/internal/tui"
)

// NewPlayCmd runs the terminal quiz player.
func NewPlayCmd(configPath *string) *cobra.Command {
	var (
		topic   string
		noColor bool
		logPath string
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play quizzes in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if logPath == "" {
				logPath = filepath.Join(os.TempDir(), "quiz-widget-play.log")
			}
			log, err := logger.ToFile(logPath)
			if err != nil {
				return fmt.Errorf("open log: %w", err)
			}
			defer log.Sync()

			b, err := openBackends(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer b.Close()

			quizzes, err := b.catalog()
			if err != nil {
				return err
			}
			catalog := app.NewCatalogService(quizzes, cfg.Catalog.DefaultTopic)
			reporter, err := playReporter(cfg, log)
			if err != nil {
				return err
			}

			notify, updates := tui.Notify()
			player := quiz.NewPlayer(catalog, quiz.PlayerOptions{
				Reporter:           reporter,
				CelebrationTimeout: config.TTLDuration(cfg.Quiz.CelebrationTimeout, 2*time.Second),
				Logger:             log,
				OnUpdate:           notify,
			})
			defer player.Close()

			model := tui.NewModel(cmd.Context(), player, catalog, tui.Options{
				Topic:   catalog.Topic(topic),
				NoColor: noColor || os.Getenv("NO_COLOR") != "",
				Updates: updates,
			})
			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "quiz topic (defaults to catalog.default_topic)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colors")
	cmd.Flags().StringVar(&logPath, "log", "", "log file (defaults to a file in the temp dir)")
	return cmd
}

// playReporter sends scores to a running service when client.api_base_url is set and
// otherwise keeps them in the local store merged into the optional snapshot.
func playReporter(cfg config.Config, log *logger.Logger) (quiz.ScoreReporter, error) {
	if cfg.Client.APIBaseURL != "" {
		var opts []remote.ClientOption
		if cfg.Client.PHPPaths {
			opts = append(opts, remote.WithPHPPaths())
		}
		return remote.NewScoreClient(cfg.Client.APIBaseURL, 10*time.Second, opts...), nil
	}
	store, err := local.NewScoreStore(cfg.Local.Dir, log)
	if err != nil {
		return nil, err
	}
	snap, err := local.LoadSnapshot(cfg.Local.Snapshot)
	if err != nil {
		return nil, err
	}
	return app.NewScoreService(store, log, app.WithBaseline(snap)), nil
}
