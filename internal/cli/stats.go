package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"quiz-widget-service/internal/app"
	"quiz-widget-service/internal/domain"
	"quiz-widget-service/internal/stats"
)

// NewStatsCmd prints the statistics of one quiz from the configured score store.
func NewStatsCmd(configPath *string) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats <quizId>",
		Short: "Show score statistics for a quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()

			b, err := openBackends(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer b.Close()
			store, opts, err := b.scoreStore(cmd.Context())
			if err != nil {
				return err
			}

			st, err := app.NewScoreService(store, log, opts...).Stats(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			printStats(cmd.OutOrStdout(), st)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw statistics document")
	return cmd
}

func printStats(w io.Writer, st domain.QuizStats) {
	title := lipgloss.NewStyle().Bold(true).Render("Quiz " + st.QuizID)
	fmt.Fprintln(w, title)
	fmt.Fprintf(w, "attempts %d  average %d%%  high %d%%\n", st.TotalAttempts, st.AverageScorePercent, st.HighScorePercent)
	for _, bucket := range stats.Buckets {
		n := st.Distribution[bucket]
		width := 0
		if st.TotalAttempts > 0 {
			width = n * 40 / st.TotalAttempts
		}
		fmt.Fprintf(w, "%7s%% %-40s %d\n", bucket, strings.Repeat("#", width), n)
	}
	if len(st.RecentScores) > 0 {
		fmt.Fprintln(w, "recent:")
		for _, r := range st.RecentScores {
			fmt.Fprintf(w, "  %3d%%  %s\n", r.Percentage, r.Date)
		}
	}
}
