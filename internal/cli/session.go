package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"quiz-widget-service/internal/config"
	redisinfra "quiz-widget-service/internal/infra/redis"
)

// NewSessionCmd prints the last snapshot a server wrote for a play session. Snapshots
// are only kept when sessions live in Redis.
func NewSessionCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "session <sessionId>",
		Short: "Show the stored state of a play session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()
			if cfg.Redis.Addr == "" {
				return fmt.Errorf("session snapshots need redis.addr")
			}

			b, err := openBackends(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer b.Close()

			sessions := redisinfra.NewSessionStore(b.redis, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
			view, ok, err := sessions.Snapshot(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("read session: %w", err)
			}
			if !ok {
				return fmt.Errorf("session %q not found", args[0])
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		},
	}
}
