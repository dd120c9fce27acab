// Command sonarr-wanted streams the missing episodes of every series
// known to a Sonarr server, capped per series, to stdout.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arrfetch/sonarr-wanted/pkg/cache"
	"github.com/arrfetch/sonarr-wanted/pkg/config"
	"github.com/arrfetch/sonarr-wanted/pkg/logging"
	"github.com/arrfetch/sonarr-wanted/pkg/sonarr"
	"github.com/arrfetch/sonarr-wanted/pkg/wanted"
)

var (
	configPath string
	outputJSON bool
	head       int
	logLevel   string
	prettyLogs bool
)

var rootCmd = &cobra.Command{
	Use:   "sonarr-wanted",
	Short: "Stream missing episodes from a Sonarr server",
	Long: `Queries the Sonarr wanted-missing listing page by page and prints a
normalized record per missing episode, capped per series by the
configured limit.`,
	SilenceUsage: true,
	RunE:         runList,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Test connectivity to the Sonarr server",
	RunE:  runCheck,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to TOML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&prettyLogs, "pretty", false, "human-readable log output")
	rootCmd.Flags().BoolVar(&outputJSON, "json", false, "output records as JSON lines")
	rootCmd.Flags().IntVarP(&head, "head", "n", 0, "stop after N records (0 = all)")
	rootCmd.AddCommand(checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration and builds the Sonarr client, wiring the
// Redis page cache when one is configured.
func setup(ctx context.Context) (*sonarr.Client, config.Config, func(), error) {
	logging.Setup(logging.Config{
		Level:  logging.LogLevel(logLevel),
		Pretty: prettyLogs,
		Output: os.Stderr,
	})

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, config.Config{}, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	clientCfg := sonarr.DefaultConfig(cfg.BaseURL, cfg.APIKey)
	clientCfg.Port = cfg.Port
	clientCfg.OnlyMonitored = cfg.OnlyMonitored

	cleanup := func() {}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, page cache disabled")
			redisClient.Close()
		} else {
			clientCfg.Cache = cache.NewManager(redisClient, cfg.CacheTTL)
			cleanup = func() { redisClient.Close() }
		}
	}

	client, err := sonarr.New(clientCfg)
	if err != nil {
		cleanup()
		return nil, config.Config{}, nil, fmt.Errorf("invalid client configuration: %w", err)
	}

	return client, cfg, cleanup, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, _, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := client.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "OK: %s\n", client.BaseURL())
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, cfg, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	agg, err := wanted.NewAggregator(client, cfg.PageSize, cfg.Limit)
	if err != nil {
		return fmt.Errorf("invalid aggregation parameters: %w", err)
	}

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	emitted := 0
	for rec, err := range agg.Records(ctx) {
		if err != nil {
			return fmt.Errorf("aggregation run failed: %w", err)
		}
		// The ended-series filter is applied downstream of the
		// aggregation so the per-series cap stays a property of the
		// listing alone.
		if !cfg.IncludeEnded && rec.SeriesStatus == "ended" {
			continue
		}

		if outputJSON {
			if err := enc.Encode(rec); err != nil {
				return fmt.Errorf("write record: %w", err)
			}
		} else {
			fmt.Fprintln(out, rec.Title)
		}

		emitted++
		if head > 0 && emitted >= head {
			break
		}
	}

	log.Info().Int("records", emitted).Msg("Run complete")
	return nil
}
