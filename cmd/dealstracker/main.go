package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"DealsTracker/internal/app"
	"DealsTracker/internal/config"
	"DealsTracker/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "dealstracker",
		Short:         "Track India's international deals from news coverage",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (defaults to $DEALS_TRACKER_CONFIG)")

	withApp := func(run func(ctx context.Context, a *app.Application) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig(configPath)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()
			return run(cmd.Context(), a)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API and the scheduled scan",
			Args:  cobra.NoArgs,
			RunE: withApp(func(ctx context.Context, a *app.Application) error {
				return a.Serve(ctx)
			}),
		},
		&cobra.Command{
			Use:   "scan",
			Short: "Run one news scan and queue new deals for review",
			Args:  cobra.NoArgs,
			RunE: withApp(func(ctx context.Context, a *app.Application) error {
				res, err := a.Scan(ctx)
				if err != nil {
					return err
				}
				return printJSON(res)
			}),
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations",
			Args:  cobra.NoArgs,
			RunE: withApp(func(ctx context.Context, a *app.Application) error {
				return a.Migrate(ctx)
			}),
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Insert curated historical deals as approved",
			Args:  cobra.NoArgs,
			RunE: withApp(func(ctx context.Context, a *app.Application) error {
				res, err := a.Seed(ctx)
				if err != nil {
					return err
				}
				return printJSON(res)
			}),
		},
		&cobra.Command{
			Use:   "fix-dates",
			Short: "Reset creation times to January 1st of each deal's year",
			Args:  cobra.NoArgs,
			RunE: withApp(func(ctx context.Context, a *app.Application) error {
				n, err := a.FixDates(ctx)
				if err != nil {
					return err
				}
				return printJSON(map[string]int{"updated": n})
			}),
		},
	)
	return root
}

func loadConfig(path string) config.Config {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
