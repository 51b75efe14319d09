// Package cli implements weatherctl, a one-shot client for the sync engine.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/couchcryptid/weather-sync-service/internal/app"
	"github.com/couchcryptid/weather-sync-service/internal/config"
	"github.com/couchcryptid/weather-sync-service/internal/domain"
	"github.com/couchcryptid/weather-sync-service/internal/observability"
	"github.com/couchcryptid/weather-sync-service/internal/viewmodel"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	envFile string
}

// NewRootCmd creates the root cobra command.
func NewRootCmd() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:           "weatherctl",
		Short:         "Sync and inspect the cached weather snapshot",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if flags.envFile == "" {
				// A missing .env is fine; the environment may already be set.
				_ = godotenv.Load()
				return nil
			}
			if err := godotenv.Load(flags.envFile); err != nil {
				return fmt.Errorf("load env file: %w", err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "Read settings from this file before the environment")

	cmd.AddCommand(newSyncCmd(), newShowCmd())
	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newSyncCmd() *cobra.Command {
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync and print every resulting weather state as JSON",
		Long: "Runs one sync and prints each display state on its own line. " +
			"Without --lat/--lon the configured location is used; with no location at all only the cache is read.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			latSet, lonSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lon")
			if latSet != lonSet {
				return errors.New("--lat and --lon must be given together")
			}

			return withApp(cmd, func(ctx context.Context, cfg *config.Config, a *app.App) error {
				at := cfg.Location
				if latSet {
					c := domain.Coordinates{Lat: lat, Lon: lon}
					if err := c.Validate(); err != nil {
						return err
					}
					at = &c
				}

				enc := json.NewEncoder(cmd.OutOrStdout())
				state := viewmodel.InitialState()
				sub := a.Engine.Sync(ctx, at)
				for o := range sub.Outcomes() {
					state = viewmodel.Reduce(state, o, a.Resources)
					if err := enc.Encode(state); err != nil {
						return err
					}
				}
				return sub.Err()
			})
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude to sync")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude to sync")
	return cmd
}

type showResult struct {
	Snapshot *domain.WeatherSnapshot `json:"snapshot"`
	Fresh    bool                    `json:"fresh"`
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the cached snapshot and whether it is still fresh",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, _ *config.Config, a *app.App) error {
				snap, err := a.Store.ReadLatest(ctx)
				if err != nil {
					return err
				}
				res := showResult{Snapshot: snap}
				if snap != nil {
					res.Fresh = snap.Fresh()
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			})
		},
	}
}

func withApp(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.NewLoggerTo(cmd.ErrOrStderr(), cfg.LogLevel, "text")
	metrics := observability.NewMetricsWith(prometheus.NewRegistry())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.Build(ctx, cfg, metrics, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, cfg, a)
}
