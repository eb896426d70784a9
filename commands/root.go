// Package commands はmilecalのCLIコマンドを定義します。
package commands

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stsysd/milecal/config"
	"github.com/stsysd/milecal/logging"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.Config
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "milecal",
		Short: "milecal charts running distance from a daily log",
		Long: `milecal renders a cumulative-miles line chart and a calendar heatmap of daily miles
from a JSON running log, and keeps that log in sync with Strava.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				logging.Init(verbose, "")
				return err
			}
			logging.Init(verbose, cfg.LogDir)

			log.Debug().
				Str("version", Version).
				Str("commit", Commit).
				Str("buildDate", BuildDate).
				Str("command", cmd.Name()).
				Msg("milecal starting")
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.AddCommand(newRenderCmd(), newFetchCmd(), newSampleCmd(), newVersionCmd())
	return root
}

// Execute runs the root command. Cancelling ctx aborts fetches and rate-limit waits.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}
