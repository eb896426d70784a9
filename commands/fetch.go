package commands

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stsysd/milecal/model"
	"github.com/stsysd/milecal/strava"
)

type fetchFlags struct {
	activityType string
	rawAll       bool
	startDate    string
	endDate      string
	incremental  bool
	dataDir      string
}

func newFetchCmd() *cobra.Command {
	f := &fetchFlags{}
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch activities from Strava into the data directory",
		Long: `Fetch activities from Strava. With --activity-type the activities are summarized per day
into <data-dir>/<type>_activities.json; with --raw-all every activity is stored as returned by
the API in <data-dir>/all_activities.json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.activityType, "activity-type", "", "activity type to fetch (Run, WeightTraining)")
	cmd.Flags().BoolVar(&f.rawAll, "raw-all", false, "dump all raw activity data")
	cmd.Flags().StringVar(&f.startDate, "start-date", "", "fetch activities after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.endDate, "end-date", "", "fetch activities before this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&f.incremental, "incremental", false, "only fetch activities newer than the stored data")
	cmd.Flags().StringVar(&f.dataDir, "data-dir", "", "directory for activity data (default from MILECAL_DATA_DIR)")
	cmd.MarkFlagsMutuallyExclusive("activity-type", "raw-all")
	cmd.MarkFlagsOneRequired("activity-type", "raw-all")
	return cmd
}

func runFetch(cmd *cobra.Command, f *fetchFlags) error {
	if err := cfg.ValidateStrava(); err != nil {
		return err
	}

	opts := strava.SyncOptions{Incremental: f.incremental}
	if !f.rawAll {
		t, err := strava.ParseActivityType(f.activityType)
		if err != nil {
			return err
		}
		opts.ActivityType = t
	}
	var err error
	if opts.Start, err = parseOptionalDate(f.startDate); err != nil {
		return err
	}
	if opts.End, err = parseOptionalDate(f.endDate); err != nil {
		return err
	}

	ctx := cmd.Context()
	httpClient := strava.NewHTTPClient(ctx, strava.Credentials{
		ClientID:     cfg.StravaClientID,
		ClientSecret: cfg.StravaClientSecret,
		RefreshToken: cfg.StravaRefreshToken,
	}, strava.TokenURL, strava.EnvFilePersister(cfg.EnvFile))
	syncer := strava.NewSyncer(strava.NewClient(httpClient), pick(f.dataDir, cfg.DataDir))

	var res *strava.SyncResult
	if f.rawAll {
		res, err = syncer.DumpRaw(ctx, opts)
	} else {
		res, err = syncer.Sync(ctx, opts)
	}
	if err != nil {
		return err
	}

	log.Info().
		Str("path", res.Path).
		Int("fetched", res.Fetched).
		Int("added", res.Added).
		Int("total", res.Total).
		Msg("Fetch complete")
	return nil
}

func parseOptionalDate(s string) (t time.Time, err error) {
	if s == "" {
		return t, nil
	}
	t, err = model.ParseDate(s)
	if err != nil {
		return t, errors.New("dates must be in YYYY-MM-DD format: " + s)
	}
	return t, nil
}
