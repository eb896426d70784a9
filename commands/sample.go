package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stsysd/milecal/model"
	"github.com/stsysd/milecal/sample"
)

func newSampleCmd() *cobra.Command {
	var (
		out   string
		years int
		seed  uint64
	)
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a generated running log for trying out the charts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if years <= 0 {
				years = cfg.Years
			}
			now := time.Now().UTC()
			ds, err := sample.GenerateYears(model.TrailingYears(now.Year(), years), now, seed)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(ds, "", "    ")
			if err != nil {
				return fmt.Errorf("failed to encode sample data: %w", err)
			}
			path := pick(out, cfg.DataFile)
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}
			if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			log.Info().Str("path", path).Int("days", ds.Len()).Msg("Wrote sample running log")
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (default from MILECAL_DATA_FILE)")
	cmd.Flags().IntVar(&years, "years", 0, "number of years to generate (default from MILECAL_YEARS)")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	return cmd
}
