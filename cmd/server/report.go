package main

import (
	"customerdash/internal/engine"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var (
	reportProfession string
	reportMinAge     int
	reportMaxAge     int
)

// reportCmd prints the dashboard bundle for one control state.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Load the data and print the dashboard aggregates as JSON",
	Long: `Computes every dashboard aggregate for a single control state and writes
the result to stdout. Unset controls take the same defaults as the API.

Example:
  server report -c config.yaml --profession Engineer --min-age 25 --max-age 40`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportProfession, "profession", "", "selected profession (default: first in sorted order)")
	reportCmd.Flags().IntVar(&reportMinAge, "min-age", -1, "lower age bound, inclusive (default: config)")
	reportCmd.Flags().IntVar(&reportMaxAge, "max-age", -1, "upper age bound, inclusive (default: config)")
}

func runReport(cmd *cobra.Command, args []string) error {
	store, err := engine.Load(cmd.Context(), sources(), options(), logger)
	if err != nil {
		return err
	}
	if err := store.Validate(); err != nil {
		return err
	}

	controls := store.Controls(cfg.Controls.DefaultMinAge, cfg.Controls.DefaultMaxAge)
	profession := reportProfession
	if profession == "" {
		profession = controls.DefaultProfession
	}
	minAge, maxAge := controls.DefaultAgeRange[0], controls.DefaultAgeRange[1]
	if cmd.Flags().Changed("min-age") {
		minAge = reportMinAge
	}
	if cmd.Flags().Changed("max-age") {
		maxAge = reportMaxAge
	}

	data, err := store.Dashboard(cmd.Context(), profession, minAge, maxAge)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
