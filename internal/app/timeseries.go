package app

import (
	"github.com/blackwell-systems/ga4diag/internal/report"
	"github.com/spf13/cobra"
)

var (
	seriesFlags        reportFlags
	seriesPathContains string
)

var timeseriesCmd = &cobra.Command{
	Use:     "timeseries",
	Aliases: []string{"series"},
	Short:   "Daily trend, optionally for matching pages",
	Long: `Report sessions, page views, users, session duration, engagement and
bounce rate per day in date order. --path-contains restricts the report to
pages whose path contains the given text (case-insensitive).`,
	RunE: runTimeseries,
}

func init() {
	seriesFlags.bind(timeseriesCmd)
	timeseriesCmd.Flags().StringVar(&seriesPathContains, "path-contains", "", "Only count pages whose path contains this text")
	rootCmd.AddCommand(timeseriesCmd)
}

func runTimeseries(cmd *cobra.Command, args []string) error {
	req := seriesFlags.request()
	req.PagePathContains = seriesPathContains
	return runReport(cmd, report.SeriesSpec, req)
}
