package app

import (
	"github.com/blackwell-systems/ga4diag/internal/report"
	"github.com/spf13/cobra"
)

var pagesFlags reportFlags

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Page diagnostics for a property",
	Long: `Query per-page views and engagement, compute the median of every
metric, and tag each page: bounce rate high or low against the median, low
visibility when views fall under half the median, engagement healthy, or
standard.

Fields are resolved against the property's metadata, so properties without
"views" fall back to screenPageViews, eventCount or sessions.`,
	Example: `  ga4diag pages -p 123456789
  ga4diag pages -p 123456789 --start 2024-01-01 --end 2024-01-31 --format csv > pages.csv`,
	RunE: runPages,
}

func init() {
	pagesFlags.bind(pagesCmd)
	rootCmd.AddCommand(pagesCmd)
}

func runPages(cmd *cobra.Command, args []string) error {
	return runReport(cmd, report.PageSpec, pagesFlags.request())
}
