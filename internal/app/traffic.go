package app

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/ga4diag/internal/report"
	"github.com/blackwell-systems/ga4diag/internal/resolve"
	"github.com/spf13/cobra"
)

var (
	trafficFlags reportFlags
	trafficDim   string
)

var trafficCmd = &cobra.Command{
	Use:   "traffic",
	Short: "Sessions by traffic source",
	Long: fmt.Sprintf(`Break sessions, users, engagement and bounce rate down by traffic
source, ordered by sessions. --dim selects the grouping (%s); when the
property lacks it, the first available dimension in that order is used.`,
		strings.Join(resolve.TrafficSelectors(), ", ")),
	RunE: runTraffic,
}

func init() {
	trafficFlags.bind(trafficCmd)
	trafficCmd.Flags().StringVar(&trafficDim, "dim", resolve.DefaultTrafficSelector, "Traffic dimension selector")
	rootCmd.AddCommand(trafficCmd)
}

func runTraffic(cmd *cobra.Command, args []string) error {
	req := trafficFlags.request()
	req.Dim = trafficDim
	return runReport(cmd, report.TrafficSpec, req)
}
