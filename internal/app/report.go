package app

import (
	"fmt"

	"github.com/blackwell-systems/ga4diag/internal/output"
	"github.com/blackwell-systems/ga4diag/internal/report"
	"github.com/spf13/cobra"
)

// reportFlags are the request fields shared by every report command.
type reportFlags struct {
	property string
	start    string
	end      string
	limit    int
}

func (f *reportFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.property, "property", "p", "", "GA4 property id (required)")
	cmd.Flags().StringVar(&f.start, "start", "", "Start date, YYYY-MM-DD or relative (default from config, e.g. 28daysAgo)")
	cmd.Flags().StringVar(&f.end, "end", "", "End date, YYYY-MM-DD or relative (default from config, e.g. yesterday)")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Maximum rows (0 = report default)")
	_ = cmd.MarkFlagRequired("property")
}

func (f *reportFlags) request() report.Request {
	return report.Request{
		PropertyID: f.property,
		StartDate:  f.start,
		EndDate:    f.end,
		Limit:      f.limit,
	}
}

// runReport runs spec for req and writes it to stdout in --format.
func runReport(cmd *cobra.Command, spec report.Spec, req report.Request) error {
	format, err := output.ParseFormat(flagFormat)
	if err != nil {
		return err
	}

	_, p, err := loadPipeline(cmd.Context())
	if err != nil {
		return err
	}

	rep, err := p.Run(cmd.Context(), flagToken, spec, req)
	if err != nil {
		return fmt.Errorf("running %s report: %w", spec.Name, err)
	}
	return output.WriteReport(cmd.OutOrStdout(), rep, format)
}
