package app

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/blackwell-systems/ga4diag/internal/output"
	"github.com/blackwell-systems/ga4diag/internal/report"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	overviewFlags reportFlags
	overviewDim   string
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "All three reports at once",
	Long: `Run the page, traffic and time-series reports concurrently for one
property and date range, then print them in that order. --limit applies to
every report.`,
	RunE: runOverview,
}

func init() {
	overviewFlags.bind(overviewCmd)
	overviewCmd.Flags().StringVar(&overviewDim, "dim", "", "Traffic dimension selector")
	rootCmd.AddCommand(overviewCmd)
}

// overview is the combined structured output.
type overview struct {
	Pages      any `json:"pages"`
	Traffic    any `json:"traffic"`
	Timeseries any `json:"timeseries"`
}

func runOverview(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(flagFormat)
	if err != nil {
		return err
	}
	if format == output.FormatCSV {
		return output.ErrCSVUnsupported
	}

	_, p, err := loadPipeline(cmd.Context())
	if err != nil {
		return err
	}

	req := overviewFlags.request()
	req.Dim = overviewDim
	specs := []report.Spec{report.PageSpec, report.TrafficSpec, report.SeriesSpec}
	reports := make([]*report.Report, len(specs))

	g, ctx := errgroup.WithContext(cmd.Context())
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			rep, err := p.Run(ctx, flagToken, spec, req)
			if err != nil {
				return fmt.Errorf("running %s report: %w", spec.Name, err)
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return writeOverview(cmd.OutOrStdout(), reports, format)
}

func writeOverview(w io.Writer, reports []*report.Report, format output.Format) error {
	switch format {
	case output.FormatJSON, output.FormatYAML:
		combined := overview{
			Pages:      report.Shape(reports[0]),
			Traffic:    report.Shape(reports[1]),
			Timeseries: report.Shape(reports[2]),
		}
		if format == output.FormatYAML {
			data, err := output.YAML(combined)
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(combined)
	default:
		for _, rep := range reports {
			if err := output.WriteReport(w, rep, output.FormatTable); err != nil {
				return err
			}
			fmt.Fprintln(w)
		}
		return nil
	}
}
