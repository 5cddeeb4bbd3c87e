package app

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/blackwell-systems/ga4diag/internal/output"
	"github.com/blackwell-systems/ga4diag/internal/report"
	"github.com/blackwell-systems/ga4diag/internal/resolve"
	"github.com/spf13/cobra"
)

var fieldsProperty string

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Show which dimensions and metrics a property resolves to",
	Long: `Fetch the property's metadata and show which grouping dimension, view
metric and extra metrics the page report would use, and which dimension each
traffic selector falls back to.`,
	RunE: runFields,
}

func init() {
	fieldsCmd.Flags().StringVarP(&fieldsProperty, "property", "p", "", "GA4 property id (required)")
	_ = fieldsCmd.MarkFlagRequired("property")
	rootCmd.AddCommand(fieldsCmd)
}

func runFields(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(flagFormat)
	if err != nil {
		return err
	}

	_, p, err := loadPipeline(cmd.Context())
	if err != nil {
		return err
	}
	f, err := p.Fields(cmd.Context(), flagToken, fieldsProperty)
	if err != nil {
		return fmt.Errorf("resolving fields: %w", err)
	}
	return writeFields(cmd.OutOrStdout(), f, format)
}

func writeFields(w io.Writer, f *report.Fields, format output.Format) error {
	switch format {
	case output.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	case output.FormatYAML:
		data, err := output.YAML(f)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case output.FormatCSV:
		return output.ErrCSVUnsupported
	}

	fmt.Fprintln(w, output.Section("Fields"))
	fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render("Property"), f.PropertyID)
	fmt.Fprintf(w, " %s %d dimensions, %d metrics\n", output.StyleLabel.Render("Schema"), f.DimensionCount, f.MetricCount)
	fmt.Fprintln(w)

	if f.Page != nil {
		fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render("Page dimension"), f.Page.Dimension)
		fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render("View metric"), f.Page.ViewMetric)
		fmt.Fprintf(w, " %s %v\n", output.StyleLabel.Render("Extra metrics"), f.Page.ExtraMetrics)
	} else {
		fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render("Page report"), output.StyleError.Render(f.PageError))
	}
	fmt.Fprintln(w)

	tbl := output.NewTable("selector", "dimension")
	for _, sel := range resolve.TrafficSelectors() {
		dim := f.Traffic[sel]
		if dim == "" {
			dim = output.StyleError.Render("unavailable")
		}
		tbl.AddRow(sel, dim)
	}
	_, err := io.WriteString(w, tbl.Render())
	return err
}
