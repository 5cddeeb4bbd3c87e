package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/blackwell-systems/ga4diag/internal/report"
	"github.com/blackwell-systems/ga4diag/internal/stats"
)

// Format selects how a report is written.
type Format string

// Supported formats.
const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatYAML  Format = "yaml"
)

// ErrCSVUnsupported is returned when CSV is requested for a report other
// than the page report.
var ErrCSVUnsupported = errors.New("csv output is only available for the page report")

// ParseFormat validates a --format value. Empty means table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatCSV, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, json, csv or yaml)", s)
	}
}

// WriteReport writes rep to w in format f.
func WriteReport(w io.Writer, rep *report.Report, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report.Shape(rep))
	case FormatYAML:
		data, err := YAML(report.Shape(rep))
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatCSV:
		if rep.Meta.Report != report.PageSpec.Name {
			return ErrCSVUnsupported
		}
		return report.WriteCSV(w, rep)
	default:
		_, err := io.WriteString(w, RenderReport(rep))
		return err
	}
}

// RenderReport renders rep as a terminal table with a header block.
func RenderReport(rep *report.Report) string {
	switch rep.Meta.Report {
	case report.TrafficSpec.Name:
		return RenderTraffic(rep)
	case report.SeriesSpec.Name:
		return RenderSeries(rep)
	default:
		return RenderPages(rep)
	}
}

func header(title string, rep *report.Report) string {
	var sb strings.Builder
	sb.WriteString(Section(title))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, " %s %s\n", StyleLabel.Render("Property"), rep.Meta.PropertyID)
	fmt.Fprintf(&sb, " %s %s → %s\n", StyleLabel.Render("Date range"), rep.Meta.StartDate, rep.Meta.EndDate)
	fmt.Fprintf(&sb, " %s %s\n", StyleLabel.Render("Dimension"), rep.Meta.Dimension)
	return sb.String()
}

func note(rep *report.Report) string {
	if rep.Meta.Note == "" {
		return ""
	}
	return "\n " + StyleMuted.Render(rep.Meta.Note) + "\n"
}

// FormatValue renders one metric value for the terminal.
func FormatValue(metric string, v float64) string {
	switch {
	case stats.IsPercentMetric(metric):
		return fmt.Sprintf("%.1f%%", v)
	case metric == "averageSessionDuration":
		return fmt.Sprintf("%.0fs", v)
	default:
		return report.FormatNumber(v)
	}
}

// RenderPages renders the page report: medians, then one row per page with
// its diagnosis.
func RenderPages(rep *report.Report) string {
	var sb strings.Builder
	sb.WriteString(header("Page diagnostics", rep))
	fmt.Fprintf(&sb, " %s %s\n", StyleLabel.Render("View metric"), rep.Meta.ViewMetric)

	if len(rep.Medians) > 0 {
		parts := make([]string, 0, len(rep.Meta.Metrics))
		for _, m := range rep.Meta.Metrics {
			if v, ok := rep.Medians[m]; ok {
				parts = append(parts, fmt.Sprintf("%s %s", m, FormatValue(m, v)))
			}
		}
		fmt.Fprintf(&sb, " %s %s\n", StyleLabel.Render("Medians"), strings.Join(parts, ", "))
	}
	if rep.Empty() {
		sb.WriteString(note(rep))
		return sb.String()
	}
	sb.WriteString("\n")

	headers := []string{rep.Meta.Dimension}
	headers = append(headers, rep.Meta.Metrics...)
	headers = append(headers, "vs median", "diagnosis")
	tbl := NewTable(headers...)
	for i := 1; i <= len(rep.Meta.Metrics)+1; i++ {
		tbl.AlignRight(i)
	}

	median := stats.Lookup(rep.Medians, rep.Meta.ViewMetric)
	for _, row := range rep.Rows {
		cells := []string{row.Dimension}
		for _, m := range rep.Meta.Metrics {
			cells = append(cells, FormatValue(m, row.Values[m]))
		}
		cells = append(cells,
			MedianDelta(row.Values[rep.Meta.ViewMetric], median, true),
			Diagnosis(row.Tags))
		tbl.AddRow(cells...)
	}
	sb.WriteString(tbl.Render())
	return sb.String()
}

// RenderTraffic renders the traffic breakdown with each source's share of
// sessions.
func RenderTraffic(rep *report.Report) string {
	var sb strings.Builder
	sb.WriteString(header("Traffic sources", rep))
	if rep.Empty() {
		sb.WriteString(note(rep))
		return sb.String()
	}
	sb.WriteString("\n")

	total := 0.0
	for _, row := range rep.Rows {
		total += row.Values["sessions"]
	}

	tbl := NewTable("source", "sessions", "share", "users", "engaged", "bounce", "avg session")
	tbl.AlignRight(1, 3, 4, 5, 6)
	for _, row := range rep.Rows {
		v := row.Values
		tbl.AddRow(
			row.Dimension,
			FormatValue("sessions", v["sessions"]),
			ShareBar(v["sessions"], total, 12),
			FormatValue("totalUsers", v["totalUsers"]),
			FormatValue("engagementRate", v["engagementRate"]),
			FormatValue("bounceRate", v["bounceRate"]),
			FormatValue("averageSessionDuration", v["averageSessionDuration"]),
		)
	}
	sb.WriteString(tbl.Render())
	return sb.String()
}

// RenderSeries renders the daily time series with a sessions sparkline.
func RenderSeries(rep *report.Report) string {
	var sb strings.Builder
	sb.WriteString(header("Daily trend", rep))
	if rep.Meta.PagePathContains != "" {
		fmt.Fprintf(&sb, " %s %q\n", StyleLabel.Render("Page path contains"), rep.Meta.PagePathContains)
	}
	if rep.Empty() {
		sb.WriteString(note(rep))
		return sb.String()
	}

	sessions := make([]float64, len(rep.Rows))
	for i, row := range rep.Rows {
		sessions[i] = row.Values["sessions"]
	}
	fmt.Fprintf(&sb, " %s %s\n\n", StyleLabel.Render("Sessions"), StyleHeader.Render(Sparkline(sessions)))

	tbl := NewTable("date", "sessions", "page views", "users", "avg session", "engaged", "bounce")
	tbl.AlignRight(1, 2, 3, 4, 5, 6)
	for _, row := range rep.Rows {
		v := row.Values
		tbl.AddRow(
			row.Dimension,
			FormatValue("sessions", v["sessions"]),
			FormatValue("screenPageViews", v["screenPageViews"]),
			FormatValue("totalUsers", v["totalUsers"]),
			FormatValue("averageSessionDuration", v["averageSessionDuration"]),
			FormatValue("engagementRate", v["engagementRate"]),
			FormatValue("bounceRate", v["bounceRate"]),
		)
	}
	sb.WriteString(tbl.Render())
	return sb.String()
}
