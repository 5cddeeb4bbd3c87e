package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/blackwell-systems/ga4diag/internal/diagnose"
)

// PageMeta is the metadata block of the page report.
type PageMeta struct {
	Dimension    string   `json:"dimension"`
	ViewMetric   string   `json:"viewMetric"`
	ExtraMetrics []string `json:"extraMetrics"`
	PropertyID   string   `json:"propertyId"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	Limit        int      `json:"limit"`
	RowCount     int      `json:"rowCount"`
	Note         string   `json:"note,omitempty"`
}

// PageRow is one page with its metrics and diagnosis. It marshals to a flat
// object: dimensionValue, each metric in request order, then diagnosis.
type PageRow struct {
	DimensionValue string
	Metrics        []string
	Values         map[string]float64
	Diagnosis      string
}

// MarshalJSON keeps the column order stable.
func (p PageRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeMember(&buf, "dimensionValue", p.DimensionValue, true); err != nil {
		return nil, err
	}
	for _, m := range p.Metrics {
		if err := writeMember(&buf, m, p.Values[m], false); err != nil {
			return nil, err
		}
	}
	if err := writeMember(&buf, "diagnosis", p.Diagnosis, false); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, value any, first bool) error {
	if !first {
		buf.WriteByte(',')
	}
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// PageResponse is the JSON body of the page report.
type PageResponse struct {
	Meta    PageMeta           `json:"meta"`
	Medians map[string]float64 `json:"medians"`
	Pages   []PageRow          `json:"pages"`
}

// PageJSON shapes a page report for serialization.
func PageJSON(r *Report) PageResponse {
	out := PageResponse{
		Meta: PageMeta{
			Dimension:    r.Meta.Dimension,
			ViewMetric:   r.Meta.ViewMetric,
			ExtraMetrics: nonNil(r.Meta.ExtraMetrics),
			PropertyID:   r.Meta.PropertyID,
			StartDate:    r.Meta.StartDate,
			EndDate:      r.Meta.EndDate,
			Limit:        r.Meta.Limit,
			RowCount:     len(r.Rows),
			Note:         r.Meta.Note,
		},
		Medians: make(map[string]float64, len(r.Medians)),
		Pages:   make([]PageRow, 0, len(r.Rows)),
	}
	for k, v := range r.Medians {
		out.Medians[k] = v
	}
	for _, row := range r.Rows {
		out.Pages = append(out.Pages, PageRow{
			DimensionValue: row.Dimension,
			Metrics:        r.Meta.Metrics,
			Values:         row.Values,
			Diagnosis:      diagnose.Join(row.Tags),
		})
	}
	return out
}

// SeriesMeta is the metadata block shared by the traffic and time-series
// reports.
type SeriesMeta struct {
	Dimension        string   `json:"dimension"`
	Dim              string   `json:"dim,omitempty"`
	Metrics          []string `json:"metrics"`
	PropertyID       string   `json:"propertyId"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate"`
	Limit            int      `json:"limit"`
	PagePathContains string   `json:"pagePathContains,omitempty"`
	RowCount         int      `json:"rowCount"`
	Note             string   `json:"note,omitempty"`
}

func seriesMeta(r *Report) SeriesMeta {
	return SeriesMeta{
		Dimension:        r.Meta.Dimension,
		Dim:              r.Meta.Selector,
		Metrics:          nonNil(r.Meta.Metrics),
		PropertyID:       r.Meta.PropertyID,
		StartDate:        r.Meta.StartDate,
		EndDate:          r.Meta.EndDate,
		Limit:            r.Meta.Limit,
		PagePathContains: r.Meta.PagePathContains,
		RowCount:         len(r.Rows),
		Note:             r.Meta.Note,
	}
}

// TrafficRow is one traffic source.
type TrafficRow struct {
	Label                  string  `json:"label"`
	Sessions               float64 `json:"sessions"`
	TotalUsers             float64 `json:"totalUsers"`
	EngagementRate         float64 `json:"engagementRate"`
	BounceRate             float64 `json:"bounceRate"`
	AverageSessionDuration float64 `json:"averageSessionDuration"`
}

// TrafficResponse is the JSON body of the traffic report.
type TrafficResponse struct {
	Meta SeriesMeta   `json:"meta"`
	Rows []TrafficRow `json:"rows"`
}

// TrafficJSON shapes a traffic report for serialization.
func TrafficJSON(r *Report) TrafficResponse {
	out := TrafficResponse{Meta: seriesMeta(r), Rows: make([]TrafficRow, 0, len(r.Rows))}
	for _, row := range r.Rows {
		out.Rows = append(out.Rows, TrafficRow{
			Label:                  row.Dimension,
			Sessions:               row.Values["sessions"],
			TotalUsers:             row.Values["totalUsers"],
			EngagementRate:         row.Values["engagementRate"],
			BounceRate:             row.Values["bounceRate"],
			AverageSessionDuration: row.Values["averageSessionDuration"],
		})
	}
	return out
}

// SeriesRow is one day of the time series.
type SeriesRow struct {
	Date          string  `json:"date"`
	Sessions      float64 `json:"sessions"`
	PageViews     float64 `json:"pageViews"`
	Users         float64 `json:"users"`
	AvgSessionSec float64 `json:"avgSessionSec"`
	ERPercent     float64 `json:"erPercent"`
	BRPercent     float64 `json:"brPercent"`
}

// SeriesResponse is the JSON body of the time-series report.
type SeriesResponse struct {
	Meta SeriesMeta  `json:"meta"`
	Rows []SeriesRow `json:"rows"`
}

// SeriesJSON shapes a time-series report for serialization.
func SeriesJSON(r *Report) SeriesResponse {
	out := SeriesResponse{Meta: seriesMeta(r), Rows: make([]SeriesRow, 0, len(r.Rows))}
	for _, row := range r.Rows {
		out.Rows = append(out.Rows, SeriesRow{
			Date:          row.Dimension,
			Sessions:      row.Values["sessions"],
			PageViews:     row.Values["screenPageViews"],
			Users:         row.Values["totalUsers"],
			AvgSessionSec: row.Values["averageSessionDuration"],
			ERPercent:     row.Values["engagementRate"],
			BRPercent:     row.Values["bounceRate"],
		})
	}
	return out
}

// Shape returns the JSON body for r according to the report that produced
// it.
func Shape(r *Report) any {
	switch r.Meta.Report {
	case TrafficSpec.Name:
		return TrafficJSON(r)
	case SeriesSpec.Name:
		return SeriesJSON(r)
	default:
		return PageJSON(r)
	}
}

// CSVHeader returns the page report's CSV column names. They match the JSON
// keys of PageRow.
func CSVHeader(r *Report) []string {
	header := make([]string, 0, len(r.Meta.Metrics)+2)
	header = append(header, "dimensionValue")
	header = append(header, r.Meta.Metrics...)
	return append(header, "diagnosis")
}

// WriteCSV writes the page report as CSV: a header line, then one line per
// row. Fields containing a comma or double quote are quoted with inner quotes
// doubled.
func WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader(r)); err != nil {
		return err
	}
	for _, row := range r.Rows {
		rec := make([]string, 0, len(r.Meta.Metrics)+2)
		rec = append(rec, row.Dimension)
		for _, m := range r.Meta.Metrics {
			rec = append(rec, FormatNumber(row.Values[m]))
		}
		rec = append(rec, diagnose.Join(row.Tags))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatNumber renders v with the fewest digits that round-trip.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
