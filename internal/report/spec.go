package report

import (
	"github.com/blackwell-systems/ga4diag/internal/config"
	"github.com/blackwell-systems/ga4diag/internal/ga4"
	"github.com/blackwell-systems/ga4diag/internal/resolve"
)

// Spec configures one report shape for the generic pipeline.
type Spec struct {
	// Name identifies the report in metadata, logs and audit records.
	Name string

	// DefaultLimit picks the row limit when the caller gives none.
	DefaultLimit func(config.Reports) int

	// Validate checks report-specific input before any backend call.
	Validate func(Request) error

	// NeedsSchema makes the pipeline fetch the property's capabilities and
	// pass them to Select. When false, Select receives nil.
	NeedsSchema bool

	// Select chooses the dimension and metrics to request.
	Select func(caps *resolve.Capabilities, req Request) (resolve.Selection, error)

	// OrderBy picks the sort key for the chosen fields.
	OrderBy func(resolve.Selection) ga4.OrderBy

	// Filter optionally restricts rows backend-side.
	Filter func(Request) *ga4.Filter

	// Label normalizes the dimension value of each row.
	Label func(string) string

	// Classify computes medians and diagnosis tags.
	Classify bool
}

// PageSpec reports which pages underperform and why.
var PageSpec = Spec{
	Name:         "pages",
	DefaultLimit: func(r config.Reports) int { return r.PageLimit },
	NeedsSchema:  true,
	Select: func(caps *resolve.Capabilities, _ Request) (resolve.Selection, error) {
		return resolve.ResolvePage(caps)
	},
	OrderBy: func(sel resolve.Selection) ga4.OrderBy {
		return ga4.OrderBy{Field: sel.ViewMetric, Desc: true}
	},
	Label:    identity,
	Classify: true,
}

// TrafficSpec breaks sessions down by traffic source.
var TrafficSpec = Spec{
	Name:         "traffic",
	DefaultLimit: func(r config.Reports) int { return r.TrafficLimit },
	Validate: func(req Request) error {
		_, err := resolve.TrafficDimension(req.Dim)
		return err
	},
	NeedsSchema: true,
	Select: func(caps *resolve.Capabilities, req Request) (resolve.Selection, error) {
		return resolve.ResolveTraffic(caps, req.Dim)
	},
	OrderBy: func(resolve.Selection) ga4.OrderBy {
		return ga4.OrderBy{Field: "sessions", Desc: true}
	},
	Label: notSet,
}

// SeriesSpec is the daily time series, optionally narrowed to matching
// page paths.
var SeriesSpec = Spec{
	Name:         "timeseries",
	DefaultLimit: func(r config.Reports) int { return r.SeriesLimit },
	Select: func(*resolve.Capabilities, Request) (resolve.Selection, error) {
		return resolve.Selection{
			Dimension:    resolve.SeriesDimension,
			ExtraMetrics: append([]string(nil), resolve.SeriesMetrics...),
		}, nil
	},
	OrderBy: func(sel resolve.Selection) ga4.OrderBy {
		return ga4.OrderBy{Field: sel.Dimension, Dimension: true}
	},
	Filter: func(req Request) *ga4.Filter {
		if req.PagePathContains == "" {
			return nil
		}
		return &ga4.Filter{Field: resolve.SeriesFilterDimension, Contains: req.PagePathContains}
	},
	Label: HyphenateDate,
}

// NotSetLabel replaces an empty traffic dimension value.
const NotSetLabel = "(not set)"

func identity(s string) string { return s }

func notSet(s string) string {
	if s == "" {
		return NotSetLabel
	}
	return s
}

// HyphenateDate turns the backend's compact YYYYMMDD into YYYY-MM-DD. Other
// values are returned unchanged.
func HyphenateDate(s string) string {
	if len(s) != 8 {
		return s
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return s
		}
	}
	return s[:4] + "-" + s[4:6] + "-" + s[6:]
}
