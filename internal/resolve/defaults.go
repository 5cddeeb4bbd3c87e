package resolve

import (
	"errors"
	"fmt"
	"strings"
)

// PageDimensions is the priority order for the page report's grouping key.
var PageDimensions = []string{"pagePath", "pageLocation", "pageTitle", "screenName"}

// ViewMetrics is the priority order for the primary volume metric.
var ViewMetrics = []string{"views", "screenPageViews", "eventCount", "sessions"}

// ExtraMetrics are requested alongside the view metric when available.
var ExtraMetrics = []string{"bounceRate", "engagementRate", "averageSessionDuration", "totalUsers", "sessions"}

// TrafficDimensions is the fallback order for the traffic breakdown.
var TrafficDimensions = []string{
	"sessionSourceMedium",
	"sessionDefaultChannelGroup",
	"sessionSource",
	"sessionMedium",
	"pageReferrer",
}

// DefaultTrafficSelector is used when the caller does not choose one.
const DefaultTrafficSelector = "sourceMedium"

// trafficSelectors maps caller-facing selector names to dimension API names.
var trafficSelectors = map[string]string{
	"sourcemedium": "sessionSourceMedium",
	"channel":      "sessionDefaultChannelGroup",
	"source":       "sessionSource",
	"medium":       "sessionMedium",
	"referrer":     "pageReferrer",
}

// ErrUnknownSelector is returned for a traffic selector outside the enum.
var ErrUnknownSelector = errors.New("unknown traffic dimension selector")

// TrafficSelectors lists the accepted selector names.
func TrafficSelectors() []string {
	return []string{"sourceMedium", "channel", "source", "medium", "referrer"}
}

// TrafficDimension maps a selector (case-insensitive) to its dimension.
// An empty selector means DefaultTrafficSelector.
func TrafficDimension(selector string) (string, error) {
	if strings.TrimSpace(selector) == "" {
		selector = DefaultTrafficSelector
	}
	dim, ok := trafficSelectors[strings.ToLower(strings.TrimSpace(selector))]
	if !ok {
		return "", fmt.Errorf("%w %q (want one of %s)", ErrUnknownSelector, selector,
			strings.Join(TrafficSelectors(), ", "))
	}
	return dim, nil
}

// ResolveTraffic picks the requested traffic dimension, or the first
// available entry of TrafficDimensions when the schema lacks it.
func ResolveTraffic(caps *Capabilities, selector string) (Selection, error) {
	want, err := TrafficDimension(selector)
	if err != nil {
		return Selection{}, err
	}
	if caps == nil {
		return Selection{}, fmt.Errorf("traffic dimension: %w", ErrNotAvailable)
	}
	candidates := append([]string{want}, TrafficDimensions...)
	dim, ok := FirstAvailable(candidates, caps.Dimensions)
	if !ok {
		return Selection{}, fmt.Errorf("traffic dimension (tried %v): %w", candidates, ErrNotAvailable)
	}
	return Selection{Dimension: dim, ExtraMetrics: append([]string(nil), SessionMetrics...)}, nil
}

// SessionMetrics are the fixed metrics of the traffic breakdown, in output
// order.
var SessionMetrics = []string{"sessions", "totalUsers", "engagementRate", "bounceRate", "averageSessionDuration"}

// SeriesDimension is the fixed grouping key of the time-series report.
const SeriesDimension = "date"

// SeriesMetrics are the fixed metrics of the time-series report.
var SeriesMetrics = []string{"sessions", "screenPageViews", "totalUsers", "averageSessionDuration", "engagementRate", "bounceRate"}

// SeriesFilterDimension is matched by the time-series path filter.
const SeriesFilterDimension = "pagePath"
