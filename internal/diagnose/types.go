// Package diagnose labels report rows by comparing them against the
// per-metric medians of the row set.
package diagnose

// Diagnosis tags.
const (
	TagBounceHigh        = "bounce rate high (needs improvement)"
	TagBounceLow         = "bounce rate low (healthy)"
	TagEngagementHealthy = "engagement healthy"
	TagLowVisibility     = "low visibility (under-exposed)"
	TagStandard          = "standard"
)

// Metric names the rules read.
const (
	MetricBounceRate     = "bounceRate"
	MetricEngagementRate = "engagementRate"
)

// Thresholds. Rates are on the 0-100 scale.
const (
	BounceHighMargin     = 15.0
	BounceLowFloor       = 40.0
	BounceLowMargin      = 10.0
	EngagementHighMargin = 10.0
	LowVisibilityRatio   = 0.5
)

// Separator joins tags into the serialized diagnosis string.
const Separator = " / "

// Input is everything a rule may look at for one row.
type Input struct {
	// Values maps metric name to the row's value (already on output scale).
	Values map[string]float64

	// Medians maps metric name to the row set's median.
	Medians map[string]float64

	// ViewMetric names the primary volume metric.
	ViewMetric string
}

// Rule examines one row and returns zero or more tags.
type Rule func(in *Input) []string
