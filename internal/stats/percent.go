package stats

// percentMetrics are reported by the backend as fractions in [0, 1].
var percentMetrics = map[string]bool{
	"bounceRate":            true,
	"engagementRate":        true,
	"sessionConversionRate": true,
	"userConversionRate":    true,
	"crashFreeUsersRate":    true,
}

// IsPercentMetric reports whether metric arrives on a 0-1 scale.
func IsPercentMetric(metric string) bool {
	return percentMetrics[metric]
}

// ScalePercent converts a 0-1 fraction to 0-100.
func ScalePercent(v float64) float64 {
	return v * 100
}

// Normalize returns v on its output scale: percentages become 0-100, other
// metrics are returned unchanged. Call it once per raw backend value.
func Normalize(metric string, v float64) float64 {
	if IsPercentMetric(metric) {
		return ScalePercent(v)
	}
	return v
}
