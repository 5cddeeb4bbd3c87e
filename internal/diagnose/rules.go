package diagnose

import (
	"math"

	"github.com/blackwell-systems/ga4diag/internal/stats"
)

// pair returns the row value and median for metric, and whether both are
// defined.
func (in *Input) pair(metric string) (row, median float64, ok bool) {
	if metric == "" {
		return 0, 0, false
	}
	v, has := in.Values[metric]
	if !has {
		v = math.NaN()
	}
	med := stats.Lookup(in.Medians, metric)
	return v, med, stats.Defined(v) && stats.Defined(med)
}

// BounceHigh tags rows whose bounce rate is at least 15 points above the
// median.
func BounceHigh(in *Input) []string {
	row, med, ok := in.pair(MetricBounceRate)
	if ok && row >= med+BounceHighMargin {
		return []string{TagBounceHigh}
	}
	return nil
}

// BounceLow tags rows whose bounce rate is at or below the larger of 40 and
// 10 points under the median. It runs independently of BounceHigh.
func BounceLow(in *Input) []string {
	row, med, ok := in.pair(MetricBounceRate)
	if ok && row <= math.Max(BounceLowFloor, med-BounceLowMargin) {
		return []string{TagBounceLow}
	}
	return nil
}

// EngagementHealthy tags rows whose engagement rate is at least 10 points
// above the median.
func EngagementHealthy(in *Input) []string {
	row, med, ok := in.pair(MetricEngagementRate)
	if ok && row >= med+EngagementHighMargin {
		return []string{TagEngagementHealthy}
	}
	return nil
}

// LowVisibility tags rows whose view metric is below half the median.
func LowVisibility(in *Input) []string {
	row, med, ok := in.pair(in.ViewMetric)
	if ok && row < med*LowVisibilityRatio {
		return []string{TagLowVisibility}
	}
	return nil
}
