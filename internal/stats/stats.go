// Package stats computes population statistics over report rows.
package stats

import (
	"math"
	"sort"
)

// Median returns the median of the finite values in vals, or NaN when there
// are none. vals is not modified.
func Median(vals []float64) float64 {
	finite := make([]float64, 0, len(vals))
	for _, v := range vals {
		if Defined(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return math.NaN()
	}
	sort.Float64s(finite)
	n := len(finite)
	if n%2 == 0 {
		return (finite[n/2-1] + finite[n/2]) / 2
	}
	return finite[n/2]
}

// Defined reports whether v is a usable number (not NaN or ±Inf).
func Defined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Medians computes the median of each metric over rows. Metrics whose median
// is undefined are left out of the table.
func Medians(rows []map[string]float64, metrics []string) map[string]float64 {
	out := make(map[string]float64, len(metrics))
	col := make([]float64, 0, len(rows))
	for _, m := range metrics {
		col = col[:0]
		for _, r := range rows {
			if v, ok := r[m]; ok {
				col = append(col, v)
			}
		}
		if med := Median(col); Defined(med) {
			out[m] = med
		}
	}
	return out
}

// Lookup returns the median for metric, or NaN when the table has none.
func Lookup(medians map[string]float64, metric string) float64 {
	if v, ok := medians[metric]; ok {
		return v
	}
	return math.NaN()
}
