package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		vals []float64
		want float64
	}{
		{"single", []float64{5.0}, 5.0},
		{"odd", []float64{1.0, 3.0, 2.0}, 2.0},
		{"even", []float64{1.0, 2.0, 3.0, 4.0}, 2.5},
		{"ignores NaN", []float64{math.NaN(), 1, 3}, 2},
		{"ignores Inf", []float64{math.Inf(1), 4, math.Inf(-1)}, 4},
		{"negative", []float64{-3, -1, -2}, -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Median(tt.vals), 1e-9)
		})
	}
}

func TestMedian_Undefined(t *testing.T) {
	tests := []struct {
		name string
		vals []float64
	}{
		{"nil", nil},
		{"empty", []float64{}},
		{"all NaN", []float64{math.NaN(), math.NaN()}},
		{"all Inf", []float64{math.Inf(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Median(tt.vals)
			assert.True(t, math.IsNaN(got), "want NaN, got %v", got)
			assert.False(t, Defined(got))
		})
	}
}

func TestMedian_DoesNotReorderInput(t *testing.T) {
	vals := []float64{3, 1, 2}
	Median(vals)
	assert.Equal(t, []float64{3, 1, 2}, vals)
}

func TestMedians(t *testing.T) {
	rows := []map[string]float64{
		{"views": 10, "bounceRate": 30},
		{"views": 30, "bounceRate": 80},
		{"views": 20},
	}

	got := Medians(rows, []string{"views", "bounceRate", "engagementRate"})

	assert.Equal(t, map[string]float64{"views": 20, "bounceRate": 55}, got)
	assert.True(t, math.IsNaN(Lookup(got, "engagementRate")))
	assert.Equal(t, 20.0, Lookup(got, "views"))
}

func TestMedians_EmptyRows(t *testing.T) {
	got := Medians(nil, []string{"views"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNormalize(t *testing.T) {
	assert.InDelta(t, 4.23, Normalize("bounceRate", 0.0423), 1e-9)
	assert.InDelta(t, 61.5, Normalize("engagementRate", 0.615), 1e-9)
	assert.Equal(t, 0.0423, Normalize("sessions", 0.0423))
	assert.True(t, IsPercentMetric("bounceRate"))
	assert.False(t, IsPercentMetric("averageSessionDuration"))
}
