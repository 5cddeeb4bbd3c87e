package diagnose

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_BounceScenario(t *testing.T) {
	e := NewEngine()
	medians := map[string]float64{"bounceRate": 55}

	high := e.Classify(map[string]float64{"bounceRate": 80}, medians, "")
	low := e.Classify(map[string]float64{"bounceRate": 30}, medians, "")

	assert.Equal(t, []string{TagBounceHigh}, high)
	assert.Equal(t, []string{TagBounceLow}, low)
}

func TestClassify_Standard(t *testing.T) {
	e := NewEngine()
	tests := []struct {
		name    string
		values  map[string]float64
		medians map[string]float64
		view    string
	}{
		{"no medians", map[string]float64{"bounceRate": 90, "views": 1}, map[string]float64{}, "views"},
		{"nil everything", nil, nil, ""},
		{"all near median", map[string]float64{"bounceRate": 50, "engagementRate": 60, "views": 100},
			map[string]float64{"bounceRate": 50, "engagementRate": 60, "views": 100}, "views"},
		{"NaN median", map[string]float64{"bounceRate": 10}, map[string]float64{"bounceRate": math.NaN()}, ""},
		{"NaN row value", map[string]float64{"views": math.NaN()}, map[string]float64{"views": 10}, "views"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []string{TagStandard}, e.Classify(tt.values, tt.medians, tt.view))
		})
	}
}

func TestClassify_MultipleTagsInRuleOrder(t *testing.T) {
	e := NewEngine()
	medians := map[string]float64{"bounceRate": 70, "engagementRate": 40, "views": 100}
	values := map[string]float64{"bounceRate": 35, "engagementRate": 55, "views": 10}

	got := e.Classify(values, medians, "views")

	assert.Equal(t, []string{TagBounceLow, TagEngagementHealthy, TagLowVisibility}, got)
	assert.Equal(t, "bounce rate low (healthy) / engagement healthy / low visibility (under-exposed)", Join(got))
}

func TestBounceLow_FloorOf40(t *testing.T) {
	// median-10 = 20, so the floor of 40 applies.
	in := &Input{Values: map[string]float64{"bounceRate": 40}, Medians: map[string]float64{"bounceRate": 30}}
	assert.Equal(t, []string{TagBounceLow}, BounceLow(in))

	in.Values["bounceRate"] = 40.01
	assert.Nil(t, BounceLow(in))
}

func TestBounceHigh_Boundary(t *testing.T) {
	in := &Input{Values: map[string]float64{"bounceRate": 65}, Medians: map[string]float64{"bounceRate": 50}}
	assert.Equal(t, []string{TagBounceHigh}, BounceHigh(in))

	in.Values["bounceRate"] = 64.99
	assert.Nil(t, BounceHigh(in))
}

func TestBounceRules_EvaluatedIndependently(t *testing.T) {
	// Median 25: high threshold is 40, low threshold is max(40, 15) = 40.
	// A row at exactly 40 satisfies both.
	e := NewEngine()
	got := e.Classify(map[string]float64{"bounceRate": 40}, map[string]float64{"bounceRate": 25}, "")
	assert.Equal(t, []string{TagBounceHigh, TagBounceLow}, got)
}

func TestLowVisibility(t *testing.T) {
	tests := []struct {
		name string
		row  float64
		med  float64
		want []string
	}{
		{"well below half", 10, 100, []string{TagLowVisibility}},
		{"exactly half", 50, 100, nil},
		{"above half", 80, 100, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := &Input{
				Values:     map[string]float64{"screenPageViews": tt.row},
				Medians:    map[string]float64{"screenPageViews": tt.med},
				ViewMetric: "screenPageViews",
			}
			assert.Equal(t, tt.want, LowVisibility(in))
		})
	}
}

func TestEngine_CustomRules(t *testing.T) {
	e := &Engine{rules: []Rule{func(*Input) []string { return []string{"a", "b"} }}}
	assert.Equal(t, []string{"a", "b"}, e.Classify(nil, nil, ""))

	empty := &Engine{}
	assert.Equal(t, []string{TagStandard}, empty.Classify(nil, nil, ""))
}
