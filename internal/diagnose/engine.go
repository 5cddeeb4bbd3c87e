package diagnose

import "strings"

// Engine runs its rules in order against a row and collects their tags.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine with the built-in rules in evaluation order.
func NewEngine() *Engine {
	return &Engine{
		rules: []Rule{
			BounceHigh,
			BounceLow,
			EngagementHealthy,
			LowVisibility,
		},
	}
}

// Classify returns the row's tags in rule order. The result always has at
// least one element: TagStandard when no rule fires.
func (e *Engine) Classify(values, medians map[string]float64, viewMetric string) []string {
	in := &Input{Values: values, Medians: medians, ViewMetric: viewMetric}
	var tags []string
	for _, rule := range e.rules {
		tags = append(tags, rule(in)...)
	}
	if len(tags) == 0 {
		return []string{TagStandard}
	}
	return tags
}

// Join renders tags as the single diagnosis string.
func Join(tags []string) string {
	return strings.Join(tags, Separator)
}
