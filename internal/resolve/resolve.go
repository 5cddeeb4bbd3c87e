// Package resolve picks which dimension and metrics to request from a
// property, given the fields its schema actually exposes.
package resolve

import (
	"errors"
	"fmt"
)

// ErrNotAvailable is returned when none of the candidate fields exist in the
// property's schema.
var ErrNotAvailable = errors.New("no acceptable field available")

// Set is a set of field API names.
type Set map[string]struct{}

// NewSet builds a Set from names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Capabilities is the set of dimensions and metrics a property declares.
type Capabilities struct {
	Dimensions Set
	Metrics    Set
}

// NewCapabilities builds a Capabilities from the names reported by the
// schema service.
func NewCapabilities(dimensions, metrics []string) *Capabilities {
	return &Capabilities{
		Dimensions: NewSet(dimensions...),
		Metrics:    NewSet(metrics...),
	}
}

// Selection is the outcome of resolving fields for a report.
type Selection struct {
	Dimension    string   `json:"dimension"`
	ViewMetric   string   `json:"viewMetric,omitempty"`
	ExtraMetrics []string `json:"extraMetrics"`
}

// Metrics returns the view metric followed by the extra metrics, in request
// order.
func (s Selection) Metrics() []string {
	out := make([]string, 0, 1+len(s.ExtraMetrics))
	if s.ViewMetric != "" {
		out = append(out, s.ViewMetric)
	}
	return append(out, s.ExtraMetrics...)
}

// FirstAvailable returns the first candidate present in available.
func FirstAvailable(candidates []string, available Set) (string, bool) {
	for _, c := range candidates {
		if available.Has(c) {
			return c, true
		}
	}
	return "", false
}

// Resolve picks the first available dimension and view metric from their
// priority lists, and keeps every available extra metric in input order.
// An extra equal to the chosen view metric is skipped.
func Resolve(caps *Capabilities, dimPriority, viewPriority, extras []string) (Selection, error) {
	if caps == nil {
		return Selection{}, fmt.Errorf("dimension: %w", ErrNotAvailable)
	}
	dim, ok := FirstAvailable(dimPriority, caps.Dimensions)
	if !ok {
		return Selection{}, fmt.Errorf("dimension (tried %v): %w", dimPriority, ErrNotAvailable)
	}
	view, ok := FirstAvailable(viewPriority, caps.Metrics)
	if !ok {
		return Selection{}, fmt.Errorf("view metric (tried %v): %w", viewPriority, ErrNotAvailable)
	}

	sel := Selection{Dimension: dim, ViewMetric: view, ExtraMetrics: []string{}}
	for _, m := range extras {
		if m == view || !caps.Metrics.Has(m) {
			continue
		}
		sel.ExtraMetrics = append(sel.ExtraMetrics, m)
	}
	return sel, nil
}

// ResolvePage resolves fields for the page diagnostic report using the
// default priority lists.
func ResolvePage(caps *Capabilities) (Selection, error) {
	return Resolve(caps, PageDimensions, ViewMetrics, ExtraMetrics)
}
