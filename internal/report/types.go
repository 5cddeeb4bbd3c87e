// Package report runs the query → normalize → statistics → classify pipeline
// shared by the page, traffic and time-series reports, and serializes the
// results.
package report

import (
	"errors"
	"fmt"

	"github.com/blackwell-systems/ga4diag/internal/resolve"
)

// ErrMissingProperty is returned when the request has no property id.
var ErrMissingProperty = errors.New("propertyId is required")

// ErrInvalidLimit is returned for a negative row limit.
var ErrInvalidLimit = errors.New("limit must be a positive integer")

// EmptyNote explains a report with zero rows. An empty report is not an error.
const EmptyNote = "no rows returned for this property and date range"

// UpstreamError wraps a failed or timed-out call to the analytics backend.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("analytics backend %s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsBadRequest reports whether err was caused by the caller's input or by
// the property lacking every acceptable field.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrMissingProperty) ||
		errors.Is(err, ErrInvalidLimit) ||
		errors.Is(err, resolve.ErrNotAvailable) ||
		errors.Is(err, resolve.ErrUnknownSelector)
}

// Request is the caller's input, shared by all three reports. Fields a
// report does not use are ignored.
type Request struct {
	PropertyID       string `json:"propertyId"`
	StartDate        string `json:"startDate,omitempty"`
	EndDate          string `json:"endDate,omitempty"`
	Limit            int    `json:"limit,omitempty"`
	PagePathContains string `json:"pagePathContains,omitempty"`
	Dim              string `json:"dim,omitempty"`
}

// Meta describes how a report was produced.
type Meta struct {
	Report           string
	Dimension        string
	ViewMetric       string
	ExtraMetrics     []string
	Metrics          []string
	PropertyID       string
	StartDate        string
	EndDate          string
	Limit            int
	Selector         string
	PagePathContains string
	Note             string
}

// Row is one normalized result row. Values holds every requested metric on
// its output scale.
type Row struct {
	Dimension string
	Values    map[string]float64
	Tags      []string
}

// Report is the complete, immutable result of one pipeline run.
type Report struct {
	Meta Meta

	// Medians is set only for reports that classify rows.
	Medians map[string]float64

	Rows []Row
}

// Empty reports whether the backend returned no rows.
func (r *Report) Empty() bool {
	return len(r.Rows) == 0
}
