// Package ga4 talks to the Google Analytics Data API: it lists the fields a
// property exposes and runs single-dimension reports.
package ga4

// Schema lists the dimension and metric API names a property exposes.
type Schema struct {
	Dimensions []string `json:"dimensions"`
	Metrics    []string `json:"metrics"`
}

// OrderBy sorts report rows by one field.
type OrderBy struct {
	Field     string
	Dimension bool // Field is a dimension rather than a metric.
	Desc      bool
}

// Filter keeps rows whose Field contains Contains, ignoring case.
type Filter struct {
	Field    string
	Contains string
}

// Query describes one report request.
type Query struct {
	PropertyID string
	StartDate  string
	EndDate    string
	Dimension  string
	Metrics    []string
	OrderBy    OrderBy
	Limit      int
	Filter     *Filter
}

// Row is one raw result row: the dimension value and the metric values as
// returned, aligned with Query.Metrics. Missing values are empty strings.
type Row struct {
	Dimension string
	Metrics   []string
}
