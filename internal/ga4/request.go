package ga4

import (
	"strings"

	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
)

// MaxLimit is the largest row count the Data API returns per request.
const MaxLimit = 100000

const propertyPrefix = "properties/"

// PropertyName returns the resource name for id, accepting ids with or
// without the "properties/" prefix.
func PropertyName(id string) string {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, propertyPrefix) {
		return id
	}
	return propertyPrefix + id
}

// metadataName is the metadata resource for a property.
func metadataName(id string) string {
	return PropertyName(id) + "/metadata"
}

// buildRequest converts a Query into a Data API runReport request.
func buildRequest(q Query) *analyticsdata.RunReportRequest {
	req := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: q.StartDate, EndDate: q.EndDate}},
		Dimensions: []*analyticsdata.Dimension{{Name: q.Dimension}},
	}
	for _, m := range q.Metrics {
		req.Metrics = append(req.Metrics, &analyticsdata.Metric{Name: m})
	}

	if q.OrderBy.Field != "" {
		ob := &analyticsdata.OrderBy{Desc: q.OrderBy.Desc}
		if q.OrderBy.Dimension {
			ob.Dimension = &analyticsdata.DimensionOrderBy{DimensionName: q.OrderBy.Field}
		} else {
			ob.Metric = &analyticsdata.MetricOrderBy{MetricName: q.OrderBy.Field}
		}
		req.OrderBys = []*analyticsdata.OrderBy{ob}
	}

	limit := q.Limit
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if limit > 0 {
		req.Limit = int64(limit)
	}

	if q.Filter != nil && q.Filter.Contains != "" {
		req.DimensionFilter = &analyticsdata.FilterExpression{
			Filter: &analyticsdata.Filter{
				FieldName: q.Filter.Field,
				StringFilter: &analyticsdata.StringFilter{
					MatchType:     "CONTAINS",
					Value:         q.Filter.Contains,
					CaseSensitive: false,
				},
			},
		}
	}
	return req
}

// convertRows flattens a runReport response. Rows with fewer metric values
// than requested are padded with empty strings.
func convertRows(resp *analyticsdata.RunReportResponse, metrics int) []Row {
	if resp == nil {
		return []Row{}
	}
	rows := make([]Row, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		if r == nil {
			continue
		}
		row := Row{Metrics: make([]string, metrics)}
		if len(r.DimensionValues) > 0 && r.DimensionValues[0] != nil {
			row.Dimension = r.DimensionValues[0].Value
		}
		for i := 0; i < metrics && i < len(r.MetricValues); i++ {
			if r.MetricValues[i] != nil {
				row.Metrics[i] = r.MetricValues[i].Value
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// convertMetadata extracts API names from a metadata response.
func convertMetadata(md *analyticsdata.Metadata) Schema {
	s := Schema{Dimensions: []string{}, Metrics: []string{}}
	if md == nil {
		return s
	}
	for _, d := range md.Dimensions {
		if d != nil && d.ApiName != "" {
			s.Dimensions = append(s.Dimensions, d.ApiName)
		}
	}
	for _, m := range md.Metrics {
		if m != nil && m.ApiName != "" {
			s.Metrics = append(s.Metrics, m.ApiName)
		}
	}
	return s
}
