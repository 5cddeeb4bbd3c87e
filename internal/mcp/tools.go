package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blackwell-systems/ga4diag/internal/report"
)

// PropertiesResult lists the properties the server's credential may query.
type PropertiesResult struct {
	Mode         string   `json:"mode"`
	Unrestricted bool     `json:"unrestricted"`
	Properties   []string `json:"properties"`
}

const dateProps = `"startDate":{"type":"string","description":"YYYY-MM-DD or a relative token such as 28daysAgo (default 28daysAgo)"},` +
	`"endDate":{"type":"string","description":"YYYY-MM-DD or a relative token such as yesterday (default yesterday)"},` +
	`"limit":{"type":"integer","minimum":0,"description":"Maximum rows (0 means the report default)"}`

var (
	noArgsSchema = json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`)
	pageSchema   = json.RawMessage(`{"type":"object","properties":{` +
		`"propertyId":{"type":"string","description":"GA4 property id"},` + dateProps +
		`},"required":["propertyId"],"additionalProperties":false}`)
	propertySchema = json.RawMessage(`{"type":"object","properties":{` +
		`"propertyId":{"type":"string","description":"GA4 property id"}` +
		`},"required":["propertyId"],"additionalProperties":false}`)
	trafficSchema = json.RawMessage(`{"type":"object","properties":{` +
		`"propertyId":{"type":"string","description":"GA4 property id"},` + dateProps + `,` +
		`"dim":{"type":"string","enum":["sourceMedium","channel","source","medium","referrer"],"description":"Traffic breakdown (default sourceMedium)"}` +
		`},"required":["propertyId"],"additionalProperties":false}`)
	seriesSchema = json.RawMessage(`{"type":"object","properties":{` +
		`"propertyId":{"type":"string","description":"GA4 property id"},` + dateProps + `,` +
		`"pagePathContains":{"type":"string","description":"Only count pages whose path contains this text (case-insensitive)"}` +
		`},"required":["propertyId"],"additionalProperties":false}`)
)

// addReportTools registers one tool per report plus the property and field
// lookups.
func (s *Server) addReportTools() {
	s.register("page_diagnostics",
		"Per-page metrics with medians and a diagnosis (bounce, engagement, visibility) for a GA4 property.",
		pageSchema, s.reportHandler(report.PageSpec))
	s.register("traffic_breakdown",
		"Sessions, users, engagement and bounce by traffic source for a GA4 property.",
		trafficSchema, s.reportHandler(report.TrafficSpec))
	s.register("time_series",
		"Daily sessions, page views, users, engagement and bounce for a GA4 property, optionally filtered by page path.",
		seriesSchema, s.reportHandler(report.SeriesSpec))
	s.register("property_fields",
		"How the reports resolve against a GA4 property's schema: page dimension, view metric, extra metrics and the dimension behind each traffic selector.",
		propertySchema, s.handlePropertyFields)
	s.register("permitted_properties",
		"GA4 property ids this server's credential may query.",
		noArgsSchema, s.handlePermittedProperties)
}

func (s *Server) reportHandler(spec report.Spec) toolFunc {
	return func(ctx context.Context, args json.RawMessage) (any, error) {
		var req report.Request
		if err := json.Unmarshal(args, &req); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		rep, err := s.pipeline.Run(ctx, s.credential, spec, req)
		if err != nil {
			return nil, err
		}
		return report.Shape(rep), nil
	}
}

func (s *Server) handlePermittedProperties(_ context.Context, _ json.RawMessage) (any, error) {
	gate := s.pipeline.Gate()
	props, unrestricted, err := gate.Permitted(s.credential)
	if err != nil {
		return nil, err
	}
	if props == nil {
		props = []string{}
	}
	return PropertiesResult{
		Mode:         string(gate.Mode()),
		Unrestricted: unrestricted,
		Properties:   props,
	}, nil
}

func (s *Server) handlePropertyFields(ctx context.Context, args json.RawMessage) (any, error) {
	var req struct {
		PropertyID string `json:"propertyId"`
	}
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return s.pipeline.Fields(ctx, s.credential, req.PropertyID)
}
