package report

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/blackwell-systems/ga4diag/internal/access"
	"github.com/blackwell-systems/ga4diag/internal/config"
	"github.com/blackwell-systems/ga4diag/internal/diagnose"
	"github.com/blackwell-systems/ga4diag/internal/ga4"
	"github.com/blackwell-systems/ga4diag/internal/resolve"
	"github.com/blackwell-systems/ga4diag/internal/stats"
)

// Backend is the analytics service the pipeline queries.
type Backend interface {
	Schema(ctx context.Context, propertyID string) (ga4.Schema, error)
	RunReport(ctx context.Context, q ga4.Query) ([]ga4.Row, error)
}

// DecisionFunc observes every gate decision. err is nil when the request was
// allowed.
type DecisionFunc func(report, propertyID, credential string, err error)

// Pipeline runs reports. It holds only read-only collaborators, so one
// Pipeline serves concurrent requests.
type Pipeline struct {
	backend  Backend
	gate     *access.Gate
	engine   *diagnose.Engine
	defaults config.Reports
	timeout  time.Duration

	// OnDecision, when set, is called after every authorization check.
	OnDecision DecisionFunc
}

// NewPipeline wires a pipeline from its collaborators and configuration.
func NewPipeline(backend Backend, gate *access.Gate, cfg *config.Config) *Pipeline {
	return &Pipeline{
		backend:  backend,
		gate:     gate,
		engine:   diagnose.NewEngine(),
		defaults: cfg.Reports,
		timeout:  cfg.Analytics.QueryTimeout,
	}
}

// Gate returns the pipeline's access gate.
func (p *Pipeline) Gate() *access.Gate {
	return p.gate
}

// Run executes spec for req on behalf of credential.
func (p *Pipeline) Run(ctx context.Context, credential string, spec Spec, req Request) (*Report, error) {
	req.PropertyID = strings.TrimSpace(req.PropertyID)
	if req.PropertyID == "" {
		return nil, ErrMissingProperty
	}
	if req.Limit < 0 {
		return nil, ErrInvalidLimit
	}
	if spec.Validate != nil {
		if err := spec.Validate(req); err != nil {
			return nil, err
		}
	}

	err := p.gate.Authorize(credential, req.PropertyID)
	if p.OnDecision != nil {
		p.OnDecision(spec.Name, req.PropertyID, credential, err)
	}
	if err != nil {
		return nil, err
	}

	var caps *resolve.Capabilities
	if spec.NeedsSchema {
		schema, err := p.schema(ctx, req.PropertyID)
		if err != nil {
			return nil, err
		}
		caps = resolve.NewCapabilities(schema.Dimensions, schema.Metrics)
	}

	sel, err := spec.Select(caps, req)
	if err != nil {
		return nil, err
	}

	meta := p.meta(spec, req, sel)
	q := ga4.Query{
		PropertyID: req.PropertyID,
		StartDate:  meta.StartDate,
		EndDate:    meta.EndDate,
		Dimension:  sel.Dimension,
		Metrics:    meta.Metrics,
		Limit:      meta.Limit,
	}
	if spec.OrderBy != nil {
		q.OrderBy = spec.OrderBy(sel)
	}
	if spec.Filter != nil {
		q.Filter = spec.Filter(req)
	}

	raw, err := p.query(ctx, q)
	if err != nil {
		return nil, err
	}

	rep := &Report{Meta: meta, Rows: normalize(raw, meta.Metrics, spec.Label)}
	if spec.Classify {
		p.classify(rep)
	}
	if rep.Empty() {
		rep.Meta.Note = EmptyNote
	}
	return rep, nil
}

func (p *Pipeline) meta(spec Spec, req Request, sel resolve.Selection) Meta {
	m := Meta{
		Report:           spec.Name,
		Dimension:        sel.Dimension,
		ViewMetric:       sel.ViewMetric,
		ExtraMetrics:     append([]string{}, sel.ExtraMetrics...),
		Metrics:          sel.Metrics(),
		PropertyID:       req.PropertyID,
		StartDate:        orDefault(req.StartDate, p.defaults.StartDate),
		EndDate:          orDefault(req.EndDate, p.defaults.EndDate),
		Limit:            req.Limit,
		PagePathContains: req.PagePathContains,
	}
	if spec.Name == TrafficSpec.Name {
		m.Selector = orDefault(req.Dim, resolve.DefaultTrafficSelector)
	}
	if m.Limit == 0 && spec.DefaultLimit != nil {
		m.Limit = spec.DefaultLimit(p.defaults)
	}
	if m.Limit > ga4.MaxLimit {
		m.Limit = ga4.MaxLimit
	}
	return m
}

func (p *Pipeline) schema(ctx context.Context, propertyID string) (ga4.Schema, error) {
	ctx, cancel := p.bounded(ctx)
	defer cancel()
	s, err := p.backend.Schema(ctx, propertyID)
	if err != nil {
		return ga4.Schema{}, &UpstreamError{Op: "schema", Err: err}
	}
	return s, nil
}

func (p *Pipeline) query(ctx context.Context, q ga4.Query) ([]ga4.Row, error) {
	ctx, cancel := p.bounded(ctx)
	defer cancel()
	rows, err := p.backend.RunReport(ctx, q)
	if err != nil {
		return nil, &UpstreamError{Op: "report", Err: err}
	}
	return rows, nil
}

func (p *Pipeline) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

// classify fills the median table and tags every row.
func (p *Pipeline) classify(rep *Report) {
	values := make([]map[string]float64, len(rep.Rows))
	for i, r := range rep.Rows {
		values[i] = r.Values
	}
	rep.Medians = stats.Medians(values, rep.Meta.Metrics)
	for i := range rep.Rows {
		rep.Rows[i].Tags = p.engine.Classify(rep.Rows[i].Values, rep.Medians, rep.Meta.ViewMetric)
	}
}

// normalize parses raw metric strings (absent or unparsable → 0), rescales
// percentage metrics to 0-100, and relabels the dimension. Each raw value is
// converted exactly once here.
func normalize(raw []ga4.Row, metrics []string, label func(string) string) []Row {
	rows := make([]Row, 0, len(raw))
	for _, r := range raw {
		row := Row{Dimension: r.Dimension, Values: make(map[string]float64, len(metrics))}
		if label != nil {
			row.Dimension = label(r.Dimension)
		}
		for i, m := range metrics {
			var v float64
			if i < len(r.Metrics) {
				v = parseValue(r.Metrics[i])
			}
			row.Values[m] = stats.Normalize(m, v)
		}
		rows = append(rows, row)
	}
	return rows
}

func parseValue(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !stats.Defined(v) {
		return 0
	}
	return v
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}
