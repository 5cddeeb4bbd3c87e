package report

import (
	"context"
	"strings"

	"github.com/blackwell-systems/ga4diag/internal/resolve"
)

// FieldsName identifies field inspection in decision callbacks.
const FieldsName = "fields"

// Fields shows how the reports resolve against one property's schema.
type Fields struct {
	PropertyID     string             `json:"propertyId"`
	DimensionCount int                `json:"dimensionCount"`
	MetricCount    int                `json:"metricCount"`
	Page           *resolve.Selection `json:"page,omitempty"`
	PageError      string             `json:"pageError,omitempty"`

	// Traffic maps every selector to the dimension it resolves to, or ""
	// when the property has none of the traffic dimensions.
	Traffic map[string]string `json:"traffic"`
}

// Fields checks credential against the gate, fetches the property schema
// and resolves the page report and every traffic selector against it.
func (p *Pipeline) Fields(ctx context.Context, credential, propertyID string) (*Fields, error) {
	propertyID = strings.TrimSpace(propertyID)
	if propertyID == "" {
		return nil, ErrMissingProperty
	}
	err := p.gate.Authorize(credential, propertyID)
	if p.OnDecision != nil {
		p.OnDecision(FieldsName, propertyID, credential, err)
	}
	if err != nil {
		return nil, err
	}

	schema, err := p.schema(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	caps := resolve.NewCapabilities(schema.Dimensions, schema.Metrics)

	f := &Fields{
		PropertyID:     propertyID,
		DimensionCount: len(caps.Dimensions),
		MetricCount:    len(caps.Metrics),
		Traffic:        make(map[string]string),
	}
	if sel, err := resolve.ResolvePage(caps); err != nil {
		f.PageError = err.Error()
	} else {
		f.Page = &sel
	}
	for _, selector := range resolve.TrafficSelectors() {
		sel, err := resolve.ResolveTraffic(caps, selector)
		if err != nil {
			f.Traffic[selector] = ""
			continue
		}
		f.Traffic[selector] = sel.Dimension
	}
	return f, nil
}
