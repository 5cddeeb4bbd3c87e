package app

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/blackwell-systems/ga4diag/internal/audit"
	"github.com/blackwell-systems/ga4diag/internal/output"
	"github.com/blackwell-systems/ga4diag/internal/report"
	"github.com/blackwell-systems/ga4diag/internal/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	want := []string{"serve", "pages", "traffic", "timeseries", "overview", "fields", "mcp", "audit"}
	got := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		got[cmd.Name()] = true
	}
	for _, name := range want {
		assert.True(t, got[name], "%s subcommand not registered on rootCmd", name)
	}
}

func TestReportFlags(t *testing.T) {
	for _, cmd := range []string{"pages", "traffic", "timeseries", "overview"} {
		c, _, err := rootCmd.Find([]string{cmd})
		require.NoError(t, err)
		for _, flag := range []string{"property", "start", "end", "limit"} {
			assert.NotNil(t, c.Flags().Lookup(flag), "%s --%s", cmd, flag)
		}
	}

	f := reportFlags{property: "1001", start: "2024-01-01", end: "2024-01-31", limit: 10}
	assert.Equal(t, report.Request{PropertyID: "1001", StartDate: "2024-01-01", EndDate: "2024-01-31", Limit: 10}, f.request())
}

func testReports() []*report.Report {
	return []*report.Report{
		{
			Meta:    report.Meta{Report: "pages", Dimension: "pagePath", ViewMetric: "views", Metrics: []string{"views"}, PropertyID: "1001"},
			Medians: map[string]float64{"views": 10},
			Rows:    []report.Row{{Dimension: "/a", Values: map[string]float64{"views": 10}, Tags: []string{"standard"}}},
		},
		{Meta: report.Meta{Report: "traffic", Dimension: "sessionSourceMedium", Note: report.EmptyNote}},
		{Meta: report.Meta{Report: "timeseries", Dimension: "date", Note: report.EmptyNote}},
	}
}

func TestWriteOverview_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeOverview(&buf, testReports(), output.FormatJSON))

	var got map[string]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Len(t, got["pages"]["pages"], 1)
	assert.Equal(t, []any{}, got["traffic"]["rows"])
	assert.Equal(t, report.EmptyNote, got["timeseries"]["meta"].(map[string]any)["note"])
}

func TestWriteOverview_Table(t *testing.T) {
	output.SetNoColor(true)
	defer output.SetNoColor(false)

	var buf bytes.Buffer
	require.NoError(t, writeOverview(&buf, testReports(), output.FormatTable))
	out := buf.String()
	assert.Contains(t, out, "Page diagnostics")
	assert.Contains(t, out, "Traffic sources")
	assert.Contains(t, out, "Daily trend")
}

func TestWriteFields(t *testing.T) {
	output.SetNoColor(true)
	defer output.SetNoColor(false)

	f := &report.Fields{
		PropertyID:     "1001",
		DimensionCount: 3,
		MetricCount:    4,
		Page:           &resolve.Selection{Dimension: "pagePath", ViewMetric: "screenPageViews", ExtraMetrics: []string{"bounceRate"}},
		Traffic:        map[string]string{"sourceMedium": "sessionSourceMedium"},
	}
	var buf bytes.Buffer
	require.NoError(t, writeFields(&buf, f, output.FormatTable))
	out := buf.String()
	assert.Contains(t, out, "3 dimensions, 4 metrics")
	assert.Contains(t, out, "screenPageViews")
	assert.Contains(t, out, "sessionSourceMedium")
	assert.Contains(t, out, "unavailable")

	buf.Reset()
	assert.ErrorIs(t, writeFields(&buf, f, output.FormatCSV), output.ErrCSVUnsupported)
}

func TestWriteAudit(t *testing.T) {
	output.SetNoColor(true)
	defer output.SetNoColor(false)

	s := auditSummary{
		Counts: map[string]int{audit.OutcomeAllowed: 2, audit.OutcomeForbidden: 1},
		Decisions: []audit.Decision{{
			ID: "x", DecidedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			Report: "pages", PropertyID: "1001", CredentialFP: "abc123", Outcome: audit.OutcomeForbidden,
		}},
	}
	var buf bytes.Buffer
	require.NoError(t, writeAudit(&buf, s, output.FormatTable))
	out := buf.String()
	assert.Contains(t, out, "abc123")
	assert.Contains(t, out, audit.OutcomeForbidden)

	buf.Reset()
	require.NoError(t, writeAudit(&buf, auditSummary{Counts: map[string]int{}, Decisions: []audit.Decision{}}, output.FormatTable))
	assert.Contains(t, buf.String(), "no decisions recorded")

	buf.Reset()
	require.NoError(t, writeAudit(&buf, s, output.FormatJSON))
	var got auditSummary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 2, got.Counts[audit.OutcomeAllowed])
	require.Len(t, got.Decisions, 1)
	assert.Equal(t, "1001", got.Decisions[0].PropertyID)
}
