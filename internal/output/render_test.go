package output

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/blackwell-systems/ga4diag/internal/diagnose"
	"github.com/blackwell-systems/ga4diag/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func pageReport() *report.Report {
	return &report.Report{
		Meta: report.Meta{
			Report:     "pages",
			Dimension:  "pagePath",
			ViewMetric: "views",
			Metrics:    []string{"views", "bounceRate"},
			PropertyID: "1001",
			StartDate:  "28daysAgo",
			EndDate:    "yesterday",
		},
		Medians: map[string]float64{"views": 55, "bounceRate": 55},
		Rows: []report.Row{
			{Dimension: "/a", Values: map[string]float64{"views": 100, "bounceRate": 30}, Tags: []string{diagnose.TagBounceLow}},
			{Dimension: "/b", Values: map[string]float64{"views": 10, "bounceRate": 80}, Tags: []string{diagnose.TagBounceHigh}},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTable, "JSON": FormatJSON, " csv ": FormatCSV, "yaml": FormatYAML, "table": FormatTable} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriteReport_Table(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, pageReport(), FormatTable))
	out := buf.String()

	assert.Contains(t, out, "Page diagnostics")
	assert.Contains(t, out, "bounceRate 55.0%")
	assert.Contains(t, out, diagnose.TagBounceHigh)
	assert.Contains(t, out, "▲ +45.0")
	assert.Contains(t, out, "▼ -45.0")
}

func TestWriteReport_Empty(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	for _, name := range []string{"pages", "traffic", "timeseries"} {
		rep := &report.Report{Meta: report.Meta{Report: name, Note: report.EmptyNote}}
		var buf bytes.Buffer
		require.NoError(t, WriteReport(&buf, rep, FormatTable))
		assert.Contains(t, buf.String(), report.EmptyNote, name)
	}
}

func TestWriteReport_JSONAndYAML(t *testing.T) {
	var jbuf bytes.Buffer
	require.NoError(t, WriteReport(&jbuf, pageReport(), FormatJSON))
	var fromJSON map[string]any
	require.NoError(t, json.Unmarshal(jbuf.Bytes(), &fromJSON))

	var ybuf bytes.Buffer
	require.NoError(t, WriteReport(&ybuf, pageReport(), FormatYAML))
	assert.NotContains(t, ybuf.String(), "{\"")
	assert.Contains(t, ybuf.String(), "propertyId: \"1001\"")

	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal(ybuf.Bytes(), &fromYAML))
	pages := fromYAML["pages"].([]any)
	require.Len(t, pages, 2)
	assert.Equal(t, "/b", pages[1].(map[string]any)["dimensionValue"])
	assert.Equal(t, len(fromJSON["pages"].([]any)), len(pages))
}

func TestWriteReport_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, pageReport(), FormatCSV))
	assert.True(t, strings.HasPrefix(buf.String(), "dimensionValue,views,bounceRate,diagnosis\n"))

	rep := &report.Report{Meta: report.Meta{Report: "traffic"}}
	assert.ErrorIs(t, WriteReport(&buf, rep, FormatCSV), ErrCSVUnsupported)
}

func TestRenderTraffic(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	rep := &report.Report{
		Meta: report.Meta{Report: "traffic", Dimension: "sessionSourceMedium"},
		Rows: []report.Row{
			{Dimension: "google / organic", Values: map[string]float64{"sessions": 75, "bounceRate": 40}},
			{Dimension: "(not set)", Values: map[string]float64{"sessions": 25}},
		},
	}
	out := RenderReport(rep)
	assert.Contains(t, out, "google / organic")
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "25.0%")
	assert.Contains(t, out, "40.0%")
}

func TestRenderSeries(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	rep := &report.Report{
		Meta: report.Meta{Report: "timeseries", Dimension: "date", PagePathContains: "/blog"},
		Rows: []report.Row{
			{Dimension: "2024-01-01", Values: map[string]float64{"sessions": 1}},
			{Dimension: "2024-01-02", Values: map[string]float64{"sessions": 8}},
		},
	}
	out := RenderReport(rep)
	assert.Contains(t, out, "2024-01-02")
	assert.Contains(t, out, "▁█")
	assert.Contains(t, out, `"/blog"`)
}

func TestShareBar(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	assert.Equal(t, "█████░░░░░  50.0%", ShareBar(5, 10, 10))
	assert.Equal(t, "░░░░░░░░░░   0.0%", ShareBar(5, 0, 10))
	assert.Equal(t, "██████████ 100.0%", ShareBar(20, 10, 10))
}

func TestMedianDelta(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	assert.Equal(t, "▲ +5.0", MedianDelta(15, 10, true))
	assert.Equal(t, "▼ -5.0", MedianDelta(5, 10, true))
	assert.Equal(t, "─", MedianDelta(10, 10, true))
	assert.Equal(t, "─", MedianDelta(10, math.NaN(), true))
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", Sparkline(nil))
	assert.Equal(t, "▁▁▁", Sparkline([]float64{3, 3, 3}))
	assert.Equal(t, "▁▄█", Sparkline([]float64{0, 5, 10}))
}

func TestDiagnosis(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	got := Diagnosis([]string{diagnose.TagBounceHigh, diagnose.TagLowVisibility})
	assert.Equal(t, diagnose.TagBounceHigh+" / "+diagnose.TagLowVisibility, got)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "4.2%", FormatValue("bounceRate", 4.23))
	assert.Equal(t, "61s", FormatValue("averageSessionDuration", 61.2))
	assert.Equal(t, "1200", FormatValue("sessions", 1200))
}
