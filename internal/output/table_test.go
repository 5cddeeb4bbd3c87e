package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisualLen(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"plain", "/pricing", 8},
		{"empty", "", 0},
		{"sgr bold", "\x1b[1m/blog\x1b[0m", 5},
		{"truecolor", "\x1b[38;2;239;83;80mbounce rate high\x1b[0m", 16},
		{"block glyphs", "▁▄█", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, visualLen(tt.in))
		})
	}
}

func TestPadding(t *testing.T) {
	assert.Equal(t, "/a   ", pad("/a", 5))
	assert.Equal(t, "/pricing", pad("/pricing", 3))
	assert.Equal(t, "   42", padLeft("42", 5))
	assert.Equal(t, "12345", padLeft("12345", 2))
	assert.Equal(t, "\x1b[1mx\x1b[0m  ", pad("\x1b[1mx\x1b[0m", 3))
}

func plainLines(t *testing.T, tbl *Table) []string {
	t.Helper()
	SetNoColor(true)
	t.Cleanup(func() { SetNoColor(false) })
	return strings.Split(strings.TrimSuffix(tbl.Render(), "\n"), "\n")
}

func TestTable_Render(t *testing.T) {
	tbl := NewTable("pagePath", "views", "diagnosis")
	tbl.AddRow("/pricing", "1200", "standard")
	tbl.AddRow("/blog/a-very-long-post", "3", "low visibility (under-exposed)")

	lines := plainLines(t, tbl)
	require.Len(t, lines, 4)
	assert.Equal(t, 2, tbl.Len())

	// Column starts line up across every line.
	col := strings.Index(lines[0], "views")
	assert.Equal(t, len("/blog/a-very-long-post")+2, col)
	assert.Equal(t, col, strings.Index(lines[2], "1200"))
	assert.Equal(t, byte('3'), lines[3][col])
	assert.True(t, strings.HasPrefix(lines[1], strings.Repeat("─", len("/blog/a-very-long-post"))))
	assert.Equal(t, "/pricing                1200   standard", lines[2])

	// No trailing blanks after the last column.
	for _, l := range lines {
		assert.Equal(t, strings.TrimRight(l, " "), l)
	}
}

func TestTable_AlignRight(t *testing.T) {
	tbl := NewTable("page", "views", "note").AlignRight(1)
	tbl.AddRow("/a", "5", "x")
	tbl.AddRow("/b", "1234", "y")

	lines := plainLines(t, tbl)
	assert.Equal(t, "page  views  note", lines[0])
	assert.Equal(t, "/a        5  x", lines[2])
	assert.Equal(t, "/b     1234  y", lines[3])
}

func TestTable_RowShape(t *testing.T) {
	tbl := NewTable("a", "b")
	tbl.AddRow("only")
	tbl.AddRow("1", "2", "dropped")

	lines := plainLines(t, tbl)
	assert.Equal(t, "only  ", lines[2])
	assert.Equal(t, "1     2", lines[3])
	assert.NotContains(t, tbl.String(), "dropped")
}

func TestTable_StyledCellWidth(t *testing.T) {
	styled := "\x1b[31mbounce rate high\x1b[0m"
	tbl := NewTable("diagnosis", "views")
	tbl.AddRow(styled, "1")
	tbl.AddRow("standard", "2")

	lines := plainLines(t, tbl)
	assert.Equal(t, "standard          2", lines[3])
}

func TestTable_Empty(t *testing.T) {
	assert.Equal(t, "", NewTable().Render())

	var buf bytes.Buffer
	NewTable("page").Fprint(&buf)
	assert.Equal(t, "page\n────\n", stripStyles(buf.String()))
}

func TestSetNoColor_Restores(t *testing.T) {
	SetNoColor(true)
	assert.True(t, IsNoColor())
	assert.Equal(t, "x", StyleHeader.Render("x"))

	SetNoColor(false)
	assert.False(t, IsNoColor())
	assert.Equal(t, ColorPrimary, StyleHeader.GetForeground())
}

// stripStyles removes SGR sequences so assertions do not depend on the
// terminal profile.
func stripStyles(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b {
			for i < len(s) && s[i] != 'm' {
				i++
			}
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
