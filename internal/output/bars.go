package output

import (
	"fmt"
	"math"
	"strings"
)

// ShareBar renders part's share of total as a bar followed by the
// percentage. Example: "██████░░░░ 60.0%"
func ShareBar(part, total float64, width int) string {
	if width <= 0 {
		width = 20
	}
	share := 0.0
	if total > 0 {
		share = part / total
	}
	share = math.Max(0, math.Min(1, share))
	filled := int(math.Round(share * float64(width)))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %s", StyleHeader.Render(bar), StyleMuted.Render(fmt.Sprintf("%5.1f%%", share*100)))
}

// MedianDelta renders the difference between value and median as a styled
// arrow. higherIsBetter picks which direction is green. An undefined median
// renders as a dash.
func MedianDelta(value, median float64, higherIsBetter bool) string {
	if math.IsNaN(median) || math.IsInf(median, 0) {
		return StyleMuted.Render("─")
	}
	delta := value - median
	if math.Abs(delta) < 0.05 {
		return StyleMuted.Render("─")
	}

	var arrow string
	if delta > 0 {
		arrow = fmt.Sprintf("▲ +%.1f", delta)
	} else {
		arrow = fmt.Sprintf("▼ %.1f", delta)
	}

	if (delta > 0) == higherIsBetter {
		return StyleSuccess.Render(arrow)
	}
	return StyleError.Render(arrow)
}

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders values as a single line of block characters scaled
// between their minimum and maximum.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var sb strings.Builder
	for _, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkLevels)-1))
		}
		sb.WriteRune(sparkLevels[idx])
	}
	return sb.String()
}

// Section returns a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
