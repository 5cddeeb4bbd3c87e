// Package output provides styled terminal rendering for ga4diag reports.
package output

import (
	"github.com/blackwell-systems/ga4diag/internal/diagnose"
	"github.com/charmbracelet/lipgloss"
)

// Color constants for consistent styling across the CLI.
var (
	// ColorPrimary is used for headers and emphasis.
	ColorPrimary = lipgloss.Color("#64b5f6")

	// ColorSuccess marks healthy diagnoses and favorable deltas.
	ColorSuccess = lipgloss.Color("#66bb6a")

	// ColorError marks diagnoses that need improvement.
	ColorError = lipgloss.Color("#ef5350")

	// ColorWarning marks under-exposed pages.
	ColorWarning = lipgloss.Color("#fff59d")

	// ColorMuted is used for secondary text and borders.
	ColorMuted = lipgloss.Color("#888888")
)

// Reusable styles. SetNoColor swaps them for plain renderers.
var (
	StyleHeader  lipgloss.Style
	StyleSuccess lipgloss.Style
	StyleError   lipgloss.Style
	StyleWarning lipgloss.Style
	StyleMuted   lipgloss.Style
	StyleBold    lipgloss.Style
	StyleLabel   lipgloss.Style
	StyleValue   lipgloss.Style
)

func init() {
	setStyles(false)
}

func setStyles(plain bool) {
	if plain {
		p := lipgloss.NewStyle()
		StyleHeader = p
		StyleSuccess = p
		StyleError = p
		StyleWarning = p
		StyleMuted = p
		StyleBold = p
		StyleLabel = p.Width(24)
		StyleValue = p.Width(12)
		return
	}
	StyleHeader = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleMuted = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleBold = lipgloss.NewStyle().Bold(true)
	StyleLabel = lipgloss.NewStyle().Width(24)
	StyleValue = lipgloss.NewStyle().Bold(true).Width(12)
}

// noColor tracks whether color output is disabled.
var noColor bool

// SetNoColor disables or re-enables color output globally.
func SetNoColor(disabled bool) {
	noColor = disabled
	setStyles(disabled)
}

// IsNoColor returns whether color output is currently disabled.
func IsNoColor() bool {
	return noColor
}

// TagStyle returns the style for one diagnosis tag.
func TagStyle(tag string) lipgloss.Style {
	switch tag {
	case diagnose.TagBounceHigh:
		return StyleError
	case diagnose.TagLowVisibility:
		return StyleWarning
	case diagnose.TagBounceLow, diagnose.TagEngagementHealthy:
		return StyleSuccess
	default:
		return StyleMuted
	}
}

// Diagnosis renders tags joined by the diagnosis separator, each in its own
// color.
func Diagnosis(tags []string) string {
	styled := make([]string, len(tags))
	for i, tag := range tags {
		styled[i] = TagStyle(tag).Render(tag)
	}
	return diagnose.Join(styled)
}
