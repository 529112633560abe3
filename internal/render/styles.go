// Package render draws analysis results for the terminal: lipgloss-styled
// tables for the numeric sections and glamour-rendered Markdown for the
// narrative. Output degrades to plain text wherever the terminal cannot
// style.
package render

import "github.com/charmbracelet/lipgloss"

// Semantic colors with light and dark variants.
var (
	colorAccent = lipgloss.AdaptiveColor{Light: "#101F38", Dark: "#8BC34A"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#5C6B82"}
	colorGood   = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#8BC34A"}
	colorWarn   = lipgloss.AdaptiveColor{Light: "#F57F17", Dark: "#FFC107"}
	colorBad    = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#E53935"}
)

// Styles carries the lipgloss styles the renderers draw with.
type Styles struct {
	Title  lipgloss.Style
	Header lipgloss.Style
	Cell   lipgloss.Style
	Muted  lipgloss.Style
	Good   lipgloss.Style
	Warn   lipgloss.Style
	Bad    lipgloss.Style
}

// DefaultStyles returns the standard palette.
func DefaultStyles() Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Header: lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Cell:   lipgloss.NewStyle().Padding(0, 1),
		Muted:  lipgloss.NewStyle().Foreground(colorMuted),
		Good:   lipgloss.NewStyle().Foreground(colorGood),
		Warn:   lipgloss.NewStyle().Foreground(colorWarn),
		Bad:    lipgloss.NewStyle().Foreground(colorBad),
	}
}

// Rating picks the style for a qualitative rating word. Health ratings and
// competitive positions both map onto the three-color scale.
func (s Styles) Rating(rating string) lipgloss.Style {
	switch rating {
	case "Excellent", "Good", "Top Quartile", "Above Median":
		return s.Good
	case "Fair", "Below Median":
		return s.Warn
	default:
		return s.Bad
	}
}
