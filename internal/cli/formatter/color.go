// Package formatter renders store records for the terminal with lipgloss, or
// as JSON when output is not a terminal.
package formatter

import (
	"fmt"
	"strings"

	"todomcp/internal/domain"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorGreen  = lipgloss.Color("#2ed573")
	ColorYellow = lipgloss.Color("#ffa502")
	ColorOrange = lipgloss.Color("#ff7f50")
	ColorRed    = lipgloss.Color("#ff4757")
	ColorBlue   = lipgloss.Color("#667eea")
	ColorDim    = lipgloss.Color("#8a8f98")
	ColorFg     = lipgloss.Color("#e6e6e6")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleOrange = lipgloss.NewStyle().Foreground(ColorOrange)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorBlue).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// PriorityStyle maps a priority to its color.
func PriorityStyle(p domain.Priority) lipgloss.Style {
	switch p {
	case domain.PriorityUrgent:
		return StyleRed
	case domain.PriorityHigh:
		return StyleOrange
	case domain.PriorityMedium:
		return StyleYellow
	case domain.PriorityLow:
		return StyleGreen
	default:
		return StyleDim
	}
}

// PriorityBadge renders "● urgent" in the priority's color.
func PriorityBadge(p domain.Priority) string {
	return PriorityStyle(p).Render("● " + string(p))
}

// ProjectSwatch renders a colored square followed by the project name. An
// invalid color falls back to the dim style.
func ProjectSwatch(name, color string) string {
	style := StyleDim
	if domain.IsColor(color) {
		style = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}
	return style.Render("■") + " " + name
}

// Header renders an uppercase heading with an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string { return StyleDim.Render(text) }

func Bold(text string) string { return StyleBold.Render(text) }

// Check renders a completion marker.
func Check(done bool) string {
	if done {
		return StyleGreen.Render("✓")
	}
	return StyleDim.Render("○")
}
