package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/sensormon/internal/ui"
)

// Dashboard color palette, shared with the CLI through internal/ui.
const (
	ColorDarkBg    = ui.ColorDeepVoid
	ColorSurfaceBg = ui.ColorDarkSurface
	ColorBorder    = ui.ColorGlassBorder

	ColorHealthy  = ui.ColorNeonGreen
	ColorWarning  = ui.ColorNeonAmber
	ColorCritical = ui.ColorNeonRed

	ColorTextPrimary   = ui.ColorPrimary
	ColorTextSecondary = ui.ColorSecondary
	ColorTextMuted     = ui.ColorMuted

	ColorAccent    = ui.ColorNeonPink
	ColorAccentDim = ui.ColorNeonPurple
	ColorValue     = ui.ColorNeonCyan
)

// Base styles for the dashboard
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1).
			MarginBottom(1)

	// CardLiveStyle highlights cards that have received data.
	CardLiveStyle = CardStyle.
			BorderForeground(ColorAccentDim)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorValue).
			Bold(true)

	PlaceholderStyle = lipgloss.NewStyle().
				Foreground(ColorTextMuted)

	// Status line styles, one per level.
	StatusInfoStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	StatusOKStyle = lipgloss.NewStyle().
			Foreground(ColorHealthy)

	StatusWarnStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ColorCritical)

	// Control button styles.
	ButtonStyle = lipgloss.NewStyle().
			Foreground(ColorDarkBg).
			Background(ColorAccent).
			Bold(true).
			Padding(0, 2).
			MarginRight(2)

	ButtonDisabledStyle = lipgloss.NewStyle().
				Foreground(ColorTextMuted).
				Background(ColorSurfaceBg).
				Padding(0, 2).
				MarginRight(2)
)

// statusStyle returns the style for a status level.
func statusStyle(level statusLevel) lipgloss.Style {
	switch level {
	case levelOK:
		return StatusOKStyle
	case levelWarn:
		return StatusWarnStyle
	case levelError:
		return StatusErrorStyle
	default:
		return StatusInfoStyle
	}
}

// SectionHeader renders a section header with the title on the left and value on the right.
// Format: ╭─ Title ────────────────────────────────────── Value ╮
func SectionHeader(title, value string, width int) string {
	if width < 10 {
		width = 10
	}

	// Left: "╭─ " + title + " "; right: " " + value + " ╮"
	leftWidth := 3 + lipgloss.Width(title) + 1
	rightWidth := 1 + lipgloss.Width(value) + 2

	fillWidth := width - leftWidth - rightWidth
	if fillWidth < 1 {
		fillWidth = 1
	}

	middle := strings.Repeat("─", fillWidth)

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	titleStyle := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)

	return borderStyle.Render("╭─ ") +
		titleStyle.Render(title) +
		borderStyle.Render(" "+middle+" ") +
		value +
		borderStyle.Render(" ╮")
}

// SectionFooter renders the bottom border of a section.
// Format: ╰────────────────────────────────────────────────────╯
func SectionFooter(width int) string {
	if width < 2 {
		width = 2
	}

	middle := strings.Repeat("─", width-2)

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	return borderStyle.Render("╰" + middle + "╯")
}

// SectionContentLine renders a content line with left and right borders, properly padded to width.
// Format: │ content                                              │
func SectionContentLine(content string, width int) string {
	if width < 4 {
		width = 4
	}

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)

	contentWidth := lipgloss.Width(content)

	// Inner width excludes "│ " on the left and " │" on the right.
	innerWidth := width - 4

	padding := innerWidth - contentWidth
	if padding < 0 {
		padding = 0
	}

	return borderStyle.Render("│") + " " + content + strings.Repeat(" ", padding) + " " + borderStyle.Render("│")
}
