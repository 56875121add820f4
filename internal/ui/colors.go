package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Neon palette shared by the dashboard and CLI output.
const (
	ColorNeonPink   lipgloss.Color = "#FF2E97"
	ColorNeonCyan   lipgloss.Color = "#00FFFF"
	ColorNeonPurple lipgloss.Color = "#BF40FF"
	ColorNeonGreen  lipgloss.Color = "#39FF14"
	ColorNeonAmber  lipgloss.Color = "#FFAA00"
	ColorNeonRed    lipgloss.Color = "#FF0055"

	ColorDeepVoid    lipgloss.Color = "#0A0A0F"
	ColorDarkSurface lipgloss.Color = "#12121A"
	ColorGlassBorder lipgloss.Color = "#2A2A4A"
)

// Semantic colors for status indication
const (
	ColorSuccess = ColorNeonGreen
	ColorError   = ColorNeonRed
	ColorWarning = ColorNeonAmber
	ColorInfo    = ColorNeonCyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "#FFFFFF"
	ColorSecondary lipgloss.Color = "#B4B4D0"
	ColorMuted     lipgloss.Color = "#6B6B8D"
)

// SuccessStyle renders text in the success color.
func SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorSuccess)
}

// ErrorStyle renders text in the error color.
func ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorError)
}

// WarningStyle renders text in the warning color.
func WarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorWarning)
}

// MutedStyle renders secondary text.
func MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorMuted)
}

// AccentStyle renders bold accent text, used for titles.
func AccentStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorNeonPink).Bold(true)
}

// DisableColors switches all Lip Gloss rendering to plain text.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// EnableTrueColor forces 24-bit color output regardless of the detected
// terminal. Tests use it to get deterministic escape sequences.
func EnableTrueColor() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

// ColorsEnabled reports whether the current profile renders any color.
func ColorsEnabled() bool {
	return lipgloss.ColorProfile() != termenv.Ascii
}
