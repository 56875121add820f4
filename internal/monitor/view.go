package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/sensormon/internal/ui"
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	b.WriteString(m.renderSensorCards())
	b.WriteString("\n")

	if m.network {
		b.WriteString(m.renderNetworkPanel())
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")

	b.WriteString(m.renderControls())
	b.WriteString("\n\n")

	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the title, the port and the age of the last update.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render(m.title)

	port := "no port"
	if m.state == StateConnected {
		port = m.port
	}

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(fmt.Sprintf(" | %s | %s | %s", port, m.mode, updateAge(m.SecondsSinceUpdate())))

	return HeaderStyle.Render(title + stats)
}

// updateAge formats the seconds since the last field update.
func updateAge(seconds int) string {
	switch {
	case seconds < 0:
		return "no data yet"
	case seconds == 0:
		return "updated just now"
	default:
		return fmt.Sprintf("updated %ds ago", seconds)
	}
}

// renderStatus renders the status line with a state glyph.
func (m Model) renderStatus() string {
	var glyph string
	switch m.state {
	case StateConnected:
		glyph = StatusOKStyle.Render(ui.SymbolComplete)
	case StateConnecting:
		glyph = m.spinner.View()
	case StateReconnecting:
		glyph = StatusWarnStyle.Render(ui.SymbolReconnecting)
	default:
		glyph = PlaceholderStyle.Render(ui.SymbolPending)
	}
	return glyph + " " + statusStyle(m.statusLevel).Render(m.status)
}

// renderControls renders the Connect and Disconnect buttons. Exactly one
// of them is enabled except while an attempt or disconnect is in flight.
func (m Model) renderControls() string {
	buttons := []string{
		button("c", "Connect", m.CanConnect()),
		button("d", "Disconnect", m.CanDisconnect()),
	}
	if m.mode == ModeAuto {
		buttons = append(buttons, button("p", "Pick port", m.CanConnect()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, buttons...)
}

func button(key, label string, enabled bool) string {
	text := fmt.Sprintf("[%s] %s", key, label)
	if enabled {
		return ButtonStyle.Render(text)
	}
	return ButtonDisabledStyle.Render(text)
}

// renderFooter renders the keyboard help footer.
func (m Model) renderFooter() string {
	hints := []string{
		"q quit",
		"? help",
		fmt.Sprintf("%d lines", m.lineCount),
	}

	return FooterStyle.Render(strings.Join(hints, " | "))
}
