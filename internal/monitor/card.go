package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/sensormon/internal/sensor"
)

// Card layout constants
const (
	cardWidth        = 26
	networkLabelCol  = 14
	minNetworkWidth  = 44
	maxNetworkWidth  = 60
	cardsPerRowWide  = 4
	cardsPerRowSmall = 2
)

// renderCard renders one sensor card: label, value and an optional caption.
func (m Model) renderCard(id sensor.FieldID, width int) string {
	field := sensor.Describe(id)
	live := m.readings.Updated(id)

	style := CardStyle.Width(width)
	valueStyle := PlaceholderStyle
	if live {
		style = CardLiveStyle.Width(width)
		valueStyle = ValueStyle
	}

	lines := []string{
		LabelStyle.Render(field.Label),
		valueStyle.Render(m.readings.Value(id)),
		LabelStyle.Render(m.cardCaption(id)),
	}
	return style.Render(strings.Join(lines, "\n"))
}

// cardCaption returns the small line under a card's value.
func (m Model) cardCaption(id sensor.FieldID) string {
	switch id {
	case sensor.FieldLight:
		if lux, ok := m.readings.Number(id); ok {
			return sensor.LightCondition(lux)
		}
		return "waiting for data"
	case sensor.FieldOutdoorTemp:
		return "outdoor probe"
	case sensor.FieldIndoorTemp, sensor.FieldHumidity:
		return "indoor"
	default:
		return ""
	}
}

// renderSensorCards lays out the four sensor cards in rows.
func (m Model) renderSensorCards() string {
	cards := make([]string, len(sensor.SensorFields))
	for i, id := range sensor.SensorFields {
		cards[i] = m.renderCard(id, cardWidth)
	}
	return m.layoutCards(cards)
}

// layoutCards arranges cards in rows based on terminal width.
func (m Model) layoutCards(cards []string) string {
	if len(cards) == 0 {
		return ""
	}

	// Account for border and margin.
	effective := cardWidth + 3
	perRow := cardsPerRowWide
	if m.width > 0 && m.width < effective*cardsPerRowWide {
		perRow = cardsPerRowSmall
		if m.width < effective*cardsPerRowSmall {
			perRow = 1
		}
	}

	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := i + perRow
		if end > len(cards) {
			end = len(cards)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// networkPanelWidth sizes the Zigbee panel to the terminal.
func (m Model) networkPanelWidth() int {
	w := m.width - 2
	if w > maxNetworkWidth || m.width == 0 {
		w = maxNetworkWidth
	}
	if w < minNetworkWidth {
		w = minNetworkWidth
	}
	return w
}

// renderNetworkPanel renders the Zigbee diagnostics section.
func (m Model) renderNetworkPanel() string {
	width := m.networkPanelWidth()
	connected := m.readings.Value(sensor.FieldNetworkConnected)

	var b strings.Builder
	b.WriteString(SectionHeader("Zigbee Network Status", networkValueStyle(connected).Render(connected), width))
	b.WriteString("\n")

	for _, id := range sensor.NetworkFields {
		if id == sensor.FieldNetworkConnected {
			continue
		}
		field := sensor.Describe(id)
		valueStyle := PlaceholderStyle
		if m.readings.Updated(id) {
			valueStyle = ValueStyle
		}
		line := LabelStyle.Width(networkLabelCol).Render(field.Label) + valueStyle.Render(m.readings.Value(id))
		b.WriteString(SectionContentLine(line, width))
		b.WriteString("\n")
	}

	b.WriteString(SectionFooter(width))
	return b.String()
}

// networkValueStyle colors the Connected value by its leading mark.
func networkValueStyle(value string) lipgloss.Style {
	switch {
	case strings.HasPrefix(value, "✓"):
		return StatusOKStyle.Bold(true)
	case strings.HasPrefix(value, "✗"):
		return StatusErrorStyle.Bold(true)
	default:
		return PlaceholderStyle
	}
}
