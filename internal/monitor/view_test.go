package monitor

import (
	"testing"
	"time"

	"github.com/rileyhilliard/sensormon/internal/sensor"
	"github.com/rileyhilliard/sensormon/internal/ui"
	"github.com/stretchr/testify/assert"
)

func withUpdates(t *testing.T, m Model, lines ...string) Model {
	t.Helper()
	for _, line := range lines {
		update, matched := m.parser.Match(line)
		if !matched {
			t.Fatalf("line did not match: %q", line)
		}
		m, _ = step(m, lineMsg{update: update, matched: true, time: time.Now()})
	}
	return m
}

func TestView_Placeholders(t *testing.T) {
	ui.DisableColors()
	m := newTestModel(Options{Title: "ESP32-C6 Sensor Monitor", Network: true})
	view := m.View()

	assert.Contains(t, view, "ESP32-C6 Sensor Monitor")
	assert.Contains(t, view, "no port")
	assert.Contains(t, view, "no data yet")
	for _, id := range sensor.SensorFields {
		f := sensor.Describe(id)
		assert.Contains(t, view, f.Label)
		assert.Contains(t, view, f.Placeholder)
	}
	assert.Contains(t, view, "waiting for data")
	assert.Contains(t, view, "Zigbee Network Status")
	assert.Contains(t, view, "Unknown")
	assert.Contains(t, view, "Channel:")
	assert.Contains(t, view, StatusDisconnected)
	assert.Contains(t, view, "[c] Connect")
	assert.Contains(t, view, "[d] Disconnect")
	assert.Contains(t, view, "[p] Pick port")
	assert.Contains(t, view, "0 lines")
}

func TestView_NetworkPanelHidden(t *testing.T) {
	ui.DisableColors()
	m := newTestModel(Options{Network: false})
	assert.NotContains(t, m.View(), "Zigbee Network Status")
}

func TestView_RetryModeHasNoPicker(t *testing.T) {
	ui.DisableColors()
	m := newTestModel(Options{Mode: ModeRetry, Port: "COM5"})
	view := m.View()
	assert.NotContains(t, view, "Pick port")
	assert.Contains(t, view, "retry")
}

func TestView_LiveValues(t *testing.T) {
	ui.DisableColors()
	conn := newFakeConnector()
	m := connectedModel(t, conn, "/dev/ttyACM0")
	m = withUpdates(t, m,
		"BH1750 Light:    91.7 lux",
		"DS18B20 Temp:   21.38 °C  (70.47 °F)  [Outdoor]",
		"DHT11: Temp:    30.0 °C  (86.0 °F)  [Indoor]",
		"DHT11: Humid:   45.0 %",
		"Connected:   YES",
		"Channel:     15",
	)
	view := m.View()

	assert.Contains(t, view, "/dev/ttyACM0")
	assert.Contains(t, view, "updated just now")
	assert.Contains(t, view, "91.7 lux")
	assert.Contains(t, view, "Dim Indoor")
	assert.Contains(t, view, "21.4 °C (70.5 °F)")
	assert.Contains(t, view, "30.0 °C (86.0 °F)")
	assert.Contains(t, view, "✓ YES")
	assert.Contains(t, view, "15")
	assert.Contains(t, view, "Connected to /dev/ttyACM0")
	assert.Contains(t, view, "6 lines")
}

func TestView_LostKeepsLastValues(t *testing.T) {
	ui.DisableColors()
	conn := newFakeConnector()
	m := connectedModel(t, conn, "COM3")
	m = withUpdates(t, m, "BH1750 Light:    91.7 lux")

	m, _ = step(m, lostMsg{port: "COM3"})
	view := m.View()
	assert.Contains(t, view, "91.7 lux")
	assert.Contains(t, view, StatusLost)
	assert.Contains(t, view, ui.SymbolReconnecting)
}

func TestUpdateAge(t *testing.T) {
	assert.Equal(t, "no data yet", updateAge(-1))
	assert.Equal(t, "updated just now", updateAge(0))
	assert.Equal(t, "updated 12s ago", updateAge(12))
}

func TestCardCaption(t *testing.T) {
	m := newTestModel(Options{})
	assert.Equal(t, "waiting for data", m.cardCaption(sensor.FieldLight))
	assert.Equal(t, "outdoor probe", m.cardCaption(sensor.FieldOutdoorTemp))
	assert.Equal(t, "indoor", m.cardCaption(sensor.FieldHumidity))

	m = withUpdates(t, m, "BH1750 Light:    25000 lux")
	assert.Equal(t, "Full Daylight", m.cardCaption(sensor.FieldLight))
}

func TestLayoutCards(t *testing.T) {
	ui.DisableColors()
	m := newTestModel(Options{})
	cards := []string{"a", "b", "c", "d"}

	m.width = 200
	assert.Equal(t, 1, lineCount(m.layoutCards(cards)))

	m.width = 70
	assert.Equal(t, 2, lineCount(m.layoutCards(cards)))

	m.width = 30
	assert.Equal(t, 4, lineCount(m.layoutCards(cards)))

	assert.Empty(t, m.layoutCards(nil))
}

func TestNetworkPanelWidth(t *testing.T) {
	m := newTestModel(Options{})
	assert.Equal(t, maxNetworkWidth, m.networkPanelWidth())

	m.width = 50
	assert.Equal(t, 48, m.networkPanelWidth())

	m.width = 20
	assert.Equal(t, minNetworkWidth, m.networkPanelWidth())
}

func TestNetworkValueStyle(t *testing.T) {
	ui.DisableColors()
	assert.Equal(t, "✓ YES", networkValueStyle("✓ YES").Render("✓ YES"))
	assert.Equal(t, "Unknown", networkValueStyle("Unknown").Render("Unknown"))
}

func lineCount(s string) int {
	n := 1
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
