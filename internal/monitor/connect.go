package monitor

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/transport"
	"github.com/rileyhilliard/sensormon/internal/ui"
)

// connectRequest says how to pick the port for one attempt: an explicit
// port wins, then discovery, then the first listed port.
type connectRequest struct {
	port     string
	discover bool
	fallback bool
}

// resolvePort applies req against the available ports.
// An empty port with a nil error means nothing suitable was found.
func resolvePort(ports PortSource, req connectRequest) (string, error) {
	if req.port != "" {
		return req.port, nil
	}
	if ports == nil {
		return "", nil
	}
	if req.discover {
		port, found, err := ports.Discover()
		if err != nil {
			return "", err
		}
		if found {
			return port, nil
		}
	}
	if req.fallback {
		list, err := ports.List()
		if err != nil {
			return "", err
		}
		if len(list) > 0 {
			return list[0].Name, nil
		}
	}
	return "", nil
}

// connectCmd resolves the port and opens it off the render loop.
func (m Model) connectCmd(req connectRequest) tea.Cmd {
	conn, ports := m.conn, m.ports
	return func() tea.Msg {
		if conn == nil {
			return connectResultMsg{err: errors.New(errors.ErrConnection, "No transport configured", "")}
		}
		port, err := resolvePort(ports, req)
		if err != nil {
			return connectResultMsg{err: err}
		}
		if port == "" {
			return connectResultMsg{notFound: true}
		}
		if err := conn.Connect(port); err != nil {
			return connectResultMsg{port: port, err: err}
		}
		return connectResultMsg{port: port}
	}
}

// pollEventsCmd waits for the next reader event. Lines are parsed here,
// in the command goroutine, so the update loop only applies results.
// Each lineMsg and lostMsg re-arms the poll.
func (m Model) pollEventsCmd() tea.Cmd {
	if m.conn == nil {
		return nil
	}
	events := m.conn.Events()
	parser := m.parser
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		if ev.Kind == transport.EventLost {
			return lostMsg{port: ev.Port, err: ev.Err}
		}
		update, matched := parser.Match(ev.Line)
		at := ev.Time
		if at.IsZero() {
			at = time.Now()
		}
		return lineMsg{port: ev.Port, update: update, matched: matched, time: at}
	}
}

// reconnectCmd schedules the single reconnect after a loss.
func (m Model) reconnectCmd() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.reconnectDelay, func(time.Time) tea.Msg {
		return reconnectMsg{gen: gen}
	})
}

// retryCmd schedules the next attempt in retry mode.
func (m Model) retryCmd() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.retryInterval, func(time.Time) tea.Msg {
		return retryMsg{gen: gen}
	})
}

// disconnectCmd closes the session off the render loop; it waits for the
// reader to exit, which takes up to one read timeout.
func (m Model) disconnectCmd() tea.Cmd {
	conn := m.conn
	return func() tea.Msg {
		if conn == nil {
			return disconnectedMsg{}
		}
		return disconnectedMsg{err: conn.Disconnect()}
	}
}

// listPortsCmd loads the picker choices.
func (m Model) listPortsCmd() tea.Cmd {
	ports := m.ports
	return func() tea.Msg {
		if ports == nil {
			return portsMsg{}
		}
		list, err := ports.List()
		if err != nil {
			return portsMsg{err: err}
		}
		return portsMsg{ports: portChoices(ports, list)}
	}
}

// portChoices converts OS port info for the picker.
func portChoices(ports PortSource, list []transport.PortInfo) []ui.PortChoice {
	sorted := transport.SortedByName(list)
	choices := make([]ui.PortChoice, len(sorted))
	for i, p := range sorted {
		choices[i] = ui.PortChoice{
			Name:        p.Name,
			Description: p.Product,
			USBID:       USBID(p),
			Match:       ports.Matches(p),
		}
	}
	return choices
}

// USBID formats a port's vendor and product ids as "VID:PID".
func USBID(p transport.PortInfo) string {
	if !p.IsUSB || p.VID == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", strings.ToUpper(p.VID), strings.ToUpper(p.PID))
}

// clockCmd ticks the header's "last update" age.
func (m Model) clockCmd() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}
