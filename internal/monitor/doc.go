// Package monitor implements the real-time TUI dashboard for the sensor board.
//
// The dashboard shows four sensor cards (illuminance, outdoor temperature,
// indoor temperature and humidity), an optional Zigbee network panel, a
// status line and the Connect/Disconnect controls.
//
// # Architecture
//
// The package uses the Bubble Tea framework, which follows The Elm Architecture
// (Model-Update-View pattern):
//
//   - Model: Holds the connection state, the readings snapshot and layout
//   - Update: Processes messages (keystrokes, timers, reader events)
//   - View: Renders the current state to a string for display
//
// Update is the only place readings change. It never performs blocking I/O:
// discovery, open and close run inside tea.Cmd functions and report back
// with messages.
//
// # Message Flow
//
//  1. pollEventsCmd blocks on the transport's event channel
//  2. A line is parsed in the command goroutine and arrives as lineMsg
//  3. Update applies the update to the readings snapshot and re-arms the poll
//  4. View() re-renders the dashboard with the new value
//
// # Connection States
//
//	Idle ──c──▶ Connecting ──ok──▶ Connected ──lost──▶ Reconnecting
//	  ▲             │                  │                   │
//	  └───failed────┘◀────────d────────┘      delay ──▶ Connecting
//
// In auto mode a failed attempt returns to Idle. In retry mode the
// dashboard waits in Reconnecting and tries the fixed port again after the
// retry interval, indefinitely.
//
// # Keyboard Shortcuts
//
//	c           - Connect (only when no session is open)
//	d           - Disconnect (only while connected)
//	p           - Pick a serial port (auto mode)
//	?           - Toggle help overlay
//	q, Ctrl+C   - Disconnect and quit
package monitor
