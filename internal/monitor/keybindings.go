package monitor

import tea "github.com/charmbracelet/bubbletea"

// Key bindings as constants for consistency.
const (
	KeyQuit       = "q"
	KeyQuitAlt    = "ctrl+c"
	KeyConnect    = "c"
	KeyDisconnect = "d"
	KeyPickPort   = "p"
	KeyToggleHelp = "?"
	KeyClose      = "esc"
)

// HandleKeyMsg processes keyboard input and returns updated model state and command.
// Returns true if the key was handled, false otherwise. Keys for disabled
// controls are swallowed without effect.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	// Help toggle takes priority
	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}

	if m.showHelp && key == KeyClose {
		m.showHelp = false
		return true, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		model, cmd := m.quit()
		*m = model.(Model)
		return true, cmd

	case KeyConnect:
		if !m.CanConnect() {
			return true, nil
		}
		model, cmd := m.connect()
		*m = model.(Model)
		return true, cmd

	case KeyDisconnect:
		if !m.CanDisconnect() {
			return true, nil
		}
		m.busy = true
		m.setStatus(StatusDisconnecting, levelInfo)
		return true, m.disconnectCmd()

	case KeyPickPort:
		if m.mode != ModeAuto || !m.CanConnect() {
			return true, nil
		}
		return true, m.listPortsCmd()
	}

	return false, nil
}
