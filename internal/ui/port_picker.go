package ui

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/sensormon/internal/errors"
	"golang.org/x/term"
)

// PortChoice contains information about a serial port for display in the picker.
type PortChoice struct {
	Name        string // Device path or COM name
	Description string // USB product string, if any
	USBID       string // "VID:PID", if USB
	Match       bool   // Looks like a sensor board
}

// portItem implements list.Item for the Bubbles list component.
type portItem struct {
	port PortChoice
}

func (i portItem) Title() string {
	if i.port.Match {
		return i.port.Name + " " + SymbolComplete
	}
	return i.port.Name
}

func (i portItem) Description() string {
	var parts []string
	if i.port.Description != "" {
		parts = append(parts, i.port.Description)
	}
	if i.port.USBID != "" {
		parts = append(parts, i.port.USBID)
	}
	if len(parts) == 0 {
		return "no description"
	}
	return strings.Join(parts, " | ")
}

func (i portItem) FilterValue() string {
	return i.port.Name + " " + i.port.Description + " " + i.port.USBID
}

// PortPickedMsg is sent by an embedded picker when the user chooses a port
// or cancels (Port is nil).
type PortPickedMsg struct {
	Port *PortChoice
}

// PortPickerModel is a Bubble Tea model for selecting a serial port.
// Standalone pickers quit the program when done; embedded pickers send
// PortPickedMsg to their parent instead.
type PortPickerModel struct {
	list       list.Model
	selected   *PortChoice
	done       bool
	standalone bool
}

// portPickerKeyMap defines key bindings for the port picker.
type portPickerKeyMap struct {
	Enter key.Binding
	Quit  key.Binding
}

var portPickerKeys = portPickerKeyMap{
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "cancel"),
	),
}

// NewPortPickerModel creates a port picker. Matching ports are listed first.
func NewPortPickerModel(ports []PortChoice, standalone bool) PortPickerModel {
	items := make([]list.Item, 0, len(ports))
	for _, p := range ports {
		if p.Match {
			items = append(items, portItem{port: p})
		}
	}
	for _, p := range ports {
		if !p.Match {
			items = append(items, portItem{port: p})
		}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ColorNeonPink).
		BorderForeground(ColorNeonCyan)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(ColorMuted)

	l := list.New(items, delegate, 60, 14)
	l.Title = "Select a serial port"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(ColorNeonPink).
		Bold(true).
		Padding(0, 0, 1, 0)
	l.Styles.HelpStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	return PortPickerModel{
		list:       l,
		standalone: standalone,
	}
}

// Init implements tea.Model.
func (m PortPickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m PortPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// While filtering, keys belong to the filter input.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, portPickerKeys.Enter):
			if item, ok := m.list.SelectedItem().(portItem); ok {
				port := item.port
				m.selected = &port
			}
			return m.finish()

		case key.Matches(msg, portPickerKeys.Quit):
			return m.finish()
		}

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-2)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m PortPickerModel) finish() (tea.Model, tea.Cmd) {
	m.done = true
	if m.standalone {
		return m, tea.Quit
	}
	selected := m.selected
	return m, func() tea.Msg {
		return PortPickedMsg{Port: selected}
	}
}

// View implements tea.Model.
func (m PortPickerModel) View() string {
	if m.done {
		return ""
	}
	return m.list.View()
}

// Selected returns the selected port, or nil if cancelled.
func (m PortPickerModel) Selected() *PortChoice {
	return m.selected
}

// Done reports whether the user picked or cancelled.
func (m PortPickerModel) Done() bool {
	return m.done
}

// PickPort displays an interactive port picker and returns the selected port.
// Returns nil if the user cancels (ESC/q/Ctrl+C).
func PickPort(ports []PortChoice) (*PortChoice, error) {
	return PickPortWithOutput(ports, os.Stdout, os.Stdin)
}

// PickPortWithOutput displays the port picker using custom I/O.
func PickPortWithOutput(ports []PortChoice, output io.Writer, input io.Reader) (*PortChoice, error) {
	if len(ports) == 0 {
		return nil, errors.New(errors.ErrConnection, "No serial ports to pick from", "Plug in the board and run 'sensormon ports' to check it shows up.")
	}

	if len(ports) == 1 {
		return &ports[0], nil
	}

	model := NewPortPickerModel(ports, true)

	p := tea.NewProgram(
		model,
		tea.WithOutput(output),
		tea.WithInput(input),
	)

	finalModel, err := p.Run()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConnection, "Port picker failed", "Try running again or use --port to specify the port directly.")
	}

	if m, ok := finalModel.(PortPickerModel); ok {
		return m.Selected(), nil
	}

	return nil, nil
}

// IsTerminal returns true if the file descriptor is a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
