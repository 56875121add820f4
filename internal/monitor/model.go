package monitor

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/logger"
	"github.com/rileyhilliard/sensormon/internal/sensor"
	"github.com/rileyhilliard/sensormon/internal/transport"
	"github.com/rileyhilliard/sensormon/internal/ui"
)

// ConnState is the dashboard's view of the serial connection.
type ConnState int

const (
	StateIdle ConnState = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

// String returns a human-readable state name.
func (s ConnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Mode selects the connection policy.
type Mode int

const (
	// ModeAuto discovers the board at startup and makes a single
	// reconnect attempt after a loss.
	ModeAuto Mode = iota
	// ModeRetry reopens one fixed port every retry interval until it succeeds.
	ModeRetry
)

// String returns the config spelling of the mode.
func (m Mode) String() string {
	if m == ModeRetry {
		return "retry"
	}
	return "auto"
}

// ParseMode converts a config value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "auto":
		return ModeAuto, nil
	case "retry":
		return ModeRetry, nil
	default:
		return ModeAuto, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown connect mode '%s'", s),
			"Use 'auto' or 'retry'.")
	}
}

// Status texts shown under the cards.
const (
	StatusDisconnected  = "Disconnected"
	StatusWaiting       = "Waiting for device…"
	StatusSearching     = "Searching for device…"
	StatusConnectedTo   = "Connected to "
	StatusLost          = "Connection lost — reconnecting…"
	StatusNoDevice      = "No device found. Press c to connect."
	StatusFailedPrefix  = "Connection failed: "
	StatusDisconnecting = "Disconnecting…"
)

// statusLevel picks the status line color.
type statusLevel int

const (
	levelInfo statusLevel = iota
	levelOK
	levelWarn
	levelError
)

// Connector is the transport the dashboard drives.
// *transport.Manager satisfies it.
type Connector interface {
	Connect(port string) error
	Disconnect() error
	Events() <-chan transport.Event
}

// PortSource finds serial ports. transport.Scanner satisfies it.
type PortSource interface {
	Discover() (string, bool, error)
	List() ([]transport.PortInfo, error)
	Matches(p transport.PortInfo) bool
}

// Options configures a Model.
type Options struct {
	Title          string
	Mode           Mode
	Port           string // configured port; required in retry mode
	Network        bool
	RetryInterval  time.Duration
	ReconnectDelay time.Duration

	Connector Connector
	Ports     PortSource
	Parser    *sensor.Parser
	Logger    logger.Logger
}

// Default intervals, used when Options leaves them zero.
const (
	DefaultRetryInterval  = 2 * time.Second
	DefaultReconnectDelay = time.Second
)

// clockInterval refreshes the "last update" age in the header.
const clockInterval = time.Second

// Model is the Bubble Tea model for the sensor dashboard.
type Model struct {
	title          string
	mode           Mode
	network        bool
	retryInterval  time.Duration
	reconnectDelay time.Duration

	conn   Connector
	ports  PortSource
	parser *sensor.Parser
	log    logger.Logger

	state       ConnState
	status      string
	statusLevel statusLevel
	port        string // port of the current or last session
	preferred   string // configured or picked port
	busy        bool   // a disconnect is in flight
	gen         int    // bumps invalidate scheduled retry and reconnect ticks

	readings   sensor.Readings
	lastUpdate time.Time
	lineCount  int

	width     int
	height    int
	showHelp  bool
	picker    *ui.PortPickerModel
	spinner   spinner.Model
	animating bool
	quitting  bool
}

// startMsg kicks off the initial connection attempt.
type startMsg struct{}

// clockMsg refreshes time-dependent parts of the view.
type clockMsg time.Time

// connectResultMsg reports the outcome of one connection attempt.
type connectResultMsg struct {
	port     string
	err      error
	notFound bool
}

// lineMsg carries one line from the reader, already parsed off the render loop.
type lineMsg struct {
	port    string
	update  sensor.Update
	matched bool
	time    time.Time
}

// lostMsg reports that the reader gave up on a session.
type lostMsg struct {
	port string
	err  error
}

// reconnectMsg fires reconnectDelay after a loss.
type reconnectMsg struct{ gen int }

// retryMsg fires between attempts in retry mode.
type retryMsg struct{ gen int }

// disconnectedMsg reports that a user disconnect finished.
type disconnectedMsg struct{ err error }

// portsMsg carries the port list for the picker.
type portsMsg struct {
	ports []ui.PortChoice
	err   error
}

// NewModel creates a dashboard in the Idle state. Connection starts from Init.
func NewModel(opts Options) Model {
	if opts.Title == "" {
		opts.Title = "Sensor Monitor"
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = DefaultRetryInterval
	}
	if opts.ReconnectDelay < 0 {
		opts.ReconnectDelay = 0
	} else if opts.ReconnectDelay == 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	if opts.Parser == nil {
		opts.Parser = sensor.NewParser(sensor.Options{Network: opts.Network, Logger: opts.Logger})
	}

	return Model{
		title:          opts.Title,
		mode:           opts.Mode,
		network:        opts.Network,
		retryInterval:  opts.RetryInterval,
		reconnectDelay: opts.ReconnectDelay,
		conn:           opts.Connector,
		ports:          opts.Ports,
		parser:         opts.Parser,
		log:            opts.Logger,
		state:          StateIdle,
		status:         StatusDisconnected,
		preferred:      opts.Port,
		readings:       sensor.NewReadings(),
		spinner:        ui.NewSpinner(),
	}
}

// Init starts event polling, the header clock and the first connection attempt.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.pollEventsCmd(),
		m.clockCmd(),
		func() tea.Msg { return startMsg{} },
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// ctrl+c always quits, even from the picker.
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == KeyQuitAlt {
		return m.quit()
	}

	if m.picker != nil {
		if picked, ok := msg.(ui.PortPickedMsg); ok {
			return m.handlePicked(picked)
		}
		switch msg.(type) {
		case tea.KeyMsg, tea.WindowSizeMsg:
			if size, ok := msg.(tea.WindowSizeMsg); ok {
				m.width, m.height = size.Width, size.Height
			}
			model, cmd := m.picker.Update(msg)
			picker := model.(ui.PortPickerModel)
			m.picker = &picker
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case startMsg:
		return m.start()

	case clockMsg:
		return m, m.clockCmd()

	case spinner.TickMsg:
		if !m.attempting() {
			m.animating = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case connectResultMsg:
		return m.handleConnectResult(msg)

	case lineMsg:
		if msg.matched {
			m.readings = m.readings.With(msg.update)
			m.lastUpdate = msg.time
		}
		m.lineCount++
		return m, m.pollEventsCmd()

	case lostMsg:
		return m.handleLost(msg)

	case reconnectMsg:
		if msg.gen != m.gen || m.state != StateReconnecting {
			return m, nil
		}
		port := m.port
		if m.mode == ModeRetry {
			port = m.preferred
		}
		return m.beginConnect(connectRequest{port: port})

	case retryMsg:
		if msg.gen != m.gen || m.state != StateReconnecting {
			return m, nil
		}
		return m.beginConnect(connectRequest{port: m.preferred})

	case disconnectedMsg:
		return m.handleDisconnected(msg)

	case portsMsg:
		return m.handlePorts(msg)
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.picker != nil {
		return m.picker.View()
	}
	dashboard := m.renderDashboard()
	if m.showHelp {
		return m.renderHelpOverlay(dashboard)
	}
	return dashboard
}

// start runs the startup policy for the configured mode.
func (m Model) start() (tea.Model, tea.Cmd) {
	if m.mode == ModeRetry {
		m.setStatus(StatusWaiting, levelInfo)
		return m.beginConnect(connectRequest{port: m.preferred})
	}
	if m.preferred != "" {
		m.setStatus("Connecting to "+m.preferred+"…", levelInfo)
		return m.beginConnect(connectRequest{port: m.preferred})
	}
	m.setStatus(StatusSearching, levelInfo)
	return m.beginConnect(connectRequest{discover: true})
}

// connect handles a user connect request.
func (m Model) connect() (tea.Model, tea.Cmd) {
	if m.mode == ModeRetry {
		m.setStatus(StatusWaiting, levelInfo)
		return m.beginConnect(connectRequest{port: m.preferred})
	}
	m.setStatus(StatusSearching, levelInfo)
	return m.beginConnect(connectRequest{port: m.preferred, discover: true, fallback: true})
}

// beginConnect moves to Connecting and starts one attempt.
func (m Model) beginConnect(req connectRequest) (tea.Model, tea.Cmd) {
	m.state = StateConnecting
	m.gen++
	cmds := []tea.Cmd{m.connectCmd(req)}
	if !m.animating {
		m.animating = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleConnectResult(msg connectResultMsg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}

	if msg.err == nil && !msg.notFound {
		m.state = StateConnected
		m.port = msg.port
		m.setStatus(StatusConnectedTo+msg.port, levelOK)
		m.log.Info("dashboard connected to %s", msg.port)
		return m, nil
	}

	if msg.err != nil {
		m.log.Debug("connect attempt failed: %v", msg.err)
	}

	if m.mode == ModeRetry {
		m.state = StateReconnecting
		if m.status != StatusLost {
			m.setStatus(StatusWaiting, levelInfo)
		}
		return m, m.retryCmd()
	}

	m.state = StateIdle
	if msg.notFound {
		m.setStatus(StatusNoDevice, levelWarn)
	} else {
		m.setStatus(StatusFailedPrefix+errors.ShortMessage(msg.err), levelError)
	}
	return m, nil
}

func (m Model) handleLost(msg lostMsg) (tea.Model, tea.Cmd) {
	poll := m.pollEventsCmd()
	if m.state != StateConnected || msg.port != m.port {
		m.log.Debug("ignoring lost event for %s in state %s", msg.port, m.state)
		return m, poll
	}

	m.log.Warn("connection to %s lost: %v", msg.port, msg.err)
	m.state = StateReconnecting
	m.setStatus(StatusLost, levelWarn)
	m.gen++
	spin := m.startSpinner()
	return m, tea.Batch(poll, m.reconnectCmd(), spin)
}

func (m Model) handleDisconnected(msg disconnectedMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.state = StateIdle
	m.gen++
	if msg.err != nil {
		m.setStatus(StatusFailedPrefix+errors.ShortMessage(msg.err), levelError)
		return m, nil
	}
	m.setStatus(StatusDisconnected, levelInfo)
	return m, nil
}

func (m Model) handlePorts(msg portsMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setStatus(StatusFailedPrefix+errors.ShortMessage(msg.err), levelError)
		return m, nil
	}
	if len(msg.ports) == 0 {
		m.setStatus(StatusNoDevice, levelWarn)
		return m, nil
	}
	picker := ui.NewPortPickerModel(msg.ports, false)
	m.picker = &picker
	if m.width > 0 && m.height > 0 {
		model, _ := picker.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		picker = model.(ui.PortPickerModel)
		m.picker = &picker
	}
	return m, nil
}

func (m Model) handlePicked(msg ui.PortPickedMsg) (tea.Model, tea.Cmd) {
	m.picker = nil
	if msg.Port == nil || !m.CanConnect() {
		return m, nil
	}
	m.preferred = msg.Port.Name
	m.setStatus("Connecting to "+msg.Port.Name+"…", levelInfo)
	return m.beginConnect(connectRequest{port: msg.Port.Name})
}

// quit disconnects, then exits the program.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Sequence(m.disconnectCmd(), tea.Quit)
}

func (m *Model) setStatus(text string, level statusLevel) {
	m.status = text
	m.statusLevel = level
}

// startSpinner returns a tick command unless the spinner is already running.
func (m *Model) startSpinner() tea.Cmd {
	if m.animating {
		return nil
	}
	m.animating = true
	return m.spinner.Tick
}

// attempting reports whether a connection attempt is pending or in flight.
func (m Model) attempting() bool {
	return m.state == StateConnecting || m.state == StateReconnecting
}

// CanConnect reports whether the Connect control is enabled: no session is
// open and no attempt is in flight.
func (m Model) CanConnect() bool {
	return !m.busy && !m.quitting && (m.state == StateIdle || m.state == StateReconnecting)
}

// CanDisconnect reports whether the Disconnect control is enabled.
func (m Model) CanDisconnect() bool {
	return !m.busy && !m.quitting && m.state == StateConnected
}

// State returns the connection state.
func (m Model) State() ConnState {
	return m.state
}

// Status returns the status line text.
func (m Model) Status() string {
	return m.status
}

// Readings returns the current snapshot of every field.
func (m Model) Readings() sensor.Readings {
	return m.readings
}

// Port returns the port of the current or last session.
func (m Model) Port() string {
	return m.port
}

// SecondsSinceUpdate returns how many seconds have passed since the last
// field update, or -1 before the first one.
func (m Model) SecondsSinceUpdate() int {
	if m.lastUpdate.IsZero() {
		return -1
	}
	return int(time.Since(m.lastUpdate).Seconds())
}
