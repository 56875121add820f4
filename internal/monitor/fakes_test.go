package monitor

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/sensormon/internal/transport"
)

// fakeConnector records calls and fails Connect with the queued errors.
type fakeConnector struct {
	mu          sync.Mutex
	events      chan transport.Event
	errs        []error
	connects    []string
	disconnects int
}

func newFakeConnector(errs ...error) *fakeConnector {
	return &fakeConnector{events: make(chan transport.Event, 8), errs: errs}
}

func (c *fakeConnector) Connect(port string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connects = append(c.connects, port)
	if len(c.errs) == 0 {
		return nil
	}
	err := c.errs[0]
	c.errs = c.errs[1:]
	return err
}

func (c *fakeConnector) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnects++
	return nil
}

func (c *fakeConnector) Events() <-chan transport.Event {
	return c.events
}

func (c *fakeConnector) connected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.connects))
	copy(out, c.connects)
	return out
}

// fakePorts is a scripted PortSource.
type fakePorts struct {
	mu            sync.Mutex
	discovered    string
	discoverErr   error
	list          []transport.PortInfo
	listErr       error
	discoverCalls int
	listCalls     int
}

func (p *fakePorts) Discover() (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.discoverCalls++
	if p.discoverErr != nil {
		return "", false, p.discoverErr
	}
	return p.discovered, p.discovered != "", nil
}

func (p *fakePorts) List() ([]transport.PortInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listCalls++
	return p.list, p.listErr
}

func (p *fakePorts) Matches(info transport.PortInfo) bool {
	return info.Name == p.discovered
}

// drain runs cmd and collects the messages it produces. Commands that do
// not finish quickly (timers, the event poll) are abandoned.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	out := make(chan tea.Msg, 1)
	go func() { out <- cmd() }()

	select {
	case msg := <-out:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var msgs []tea.Msg
			for _, c := range batch {
				msgs = append(msgs, drain(c)...)
			}
			return msgs
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// connectResult finds the connect outcome among cmd's messages.
func connectResult(cmd tea.Cmd) (connectResultMsg, bool) {
	for _, msg := range drain(cmd) {
		if res, ok := msg.(connectResultMsg); ok {
			return res, true
		}
	}
	return connectResultMsg{}, false
}

// step feeds msg to the model.
func step(m Model, msg tea.Msg) (Model, tea.Cmd) {
	model, cmd := m.Update(msg)
	return model.(Model), cmd
}

func keyMsg(k string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}
