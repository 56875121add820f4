package doctor

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/rileyhilliard/sensormon/internal/lock"
	"github.com/rileyhilliard/sensormon/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

type stubPorts struct {
	list    []transport.PortInfo
	err     error
	matches map[string]bool
}

func (s stubPorts) List() ([]transport.PortInfo, error) { return s.list, s.err }
func (s stubPorts) Matches(p transport.PortInfo) bool   { return s.matches[p.Name] }

type nopPort struct{ closed bool }

func (p *nopPort) Read(b []byte) (int, error)           { return 0, nil }
func (p *nopPort) Close() error                         { p.closed = true; return nil }
func (p *nopPort) SetReadTimeout(t time.Duration) error { return nil }

// recordingFactory remembers the last port it was asked to open.
type recordingFactory struct {
	opened string
	port   *nopPort
	err    error
}

func (f *recordingFactory) open(name string, mode *serial.Mode) (transport.SerialPort, error) {
	f.opened = name
	if f.err != nil {
		return nil, f.err
	}
	f.port = &nopPort{}
	return f.port, nil
}

var twoPorts = stubPorts{
	list: []transport.PortInfo{
		{Name: "/dev/ttyS0"},
		{Name: "/dev/ttyACM0", Product: "USB JTAG/serial debug unit"},
	},
	matches: map[string]bool{"/dev/ttyACM0": true},
}

func TestPortsFoundCheck(t *testing.T) {
	r := (&PortsFoundCheck{Ports: twoPorts}).Run()
	assert.Equal(t, StatusPass, r.Status)
	assert.Equal(t, "2 serial ports found", r.Message)

	r = (&PortsFoundCheck{Ports: stubPorts{}}).Run()
	assert.Equal(t, StatusFail, r.Status)
	assert.NotEmpty(t, r.Suggestion)

	r = (&PortsFoundCheck{Ports: stubPorts{err: stderrors.New("no udev")}}).Run()
	assert.Equal(t, StatusFail, r.Status)
	assert.Contains(t, r.Message, "no udev")
}

func TestBoardDetectedCheck(t *testing.T) {
	tests := []struct {
		name    string
		ports   stubPorts
		port    string
		status  CheckStatus
		message string
	}{
		{"discovered", twoPorts, "", StatusPass, "Board detected on /dev/ttyACM0"},
		{"configured present", twoPorts, "/dev/ttyS0", StatusPass, "Configured port /dev/ttyS0 is present"},
		{"configured missing", twoPorts, "COM5", StatusFail, "Configured port COM5 not found"},
		{"nothing matches", stubPorts{list: []transport.PortInfo{{Name: "/dev/ttyS0"}}}, "", StatusWarn, "No port looks like a sensor board"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := (&BoardDetectedCheck{Ports: tc.ports, Port: tc.port}).Run()
			assert.Equal(t, tc.status, r.Status)
			assert.Equal(t, tc.message, r.Message)
		})
	}
}

func TestPortAccessCheck_OpensDiscoveredPort(t *testing.T) {
	f := &recordingFactory{}
	r := (&PortAccessCheck{Ports: twoPorts, Config: transport.DefaultConfig(), Factory: f.open}).Run()

	assert.Equal(t, StatusPass, r.Status)
	assert.Equal(t, "Opened /dev/ttyACM0 at 115200 baud", r.Message)
	assert.Equal(t, "/dev/ttyACM0", f.opened)
	require.NotNil(t, f.port)
	assert.True(t, f.port.closed, "the probe must release the port")
}

func TestPortAccessCheck_PrefersConfiguredPort(t *testing.T) {
	f := &recordingFactory{}
	r := (&PortAccessCheck{Ports: twoPorts, Port: "/dev/ttyS0", Factory: f.open}).Run()

	assert.Equal(t, StatusPass, r.Status)
	assert.Equal(t, "/dev/ttyS0", f.opened)
}

func TestPortAccessCheck_OpenFailure(t *testing.T) {
	f := &recordingFactory{err: &serial.PortError{}}
	r := (&PortAccessCheck{Ports: twoPorts, Factory: f.open}).Run()

	assert.Equal(t, StatusFail, r.Status)
	assert.Contains(t, r.Message, "Couldn't open /dev/ttyACM0")
}

func TestPortAccessCheck_NoTarget(t *testing.T) {
	f := &recordingFactory{}
	r := (&PortAccessCheck{Ports: stubPorts{}, Factory: f.open}).Run()

	assert.Equal(t, StatusWarn, r.Status)
	assert.Empty(t, f.opened)
}

func TestPortAccessCheck_PortInUse(t *testing.T) {
	dir := t.TempDir()
	held, err := lock.TryAcquire(dir, "/dev/ttyACM0", lock.DefaultStale)
	require.NoError(t, err)
	defer held.Release()

	f := &recordingFactory{}
	r := (&PortAccessCheck{Ports: twoPorts, Factory: f.open, LockDir: dir}).Run()

	assert.Equal(t, StatusWarn, r.Status)
	assert.Contains(t, r.Message, "/dev/ttyACM0 is in use by")
	assert.Empty(t, f.opened, "a port held by the dashboard is not probed")
}
