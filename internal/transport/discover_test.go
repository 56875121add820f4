package transport

import (
	stderrors "errors"
	"testing"

	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
)

func stubPorts(t *testing.T, ports []*enumerator.PortDetails, err error) {
	t.Helper()
	orig := detailedPortsList
	detailedPortsList = func() ([]*enumerator.PortDetails, error) {
		return ports, err
	}
	t.Cleanup(func() { detailedPortsList = orig })
}

func TestListPorts_EnumeratorOrder(t *testing.T) {
	stubPorts(t, []*enumerator.PortDetails{
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "10C4", PID: "EA60", Product: "CP2102 USB to UART"},
		nil,
		{Name: "/dev/ttyACM0", IsUSB: true, VID: "303A", PID: "1001", Product: "USB JTAG/serial debug unit"},
		{Name: "/dev/ttyS0"},
	}, nil)

	ports, err := ListPorts()
	require.NoError(t, err)

	require.Len(t, ports, 3)
	assert.Equal(t, "/dev/ttyUSB0", ports[0].Name)
	assert.Equal(t, "CP2102 USB to UART", ports[0].Product)
	assert.Equal(t, "/dev/ttyACM0", ports[1].Name)
	assert.Equal(t, "303A", ports[1].VID)
	assert.Equal(t, "/dev/ttyS0", ports[2].Name)
}

func TestSortedByName(t *testing.T) {
	ports := []PortInfo{{Name: "COM4"}, {Name: "COM12"}, {Name: "COM3"}}

	sorted := SortedByName(ports)

	assert.Equal(t, []PortInfo{{Name: "COM12"}, {Name: "COM3"}, {Name: "COM4"}}, sorted)
	assert.Equal(t, "COM4", ports[0].Name, "the input keeps enumerator order")
}

func TestListPorts_EnumerationError(t *testing.T) {
	stubPorts(t, nil, stderrors.New("udev unavailable"))

	_, err := ListPorts()

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConnection))
}

func TestMatchPort(t *testing.T) {
	tests := []struct {
		name string
		port PortInfo
		want bool
	}{
		{"espressif product", PortInfo{Name: "COM3", Product: "Espressif USB JTAG"}, true},
		{"marker is case-insensitive", PortInfo{Name: "/dev/ttyUSB0", Product: "USB-SERIAL CH340"}, true},
		{"marker in name", PortInfo{Name: "/dev/cu.usbserial-0001"}, false},
		{"vendor id", PortInfo{Name: "/dev/ttyACM1", IsUSB: true, VID: "303A"}, true},
		{"vendor id requires usb", PortInfo{Name: "/dev/ttyACM1", VID: "303a"}, false},
		{"unrelated", PortInfo{Name: "/dev/ttyS0", Product: "Bluetooth modem"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchPort(tt.port, DefaultMarkers, DefaultVendorIDs))
		})
	}
}

func TestMatchPort_CustomMarkers(t *testing.T) {
	p := PortInfo{Name: "/dev/cu.usbserial-0001"}
	assert.True(t, MatchPort(p, []string{"USBSERIAL"}, nil))
	assert.False(t, MatchPort(p, []string{"", "  "}, nil))
}

func TestDiscover(t *testing.T) {
	stubPorts(t, []*enumerator.PortDetails{
		{Name: "/dev/ttyS0"},
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "1a86", Product: "USB Single Serial"},
	}, nil)

	port, found, err := Discover(DefaultMarkers, DefaultVendorIDs)

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "/dev/ttyUSB0", port)
}

func TestDiscover_NoMatch(t *testing.T) {
	stubPorts(t, []*enumerator.PortDetails{{Name: "/dev/ttyS0"}}, nil)

	port, found, err := Discover(DefaultMarkers, DefaultVendorIDs)

	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, port)
}

func TestDiscover_FirstMatchInEnumeratorOrder(t *testing.T) {
	stubPorts(t, []*enumerator.PortDetails{
		{Name: "/dev/ttyUSB1", IsUSB: true, VID: "10c4", Product: "CP2102 USB to UART"},
		{Name: "/dev/ttyACM0", IsUSB: true, VID: "303a", Product: "USB JTAG/serial debug unit"},
	}, nil)

	port, found, err := Discover(DefaultMarkers, DefaultVendorIDs)

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "/dev/ttyUSB1", port, "not the alphabetically first match")
}

func TestScanner(t *testing.T) {
	stubPorts(t, []*enumerator.PortDetails{
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", Product: "FT232R"},
		{Name: "/dev/ttyACM0", Product: "Greenhouse Node"},
	}, nil)

	defaults := NewScanner(nil, nil)
	assert.Equal(t, DefaultMarkers, defaults.Markers)
	assert.Equal(t, DefaultVendorIDs, defaults.VendorIDs)

	port, found, err := defaults.Discover()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "/dev/ttyUSB0", port)

	custom := NewScanner([]string{"greenhouse"}, []string{"ffff"})
	port, found, err = custom.Discover()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "/dev/ttyACM0", port)

	ports, err := custom.List()
	require.NoError(t, err)
	assert.Len(t, ports, 2)
	assert.False(t, custom.Matches(ports[1]), "FT232R is only matched by vendor id")
}
