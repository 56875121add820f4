package transport

import (
	"sort"
	"strings"

	"github.com/rileyhilliard/sensormon/internal/errors"
	"go.bug.st/serial/enumerator"
)

// DefaultMarkers are case-insensitive substrings identifying ESP32 boards:
// the built-in USB-JTAG of newer chips and the common USB-serial bridges.
var DefaultMarkers = []string{"espressif", "jtag", "cp210", "ch340", "ch9102", "ftdi", "usb serial"}

// DefaultVendorIDs are USB vendor ids for the same chips
// (Espressif, Silicon Labs, WCH, FTDI).
var DefaultVendorIDs = []string{"303a", "10c4", "1a86", "0403"}

// PortInfo describes one serial port reported by the OS.
type PortInfo struct {
	Name         string `json:"name"`
	Product      string `json:"product,omitempty"`
	VID          string `json:"vid,omitempty"`
	PID          string `json:"pid,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	IsUSB        bool   `json:"usb"`
}

// detailedPortsList is swapped out in tests.
var detailedPortsList = enumerator.GetDetailedPortsList

// ListPorts returns every serial port in the order the OS enumerator reports
// them. Discover picks the first match in this order.
func ListPorts() ([]PortInfo, error) {
	details, err := detailedPortsList()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConnection,
			"Couldn't enumerate serial ports",
			"Check that your user can read the serial device list")
	}

	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		if d == nil {
			continue
		}
		ports = append(ports, PortInfo{
			Name:         d.Name,
			Product:      d.Product,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			IsUSB:        d.IsUSB,
		})
	}
	return ports, nil
}

// SortedByName returns a copy of ports ordered by name, for display.
func SortedByName(ports []PortInfo) []PortInfo {
	sorted := append([]PortInfo(nil), ports...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return sorted
}

// MatchPort reports whether a port's description or name contains one of
// the markers, or its USB vendor id is one of vendorIDs.
func MatchPort(p PortInfo, markers, vendorIDs []string) bool {
	desc := strings.ToLower(p.Product)
	name := strings.ToLower(p.Name)
	for _, m := range markers {
		m = strings.ToLower(strings.TrimSpace(m))
		if m == "" {
			continue
		}
		if strings.Contains(desc, m) || strings.Contains(name, m) {
			return true
		}
	}
	if p.IsUSB && p.VID != "" {
		for _, vid := range vendorIDs {
			if strings.EqualFold(strings.TrimSpace(vid), p.VID) {
				return true
			}
		}
	}
	return false
}

// Discover returns the first port matching the markers or vendor ids.
// found is false when no port matches.
func Discover(markers, vendorIDs []string) (port string, found bool, err error) {
	ports, err := ListPorts()
	if err != nil {
		return "", false, err
	}
	for _, p := range ports {
		if MatchPort(p, markers, vendorIDs) {
			return p.Name, true, nil
		}
	}
	return "", false, nil
}

// Scanner binds discovery settings so callers can look for the board
// without carrying markers around.
type Scanner struct {
	Markers   []string
	VendorIDs []string
}

// NewScanner returns a Scanner, falling back to the default markers and
// vendor ids for empty lists.
func NewScanner(markers, vendorIDs []string) Scanner {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	if len(vendorIDs) == 0 {
		vendorIDs = DefaultVendorIDs
	}
	return Scanner{Markers: markers, VendorIDs: vendorIDs}
}

// Discover returns the first matching port.
func (s Scanner) Discover() (string, bool, error) {
	return Discover(s.Markers, s.VendorIDs)
}

// List returns every port the OS reports.
func (s Scanner) List() ([]PortInfo, error) {
	return ListPorts()
}

// Matches reports whether p looks like a sensor board.
func (s Scanner) Matches(p PortInfo) bool {
	return MatchPort(p, s.Markers, s.VendorIDs)
}
