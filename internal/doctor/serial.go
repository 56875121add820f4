package doctor

import (
	stderrors "errors"
	"fmt"

	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/lock"
	"github.com/rileyhilliard/sensormon/internal/transport"
	"github.com/rileyhilliard/sensormon/internal/util"
)

// PortLister lists and classifies serial ports. transport.Scanner satisfies it.
type PortLister interface {
	List() ([]transport.PortInfo, error)
	Matches(p transport.PortInfo) bool
}

// PortsFoundCheck verifies the OS reports at least one serial port.
type PortsFoundCheck struct {
	Ports PortLister
}

func (c *PortsFoundCheck) Name() string     { return "serial_ports" }
func (c *PortsFoundCheck) Category() string { return CategorySerial }

func (c *PortsFoundCheck) Run() CheckResult {
	list, err := c.Ports.List()
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Can't enumerate serial ports: %s", errors.ShortMessage(err)),
			Suggestion: suggestionOf(err),
		}
	}
	if len(list) == 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "No serial ports found",
			Suggestion: "Plug in the board with a data-capable USB cable",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%d serial %s found", len(list), util.Pluralize(len(list), "port", "ports")),
	}
}

// BoardDetectedCheck verifies the port the dashboard would open exists:
// the configured port if set, otherwise a port matching discovery.
type BoardDetectedCheck struct {
	Ports PortLister
	Port  string // configured serial.port
}

func (c *BoardDetectedCheck) Name() string     { return "board_detected" }
func (c *BoardDetectedCheck) Category() string { return CategorySerial }

func (c *BoardDetectedCheck) Run() CheckResult {
	list, err := c.Ports.List()
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusFail,
			Message: "Can't check for the board: port enumeration failed",
		}
	}

	if c.Port != "" {
		for _, p := range list {
			if p.Name == c.Port {
				return CheckResult{
					Name:    c.Name(),
					Status:  StatusPass,
					Message: fmt.Sprintf("Configured port %s is present", c.Port),
				}
			}
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Configured port %s not found", c.Port),
			Suggestion: "Run 'sensormon ports' and update serial.port",
		}
	}

	if port := firstMatch(c.Ports, list); port != "" {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: fmt.Sprintf("Board detected on %s", port),
		}
	}
	return CheckResult{
		Name:       c.Name(),
		Status:     StatusWarn,
		Message:    "No port looks like a sensor board",
		Suggestion: "Set serial.port, or add the adapter to serial.markers or serial.vendor_ids",
	}
}

// PortAccessCheck opens the target port once to catch permission and
// busy-port problems before the dashboard does.
type PortAccessCheck struct {
	Ports   PortLister
	Port    string // configured serial.port
	Config  transport.Config
	Factory transport.PortFactory // nil uses the real serial library
	LockDir string                // port locks; empty skips the in-use check
}

func (c *PortAccessCheck) Name() string     { return "port_access" }
func (c *PortAccessCheck) Category() string { return CategorySerial }

func (c *PortAccessCheck) Run() CheckResult {
	target := c.Port
	if target == "" {
		list, err := c.Ports.List()
		if err == nil {
			target = firstMatch(c.Ports, list)
		}
	}
	if target == "" {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusWarn,
			Message: "Skipped: no port to open",
		}
	}

	if c.LockDir != "" {
		if holder := lock.Holder(c.LockDir, target, lock.DefaultStale); holder != "" {
			return CheckResult{
				Name:       c.Name(),
				Status:     StatusWarn,
				Message:    fmt.Sprintf("%s is in use by %s", target, holder),
				Suggestion: "Close the running dashboard to probe the port",
			}
		}
	}

	session, err := transport.Open(target, c.Config, c.Factory)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    errors.ShortMessage(err),
			Suggestion: suggestionOf(err),
		}
	}
	_ = session.Close()

	baud := c.Config.BaudRate
	if baud <= 0 {
		baud = transport.DefaultBaudRate
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Opened %s at %d baud", target, baud),
	}
}

func firstMatch(ports PortLister, list []transport.PortInfo) string {
	for _, p := range list {
		if ports.Matches(p) {
			return p.Name
		}
	}
	return ""
}

// suggestionOf returns the hint carried by a structured error.
func suggestionOf(err error) string {
	var smErr *errors.Error
	if stderrors.As(err, &smErr) {
		return smErr.Suggestion
	}
	return ""
}
