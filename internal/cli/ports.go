package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/monitor"
	"github.com/rileyhilliard/sensormon/internal/transport"
	"github.com/rileyhilliard/sensormon/internal/ui"
)

// PortListing is the --json form of one serial port.
type PortListing struct {
	transport.PortInfo
	USBID string `json:"usb_id,omitempty"`
	Match bool   `json:"match"`
}

// PortsOutput is the --json payload of `sensormon ports`.
type PortsOutput struct {
	Ports      []PortListing `json:"ports"`
	Discovered string        `json:"discovered,omitempty"`
}

// PortSource lists and classifies serial ports. transport.Scanner satisfies it.
type PortSource interface {
	List() ([]transport.PortInfo, error)
	Matches(p transport.PortInfo) bool
}

// collectPorts lists ports by name and marks the ones discovery would pick.
// Discovered is the first match in enumerator order, the port the dashboard
// would open.
func collectPorts(src PortSource) (PortsOutput, error) {
	list, err := src.List()
	if err != nil {
		return PortsOutput{}, err
	}

	var out PortsOutput
	for _, p := range list {
		if src.Matches(p) {
			out.Discovered = p.Name
			break
		}
	}

	sorted := transport.SortedByName(list)
	out.Ports = make([]PortListing, len(sorted))
	for i, p := range sorted {
		out.Ports[i] = PortListing{PortInfo: p, USBID: monitor.USBID(p), Match: src.Matches(p)}
	}
	return out, nil
}

// writePortsText renders the listing as a table with a short legend.
func writePortsText(w io.Writer, out PortsOutput) {
	rows := make([]ui.PortRow, len(out.Ports))
	for i, p := range out.Ports {
		rows[i] = ui.PortRow{Name: p.Name, Description: p.Product, USBID: p.USBID, Match: p.Match}
	}
	fmt.Fprintln(w, ui.RenderPortTable(rows))

	muted := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	if out.Discovered != "" {
		fmt.Fprintf(w, "%s Auto mode would open %s\n", ui.SymbolSuccess, out.Discovered)
	} else if len(out.Ports) > 0 {
		fmt.Fprintln(w, muted.Render("No port looks like a sensor board; pass --port or run 'sensormon ports --use <port>'."))
	}
}

// usePort stores port as serial.port in the config file, creating a
// project config with defaults if none exists. Returns the file written.
func usePort(explicit, port string) (string, error) {
	path, err := config.Find(explicit)
	if err != nil {
		return "", err
	}
	if path == "" {
		path = filepath.Join(".", config.ConfigFileName)
		if err := config.Write(path, config.DefaultConfig()); err != nil {
			return "", err
		}
	}
	if err := config.SetValue(path, "serial.port", port); err != nil {
		return "", err
	}
	return path, nil
}

// portsCommand implements `sensormon ports`.
func portsCommand(asJSON bool, use string) error {
	cfg, _, err := config.LoadOrDefault(Config())
	if err != nil {
		if asJSON {
			_ = WriteJSONFromError(os.Stdout, err)
		}
		return err
	}

	scanner := transport.NewScanner(cfg.Serial.Markers, cfg.Serial.VendorIDs)
	out, err := collectPorts(scanner)
	if err != nil {
		if asJSON {
			_ = WriteJSONFromError(os.Stdout, err)
		}
		return err
	}

	if use != "" {
		if !hasPort(out, use) {
			return errors.New(errors.ErrConnection,
				fmt.Sprintf("No serial port named '%s'", use),
				"Run 'sensormon ports' to see the available ports.")
		}
		path, err := usePort(Config(), use)
		if err != nil {
			return err
		}
		if !asJSON {
			fmt.Printf("%s Set serial.port to %s in %s\n", ui.SymbolSuccess, use, path)
		}
	}

	if asJSON {
		return WriteJSONSuccess(os.Stdout, out)
	}
	writePortsText(os.Stdout, out)
	return nil
}

func hasPort(out PortsOutput, name string) bool {
	for _, p := range out.Ports {
		if p.Name == name {
			return true
		}
	}
	return false
}
