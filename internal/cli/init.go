package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/transport"
	"github.com/rileyhilliard/sensormon/internal/ui"
)

// autoDetect is the port select value meaning "leave serial.port empty".
const autoDetect = ""

// InitOptions holds options for the init command.
type InitOptions struct {
	Path           string // Where to write; defaults to ./.sensormon.yaml
	Port           string // Pre-specified serial port
	Mode           string // Pre-specified connect mode
	NoNetwork      bool   // Hide the Zigbee panel
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use defaults
	Out            io.Writer
}

// initConfigPath resolves where init writes.
func initConfigPath(opts InitOptions, global bool) string {
	if opts.Path != "" {
		return config.ExpandTilde(opts.Path)
	}
	if global {
		if p := config.GlobalConfigPath(); p != "" {
			return p
		}
	}
	return filepath.Join(".", config.ConfigFileName)
}

// checkExistingConfig returns proceed=false when the user declines to
// overwrite an existing file.
func checkExistingConfig(path string, opts InitOptions) (bool, error) {
	if _, err := os.Stat(path); err != nil || opts.Overwrite {
		return true, nil
	}

	if opts.NonInteractive {
		return false, errors.New(errors.ErrConfig,
			fmt.Sprintf("Config file already exists: %s", path),
			"Use --force to overwrite")
	}

	var overwrite bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", path)).
				Value(&overwrite),
		),
	)
	if err := form.Run(); err != nil {
		return false, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Try running with --force to overwrite")
	}
	return overwrite, nil
}

// buildInitConfig turns the collected answers into a config.
func buildInitConfig(opts InitOptions) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Serial.Port = opts.Port
	if opts.Mode != "" {
		cfg.Connect.Mode = opts.Mode
	}
	cfg.Display.Network = !opts.NoNetwork
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// portOptions lists detected ports for the select, matches first.
func portOptions(ports []transport.PortInfo, scanner transport.Scanner) []huh.Option[string] {
	options := []huh.Option[string]{huh.NewOption("Auto-detect the board", autoDetect)}
	var rest []huh.Option[string]
	for _, p := range transport.SortedByName(ports) {
		label := p.Name
		if p.Product != "" {
			label = fmt.Sprintf("%s (%s)", p.Name, p.Product)
		}
		if scanner.Matches(p) {
			options = append(options, huh.NewOption(label+" "+ui.SymbolComplete, p.Name))
			continue
		}
		rest = append(rest, huh.NewOption(label, p.Name))
	}
	return append(options, rest...)
}

// collectInteractive asks for the port, mode and network panel.
func collectInteractive(opts *InitOptions) error {
	scanner := transport.NewScanner(nil, nil)
	// An enumeration failure still leaves auto-detect to pick.
	ports, _ := scanner.List()

	network := !opts.NoNetwork
	mode := opts.Mode
	if mode == "" {
		mode = config.ModeAuto
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Serial port").
				Description("Auto-detect looks for Espressif and common USB-serial adapters").
				Options(portOptions(ports, scanner)...).
				Value(&opts.Port),
			huh.NewSelect[string]().
				Title("Connection mode").
				Options(
					huh.NewOption("auto: find the board, reconnect once if it drops", config.ModeAuto),
					huh.NewOption("retry: keep reopening one fixed port", config.ModeRetry),
				).
				Value(&mode).
				Validate(func(s string) error {
					if s == config.ModeRetry && opts.Port == autoDetect {
						return fmt.Errorf("retry mode needs a specific port")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Show the Zigbee network panel?").
				Value(&network),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --non-interactive")
	}

	opts.Mode = mode
	opts.NoNetwork = !network
	return nil
}

// Init creates a new config file.
func Init(opts InitOptions, global bool) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	path := initConfigPath(opts, global)

	proceed, err := checkExistingConfig(path, opts)
	if err != nil {
		return err
	}
	if !proceed {
		fmt.Fprintln(out, "Cancelled.")
		return nil
	}

	if !opts.NonInteractive {
		if err := collectInteractive(&opts); err != nil {
			return err
		}
	}

	cfg, err := buildInitConfig(opts)
	if err != nil {
		return err
	}
	if err := config.Write(path, cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s Created %s\n\n", ui.SymbolSuccess, path)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  sensormon ports  - Check the board shows up")
	fmt.Fprintln(out, "  sensormon        - Start the dashboard")
	return nil
}

// initCommand is the implementation called by the cobra command.
func initCommand(opts InitOptions, global bool) error {
	if !opts.NonInteractive && !ui.IsTerminal(os.Stdin) {
		opts.NonInteractive = true
	}
	return Init(opts, global)
}
