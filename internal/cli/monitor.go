package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/lock"
	"github.com/rileyhilliard/sensormon/internal/logger"
	"github.com/rileyhilliard/sensormon/internal/monitor"
	"github.com/rileyhilliard/sensormon/internal/sensor"
	"github.com/rileyhilliard/sensormon/internal/transport"
	"github.com/rileyhilliard/sensormon/internal/ui"
)

// monitorFlags is shared by the root command and `sensormon monitor`.
var monitorFlags MonitorFlags

// loadMonitorConfig loads the config file (or defaults), applies flag
// overrides and validates the result.
func loadMonitorConfig(path string, flags MonitorFlags) (*config.Config, error) {
	cfg, _, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if err := flags.Apply(cfg); err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// transportConfig maps the config file's serial and connect sections.
func transportConfig(cfg *config.Config) transport.Config {
	return transport.Config{
		BaudRate:         cfg.Serial.BaudRate,
		ReadTimeout:      cfg.Serial.ReadTimeout,
		FailureThreshold: cfg.Connect.FailureThreshold,
		ErrorBackoff:     cfg.Connect.ErrorBackoff,
	}
}

// monitorOptions builds the dashboard options from a validated config.
func monitorOptions(cfg *config.Config, conn monitor.Connector, ports monitor.PortSource, log logger.Logger) (monitor.Options, error) {
	mode, err := monitor.ParseMode(cfg.Connect.Mode)
	if err != nil {
		return monitor.Options{}, err
	}
	return monitor.Options{
		Title:          cfg.Display.Title,
		Mode:           mode,
		Port:           cfg.Serial.Port,
		Network:        cfg.Display.Network,
		RetryInterval:  cfg.Connect.RetryInterval,
		ReconnectDelay: cfg.Connect.ReconnectDelay,
		Connector:      conn,
		Ports:          ports,
		Parser:         sensor.NewParser(sensor.Options{Network: cfg.Display.Network, Logger: logger.WithPrefix(log, "parser")}),
		Logger:         logger.WithPrefix(log, "monitor"),
	}, nil
}

// pickPort asks the user for a port before the dashboard starts.
func pickPort(scanner transport.Scanner) (string, error) {
	list, err := scanner.List()
	if err != nil {
		return "", err
	}
	sorted := transport.SortedByName(list)
	choices := make([]ui.PortChoice, len(sorted))
	for i, p := range sorted {
		choices[i] = ui.PortChoice{
			Name:        p.Name,
			Description: p.Product,
			USBID:       monitor.USBID(p),
			Match:       scanner.Matches(p),
		}
	}
	choice, err := ui.PickPort(choices)
	if err != nil {
		return "", err
	}
	if choice == nil {
		return "", nil
	}
	return choice.Name, nil
}

// monitorCommand starts the dashboard.
func monitorCommand(flags MonitorFlags) error {
	if !ui.IsTerminal(os.Stdout) || !ui.IsTerminal(os.Stdin) {
		return errors.New(errors.ErrConfig,
			"The dashboard needs an interactive terminal",
			"Run sensormon directly in a terminal, or use 'sensormon ports --json' for scripting.")
	}

	cfg, err := loadMonitorConfig(Config(), flags)
	if err != nil {
		return err
	}

	closeLog := setupLogging(cfg)
	defer closeLog()
	log := logger.Default()

	scanner := transport.NewScanner(cfg.Serial.Markers, cfg.Serial.VendorIDs)

	if flags.Pick {
		port, err := pickPort(scanner)
		if err != nil {
			return err
		}
		if port == "" {
			fmt.Println("Cancelled.")
			return nil
		}
		cfg.Serial.Port = port
	}

	manager := transport.NewManager(transportConfig(cfg),
		transport.WithLogger(logger.WithPrefix(log, "transport")),
		transport.WithPortLock(lock.DefaultDir(), lock.DefaultStale))
	// The model disconnects on quit; this covers a program that exits early.
	defer func() { _ = manager.Disconnect() }()

	opts, err := monitorOptions(cfg, manager, scanner, log)
	if err != nil {
		return err
	}

	log.Info("starting dashboard (mode %s, port %q)", cfg.Connect.Mode, cfg.Serial.Port)
	p := tea.NewProgram(monitor.NewModel(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"The dashboard stopped unexpectedly",
			"Check the log file for details.")
	}
	return nil
}
