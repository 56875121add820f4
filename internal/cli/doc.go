// Package cli implements the sensormon command-line interface.
//
// The package is organized around Cobra commands, each delegating to a
// small function that loads config and hands off to the internal packages:
//
//   - Command definitions (cobra.Command instances in commands.go)
//   - Command implementations (monitorCommand, portsCommand, Init, ...)
//   - The work itself (transport, monitor, config)
//
// # Command Structure
//
// The root command is "sensormon". Without a subcommand it starts the
// dashboard, exactly like "sensormon monitor":
//
//	sensormon [monitor]       - Live sensor dashboard
//	sensormon ports           - List serial ports (--json, --use)
//	sensormon init            - Create .sensormon.yaml
//	sensormon config [set]    - Show or edit the effective config
//	sensormon doctor          - Diagnose config and serial port problems
//	sensormon version         - Build information
//	sensormon completion      - Shell completion scripts
//
// # Flag Handling
//
// Global flags (--config, --no-color, --verbose) are defined on the root
// command and available to all subcommands. The dashboard flags (--port,
// --mode, --retry-interval, --no-network, --pick) are registered on both
// the root and monitor commands through AddMonitorFlags, and override the
// config file through MonitorFlags.Apply.
//
// # Logging
//
// The dashboard owns the terminal, so diagnostics go to the rotating file
// named by log.file. setupLogging installs it as the default logger for
// the lifetime of the command; without log.file nothing is logged.
package cli
