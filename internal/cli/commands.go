package cli

import (
	"os"

	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	portsJSON       bool
	portsUse        string
	configJSON      bool
	doctorJSON      bool
	initFlags       InitOptions
	initGlobal      bool
	monitorCmdFlags MonitorFlags
)

// monitorCmd starts the TUI dashboard
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live dashboard of the board's sensor readings",
	Long: `Open the serial port and show the latest readings as they stream in.

In auto mode (the default) sensormon looks for an Espressif or common
USB-serial adapter, opens it, and tries once to reconnect if the board
drops off. In retry mode it keeps reopening one fixed port until it
answers.

Keyboard shortcuts:
  c           Connect
  d           Disconnect
  p           Pick a port (auto mode)
  ?           Show help
  q / Ctrl+C  Quit

Examples:
  sensormon monitor
  sensormon monitor --port /dev/ttyACM0
  sensormon monitor --mode retry --port COM5 --retry-interval 5s
  sensormon monitor --pick --no-network`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return monitorCommand(monitorCmdFlags)
	},
}

// portsCmd lists serial ports
var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports and show which one auto mode would open",
	Long: `List the serial ports the OS reports. Ports that look like a sensor
board (Espressif, CP210x, CH340, FTDI) are marked with a filled dot.

Examples:
  sensormon ports
  sensormon ports --json
  sensormon ports --use /dev/ttyACM0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return portsCommand(portsJSON, portsUse)
	},
}

// initCmd creates a new .sensormon.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .sensormon.yaml configuration",
	Long: `Create a sensormon config file with guided prompts.

Examples:
  sensormon init
  sensormon init --port /dev/ttyACM0 --non-interactive
  sensormon init --global
  sensormon init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(initFlags, initGlobal)
	},
}

// configCmd shows the effective configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the configuration sensormon would run with, after defaults
and SENSORMON_* environment overrides.

Examples:
  sensormon config
  sensormon config --json
  sensormon config set serial.port /dev/ttyACM0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowCommand(cmd.OutOrStdout(), configJSON)
	},
}

// configSetCmd updates one key in the config file
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value in the config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return configSetCommand(cmd.OutOrStdout(), args[0], args[1])
	},
}

// doctorCmd diagnoses config and serial port problems
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the config, the board and the log file",
	Long: `Run diagnostic checks and report what would stop the dashboard from
working: an invalid config, no serial ports, no recognizable board, a port
that can't be opened (permissions or busy), or an unwritable log file.

Exits non-zero when any check fails.

Examples:
  sensormon doctor
  sensormon doctor --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.OutOrStdout(), doctorJSON, nil, nil)
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for sensormon.

Examples:
  # Bash
  sensormon completion bash > /etc/bash_completion.d/sensormon

  # Zsh
  sensormon completion zsh > "${fpath[1]}/_sensormon"

  # Fish
  sensormon completion fish > ~/.config/fish/completions/sensormon.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	// monitor command flags
	AddMonitorFlags(monitorCmd, &monitorCmdFlags)

	// ports command flags
	portsCmd.Flags().BoolVar(&portsJSON, "json", false, "output in JSON format")
	portsCmd.Flags().StringVar(&portsUse, "use", "", "save this port as serial.port in the config file")

	// init command flags
	initCmd.Flags().StringVar(&initFlags.Port, "port", "", "serial port to save (empty: auto-detect)")
	initCmd.Flags().StringVar(&initFlags.Mode, "mode", "", "connection mode: auto or retry")
	initCmd.Flags().BoolVar(&initFlags.NoNetwork, "no-network", false, "hide the Zigbee network panel")
	initCmd.Flags().BoolVarP(&initFlags.Overwrite, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initFlags.NonInteractive, "non-interactive", false, "skip prompts and use flags and defaults")
	initCmd.Flags().BoolVar(&initGlobal, "global", false, "write ~/.config/sensormon/config.yaml instead")

	// config command flags
	configCmd.Flags().BoolVar(&configJSON, "json", false, "output in JSON format")
	configCmd.AddCommand(configSetCmd)

	// doctor command flags
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")

	// Register all commands
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(completionCmd)
}
