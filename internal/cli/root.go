package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/logger"
	"github.com/rileyhilliard/sensormon/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile string
	noColor bool
	verbose bool
)

// rootCmd runs the dashboard when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:   "sensormon",
	Short: "Live terminal dashboard for an ESP32-C6 sensor board",
	Long: `sensormon reads the text lines a sensor board prints over USB serial
and shows the latest light, temperature, humidity and Zigbee readings.

Running sensormon with no subcommand starts the dashboard.

Examples:
  sensormon
  sensormon --port /dev/ttyACM0
  sensormon ports
  sensormon init`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return monitorCommand(monitorFlags)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./"+config.ConfigFileName+")")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug-level logging to the log file")

	// The bare command accepts the monitor flags too.
	AddMonitorFlags(rootCmd, &monitorFlags)
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if isUnknownCommandError(err) {
			fmt.Fprintf(os.Stderr, "%s %s\n", ui.SymbolFail, err.Error())
			if name := extractUnknownCommand(err); name != "" {
				fmt.Fprintf(os.Stderr, "\n  '%s' isn't a sensormon command. Run 'sensormon --help' to see what is.\n", name)
			}
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// isUnknownCommandError reports whether cobra rejected the command line itself.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag")
}

// extractUnknownCommand pulls the command name out of cobra's
// `unknown command "foo" for "sensormon"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}

// setupLogging installs the diagnostic file logger when log.file is set.
// The returned func closes the file; it is safe to call when logging is off.
func setupLogging(cfg *config.Config) func() {
	if cfg.Log.File == "" {
		logger.SetDefault(logger.Noop())
		return func() {}
	}

	fl := logger.NewFileLogger("sensormon", logger.FileOptions{
		Path:      cfg.Log.File,
		Debug:     cfg.Log.Debug || verbose,
		MaxSizeMB: cfg.Log.MaxSizeMB,
	})
	logger.SetDefault(fl)
	return func() {
		logger.SetDefault(logger.Noop())
		_ = fl.Close()
	}
}
