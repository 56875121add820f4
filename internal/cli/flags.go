package cli

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/spf13/cobra"
)

// MonitorFlags holds the dashboard flags shared by the root and monitor commands.
type MonitorFlags struct {
	Port          string
	Mode          string
	RetryInterval string
	NoNetwork     bool
	Pick          bool
}

// AddMonitorFlags registers --port, --mode, --retry-interval, --no-network and --pick on a command.
func AddMonitorFlags(cmd *cobra.Command, flags *MonitorFlags) {
	cmd.Flags().StringVarP(&flags.Port, "port", "p", "", "serial port to open (e.g., /dev/ttyACM0, COM3)")
	cmd.Flags().StringVar(&flags.Mode, "mode", "", "connection mode: auto or retry")
	cmd.Flags().StringVar(&flags.RetryInterval, "retry-interval", "", "delay between attempts in retry mode (e.g., 2s)")
	cmd.Flags().BoolVar(&flags.NoNetwork, "no-network", false, "hide the Zigbee network panel")
	cmd.Flags().BoolVar(&flags.Pick, "pick", false, "choose the port from a list before starting")
}

// ParseInterval parses a duration flag. Returns zero duration if the flag is empty.
func ParseInterval(name, flag string) (time.Duration, error) {
	if flag == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid %s", flag, name),
			"Try something like 2s, 500ms, or 1m.")
	}
	if d <= 0 {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("%s must be positive, got %s", name, flag),
			"Try something like 2s, 500ms, or 1m.")
	}
	return d, nil
}

// Apply overrides cfg with any flags that were set.
func (f MonitorFlags) Apply(cfg *config.Config) error {
	if f.Port != "" {
		cfg.Serial.Port = f.Port
	}
	if f.Mode != "" {
		cfg.Connect.Mode = f.Mode
	}
	if f.NoNetwork {
		cfg.Display.Network = false
	}
	interval, err := ParseInterval("retry interval", f.RetryInterval)
	if err != nil {
		return err
	}
	if interval > 0 {
		cfg.Connect.RetryInterval = interval
	}
	return nil
}
