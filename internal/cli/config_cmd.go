package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/ui"
	"github.com/rileyhilliard/sensormon/internal/util"
)

// ConfigOutput is the --json payload of `sensormon config`.
type ConfigOutput struct {
	Path   string         `json:"path,omitempty"`
	Config *config.Config `json:"config"`
}

// settableKeys are the keys `sensormon config set` accepts.
var settableKeys = []string{
	"serial.port",
	"serial.baud_rate",
	"serial.read_timeout",
	"connect.mode",
	"connect.retry_interval",
	"connect.reconnect_delay",
	"connect.failure_threshold",
	"connect.error_backoff",
	"display.network",
	"display.title",
	"log.file",
	"log.debug",
	"log.max_size_mb",
}

// configShowCommand prints the effective config and where it came from.
func configShowCommand(w io.Writer, asJSON bool) error {
	cfg, path, err := config.LoadOrDefault(Config())
	if err != nil {
		if asJSON {
			_ = WriteJSONFromError(w, err)
		}
		return err
	}
	if err := config.Validate(cfg); err != nil {
		if asJSON {
			_ = WriteJSONFromError(w, err)
		}
		return err
	}

	if asJSON {
		return WriteJSONSuccess(w, ConfigOutput{Path: path, Config: cfg})
	}
	writeConfigText(w, path, cfg)
	return nil
}

// writeConfigText renders the config as aligned key/value rows.
func writeConfigText(w io.Writer, path string, cfg *config.Config) {
	muted := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	header := lipgloss.NewStyle().Foreground(ui.ColorSecondary).Bold(true)

	source := path
	if source == "" {
		source = "built-in defaults"
	}
	fmt.Fprintln(w, header.Render("Config: ")+source)
	fmt.Fprintln(w)

	port := cfg.Serial.Port
	if port == "" {
		port = muted.Render("(auto-detect)")
	}
	logFile := cfg.Log.File
	if logFile == "" {
		logFile = muted.Render("(off)")
	}

	rows := [][]string{
		{"serial.port", port},
		{"serial.baud_rate", fmt.Sprint(cfg.Serial.BaudRate)},
		{"serial.read_timeout", cfg.Serial.ReadTimeout.String()},
		{"serial.markers", util.JoinOrNone(cfg.Serial.Markers)},
		{"serial.vendor_ids", util.JoinOrNone(cfg.Serial.VendorIDs)},
		{"connect.mode", cfg.Connect.Mode},
		{"connect.retry_interval", cfg.Connect.RetryInterval.String()},
		{"connect.reconnect_delay", cfg.Connect.ReconnectDelay.String()},
		{"connect.failure_threshold", fmt.Sprint(cfg.Connect.FailureThreshold)},
		{"connect.error_backoff", cfg.Connect.ErrorBackoff.String()},
		{"display.network", fmt.Sprint(cfg.Display.Network)},
		{"display.title", cfg.Display.Title},
		{"log.file", logFile},
		{"log.debug", fmt.Sprint(cfg.Log.Debug)},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %-26s %s\n", row[0], row[1])
	}
}

// restoreFile writes back the original config; replaced in tests.
var restoreFile = os.WriteFile

// configSetCommand writes one key to the config file and re-validates it.
func configSetCommand(w io.Writer, key, value string) error {
	if !isSettable(key) {
		suggestion := "Settable keys: " + strings.Join(settableKeys, ", ")
		if similar := util.SuggestSimilar(key, settableKeys, 1); len(similar) > 0 {
			suggestion = fmt.Sprintf("Did you mean '%s'?", similar[0])
		}
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' isn't a config key sensormon can set", key),
			suggestion)
	}

	path, err := config.Find(Config())
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New(errors.ErrConfig,
			"No config file found",
			"Run 'sensormon init' to create one first.")
	}

	original, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Can't read "+path, "Check file permissions")
	}
	if err := config.SetValue(path, key, value); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Can't update "+path, "")
	}

	cfg, err := config.Load(path)
	if err == nil {
		err = config.Validate(cfg)
	}
	if err != nil {
		// Leave the file as it was.
		if restoreErr := restoreFile(path, original, 0644); restoreErr != nil {
			return errors.WrapWithCode(restoreErr, errors.ErrConfig,
				fmt.Sprintf("Can't restore %s after rejecting %s=%s", path, key, value),
				fmt.Sprintf("The file still holds the rejected value (%s). Fix it by hand.", errors.ShortMessage(err)))
		}
		return err
	}

	fmt.Fprintf(w, "%s Set %s to %s in %s\n", ui.SymbolSuccess, key, value, path)
	return nil
}

func isSettable(key string) bool {
	for _, k := range settableKeys {
		if k == key {
			return true
		}
	}
	return false
}
