package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/doctor"
	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/lock"
	"github.com/rileyhilliard/sensormon/internal/transport"
	"github.com/rileyhilliard/sensormon/internal/ui"
	"github.com/rileyhilliard/sensormon/internal/util"
)

// DoctorOutput is the --json payload of `sensormon doctor`.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput is one category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput counts the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	AllClear bool `json:"all_clear"`
}

// collectChecks builds the diagnostic checks. A config that fails to load
// still gets serial checks against the defaults; the config checks report
// the load error. A nil ports scans with the config's markers.
func collectChecks(cfgPath, lockDir string, ports doctor.PortLister, factory transport.PortFactory) []doctor.Check {
	cfg, _, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	if ports == nil {
		ports = transport.NewScanner(cfg.Serial.Markers, cfg.Serial.VendorIDs)
	}

	return []doctor.Check{
		&doctor.ConfigFileCheck{ConfigPath: cfgPath},
		&doctor.ConfigSchemaCheck{ConfigPath: cfgPath},
		&doctor.PortsFoundCheck{Ports: ports},
		&doctor.BoardDetectedCheck{Ports: ports, Port: cfg.Serial.Port},
		&doctor.PortAccessCheck{Ports: ports, Port: cfg.Serial.Port, Config: transportConfig(cfg), Factory: factory, LockDir: lockDir},
		&doctor.LogFileCheck{Path: cfg.Log.File},
	}
}

// doctorCommand runs the checks and reports them. It fails when any check
// fails so scripts can gate on the exit code.
func doctorCommand(w io.Writer, asJSON bool, ports doctor.PortLister, factory transport.PortFactory) error {
	checks := collectChecks(Config(), lock.DefaultDir(), ports, factory)
	// Serial checks open the port; run sequentially.
	results := doctor.RunAll(checks)

	if asJSON {
		if err := WriteJSONSuccess(w, buildDoctorOutput(results)); err != nil {
			return err
		}
	} else {
		writeDoctorText(w, results)
	}

	if doctor.HasFailures(results) {
		n := doctor.CountByStatus(results)[doctor.StatusFail]
		return errors.New(errors.ErrCheck,
			fmt.Sprintf("%d %s failed", n, util.Pluralize(n, "check", "checks")),
			"")
	}
	return nil
}

func buildDoctorOutput(results []doctor.CheckResult) DoctorOutput {
	grouped := doctor.GroupResults(results)
	out := DoctorOutput{Categories: make([]CategoryOutput, 0, len(doctor.Categories))}
	for _, cat := range doctor.Categories {
		if len(grouped[cat]) == 0 {
			continue
		}
		out.Categories = append(out.Categories, CategoryOutput{Name: cat, Results: grouped[cat]})
	}

	counts := doctor.CountByStatus(results)
	out.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		AllClear: !doctor.HasIssues(results),
	}
	return out
}

// writeDoctorText renders results grouped by category with a summary line.
func writeDoctorText(w io.Writer, results []doctor.CheckResult) {
	successStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
	warnStyle := lipgloss.NewStyle().Foreground(ui.ColorWarning)
	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	headerStyle := lipgloss.NewStyle().Bold(true)
	categoryStyle := headerStyle.Foreground(ui.ColorInfo)

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("sensormon diagnostic report"))
	fmt.Fprintln(w)

	grouped := doctor.GroupResults(results)
	for _, category := range doctor.Categories {
		if len(grouped[category]) == 0 {
			continue
		}
		fmt.Fprintln(w, categoryStyle.Render(category))
		for _, r := range grouped[category] {
			symbol, style := ui.SymbolSuccess, successStyle
			switch r.Status {
			case doctor.StatusWarn:
				symbol, style = ui.SymbolProgress, warnStyle
			case doctor.StatusFail:
				symbol, style = ui.SymbolFail, errorStyle
			}
			fmt.Fprintf(w, "  %s %s\n", style.Render(symbol), r.Message)
			if r.Suggestion != "" && r.Status != doctor.StatusPass {
				for _, line := range strings.Split(r.Suggestion, "\n") {
					fmt.Fprintf(w, "    %s\n", mutedStyle.Render(line))
				}
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("━", 40))
	if doctor.HasIssues(results) {
		fmt.Fprintf(w, "%s %s\n", errorStyle.Render(ui.SymbolFail), doctor.Summary(results))
	} else {
		fmt.Fprintf(w, "%s %s\n", successStyle.Render(ui.SymbolSuccess), doctor.Summary(results))
	}
}
