// Package sensor turns the text lines printed by the multi-sensor firmware
// into field updates.
//
// Classification is an ordered list of mutually exclusive rules. Each rule
// checks for its trigger keywords first and only then runs its extraction
// pattern. The first rule whose triggers match decides the outcome, even if
// its pattern then fails: a malformed line is skipped rather than handed to
// a later rule.
package sensor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/logger"
)

var (
	lightPattern      = regexp.MustCompile(`Light:\s+([\d.]+)\s+lux`)
	// The firmware double-encodes the degree sign on some builds ("Â°C").
	tempPattern       = regexp.MustCompile(`Temp:\s+([\d.]+)\s+\S*°C`)
	humidityPattern   = regexp.MustCompile(`Humid:\s+([\d.]+)\s+%`)
	channelPattern    = regexp.MustCompile(`Channel:\s+(\d+)`)
	shortAddrPattern  = regexp.MustCompile(`Short Addr:\s+(0x[0-9A-Fa-f]+)`)
	panIDPattern      = regexp.MustCompile(`PAN ID:\s+([\da-fA-F:]+)`)
	reportModePattern = regexp.MustCompile(`Report Mode:\s+(.+)$`)
)

// Rule classifies a line by trigger keywords and extracts one field update.
type Rule struct {
	Name  string
	Field FieldID

	// All must be present in the line.
	All []string
	// If non-empty, at least one must be present as well.
	Any []string

	extract func(line string) (Update, error)
}

// Triggered reports whether the line carries this rule's keywords.
func (r Rule) Triggered(line string) bool {
	for _, s := range r.All {
		if !strings.Contains(line, s) {
			return false
		}
	}
	if len(r.Any) == 0 {
		return true
	}
	for _, s := range r.Any {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

// Extract runs the rule's pattern against a triggered line.
func (r Rule) Extract(line string) (Update, error) {
	return r.extract(line)
}

// submatch returns the first capture group of re in line.
func submatch(re *regexp.Regexp, line string) (string, error) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return "", fmt.Errorf("no match for %s", re.String())
	}
	return m[1], nil
}

// textRule copies the captured text into the field, optionally with a unit suffix.
func textRule(name string, field FieldID, re *regexp.Regexp, suffix string, all []string) Rule {
	return Rule{
		Name:  name,
		Field: field,
		All:   all,
		extract: func(line string) (Update, error) {
			raw, err := submatch(re, line)
			if err != nil {
				return Update{}, err
			}
			u := Update{Field: field, Value: raw + suffix}
			if n, err := strconv.ParseFloat(raw, 64); err == nil {
				u.Number = n
				u.HasNumber = true
			}
			return u, nil
		},
	}
}

// temperatureRule renders Celsius and Fahrenheit, both to one decimal.
func temperatureRule(name string, field FieldID, sensorName string) Rule {
	return Rule{
		Name:  name,
		Field: field,
		All:   []string{sensorName, "Temp:"},
		extract: func(line string) (Update, error) {
			raw, err := submatch(tempPattern, line)
			if err != nil {
				return Update{}, err
			}
			c, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return Update{}, fmt.Errorf("invalid temperature %q: %w", raw, err)
			}
			return Update{
				Field:     field,
				Value:     FormatTemperature(c),
				Number:    c,
				HasNumber: true,
			}, nil
		},
	}
}

// FormatTemperature renders a Celsius reading as "21.4 °C (70.5 °F)".
func FormatTemperature(c float64) string {
	return fmt.Sprintf("%.1f °C (%.1f °F)", c, CelsiusToFahrenheit(c))
}

// SensorRules returns the rules for the four environmental readings.
func SensorRules() []Rule {
	return []Rule{
		textRule("bh1750-light", FieldLight, lightPattern, " lux", []string{"BH1750", "Light:"}),
		temperatureRule("ds18b20-temp", FieldOutdoorTemp, "DS18B20"),
		temperatureRule("dht11-temp", FieldIndoorTemp, "DHT11"),
		textRule("dht11-humidity", FieldHumidity, humidityPattern, " %", []string{"DHT11", "Humid:"}),
	}
}

// NetworkRules returns the rules for the Zigbee status block.
func NetworkRules() []Rule {
	return []Rule{
		{
			Name:  "zigbee-connected",
			Field: FieldNetworkConnected,
			All:   []string{"Connected:"},
			Any:   []string{"YES", "NO"},
			extract: func(line string) (Update, error) {
				if strings.Contains(line, "YES") {
					return Update{Field: FieldNetworkConnected, Value: "✓ YES", Number: 1, HasNumber: true}, nil
				}
				return Update{Field: FieldNetworkConnected, Value: "✗ NO (searching...)", HasNumber: true}, nil
			},
		},
		textRule("zigbee-channel", FieldChannel, channelPattern, "", []string{"Channel:"}),
		{
			Name:  "zigbee-short-addr",
			Field: FieldShortAddr,
			All:   []string{"Short Addr:"},
			extract: func(line string) (Update, error) {
				raw, err := submatch(shortAddrPattern, line)
				if err != nil {
					return Update{}, err
				}
				return Update{Field: FieldShortAddr, Value: raw}, nil
			},
		},
		{
			Name:  "zigbee-pan-id",
			Field: FieldPanID,
			All:   []string{"PAN ID:"},
			extract: func(line string) (Update, error) {
				raw, err := submatch(panIDPattern, line)
				if err != nil {
					return Update{}, err
				}
				return Update{Field: FieldPanID, Value: raw}, nil
			},
		},
		{
			Name:  "zigbee-report-mode",
			Field: FieldReportMode,
			All:   []string{"Report Mode:"},
			extract: func(line string) (Update, error) {
				raw, err := submatch(reportModePattern, line)
				if err != nil {
					return Update{}, err
				}
				return Update{Field: FieldReportMode, Value: strings.TrimSpace(raw)}, nil
			},
		},
	}
}

// Options configures a Parser.
type Options struct {
	// Network enables the Zigbee diagnostics rules.
	Network bool
	Logger  logger.Logger
}

// Parser applies the rule table to lines.
type Parser struct {
	rules []Rule
	log   logger.Logger
}

// NewParser builds a parser with the sensor rules, followed by the network
// rules when opts.Network is set.
func NewParser(opts Options) *Parser {
	rules := SensorRules()
	if opts.Network {
		rules = append(rules, NetworkRules()...)
	}
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}
	return &Parser{rules: rules, log: log}
}

// Rules returns the parser's rules in evaluation order.
func (p *Parser) Rules() []Rule {
	out := make([]Rule, len(p.rules))
	copy(out, p.rules)
	return out
}

// CleanLine strips terminal colour codes and surrounding whitespace.
func CleanLine(line string) string {
	return strings.TrimSpace(ansi.Strip(line))
}

// Match classifies a line and returns the update it produces. It returns
// false for unrecognised lines and for lines whose first triggered rule
// fails to extract a value.
func (p *Parser) Match(line string) (Update, bool) {
	line = CleanLine(line)
	if line == "" {
		return Update{}, false
	}

	for _, rule := range p.rules {
		if !rule.Triggered(line) {
			continue
		}
		u, err := rule.Extract(line)
		if err != nil {
			skip := errors.WrapWithCode(err, errors.ErrParse, "Skipped malformed "+rule.Name+" line", "")
			p.log.Debug("%s: %q", skip.Short(), line)
			return Update{}, false
		}
		return u, true
	}
	return Update{}, false
}

// Parse applies the update produced by line, if any, to r.
// It never fails: unrecognised and malformed lines leave r unchanged.
func (p *Parser) Parse(line string, r *Readings) {
	if u, ok := p.Match(line); ok {
		*r = r.With(u)
	}
}
