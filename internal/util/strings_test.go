package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// configKeys mirrors the keys `sensormon config set` accepts.
var configKeys = []string{
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

func TestJoinOrNone(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		want  string
	}{
		{
			name:  "no markers",
			items: nil,
			want:  "(none)",
		},
		{
			name:  "one vendor id",
			items: []string{"303a"},
			want:  "303a",
		},
		{
			name:  "several markers",
			items: []string{"Espressif", "CP210", "CH340"},
			want:  "Espressif, CP210, CH340",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinOrNone(tt.items))
		})
	}
}

func TestJoinOrDefault(t *testing.T) {
	assert.Equal(t, "no ports found", JoinOrDefault([]string{}, "no ports found"))
	assert.Equal(t, "/dev/ttyACM0, /dev/ttyUSB0",
		JoinOrDefault([]string{"/dev/ttyACM0", "/dev/ttyUSB0"}, "no ports found"))
}

func TestPluralize(t *testing.T) {
	tests := []struct {
		count            int
		singular, plural string
		want             string
	}{
		{0, "port", "ports", "ports"},
		{1, "port", "ports", "port"},
		{3, "port", "ports", "ports"},
		{1, "check", "checks", "check"},
		{5, "check", "checks", "checks"},
		{1, "issue", "issues", "issue"},
		{2, "issue", "issues", "issues"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Pluralize(tt.count, tt.singular, tt.plural))
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "log.file", 8},
		{"serial.port", "serial.port", 0},
		{"serial.prot", "serial.port", 2},
		{"baudrate", "baud_rate", 1},
		{"ttyACM0", "ttyUSB0", 3},
		{"Â°C", "°C", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"->"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, LevenshteinDistance(tt.a, tt.b))
		})
	}
}

func TestSuggestSimilar_ConfigKeys(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"serial.prot", []string{"serial.port"}},
		{"connect.mod", []string{"connect.mode"}},
		{"log.debg", []string{"log.debug"}},
		{"display.titel", []string{"display.title"}},
		{"SERIAL.PORT", []string{"serial.port"}},
		{"serial.baud", nil},
		{"baud", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SuggestSimilar(tt.input, configKeys, 1))
		})
	}
}

func TestSuggestSimilar_ClosestFirstAndLimit(t *testing.T) {
	ports := []string{"/dev/ttyUSB0", "/dev/ttyACM1", "/dev/ttyACM0"}

	assert.Equal(t, []string{"/dev/ttyACM0", "/dev/ttyACM1"}, SuggestSimilar("/dev/ttyACM0", ports, 3))
	assert.Equal(t, []string{"/dev/ttyACM1"}, SuggestSimilar("/dev/ttyACM", ports, 1))
	assert.Nil(t, SuggestSimilar("serial.port", nil, 1))
}
