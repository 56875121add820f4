package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/transport"
	"github.com/rileyhilliard/sensormon/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

type idlePort struct{}

func (idlePort) Read(b []byte) (int, error)           { return 0, nil }
func (idlePort) Close() error                         { return nil }
func (idlePort) SetReadTimeout(t time.Duration) error { return nil }

func openIdle(name string, mode *serial.Mode) (transport.SerialPort, error) {
	return idlePort{}, nil
}

func openBusy(name string, mode *serial.Mode) (transport.SerialPort, error) {
	return nil, &serial.PortError{}
}

var boardPorts = stubPortSource{
	ports: samplePorts,
	match: map[string]bool{"/dev/ttyACM0": true},
}

func TestDoctor_HealthyBoard(t *testing.T) {
	dir := isolate(t)
	ui.DisableColors()
	writeConfigFile(t, dir, "version: 1\n")

	var buf bytes.Buffer
	require.NoError(t, doctorCommand(&buf, false, boardPorts, openIdle))

	out := buf.String()
	assert.Contains(t, out, "CONFIG")
	assert.Contains(t, out, "SERIAL")
	assert.Contains(t, out, "LOG")
	assert.Contains(t, out, "Board detected on /dev/ttyACM0")
	assert.Contains(t, out, "Opened /dev/ttyACM0 at 115200 baud")
	assert.Contains(t, out, "Everything looks good")
}

func TestDoctor_NoConfigIsOnlyAWarning(t *testing.T) {
	isolate(t)
	ui.DisableColors()

	var buf bytes.Buffer
	require.NoError(t, doctorCommand(&buf, false, boardPorts, openIdle))
	assert.Contains(t, buf.String(), "No config file found, using defaults")
	assert.Contains(t, buf.String(), "1 issue found")
}

func TestDoctor_FailureReturnsError(t *testing.T) {
	isolate(t)
	ui.DisableColors()

	var buf bytes.Buffer
	err := doctorCommand(&buf, false, boardPorts, openBusy)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCheck))
	assert.Contains(t, err.Error(), "1 check failed")
	assert.Contains(t, buf.String(), "Couldn't open /dev/ttyACM0")
}

func TestDoctor_JSON(t *testing.T) {
	dir := isolate(t)
	writeConfigFile(t, dir, "version: 1\nserial:\n  port: /dev/ttyS9\n")

	var buf bytes.Buffer
	err := doctorCommand(&buf, true, boardPorts, openIdle)
	require.Error(t, err, "configured port is missing")

	var decoded struct {
		Success bool         `json:"success"`
		Data    DoctorOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.True(t, decoded.Success)
	require.Len(t, decoded.Data.Categories, 3)
	assert.Equal(t, "CONFIG", decoded.Data.Categories[0].Name)
	assert.Equal(t, 1, decoded.Data.Summary.Fail)
	assert.False(t, decoded.Data.Summary.AllClear)

	serialResults := decoded.Data.Categories[1].Results
	require.Len(t, serialResults, 3)
	assert.Equal(t, "board_detected", serialResults[1].Name)
	assert.Equal(t, "Configured port /dev/ttyS9 not found", serialResults[1].Message)
}
