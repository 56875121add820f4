package doctor

import (
	"fmt"
	"os"
	"path/filepath"
)

// LogFileCheck verifies the diagnostic log file can be written.
type LogFileCheck struct {
	Path string // expanded log.file; empty means logging is off
}

func (c *LogFileCheck) Name() string     { return "log_file" }
func (c *LogFileCheck) Category() string { return CategoryLog }

func (c *LogFileCheck) Run() CheckResult {
	if c.Path == "" {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "Logging off (set log.file to enable)",
		}
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Can't create log directory: %v", err),
			Suggestion: "Point log.file at a writable directory",
		}
	}

	f, err := os.OpenFile(c.Path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Can't write log file: %v", err),
			Suggestion: "Point log.file at a writable directory",
		}
	}
	_ = f.Close()

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Log file: %s", c.Path),
	}
}
