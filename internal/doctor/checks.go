// Package doctor runs the environment checks behind `sensormon doctor`.
package doctor

import (
	"fmt"

	"github.com/rileyhilliard/sensormon/internal/util"
)

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

// String returns a human-readable status string.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string      `json:"name"`
	Category   string      `json:"category"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Check categories, in report order.
const (
	CategoryConfig = "CONFIG"
	CategorySerial = "SERIAL"
	CategoryLog    = "LOG"
)

// Categories lists the categories in the order a report shows them.
var Categories = []string{CategoryConfig, CategorySerial, CategoryLog}

// MarshalJSON encodes the status by name.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON accepts the names MarshalJSON writes.
func (s *CheckStatus) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"pass"`:
		*s = StatusPass
	case `"warn"`:
		*s = StatusWarn
	case `"fail"`:
		*s = StatusFail
	default:
		return fmt.Errorf("unknown check status %s", data)
	}
	return nil
}

// Check defines the interface for diagnostic checks.
type Check interface {
	// Name returns the check's identifier.
	Name() string

	// Category returns the check's category (e.g., "CONFIG", "SERIAL").
	Category() string

	// Run executes the check and returns the result.
	Run() CheckResult
}

// RunAll executes all checks in order and returns the results.
func RunAll(checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	for i, check := range checks {
		results[i] = runCheck(check)
	}
	return results
}

// runCheck runs c and stamps its category on the result.
func runCheck(c Check) CheckResult {
	r := c.Run()
	r.Category = c.Category()
	if r.Name == "" {
		r.Name = c.Name()
	}
	return r
}

// GroupResults organizes results by category, keeping check order.
func GroupResults(results []CheckResult) map[string][]CheckResult {
	grouped := make(map[string][]CheckResult)
	for _, r := range results {
		grouped[r.Category] = append(grouped[r.Category], r)
	}
	return grouped
}

// CountByStatus counts results by status.
func CountByStatus(results []CheckResult) map[CheckStatus]int {
	counts := make(map[CheckStatus]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

// HasFailures returns true if any result has a fail status.
func HasFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

// HasIssues returns true if any result has a fail or warn status.
func HasIssues(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail || r.Status == StatusWarn {
			return true
		}
	}
	return false
}

// Summary returns a summary string of the check results.
func Summary(results []CheckResult) string {
	counts := CountByStatus(results)
	warn := counts[StatusWarn]
	fail := counts[StatusFail]

	if fail == 0 && warn == 0 {
		return "Everything looks good"
	}

	total := warn + fail
	return fmt.Sprintf("%d %s found", total, util.Pluralize(total, "issue", "issues"))
}
