// Package doctor inspects a target configuration file and reports whether
// mcpmerge can safely update it.
package doctor

import (
	"context"
	"time"

	"github.com/thoreinstein/mcpmerge/internal/logging"
)

// Check is the interface that diagnostic checks must implement.
type Check interface {
	// Name returns the unique identifier for this check.
	Name() string

	// Category returns the grouping for this check.
	Category() string

	// Run executes the diagnostic check and returns its result.
	Run() *CheckResult
}

// Runner executes diagnostic checks and aggregates their results.
type Runner struct {
	checks []Check
}

// NewRunner creates a new diagnostic runner.
func NewRunner() *Runner {
	return &Runner{
		checks: make([]Check, 0),
	}
}

// AddCheck registers a diagnostic check with the runner.
func (r *Runner) AddCheck(c Check) {
	r.checks = append(r.checks, c)
}

// Run executes the registered checks in order and returns a report.
// Checks are fast and read-only, so cancellation is only observed between
// them; a cancelled run returns the results gathered so far with
// Incomplete set.
func (r *Runner) Run(ctx context.Context) *DoctorReport {
	logger := logging.FromContext(ctx)
	report := &DoctorReport{
		Timestamp: time.Now().UTC(),
		Results:   make([]*CheckResult, 0, len(r.checks)),
	}

	for _, check := range r.checks {
		if ctx.Err() != nil {
			report.Incomplete = true
			logger.Debug("doctor run cancelled", "remaining", len(r.checks)-len(report.Results))
			break
		}

		result := check.Run()
		if result.Name == "" {
			result.Name = check.Name()
		}
		if result.Category == "" {
			result.Category = check.Category()
		}
		logger.Debug("check finished", "check", result.Name, "status", result.Status.String())

		report.Results = append(report.Results, result)
		report.Summary.add(result.Status)
	}

	return report
}

// DoctorReport aggregates all check results with timing and summary.
type DoctorReport struct {
	// Target is the configuration file that was inspected.
	Target string `json:"target,omitempty"`

	// Timestamp is when the diagnostic run started.
	Timestamp time.Time `json:"timestamp"`

	// Results contains the outcome of each check.
	Results []*CheckResult `json:"results"`

	// Summary contains counts by severity level.
	Summary Summary `json:"summary"`

	// Incomplete is set when the run was cancelled before every check ran.
	Incomplete bool `json:"incomplete,omitempty"`
}

// HasErrors returns true if any check has SeverityError.
func (r *DoctorReport) HasErrors() bool {
	return r.Summary.Errors > 0
}

// HasWarnings returns true if any check has SeverityWarning.
func (r *DoctorReport) HasWarnings() bool {
	return r.Summary.Warnings > 0
}
