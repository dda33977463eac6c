// pkg/quality/engine.go
package quality

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/retaildw/pipeline/pkg/model"
)

// Summary aggregates check outcomes for one run.
type Summary struct {
	TotalChecks      int
	PassedChecks     int
	FailedChecks     int
	CriticalFailures int
}

// Report is the full outcome of a quality run: every check result grouped
// by category plus the aggregate verdict.
type Report struct {
	ExecutionTime time.Time
	Categories    map[Category][]CheckResult
	Summary       Summary
	OverallStatus OverallStatus
}

// FailedCheckNames returns the names of all failed checks in execution order.
func (r *Report) FailedCheckNames() []string {
	var names []string
	for _, def := range checkDefs {
		for _, res := range r.Categories[def.category] {
			if res.Name == def.name && !res.Passed {
				names = append(names, res.Name)
			}
		}
	}
	return names
}

// Engine executes the fixed check set against the warehouse.
type Engine struct {
	db     *sqlx.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewEngine creates a quality engine. db and logger must be non-nil.
func NewEngine(db *sqlx.DB, logger *zap.Logger) (*Engine, error) {
	if db == nil {
		return nil, errors.New("database handle cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Engine{db: db, logger: logger, now: time.Now}, nil
}

// WithNow overrides the engine clock. Test hook.
func (e *Engine) WithNow(now func() time.Time) *Engine {
	e.now = now
	return e
}

// RunAll executes every check in order and aggregates the results. A check
// whose query fails is recorded as failed with its error message rather
// than aborting the run, so one broken query never hides the other checks.
func (e *Engine) RunAll(ctx context.Context) (*Report, error) {
	report := &Report{
		ExecutionTime: e.now(),
		Categories:    make(map[Category][]CheckResult, 3),
	}

	for _, def := range checkDefs {
		result := CheckResult{
			Name:        def.name,
			Description: def.description,
			Category:    def.category,
			Status:      StatusPending,
			Critical:    def.critical,
			Threshold:   def.threshold,
		}

		metrics, passed, err := def.run(ctx, e, def.threshold)
		result.Status = StatusEvaluated
		result.Timestamp = e.now()
		if err != nil {
			checkErr := &model.CheckExecutionError{Check: def.name, Err: err}
			result.Error = checkErr.Error()
			result.Passed = false
			e.logger.Error("quality check errored",
				zap.String("check", def.name),
				zap.Error(checkErr))
		} else {
			result.Metrics = metrics
			result.Passed = passed
		}

		report.Categories[def.category] = append(report.Categories[def.category], result)
		report.Summary.TotalChecks++
		if result.Passed {
			report.Summary.PassedChecks++
		} else {
			report.Summary.FailedChecks++
			if result.Critical {
				report.Summary.CriticalFailures++
			}
		}

		e.logger.Info("quality check evaluated",
			zap.String("check", def.name),
			zap.String("category", string(def.category)),
			zap.Bool("passed", result.Passed),
			zap.Bool("critical", result.Critical))
	}

	report.OverallStatus = overallStatus(report.Summary)
	e.logger.Info("quality run complete",
		zap.Int("total_checks", report.Summary.TotalChecks),
		zap.Int("passed", report.Summary.PassedChecks),
		zap.Int("failed", report.Summary.FailedChecks),
		zap.Int("critical_failures", report.Summary.CriticalFailures),
		zap.String("overall_status", string(report.OverallStatus)))

	return report, nil
}

// overallStatus derives the run verdict: any critical failure is a
// CRITICAL_FAILURE, any other failure a WARNING, otherwise PASS.
func overallStatus(s Summary) OverallStatus {
	switch {
	case s.CriticalFailures > 0:
		return StatusCriticalFailure
	case s.FailedChecks > 0:
		return StatusWarning
	default:
		return StatusPass
	}
}

// QualityScore is the share of passed checks on a 0-100 scale.
func (r *Report) QualityScore() float64 {
	if r.Summary.TotalChecks == 0 {
		return 0
	}
	return float64(r.Summary.PassedChecks) / float64(r.Summary.TotalChecks) * 100
}

// Validate returns a ValidationFailure unless the report passed cleanly.
func (r *Report) Validate() error {
	if r.OverallStatus == StatusPass {
		return nil
	}
	return &model.ValidationFailure{
		Status:       string(r.OverallStatus),
		FailedChecks: r.FailedCheckNames(),
	}
}

// String renders a one-line run summary for log and console output.
func (s Summary) String() string {
	return fmt.Sprintf("%d/%d checks passed (%d critical failures)",
		s.PassedChecks, s.TotalChecks, s.CriticalFailures)
}
