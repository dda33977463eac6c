// pkg/model/errors.go
package model

import (
	"fmt"
	"strings"
)

// SchemaError reports required staging columns that are structurally absent
// from the source. It is fatal and aborts extraction before any write.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// LoadError reports a truncate or batch-write failure during a dimension,
// staging, or fact load. It is fatal to the current run; partial warehouse
// state may result and is surfaced, not hidden.
type LoadError struct {
	Table string
	Batch int // 0 for truncate failures
	Err   error
}

func (e *LoadError) Error() string {
	if e.Batch == 0 {
		return fmt.Sprintf("load %s: truncate failed: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("load %s: batch %d failed: %v", e.Table, e.Batch, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// CheckExecutionError reports a quality check whose query failed. It is
// recorded on the check result and never aborts the remaining checks.
type CheckExecutionError struct {
	Check string
	Err   error
}

func (e *CheckExecutionError) Error() string {
	return fmt.Sprintf("check %s: execution failed: %v", e.Check, e.Err)
}

func (e *CheckExecutionError) Unwrap() error { return e.Err }

// ValidationFailure signals that the aggregate quality status of a run is
// not PASS. It carries the failed check names so the caller can diagnose
// without re-running.
type ValidationFailure struct {
	Status       string
	FailedChecks []string
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("quality validation %s: failed checks: %s",
		e.Status, strings.Join(e.FailedChecks, ", "))
}
