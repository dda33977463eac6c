// pkg/pipeline/run.go
package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/retaildw/pipeline/pkg/model"
	"github.com/retaildw/pipeline/pkg/monitor"
	"github.com/retaildw/pipeline/pkg/quality"
	"github.com/retaildw/pipeline/pkg/transform"
)

// StageTiming records the wall-clock duration of one pipeline stage.
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// DimensionCounts holds the loaded row count of each dimension table.
type DimensionCounts struct {
	Time     int
	Country  int
	Product  int
	Customer int
}

// RunResult captures everything a single pipeline run produced.
type RunResult struct {
	RunID     string
	Success   bool
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Stages    []StageTiming

	ExtractedRows int
	CleanStats    model.CleanStats
	StagedRows    int
	Dimensions    DimensionCounts
	FactStats     transform.FactBuildStats
	FactRows      int

	QualityReport *quality.Report
	MonitorReport *monitor.Report
	DataSummary   *quality.DataSummary
	TopMetrics    *quality.TopMetrics
	ReportPath    string

	Warnings []string
}

// NewRunResult initializes a run result with a fresh run ID.
func NewRunResult() *RunResult {
	return &RunResult{
		RunID:     uuid.New().String(),
		StartTime: time.Now(),
	}
}

// Complete marks the run as finished and calculates its duration.
func (r *RunResult) Complete(success bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = success
}

// AddStage records a stage duration.
func (r *RunResult) AddStage(stage string, d time.Duration) {
	r.Stages = append(r.Stages, StageTiming{Stage: stage, Duration: d})
}

// AddWarning records a non-fatal condition observed during the run.
func (r *RunResult) AddWarning(warning string) {
	r.Warnings = append(r.Warnings, warning)
}

// TotalDimensionRows is the combined size of all dimension tables.
func (c DimensionCounts) TotalDimensionRows() int {
	return c.Time + c.Country + c.Product + c.Customer
}
