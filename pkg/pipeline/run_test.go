package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunResult(t *testing.T) {
	r := NewRunResult()
	require.NotEmpty(t, r.RunID)
	assert.False(t, r.StartTime.IsZero())
	assert.False(t, r.Success)

	other := NewRunResult()
	assert.NotEqual(t, r.RunID, other.RunID)
}

func TestRunResultComplete(t *testing.T) {
	r := NewRunResult()
	time.Sleep(time.Millisecond)
	r.Complete(true)

	assert.True(t, r.Success)
	assert.False(t, r.EndTime.IsZero())
	assert.Greater(t, r.Duration, time.Duration(0))
	assert.Equal(t, r.EndTime.Sub(r.StartTime), r.Duration)
}

func TestRunResultStagesAndWarnings(t *testing.T) {
	r := NewRunResult()
	r.AddStage("extract", 2*time.Second)
	r.AddStage("clean", time.Second)
	r.AddWarning("source file older than 48h")

	require.Len(t, r.Stages, 2)
	assert.Equal(t, "extract", r.Stages[0].Stage)
	assert.Equal(t, 2*time.Second, r.Stages[0].Duration)
	assert.Equal(t, []string{"source file older than 48h"}, r.Warnings)
}

func TestDimensionCountsTotal(t *testing.T) {
	c := DimensionCounts{Time: 305, Country: 38, Product: 4070, Customer: 4372}
	assert.Equal(t, 8785, c.TotalDimensionRows())
}
