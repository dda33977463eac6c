package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaErrorMessage(t *testing.T) {
	err := &SchemaError{Missing: []string{"InvoiceNo", "CustomerID"}}
	assert.Equal(t, "missing required columns: InvoiceNo, CustomerID", err.Error())
}

func TestLoadErrorMessages(t *testing.T) {
	cause := errors.New("connection reset")

	truncateErr := &LoadError{Table: "dim_time", Err: cause}
	assert.Contains(t, truncateErr.Error(), "truncate failed")
	assert.ErrorIs(t, truncateErr, cause)

	batchErr := &LoadError{Table: "fact_sales", Batch: 3, Err: cause}
	assert.Contains(t, batchErr.Error(), "batch 3 failed")
	assert.ErrorIs(t, batchErr, cause)
}

func TestCheckExecutionErrorUnwrap(t *testing.T) {
	cause := errors.New("relation does not exist")
	err := &CheckExecutionError{Check: "row_count_validation", Err: cause}

	assert.Contains(t, err.Error(), "row_count_validation")
	assert.ErrorIs(t, err, cause)
}

func TestValidationFailureMessage(t *testing.T) {
	err := &ValidationFailure{
		Status:       "CRITICAL_FAILURE",
		FailedChecks: []string{"null_critical_fields", "row_count_validation"},
	}
	assert.Contains(t, err.Error(), "CRITICAL_FAILURE")
	assert.Contains(t, err.Error(), "null_critical_fields, row_count_validation")
}
