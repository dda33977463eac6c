package quality

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateNullCriticalFields(t *testing.T) {
	tests := []struct {
		name   string
		counts nullFieldCounts
		want   bool
	}{
		{"no nulls", nullFieldCounts{TotalRows: 1000}, true},
		{"at threshold", nullFieldCounts{TotalRows: 1000, NullCustomerID: 150}, true}, // 150/3000 = 0.05
		{"over threshold", nullFieldCounts{TotalRows: 1000, NullCustomerID: 151}, false},
		{"spread across fields", nullFieldCounts{TotalRows: 1000,
			NullCustomerID: 50, NullStockCode: 50, NullInvoiceDate: 50}, true},
		{"empty table fails", nullFieldCounts{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evaluateNullCriticalFields(tt.counts, 0.05))
		})
	}
}

func TestEvaluateDuplicateRecords(t *testing.T) {
	tests := []struct {
		name   string
		counts duplicateCounts
		want   bool
	}{
		{"no duplicates", duplicateCounts{TotalRecords: 1000, UniqueCombinations: 1000}, true},
		{"at threshold", duplicateCounts{TotalRecords: 1000, UniqueCombinations: 990}, true},
		{"over threshold", duplicateCounts{TotalRecords: 1000, UniqueCombinations: 989}, false},
		{"empty table passes", duplicateCounts{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evaluateDuplicateRecords(tt.counts, 0.01))
		})
	}
}

func TestEvaluateDataRange(t *testing.T) {
	tests := []struct {
		name   string
		counts rangeCounts
		want   bool
	}{
		{"clean", rangeCounts{TotalRows: 1000}, true},
		{"at threshold", rangeCounts{TotalRows: 1000, InvalidPrice: 60, SuspiciousQuantity: 40}, true},
		{"over threshold", rangeCounts{TotalRows: 1000, InvalidPrice: 61, SuspiciousQuantity: 40}, false},
		{"zero quantity not counted", rangeCounts{TotalRows: 1000, ZeroQuantity: 500}, true},
		{"empty table fails", rangeCounts{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evaluateDataRange(tt.counts, 0.10))
		})
	}
}

func TestEvaluateReferentialIntegrity(t *testing.T) {
	assert.True(t, evaluateReferentialIntegrity(orphanCounts{}))
	assert.False(t, evaluateReferentialIntegrity(orphanCounts{OrphanedProducts: 1}))
	assert.False(t, evaluateReferentialIntegrity(orphanCounts{OrphanedCustomers: 1}))
	assert.False(t, evaluateReferentialIntegrity(orphanCounts{OrphanedTimes: 1}))
}

func TestEvaluateBusinessLogic(t *testing.T) {
	assert.True(t, evaluateBusinessLogic(businessCounts{TotalSales: 1000}))
	assert.False(t, evaluateBusinessLogic(businessCounts{TotalSales: 1000, CalculationErrors: 1}))
	assert.False(t, evaluateBusinessLogic(businessCounts{TotalSales: 1000, NegativeNonReturns: 1}))
}

func TestEvaluateFreshness(t *testing.T) {
	assert.True(t, evaluateFreshness(sql.NullFloat64{Float64: 1, Valid: true}, 48))
	assert.True(t, evaluateFreshness(sql.NullFloat64{Float64: 48, Valid: true}, 48))
	assert.False(t, evaluateFreshness(sql.NullFloat64{Float64: 48.5, Valid: true}, 48))
	// Never loaded: MAX(created_at) is NULL.
	assert.False(t, evaluateFreshness(sql.NullFloat64{}, 48))
}

func TestEvaluateRowCount(t *testing.T) {
	tests := []struct {
		name   string
		counts rowCounts
		want   bool
	}{
		{"full retention", rowCounts{RawCount: 1000, FactCount: 1000}, true},
		{"at threshold", rowCounts{RawCount: 1000, FactCount: 950}, true},
		{"below threshold", rowCounts{RawCount: 1000, FactCount: 940}, false},
		{"empty staging fails", rowCounts{FactCount: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evaluateRowCount(tt.counts, 0.95))
		})
	}
}

func TestOverallStatus(t *testing.T) {
	assert.Equal(t, StatusPass, overallStatus(Summary{TotalChecks: 7, PassedChecks: 7}))
	assert.Equal(t, StatusWarning,
		overallStatus(Summary{TotalChecks: 7, PassedChecks: 6, FailedChecks: 1}))
	assert.Equal(t, StatusCriticalFailure,
		overallStatus(Summary{TotalChecks: 7, PassedChecks: 5, FailedChecks: 2, CriticalFailures: 1}))
}

func TestCheckDefsCoverAllCategories(t *testing.T) {
	byCategory := make(map[Category]int)
	for _, def := range checkDefs {
		byCategory[def.category]++
	}
	assert.Equal(t, 3, byCategory[CategoryRawData])
	assert.Equal(t, 2, byCategory[CategoryWarehouse])
	assert.Equal(t, 2, byCategory[CategoryPerformance])
}
