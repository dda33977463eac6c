package report

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/retaildw/pipeline/pkg/monitor"
	"github.com/retaildw/pipeline/pkg/quality"
)

func sampleMonitorReport() *monitor.Report {
	date := time.Date(2010, 12, 1, 0, 0, 0, 0, time.UTC)
	return &monitor.Report{
		GeneratedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		DateRange: monitor.DateRange{
			MinDate:   sql.NullTime{Time: date, Valid: true},
			MaxDate:   sql.NullTime{Time: date.AddDate(0, 0, 30), Valid: true},
			TotalDays: 31,
		},
		DailySales: []monitor.DailySales{
			{DateValue: date, DailySales: 1500.50, TotalTransactions: 120,
				UniqueCustomers: 45, OutlierType: monitor.OutlierNormal, QualityScore: 100},
			{DateValue: date.AddDate(0, 0, 1), DailySales: 99000, TotalTransactions: 800,
				UniqueCustomers: 300, IsOutlier: true, OutlierType: monitor.OutlierHigh,
				QualityScore: 85, ZScore: 3.2},
		},
		CustomerCompleteness: []monitor.CustomerCompleteness{
			{DateValue: date, TotalTransactions: 120, MissingCustomers: 6,
				MissingCustomerRate: 5.0, QualityStatus: monitor.StatusGood, QualityScore: 100},
		},
		ReturnRates: []monitor.ReturnRate{
			{DateValue: date, TotalTransactions: 120, ReturnTransactions: 40,
				ReturnRate: 33.33, ZScore: 2.5, IsAnomaly: true,
				ReturnStatus: monitor.OutlierHigh},
		},
		ProductQuality: []monitor.ProductQuality{
			{StockCode: "85123A",
				Description:      sql.NullString{String: "WHITE HANGING HEART", Valid: true},
				TransactionCount: 500, QualityScore: 100},
		},
		Summary: monitor.OverallSummary{
			TotalRecords:      1000,
			UniqueCustomers:   200,
			UniqueProducts:    300,
			UniqueDates:       31,
			TotalSales:        sql.NullFloat64{Float64: 50000, Valid: true},
			TotalReturns:      sql.NullFloat64{Float64: 2500, Valid: true},
			OverallReturnRate: sql.NullFloat64{Float64: 4.2, Valid: true},
		},
	}
}

func sampleQualityReport() *quality.Report {
	return &quality.Report{
		ExecutionTime: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Categories: map[quality.Category][]quality.CheckResult{
			quality.CategoryRawData: {
				{Name: "null_critical_fields", Category: quality.CategoryRawData,
					Status: quality.StatusEvaluated, Passed: true, Critical: true, Threshold: 0.05},
			},
			quality.CategoryPerformance: {
				{Name: "data_freshness", Category: quality.CategoryPerformance,
					Status: quality.StatusEvaluated, Passed: false, Threshold: 48},
			},
		},
		Summary:       quality.Summary{TotalChecks: 2, PassedChecks: 1, FailedChecks: 1},
		OverallStatus: quality.StatusWarning,
	}
}

func TestExportWritesAllSheets(t *testing.T) {
	dir := t.TempDir()
	e, err := NewExporter(dir, zap.NewNop())
	require.NoError(t, err)
	e.WithNow(func() time.Time {
		return time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	})

	path, err := e.Export(sampleMonitorReport(), sampleQualityReport())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data_quality_report_20240601_1230.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{
		"Daily_Quality_Metrics",
		"Customer_Data_Quality",
		"Return_Rate_Analysis",
		"Product_Quality",
		"Overall_Summary",
		"Anomaly_Details",
		"Check_Results",
	}, f.GetSheetList())
}

func TestExportDailyMetricsContent(t *testing.T) {
	e, err := NewExporter(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	path, err := e.Export(sampleMonitorReport(), sampleQualityReport())
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Daily_Quality_Metrics")
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 days

	assert.Equal(t, "date_value", rows[0][0])
	assert.Equal(t, "2010-12-01", rows[1][0])
	assert.Equal(t, "High", rows[2][5])
	assert.Equal(t, "85", rows[2][6])
}

func TestExportAnomalyDetails(t *testing.T) {
	e, err := NewExporter(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	path, err := e.Export(sampleMonitorReport(), sampleQualityReport())
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Anomaly_Details")
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + sales outlier + return anomaly

	assert.Equal(t, "Sales Outlier", rows[1][1])
	assert.Equal(t, "High", rows[1][2])
	assert.Equal(t, "Return Rate Anomaly", rows[2][1])
	assert.Equal(t, "Medium", rows[2][2])
}

func TestExportNilMonitorReport(t *testing.T) {
	e, err := NewExporter(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	_, err = e.Export(nil, nil)
	assert.Error(t, err)
}

func TestNewExporterValidation(t *testing.T) {
	_, err := NewExporter("", zap.NewNop())
	assert.Error(t, err)

	_, err = NewExporter("reports", nil)
	assert.Error(t, err)
}
