// pkg/report/excel.go
//
// Excel export of the quality and anomaly reports, one sheet per series,
// laid out for dashboard tooling to consume directly.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/retaildw/pipeline/pkg/monitor"
	"github.com/retaildw/pipeline/pkg/quality"
)

// maxProductRows caps the product quality sheet so the workbook stays usable.
const maxProductRows = 1000

// Exporter writes quality reports as .xlsx workbooks under a report directory.
type Exporter struct {
	dir    string
	logger *zap.Logger
	now    func() time.Time
}

// NewExporter creates an exporter writing under dir. logger must be non-nil.
func NewExporter(dir string, logger *zap.Logger) (*Exporter, error) {
	if dir == "" {
		return nil, errors.New("report directory cannot be empty")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Exporter{dir: dir, logger: logger, now: time.Now}, nil
}

// WithNow overrides the exporter clock. Test hook.
func (e *Exporter) WithNow(now func() time.Time) *Exporter {
	e.now = now
	return e
}

// Export writes one workbook containing the monitor series, the anomaly
// details, and the quality check summary. Returns the written file path.
func (e *Exporter) Export(mon *monitor.Report, qual *quality.Report) (string, error) {
	if mon == nil {
		return "", errors.New("monitor report cannot be nil")
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := e.writeDailyMetrics(f, mon.DailySales); err != nil {
		return "", err
	}
	if err := e.writeCustomerQuality(f, mon.CustomerCompleteness); err != nil {
		return "", err
	}
	if err := e.writeReturnAnalysis(f, mon.ReturnRates); err != nil {
		return "", err
	}
	if err := e.writeProductQuality(f, mon.ProductQuality); err != nil {
		return "", err
	}
	if err := e.writeOverallSummary(f, mon, qual); err != nil {
		return "", err
	}
	if err := e.writeAnomalyDetails(f, mon); err != nil {
		return "", err
	}
	if err := e.writeCheckResults(f, qual); err != nil {
		return "", err
	}

	// The default sheet excelize creates is replaced by the first written one.
	filename := fmt.Sprintf("data_quality_report_%s.xlsx", e.now().Format("20060102_1504"))
	path := filepath.Join(e.dir, filename)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("saving report workbook: %w", err)
	}

	e.logger.Info("quality report exported", zap.String("path", path))
	return path, nil
}

// writeSheet creates a sheet named name with a header row followed by rows.
// The workbook's default sheet is renamed on first use.
func writeSheet(f *excelize.File, name string, header []interface{}, rows [][]interface{}) error {
	if f.GetSheetName(0) == "Sheet1" && len(f.GetSheetList()) == 1 {
		if err := f.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("renaming sheet %s: %w", name, err)
		}
	} else if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("creating sheet %s: %w", name, err)
	}

	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("writing header on %s: %w", name, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("writing row %d on %s: %w", i+2, name, err)
		}
	}
	return nil
}

const dateLayout = "2006-01-02"

func (e *Exporter) writeDailyMetrics(f *excelize.File, series []monitor.DailySales) error {
	header := []interface{}{"date_value", "daily_sales", "total_transactions",
		"unique_customers", "is_outlier", "outlier_type", "quality_score", "z_score"}
	rows := make([][]interface{}, len(series))
	for i, d := range series {
		rows[i] = []interface{}{
			d.DateValue.Format(dateLayout), d.DailySales, d.TotalTransactions,
			d.UniqueCustomers, d.IsOutlier, d.OutlierType, d.QualityScore,
			monitor.Round2(d.ZScore),
		}
	}
	return writeSheet(f, "Daily_Quality_Metrics", header, rows)
}

func (e *Exporter) writeCustomerQuality(f *excelize.File, series []monitor.CustomerCompleteness) error {
	header := []interface{}{"date_value", "total_transactions", "missing_customers",
		"missing_customer_rate", "quality_status", "quality_score"}
	rows := make([][]interface{}, len(series))
	for i, c := range series {
		rows[i] = []interface{}{
			c.DateValue.Format(dateLayout), c.TotalTransactions, c.MissingCustomers,
			c.MissingCustomerRate, c.QualityStatus, c.QualityScore,
		}
	}
	return writeSheet(f, "Customer_Data_Quality", header, rows)
}

func (e *Exporter) writeReturnAnalysis(f *excelize.File, series []monitor.ReturnRate) error {
	header := []interface{}{"date_value", "total_transactions", "return_transactions",
		"return_rate", "return_rate_z_score", "is_return_anomaly", "return_status"}
	rows := make([][]interface{}, len(series))
	for i, r := range series {
		rows[i] = []interface{}{
			r.DateValue.Format(dateLayout), r.TotalTransactions, r.ReturnTransactions,
			r.ReturnRate, monitor.Round2(r.ZScore), r.IsAnomaly, r.ReturnStatus,
		}
	}
	return writeSheet(f, "Return_Rate_Analysis", header, rows)
}

func (e *Exporter) writeProductQuality(f *excelize.File, series []monitor.ProductQuality) error {
	header := []interface{}{"stock_code", "description", "transaction_count",
		"total_revenue", "missing_description", "invalid_stock_code", "quality_score"}
	if len(series) > maxProductRows {
		series = series[:maxProductRows]
	}
	rows := make([][]interface{}, len(series))
	for i, p := range series {
		rows[i] = []interface{}{
			p.StockCode, p.Description.String, p.TransactionCount,
			p.TotalRevenue.Float64, p.MissingDescription, p.InvalidStockCode,
			p.QualityScore,
		}
	}
	return writeSheet(f, "Product_Quality", header, rows)
}

func (e *Exporter) writeOverallSummary(f *excelize.File, mon *monitor.Report, qual *quality.Report) error {
	header := []interface{}{"report_timestamp", "min_date", "max_date", "total_days",
		"total_records", "unique_customers", "unique_products", "unique_dates",
		"total_sales", "total_returns", "overall_return_rate",
		"quality_score", "overall_status"}

	minDate, maxDate := "", ""
	if mon.DateRange.MinDate.Valid {
		minDate = mon.DateRange.MinDate.Time.Format(dateLayout)
	}
	if mon.DateRange.MaxDate.Valid {
		maxDate = mon.DateRange.MaxDate.Time.Format(dateLayout)
	}

	var score float64
	var status string
	if qual != nil {
		score = qual.QualityScore()
		status = string(qual.OverallStatus)
	}

	row := []interface{}{
		mon.GeneratedAt.Format(time.RFC3339), minDate, maxDate, mon.DateRange.TotalDays,
		mon.Summary.TotalRecords, mon.Summary.UniqueCustomers,
		mon.Summary.UniqueProducts, mon.Summary.UniqueDates,
		mon.Summary.TotalSales.Float64, mon.Summary.TotalReturns.Float64,
		mon.Summary.OverallReturnRate.Float64, score, status,
	}
	return writeSheet(f, "Overall_Summary", header, [][]interface{}{row})
}

func (e *Exporter) writeAnomalyDetails(f *excelize.File, mon *monitor.Report) error {
	header := []interface{}{"date", "issue_type", "severity", "value", "description"}
	var rows [][]interface{}

	for _, d := range mon.DailySales {
		if !d.IsOutlier {
			continue
		}
		severity := "High"
		if d.OutlierType == monitor.OutlierLow {
			severity = "Medium"
		}
		rows = append(rows, []interface{}{
			d.DateValue.Format(dateLayout), "Sales Outlier", severity, d.DailySales,
			fmt.Sprintf("%s sales day: $%.2f", d.OutlierType, d.DailySales),
		})
	}
	for _, r := range mon.ReturnRates {
		if !r.IsAnomaly {
			continue
		}
		rows = append(rows, []interface{}{
			r.DateValue.Format(dateLayout), "Return Rate Anomaly", "Medium", r.ReturnRate,
			fmt.Sprintf("Unusual return rate: %.2f%%", r.ReturnRate),
		})
	}
	return writeSheet(f, "Anomaly_Details", header, rows)
}

func (e *Exporter) writeCheckResults(f *excelize.File, qual *quality.Report) error {
	if qual == nil {
		return nil
	}
	header := []interface{}{"check_name", "category", "status", "passed",
		"critical", "threshold", "error"}
	var rows [][]interface{}
	for _, cat := range []quality.Category{
		quality.CategoryRawData, quality.CategoryWarehouse, quality.CategoryPerformance,
	} {
		for _, res := range qual.Categories[cat] {
			rows = append(rows, []interface{}{
				res.Name, string(res.Category), string(res.Status),
				res.Passed, res.Critical, res.Threshold, res.Error,
			})
		}
	}
	return writeSheet(f, "Check_Results", header, rows)
}
