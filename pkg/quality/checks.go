// pkg/quality/checks.go
package quality

import (
	"context"
	"database/sql"
	"time"
)

// Category groups checks by the layer they inspect.
type Category string

const (
	CategoryRawData     Category = "raw_data_checks"
	CategoryWarehouse   Category = "warehouse_checks"
	CategoryPerformance Category = "performance_checks"
)

// Status tracks the per-check state machine: a check is PENDING until its
// query executes, then EVALUATED whether it passed, failed, or errored.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusEvaluated Status = "EVALUATED"
)

// OverallStatus is the aggregate outcome of a check run.
type OverallStatus string

const (
	StatusPass            OverallStatus = "PASS"
	StatusWarning         OverallStatus = "WARNING"
	StatusCriticalFailure OverallStatus = "CRITICAL_FAILURE"
)

// CheckResult is the outcome of one named check.
type CheckResult struct {
	Name        string
	Description string
	Category    Category
	Status      Status
	Passed      bool
	Critical    bool
	Threshold   float64
	Metrics     map[string]float64
	Error       string
	Timestamp   time.Time
}

// checkDef is a named check bound to its query runner and threshold.
type checkDef struct {
	name        string
	description string
	category    Category
	threshold   float64
	critical    bool
	run         func(ctx context.Context, e *Engine, threshold float64) (map[string]float64, bool, error)
}

// checkDefs is the fixed check set, executed in order.
var checkDefs = []checkDef{
	{
		name:        "null_critical_fields",
		description: "Check for nulls in critical fields",
		category:    CategoryRawData,
		threshold:   0.05,
		critical:    true,
		run:         runNullCriticalFields,
	},
	{
		name:        "duplicate_records",
		description: "Check for duplicate records",
		category:    CategoryRawData,
		threshold:   0.01,
		critical:    false,
		run:         runDuplicateRecords,
	},
	{
		name:        "data_range_validation",
		description: "Validate data ranges",
		category:    CategoryRawData,
		threshold:   0.10,
		critical:    false,
		run:         runDataRangeValidation,
	},
	{
		name:        "referential_integrity",
		description: "Check referential integrity",
		category:    CategoryWarehouse,
		threshold:   0,
		critical:    true,
		run:         runReferentialIntegrity,
	},
	{
		name:        "business_logic",
		description: "Validate business calculations",
		category:    CategoryWarehouse,
		threshold:   0,
		critical:    true,
		run:         runBusinessLogic,
	},
	{
		name:        "data_freshness",
		description: "Check data freshness",
		category:    CategoryPerformance,
		threshold:   48,
		critical:    false,
		run:         runDataFreshness,
	},
	{
		name:        "row_count_validation",
		description: "Validate expected row counts",
		category:    CategoryPerformance,
		threshold:   0.95,
		critical:    true,
		run:         runRowCountValidation,
	},
}

// nullFieldCounts is the result row of the null_critical_fields query.
type nullFieldCounts struct {
	TotalRows       int64 `db:"total_rows"`
	NullCustomerID  int64 `db:"null_customer_id"`
	NullStockCode   int64 `db:"null_stock_code"`
	NullInvoiceDate int64 `db:"null_invoice_date"`
}

// evaluateNullCriticalFields passes when the null rate across the three
// critical fields stays at or below the threshold. An empty table fails.
func evaluateNullCriticalFields(c nullFieldCounts, threshold float64) bool {
	if c.TotalRows == 0 {
		return false
	}
	nullRate := float64(c.NullCustomerID+c.NullStockCode+c.NullInvoiceDate) / float64(c.TotalRows*3)
	return nullRate <= threshold
}

func runNullCriticalFields(ctx context.Context, e *Engine, threshold float64) (map[string]float64, bool, error) {
	var c nullFieldCounts
	err := e.db.GetContext(ctx, &c, `
		SELECT
			COUNT(*) AS total_rows,
			COUNT(CASE WHEN customer_id IS NULL THEN 1 END) AS null_customer_id,
			COUNT(CASE WHEN stock_code IS NULL THEN 1 END) AS null_stock_code,
			COUNT(CASE WHEN invoice_date IS NULL THEN 1 END) AS null_invoice_date
		FROM raw_retail_data
	`)
	if err != nil {
		return nil, false, err
	}

	metrics := map[string]float64{
		"total_rows":        float64(c.TotalRows),
		"null_customer_id":  float64(c.NullCustomerID),
		"null_stock_code":   float64(c.NullStockCode),
		"null_invoice_date": float64(c.NullInvoiceDate),
	}
	return metrics, evaluateNullCriticalFields(c, threshold), nil
}

// duplicateCounts is the result row of the duplicate_records query.
type duplicateCounts struct {
	TotalRecords       int64 `db:"total_records"`
	UniqueCombinations int64 `db:"unique_combinations"`
}

// evaluateDuplicateRecords passes when the duplicate rate stays at or below
// the threshold; an empty table passes vacuously.
func evaluateDuplicateRecords(c duplicateCounts, threshold float64) bool {
	if c.TotalRecords == 0 {
		return true
	}
	duplicateRate := float64(c.TotalRecords-c.UniqueCombinations) / float64(c.TotalRecords)
	return duplicateRate <= threshold
}

func runDuplicateRecords(ctx context.Context, e *Engine, threshold float64) (map[string]float64, bool, error) {
	var c duplicateCounts
	err := e.db.GetContext(ctx, &c, `
		SELECT
			COUNT(*) AS total_records,
			COUNT(DISTINCT (invoice, stock_code, invoice_date)) AS unique_combinations
		FROM raw_retail_data
	`)
	if err != nil {
		return nil, false, err
	}

	metrics := map[string]float64{
		"total_records":       float64(c.TotalRecords),
		"unique_combinations": float64(c.UniqueCombinations),
	}
	return metrics, evaluateDuplicateRecords(c, threshold), nil
}

// rangeCounts is the result row of the data_range_validation query.
type rangeCounts struct {
	TotalRows          int64 `db:"total_rows"`
	InvalidPrice       int64 `db:"invalid_price"`
	SuspiciousQuantity int64 `db:"suspicious_quantity"`
	ZeroQuantity       int64 `db:"zero_quantity"`
}

// evaluateDataRange passes when the invalid-value rate stays at or below
// the threshold. An empty table fails.
func evaluateDataRange(c rangeCounts, threshold float64) bool {
	if c.TotalRows == 0 {
		return false
	}
	invalidRate := float64(c.InvalidPrice+c.SuspiciousQuantity) / float64(c.TotalRows)
	return invalidRate <= threshold
}

func runDataRangeValidation(ctx context.Context, e *Engine, threshold float64) (map[string]float64, bool, error) {
	var c rangeCounts
	err := e.db.GetContext(ctx, &c, `
		SELECT
			COUNT(*) AS total_rows,
			COUNT(CASE WHEN price <= 0 THEN 1 END) AS invalid_price,
			COUNT(CASE WHEN quantity > 1000 THEN 1 END) AS suspicious_quantity,
			COUNT(CASE WHEN quantity = 0 THEN 1 END) AS zero_quantity
		FROM raw_retail_data
	`)
	if err != nil {
		return nil, false, err
	}

	metrics := map[string]float64{
		"total_rows":          float64(c.TotalRows),
		"invalid_price":       float64(c.InvalidPrice),
		"suspicious_quantity": float64(c.SuspiciousQuantity),
		"zero_quantity":       float64(c.ZeroQuantity),
	}
	return metrics, evaluateDataRange(c, threshold), nil
}

// orphanCounts is the result row of the referential_integrity query.
type orphanCounts struct {
	OrphanedProducts  int64 `db:"orphaned_products"`
	OrphanedCustomers int64 `db:"orphaned_customers"`
	OrphanedTimes     int64 `db:"orphaned_times"`
}

// evaluateReferentialIntegrity passes only with zero orphaned fact rows.
func evaluateReferentialIntegrity(c orphanCounts) bool {
	return c.OrphanedProducts == 0 && c.OrphanedCustomers == 0 && c.OrphanedTimes == 0
}

func runReferentialIntegrity(ctx context.Context, e *Engine, _ float64) (map[string]float64, bool, error) {
	var c orphanCounts
	err := e.db.GetContext(ctx, &c, `
		SELECT
			(SELECT COUNT(*) FROM fact_sales f
			 LEFT JOIN dim_product p ON f.product_key = p.product_key
			 WHERE p.product_key IS NULL) AS orphaned_products,
			(SELECT COUNT(*) FROM fact_sales f
			 LEFT JOIN dim_customer c ON f.customer_key = c.customer_key
			 WHERE c.customer_key IS NULL) AS orphaned_customers,
			(SELECT COUNT(*) FROM fact_sales f
			 LEFT JOIN dim_time t ON f.time_key = t.time_key
			 WHERE t.time_key IS NULL) AS orphaned_times
	`)
	if err != nil {
		return nil, false, err
	}

	metrics := map[string]float64{
		"orphaned_products":  float64(c.OrphanedProducts),
		"orphaned_customers": float64(c.OrphanedCustomers),
		"orphaned_times":     float64(c.OrphanedTimes),
	}
	return metrics, evaluateReferentialIntegrity(c), nil
}

// businessCounts is the result row of the business_logic query.
type businessCounts struct {
	TotalSales          int64           `db:"total_sales"`
	CalculationErrors   int64           `db:"calculation_errors"`
	AvgTransactionValue sql.NullFloat64 `db:"avg_transaction_value"`
	NegativeNonReturns  int64           `db:"negative_non_returns"`
}

// evaluateBusinessLogic passes only with zero calculation errors and zero
// negative-amount non-return rows.
func evaluateBusinessLogic(c businessCounts) bool {
	return c.CalculationErrors == 0 && c.NegativeNonReturns == 0
}

func runBusinessLogic(ctx context.Context, e *Engine, _ float64) (map[string]float64, bool, error) {
	var c businessCounts
	err := e.db.GetContext(ctx, &c, `
		SELECT
			COUNT(*) AS total_sales,
			COUNT(CASE WHEN ABS(total_amount - (quantity * unit_price)) > 0.01 THEN 1 END) AS calculation_errors,
			AVG(total_amount) AS avg_transaction_value,
			COUNT(CASE WHEN total_amount < 0 AND is_return = FALSE THEN 1 END) AS negative_non_returns
		FROM fact_sales
	`)
	if err != nil {
		return nil, false, err
	}

	metrics := map[string]float64{
		"total_sales":           float64(c.TotalSales),
		"calculation_errors":    float64(c.CalculationErrors),
		"avg_transaction_value": c.AvgTransactionValue.Float64,
		"negative_non_returns":  float64(c.NegativeNonReturns),
	}
	return metrics, evaluateBusinessLogic(c), nil
}

// evaluateFreshness passes when the staging table was loaded within the
// threshold window (hours).
func evaluateFreshness(hoursSinceLastLoad sql.NullFloat64, threshold float64) bool {
	if !hoursSinceLastLoad.Valid {
		return false
	}
	return hoursSinceLastLoad.Float64 <= threshold
}

func runDataFreshness(ctx context.Context, e *Engine, threshold float64) (map[string]float64, bool, error) {
	var hours sql.NullFloat64
	err := e.db.GetContext(ctx, &hours, `
		SELECT EXTRACT(EPOCH FROM (NOW() - MAX(created_at)))/3600
		FROM raw_retail_data
	`)
	if err != nil {
		return nil, false, err
	}

	metrics := map[string]float64{"hours_since_last_load": hours.Float64}
	return metrics, evaluateFreshness(hours, threshold), nil
}

// rowCounts is the result row of the row_count_validation query.
type rowCounts struct {
	RawCount      int64 `db:"raw_count"`
	FactCount     int64 `db:"fact_count"`
	CustomerCount int64 `db:"customer_count"`
	ProductCount  int64 `db:"product_count"`
}

// evaluateRowCount passes when at least the threshold share of raw rows
// made it to the fact table. An empty staging table fails.
func evaluateRowCount(c rowCounts, threshold float64) bool {
	if c.RawCount == 0 {
		return false
	}
	retentionRate := float64(c.FactCount) / float64(c.RawCount)
	return retentionRate >= threshold
}

func runRowCountValidation(ctx context.Context, e *Engine, threshold float64) (map[string]float64, bool, error) {
	var c rowCounts
	err := e.db.GetContext(ctx, &c, `
		SELECT
			(SELECT COUNT(*) FROM raw_retail_data) AS raw_count,
			(SELECT COUNT(*) FROM fact_sales) AS fact_count,
			(SELECT COUNT(*) FROM dim_customer) AS customer_count,
			(SELECT COUNT(*) FROM dim_product) AS product_count
	`)
	if err != nil {
		return nil, false, err
	}

	metrics := map[string]float64{
		"raw_count":      float64(c.RawCount),
		"fact_count":     float64(c.FactCount),
		"customer_count": float64(c.CustomerCount),
		"product_count":  float64(c.ProductCount),
	}
	return metrics, evaluateRowCount(c, threshold), nil
}
