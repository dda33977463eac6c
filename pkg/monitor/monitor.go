// pkg/monitor/monitor.go
//
// Statistical anomaly scoring over the loaded warehouse. Every series is an
// independent read-only query-and-score step, safe to re-run at any time.
package monitor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// DailySales is one day of aggregated sales with its outlier scoring.
type DailySales struct {
	DateValue          time.Time `db:"date_value"`
	Year               int       `db:"year"`
	Month              int       `db:"month"`
	DayName            string    `db:"day_name"`
	IsWeekend          bool      `db:"is_weekend"`
	DailySales         float64   `db:"daily_sales"`
	TotalTransactions  int64     `db:"total_transactions"`
	UniqueCustomers    int64     `db:"unique_customers"`
	DailyReturns       float64   `db:"daily_returns"`
	ReturnTransactions int64     `db:"return_transactions"`

	IsOutlier    bool    `db:"-"`
	OutlierType  string  `db:"-"`
	QualityScore float64 `db:"-"`
	ZScore       float64 `db:"-"`
}

// CustomerCompleteness is one day of missing-customer-key measurement.
type CustomerCompleteness struct {
	DateValue                time.Time `db:"date_value"`
	Year                     int       `db:"year"`
	Month                    int       `db:"month"`
	TotalTransactions        int64     `db:"total_transactions"`
	TransactionsWithCustomer int64     `db:"transactions_with_customer"`
	MissingCustomers         int64     `db:"missing_customers"`
	MissingCustomerRate      float64   `db:"missing_customer_rate"`

	QualityStatus string  `db:"-"`
	QualityScore  float64 `db:"-"`
}

// ReturnRate is one day of return-rate measurement with its anomaly flags.
type ReturnRate struct {
	DateValue          time.Time `db:"date_value"`
	Year               int       `db:"year"`
	Month              int       `db:"month"`
	TotalTransactions  int64     `db:"total_transactions"`
	ReturnTransactions int64     `db:"return_transactions"`
	ReturnRate         float64   `db:"return_rate"`
	SalesAmount        float64   `db:"sales_amount"`
	ReturnAmount       float64   `db:"return_amount"`

	ZScore       float64 `db:"-"`
	IsAnomaly    bool    `db:"-"`
	ReturnStatus string  `db:"-"`
}

// ProductQuality is one product's completeness measurement.
type ProductQuality struct {
	StockCode          string          `db:"stock_code"`
	Description        sql.NullString  `db:"description"`
	TransactionCount   int64           `db:"transaction_count"`
	TotalRevenue       sql.NullFloat64 `db:"total_revenue"`
	MissingDescription int             `db:"missing_description"`
	InvalidStockCode   int             `db:"invalid_stock_code"`

	QualityIssues int     `db:"-"`
	QualityScore  float64 `db:"-"`
}

// DateRange is the span of sale dates present in the warehouse.
type DateRange struct {
	MinDate   sql.NullTime `db:"min_date"`
	MaxDate   sql.NullTime `db:"max_date"`
	TotalDays int64        `db:"total_days"`
}

// OverallSummary is the warehouse-wide figures attached to every report.
type OverallSummary struct {
	TotalRecords      int64           `db:"total_records"`
	UniqueCustomers   int64           `db:"unique_customers"`
	UniqueProducts    int64           `db:"unique_products"`
	UniqueDates       int64           `db:"unique_dates"`
	TotalSales        sql.NullFloat64 `db:"total_sales"`
	TotalReturns      sql.NullFloat64 `db:"total_returns"`
	OverallReturnRate sql.NullFloat64 `db:"overall_return_rate"`
}

// Report is the complete anomaly-scoring output for one run.
type Report struct {
	GeneratedAt          time.Time
	DateRange            DateRange
	DailySales           []DailySales
	SalesStats           SalesStats
	CustomerCompleteness []CustomerCompleteness
	ReturnRates          []ReturnRate
	ReturnRateMean       float64
	ReturnRateStd        float64
	ProductQuality       []ProductQuality
	Summary              OverallSummary
}

// Monitor computes the anomaly-scoring report from the warehouse tables.
type Monitor struct {
	db     *sqlx.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewMonitor creates a monitor. db and logger must be non-nil.
func NewMonitor(db *sqlx.DB, logger *zap.Logger) (*Monitor, error) {
	if db == nil {
		return nil, errors.New("database handle cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Monitor{db: db, logger: logger, now: time.Now}, nil
}

// WithNow overrides the monitor clock. Test hook.
func (m *Monitor) WithNow(now func() time.Time) *Monitor {
	m.now = now
	return m
}

// Run executes all scoring series and assembles the report.
func (m *Monitor) Run(ctx context.Context) (*Report, error) {
	report := &Report{GeneratedAt: m.now()}

	if err := m.db.GetContext(ctx, &report.DateRange, `
		SELECT MIN(t.date_value) AS min_date,
		       MAX(t.date_value) AS max_date,
		       COUNT(DISTINCT t.date_value) AS total_days
		FROM fact_sales f
		JOIN dim_time t ON f.time_key = t.time_key
	`); err != nil {
		return nil, fmt.Errorf("querying date range: %w", err)
	}

	var err error
	if report.DailySales, report.SalesStats, err = m.dailySales(ctx); err != nil {
		return nil, err
	}
	if report.CustomerCompleteness, err = m.customerCompleteness(ctx); err != nil {
		return nil, err
	}
	if report.ReturnRates, report.ReturnRateMean, report.ReturnRateStd, err = m.returnRates(ctx); err != nil {
		return nil, err
	}
	if report.ProductQuality, err = m.productQuality(ctx); err != nil {
		return nil, err
	}
	if err = m.db.GetContext(ctx, &report.Summary, `
		SELECT COUNT(*) AS total_records,
		       COUNT(DISTINCT f.customer_key) AS unique_customers,
		       COUNT(DISTINCT f.product_key) AS unique_products,
		       COUNT(DISTINCT f.time_key) AS unique_dates,
		       SUM(CASE WHEN f.is_return = FALSE THEN f.total_amount ELSE 0 END) AS total_sales,
		       SUM(CASE WHEN f.is_return = TRUE THEN ABS(f.total_amount) ELSE 0 END) AS total_returns,
		       ROUND(COUNT(CASE WHEN f.is_return = TRUE THEN 1 END) * 100.0 / NULLIF(COUNT(*), 0), 2) AS overall_return_rate
		FROM fact_sales f
	`); err != nil {
		return nil, fmt.Errorf("querying overall summary: %w", err)
	}

	m.logger.Info("anomaly scoring complete",
		zap.Int("days_scored", len(report.DailySales)),
		zap.Int("products_scored", len(report.ProductQuality)),
		zap.Int("sales_outliers", countOutliers(report.DailySales)),
		zap.Int("return_anomalies", countReturnAnomalies(report.ReturnRates)))
	return report, nil
}

func (m *Monitor) dailySales(ctx context.Context) ([]DailySales, SalesStats, error) {
	var rows []DailySales
	err := m.db.SelectContext(ctx, &rows, `
		SELECT t.date_value,
		       t.year,
		       t.month,
		       t.day_name,
		       t.is_weekend,
		       SUM(CASE WHEN f.is_return = FALSE THEN f.total_amount ELSE 0 END) AS daily_sales,
		       COUNT(*) AS total_transactions,
		       COUNT(DISTINCT f.customer_key) AS unique_customers,
		       SUM(CASE WHEN f.is_return = TRUE THEN f.total_amount ELSE 0 END) AS daily_returns,
		       COUNT(CASE WHEN f.is_return = TRUE THEN 1 END) AS return_transactions
		FROM fact_sales f
		JOIN dim_time t ON f.time_key = t.time_key
		GROUP BY t.date_value, t.year, t.month, t.day_name, t.is_weekend
		ORDER BY t.date_value
	`)
	if err != nil {
		return nil, SalesStats{}, fmt.Errorf("querying daily sales: %w", err)
	}
	stats := ScoreDailySales(rows)
	return rows, stats, nil
}

func (m *Monitor) customerCompleteness(ctx context.Context) ([]CustomerCompleteness, error) {
	var rows []CustomerCompleteness
	err := m.db.SelectContext(ctx, &rows, `
		SELECT t.date_value,
		       t.year,
		       t.month,
		       COUNT(*) AS total_transactions,
		       COUNT(f.customer_key) AS transactions_with_customer,
		       COUNT(*) - COUNT(f.customer_key) AS missing_customers,
		       ROUND((COUNT(*) - COUNT(f.customer_key)) * 100.0 / COUNT(*), 2) AS missing_customer_rate
		FROM fact_sales f
		JOIN dim_time t ON f.time_key = t.time_key
		GROUP BY t.date_value, t.year, t.month
		ORDER BY t.date_value
	`)
	if err != nil {
		return nil, fmt.Errorf("querying customer completeness: %w", err)
	}
	ScoreMissingCustomers(rows)
	return rows, nil
}

func (m *Monitor) returnRates(ctx context.Context) ([]ReturnRate, float64, float64, error) {
	var rows []ReturnRate
	err := m.db.SelectContext(ctx, &rows, `
		SELECT t.date_value,
		       t.year,
		       t.month,
		       COUNT(*) AS total_transactions,
		       COUNT(CASE WHEN f.is_return = TRUE THEN 1 END) AS return_transactions,
		       ROUND(COUNT(CASE WHEN f.is_return = TRUE THEN 1 END) * 100.0 / COUNT(*), 2) AS return_rate,
		       SUM(CASE WHEN f.is_return = FALSE THEN f.total_amount ELSE 0 END) AS sales_amount,
		       SUM(CASE WHEN f.is_return = TRUE THEN ABS(f.total_amount) ELSE 0 END) AS return_amount
		FROM fact_sales f
		JOIN dim_time t ON f.time_key = t.time_key
		GROUP BY t.date_value, t.year, t.month
		ORDER BY t.date_value
	`)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("querying return rates: %w", err)
	}
	mean, std := ScoreReturnRates(rows)
	return rows, mean, std, nil
}

func (m *Monitor) productQuality(ctx context.Context) ([]ProductQuality, error) {
	var rows []ProductQuality
	err := m.db.SelectContext(ctx, &rows, `
		SELECT p.stock_code,
		       p.description,
		       COUNT(f.product_key) AS transaction_count,
		       SUM(f.total_amount) AS total_revenue,
		       CASE WHEN p.description IS NULL OR p.description = '' THEN 1 ELSE 0 END AS missing_description,
		       CASE WHEN LENGTH(p.stock_code) < 3 THEN 1 ELSE 0 END AS invalid_stock_code
		FROM dim_product p
		LEFT JOIN fact_sales f ON p.product_key = f.product_key
		GROUP BY p.product_key, p.stock_code, p.description
		ORDER BY total_revenue DESC NULLS LAST
	`)
	if err != nil {
		return nil, fmt.Errorf("querying product quality: %w", err)
	}
	ScoreProducts(rows)
	return rows, nil
}

func countOutliers(rows []DailySales) int {
	n := 0
	for _, r := range rows {
		if r.IsOutlier {
			n++
		}
	}
	return n
}

func countReturnAnomalies(rows []ReturnRate) int {
	n := 0
	for _, r := range rows {
		if r.IsAnomaly {
			n++
		}
	}
	return n
}
