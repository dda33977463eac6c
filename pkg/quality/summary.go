// pkg/quality/summary.go
package quality

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// DataSummary captures headline warehouse figures after a load.
type DataSummary struct {
	StagingRows   int64        `db:"staging_rows"`
	FactRows      int64        `db:"fact_rows"`
	TimeRows      int64        `db:"time_rows"`
	CountryRows   int64        `db:"country_rows"`
	ProductRows   int64        `db:"product_rows"`
	CustomerRows  int64        `db:"customer_rows"`
	FirstSaleDate sql.NullTime `db:"first_sale_date"`
	LastSaleDate  sql.NullTime `db:"last_sale_date"`
	TotalRevenue  float64      `db:"total_revenue"`
	ReturnCount   int64        `db:"return_count"`
}

// CountrySales is one row of the top-countries metric.
type CountrySales struct {
	Country   string  `db:"country"`
	SaleCount int64   `db:"sale_count"`
	Revenue   float64 `db:"revenue"`
}

// ProductSales is one row of the top-products metric.
type ProductSales struct {
	StockCode   string         `db:"stock_code"`
	Description sql.NullString `db:"description"`
	Quantity    int64          `db:"quantity"`
	Revenue     float64        `db:"revenue"`
}

// MonthlySales is one row of the monthly sales trend.
type MonthlySales struct {
	Year    int     `db:"year"`
	Month   int     `db:"month"`
	Revenue float64 `db:"revenue"`
	Sales   int64   `db:"sales"`
}

// TopMetrics bundles the post-load headline rankings.
type TopMetrics struct {
	TopCountries []CountrySales
	TopProducts  []ProductSales
	MonthlyTrend []MonthlySales
}

// DataSummary reads table counts and headline sales figures in one round trip.
func (e *Engine) DataSummary(ctx context.Context) (*DataSummary, error) {
	var s DataSummary
	err := e.db.GetContext(ctx, &s, `
		SELECT
			(SELECT COUNT(*) FROM raw_retail_data) AS staging_rows,
			(SELECT COUNT(*) FROM fact_sales) AS fact_rows,
			(SELECT COUNT(*) FROM dim_time) AS time_rows,
			(SELECT COUNT(*) FROM dim_country) AS country_rows,
			(SELECT COUNT(*) FROM dim_product) AS product_rows,
			(SELECT COUNT(*) FROM dim_customer) AS customer_rows,
			(SELECT MIN(t.date_value) FROM fact_sales f JOIN dim_time t ON f.time_key = t.time_key) AS first_sale_date,
			(SELECT MAX(t.date_value) FROM fact_sales f JOIN dim_time t ON f.time_key = t.time_key) AS last_sale_date,
			(SELECT COALESCE(SUM(total_amount), 0) FROM fact_sales WHERE is_return = FALSE) AS total_revenue,
			(SELECT COUNT(*) FROM fact_sales WHERE is_return = TRUE) AS return_count
	`)
	if err != nil {
		return nil, err
	}

	e.logger.Info("warehouse summary",
		zap.Int64("staging_rows", s.StagingRows),
		zap.Int64("fact_rows", s.FactRows),
		zap.Int64("products", s.ProductRows),
		zap.Int64("customers", s.CustomerRows),
		zap.Float64("total_revenue", s.TotalRevenue),
		zap.Int64("returns", s.ReturnCount))
	return &s, nil
}

// TopMetrics returns the top-10 countries and products by revenue plus the
// monthly sales trend, all computed from non-return fact rows.
func (e *Engine) TopMetrics(ctx context.Context) (*TopMetrics, error) {
	m := &TopMetrics{}

	err := e.db.SelectContext(ctx, &m.TopCountries, `
		SELECT c.country_name AS country,
		       COUNT(*) AS sale_count,
		       SUM(f.total_amount) AS revenue
		FROM fact_sales f
		JOIN dim_country c ON f.country_key = c.country_key
		WHERE f.is_return = FALSE
		GROUP BY c.country_name
		ORDER BY revenue DESC
		LIMIT 10
	`)
	if err != nil {
		return nil, err
	}

	err = e.db.SelectContext(ctx, &m.TopProducts, `
		SELECT p.stock_code,
		       p.description,
		       SUM(f.quantity) AS quantity,
		       SUM(f.total_amount) AS revenue
		FROM fact_sales f
		JOIN dim_product p ON f.product_key = p.product_key
		WHERE f.is_return = FALSE
		GROUP BY p.stock_code, p.description
		ORDER BY revenue DESC
		LIMIT 10
	`)
	if err != nil {
		return nil, err
	}

	err = e.db.SelectContext(ctx, &m.MonthlyTrend, `
		SELECT t.year,
		       t.month,
		       SUM(f.total_amount) AS revenue,
		       COUNT(*) AS sales
		FROM fact_sales f
		JOIN dim_time t ON f.time_key = t.time_key
		WHERE f.is_return = FALSE
		GROUP BY t.year, t.month
		ORDER BY t.year, t.month
	`)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// DateRangeDays is the inclusive span of sale dates covered by the load,
// or zero when no facts were loaded.
func (s *DataSummary) DateRangeDays() int {
	if !s.FirstSaleDate.Valid || !s.LastSaleDate.Valid {
		return 0
	}
	return int(s.LastSaleDate.Time.Sub(s.FirstSaleDate.Time)/(24*time.Hour)) + 1
}
