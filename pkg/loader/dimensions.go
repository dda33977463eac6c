// pkg/loader/dimensions.go
package loader

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/retaildw/pipeline/pkg/model"
)

// LoadTimeDimension replaces dim_time and registers the generated time keys
// in the registry, read from the RETURNING clause of the rows just written.
func (l *Loader) LoadTimeDimension(ctx context.Context, dims []model.DimTime, reg *model.KeyRegistry) (int, error) {
	l.logger.Info("Loading dim_time", zap.Int("rows", len(dims)))

	if err := l.truncate(ctx, "dim_time", true); err != nil {
		return 0, err
	}

	columns := []string{"date_value", "year", "month", "month_name", "quarter",
		"day_of_month", "day_of_week", "day_name", "is_weekend"}

	err := l.loadBatches(ctx, "dim_time", columns, []string{"time_key", "date_value"}, len(dims),
		func(i int) []interface{} {
			d := dims[i]
			return []interface{}{d.DateValue, d.Year, d.Month, d.MonthName, d.Quarter,
				d.DayOfMonth, d.DayOfWeek, d.DayName, d.IsWeekend}
		},
		func(rows *sqlx.Rows) error {
			for rows.Next() {
				var key int64
				var date time.Time
				if err := rows.Scan(&key, &date); err != nil {
					return err
				}
				reg.PutTime(date, key)
			}
			return nil
		})
	if err != nil {
		return 0, err
	}

	return len(dims), nil
}

// LoadCountryDimension replaces dim_country and registers country keys.
func (l *Loader) LoadCountryDimension(ctx context.Context, dims []model.DimCountry, reg *model.KeyRegistry) (int, error) {
	l.logger.Info("Loading dim_country", zap.Int("rows", len(dims)))

	if err := l.truncate(ctx, "dim_country", true); err != nil {
		return 0, err
	}

	err := l.loadBatches(ctx, "dim_country", []string{"country_name"},
		[]string{"country_key", "country_name"}, len(dims),
		func(i int) []interface{} {
			return []interface{}{dims[i].CountryName}
		},
		func(rows *sqlx.Rows) error {
			for rows.Next() {
				var key int64
				var name string
				if err := rows.Scan(&key, &name); err != nil {
					return err
				}
				reg.PutCountry(name, key)
			}
			return nil
		})
	if err != nil {
		return 0, err
	}

	return len(dims), nil
}

// LoadProductDimension replaces dim_product and registers product keys.
func (l *Loader) LoadProductDimension(ctx context.Context, dims []model.DimProduct, reg *model.KeyRegistry) (int, error) {
	l.logger.Info("Loading dim_product", zap.Int("rows", len(dims)))

	if err := l.truncate(ctx, "dim_product", true); err != nil {
		return 0, err
	}

	err := l.loadBatches(ctx, "dim_product", []string{"stock_code", "description"},
		[]string{"product_key", "stock_code"}, len(dims),
		func(i int) []interface{} {
			return []interface{}{dims[i].StockCode, dims[i].Description}
		},
		func(rows *sqlx.Rows) error {
			for rows.Next() {
				var key int64
				var code string
				if err := rows.Scan(&key, &code); err != nil {
					return err
				}
				reg.PutProduct(code, key)
			}
			return nil
		})
	if err != nil {
		return 0, err
	}

	return len(dims), nil
}

// LoadCustomerDimension replaces dim_customer and registers customer keys.
// Country keys must already be loaded: dim_customer carries a foreign key
// into dim_country.
func (l *Loader) LoadCustomerDimension(ctx context.Context, dims []model.DimCustomer, reg *model.KeyRegistry) (int, error) {
	l.logger.Info("Loading dim_customer", zap.Int("rows", len(dims)))

	if err := l.truncate(ctx, "dim_customer", true); err != nil {
		return 0, err
	}

	err := l.loadBatches(ctx, "dim_customer", []string{"customer_id", "country_key"},
		[]string{"customer_key", "customer_id"}, len(dims),
		func(i int) []interface{} {
			return []interface{}{dims[i].CustomerID, dims[i].CountryKey}
		},
		func(rows *sqlx.Rows) error {
			for rows.Next() {
				var key, customerID int64
				if err := rows.Scan(&key, &customerID); err != nil {
					return err
				}
				reg.PutCustomer(customerID, key)
			}
			return nil
		})
	if err != nil {
		return 0, err
	}

	return len(dims), nil
}
