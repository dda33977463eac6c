// pkg/loader/facts.go
package loader

import (
	"context"

	"go.uber.org/zap"

	"github.com/retaildw/pipeline/pkg/model"
)

// LoadStaging replaces the raw_retail_data staging table with the cleaned
// batch. The table is truncated and reloaded wholesale on each run.
func (l *Loader) LoadStaging(ctx context.Context, records []model.StagingRecord) (int, error) {
	l.logger.Info("Loading raw_retail_data", zap.Int("rows", len(records)))

	if err := l.truncate(ctx, "raw_retail_data", false); err != nil {
		return 0, err
	}

	columns := []string{"invoice", "stock_code", "description", "quantity",
		"invoice_date", "price", "customer_id", "country",
		"total_amount", "is_return", "price_flag", "quantity_flag", "processed_at"}

	err := l.loadBatches(ctx, "raw_retail_data", columns, nil, len(records),
		func(i int) []interface{} {
			r := records[i]
			return []interface{}{r.Invoice, r.StockCode, r.Description, r.Quantity,
				r.InvoiceDate, r.UnitPrice, r.CustomerID, r.Country,
				r.TotalAmount, r.IsReturn, r.PriceFlag, r.QuantityFlag, r.ProcessedAt}
		}, nil)
	if err != nil {
		return 0, err
	}

	return len(records), nil
}

// LoadFactSales replaces fact_sales. If the truncate itself fails the
// warehouse is left in its pre-truncate state; if a later batch fails the
// table is left partially loaded. That window is surfaced to the caller via
// the returned LoadError, not masked, and a retry restarts from the
// truncate.
func (l *Loader) LoadFactSales(ctx context.Context, facts []model.FactSale) (int, error) {
	l.logger.Info("Loading fact_sales", zap.Int("rows", len(facts)))

	if err := l.truncate(ctx, "fact_sales", false); err != nil {
		return 0, err
	}

	columns := []string{"invoice_no", "product_key", "customer_key", "time_key",
		"country_key", "quantity", "unit_price", "total_amount", "is_return"}

	err := l.loadBatches(ctx, "fact_sales", columns, nil, len(facts),
		func(i int) []interface{} {
			f := facts[i]
			return []interface{}{f.InvoiceNo, f.ProductKey, f.CustomerKey, f.TimeKey,
				f.CountryKey, f.Quantity, f.UnitPrice, f.TotalAmount, f.IsReturn}
		}, nil)
	if err != nil {
		return 0, err
	}

	return len(facts), nil
}
