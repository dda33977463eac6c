// pkg/transform/fact.go
package transform

import (
	"errors"

	"go.uber.org/zap"

	"github.com/retaildw/pipeline/pkg/model"
)

// FactBuildStats exposes the two-stage row-count deltas of the fact build:
// after foreign-key cleanup and after deduplication.
type FactBuildStats struct {
	InputRows          int
	AfterKeyCleanup    int
	AfterDedup         int
	DroppedMissingKeys int
	DuplicatesRemoved  int
}

// FactBuilder joins cleaned staging rows against the key registry to
// produce the fact dataset.
type FactBuilder struct {
	logger *zap.Logger
}

// NewFactBuilder creates a new FactBuilder instance
func NewFactBuilder(logger *zap.Logger) (*FactBuilder, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &FactBuilder{logger: logger.Named("transform")}, nil
}

// Build resolves all four foreign keys for each staging row, drops rows
// with any unresolved key (counted, not an error), and deduplicates on
// (invoice_no, product_key, time_key) keeping the first occurrence. The
// is_return flag was computed once by the cleaner and is carried through
// unchanged.
func (b *FactBuilder) Build(records []model.StagingRecord, reg *model.KeyRegistry) ([]model.FactSale, FactBuildStats) {
	stats := FactBuildStats{InputRows: len(records)}

	type dedupKey struct {
		invoice    string
		productKey int64
		timeKey    int64
	}
	seen := make(map[dedupKey]struct{}, len(records))
	facts := make([]model.FactSale, 0, len(records))

	for _, rec := range records {
		productKey, okProduct := reg.ProductKey(rec.StockCode)
		timeKey, okTime := reg.TimeKey(rec.InvoiceDate)

		var customerKey int64
		okCustomer := false
		if rec.CustomerID.Valid {
			customerKey, okCustomer = reg.CustomerKey(rec.CustomerID.Int64)
		}

		var countryKey int64
		okCountry := false
		if rec.Country.Valid {
			countryKey, okCountry = reg.CountryKey(rec.Country.String)
		}

		if !okProduct || !okTime || !okCustomer || !okCountry {
			stats.DroppedMissingKeys++
			continue
		}
		stats.AfterKeyCleanup++

		key := dedupKey{invoice: rec.Invoice, productKey: productKey, timeKey: timeKey}
		if _, dup := seen[key]; dup {
			stats.DuplicatesRemoved++
			continue
		}
		seen[key] = struct{}{}

		facts = append(facts, model.FactSale{
			InvoiceNo:   rec.Invoice,
			ProductKey:  productKey,
			CustomerKey: customerKey,
			TimeKey:     timeKey,
			CountryKey:  countryKey,
			Quantity:    rec.Quantity,
			UnitPrice:   rec.UnitPrice.Float64,
			TotalAmount: rec.TotalAmount,
			IsReturn:    rec.IsReturn,
		})
	}

	stats.AfterDedup = len(facts)

	b.logger.Info("Built sales fact table",
		zap.Int("input_rows", stats.InputRows),
		zap.Int("after_key_cleanup", stats.AfterKeyCleanup),
		zap.Int("after_dedup", stats.AfterDedup),
		zap.Int("dropped_missing_keys", stats.DroppedMissingKeys),
		zap.Int("duplicates_removed", stats.DuplicatesRemoved))

	return facts, stats
}
