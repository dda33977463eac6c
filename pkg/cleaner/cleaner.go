// pkg/cleaner/cleaner.go
package cleaner

import (
	"errors"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/retaildw/pipeline/pkg/model"
)

// HighQuantityThreshold marks suspicious bulk orders. Rows above it are
// flagged, not dropped.
const HighQuantityThreshold = 1000

// StagingCleaner validates and normalizes raw extracted rows before they
// enter the warehouse pipeline.
type StagingCleaner struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewStagingCleaner creates a new StagingCleaner instance
func NewStagingCleaner(logger *zap.Logger) (*StagingCleaner, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &StagingCleaner{
		logger: logger.Named("cleaner"),
		now:    time.Now,
	}, nil
}

// WithNow overrides the timestamp source used for the processing stamp.
func (c *StagingCleaner) WithNow(now func() time.Time) *StagingCleaner {
	c.now = now
	return c
}

// Clean validates, flags, deduplicates, and derives measures for a batch of
// raw records. Rows with a null customer id, product code, or invoice date
// are dropped; rows with suspicious prices or quantities are flagged and
// kept. Deduplication on (invoice, stock_code, invoice_date) keeps the
// first occurrence in input order.
func (c *StagingCleaner) Clean(records []model.StagingRecord) ([]model.StagingRecord, model.CleanStats, error) {
	stats := model.CleanStats{InitialRows: len(records)}
	processedAt := c.now()

	cleaned := make([]model.StagingRecord, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for _, rec := range records {
		// Critical-field null drops
		if !rec.CustomerID.Valid || rec.StockCode == "" || rec.InvoiceDate.IsZero() {
			stats.NullDrops++
			continue
		}

		// Flag invalid prices but keep the row. Flagging happens before
		// dedup so the counters see every surviving input row, duplicates
		// included.
		if !rec.UnitPrice.Valid || rec.UnitPrice.Float64 <= 0 {
			rec.PriceFlag = true
			stats.InvalidPriceCount++
		}

		// Flag suspicious bulk quantities
		if rec.Quantity > HighQuantityThreshold {
			rec.QuantityFlag = true
			stats.HighQuantityCount++
		}

		// Credit invoices are prefixed with "C"; negative quantities are
		// returns regardless of prefix. Computed once here and carried
		// through to the fact table.
		rec.IsReturn = strings.HasPrefix(rec.Invoice, "C") || rec.Quantity < 0
		if rec.IsReturn {
			stats.ReturnCount++
		}

		// First occurrence wins
		key := rec.DedupKey()
		if _, dup := seen[key]; dup {
			stats.DuplicatesRemoved++
			continue
		}
		seen[key] = struct{}{}

		rec.TotalAmount = float64(rec.Quantity) * rec.UnitPrice.Float64
		rec.ProcessedAt = processedAt

		cleaned = append(cleaned, rec)
	}

	stats.FinalRows = len(cleaned)
	stats.RowsDropped = stats.InitialRows - stats.FinalRows
	if stats.InitialRows > 0 {
		stats.DropRate = math.Round(float64(stats.RowsDropped)/float64(stats.InitialRows)*100*100) / 100
	}

	c.logger.Info("Staging cleaning completed",
		zap.Int("initial_rows", stats.InitialRows),
		zap.Int("final_rows", stats.FinalRows),
		zap.Float64("drop_rate_pct", stats.DropRate),
		zap.Int("null_drops", stats.NullDrops),
		zap.Int("invalid_price_count", stats.InvalidPriceCount),
		zap.Int("high_quantity_count", stats.HighQuantityCount),
		zap.Int("return_count", stats.ReturnCount),
		zap.Int("duplicates_removed", stats.DuplicatesRemoved))

	return cleaned, stats, nil
}
