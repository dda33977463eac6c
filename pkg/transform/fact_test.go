package transform

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/retaildw/pipeline/pkg/model"
)

func factInput(invoice, stockCode string, quantity int64, customerID int64, country string, date time.Time) model.StagingRecord {
	return model.StagingRecord{
		Invoice:     invoice,
		StockCode:   stockCode,
		Quantity:    quantity,
		InvoiceDate: date,
		UnitPrice:   sql.NullFloat64{Float64: 2.55, Valid: true},
		CustomerID:  sql.NullInt64{Int64: customerID, Valid: true},
		Country:     sql.NullString{String: country, Valid: true},
		TotalAmount: float64(quantity) * 2.55,
	}
}

func fullRegistry() *model.KeyRegistry {
	reg := model.NewKeyRegistry()
	reg.PutTime(time.Date(2010, 12, 1, 0, 0, 0, 0, time.UTC), 1)
	reg.PutCountry("United Kingdom", 1)
	reg.PutProduct("85123A", 1)
	reg.PutProduct("71053", 2)
	reg.PutCustomer(17850, 1)
	return reg
}

func TestFactBuildResolvesAllKeys(t *testing.T) {
	b, err := NewFactBuilder(zap.NewNop())
	require.NoError(t, err)

	date := time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC)
	facts, stats := b.Build([]model.StagingRecord{
		factInput("536365", "85123A", 6, 17850, "United Kingdom", date),
	}, fullRegistry())

	require.Len(t, facts, 1)
	f := facts[0]
	assert.Equal(t, "536365", f.InvoiceNo)
	assert.Equal(t, int64(1), f.ProductKey)
	assert.Equal(t, int64(1), f.CustomerKey)
	assert.Equal(t, int64(1), f.TimeKey)
	assert.Equal(t, int64(1), f.CountryKey)
	assert.Equal(t, int64(6), f.Quantity)
	assert.InDelta(t, 2.55, f.UnitPrice, 1e-9)
	assert.InDelta(t, 15.30, f.TotalAmount, 1e-9)
	assert.Equal(t, 1, stats.AfterKeyCleanup)
	assert.Equal(t, 1, stats.AfterDedup)
}

func TestFactBuildDropsUnresolvedKeys(t *testing.T) {
	b, err := NewFactBuilder(zap.NewNop())
	require.NoError(t, err)

	date := time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC)
	unknownDate := time.Date(2012, 1, 1, 8, 0, 0, 0, time.UTC)

	missingCustomer := factInput("536366", "85123A", 6, 99999, "United Kingdom", date)
	missingProduct := factInput("536367", "UNKNOWN", 6, 17850, "United Kingdom", date)
	missingCountry := factInput("536368", "85123A", 6, 17850, "Narnia", date)
	missingTime := factInput("536369", "85123A", 6, 17850, "United Kingdom", unknownDate)
	nullCustomer := factInput("536370", "85123A", 6, 0, "United Kingdom", date)
	nullCustomer.CustomerID = sql.NullInt64{}

	facts, stats := b.Build([]model.StagingRecord{
		factInput("536365", "85123A", 6, 17850, "United Kingdom", date),
		missingCustomer,
		missingProduct,
		missingCountry,
		missingTime,
		nullCustomer,
	}, fullRegistry())

	assert.Len(t, facts, 1)
	assert.Equal(t, 6, stats.InputRows)
	assert.Equal(t, 5, stats.DroppedMissingKeys)
	assert.Equal(t, 1, stats.AfterKeyCleanup)
}

func TestFactBuildDeduplicates(t *testing.T) {
	b, err := NewFactBuilder(zap.NewNop())
	require.NoError(t, err)

	date := time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC)
	first := factInput("536365", "85123A", 6, 17850, "United Kingdom", date)
	dup := factInput("536365", "85123A", 12, 17850, "United Kingdom", date)
	otherProduct := factInput("536365", "71053", 6, 17850, "United Kingdom", date)

	facts, stats := b.Build([]model.StagingRecord{first, dup, otherProduct}, fullRegistry())

	require.Len(t, facts, 2)
	assert.Equal(t, int64(6), facts[0].Quantity) // first occurrence wins
	assert.Equal(t, 1, stats.DuplicatesRemoved)
	assert.Equal(t, 3, stats.AfterKeyCleanup)
	assert.Equal(t, 2, stats.AfterDedup)
}

func TestFactBuildCarriesReturnFlag(t *testing.T) {
	b, err := NewFactBuilder(zap.NewNop())
	require.NoError(t, err)

	date := time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC)
	ret := factInput("C536365", "85123A", -6, 17850, "United Kingdom", date)
	ret.IsReturn = true
	ret.TotalAmount = -15.30

	facts, _ := b.Build([]model.StagingRecord{ret}, fullRegistry())

	require.Len(t, facts, 1)
	assert.True(t, facts[0].IsReturn)
	assert.InDelta(t, -15.30, facts[0].TotalAmount, 1e-9)
}

func TestFactBuildEmptyInput(t *testing.T) {
	b, err := NewFactBuilder(zap.NewNop())
	require.NoError(t, err)

	facts, stats := b.Build(nil, model.NewKeyRegistry())
	assert.Empty(t, facts)
	assert.Zero(t, stats.InputRows)
}
