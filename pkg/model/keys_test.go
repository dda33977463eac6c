package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyRegistryTimeKeysIgnoreTimeOfDay(t *testing.T) {
	reg := NewKeyRegistry()
	reg.PutTime(time.Date(2010, 12, 1, 0, 0, 0, 0, time.UTC), 42)

	key, ok := reg.TimeKey(time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC))
	assert.True(t, ok)
	assert.Equal(t, int64(42), key)

	_, ok = reg.TimeKey(time.Date(2010, 12, 2, 8, 26, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestKeyRegistryLookups(t *testing.T) {
	reg := NewKeyRegistry()
	reg.PutCountry("United Kingdom", 1)
	reg.PutProduct("85123A", 7)
	reg.PutCustomer(17850, 3)

	key, ok := reg.CountryKey("United Kingdom")
	assert.True(t, ok)
	assert.Equal(t, int64(1), key)

	key, ok = reg.ProductKey("85123A")
	assert.True(t, ok)
	assert.Equal(t, int64(7), key)

	key, ok = reg.CustomerKey(17850)
	assert.True(t, ok)
	assert.Equal(t, int64(3), key)

	_, ok = reg.CountryKey("France")
	assert.False(t, ok)
	_, ok = reg.ProductKey("00000")
	assert.False(t, ok)
	_, ok = reg.CustomerKey(1)
	assert.False(t, ok)
}

func TestKeyRegistryCounts(t *testing.T) {
	reg := NewKeyRegistry()
	assert.Zero(t, reg.TimeCount())

	reg.PutTime(time.Date(2010, 12, 1, 0, 0, 0, 0, time.UTC), 1)
	reg.PutTime(time.Date(2010, 12, 1, 0, 0, 0, 0, time.UTC), 1) // same date
	reg.PutCountry("United Kingdom", 1)
	reg.PutProduct("85123A", 1)
	reg.PutProduct("71053", 2)
	reg.PutCustomer(17850, 1)

	assert.Equal(t, 1, reg.TimeCount())
	assert.Equal(t, 1, reg.CountryCount())
	assert.Equal(t, 2, reg.ProductCount())
	assert.Equal(t, 1, reg.CustomerCount())
}

func TestStagingRecordDedupKey(t *testing.T) {
	date := time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC)
	a := StagingRecord{Invoice: "536365", StockCode: "85123A", InvoiceDate: date}
	b := StagingRecord{Invoice: "536365", StockCode: "85123A", InvoiceDate: date}
	c := StagingRecord{Invoice: "536365", StockCode: "71053", InvoiceDate: date}
	d := StagingRecord{Invoice: "536365", StockCode: "85123A",
		InvoiceDate: date.Add(time.Minute)}

	assert.Equal(t, a.DedupKey(), b.DedupKey())
	assert.NotEqual(t, a.DedupKey(), c.DedupKey())
	assert.NotEqual(t, a.DedupKey(), d.DedupKey())
}
