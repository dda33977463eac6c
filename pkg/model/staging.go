// pkg/model/staging.go
package model

import (
	"database/sql"
	"time"
)

// StagingRecord is one retail transaction line as it sits in the staging
// table. A record is uniquely identified by (invoice, stock_code,
// invoice_date) after deduplication.
type StagingRecord struct {
	Invoice     string          `db:"invoice"`
	StockCode   string          `db:"stock_code"`
	Description sql.NullString  `db:"description"`
	Quantity    int64           `db:"quantity"`
	InvoiceDate time.Time       `db:"invoice_date"`
	UnitPrice   sql.NullFloat64 `db:"price"`
	CustomerID  sql.NullInt64   `db:"customer_id"`
	Country     sql.NullString  `db:"country"`

	// Derived by the staging cleaner.
	TotalAmount  float64   `db:"total_amount"`
	IsReturn     bool      `db:"is_return"`
	PriceFlag    bool      `db:"price_flag"`
	QuantityFlag bool      `db:"quantity_flag"`
	ProcessedAt  time.Time `db:"processed_at"`
}

// DedupKey returns the natural identity of a staging record, used for
// first-occurrence deduplication.
func (r StagingRecord) DedupKey() string {
	return r.Invoice + "|" + r.StockCode + "|" + r.InvoiceDate.Format("2006-01-02 15:04:05")
}

// CleanStats summarizes one pass of the staging cleaner.
type CleanStats struct {
	InitialRows       int
	FinalRows         int
	RowsDropped       int
	DropRate          float64 // percentage, rounded to 2 decimals
	NullDrops         int
	InvalidPriceCount int
	HighQuantityCount int
	ReturnCount       int
	DuplicatesRemoved int
}
