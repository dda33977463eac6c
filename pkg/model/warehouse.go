// pkg/model/warehouse.go
package model

import (
	"database/sql"
	"time"
)

// DimTime is one row of the time dimension: one entry per distinct calendar
// date present in staging. The surrogate key is assigned on load.
type DimTime struct {
	TimeKey    int64     `db:"time_key"`
	DateValue  time.Time `db:"date_value"`
	Year       int       `db:"year"`
	Month      int       `db:"month"`
	MonthName  string    `db:"month_name"`
	Quarter    int       `db:"quarter"`
	DayOfMonth int       `db:"day_of_month"`
	DayOfWeek  int       `db:"day_of_week"` // 1=Monday .. 7=Sunday
	DayName    string    `db:"day_name"`
	IsWeekend  bool      `db:"is_weekend"`
}

// DimCountry is one row per distinct non-null country name.
type DimCountry struct {
	CountryKey  int64  `db:"country_key"`
	CountryName string `db:"country_name"`
}

// DimProduct is one row per distinct stock code. Description is the most
// frequently observed description for the code, falling back to the first
// observed value.
type DimProduct struct {
	ProductKey  int64          `db:"product_key"`
	StockCode   string         `db:"stock_code"`
	Description sql.NullString `db:"description"`
}

// DimCustomer is one row per distinct customer identifier. CountryKey is
// null only when the customer's country could not be resolved.
type DimCustomer struct {
	CustomerKey int64         `db:"customer_key"`
	CustomerID  int64         `db:"customer_id"`
	CountryKey  sql.NullInt64 `db:"country_key"`
}

// FactSale is one retained transaction line in the fact table, unique on
// (invoice_no, product_key, time_key). Rows with unresolved dimension keys
// are dropped before load, never retained as orphans.
type FactSale struct {
	InvoiceNo   string  `db:"invoice_no"`
	ProductKey  int64   `db:"product_key"`
	CustomerKey int64   `db:"customer_key"`
	TimeKey     int64   `db:"time_key"`
	CountryKey  int64   `db:"country_key"`
	Quantity    int64   `db:"quantity"`
	UnitPrice   float64 `db:"unit_price"`
	TotalAmount float64 `db:"total_amount"`
	IsReturn    bool    `db:"is_return"`
}
