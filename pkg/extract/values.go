// pkg/extract/values.go
package extract

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Timestamp layouts observed in retail export spreadsheets, most common
// first.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"1/2/06 15:04",
	"1/2/2006 15:04",
	"01/02/2006 15:04:05",
	"2006-01-02",
}

// isNullCell determines if a cell value should be treated as NULL
func isNullCell(value string) bool {
	switch strings.TrimSpace(value) {
	case "", "null", "NULL", "nil", "NIL", "NaN", "nan", "N/A":
		return true
	}
	return false
}

// parseNullString converts a cell to a nullable string
func parseNullString(value string) sql.NullString {
	if isNullCell(value) {
		return sql.NullString{}
	}
	return sql.NullString{String: strings.TrimSpace(value), Valid: true}
}

// parseNullInt converts a cell to a nullable integer. Spreadsheet numeric
// cells often round-trip as floats ("17850.0"), so float parsing is the
// fallback.
func parseNullInt(value string) (sql.NullInt64, error) {
	if isNullCell(value) {
		return sql.NullInt64{}, nil
	}

	trimmed := strings.TrimSpace(value)
	if intVal, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return sql.NullInt64{Int64: intVal, Valid: true}, nil
	}

	floatVal, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return sql.NullInt64{}, fmt.Errorf("cannot convert %q to integer", value)
	}
	return sql.NullInt64{Int64: int64(floatVal), Valid: true}, nil
}

// parseNullFloat converts a cell to a nullable float
func parseNullFloat(value string) (sql.NullFloat64, error) {
	if isNullCell(value) {
		return sql.NullFloat64{}, nil
	}

	floatVal, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return sql.NullFloat64{}, fmt.Errorf("cannot convert %q to numeric", value)
	}
	return sql.NullFloat64{Float64: floatVal, Valid: true}, nil
}

// parseQuantity converts a cell to an integer quantity. Quantities may be
// negative (returns) but never null in the source export.
func parseQuantity(value string) (int64, error) {
	parsed, err := parseNullInt(value)
	if err != nil {
		return 0, err
	}
	if !parsed.Valid {
		return 0, fmt.Errorf("quantity cell is empty")
	}
	return parsed.Int64, nil
}

// parseTimestamp converts a cell to a timestamp, trying known layouts and
// the Excel serial-number representation.
func parseTimestamp(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if isNullCell(trimmed) {
		return time.Time{}, nil
	}

	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return ts, nil
		}
	}

	// Excel stores dates as days since 1899-12-30
	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil {
		epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
		days := int(serial)
		frac := serial - float64(days)
		return epoch.AddDate(0, 0, days).
			Add(time.Duration(frac * 24 * float64(time.Hour))), nil
	}

	return time.Time{}, fmt.Errorf("cannot parse timestamp %q", value)
}
