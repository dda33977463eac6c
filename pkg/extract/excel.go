// pkg/extract/excel.go
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/retaildw/pipeline/pkg/model"
)

// Source column headers after normalization. "Customer ID", "Invoice", and
// "Price" vary across retail export versions and are mapped to the
// canonical names below.
const (
	colInvoice     = "InvoiceNo"
	colStockCode   = "StockCode"
	colDescription = "Description"
	colQuantity    = "Quantity"
	colInvoiceDate = "InvoiceDate"
	colUnitPrice   = "UnitPrice"
	colCustomerID  = "CustomerID"
	colCountry     = "Country"
)

// headerAliases maps source spreadsheet headers to canonical column names
var headerAliases = map[string]string{
	"Customer ID": colCustomerID,
	"Invoice":     colInvoice,
	"Price":       colUnitPrice,
}

// requiredColumns must be structurally present or the batch is rejected
var requiredColumns = []string{colInvoice, colStockCode, colInvoiceDate, colCustomerID}

// Extractor reads raw retail transactions from an Excel source file.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates a new Extractor instance
func NewExtractor(logger *zap.Logger) (*Extractor, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Extractor{logger: logger.Named("extract")}, nil
}

// ReadSource reads all transaction rows from the first sheet of the source
// file. The header row is validated against the required staging columns
// before any row is parsed; a missing column is a model.SchemaError.
func (e *Extractor) ReadSource(filePath string) ([]model.StagingRecord, error) {
	e.logger.Info("Starting extraction", zap.String("path", filePath))

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("source file contains no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, errors.New("source sheet is empty")
	}

	columnIndex, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]model.StagingRecord, 0, len(rows)-1)
	parseFailures := 0

	for i, row := range rows[1:] {
		rec, err := parseRow(row, columnIndex)
		if err != nil {
			// A malformed row is logged and skipped, not fatal: the
			// cleaner's statistics account only for structurally valid rows.
			parseFailures++
			e.logger.Warn("Skipping unparseable row",
				zap.Int("row", i+2),
				zap.Error(err))
			continue
		}
		records = append(records, rec)
	}

	e.logger.Info("Extraction completed",
		zap.Int("rows_read", len(records)),
		zap.Int("parse_failures", parseFailures))

	return records, nil
}

// mapHeader validates the header row and returns canonical name -> column
// index
func mapHeader(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if canonical, ok := headerAliases[name]; ok {
			name = canonical
		}
		index[name] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &model.SchemaError{Missing: missing}
	}

	return index, nil
}

// cell returns the trimmed cell value for a canonical column, tolerating
// short rows
func cell(row []string, index map[string]int, col string) string {
	i, ok := index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// parseRow converts one spreadsheet row into a staging record
func parseRow(row []string, index map[string]int) (model.StagingRecord, error) {
	var rec model.StagingRecord

	rec.Invoice = strings.TrimSpace(cell(row, index, colInvoice))
	rec.StockCode = strings.TrimSpace(cell(row, index, colStockCode))
	rec.Description = parseNullString(cell(row, index, colDescription))
	rec.Country = parseNullString(cell(row, index, colCountry))

	quantity, err := parseQuantity(cell(row, index, colQuantity))
	if err != nil {
		return rec, fmt.Errorf("quantity: %w", err)
	}
	rec.Quantity = quantity

	invoiceDate, err := parseTimestamp(cell(row, index, colInvoiceDate))
	if err != nil {
		return rec, fmt.Errorf("invoice date: %w", err)
	}
	rec.InvoiceDate = invoiceDate

	unitPrice, err := parseNullFloat(cell(row, index, colUnitPrice))
	if err != nil {
		return rec, fmt.Errorf("unit price: %w", err)
	}
	rec.UnitPrice = unitPrice

	customerID, err := parseNullInt(cell(row, index, colCustomerID))
	if err != nil {
		return rec, fmt.Errorf("customer id: %w", err)
	}
	rec.CustomerID = customerID

	return rec, nil
}
