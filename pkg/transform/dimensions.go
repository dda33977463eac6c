// pkg/transform/dimensions.go
package transform

import (
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/retaildw/pipeline/pkg/model"
)

// DimensionBuilder derives the four dimension datasets from cleaned staging
// rows. Each dimension builds independently; only the customer dimension
// needs country surrogate keys, so country must be loaded first.
type DimensionBuilder struct {
	logger *zap.Logger
}

// NewDimensionBuilder creates a new DimensionBuilder instance
func NewDimensionBuilder(logger *zap.Logger) (*DimensionBuilder, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &DimensionBuilder{logger: logger.Named("transform")}, nil
}

// BuildTimeDimension creates one row per distinct calendar date, truncating
// invoice timestamps to dates. All date-part attributes derive
// deterministically from the date.
func (b *DimensionBuilder) BuildTimeDimension(records []model.StagingRecord) []model.DimTime {
	seen := make(map[string]struct{})
	dims := make([]model.DimTime, 0)

	for _, rec := range records {
		date := truncateToDate(rec.InvoiceDate)
		key := date.Format(model.DateKeyFormat)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		dims = append(dims, newDimTime(date))
	}

	b.logger.Info("Built time dimension", zap.Int("rows", len(dims)))
	return dims
}

// BuildCountryDimension creates one row per distinct non-null country name.
func (b *DimensionBuilder) BuildCountryDimension(records []model.StagingRecord) []model.DimCountry {
	seen := make(map[string]struct{})
	dims := make([]model.DimCountry, 0)

	for _, rec := range records {
		if !rec.Country.Valid {
			continue
		}
		name := rec.Country.String
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		dims = append(dims, model.DimCountry{CountryName: name})
	}

	b.logger.Info("Built country dimension", zap.Int("rows", len(dims)))
	return dims
}

// BuildProductDimension creates one row per distinct stock code. The
// description is the mode of all observed descriptions for the code; ties
// break by first-seen order, and codes with no non-null description fall
// back to the first observed value.
func (b *DimensionBuilder) BuildProductDimension(records []model.StagingRecord) []model.DimProduct {
	type productAgg struct {
		order  int
		first  sql.NullString
		counts map[string]int
		seenAt map[string]int
	}

	aggs := make(map[string]*productAgg)
	codes := make([]string, 0)

	for i, rec := range records {
		agg, ok := aggs[rec.StockCode]
		if !ok {
			agg = &productAgg{
				order:  len(codes),
				first:  rec.Description,
				counts: make(map[string]int),
				seenAt: make(map[string]int),
			}
			aggs[rec.StockCode] = agg
			codes = append(codes, rec.StockCode)
		}
		if rec.Description.Valid {
			if _, seen := agg.seenAt[rec.Description.String]; !seen {
				agg.seenAt[rec.Description.String] = i
			}
			agg.counts[rec.Description.String]++
		}
	}

	dims := make([]model.DimProduct, 0, len(codes))
	for _, code := range codes {
		agg := aggs[code]
		dims = append(dims, model.DimProduct{
			StockCode:   code,
			Description: resolveDescription(agg.first, agg.counts, agg.seenAt),
		})
	}

	b.logger.Info("Built product dimension", zap.Int("rows", len(dims)))
	return dims
}

// resolveDescription picks the most frequent description, breaking ties and
// the no-mode case by first-seen order.
func resolveDescription(first sql.NullString, counts map[string]int, seenAt map[string]int) sql.NullString {
	if len(counts) == 0 {
		return first
	}

	best := ""
	bestCount := -1
	for desc, count := range counts {
		if count > bestCount || (count == bestCount && seenAt[desc] < seenAt[best]) {
			best = desc
			bestCount = count
		}
	}

	return sql.NullString{String: best, Valid: true}
}

// BuildCustomerDimension creates one row per distinct customer identifier,
// resolving the customer's observed country to a surrogate key. The
// registry must already contain the country keys.
func (b *DimensionBuilder) BuildCustomerDimension(records []model.StagingRecord, reg *model.KeyRegistry) []model.DimCustomer {
	seen := make(map[int64]struct{})
	dims := make([]model.DimCustomer, 0)
	unresolved := 0

	for _, rec := range records {
		if !rec.CustomerID.Valid {
			continue
		}
		id := rec.CustomerID.Int64
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		dim := model.DimCustomer{CustomerID: id}
		if rec.Country.Valid {
			if key, ok := reg.CountryKey(rec.Country.String); ok {
				dim.CountryKey = sql.NullInt64{Int64: key, Valid: true}
			} else {
				unresolved++
			}
		} else {
			unresolved++
		}
		dims = append(dims, dim)
	}

	b.logger.Info("Built customer dimension",
		zap.Int("rows", len(dims)),
		zap.Int("unresolved_countries", unresolved))
	return dims
}

// truncateToDate drops the time-of-day component of a timestamp
func truncateToDate(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}

// newDimTime derives all date-part attributes for one calendar date
func newDimTime(date time.Time) model.DimTime {
	// ISO weekday numbering: 1=Monday .. 7=Sunday
	dayOfWeek := int(date.Weekday())
	if dayOfWeek == 0 {
		dayOfWeek = 7
	}

	return model.DimTime{
		DateValue:  date,
		Year:       date.Year(),
		Month:      int(date.Month()),
		MonthName:  date.Month().String(),
		Quarter:    (int(date.Month())-1)/3 + 1,
		DayOfMonth: date.Day(),
		DayOfWeek:  dayOfWeek,
		DayName:    date.Weekday().String(),
		IsWeekend:  dayOfWeek == 6 || dayOfWeek == 7,
	}
}
