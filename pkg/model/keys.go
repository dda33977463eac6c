// pkg/model/keys.go
package model

import "time"

// DateKeyFormat is the natural-key representation of a calendar date in the
// key registry.
const DateKeyFormat = "2006-01-02"

// KeyRegistry maps natural keys to the surrogate keys generated during
// dimension load. It is a transient, run-scoped artifact: populated by the
// loader directly from the rows it writes, consumed by the fact builder,
// and discarded after the run.
type KeyRegistry struct {
	time      map[string]int64
	countries map[string]int64
	products  map[string]int64
	customers map[int64]int64
}

// NewKeyRegistry creates an empty key registry.
func NewKeyRegistry() *KeyRegistry {
	return &KeyRegistry{
		time:      make(map[string]int64),
		countries: make(map[string]int64),
		products:  make(map[string]int64),
		customers: make(map[int64]int64),
	}
}

// PutTime registers the surrogate key for a calendar date.
func (kr *KeyRegistry) PutTime(date time.Time, key int64) {
	kr.time[date.Format(DateKeyFormat)] = key
}

// PutCountry registers the surrogate key for a country name.
func (kr *KeyRegistry) PutCountry(name string, key int64) {
	kr.countries[name] = key
}

// PutProduct registers the surrogate key for a stock code.
func (kr *KeyRegistry) PutProduct(stockCode string, key int64) {
	kr.products[stockCode] = key
}

// PutCustomer registers the surrogate key for a customer identifier.
func (kr *KeyRegistry) PutCustomer(customerID, key int64) {
	kr.customers[customerID] = key
}

// TimeKey resolves the surrogate key for the calendar date of ts.
func (kr *KeyRegistry) TimeKey(ts time.Time) (int64, bool) {
	key, ok := kr.time[ts.Format(DateKeyFormat)]
	return key, ok
}

// CountryKey resolves the surrogate key for a country name.
func (kr *KeyRegistry) CountryKey(name string) (int64, bool) {
	key, ok := kr.countries[name]
	return key, ok
}

// ProductKey resolves the surrogate key for a stock code.
func (kr *KeyRegistry) ProductKey(stockCode string) (int64, bool) {
	key, ok := kr.products[stockCode]
	return key, ok
}

// CustomerKey resolves the surrogate key for a customer identifier.
func (kr *KeyRegistry) CustomerKey(customerID int64) (int64, bool) {
	key, ok := kr.customers[customerID]
	return key, ok
}

// TimeCount returns the number of registered dates.
func (kr *KeyRegistry) TimeCount() int { return len(kr.time) }

// CountryCount returns the number of registered countries.
func (kr *KeyRegistry) CountryCount() int { return len(kr.countries) }

// ProductCount returns the number of registered products.
func (kr *KeyRegistry) ProductCount() int { return len(kr.products) }

// CustomerCount returns the number of registered customers.
func (kr *KeyRegistry) CustomerCount() int { return len(kr.customers) }
