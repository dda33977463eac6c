// pkg/connector/schema.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// warehouseTables maps each warehouse table to its CREATE TABLE body. Order
// matters: dimensions before the fact table so the foreign keys resolve.
var warehouseTables = []struct {
	name string
	ddl  string
}{
	{"raw_retail_data", `
		invoice TEXT,
		stock_code TEXT,
		description TEXT,
		quantity BIGINT,
		invoice_date TIMESTAMP,
		price NUMERIC(10,2),
		customer_id BIGINT,
		country TEXT,
		total_amount NUMERIC(12,2),
		is_return BOOLEAN NOT NULL DEFAULT FALSE,
		price_flag BOOLEAN NOT NULL DEFAULT FALSE,
		quantity_flag BOOLEAN NOT NULL DEFAULT FALSE,
		processed_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP`},
	{"dim_time", `
		time_key BIGSERIAL PRIMARY KEY,
		date_value DATE NOT NULL UNIQUE,
		year INT NOT NULL,
		month INT NOT NULL,
		month_name TEXT NOT NULL,
		quarter INT NOT NULL,
		day_of_month INT NOT NULL,
		day_of_week INT NOT NULL,
		day_name TEXT NOT NULL,
		is_weekend BOOLEAN NOT NULL`},
	{"dim_country", `
		country_key BIGSERIAL PRIMARY KEY,
		country_name TEXT NOT NULL UNIQUE`},
	{"dim_product", `
		product_key BIGSERIAL PRIMARY KEY,
		stock_code TEXT NOT NULL UNIQUE,
		description TEXT`},
	{"dim_customer", `
		customer_key BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL UNIQUE,
		country_key BIGINT REFERENCES dim_country(country_key)`},
	{"fact_sales", `
		invoice_no TEXT NOT NULL,
		product_key BIGINT NOT NULL REFERENCES dim_product(product_key),
		customer_key BIGINT REFERENCES dim_customer(customer_key),
		time_key BIGINT NOT NULL REFERENCES dim_time(time_key),
		country_key BIGINT REFERENCES dim_country(country_key),
		quantity BIGINT NOT NULL,
		unit_price NUMERIC(10,2) NOT NULL,
		total_amount NUMERIC(12,2) NOT NULL,
		is_return BOOLEAN NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (invoice_no, product_key, time_key)`},
}

// EnsureWarehouseSchema creates any warehouse table that does not exist.
// Existing tables are left untouched so reloads preserve their constraints.
func (c *PostgresConnector) EnsureWarehouseSchema(ctx context.Context) error {
	for _, t := range warehouseTables {
		var exists bool
		query := `
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_schema = 'public' AND table_name = $1
			)
		`

		if err := c.db.QueryRowContext(ctx, query, t.name).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check if table %s exists: %w", t.name, err)
		}

		if exists {
			c.logger.Debug("Table already exists", zap.String("table", t.name))
			continue
		}

		createSQL := fmt.Sprintf("CREATE TABLE %s (%s\n)", t.name, t.ddl)
		if _, err := c.db.ExecContext(ctx, createSQL); err != nil {
			return fmt.Errorf("failed to create table %s: %w", t.name, err)
		}

		c.logger.Info("Created table", zap.String("table", t.name))
	}

	return nil
}
