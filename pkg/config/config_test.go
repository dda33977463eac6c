package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_USER", "postgres")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "data/raw/online_retail_II.xlsx", cfg.SourcePath)
	assert.Equal(t, 5000, cfg.BatchSize)
	assert.Equal(t, "data/quality_reports", cfg.ReportDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)

	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "retail_dw", cfg.Postgres.Database)
	assert.Equal(t, "disable", cfg.Postgres.SSLMode)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_USER", "etl")
	t.Setenv("DB_HOST", "warehouse.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DATA_SOURCE_PATH", "/data/export.xlsx")
	t.Setenv("BATCH_SIZE", "1000")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "warehouse.internal", cfg.Postgres.Host)
	assert.Equal(t, 5433, cfg.Postgres.Port)
	assert.Equal(t, "/data/export.xlsx", cfg.SourcePath)
	assert.Equal(t, 1000, cfg.BatchSize)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadConfigRequiresUser(t *testing.T) {
	t.Setenv("DB_USER", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_USER")
}

func TestLoadConfigInvalidIntFallsBack(t *testing.T) {
	t.Setenv("DB_USER", "postgres")
	t.Setenv("BATCH_SIZE", "lots")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.BatchSize)
}

func TestValidate(t *testing.T) {
	valid := &Config{
		Postgres:   &PostgresConfig{},
		SourcePath: "data.xlsx",
		BatchSize:  5000,
	}
	assert.NoError(t, valid.Validate())

	noPostgres := &Config{SourcePath: "data.xlsx", BatchSize: 5000}
	assert.Error(t, noPostgres.Validate())

	noSource := &Config{Postgres: &PostgresConfig{}, BatchSize: 5000}
	assert.Error(t, noSource.Validate())

	badBatch := &Config{Postgres: &PostgresConfig{}, SourcePath: "data.xlsx"}
	assert.Error(t, badBatch.Validate())
}

func TestConnectionString(t *testing.T) {
	cfg := &PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "etl",
		Password: "secret",
		Database: "retail_dw",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=etl password=secret dbname=retail_dw sslmode=disable",
		cfg.ConnectionString())
}
