package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"

	"github.com/retaildw/pipeline/pkg/config"
)

func TestBuildLogger(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{"json info", "info", "json"},
		{"console debug", "debug", "console"},
		{"warn", "warn", "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{LogLevel: tt.level, LogFormat: tt.format}
			logger, err := buildLogger(cfg)
			require.NoError(t, err)
			require.NotNil(t, logger)
			logger.Sync()
		})
	}
}

func TestBuildLoggerInvalidLevel(t *testing.T) {
	cfg := &config.Config{LogLevel: "loud", LogFormat: "json"}
	_, err := buildLogger(cfg)
	assert.Error(t, err)
}

func TestBuildLoggerLevelGate(t *testing.T) {
	cfg := &config.Config{LogLevel: "error", LogFormat: "json"}
	logger, err := buildLogger(cfg)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.ErrorLevel))
}
