package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNullCell(t *testing.T) {
	nulls := []string{"", "  ", "null", "NULL", "nil", "NaN", "nan", "N/A"}
	for _, v := range nulls {
		assert.True(t, isNullCell(v), "expected %q to be null", v)
	}
	assert.False(t, isNullCell("0"))
	assert.False(t, isNullCell("United Kingdom"))
}

func TestParseNullInt(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		valid   bool
		wantErr bool
	}{
		{"plain integer", "17850", 17850, true, false},
		{"float representation", "17850.0", 17850, true, false},
		{"negative", "-24", -24, true, false},
		{"empty cell", "", 0, false, false},
		{"nan cell", "NaN", 0, false, false},
		{"garbage", "abc", 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseNullInt(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.valid, got.Valid)
			assert.Equal(t, tt.want, got.Int64)
		})
	}
}

func TestParseNullFloat(t *testing.T) {
	got, err := parseNullFloat("2.55")
	require.NoError(t, err)
	assert.True(t, got.Valid)
	assert.InDelta(t, 2.55, got.Float64, 1e-9)

	got, err = parseNullFloat("")
	require.NoError(t, err)
	assert.False(t, got.Valid)

	_, err = parseNullFloat("not-a-price")
	assert.Error(t, err)
}

func TestParseQuantity(t *testing.T) {
	got, err := parseQuantity("-6")
	require.NoError(t, err)
	assert.Equal(t, int64(-6), got)

	_, err = parseQuantity("")
	assert.Error(t, err)
}

func TestParseTimestampLayouts(t *testing.T) {
	want := time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"iso datetime", "2010-12-01 08:26:00", want},
		{"t separator", "2010-12-01T08:26:00", want},
		{"short us format", "12/1/10 08:26", want},
		{"date only", "2010-12-01", time.Date(2010, 12, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTimestamp(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestParseTimestampExcelSerial(t *testing.T) {
	// Serial 40513 is 2010-12-01; .5 is noon.
	got, err := parseTimestamp("40513.5")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2010, 12, 1, 12, 0, 0, 0, time.UTC), got)
}

func TestParseTimestampInvalid(t *testing.T) {
	_, err := parseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestParseTimestampNullCell(t *testing.T) {
	got, err := parseTimestamp("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}
