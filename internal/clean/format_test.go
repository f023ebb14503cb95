package clean

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var frenchFormats = []NumberFormat{
	{DecimalSep: ',', GroupingSep: ' '},
	{DecimalSep: '.', GroupingSep: ','},
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
		ok   bool
	}{
		{"space grouped", "137 640", 137640, true},
		{"nbsp grouped", "137\u00a0640", 137640, true},
		{"comma decimal", "137640,50", 137640.50, true},
		{"grouped with decimal", "1 137 640,50", 1137640.50, true},
		{"plain integer", "1500", 1500, true},
		{"second format dot decimal", "1,137,640.50", 1137640.50, true},
		{"negative", "-42,5", -42.5, true},
		{"empty", "", 0, false},
		{"words", "sur demande", 0, false},
		{"currency glued", "1500 EUR", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.raw, frenchFormats)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 0.0001)
			}
		})
	}
}

func TestParseNumberFirstFormatWins(t *testing.T) {
	// "1,5" is 1.5 under the comma-decimal format even though the second
	// format would read the comma as grouping.
	got, ok := ParseNumber("1,5", frenchFormats)
	require.True(t, ok)
	assert.InDelta(t, 1.5, got, 0.0001)
}

func TestParseInt(t *testing.T) {
	n, ok := ParseInt("12", frenchFormats)
	require.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = ParseInt("12,5", frenchFormats)
	assert.False(t, ok)

	_, ok = ParseInt("douze", frenchFormats)
	assert.False(t, ok)
}

func TestParseDate(t *testing.T) {
	layouts := []string{"2006-01-02", "02-01-2006"}

	// An ISO date parses with the first layout.
	got, ok := ParseDate("2020-01-05", layouts)
	require.True(t, ok)
	assert.Equal(t, time.Date(2020, 1, 5, 0, 0, 0, 0, time.UTC), got)

	// A day-first date fails the ISO layout and falls through to the
	// second.
	got, ok = ParseDate("05-01-2020", layouts)
	require.True(t, ok)
	assert.Equal(t, time.Date(2020, 1, 5, 0, 0, 0, 0, time.UTC), got)

	_, ok = ParseDate("not a date", layouts)
	assert.False(t, ok)

	_, ok = ParseDate("", layouts)
	assert.False(t, ok)
}

func TestParseDateLayoutOrderMatters(t *testing.T) {
	// "05-01-2020" is ambiguous; declaration order decides.
	got, ok := ParseDate("05-01-2020", []string{"01-02-2006"})
	require.True(t, ok)
	assert.Equal(t, time.May, got.Month())
}

func TestParseBool(t *testing.T) {
	for _, raw := range []string{"true", "TRUE", "1", " t "} {
		v, ok := ParseBool(raw)
		require.True(t, ok, raw)
		assert.True(t, v, raw)
	}
	for _, raw := range []string{"false", "0", "F"} {
		v, ok := ParseBool(raw)
		require.True(t, ok, raw)
		assert.False(t, v, raw)
	}
	for _, raw := range []string{"", "oui", "yes please"} {
		_, ok := ParseBool(raw)
		assert.False(t, ok, raw)
	}
}
