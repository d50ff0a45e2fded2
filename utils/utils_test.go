package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	testCases := []struct {
		name     string
		cents    int64
		currency string
		expected string
	}{
		{name: "usd", cents: 2900, currency: "usd", expected: "$29.00"},
		{name: "uppercase_eur", cents: 99005, currency: "EUR", expected: "€990.05"},
		{name: "default_usd", cents: 5, currency: "", expected: "$0.05"},
		{name: "negative", cents: -1500, currency: "usd", expected: "-$15.00"},
		{name: "unknown_currency", cents: 1234, currency: "chf", expected: "12.34 CHF"},
		{name: "zero_decimal", cents: 500, currency: "jpy", expected: "500 JPY"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatCurrency(tc.cents, tc.currency))
		})
	}
}

func TestFormatRelative(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "just now", FormatRelative(now.Add(-30*time.Second), now))
	assert.Equal(t, "5m ago", FormatRelative(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3h ago", FormatRelative(now.Add(-3*time.Hour), now))
	assert.Equal(t, "2d ago", FormatRelative(now.Add(-49*time.Hour), now))
	assert.Equal(t, "Jan 1, 2026", FormatRelative(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), now))
}

func TestNormalizeDTO(t *testing.T) {
	type item struct {
		Name  string
		Price float64
	}
	dto := struct {
		Key   string
		Items []item
		Note  *string
	}{
		Key:   "  k1 ",
		Items: []item{{Name: " a ", Price: 1.005}},
		Note:  new(string),
	}
	*dto.Note = " hi "

	NormalizeDTO(&dto)

	assert.Equal(t, "k1", dto.Key)
	assert.Equal(t, "a", dto.Items[0].Name)
	assert.InDelta(t, 1.0, dto.Items[0].Price, 0.011)
	assert.Equal(t, "hi", *dto.Note)

	NormalizeDTO(nil)
}

func TestParseIntDefaultAndClamp(t *testing.T) {
	assert.Equal(t, 10, ParseIntDefault(" 10 ", 50))
	assert.Equal(t, 50, ParseIntDefault("x", 50))
	assert.Equal(t, 50, ParseIntDefault("-1", 50))

	assert.Equal(t, 50, ClampLimit(0, 50))
	assert.Equal(t, 50, ClampLimit(500, 50))
	assert.Equal(t, 20, ClampLimit(20, 50))
}

func TestUUIDGenerator(t *testing.T) {
	var g UUIDGenerator
	a, b := g.NewID(), g.NewID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	assert.Equal(t, time.UTC, SystemClock{}.Now().Location())
}
