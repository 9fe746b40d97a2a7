package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmountMinor(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
		wantErr  bool
	}{
		{"Two decimals", "129.99", 12999, false},
		{"One decimal", "129.9", 12990, false},
		{"No decimals", "129", 12900, false},
		{"Zero", "0", 0, false},
		{"Cents only", "0.50", 50, false},
		{"Whitespace", " 49.00 ", 4900, false},
		{"Negative", "-3.20", -320, false},
		{"Negative cents only", "-0.50", -50, false},
		{"Negative no decimals", "-1", -100, false},
		{"Three decimals", "1.999", 0, true},
		{"Empty", "", 0, true},
		{"Not a number", "abc", 0, true},
		{"Bad fraction", "1.x9", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmountMinor(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormatAmountMinor(t *testing.T) {
	assert.Equal(t, "129.99", FormatAmountMinor(12999))
	assert.Equal(t, "0.50", FormatAmountMinor(50))
	assert.Equal(t, "0.00", FormatAmountMinor(0))
	assert.Equal(t, "49.00", FormatAmountMinor(4900))
	assert.Equal(t, "-3.20", FormatAmountMinor(-320))
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, amount := range []int64{0, 1, 99, 100, 12999, 500000, -50, -12999} {
		got, err := ParseAmountMinor(FormatAmountMinor(amount))
		require.NoError(t, err)
		assert.Equal(t, amount, got)
	}
}

func TestKnownCurrency(t *testing.T) {
	assert.True(t, KnownCurrency("USD"))
	assert.True(t, KnownCurrency("usd"))
	assert.True(t, KnownCurrency(" eur "))
	assert.False(t, KnownCurrency("JPY"), "zero-decimal currencies are not sold")
	assert.False(t, KnownCurrency(""))
}

func TestNormalizeCurrency(t *testing.T) {
	assert.Equal(t, "USD", NormalizeCurrency(" usd "))
	assert.Equal(t, "EUR", NormalizeCurrency("EUR"))
}
