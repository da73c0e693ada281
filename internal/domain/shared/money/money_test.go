package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNormalizesCurrency(t *testing.T) {
	m, err := New(decimal.NewFromInt(10), "usd")
	require.NoError(t, err)
	assert.Equal(t, "USD", m.Currency)

	_, err = New(decimal.NewFromInt(10), "US")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestArithmetic(t *testing.T) {
	a := USD("100")
	b := USD("12.5")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Equal(USD("112.5")))

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.True(t, diff.Equal(USD("87.5")))

	assert.True(t, a.Multiply(3).Equal(USD("300")))
	assert.True(t, a.Neg().Equal(USD("-100")))
	assert.True(t, a.Neg().IsNegative())
	assert.True(t, Zero(Canonical).IsZero())
}

func TestPercentKeepsPrecision(t *testing.T) {
	got := USD("99.99").Percent(decimal.NewFromInt(15))
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("14.9985")), "got %s", got.Amount)
}

func TestCurrencyMismatch(t *testing.T) {
	eur := Must(decimal.NewFromInt(1), "EUR")
	_, err := USD("1").Add(eur)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = USD("1").Sub(Money{Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestParseUSD(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"integer", "100", "100", false},
		{"decimal", "10.50", "10.5", false},
		{"blank is zero", "  ", "0", false},
		{"garbage", "abc", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUSD(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Amount.Equal(decimal.RequireFromString(tt.want)))
			assert.Equal(t, Canonical, got.Currency)
		})
	}
}
