package offer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestConvertShort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		amount     string
		price      string
		wantAmount int64
		wantPrice  string
		wantErr    error
	}{
		{name: "whole amount", amount: "100", price: "2", wantAmount: 1_000_000_000, wantPrice: "2"},
		{name: "max fractional digits", amount: "0.0000001", price: "1.5", wantAmount: 1, wantPrice: "1.5"},
		{name: "seven digits exact", amount: "1.1234567", price: "3", wantAmount: 11_234_567, wantPrice: "3"},
		{name: "eight digits rejected", amount: "1.12345678", price: "3", wantErr: ErrNonIntegralAtScale},
		{name: "overflow", amount: "922337203685.4775808", price: "1", wantErr: ErrAmountOverflow},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gotAmount, gotPrice, err := convert(mustDecimal(t, tt.amount), mustDecimal(t, tt.price), DirectionShort)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, gotAmount)
			assert.Equal(t, tt.wantPrice, gotPrice)
		})
	}
}

func TestConvertLong(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		amount     string
		price      string
		wantAmount int64
		wantPrice  string
		wantErr    error
	}{
		{name: "whole numbers", amount: "100", price: "2", wantAmount: 2_000_000_000, wantPrice: "0.5"},
		{name: "repeating inverse", amount: "3", price: "3", wantAmount: 90_000_000, wantPrice: "0.3333333333333333"},
		{name: "half even rounds down to even", amount: "0.25", price: "0.000001", wantAmount: 2, wantPrice: "1000000"},
		{name: "half even rounds up to even", amount: "0.35", price: "0.000001", wantAmount: 4, wantPrice: "1000000"},
		{name: "zero price", amount: "100", price: "0", wantErr: ErrDivisionByZero},
		{name: "overflow", amount: "922337203686", price: "1", wantErr: ErrAmountOverflow},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gotAmount, gotPrice, err := convert(mustDecimal(t, tt.amount), mustDecimal(t, tt.price), DirectionLong)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, gotAmount)
			assert.Equal(t, tt.wantPrice, gotPrice)
		})
	}
}

func TestInvertPriceRoundTrip(t *testing.T) {
	t.Parallel()

	one := decimal.New(1, 0)
	tolerance := decimal.RequireFromString("0.000000000000001") // 1e-15 relative

	for _, s := range []string{"2", "3", "0.5", "0.0000001", "1234.5678", "7", "0.003", "999999.9999999"} {
		price := mustDecimal(t, s)
		inverted := invertPrice(price)

		product := inverted.Mul(price)
		relErr := product.Sub(one).Abs()
		assert.True(t, relErr.LessThanOrEqual(tolerance), "price %s: 1/p * p = %s", s, product)
	}
}

func TestInvertPriceSignificantDigits(t *testing.T) {
	t.Parallel()

	// 16 significant digits regardless of magnitude
	assert.Equal(t, "0.3333333333333333", invertPrice(mustDecimal(t, "3")).String())
	assert.Equal(t, "0.0003333333333333333", invertPrice(mustDecimal(t, "3000")).String())
	assert.Equal(t, "10000000", invertPrice(mustDecimal(t, "0.0000001")).String())
}
