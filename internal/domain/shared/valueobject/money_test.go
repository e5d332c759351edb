package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCurrency(t *testing.T) {
	tests := []struct {
		input   string
		want    Currency
		wantErr bool
	}{
		{"AED", AED, false},
		{"aed", AED, false},
		{" usd ", USD, false},
		{"XXX", Currency("XXX"), false},
		{"ZZZ", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NewCurrency(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCurrency_DecimalPlaces(t *testing.T) {
	tests := []struct {
		currency Currency
		places   int32
	}{
		{AED, 2},
		{USD, 2},
		{EUR, 2},
		{KWD, 3},
		{Currency("BHD"), 3},
		{Currency("OMR"), 3},
		{JPY, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.currency), func(t *testing.T) {
			places, err := tt.currency.DecimalPlaces()
			require.NoError(t, err)
			assert.Equal(t, tt.places, places)
		})
	}
}

func TestMoney_AddSubtract(t *testing.T) {
	a := NewMoneyAEDFromFloat(100.50)
	b := NewMoneyAEDFromFloat(49.50)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.NewFromInt(150)))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount().Equal(decimal.NewFromInt(51)))
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	a := NewMoneyAEDFromFloat(100)
	b, err := NewMoneyFromFloat(100, USD)
	require.NoError(t, err)

	_, err = a.Add(b)
	assert.Error(t, err)

	_, err = a.Subtract(b)
	assert.Error(t, err)

	_, err = a.LessThan(b)
	assert.Error(t, err)
}

func TestMoney_RoundCanonical(t *testing.T) {
	m, err := NewMoneyFromString("123.4567", KWD)
	require.NoError(t, err)
	rounded, err := m.RoundCanonical()
	require.NoError(t, err)
	assert.Equal(t, "123.457", rounded.Amount().String())

	m2, err := NewMoneyFromString("123.456", JPY)
	require.NoError(t, err)
	rounded2, err := m2.RoundCanonical()
	require.NoError(t, err)
	assert.Equal(t, "123", rounded2.Amount().String())
}

func TestMoney_Allocate(t *testing.T) {
	m := NewMoneyAEDFromFloat(100)
	parts, err := m.Allocate(3)
	require.NoError(t, err)
	require.Len(t, parts, 3)

	total := decimal.Zero
	for _, p := range parts {
		total = total.Add(p.Amount())
	}
	assert.True(t, total.Equal(m.Amount()), "parts must sum to original amount")
	assert.Equal(t, "33.33", parts[0].Amount().StringFixed(2))
	assert.Equal(t, "33.34", parts[2].Amount().StringFixed(2), "last part absorbs the remainder")
}

func TestMoney_AllocateInvalidParts(t *testing.T) {
	m := NewMoneyAEDFromFloat(100)
	_, err := m.Allocate(0)
	assert.Error(t, err)
}
