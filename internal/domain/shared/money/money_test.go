package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesCurrency(t *testing.T) {
	m, err := New(500, "inr")
	require.NoError(t, err)
	assert.Equal(t, "INR", m.Currency)
	assert.Equal(t, int64(500), m.Amount)

	_, err = New(500, "rupees")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
	_, err = New(500, "")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestArithmeticRequiresMatchingCurrency(t *testing.T) {
	a := Rupees(1000)
	b := Rupees(250)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), sum.Amount)

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, int64(750), diff.Amount)

	_, err = a.Add(Must(100, "USD"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
	_, err = a.Sub(Money{Amount: 10})
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestMultiplyAndNeg(t *testing.T) {
	m := Rupees(2000)
	assert.Equal(t, int64(6000), m.Multiply(3).Amount)
	assert.Equal(t, int64(-2000), m.Neg().Amount)
	assert.Equal(t, DefaultCurrency, m.Neg().Currency)
}

func TestPercentRoundHalfUp(t *testing.T) {
	cases := []struct {
		amount  int64
		percent int64
		want    int64
	}{
		{6700, 18, 1206},  // exact
		{12600, 18, 2268}, // exact
		{105, 10, 11},     // 10.5 rounds up
		{104, 10, 10},     // 10.4 rounds down
		{1, 50, 1},        // 0.5 rounds up
		{333, 3, 10},      // 9.99 rounds up
		{0, 18, 0},
		{500, 0, 0},
	}
	for _, tc := range cases {
		got := Rupees(tc.amount).PercentRoundHalfUp(tc.percent)
		assert.Equal(t, tc.want, got.Amount, "%d @ %d%%", tc.amount, tc.percent)
		assert.Equal(t, DefaultCurrency, got.Currency)
	}
}

func TestPercentOfNegativeAmountIsZero(t *testing.T) {
	got := Rupees(-100).PercentRoundHalfUp(10)
	assert.True(t, got.IsZero())
}
