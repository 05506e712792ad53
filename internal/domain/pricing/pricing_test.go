package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staynest/internal/domain/property"
	"staynest/internal/domain/shared/money"
)

func schedule() property.PricingSchedule {
	return property.PricingSchedule{
		BasePrice:         money.Rupees(2000),
		CleaningFee:       money.Rupees(500),
		ServiceFee:        money.Rupees(200),
		TaxRatePercent:    18,
		MinimumStayNights: 1,
	}
}

func TestQuoteNoDiscount(t *testing.T) {
	got, err := Quote(schedule(), 3, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, got.Nights)
	assert.Equal(t, int64(2000), got.BasePrice.Amount)
	assert.Equal(t, int64(6000), got.BaseTotal.Amount)
	assert.Equal(t, DiscountNone, got.DiscountType)
	assert.True(t, got.DiscountAmount.IsZero())
	assert.Equal(t, int64(500), got.CleaningFee.Amount)
	assert.Equal(t, int64(200), got.ServiceFee.Amount)
	assert.Equal(t, 18, got.TaxRatePercent)
	assert.Equal(t, int64(1206), got.TaxAmount.Amount)
	assert.Equal(t, int64(7906), got.Total.Amount)
}

func TestQuoteWeeklyDiscount(t *testing.T) {
	s := schedule()
	s.WeeklyDiscountPercent = 10

	got, err := Quote(s, 7, 2)
	require.NoError(t, err)

	assert.Equal(t, int64(14000), got.BaseTotal.Amount)
	assert.Equal(t, DiscountWeekly, got.DiscountType)
	assert.Equal(t, int64(1400), got.DiscountAmount.Amount)
	assert.Equal(t, int64(2394), got.TaxAmount.Amount)
	assert.Equal(t, int64(15694), got.Total.Amount)
}

func TestQuoteMonthlyBeatsWeekly(t *testing.T) {
	s := schedule()
	s.WeeklyDiscountPercent = 10
	s.MonthlyDiscountPercent = 20

	got, err := Quote(s, 28, 2)
	require.NoError(t, err)

	assert.Equal(t, DiscountMonthly, got.DiscountType)
	assert.Equal(t, int64(11200), got.DiscountAmount.Amount, "20%% of 56000")
}

func TestQuoteWeeklyAppliesFromSevenNights(t *testing.T) {
	s := schedule()
	s.WeeklyDiscountPercent = 10

	six, err := Quote(s, 6, 1)
	require.NoError(t, err)
	assert.Equal(t, DiscountNone, six.DiscountType)

	seven, err := Quote(s, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, DiscountWeekly, seven.DiscountType)
}

func TestQuoteZeroPercentTierIsSkipped(t *testing.T) {
	s := schedule()
	s.MonthlyDiscountPercent = 0
	s.WeeklyDiscountPercent = 10

	got, err := Quote(s, 30, 2)
	require.NoError(t, err)
	assert.Equal(t, DiscountWeekly, got.DiscountType, "monthly tier with 0%% falls through to weekly")
}

func TestQuoteDeterministic(t *testing.T) {
	s := schedule()
	s.WeeklyDiscountPercent = 10

	first, err := Quote(s, 7, 3)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Quote(s, 7, 3)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestQuoteRejectsBadInput(t *testing.T) {
	_, err := Quote(schedule(), 0, 2)
	assert.ErrorIs(t, err, ErrInvalidNights)

	_, err = Quote(property.PricingSchedule{}, 3, 2)
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestQuoteFeesWithoutCurrencyInheritBase(t *testing.T) {
	s := schedule()
	s.CleaningFee = money.Money{Amount: 0}
	s.ServiceFee = money.Money{Amount: 0}

	got, err := Quote(s, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4000+720), got.Total.Amount)
}
