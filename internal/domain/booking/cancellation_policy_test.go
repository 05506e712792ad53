package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staynest/internal/domain/shared/money"
)

func TestDefaultPolicyWindows(t *testing.T) {
	checkIn := date(2026, time.January, 5)
	policy := DefaultCancellationPolicy(checkIn)
	total := money.Rupees(8000)

	t.Run("inside free window", func(t *testing.T) {
		refund, penalty, err := policy.Refund(total, date(2026, time.January, 2), checkIn)
		require.NoError(t, err)
		assert.Equal(t, int64(8000), refund.Amount)
		assert.Equal(t, int64(0), penalty.Amount)
	})

	t.Run("after free window, before check-in", func(t *testing.T) {
		refund, penalty, err := policy.Refund(total, date(2026, time.January, 4), checkIn)
		require.NoError(t, err)
		assert.Equal(t, int64(4000), refund.Amount)
		assert.Equal(t, int64(4000), penalty.Amount)
	})

	t.Run("on or after check-in", func(t *testing.T) {
		refund, penalty, err := policy.Refund(total, date(2026, time.January, 6), checkIn)
		require.NoError(t, err)
		assert.Equal(t, int64(0), refund.Amount)
		assert.Equal(t, int64(8000), penalty.Amount)
	})
}

func TestZeroPolicyRefundsEverything(t *testing.T) {
	var policy CancellationPolicy
	refund, penalty, err := policy.Refund(money.Rupees(5500), date(2026, time.January, 4), date(2026, time.January, 5))
	require.NoError(t, err)
	assert.Equal(t, int64(5500), refund.Amount)
	assert.Equal(t, int64(0), penalty.Amount)
	assert.Equal(t, money.DefaultCurrency, refund.Currency)
}

func TestPolicyClampsPenaltyPercent(t *testing.T) {
	policy := CancellationPolicy{PreCheckInPenaltyPercent: 250, PostCheckInPenaltyPercent: -10}
	total := money.Rupees(1000)

	refund, penalty, err := policy.Refund(total, date(2026, time.January, 4), date(2026, time.January, 5))
	require.NoError(t, err)
	assert.Equal(t, int64(0), refund.Amount)
	assert.Equal(t, int64(1000), penalty.Amount)

	refund, penalty, err = policy.Refund(total, date(2026, time.January, 5), date(2026, time.January, 5))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), refund.Amount)
	assert.Equal(t, int64(0), penalty.Amount)
}

func TestCancelRecordsRefundPerPolicySnapshot(t *testing.T) {
	b := newPendingBooking(t)
	assert.Equal(t, date(2026, time.January, 3), b.Policy.FreeCancellationUntil)

	require.NoError(t, b.CancelByGuest(guest, "change of plans", date(2026, time.January, 2)))
	assert.Equal(t, int64(7906), b.RefundAmount.Amount)
	assert.Equal(t, int64(0), b.PenaltyAmount.Amount)

	late := newPendingBooking(t)
	require.NoError(t, late.CancelByGuest(guest, "change of plans", date(2026, time.January, 4)))
	assert.Equal(t, int64(3953), late.RefundAmount.Amount)
	assert.Equal(t, int64(3953), late.PenaltyAmount.Amount)
}

func TestRejectRefundsInFull(t *testing.T) {
	b := newPendingBooking(t)
	require.NoError(t, b.Reject(host, "double booked", date(2026, time.January, 2)))
	assert.Equal(t, int64(7906), b.RefundAmount.Amount)
	assert.Equal(t, int64(0), b.PenaltyAmount.Amount)
	assert.Equal(t, money.DefaultCurrency, b.PenaltyAmount.Currency)
}
