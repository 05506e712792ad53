package booking

import (
	"time"

	"staynest/internal/domain/shared/money"
)

// CancellationPolicy is the refund rule frozen onto a booking when it is
// created. Later policy edits on the property never change the terms of an
// already requested stay.
type CancellationPolicy struct {
	FreeCancellationUntil     time.Time
	PreCheckInPenaltyPercent  int
	PostCheckInPenaltyPercent int
}

// DefaultCancellationPolicy grants free cancellation until two days before
// check-in, keeps half the total between then and check-in, and the full
// total once the stay has started.
func DefaultCancellationPolicy(checkIn time.Time) CancellationPolicy {
	return CancellationPolicy{
		FreeCancellationUntil:     checkIn.UTC().AddDate(0, 0, -2),
		PreCheckInPenaltyPercent:  50,
		PostCheckInPenaltyPercent: 100,
	}
}

// Refund splits the booking total into the amount returned to the guest and
// the amount the host keeps for a cancellation at the given instant. The
// zero-value policy refunds everything.
func (p CancellationPolicy) Refund(total money.Money, cancelAt, checkIn time.Time) (refund, penalty money.Money, err error) {
	if cancelAt.IsZero() {
		cancelAt = time.Now().UTC()
	}
	var percent int
	if cancelAt.Before(checkIn) {
		if !p.FreeCancellationUntil.IsZero() && cancelAt.Before(p.FreeCancellationUntil) {
			percent = 0
		} else {
			percent = clampPercent(p.PreCheckInPenaltyPercent)
		}
	} else {
		percent = clampPercent(p.PostCheckInPenaltyPercent)
	}
	penalty = money.Money{Amount: total.Amount * int64(percent) / 100, Currency: total.Currency}
	refund, err = total.Sub(penalty)
	if err != nil {
		return money.Money{}, money.Money{}, err
	}
	return refund, penalty, nil
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
