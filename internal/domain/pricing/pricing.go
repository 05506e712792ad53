package pricing

import (
	"errors"

	"staynest/internal/domain/property"
	"staynest/internal/domain/shared/money"
)

var (
	ErrInvalidNights   = errors.New("pricing: nights must be positive")
	ErrInvalidSchedule = errors.New("pricing: schedule is not bookable")
)

// DiscountType identifies the single tier applied to a stay.
type DiscountType string

const (
	DiscountNone    DiscountType = "none"
	DiscountWeekly  DiscountType = "weekly"
	DiscountMonthly DiscountType = "monthly"
)

const (
	weeklyThresholdNights  = 7
	monthlyThresholdNights = 28
)

// Breakdown is the itemized quote persisted onto a booking at creation time.
// It is a point-in-time snapshot and is never recomputed from live pricing.
type Breakdown struct {
	Nights         int
	BasePrice      money.Money // per-night rate at quote time
	BaseTotal      money.Money
	DiscountType   DiscountType
	DiscountAmount money.Money
	CleaningFee    money.Money
	ServiceFee     money.Money
	TaxRatePercent int
	TaxAmount      money.Money
	Total          money.Money
}

// Quote computes a deterministic itemized price for a stay. It is a pure
// function of its inputs: no clock, no external state. Guests take no part
// in the current formula; the parameter is the extension point for per-guest
// surcharges.
func Quote(schedule property.PricingSchedule, nights, guests int) (Breakdown, error) {
	if nights < 1 {
		return Breakdown{}, ErrInvalidNights
	}
	if err := schedule.Validate(); err != nil {
		return Breakdown{}, ErrInvalidSchedule
	}

	base := schedule.BasePrice
	baseTotal := base.Multiply(int64(nights))

	// Monthly takes precedence over weekly when both thresholds are met;
	// only one tier ever applies.
	discountType := DiscountNone
	discountPercent := 0
	switch {
	case nights >= monthlyThresholdNights && schedule.MonthlyDiscountPercent > 0:
		discountType = DiscountMonthly
		discountPercent = schedule.MonthlyDiscountPercent
	case nights >= weeklyThresholdNights && schedule.WeeklyDiscountPercent > 0:
		discountType = DiscountWeekly
		discountPercent = schedule.WeeklyDiscountPercent
	}
	discountAmount := baseTotal.PercentRoundHalfUp(int64(discountPercent))
	discountedBase, err := baseTotal.Sub(discountAmount)
	if err != nil {
		return Breakdown{}, err
	}

	cleaning := sameCurrencyOrZero(schedule.CleaningFee, base.Currency)
	service := sameCurrencyOrZero(schedule.ServiceFee, base.Currency)

	taxable := discountedBase
	if taxable, err = taxable.Add(cleaning); err != nil {
		return Breakdown{}, err
	}
	if taxable, err = taxable.Add(service); err != nil {
		return Breakdown{}, err
	}
	taxAmount := taxable.PercentRoundHalfUp(int64(schedule.TaxRatePercent))

	total, err := taxable.Add(taxAmount)
	if err != nil {
		return Breakdown{}, err
	}

	return Breakdown{
		Nights:         nights,
		BasePrice:      base,
		BaseTotal:      baseTotal,
		DiscountType:   discountType,
		DiscountAmount: discountAmount,
		CleaningFee:    cleaning,
		ServiceFee:     service,
		TaxRatePercent: schedule.TaxRatePercent,
		TaxAmount:      taxAmount,
		Total:          total,
	}, nil
}

// sameCurrencyOrZero keeps flat fees additive with the base price even when a
// schedule carries a zero-value fee with no currency set.
func sameCurrencyOrZero(fee money.Money, currency string) money.Money {
	if fee.Currency == "" {
		return money.Money{Amount: fee.Amount, Currency: currency}
	}
	return fee
}
