package property

import (
	"errors"

	"staynest/internal/domain/shared/money"
)

var (
	ErrBasePriceRequired = errors.New("property: base price must be positive")
	ErrNegativeFee       = errors.New("property: fees cannot be negative")
	ErrTaxRateRange      = errors.New("property: tax rate must be between 0 and 100")
	ErrMinimumStay       = errors.New("property: minimum stay must be at least 1 night")
	ErrMaximumStay       = errors.New("property: maximum stay must be >= minimum stay")
	ErrDiscountRange     = errors.New("property: discount percent must be between 0 and 100")
)

// PricingSchedule is the host-configured rate card. All monetary values are
// whole currency units per night or per stay.
type PricingSchedule struct {
	BasePrice              money.Money
	CleaningFee            money.Money
	ServiceFee             money.Money
	TaxRatePercent         int
	MinimumStayNights      int
	MaximumStayNights      int // 0 means no cap
	WeeklyDiscountPercent  int
	MonthlyDiscountPercent int
}

func (s PricingSchedule) IsZero() bool {
	return s == PricingSchedule{}
}

func (s PricingSchedule) Validate() error {
	if s.BasePrice.Amount <= 0 || s.BasePrice.Currency == "" {
		return ErrBasePriceRequired
	}
	if s.CleaningFee.Amount < 0 || s.ServiceFee.Amount < 0 {
		return ErrNegativeFee
	}
	if s.TaxRatePercent < 0 || s.TaxRatePercent > 100 {
		return ErrTaxRateRange
	}
	if s.MinimumStayNights < 1 {
		return ErrMinimumStay
	}
	if s.MaximumStayNights != 0 && s.MaximumStayNights < s.MinimumStayNights {
		return ErrMaximumStay
	}
	if s.WeeklyDiscountPercent < 0 || s.WeeklyDiscountPercent > 100 {
		return ErrDiscountRange
	}
	if s.MonthlyDiscountPercent < 0 || s.MonthlyDiscountPercent > 100 {
		return ErrDiscountRange
	}
	return nil
}
