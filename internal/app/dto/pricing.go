package dto

import (
	domainpricing "staynest/internal/domain/pricing"
	"staynest/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{
		Amount:   value.Amount,
		Currency: value.Currency,
	}
}

// PriceBreakdown mirrors the itemized quote shown to guests before booking
// and frozen onto bookings afterwards.
type PriceBreakdown struct {
	Nights         int      `json:"nights"`
	BasePrice      MoneyDTO `json:"base_price"`
	BaseTotal      MoneyDTO `json:"base_total"`
	DiscountType   string   `json:"discount_type"`
	DiscountAmount MoneyDTO `json:"discount_amount"`
	CleaningFee    MoneyDTO `json:"cleaning_fee"`
	ServiceFee     MoneyDTO `json:"service_fee"`
	TaxRatePercent int      `json:"tax_rate_percent"`
	TaxAmount      MoneyDTO `json:"tax_amount"`
	Total          MoneyDTO `json:"total"`
}

func MapPriceBreakdown(b domainpricing.Breakdown) PriceBreakdown {
	return PriceBreakdown{
		Nights:         b.Nights,
		BasePrice:      MapMoney(b.BasePrice),
		BaseTotal:      MapMoney(b.BaseTotal),
		DiscountType:   string(b.DiscountType),
		DiscountAmount: MapMoney(b.DiscountAmount),
		CleaningFee:    MapMoney(b.CleaningFee),
		ServiceFee:     MapMoney(b.ServiceFee),
		TaxRatePercent: b.TaxRatePercent,
		TaxAmount:      MapMoney(b.TaxAmount),
		Total:          MapMoney(b.Total),
	}
}

// Quote is the availability-check response: either a refusal reason or a
// full breakdown.
type Quote struct {
	Available bool            `json:"available"`
	Reason    string          `json:"reason,omitempty"`
	Nights    int             `json:"nights,omitempty"`
	Breakdown *PriceBreakdown `json:"quote,omitempty"`
}
