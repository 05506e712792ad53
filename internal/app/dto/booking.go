package dto

import (
	"time"

	domainbooking "staynest/internal/domain/booking"
	domainproperty "staynest/internal/domain/property"
)

type BookingPropertySnapshot struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	AddressLine1 string `json:"address_line1"`
	City         string `json:"city"`
	Country      string `json:"country"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type GuestBookingSummary struct {
	ID              string                  `json:"id"`
	Property        BookingPropertySnapshot `json:"property"`
	CheckIn         time.Time               `json:"check_in"`
	CheckOut        time.Time               `json:"check_out"`
	Guests          int                     `json:"guests"`
	TotalNights     int                     `json:"total_nights"`
	Status          string                  `json:"status"`
	Total           MoneyDTO                `json:"total"`
	CreatedAt       time.Time               `json:"created_at"`
	ReviewSubmitted bool                    `json:"review_submitted"`
	CanReview       bool                    `json:"can_review"`
}

type GuestBookingCollection struct {
	Items []GuestBookingSummary `json:"items"`
}

type HostBookingSummary struct {
	ID          string                  `json:"id"`
	Property    BookingPropertySnapshot `json:"property"`
	GuestID     string                  `json:"guest_id"`
	CheckIn     time.Time               `json:"check_in"`
	CheckOut    time.Time               `json:"check_out"`
	Guests      int                     `json:"guests"`
	TotalNights int                     `json:"total_nights"`
	Status      string                  `json:"status"`
	Total       MoneyDTO                `json:"total"`
	CreatedAt   time.Time               `json:"created_at"`
}

type HostBookingCollection struct {
	Items []HostBookingSummary `json:"items"`
}

// BookingDetail is the full view returned after create/transition calls.
type BookingDetail struct {
	ID                 string         `json:"id"`
	PropertyID         string         `json:"property_id"`
	GuestID            string         `json:"guest_id"`
	HostID             string         `json:"host_id"`
	CheckIn            time.Time      `json:"check_in"`
	CheckOut           time.Time      `json:"check_out"`
	Guests             int            `json:"guests"`
	TotalNights        int            `json:"total_nights"`
	Status             string         `json:"status"`
	Price              PriceBreakdown `json:"price"`
	CancellationReason string         `json:"cancellation_reason,omitempty"`
	CancellationDate   *time.Time     `json:"cancellation_date,omitempty"`
	RefundAmount       *MoneyDTO      `json:"refund_amount,omitempty"`
	PenaltyAmount      *MoneyDTO      `json:"penalty_amount,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}

func propertySnapshot(propertyID domainproperty.ID, p *domainproperty.Property) BookingPropertySnapshot {
	snapshot := BookingPropertySnapshot{ID: string(propertyID)}
	if p != nil {
		snapshot.Title = p.Title
		snapshot.AddressLine1 = p.Address.Line1
		snapshot.City = p.Address.City
		snapshot.Country = p.Address.Country
		snapshot.ThumbnailURL = p.ThumbnailURL
	}
	return snapshot
}

func MapGuestBookingSummary(b *domainbooking.Booking, p *domainproperty.Property, reviewSubmitted, canReview bool) GuestBookingSummary {
	return GuestBookingSummary{
		ID:              string(b.ID),
		Property:        propertySnapshot(b.PropertyID, p),
		CheckIn:         b.Range.CheckIn,
		CheckOut:        b.Range.CheckOut,
		Guests:          b.Guests,
		TotalNights:     b.TotalNights,
		Status:          string(b.Status),
		Total:           MapMoney(b.Price.Total),
		CreatedAt:       b.CreatedAt,
		ReviewSubmitted: reviewSubmitted,
		CanReview:       canReview,
	}
}

func MapHostBookingSummary(b *domainbooking.Booking, p *domainproperty.Property) HostBookingSummary {
	return HostBookingSummary{
		ID:          string(b.ID),
		Property:    propertySnapshot(b.PropertyID, p),
		GuestID:     b.GuestID,
		CheckIn:     b.Range.CheckIn,
		CheckOut:    b.Range.CheckOut,
		Guests:      b.Guests,
		TotalNights: b.TotalNights,
		Status:      string(b.Status),
		Total:       MapMoney(b.Price.Total),
		CreatedAt:   b.CreatedAt,
	}
}

func MapBookingDetail(b *domainbooking.Booking) BookingDetail {
	detail := BookingDetail{
		ID:                 string(b.ID),
		PropertyID:         string(b.PropertyID),
		GuestID:            b.GuestID,
		HostID:             b.HostID,
		CheckIn:            b.Range.CheckIn,
		CheckOut:           b.Range.CheckOut,
		Guests:             b.Guests,
		TotalNights:        b.TotalNights,
		Status:             string(b.Status),
		Price:              MapPriceBreakdown(b.Price),
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
	}
	if !b.CancellationDate.IsZero() {
		cancelled := b.CancellationDate
		detail.CancellationDate = &cancelled
		refund := MapMoney(b.RefundAmount)
		penalty := MapMoney(b.PenaltyAmount)
		detail.RefundAmount = &refund
		detail.PenaltyAmount = &penalty
	}
	return detail
}
