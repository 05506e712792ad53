package dto

import (
	"time"

	domainproperty "staynest/internal/domain/property"
)

type CalendarAvailability struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type CalendarBlock struct {
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Reason string    `json:"reason"`
}

// Calendar is the host/guest view of a property's bookable windows and the
// sub-ranges excluded from them.
type Calendar struct {
	PropertyID   string                 `json:"property_id"`
	Availability []CalendarAvailability `json:"availability"`
	Blocks       []CalendarBlock        `json:"blocks"`
}

func MapCalendar(p *domainproperty.Property) Calendar {
	if p == nil {
		return Calendar{}
	}
	availability := make([]CalendarAvailability, 0, len(p.AvailabilityRanges))
	for _, r := range p.AvailabilityRanges {
		availability = append(availability, CalendarAvailability{StartDate: r.StartDate, EndDate: r.EndDate})
	}
	blocks := make([]CalendarBlock, 0, len(p.BlockedDates))
	for _, b := range p.BlockedDates {
		blocks = append(blocks, CalendarBlock{
			From:   b.Range.CheckIn,
			To:     b.Range.CheckOut,
			Reason: string(b.Reason),
		})
	}
	return Calendar{PropertyID: string(p.ID), Availability: availability, Blocks: blocks}
}
