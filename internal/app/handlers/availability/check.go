package availability

import (
	"context"
	"time"

	"staynest/internal/app/dto"
	handlersupport "staynest/internal/app/handlers/support"
	"staynest/internal/app/queries"
	"staynest/internal/app/uow"
	domainavailability "staynest/internal/domain/availability"
	domainpricing "staynest/internal/domain/pricing"
	domainproperty "staynest/internal/domain/property"
	domainrange "staynest/internal/domain/shared/daterange"
)

const checkAvailabilityKey = "availability.check"

// CheckQuery asks whether a stay is bookable and, if so, what it costs.
// It never mutates state, so the answer is advisory: the booking command
// re-runs the same checks transactionally.
type CheckQuery struct {
	PropertyID string
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
}

func (q CheckQuery) Key() string { return checkAvailabilityKey }

type CheckHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *CheckHandler) Handle(ctx context.Context, q CheckQuery) (dto.Quote, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Quote{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	prop, err := unit.Properties().ByID(execCtx, domainproperty.ID(q.PropertyID))
	if err != nil {
		return dto.Quote{}, err
	}

	stays, err := openStays(execCtx, unit, prop.ID, q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.Quote{}, err
	}

	decision := domainavailability.Resolve(prop, stays, q.CheckIn, q.CheckOut, q.Guests)
	if !decision.Available {
		return dto.Quote{Available: false, Reason: string(decision.Reason)}, nil
	}

	price, err := domainpricing.Quote(prop.Pricing, decision.Nights, q.Guests)
	if err != nil {
		return dto.Quote{}, err
	}
	breakdown := dto.MapPriceBreakdown(price)
	return dto.Quote{Available: true, Nights: decision.Nights, Breakdown: &breakdown}, nil
}

func openStays(ctx context.Context, unit uow.UnitOfWork, propertyID domainproperty.ID, checkIn, checkOut time.Time) ([]domainavailability.OpenStay, error) {
	dr, err := domainrange.New(checkIn, checkOut)
	if err != nil {
		// A malformed range never overlaps anything; the resolver reports
		// the ordering failure itself.
		return nil, nil
	}
	open, err := unit.Bookings().OpenOverlapping(ctx, propertyID, dr)
	if err != nil {
		return nil, err
	}
	stays := make([]domainavailability.OpenStay, 0, len(open))
	for _, b := range open {
		stays = append(stays, domainavailability.OpenStay{Range: b.Range})
	}
	return stays, nil
}

var _ queries.Handler[CheckQuery, dto.Quote] = (*CheckHandler)(nil)
