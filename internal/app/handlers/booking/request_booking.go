package booking

import (
	"context"
	"errors"
	"time"

	"staynest/internal/app/commands"
	"staynest/internal/app/dto"
	"staynest/internal/app/middleware"
	"staynest/internal/app/outbox"
	"staynest/internal/app/uow"
	domainavailability "staynest/internal/domain/availability"
	domainbooking "staynest/internal/domain/booking"
	domainpricing "staynest/internal/domain/pricing"
	domainproperty "staynest/internal/domain/property"
	domainrange "staynest/internal/domain/shared/daterange"
)

const requestBookingKey = "booking.request"

var ErrUnitOfWorkRequired = errors.New("booking: unit of work required")

type RequestBookingCommand struct {
	CommandID       string
	PropertyID      string
	GuestID         string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	Now             time.Time
	IdempotencyKeyV string
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

func (c RequestBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestBookingCommand) ResultPrototype() any { return &RequestBookingResult{} }

type RequestBookingResult struct {
	Booking dto.BookingDetail `json:"booking"`
}

type RequestBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

// Handle re-validates availability, quotes, and persists the booking inside
// one unit of work. The overlap read alone cannot stop two racing guests,
// since each one inserts a fresh document; the store makes the insert itself
// the arbiter (a reserved-night unique index in Mongo, an overlap re-check
// under the write lock in memory) and the loser surfaces as a retryable
// conflict.
func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	dr, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	now := cmd.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	if err := domainbooking.ValidateDateRange(dr, now); err != nil {
		return nil, err
	}

	prop, err := unit.Properties().ByID(ctx, domainproperty.ID(cmd.PropertyID))
	if err != nil {
		return nil, err
	}

	open, err := unit.Bookings().OpenOverlapping(ctx, prop.ID, dr)
	if err != nil {
		return nil, err
	}
	stays := make([]domainavailability.OpenStay, 0, len(open))
	for _, existing := range open {
		stays = append(stays, domainavailability.OpenStay{Range: existing.Range})
	}

	decision := domainavailability.Resolve(prop, stays, dr.CheckIn, dr.CheckOut, cmd.Guests)
	if err := decision.Err(); err != nil {
		return nil, err
	}

	price, err := domainpricing.Quote(prop.Pricing, decision.Nights, cmd.Guests)
	if err != nil {
		return nil, err
	}

	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:         domainbooking.ID(cmd.CommandID),
		PropertyID: prop.ID,
		GuestID:    cmd.GuestID,
		HostID:     string(prop.Host),
		Range:      dr,
		Guests:     cmd.Guests,
		Price:      price,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}

	pending := b.PendingEvents()
	b.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &RequestBookingResult{Booking: dto.MapBookingDetail(b)}, nil
}

func (h *RequestBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[RequestBookingCommand, *RequestBookingResult] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*RequestBookingCommand)(nil)
