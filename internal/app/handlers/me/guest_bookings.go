package me

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"staynest/internal/app/dto"
	handlersupport "staynest/internal/app/handlers/support"
	"staynest/internal/app/queries"
	"staynest/internal/app/uow"
	domainbooking "staynest/internal/domain/booking"
	domainproperty "staynest/internal/domain/property"
	domainreviews "staynest/internal/domain/reviews"
)

const listGuestBookingsKey = "me.bookings.list"

type ListGuestBookingsQuery struct {
	GuestID string
}

func (q ListGuestBookingsQuery) Key() string { return listGuestBookingsKey }

type ListGuestBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListGuestBookingsHandler) Handle(ctx context.Context, q ListGuestBookingsQuery) (dto.GuestBookingCollection, error) {
	guestID := strings.TrimSpace(q.GuestID)
	if guestID == "" {
		return dto.GuestBookingCollection{}, errors.New("guest id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.GuestBookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	bookings, err := unit.Bookings().ListByGuest(execCtx, guestID)
	if err != nil {
		return dto.GuestBookingCollection{}, err
	}

	propertyCache := make(map[domainproperty.ID]*domainproperty.Property)
	items := make([]dto.GuestBookingSummary, 0, len(bookings))
	for _, b := range bookings {
		prop, err := loadProperty(execCtx, unit.Properties(), b.PropertyID, propertyCache)
		if err != nil {
			if h.Logger != nil {
				h.Logger.Warn("property snapshot missing for booking", "booking_id", b.ID, "property_id", b.PropertyID, "error", err)
			}
		}
		reviewSubmitted := false
		canReview := b.Status == domainbooking.StatusCompleted
		if reviews := unit.Reviews(); reviews != nil {
			if existing, err := reviews.ByBooking(execCtx, b.ID, guestID); err == nil && existing != nil {
				reviewSubmitted = true
				canReview = false
			} else if err != nil && !errors.Is(err, domainreviews.ErrNotFound) && h.Logger != nil {
				h.Logger.Warn("failed to check review", "booking_id", b.ID, "guest_id", guestID, "error", err)
			}
		}
		items = append(items, dto.MapGuestBookingSummary(b, prop, reviewSubmitted, canReview))
	}

	if h.Logger != nil {
		h.Logger.Debug("guest bookings listed", "guest_id", guestID, "count", len(items))
	}

	return dto.GuestBookingCollection{Items: items}, nil
}

func loadProperty(
	ctx context.Context,
	repo domainproperty.Repository,
	id domainproperty.ID,
	cache map[domainproperty.ID]*domainproperty.Property,
) (*domainproperty.Property, error) {
	if prop, ok := cache[id]; ok {
		return prop, nil
	}
	prop, err := repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cache[id] = prop
	return prop, nil
}

var _ queries.Handler[ListGuestBookingsQuery, dto.GuestBookingCollection] = (*ListGuestBookingsHandler)(nil)
