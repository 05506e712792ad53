package booking

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"staynest/internal/app/dto"
	handlersupport "staynest/internal/app/handlers/support"
	"staynest/internal/app/queries"
	"staynest/internal/app/uow"
	domainbooking "staynest/internal/domain/booking"
	domainproperty "staynest/internal/domain/property"
)

const (
	listHostBookingsKey    = "host.bookings.list"
	defaultHostListLimit   = 60
	allStatusesFilterValue = "all"
)

var ErrBookingNotOwned = errors.New("booking: not owned by host")

type ListHostBookingsQuery struct {
	HostID string
	Status string
}

func (q ListHostBookingsQuery) Key() string { return listHostBookingsKey }

type ListHostBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListHostBookingsHandler) Handle(ctx context.Context, q ListHostBookingsQuery) (dto.HostBookingCollection, error) {
	hostID := strings.TrimSpace(q.HostID)
	if hostID == "" {
		return dto.HostBookingCollection{}, errors.New("host id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.HostBookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	owned, err := unit.Properties().Search(execCtx, domainproperty.SearchParams{
		Host:  domainproperty.HostID(hostID),
		Limit: defaultHostListLimit,
	})
	if err != nil {
		return dto.HostBookingCollection{}, err
	}

	statusFilter := strings.ToLower(strings.TrimSpace(q.Status))
	if statusFilter == "" {
		statusFilter = string(domainbooking.StatusPending)
	}
	allStatuses := statusFilter == allStatusesFilterValue

	items := make([]dto.HostBookingSummary, 0)
	for _, prop := range owned.Items {
		bookings, err := unit.Bookings().ListByProperty(execCtx, prop.ID)
		if err != nil {
			return dto.HostBookingCollection{}, err
		}
		for _, b := range bookings {
			if !allStatuses && string(b.Status) != statusFilter {
				continue
			}
			items = append(items, dto.MapHostBookingSummary(b, prop))
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	if h.Logger != nil {
		h.Logger.Debug("host bookings listed", "host_id", hostID, "count", len(items), "status", statusFilter)
	}

	return dto.HostBookingCollection{Items: items}, nil
}

var _ queries.Handler[ListHostBookingsQuery, dto.HostBookingCollection] = (*ListHostBookingsHandler)(nil)
