package availability

import (
	"context"

	"staynest/internal/app/dto"
	handlersupport "staynest/internal/app/handlers/support"
	"staynest/internal/app/queries"
	"staynest/internal/app/uow"
	domainproperty "staynest/internal/domain/property"
)

const getCalendarKey = "availability.calendar"

type GetCalendarQuery struct {
	PropertyID string
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

type GetCalendarHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.Calendar, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Calendar{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	prop, err := unit.Properties().ByID(execCtx, domainproperty.ID(q.PropertyID))
	if err != nil {
		return dto.Calendar{}, err
	}
	return dto.MapCalendar(prop), nil
}

var _ queries.Handler[GetCalendarQuery, dto.Calendar] = (*GetCalendarHandler)(nil)
