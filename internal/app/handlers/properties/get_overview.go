package properties

import (
	"context"

	"staynest/internal/app/dto"
	handlersupport "staynest/internal/app/handlers/support"
	"staynest/internal/app/queries"
	"staynest/internal/app/uow"
	domainproperty "staynest/internal/domain/property"
)

const getOverviewKey = "properties.overview"

// GetOverviewQuery loads the public detail page for a published property.
type GetOverviewQuery struct {
	PropertyID string
}

func (q GetOverviewQuery) Key() string { return getOverviewKey }

type GetOverviewHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetOverviewHandler) Handle(ctx context.Context, q GetOverviewQuery) (dto.PropertyOverview, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PropertyOverview{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	prop, err := unit.Properties().ByID(execCtx, domainproperty.ID(q.PropertyID))
	if err != nil {
		return dto.PropertyOverview{}, err
	}
	if prop.Status != domainproperty.StatusPublished {
		return dto.PropertyOverview{}, domainproperty.ErrNotFound
	}
	return dto.MapPropertyOverview(prop), nil
}

var _ queries.Handler[GetOverviewQuery, dto.PropertyOverview] = (*GetOverviewHandler)(nil)
