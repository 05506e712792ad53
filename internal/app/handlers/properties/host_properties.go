package properties

import (
	"context"
	"errors"
	"strings"

	"staynest/internal/app/dto"
	handlersupport "staynest/internal/app/handlers/support"
	"staynest/internal/app/queries"
	"staynest/internal/app/uow"
	domainproperty "staynest/internal/domain/property"
)

const (
	listHostPropertiesKey = "host.properties.list"
	getHostPropertyKey    = "host.properties.get"

	hostListLimit = 60
)

type ListHostPropertiesQuery struct {
	HostID string
	Status string
}

func (q ListHostPropertiesQuery) Key() string { return listHostPropertiesKey }

type ListHostPropertiesHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListHostPropertiesHandler) Handle(ctx context.Context, q ListHostPropertiesQuery) (dto.HostPropertyCollection, error) {
	hostID := strings.TrimSpace(q.HostID)
	if hostID == "" {
		return dto.HostPropertyCollection{}, errors.New("host id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.HostPropertyCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	result, err := unit.Properties().Search(execCtx, domainproperty.SearchParams{
		Host:  domainproperty.HostID(hostID),
		Limit: hostListLimit,
	})
	if err != nil {
		return dto.HostPropertyCollection{}, err
	}

	items := make([]dto.HostPropertyDetail, 0, len(result.Items))
	for _, p := range result.Items {
		items = append(items, dto.MapHostPropertyDetail(p))
	}
	return dto.HostPropertyCollection{Items: items}, nil
}

type GetHostPropertyQuery struct {
	HostID     string
	PropertyID string
}

func (q GetHostPropertyQuery) Key() string { return getHostPropertyKey }

type GetHostPropertyHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetHostPropertyHandler) Handle(ctx context.Context, q GetHostPropertyQuery) (dto.HostPropertyDetail, error) {
	if strings.TrimSpace(q.HostID) == "" {
		return dto.HostPropertyDetail{}, errors.New("host id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.HostPropertyDetail{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	prop, err := unit.Properties().ByID(execCtx, domainproperty.ID(q.PropertyID))
	if err != nil {
		return dto.HostPropertyDetail{}, err
	}
	if prop.Host != domainproperty.HostID(strings.TrimSpace(q.HostID)) {
		return dto.HostPropertyDetail{}, ErrPropertyNotOwned
	}
	return dto.MapHostPropertyDetail(prop), nil
}

var (
	_ queries.Handler[ListHostPropertiesQuery, dto.HostPropertyCollection] = (*ListHostPropertiesHandler)(nil)
	_ queries.Handler[GetHostPropertyQuery, dto.HostPropertyDetail]        = (*GetHostPropertyHandler)(nil)
)
