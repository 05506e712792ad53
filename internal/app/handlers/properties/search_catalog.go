package properties

import (
	"context"
	"time"

	"staynest/internal/app/dto"
	handlersupport "staynest/internal/app/handlers/support"
	"staynest/internal/app/queries"
	"staynest/internal/app/uow"
	domainproperty "staynest/internal/domain/property"
)

const searchCatalogKey = "properties.catalog"

// SearchCatalogQuery describes public catalog filters.
type SearchCatalogQuery struct {
	City          string
	Country       string
	LocationQuery string
	Amenities     []string
	PropertyTypes []string
	MinGuests     int
	PriceMin      int64
	PriceMax      int64
	CheckIn       time.Time
	CheckOut      time.Time
	Sort          string
	Limit         int
	Offset        int
}

func (q SearchCatalogQuery) Key() string { return searchCatalogKey }

type SearchCatalogHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *SearchCatalogHandler) Handle(ctx context.Context, q SearchCatalogQuery) (dto.CatalogPage, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CatalogPage{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	params := domainproperty.SearchParams{
		City:          q.City,
		Country:       q.Country,
		LocationQuery: q.LocationQuery,
		Amenities:     append([]string(nil), q.Amenities...),
		PropertyTypes: append([]string(nil), q.PropertyTypes...),
		MinGuests:     q.MinGuests,
		PriceMin:      q.PriceMin,
		PriceMax:      q.PriceMax,
		CheckIn:       q.CheckIn,
		CheckOut:      q.CheckOut,
		Sort:          domainproperty.CatalogSort(q.Sort),
		Limit:         q.Limit,
		Offset:        q.Offset,
		OnlyPublished: true,
	}.Normalized()

	result, err := unit.Properties().Search(execCtx, params)
	if err != nil {
		return dto.CatalogPage{}, err
	}

	items := make([]dto.CatalogItem, 0, len(result.Items))
	for _, p := range result.Items {
		items = append(items, dto.MapCatalogItem(p))
	}
	return dto.CatalogPage{Items: items, Total: result.Total}, nil
}

var _ queries.Handler[SearchCatalogQuery, dto.CatalogPage] = (*SearchCatalogHandler)(nil)
