package reviews

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"staynest/internal/app/dto"
	handlersupport "staynest/internal/app/handlers/support"
	"staynest/internal/app/queries"
	"staynest/internal/app/uow"
	domainproperty "staynest/internal/domain/property"
)

const listPropertyReviewsKey = "reviews.property.list"

var ErrPropertyNotFound = errors.New("reviews: property not found")

// ListPropertyReviewsQuery retrieves paginated reviews for a property.
type ListPropertyReviewsQuery struct {
	PropertyID string
	Limit      int
	Offset     int
}

func (q ListPropertyReviewsQuery) Key() string { return listPropertyReviewsKey }

type ListPropertyReviewsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListPropertyReviewsHandler) Handle(ctx context.Context, q ListPropertyReviewsQuery) (dto.ReviewCollection, error) {
	limit := normalizeLimit(q.Limit)
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	propertyID := domainproperty.ID(q.PropertyID)
	if _, err := unit.Properties().ByID(execCtx, propertyID); err != nil {
		return dto.ReviewCollection{}, fmt.Errorf("%w: %v", ErrPropertyNotFound, err)
	}

	all, err := unit.Reviews().ListByProperty(execCtx, propertyID, 0, 0)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	total := len(all)

	windowEnd := total
	if limit > 0 && offset+limit < windowEnd {
		windowEnd = offset + limit
	}
	if offset > windowEnd {
		offset = windowEnd
	}
	slice := all[offset:windowEnd]

	items := make([]dto.ReviewItem, 0, len(slice))
	for _, review := range slice {
		items = append(items, dto.MapReview(review))
	}

	if h.Logger != nil {
		h.Logger.Debug("property reviews listed", "property_id", propertyID, "count", len(items), "total", total)
	}

	return dto.ReviewCollection{Items: items, Total: total}, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}

var _ queries.Handler[ListPropertyReviewsQuery, dto.ReviewCollection] = (*ListPropertyReviewsHandler)(nil)
