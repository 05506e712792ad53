package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"staynest/internal/app/commands"
	"staynest/internal/app/dto"
	"staynest/internal/app/uow"
	domainbooking "staynest/internal/domain/booking"
	domainreviews "staynest/internal/domain/reviews"
)

const submitReviewKey = "reviews.submit"

var ErrDuplicateReview = errors.New("reviews: review already exists for booking")

// SubmitReviewCommand creates a new review for a completed stay.
type SubmitReviewCommand struct {
	BookingID string
	AuthorID  string
	Rating    int
	Text      string
	Now       time.Time
}

func (c SubmitReviewCommand) Key() string { return submitReviewKey }

type SubmitReviewHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (dto.ReviewItem, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return dto.ReviewItem{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return dto.ReviewItem{}, err
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

	now := cmd.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	stay, err := unit.Bookings().ByID(ctx, domainbooking.ID(cmd.BookingID))
	if err != nil {
		return dto.ReviewItem{}, err
	}

	if existing, err := unit.Reviews().ByBooking(ctx, stay.ID, cmd.AuthorID); err == nil && existing != nil {
		return dto.ReviewItem{}, ErrDuplicateReview
	} else if err != nil && !errors.Is(err, domainreviews.ErrNotFound) {
		return dto.ReviewItem{}, err
	}

	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:        domainreviews.ReviewID(uuid.NewString()),
		Stay:      stay,
		AuthorID:  cmd.AuthorID,
		Rating:    cmd.Rating,
		Text:      cmd.Text,
		CreatedAt: now,
	})
	if err != nil {
		return dto.ReviewItem{}, err
	}
	if err := unit.Reviews().Save(ctx, review); err != nil {
		return dto.ReviewItem{}, err
	}

	prop, err := unit.Properties().ByID(ctx, stay.PropertyID)
	if err != nil {
		return dto.ReviewItem{}, err
	}
	prop.RecordReview(review.Rating, now)
	if err := unit.Properties().Save(ctx, prop); err != nil {
		return dto.ReviewItem{}, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return dto.ReviewItem{}, err
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("review submitted", "booking_id", stay.ID, "property_id", stay.PropertyID, "author_id", cmd.AuthorID, "rating", cmd.Rating)
	}

	return dto.MapReview(review), nil
}

var _ commands.Handler[SubmitReviewCommand, dto.ReviewItem] = (*SubmitReviewHandler)(nil)
