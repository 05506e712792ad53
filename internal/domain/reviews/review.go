package reviews

import (
	"context"
	"errors"
	"strings"
	"time"

	"staynest/internal/domain/booking"
	"staynest/internal/domain/property"
	"staynest/internal/domain/shared/events"
)

var (
	ErrInvalidRating    = errors.New("reviews: rating must be between 1 and 5")
	ErrNotFound         = errors.New("reviews: not found")
	ErrStayNotCompleted = errors.New("reviews: booking must be completed before reviewing")
	ErrNotStayGuest     = errors.New("reviews: only the booking guest may review")
)

type ReviewID string

type Review struct {
	ID         ReviewID
	BookingID  booking.ID
	AuthorID   string
	PropertyID property.ID
	Rating     int
	Text       string
	CreatedAt  time.Time
	events.EventRecorder
}

type Repository interface {
	ByBooking(ctx context.Context, bookingID booking.ID, authorID string) (*Review, error)
	ListByProperty(ctx context.Context, propertyID property.ID, limit, offset int) ([]*Review, error)
	Save(ctx context.Context, review *Review) error
}

type SubmitParams struct {
	ID        ReviewID
	Stay      *booking.Booking
	AuthorID  string
	Rating    int
	Text      string
	CreatedAt time.Time
}

// Submit creates a review for a completed stay. Only the guest who stayed
// may review.
func Submit(params SubmitParams) (*Review, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if params.Stay == nil || params.Stay.Status != booking.StatusCompleted {
		return nil, ErrStayNotCompleted
	}
	if params.Stay.GuestID != params.AuthorID {
		return nil, ErrNotStayGuest
	}
	review := &Review{
		ID:         params.ID,
		BookingID:  params.Stay.ID,
		AuthorID:   params.AuthorID,
		PropertyID: params.Stay.PropertyID,
		Rating:     params.Rating,
		Text:       strings.TrimSpace(params.Text),
		CreatedAt:  params.CreatedAt.UTC(),
	}
	review.Record(ReviewSubmitted{ReviewID: review.ID, BookingID: review.BookingID, PropertyID: review.PropertyID, Rating: review.Rating, At: review.CreatedAt})
	return review, nil
}

func (r *Review) UpdateText(text string, now time.Time) {
	r.Text = strings.TrimSpace(text)
	r.Record(ReviewUpdated{ReviewID: r.ID, At: now.UTC()})
}
