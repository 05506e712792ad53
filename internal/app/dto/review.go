package dto

import (
	"time"

	domainreviews "staynest/internal/domain/reviews"
)

type ReviewItem struct {
	ID         string    `json:"id"`
	BookingID  string    `json:"booking_id"`
	AuthorID   string    `json:"author_id"`
	PropertyID string    `json:"property_id"`
	Rating     int       `json:"rating"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReviewCollection struct {
	Items []ReviewItem `json:"items"`
	Total int          `json:"total"`
}

func MapReview(r *domainreviews.Review) ReviewItem {
	return ReviewItem{
		ID:         string(r.ID),
		BookingID:  string(r.BookingID),
		AuthorID:   r.AuthorID,
		PropertyID: string(r.PropertyID),
		Rating:     r.Rating,
		Text:       r.Text,
		CreatedAt:  r.CreatedAt,
	}
}
