package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"staynest/internal/app/commands"
	"staynest/internal/app/dto"
	reviewsapp "staynest/internal/app/handlers/reviews"
)

type ReviewsHTTP interface {
	Submit(c *gin.Context)
}

type ReviewsHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type submitReviewRequest struct {
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

func (h ReviewsHandler) Submit(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	bookingID := c.Param("id")
	if bookingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking id is required"})
		return
	}
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cmd := reviewsapp.SubmitReviewCommand{
		BookingID: bookingID,
		AuthorID:  user.ID,
		Rating:    req.Rating,
		Text:      req.Text,
		Now:       time.Now().UTC(),
	}
	review, err := commands.Dispatch[reviewsapp.SubmitReviewCommand, dto.ReviewItem](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("review submit failed", "error", err, "booking_id", bookingID)
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

var _ ReviewsHTTP = ReviewsHandler{}
