package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staynest/internal/app/dto"
	meapp "staynest/internal/app/handlers/me"
	"staynest/internal/app/queries"
)

// MeHTTP serves the signed-in traveller's own view of their trips.
type MeHTTP interface {
	ListBookings(c *gin.Context)
}

// MeHandler answers /me routes through the query pipeline. Any
// authenticated principal may call it, guest accounts included.
type MeHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

// ListBookings returns every booking the caller has placed, newest
// first, with the property snapshot and review eligibility attached.
func (h MeHandler) ListBookings(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "read side unavailable"})
		return
	}

	trips, err := queries.Ask[meapp.ListGuestBookingsQuery, dto.GuestBookingCollection](
		c.Request.Context(),
		h.Queries,
		meapp.ListGuestBookingsQuery{GuestID: user.ID},
	)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("listing own bookings failed", "error", err, "guest_id", user.ID)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bookings"})
		return
	}

	c.JSON(http.StatusOK, trips)
}

var _ MeHTTP = (*MeHandler)(nil)
