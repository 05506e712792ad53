package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"staynest/internal/app/commands"
	"staynest/internal/app/dto"
	bookingapp "staynest/internal/app/handlers/booking"
	"staynest/internal/app/queries"
	domainbooking "staynest/internal/domain/booking"
)

type HostBookingHTTP interface {
	List(c *gin.Context)
	Confirm(c *gin.Context)
	Reject(c *gin.Context)
	Cancel(c *gin.Context)
	Complete(c *gin.Context)
}

type HostBookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type hostBookingActionRequest struct {
	Reason string `json:"reason"`
}

func (h HostBookingHandler) List(c *gin.Context) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := bookingapp.ListHostBookingsQuery{
		HostID: host.ID,
		Status: c.Query("status"),
	}
	result, err := queries.Ask[bookingapp.ListHostBookingsQuery, dto.HostBookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("host bookings query failed", "error", err, "host_id", host.ID)
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostBookingHandler) Confirm(c *gin.Context) {
	h.transition(c, domainbooking.StatusConfirmed)
}

func (h HostBookingHandler) Reject(c *gin.Context) {
	h.transition(c, domainbooking.StatusRejected)
}

func (h HostBookingHandler) Cancel(c *gin.Context) {
	h.transition(c, domainbooking.StatusCancelledByHost)
}

func (h HostBookingHandler) Complete(c *gin.Context) {
	h.transition(c, domainbooking.StatusCompleted)
}

func (h HostBookingHandler) transition(c *gin.Context, target domainbooking.Status) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req hostBookingActionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	dispatchTransition(c, h.Commands, h.Logger, transitionParams{
		BookingID: c.Param("id"),
		ActorID:   host.ID,
		ActorRole: string(domainbooking.RoleHost),
		Status:    string(target),
		Reason:    strings.TrimSpace(req.Reason),
	})
}

var _ HostBookingHTTP = HostBookingHandler{}
