package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staynest/internal/app/commands"
	bookingapp "staynest/internal/app/handlers/booking"
	domainbooking "staynest/internal/domain/booking"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Cancel(c *gin.Context)
}

type BookingHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type createBookingRequest struct {
	PropertyID string    `json:"property_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Guests     int       `json:"guests"`
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Create(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.RequestBookingCommand{
		CommandID:       uuid.NewString(),
		PropertyID:      strings.TrimSpace(req.PropertyID),
		GuestID:         user.ID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		Now:             time.Now().UTC(),
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := h.dispatchCreate(c, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// dispatchCreate retries a single time when the transaction loses a
// concurrent write race. The second attempt re-runs the availability check,
// so a genuinely taken date range comes back as a refusal, not a conflict.
func (h BookingHandler) dispatchCreate(c *gin.Context, cmd bookingapp.RequestBookingCommand) (*bookingapp.RequestBookingResult, error) {
	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil && errors.Is(err, domainbooking.ErrConflict) {
		if h.Logger != nil {
			h.Logger.Info("booking request lost write race, retrying once", "property_id", cmd.PropertyID)
		}
		cmd.CommandID = uuid.NewString()
		return commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](c.Request.Context(), h.Commands, cmd)
	}
	return result, err
}

func (h BookingHandler) Cancel(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req cancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	dispatchTransition(c, h.Commands, h.Logger, transitionParams{
		BookingID: c.Param("id"),
		ActorID:   user.ID,
		ActorRole: string(domainbooking.RoleGuest),
		Status:    string(domainbooking.StatusCancelledByGuest),
		Reason:    strings.TrimSpace(req.Reason),
	})
}

type transitionParams struct {
	BookingID string
	ActorID   string
	ActorRole string
	Status    string
	Reason    string
}

// dispatchTransition runs a lifecycle transition and writes the HTTP
// response. A conflicting concurrent write is retried once before reporting
// 409 to the caller.
func dispatchTransition(c *gin.Context, bus commands.Bus, logger *slog.Logger, params transitionParams) {
	cmd := bookingapp.TransitionBookingCommand{
		BookingID: strings.TrimSpace(params.BookingID),
		ActorID:   params.ActorID,
		ActorRole: params.ActorRole,
		Status:    params.Status,
		Reason:    params.Reason,
		Now:       time.Now().UTC(),
	}
	result, err := commands.Dispatch[bookingapp.TransitionBookingCommand, *bookingapp.TransitionBookingResult](c.Request.Context(), bus, cmd)
	if err != nil && errors.Is(err, domainbooking.ErrConflict) {
		if logger != nil {
			logger.Info("booking transition lost write race, retrying once", "booking_id", cmd.BookingID, "status", cmd.Status)
		}
		result, err = commands.Dispatch[bookingapp.TransitionBookingCommand, *bookingapp.TransitionBookingResult](c.Request.Context(), bus, cmd)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingHTTP = BookingHandler{}
