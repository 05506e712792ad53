package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"staynest/internal/app/commands"
	domainbooking "staynest/internal/domain/booking"
)

type AdminHTTP interface {
	TransitionBooking(c *gin.Context)
}

// AdminHandler exposes operator overrides. Admin transitions go through the
// same lifecycle rules as guests and hosts, only the authority check widens.
type AdminHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type adminTransitionRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (h AdminHandler) TransitionBooking(c *gin.Context) {
	admin, ok := requireRole(c, "admin")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req adminTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dispatchTransition(c, h.Commands, h.Logger, transitionParams{
		BookingID: c.Param("id"),
		ActorID:   admin.ID,
		ActorRole: string(domainbooking.RoleAdmin),
		Status:    strings.TrimSpace(req.Status),
		Reason:    strings.TrimSpace(req.Reason),
	})
}

var _ AdminHTTP = (*AdminHandler)(nil)
