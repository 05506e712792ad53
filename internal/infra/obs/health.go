package obs

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandlers serves the liveness and readiness probes. Ready is optional;
// when set it typically pings the backing store.
type HealthHandlers struct {
	Ready func() error
}

// Livez reports the process is up.
func (h HealthHandlers) Livez(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz reports whether the service can take traffic.
func (h HealthHandlers) Readyz(c *gin.Context) {
	if h.Ready != nil {
		if err := h.Ready(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
