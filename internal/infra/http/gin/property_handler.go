package ginserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"staynest/internal/app/dto"
	availabilityapp "staynest/internal/app/handlers/availability"
	propertiesapp "staynest/internal/app/handlers/properties"
	reviewsapp "staynest/internal/app/handlers/reviews"
	"staynest/internal/app/queries"
)

type PropertyHTTP interface {
	Catalog(c *gin.Context)
	Overview(c *gin.Context)
	Calendar(c *gin.Context)
	Quote(c *gin.Context)
	Reviews(c *gin.Context)
}

// PropertyHandler serves the public, unauthenticated catalog surface.
type PropertyHandler struct {
	Queries queries.Bus
}

func (h PropertyHandler) Catalog(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	checkIn, _ := parseFlexibleTime(c.Query("check_in"))
	checkOut, _ := parseFlexibleTime(c.Query("check_out"))
	query := propertiesapp.SearchCatalogQuery{
		City:          c.Query("city"),
		Country:       c.Query("country"),
		LocationQuery: c.Query("q"),
		Amenities:     splitCSV(c.Query("amenities")),
		PropertyTypes: splitCSV(c.Query("property_types")),
		MinGuests:     parseInt(c.Query("guests")),
		PriceMin:      parseInt64(c.Query("price_min")),
		PriceMax:      parseInt64(c.Query("price_max")),
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Sort:          c.Query("sort"),
		Limit:         parseIntWithDefault(c.Query("limit"), 24),
		Offset:        parseInt(c.Query("offset")),
	}
	result, err := queries.Ask[propertiesapp.SearchCatalogQuery, dto.CatalogPage](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) Overview(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	propertyID := c.Param("id")
	if propertyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "property id is required"})
		return
	}
	query := propertiesapp.GetOverviewQuery{PropertyID: propertyID}
	result, err := queries.Ask[propertiesapp.GetOverviewQuery, dto.PropertyOverview](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) Calendar(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := availabilityapp.GetCalendarQuery{PropertyID: c.Param("id")}
	result, err := queries.Ask[availabilityapp.GetCalendarQuery, dto.Calendar](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Quote previews availability and price for a stay without creating
// anything. Refusals come back with 200 and available=false.
func (h PropertyHandler) Quote(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	checkIn, okIn := parseFlexibleTime(c.Query("check_in"))
	checkOut, okOut := parseFlexibleTime(c.Query("check_out"))
	if !okIn || !okOut {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_in and check_out must be valid dates"})
		return
	}
	query := availabilityapp.CheckQuery{
		PropertyID: c.Param("id"),
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     parseIntWithDefault(c.Query("guests"), 1),
	}
	result, err := queries.Ask[availabilityapp.CheckQuery, dto.Quote](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) Reviews(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := reviewsapp.ListPropertyReviewsQuery{
		PropertyID: c.Param("id"),
		Limit:      parsePositiveInt(c.Query("limit"), 20),
		Offset:     parsePositiveInt(c.Query("offset"), 0),
	}
	result, err := queries.Ask[reviewsapp.ListPropertyReviewsQuery, dto.ReviewCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PropertyHTTP = PropertyHandler{}

func parseFlexibleTime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseInt(raw string) int {
	value, _ := strconv.Atoi(strings.TrimSpace(raw))
	if value < 0 {
		return 0
	}
	return value
}

func parseIntWithDefault(raw string, fallback int) int {
	value := parseInt(raw)
	if value == 0 {
		return fallback
	}
	return value
}

func parsePositiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func parseInt64(raw string) int64 {
	value, _ := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if value < 0 {
		return 0
	}
	return value
}
