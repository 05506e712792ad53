package ginserver

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staynest/internal/app/commands"
	"staynest/internal/app/dto"
	propertiesapp "staynest/internal/app/handlers/properties"
	"staynest/internal/app/queries"
	domainproperty "staynest/internal/domain/property"
)

const maxPropertyPhotoSizeBytes int64 = 10 * 1024 * 1024

type HostPropertyHTTP interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	SetPricing(c *gin.Context)
	Publish(c *gin.Context)
	Unpublish(c *gin.Context)
	UploadPhoto(c *gin.Context)
	AddAvailability(c *gin.Context)
	RemoveAvailability(c *gin.Context)
	BlockDates(c *gin.Context)
	UnblockDates(c *gin.Context)
}

type HostPropertyHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type hostPropertyRequest struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	PropertyType string              `json:"property_type"`
	Address      hostPropertyAddress `json:"address"`
	Amenities    []string            `json:"amenities"`
	MaxGuests    int                 `json:"max_guests"`
}

type hostPropertyAddress struct {
	Line1   string  `json:"line1"`
	Line2   string  `json:"line2"`
	City    string  `json:"city"`
	Region  string  `json:"region"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type pricingRequest struct {
	BasePrice              int64 `json:"base_price"`
	CleaningFee            int64 `json:"cleaning_fee"`
	ServiceFee             int64 `json:"service_fee"`
	TaxRatePercent         int   `json:"tax_rate_percent"`
	MinimumStayNights      int   `json:"minimum_stay_nights"`
	MaximumStayNights      int   `json:"maximum_stay_nights"`
	WeeklyDiscountPercent  int   `json:"weekly_discount_percent"`
	MonthlyDiscountPercent int   `json:"monthly_discount_percent"`
}

type dateRangeRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type blockDatesRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

func (h HostPropertyHandler) List(c *gin.Context) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := propertiesapp.ListHostPropertiesQuery{
		HostID: host.ID,
		Status: strings.TrimSpace(c.Query("status")),
	}
	result, err := queries.Ask[propertiesapp.ListHostPropertiesQuery, dto.HostPropertyCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostPropertyHandler) Create(c *gin.Context) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req hostPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := propertiesapp.CreateHostPropertyCommand{HostID: host.ID, Payload: buildHostPropertyPayload(req)}
	result, err := commands.Dispatch[propertiesapp.CreateHostPropertyCommand, *dto.HostPropertyDetail](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/v1/host/properties/%s", result.ID))
	c.JSON(http.StatusCreated, result)
}

func (h HostPropertyHandler) Get(c *gin.Context) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := propertiesapp.GetHostPropertyQuery{
		HostID:     host.ID,
		PropertyID: c.Param("id"),
	}
	result, err := queries.Ask[propertiesapp.GetHostPropertyQuery, dto.HostPropertyDetail](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostPropertyHandler) Update(c *gin.Context) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req hostPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := propertiesapp.UpdateHostPropertyCommand{
		HostID:     host.ID,
		PropertyID: c.Param("id"),
		Payload:    buildHostPropertyPayload(req),
	}
	result, err := commands.Dispatch[propertiesapp.UpdateHostPropertyCommand, *dto.HostPropertyDetail](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostPropertyHandler) SetPricing(c *gin.Context) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req pricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := propertiesapp.SetPricingCommand{
		HostID:     host.ID,
		PropertyID: c.Param("id"),
		Payload: propertiesapp.PricingPayload{
			BasePrice:              req.BasePrice,
			CleaningFee:            req.CleaningFee,
			ServiceFee:             req.ServiceFee,
			TaxRatePercent:         req.TaxRatePercent,
			MinimumStayNights:      req.MinimumStayNights,
			MaximumStayNights:      req.MaximumStayNights,
			WeeklyDiscountPercent:  req.WeeklyDiscountPercent,
			MonthlyDiscountPercent: req.MonthlyDiscountPercent,
		},
	}
	result, err := commands.Dispatch[propertiesapp.SetPricingCommand, *dto.HostPropertyDetail](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostPropertyHandler) Publish(c *gin.Context) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	cmd := propertiesapp.PublishHostPropertyCommand{HostID: host.ID, PropertyID: c.Param("id")}
	result, err := commands.Dispatch[propertiesapp.PublishHostPropertyCommand, *dto.HostPropertyDetail](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostPropertyHandler) Unpublish(c *gin.Context) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	cmd := propertiesapp.UnpublishHostPropertyCommand{HostID: host.ID, PropertyID: c.Param("id")}
	result, err := commands.Dispatch[propertiesapp.UnpublishHostPropertyCommand, *dto.HostPropertyDetail](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostPropertyHandler) UploadPhoto(c *gin.Context) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	propertyID := strings.TrimSpace(c.Param("id"))
	if propertyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "property id is required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is empty"})
		return
	}
	if fileHeader.Size > maxPropertyPhotoSizeBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("file too large (max %d MB)", maxPropertyPhotoSizeBytes/1024/1024)})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPropertyPhotoSizeBytes+1024))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot read file"})
		return
	}
	if len(data) == 0 || int64(len(data)) > maxPropertyPhotoSizeBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is empty or too large"})
		return
	}

	contentType := http.DetectContentType(data)
	if !isAllowedImageType(contentType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported content type: %s", contentType)})
		return
	}

	cmd := propertiesapp.UploadPropertyPhotoCommand{
		HostID:      host.ID,
		PropertyID:  propertyID,
		ObjectKey:   buildPhotoObjectKey(propertyID, fileHeader.Filename, contentType),
		ContentType: contentType,
		Reader:      bytes.NewReader(data),
	}
	result, err := commands.Dispatch[propertiesapp.UploadPropertyPhotoCommand, *dto.PhotoUploadResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h HostPropertyHandler) AddAvailability(c *gin.Context) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	start, end, ok := h.bindRange(c)
	if !ok {
		return
	}
	cmd := propertiesapp.AddAvailabilityCommand{
		HostID:     host.ID,
		PropertyID: c.Param("id"),
		StartDate:  start,
		EndDate:    end,
	}
	result, err := commands.Dispatch[propertiesapp.AddAvailabilityCommand, *dto.Calendar](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostPropertyHandler) RemoveAvailability(c *gin.Context) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	start, end, ok := h.bindRange(c)
	if !ok {
		return
	}
	cmd := propertiesapp.RemoveAvailabilityCommand{
		HostID:     host.ID,
		PropertyID: c.Param("id"),
		StartDate:  start,
		EndDate:    end,
	}
	result, err := commands.Dispatch[propertiesapp.RemoveAvailabilityCommand, *dto.Calendar](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostPropertyHandler) BlockDates(c *gin.Context) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req blockDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, okFrom := parseFlexibleTime(req.From)
	to, okTo := parseFlexibleTime(req.To)
	if !okFrom || !okTo {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to must be valid dates"})
		return
	}
	cmd := propertiesapp.BlockDatesCommand{
		HostID:     host.ID,
		PropertyID: c.Param("id"),
		From:       from,
		To:         to,
		Reason:     strings.TrimSpace(req.Reason),
	}
	result, err := commands.Dispatch[propertiesapp.BlockDatesCommand, *dto.Calendar](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostPropertyHandler) UnblockDates(c *gin.Context) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req blockDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, okFrom := parseFlexibleTime(req.From)
	to, okTo := parseFlexibleTime(req.To)
	if !okFrom || !okTo {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to must be valid dates"})
		return
	}
	cmd := propertiesapp.UnblockDatesCommand{
		HostID:     host.ID,
		PropertyID: c.Param("id"),
		From:       from,
		To:         to,
	}
	result, err := commands.Dispatch[propertiesapp.UnblockDatesCommand, *dto.Calendar](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostPropertyHandler) bindRange(c *gin.Context) (time.Time, time.Time, bool) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return time.Time{}, time.Time{}, false
	}
	var req dateRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return time.Time{}, time.Time{}, false
	}
	start, okStart := parseFlexibleTime(req.StartDate)
	end, okEnd := parseFlexibleTime(req.EndDate)
	if !okStart || !okEnd {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date and end_date must be valid dates"})
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func (h HostPropertyHandler) respondWithError(c *gin.Context, err error) {
	if h.Logger != nil {
		fields := []any{"error", err, "path", c.FullPath()}
		if host, ok := currentPrincipal(c); ok {
			fields = append(fields, "host_id", host.ID)
		}
		h.Logger.Error("host property request failed", fields...)
	}
	respondError(c, err)
}

func buildHostPropertyPayload(req hostPropertyRequest) propertiesapp.HostPropertyPayload {
	address := domainproperty.Address{
		Line1:   strings.TrimSpace(req.Address.Line1),
		Line2:   strings.TrimSpace(req.Address.Line2),
		City:    strings.TrimSpace(req.Address.City),
		Region:  strings.TrimSpace(req.Address.Region),
		Country: strings.TrimSpace(req.Address.Country),
		Lat:     req.Address.Lat,
		Lon:     req.Address.Lon,
	}
	if address.Region == "" {
		address.Region = address.Country
	}
	return propertiesapp.HostPropertyPayload{
		Title:        req.Title,
		Description:  req.Description,
		PropertyType: strings.TrimSpace(req.PropertyType),
		Address:      address,
		Amenities:    cleanStrings(req.Amenities),
		MaxGuests:    req.MaxGuests,
	}
}

func cleanStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func isAllowedImageType(contentType string) bool {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/webp":
		return true
	default:
		return false
	}
}

func extensionForContentType(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

func buildPhotoObjectKey(propertyID, filename, contentType string) string {
	ext := extensionForContentType(contentType)
	if ext == "" {
		ext = strings.ToLower(path.Ext(filename))
	}
	if ext == "" {
		ext = ".img"
	}
	return fmt.Sprintf("properties/%s/%s%s", sanitizePathToken(propertyID), uuid.NewString(), ext)
}

func sanitizePathToken(value string) string {
	if strings.TrimSpace(value) == "" {
		return "property"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	result := strings.Trim(b.String(), "-")
	if result == "" {
		return "property"
	}
	return result
}

var _ HostPropertyHTTP = HostPropertyHandler{}
