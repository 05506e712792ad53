package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"staynest/internal/infra/config"
	"staynest/internal/infra/obs"
)

type Handlers struct {
	Auth           AuthHTTP
	Property       PropertyHTTP
	Booking        BookingHTTP
	HostProperty   HostPropertyHTTP
	HostBooking    HostBookingHTTP
	Me             MeHTTP
	Reviews        ReviewsHTTP
	Admin          AdminHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	registerSwaggerRoutes(router)

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
		api.POST("/auth/otp/request", h.Auth.RequestOTP)
		api.POST("/auth/otp/verify", h.Auth.VerifyOTP)
	}
	if h.Property != nil {
		api.GET("/properties", h.Property.Catalog)
		api.GET("/properties/:id/overview", h.Property.Overview)
		api.GET("/properties/:id/calendar", h.Property.Calendar)
		api.GET("/properties/:id/quote", h.Property.Quote)
		api.GET("/properties/:id/reviews", h.Property.Reviews)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
	}
	if h.Reviews != nil {
		api.POST("/bookings/:id/reviews", h.Reviews.Submit)
	}
	if h.Me != nil {
		api.GET("/me/bookings", h.Me.ListBookings)
	}
	if h.HostProperty != nil {
		hostProps := api.Group("/host/properties")
		hostProps.GET("", h.HostProperty.List)
		hostProps.POST("", h.HostProperty.Create)
		hostProps.GET("/:id", h.HostProperty.Get)
		hostProps.PUT("/:id", h.HostProperty.Update)
		hostProps.PUT("/:id/pricing", h.HostProperty.SetPricing)
		hostProps.POST("/:id/publish", h.HostProperty.Publish)
		hostProps.POST("/:id/unpublish", h.HostProperty.Unpublish)
		hostProps.POST("/:id/photos", h.HostProperty.UploadPhoto)
		hostProps.POST("/:id/availability", h.HostProperty.AddAvailability)
		hostProps.DELETE("/:id/availability", h.HostProperty.RemoveAvailability)
		hostProps.POST("/:id/blocks", h.HostProperty.BlockDates)
		hostProps.DELETE("/:id/blocks", h.HostProperty.UnblockDates)
	}
	if h.HostBooking != nil {
		hostBookings := api.Group("/host/bookings")
		hostBookings.GET("", h.HostBooking.List)
		hostBookings.POST("/:id/confirm", h.HostBooking.Confirm)
		hostBookings.POST("/:id/reject", h.HostBooking.Reject)
		hostBookings.POST("/:id/cancel", h.HostBooking.Cancel)
		hostBookings.POST("/:id/complete", h.HostBooking.Complete)
	}
	if h.Admin != nil {
		api.POST("/admin/bookings/:id/transition", h.Admin.TransitionBooking)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
