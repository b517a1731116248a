package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"bookingengine/internal/infra/config"
	"bookingengine/internal/infra/obs"
)

type BookingHTTP interface {
	GuestBookings(c *gin.Context)
	HostBookings(c *gin.Context)
	Request(c *gin.Context)
}

type AvailabilityHTTP interface {
	Occupancy(c *gin.Context)
}

type MetricsHTTP interface {
	Accommodation(c *gin.Context)
	Host(c *gin.Context)
	HostReport(c *gin.Context)
}

type ListingHTTP interface {
	Search(c *gin.Context)
}

type Handlers struct {
	Booking      BookingHTTP
	Availability AvailabilityHTTP
	Metrics      MetricsHTTP
	Listing      ListingHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg.CORSOrigins, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter registers only the groups whose handlers are set.
func NewRouter(origins []string, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", IdempotencyHeader},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			obs.RequestIDHeader,
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Booking != nil {
		api.GET("/guests/:id/bookings", h.Booking.GuestBookings)
		api.GET("/hosts/:id/bookings", h.Booking.HostBookings)
		api.POST("/bookings", h.Booking.Request)
	}
	if h.Availability != nil {
		api.GET("/accommodations/:id/occupancy", h.Availability.Occupancy)
	}
	if h.Metrics != nil {
		api.GET("/accommodations/:id/metrics", h.Metrics.Accommodation)
		api.GET("/hosts/:id/metrics", h.Metrics.Host)
		api.GET("/hosts/:id/metrics/report", h.Metrics.HostReport)
	}
	if h.Listing != nil {
		api.GET("/accommodations", h.Listing.Search)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "local":
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
