package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"staypricing/internal/infra/config"
	"staypricing/internal/infra/obs"
)

type QuoteHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	Tiers(c *gin.Context)
}

type BookingHTTP interface {
	Create(c *gin.Context)
	Confirm(c *gin.Context)
	Complete(c *gin.Context)
	Cancel(c *gin.Context)
	ListMine(c *gin.Context)
}

type DraftHTTP interface {
	Start(c *gin.Context)
	OpenFromListing(c *gin.Context)
	Get(c *gin.Context)
	Validate(c *gin.Context)
	UpdateSection(c *gin.Context)
	Navigate(c *gin.Context)
	SetLongStay(c *gin.Context)
	SetPropertyDiscount(c *gin.Context)
	AddSeasonal(c *gin.Context)
	RemoveSeasonal(c *gin.Context)
	AddEarlyBird(c *gin.Context)
	RemoveEarlyBird(c *gin.Context)
	Publish(c *gin.Context)
	Reset(c *gin.Context)
}

type HostListingHTTP interface {
	List(c *gin.Context)
	Suspend(c *gin.Context)
}

type Handlers struct {
	Quote       QuoteHTTP
	Booking     BookingHTTP
	Draft       DraftHTTP
	HostListing HostListingHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the gin engine; tests drive it through httptest.
func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	router.Use(GatewayPrincipal())

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Quote != nil {
		api.GET("/membership/tiers", h.Quote.Tiers)
		api.POST("/listings/:id/quotes", h.Quote.Create)
		api.GET("/quotes/:id", h.Quote.Get)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.POST("/bookings/:id/confirm", h.Booking.Confirm)
		api.POST("/bookings/:id/complete", h.Booking.Complete)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
		api.GET("/me/bookings", h.Booking.ListMine)
	}
	if h.Draft != nil {
		drafts := api.Group("/host/drafts")
		drafts.POST("", h.Draft.Start)
		drafts.GET("/:id", h.Draft.Get)
		drafts.GET("/:id/validation", h.Draft.Validate)
		drafts.PATCH("/:id/sections/:section", h.Draft.UpdateSection)
		drafts.POST("/:id/steps/:step", h.Draft.Navigate)
		drafts.PUT("/:id/discounts/long-stay", h.Draft.SetLongStay)
		drafts.PUT("/:id/discounts/property", h.Draft.SetPropertyDiscount)
		drafts.POST("/:id/discounts/seasonal", h.Draft.AddSeasonal)
		drafts.DELETE("/:id/discounts/seasonal/:rule", h.Draft.RemoveSeasonal)
		drafts.POST("/:id/discounts/early-bird", h.Draft.AddEarlyBird)
		drafts.DELETE("/:id/discounts/early-bird/:rule", h.Draft.RemoveEarlyBird)
		drafts.POST("/:id/publish", h.Draft.Publish)
		drafts.POST("/:id/reset", h.Draft.Reset)
		api.POST("/host/listings/:id/draft", h.Draft.OpenFromListing)
	}
	if h.HostListing != nil {
		api.GET("/host/listings", h.HostListing.List)
		api.POST("/host/listings/:id/suspend", h.HostListing.Suspend)
	}
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Idempotency-Key", UserIDHeader, UserRolesHeader},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"Location",
			obs.RequestIDHeader,
		},
		MaxAge: 12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
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
