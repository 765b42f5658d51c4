package api

import (
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"marketplace-booking-backend/config"
	"marketplace-booking-backend/internal/model"
	"marketplace-booking-backend/internal/mw"
	"marketplace-booking-backend/internal/notification"
	"marketplace-booking-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, s store.Store, notifier *notification.WorkerPool, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, notifier, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, cfg.RequestIPHeader)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	r.GET("/api/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(rateLimiter, mw.Auth(cfg.JWTSecret))
	{
		// Slot registry
		api.POST("/services/:service_id/slots", handler.CreateSlots)
		api.GET("/services/:service_id/slots", caching, handler.ListSlots)

		// Booking lifecycle
		api.POST("/bookings", handler.CreateBooking)
		api.GET("/bookings", handler.ListBookings)
		api.GET("/bookings/stats", handler.GetStats)
		api.GET("/bookings/:number", handler.GetBooking)
		api.POST("/bookings/:number/status", handler.UpdateStatus)
		api.POST("/bookings/:number/rating", handler.RateBooking)

		// Dispute resolution
		api.POST("/bookings/:number/dispute", handler.OpenDispute)
		api.POST("/disputes/:id/resolve", mw.RequireRoles(model.RoleAdmin, model.RoleStaff), handler.ResolveDispute)

		// Push subscriptions
		api.GET("/subscriptions", handler.GetSubscriptions)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/push/public_key", handler.GetPushPublicKey)
	}

	return r
}
