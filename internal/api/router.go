package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"facility-buddy-backend/config"
	"facility-buddy-backend/internal/aggregate"
	"facility-buddy-backend/internal/directory"
	"facility-buddy-backend/internal/mw"
	"facility-buddy-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, dir *directory.Service, agg *aggregate.Aggregator, info directory.InfoClient, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, dir, agg, info, webpushOptions, cfg.Directory.NearbyCount)

	limit := rate.Limit(10)
	if cfg.Server.RateLimitPerSec > 0 {
		limit = rate.Limit(cfg.Server.RateLimitPerSec)
	}
	rateLimiter := mw.RateLimiter(limit, 5, cfg.Server.RequestIPHeader)

	cacheTTL := 5 * time.Minute
	if cfg.Server.CacheTTLSeconds > 0 {
		cacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	}
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/facilities", caching, handler.GetFacilities)
		api.POST("/facilities/refresh", handler.RefreshFacilities)
		api.GET("/facilities/:org_id/nearby", caching, handler.GetNearby)
		api.GET("/facilities/:org_id/availability", handler.GetAvailability)

		api.GET("/comparison", handler.GetComparison)
		api.GET("/selection", handler.GetSelection)
		api.PUT("/selection", handler.PutSelection)
		api.DELETE("/selection", handler.DeleteSelection)

		api.GET("/preference", handler.GetPreference)
		api.PUT("/preference", handler.PutPreference)
		api.POST("/preference/apply", handler.ApplyPreference)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
