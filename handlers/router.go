package handlers

import (
	"time"

	"gamecatalog/middleware"
	"gamecatalog/monitoring"
	"gamecatalog/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterOptions struct {
	AllowOrigins []string

	// Limiter enables per-client rate limiting when set and RateLimit > 0.
	Limiter    middleware.RateLimiter
	RateLimit  int
	RateWindow time.Duration
}

// NewRouter builds the HTTP surface: /api/games, /health and /metrics.
func NewRouter(games service.GameService, health *HealthHandler, opts RouterOptions) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RemovePoweredBy())
	r.Use(monitoring.PrometheusMiddleware())
	r.Use(cors.New(corsConfig(opts.AllowOrigins)))

	r.GET("/health", health.Health)
	r.GET("/metrics", monitoring.PrometheusHandler())

	api := r.Group("/api")
	if opts.Limiter != nil && opts.RateLimit > 0 {
		api.Use(middleware.RateLimit(opts.Limiter, opts.RateLimit, opts.RateWindow))
	}
	NewGameHandler(games).Register(api)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
