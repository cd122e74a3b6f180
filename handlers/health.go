package handlers

import (
	"context"
	"net/http"
	"time"

	"gamecatalog/utils"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type CacheStatus interface {
	Enabled() bool
	IsAvailable(ctx context.Context) bool
	Stats(ctx context.Context) (map[string]interface{}, error)
}

type HealthHandler struct {
	database Pinger
	cache    CacheStatus
	timeout  time.Duration
}

// NewHealthHandler reports on the database and, when enabled, the cache. cache may be nil.
func NewHealthHandler(database Pinger, cache CacheStatus) *HealthHandler {
	return &HealthHandler{database: database, cache: cache, timeout: 2 * time.Second}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	body := gin.H{"status": "ok", "database": "up", "cache": "disabled"}

	if err := h.database.Ping(ctx); err != nil {
		utils.Log.WithError(err).Error("Health check: database unreachable")
		status = http.StatusServiceUnavailable
		body["status"] = "unavailable"
		body["database"] = "down"
	}

	if h.cache != nil && h.cache.Enabled() {
		body["cache"] = "down"
		if h.cache.IsAvailable(ctx) {
			body["cache"] = "up"
			if stats, err := h.cache.Stats(ctx); err == nil {
				body["db_size"] = stats["db_size"]
			}
		}
	}

	c.JSON(status, body)
}
