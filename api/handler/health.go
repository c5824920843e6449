package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/domhash/cache"
	"github.com/use-agent/domhash/domhash"
	"github.com/use-agent/domhash/models"
)

// Health returns a handler for GET /api/v1/health. cc may be nil.
func Health(cc *cache.Cache, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		var stats models.CacheStats
		if cc != nil {
			stats = cc.Stats()
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:     "healthy",
			Uptime:     time.Since(startTime).Round(time.Second).String(),
			CacheStats: stats,
			Version:    domhash.Version,
		})
	}
}
