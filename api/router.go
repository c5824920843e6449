package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/domhash/api/handler"
	"github.com/use-agent/domhash/api/middleware"
	"github.com/use-agent/domhash/config"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger → BodyLimit
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is outside auth so monitoring probes always work.
func NewRouter(cfg *config.Config, dg *handler.Digester, batches *handler.Batches, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	v1 := r.Group("/api/v1")

	// Health: no auth required.
	v1.GET("/health", handler.Health(dg.Cache, startTime))

	// Protected group: auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Digest & compare
	protected.POST("/digest", handler.PostDigest(dg))
	protected.POST("/compare", handler.PostCompare(dg))

	// Batch
	protected.POST("/batch/digest", batches.Post())
	protected.GET("/batch/:id", batches.Get())

	return r
}
