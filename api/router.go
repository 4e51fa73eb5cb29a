package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allscreenshots/allscreenshots-go"
	"github.com/allscreenshots/allscreenshots-go/api/handler"
	"github.com/allscreenshots/allscreenshots-go/api/middleware"
	"github.com/allscreenshots/allscreenshots-go/cache"
	"github.com/allscreenshots/allscreenshots-go/config"
)

// NewRouter creates a configured gin engine with all routes and
// middleware.
//
// Middleware chain:
//
//	Global:  Recovery, RequestID, Logger
//	API:     Auth (no-op without configured keys), then RateLimit
//
// The index page and health endpoint stay outside auth and rate
// limiting so the form loads and monitoring probes always work.
func NewRouter(sdk *allscreenshots.Client, cfg *config.Config, cc *cache.Cache, index []byte, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(gin.Logger())

	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", index)
	})
	r.GET("/health", handler.Health(cc, startTime))

	// Protected group: auth then rate limit.
	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.Auth(cfg.Auth.APIKeys))
	apiGroup.Use(middleware.RateLimit(cfg.RateLimit))

	apiGroup.GET("/devices", handler.Devices())
	apiGroup.POST("/screenshot", handler.Screenshot(sdk, cc))
	apiGroup.POST("/compare", handler.Compare(sdk, cfg.Compare))

	return r
}
