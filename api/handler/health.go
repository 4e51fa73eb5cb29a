package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allscreenshots/allscreenshots-go"
	"github.com/allscreenshots/allscreenshots-go/cache"
)

// HealthResponse reports demo server liveness.
type HealthResponse struct {
	Status       string `json:"status"`
	Uptime       string `json:"uptime"`
	Version      string `json:"version"`
	CacheEntries int    `json:"cache_entries"`
}

// Health returns a handler for GET /health.
func Health(cc *cache.Cache, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries := 0
		if cc != nil {
			entries = cc.Len()
		}

		c.JSON(http.StatusOK, HealthResponse{
			Status:       "healthy",
			Uptime:       time.Since(startTime).Round(time.Second).String(),
			Version:      allscreenshots.Version,
			CacheEntries: entries,
		})
	}
}
