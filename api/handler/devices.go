package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allscreenshots/allscreenshots-go"
)

// DeviceInfo is one preset entry in the device listing.
type DeviceInfo struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Scale  int    `json:"scale"`
}

// Devices returns a handler for GET /api/devices. The registry is
// fixed at startup, so the listing is computed once.
func Devices() gin.HandlerFunc {
	presets := allscreenshots.DevicePresets()
	devices := make([]DeviceInfo, len(presets))
	for i, p := range presets {
		devices[i] = DeviceInfo{
			Name:   p.Name,
			Width:  p.Viewport.Width,
			Height: p.Viewport.Height,
			Scale:  p.Viewport.DeviceScaleFactor,
		}
	}

	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"devices": devices})
	}
}
