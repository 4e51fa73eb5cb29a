package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allscreenshots/allscreenshots-go"
	"github.com/allscreenshots/allscreenshots-go/cache"
)

// CaptureRequest is the demo wire format for POST /api/screenshot.
type CaptureRequest struct {
	URL      string `json:"url"`
	Device   string `json:"device"`
	FullPage bool   `json:"full_page"`
	Format   string `json:"format"`
	DarkMode bool   `json:"dark_mode"`
}

// Screenshot returns a handler for POST /api/screenshot.
//
// Orchestration flow:
//  1. Parse request, apply the png default.
//  2. Cache lookup on the full parameter set.
//  3. Build a validated SDK request, capture, cache, respond.
func Screenshot(sdk *allscreenshots.Client, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req CaptureRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, CaptureResponse{
				Success: false,
				Error: &ErrorDetail{
					Code:    allscreenshots.ErrCodeValidation,
					Message: err.Error(),
				},
			})
			return
		}
		if req.Format == "" {
			req.Format = "png"
		}

		// ── 2. Cache lookup ─────────────────────────────────────────
		key := cache.Key(req.URL, req.Device, req.Format, req.FullPage, req.DarkMode)
		if cc != nil {
			if img, format, hit := cc.Get(key); hit {
				c.JSON(http.StatusOK, CaptureResponse{
					Success:    true,
					Image:      dataURI(img, format),
					Format:     format,
					Cached:     true,
					DurationMs: time.Since(start).Milliseconds(),
				})
				return
			}
		}

		// ── 3. Build the SDK request ────────────────────────────────
		builder := allscreenshots.NewScreenshot(req.URL).
			Format(allscreenshots.ImageFormat(req.Format)).
			FullPage(req.FullPage).
			DarkMode(req.DarkMode)
		if req.Device != "" {
			builder.Device(req.Device)
		}

		shot, err := builder.Build()
		if err != nil {
			respondError(c, err)
			return
		}

		// ── 4. Capture ──────────────────────────────────────────────
		img, err := sdk.Screenshot(c.Request.Context(), shot)
		if err != nil {
			respondError(c, err)
			return
		}

		// ── 5. Cache store and respond ──────────────────────────────
		if cc != nil {
			cc.Set(key, img, req.Format)
		}

		c.JSON(http.StatusOK, CaptureResponse{
			Success:    true,
			Image:      dataURI(img, req.Format),
			Format:     req.Format,
			DurationMs: time.Since(start).Milliseconds(),
		})
	}
}
