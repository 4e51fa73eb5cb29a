package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/allscreenshots/allscreenshots-go"
	"github.com/allscreenshots/allscreenshots-go/config"
)

// CompareRequest is the demo wire format for POST /api/compare.
type CompareRequest struct {
	URL      string   `json:"url"`
	Devices  []string `json:"devices"`
	FullPage bool     `json:"full_page"`
}

// CompareResult is one device's outcome within a comparison.
type CompareResult struct {
	Device     string       `json:"device"`
	Success    bool         `json:"success"`
	Image      string       `json:"image,omitempty"`
	DurationMs int64        `json:"duration_ms"`
	Error      *ErrorDetail `json:"error,omitempty"`
}

// CompareResponse is the demo wire format for a device comparison.
type CompareResponse struct {
	Success bool            `json:"success"`
	URL     string          `json:"url"`
	Results []CompareResult `json:"results"`
}

// Compare returns a handler for POST /api/compare.
//
// Captures the same URL on every requested device preset with bounded
// concurrency. A device that fails to render becomes a failed entry in
// the result set; the comparison as a whole still returns.
func Compare(sdk *allscreenshots.Client, cfg config.CompareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		// ── 1. Parse request ────────────────────────────────────────
		var req CompareRequest
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

		devices := req.Devices
		if len(devices) == 0 {
			devices = cfg.Devices
		}

		// Validate the URL once up front; a bad URL fails every device
		// identically, so there is no point fanning out.
		if _, err := allscreenshots.NewScreenshot(req.URL).Build(); err != nil {
			respondError(c, err)
			return
		}

		// ── 2. Fan out one capture per device ───────────────────────
		results := make([]CompareResult, len(devices))
		g, ctx := errgroup.WithContext(c.Request.Context())
		g.SetLimit(cfg.MaxConcurrent)

		for i, device := range devices {
			g.Go(func() error {
				start := time.Now()

				shot, err := allscreenshots.NewScreenshot(req.URL).
					Device(device).
					FullPage(req.FullPage).
					Build()
				if err == nil {
					var img []byte
					img, err = sdk.Screenshot(ctx, shot)
					if err == nil {
						results[i] = CompareResult{
							Device:     device,
							Success:    true,
							Image:      dataURI(img, "png"),
							DurationMs: time.Since(start).Milliseconds(),
						}
						return nil
					}
				}

				// The client disconnecting kills the whole comparison.
				if ctx.Err() != nil {
					return ctx.Err()
				}

				_, errCode := mapErrorToStatus(err)
				results[i] = CompareResult{
					Device:     device,
					DurationMs: time.Since(start).Milliseconds(),
					Error:      &ErrorDetail{Code: errCode, Message: err.Error()},
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			respondError(c, err)
			return
		}

		// ── 3. Respond ──────────────────────────────────────────────
		allOK := true
		for _, r := range results {
			if !r.Success {
				allOK = false
				break
			}
		}

		c.JSON(http.StatusOK, CompareResponse{
			Success: allOK,
			URL:     req.URL,
			Results: results,
		})
	}
}
