package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allscreenshots/allscreenshots-go"
	"github.com/allscreenshots/allscreenshots-go/api/handler"
	"github.com/allscreenshots/allscreenshots-go/cache"
)

func TestScreenshot_CapturesAndEncodesDataURI(t *testing.T) {
	var hits atomic.Int32
	sdk := newSDK(t, pngUpstream(&hits))

	router := gin.New()
	router.POST("/api/screenshot", handler.Screenshot(sdk, nil))

	w := postJSON(t, router, "/api/screenshot", map[string]any{
		"url":       "https://example.com",
		"device":    "iPhone 14",
		"full_page": true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	resp := decodeCapture(t, w)
	if !resp.Success {
		t.Fatalf("success = false: %+v", resp.Error)
	}
	if !strings.HasPrefix(resp.Image, "data:image/png;base64,") {
		t.Errorf("image = %.40q, want png data URI", resp.Image)
	}
	if resp.Format != "png" {
		t.Errorf("format = %q, want png", resp.Format)
	}
	if resp.Cached {
		t.Error("cached = true on first capture")
	}
	if hits.Load() != 1 {
		t.Errorf("upstream hits = %d, want 1", hits.Load())
	}
}

func TestScreenshot_SecondRequestServedFromCache(t *testing.T) {
	var hits atomic.Int32
	sdk := newSDK(t, pngUpstream(&hits))
	cc := cache.New(10, time.Minute)

	router := gin.New()
	router.POST("/api/screenshot", handler.Screenshot(sdk, cc))

	body := map[string]any{"url": "https://example.com", "device": "Desktop HD"}

	first := decodeCapture(t, postJSON(t, router, "/api/screenshot", body))
	if first.Cached {
		t.Error("first response cached = true")
	}

	second := decodeCapture(t, postJSON(t, router, "/api/screenshot", body))
	if !second.Cached {
		t.Error("second response cached = false")
	}
	if second.Image != first.Image {
		t.Error("cached image differs from original")
	}
	if hits.Load() != 1 {
		t.Errorf("upstream hits = %d, want 1", hits.Load())
	}
}

func TestScreenshot_UnknownDeviceRejectedBeforeUpstream(t *testing.T) {
	var hits atomic.Int32
	sdk := newSDK(t, pngUpstream(&hits))

	router := gin.New()
	router.POST("/api/screenshot", handler.Screenshot(sdk, nil))

	w := postJSON(t, router, "/api/screenshot", map[string]any{
		"url":    "https://example.com",
		"device": "Nokia 3310",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	resp := decodeCapture(t, w)
	if resp.Success {
		t.Error("success = true for invalid device")
	}
	if resp.Error == nil || resp.Error.Code != allscreenshots.ErrCodeValidation {
		t.Errorf("error = %+v, want code %s", resp.Error, allscreenshots.ErrCodeValidation)
	}
	if hits.Load() != 0 {
		t.Errorf("upstream hits = %d, want 0", hits.Load())
	}
}

func TestScreenshot_MalformedJSON(t *testing.T) {
	sdk := newSDK(t, pngUpstream(nil))

	router := gin.New()
	router.POST("/api/screenshot", handler.Screenshot(sdk, nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/screenshot", strings.NewReader(`{"url":`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	resp := decodeCapture(t, w)
	if resp.Error == nil || resp.Error.Code != allscreenshots.ErrCodeValidation {
		t.Errorf("error = %+v, want code %s", resp.Error, allscreenshots.ErrCodeValidation)
	}
}

func TestScreenshot_UpstreamFailureMapsToBadGateway(t *testing.T) {
	sdk := newSDK(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"errorCode":"INTERNAL_ERROR","errorMessage":"renderer crashed"}`))
	}))

	router := gin.New()
	router.POST("/api/screenshot", handler.Screenshot(sdk, nil))

	w := postJSON(t, router, "/api/screenshot", map[string]any{"url": "https://example.com"})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}

	resp := decodeCapture(t, w)
	if resp.Error == nil || resp.Error.Code != allscreenshots.ErrCodeInternal {
		t.Errorf("error = %+v, want code %s", resp.Error, allscreenshots.ErrCodeInternal)
	}
}

func TestScreenshot_UpstreamRateLimitMapsTo429(t *testing.T) {
	sdk := newSDK(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"errorCode":"RATE_LIMIT_EXCEEDED","errorMessage":"slow down"}`))
	}))

	router := gin.New()
	router.POST("/api/screenshot", handler.Screenshot(sdk, nil))

	w := postJSON(t, router, "/api/screenshot", map[string]any{"url": "https://example.com"})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
}
