package handler_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/allscreenshots/allscreenshots-go"
	"github.com/allscreenshots/allscreenshots-go/api/handler"
	"github.com/allscreenshots/allscreenshots-go/config"
)

// deviceUpstream decodes the device from each capture request and
// records it. Devices listed in fail get a 500 instead of a PNG.
func deviceUpstream(seen *sync.Map, fail ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Device string `json:"device"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		seen.Store(body.Device, true)

		for _, f := range fail {
			if body.Device == f {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"errorCode":"INTERNAL_ERROR","errorMessage":"render failed"}`))
				return
			}
		}

		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes)
	})
}

func compareCfg() config.CompareConfig {
	return config.CompareConfig{MaxConcurrent: 2, Devices: []string{"Desktop HD"}}
}

func TestCompare_CapturesEveryRequestedDevice(t *testing.T) {
	var seen sync.Map
	sdk := newSDK(t, deviceUpstream(&seen))

	router := gin.New()
	router.POST("/api/compare", handler.Compare(sdk, compareCfg()))

	w := postJSON(t, router, "/api/compare", map[string]any{
		"url":     "https://example.com",
		"devices": []string{"Desktop HD", "iPhone 14"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp handler.CompareResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("success = false")
	}
	if len(resp.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(resp.Results))
	}

	// Results keep request order regardless of completion order.
	for i, want := range []string{"Desktop HD", "iPhone 14"} {
		r := resp.Results[i]
		if r.Device != want {
			t.Errorf("results[%d].Device = %q, want %q", i, r.Device, want)
		}
		if !r.Success || !strings.HasPrefix(r.Image, "data:image/png;base64,") {
			t.Errorf("results[%d] = %+v, want png capture", i, r)
		}
		if _, ok := seen.Load(want); !ok {
			t.Errorf("upstream never saw device %q", want)
		}
	}
}

func TestCompare_PartialFailureStillReturns(t *testing.T) {
	var seen sync.Map
	sdk := newSDK(t, deviceUpstream(&seen, "iPhone 14"))

	router := gin.New()
	router.POST("/api/compare", handler.Compare(sdk, compareCfg()))

	w := postJSON(t, router, "/api/compare", map[string]any{
		"url":     "https://example.com",
		"devices": []string{"Desktop HD", "iPhone 14"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp handler.CompareResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success {
		t.Error("success = true with a failed device")
	}

	if !resp.Results[0].Success {
		t.Errorf("Desktop HD failed: %+v", resp.Results[0].Error)
	}
	failed := resp.Results[1]
	if failed.Success {
		t.Fatal("iPhone 14 reported success")
	}
	if failed.Error == nil || failed.Error.Code != allscreenshots.ErrCodeInternal {
		t.Errorf("error = %+v, want code %s", failed.Error, allscreenshots.ErrCodeInternal)
	}
}

func TestCompare_DefaultsToConfiguredDevices(t *testing.T) {
	var seen sync.Map
	sdk := newSDK(t, deviceUpstream(&seen))

	router := gin.New()
	router.POST("/api/compare", handler.Compare(sdk, compareCfg()))

	w := postJSON(t, router, "/api/compare", map[string]any{"url": "https://example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp handler.CompareResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Device != "Desktop HD" {
		t.Errorf("results = %+v, want the configured default device", resp.Results)
	}
}

func TestCompare_InvalidURLRejectedBeforeFanOut(t *testing.T) {
	var hits atomic.Int32
	sdk := newSDK(t, pngUpstream(&hits))

	router := gin.New()
	router.POST("/api/compare", handler.Compare(sdk, compareCfg()))

	w := postJSON(t, router, "/api/compare", map[string]any{
		"url":     "ftp://example.com",
		"devices": []string{"Desktop HD"},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if hits.Load() != 0 {
		t.Errorf("upstream hits = %d, want 0", hits.Load())
	}
}
