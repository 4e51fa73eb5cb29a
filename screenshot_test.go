package allscreenshots

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestBuild_Valid(t *testing.T) {
	req, err := NewScreenshot("https://example.com").
		Device("Desktop HD").
		Format(FormatPNG).
		FullPage(true).
		Delay(500).
		WaitUntil(WaitUntilNetworkIdle).
		Timeout(15000).
		DarkMode(true).
		HideSelectors(".cookie-banner", "#chat-widget").
		Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if req.URL != "https://example.com" {
		t.Errorf("URL = %q", req.URL)
	}
	if req.Device != "Desktop HD" {
		t.Errorf("Device = %q", req.Device)
	}
	if !req.FullPage {
		t.Error("FullPage not set")
	}
	if len(req.HideSelectors) != 2 {
		t.Errorf("HideSelectors = %v", req.HideSelectors)
	}
}

func TestBuild_Validation(t *testing.T) {
	tests := []struct {
		name      string
		builder   *ScreenshotBuilder
		wantField string
	}{
		{"empty url", NewScreenshot(""), "url"},
		{"relative url", NewScreenshot("/path/only"), "url"},
		{"ftp scheme", NewScreenshot("ftp://example.com"), "url"},
		{"unknown device", NewScreenshot("https://example.com").Device("Nokia 3310"), "device"},
		{"unknown format", NewScreenshot("https://example.com").Format("bmp"), "format"},
		{"quality too high", NewScreenshot("https://example.com").Format(FormatWebP).Quality(150), "quality"},
		{"quality too low", NewScreenshot("https://example.com").Format(FormatJPEG).Quality(-3), "quality"},
		{"delay negative", NewScreenshot("https://example.com").Delay(-1), "delay"},
		{"delay too long", NewScreenshot("https://example.com").Delay(30001), "delay"},
		{"unknown wait condition", NewScreenshot("https://example.com").WaitUntil("idle"), "waitUntil"},
		{"timeout too short", NewScreenshot("https://example.com").Timeout(500), "timeout"},
		{"timeout too long", NewScreenshot("https://example.com").Timeout(60001), "timeout"},
		{"unknown block level", NewScreenshot("https://example.com").BlockLevel("everything"), "blockLevel"},
		{"broken hide selector", NewScreenshot("https://example.com").HideSelectors("div", ":::"), "hideSelectors"},
		{"broken selector", NewScreenshot("https://example.com").Selector("[unclosed"), "selector"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			if err == nil {
				t.Fatal("Build succeeded, want validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error type %T, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestBuild_QualityIgnoredForLossless(t *testing.T) {
	// Quality bounds apply to lossy encodings only; a lossless capture
	// carries the value through untouched.
	req, err := NewScreenshot("https://example.com").Format(FormatPNG).Quality(150).Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if req.Quality != 150 {
		t.Errorf("Quality = %d, want 150", req.Quality)
	}

	if _, err := NewScreenshot("https://example.com").Quality(150).Build(); err != nil {
		t.Errorf("Build with no format returned error: %v", err)
	}
}

func TestBuild_QualityWithinRangeForLossy(t *testing.T) {
	req, err := NewScreenshot("https://example.com").Format(FormatJPEG).Quality(80).Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if req.Quality != 80 {
		t.Errorf("Quality = %d, want 80", req.Quality)
	}
}

func TestBuild_PresetWinsOverViewport(t *testing.T) {
	req, err := NewScreenshot("https://example.com").
		Viewport(800, 600).
		Device("iPhone 14").
		Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if req.Device != "iPhone 14" {
		t.Errorf("Device = %q", req.Device)
	}
	if req.Viewport != nil {
		t.Errorf("Viewport = %+v, want nil when a preset is set", req.Viewport)
	}
}

func TestBuild_ViewportKeptWithoutPreset(t *testing.T) {
	req, err := NewScreenshot("https://example.com").ViewportScale(800, 600, 2).Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if req.Viewport == nil || req.Viewport.Width != 800 || req.Viewport.Height != 600 || req.Viewport.DeviceScaleFactor != 2 {
		t.Errorf("Viewport = %+v", req.Viewport)
	}
}

func TestBuild_WaitForPassedThrough(t *testing.T) {
	// wait_for is renderer territory; the builder must not second-guess
	// its syntax.
	req, err := NewScreenshot("https://example.com").WaitFor("js:window.ready === true").Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if req.WaitFor != "js:window.ready === true" {
		t.Errorf("WaitFor = %q", req.WaitFor)
	}
}

func TestScreenshotRequest_WireCasing(t *testing.T) {
	req, err := NewScreenshot("https://example.com").
		FullPage(true).
		WaitUntil(WaitUntilLoad).
		HideSelectors(".ad").
		Webhook("https://hooks.example.com/shot", "s3cret").
		Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)

	for _, key := range []string{`"fullPage"`, `"waitUntil"`, `"hideSelectors"`, `"webhookUrl"`, `"webhookSecret"`} {
		if !strings.Contains(body, key) {
			t.Errorf("wire body missing %s: %s", key, body)
		}
	}
	if strings.Contains(body, `"full_page"`) {
		t.Errorf("wire body uses snake_case: %s", body)
	}
}
