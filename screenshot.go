package allscreenshots

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/andybalholm/cascadia"
)

// Capture option bounds enforced at build time.
const (
	MinQuality   = 1
	MaxQuality   = 100
	MaxDelayMS   = 30000
	MinTimeoutMS = 1000
	MaxTimeoutMS = 60000
)

// ScreenshotRequest is a validated capture request. Build one through
// NewScreenshot; a request obtained from Build is internally consistent
// and must be treated as read-only.
type ScreenshotRequest struct {
	// URL is the page to capture.
	URL string `json:"url"`

	// Viewport is an explicit viewport. Unset when Device is set.
	Viewport *Viewport `json:"viewport,omitempty"`

	// Device is a preset name from the device registry.
	Device string `json:"device,omitempty"`

	// Format is the output encoding. The service defaults to png.
	Format ImageFormat `json:"format,omitempty"`

	// FullPage captures the whole scroll height instead of the viewport.
	FullPage bool `json:"fullPage,omitempty"`

	// Quality applies to lossy formats, 1-100.
	Quality int `json:"quality,omitempty"`

	// Delay waits the given milliseconds after load before capturing.
	Delay int `json:"delay,omitempty"`

	// WaitFor delays the capture until this selector matches. Passed
	// through verbatim; the renderer interprets it.
	WaitFor string `json:"waitFor,omitempty"`

	// WaitUntil is the page lifecycle event to wait for.
	WaitUntil WaitUntil `json:"waitUntil,omitempty"`

	// Timeout is the per-capture render budget in milliseconds.
	Timeout int `json:"timeout,omitempty"`

	// DarkMode renders with a dark color-scheme preference.
	DarkMode bool `json:"darkMode,omitempty"`

	// CustomCSS is injected into the page before capture.
	CustomCSS string `json:"customCss,omitempty"`

	// HideSelectors are elements removed from view before capture.
	HideSelectors []string `json:"hideSelectors,omitempty"`

	// Selector restricts the capture to the first matching element.
	Selector string `json:"selector,omitempty"`

	// BlockAds enables the ad blocker.
	BlockAds bool `json:"blockAds,omitempty"`

	// BlockCookieBanners hides cookie consent banners.
	BlockCookieBanners bool `json:"blockCookieBanners,omitempty"`

	// BlockLevel tunes how aggressively ads and trackers are stripped.
	BlockLevel BlockLevel `json:"blockLevel,omitempty"`

	// WebhookURL receives a signed notification when an async capture
	// finishes. See VerifyWebhookSignature.
	WebhookURL string `json:"webhookUrl,omitempty"`

	// WebhookSecret signs the webhook payload.
	WebhookSecret string `json:"webhookSecret,omitempty"`

	// ResponseType selects raw bytes or a JSON envelope on the
	// synchronous endpoint.
	ResponseType ResponseType `json:"responseType,omitempty"`
}

// ScreenshotBuilder accumulates capture options. Zero or more setters
// followed by Build, which validates everything before any network
// activity.
type ScreenshotBuilder struct {
	req ScreenshotRequest
}

// NewScreenshot starts a capture request for the given page URL.
func NewScreenshot(pageURL string) *ScreenshotBuilder {
	return &ScreenshotBuilder{req: ScreenshotRequest{URL: pageURL}}
}

// Device selects a named preset. Takes precedence over Viewport.
func (b *ScreenshotBuilder) Device(name string) *ScreenshotBuilder {
	b.req.Device = name
	return b
}

// Viewport sets an explicit viewport size.
func (b *ScreenshotBuilder) Viewport(width, height int) *ScreenshotBuilder {
	b.req.Viewport = &Viewport{Width: width, Height: height}
	return b
}

// ViewportScale sets an explicit viewport with a device scale factor.
func (b *ScreenshotBuilder) ViewportScale(width, height, scaleFactor int) *ScreenshotBuilder {
	b.req.Viewport = &Viewport{Width: width, Height: height, DeviceScaleFactor: scaleFactor}
	return b
}

// Format sets the output encoding.
func (b *ScreenshotBuilder) Format(f ImageFormat) *ScreenshotBuilder {
	b.req.Format = f
	return b
}

// FullPage toggles full scroll-height capture.
func (b *ScreenshotBuilder) FullPage(on bool) *ScreenshotBuilder {
	b.req.FullPage = on
	return b
}

// Quality sets the lossy-format quality, 1-100.
func (b *ScreenshotBuilder) Quality(q int) *ScreenshotBuilder {
	b.req.Quality = q
	return b
}

// Delay waits ms milliseconds after load before capturing.
func (b *ScreenshotBuilder) Delay(ms int) *ScreenshotBuilder {
	b.req.Delay = ms
	return b
}

// WaitFor delays the capture until the selector matches.
func (b *ScreenshotBuilder) WaitFor(selector string) *ScreenshotBuilder {
	b.req.WaitFor = selector
	return b
}

// WaitUntil sets the page lifecycle event to wait for.
func (b *ScreenshotBuilder) WaitUntil(w WaitUntil) *ScreenshotBuilder {
	b.req.WaitUntil = w
	return b
}

// Timeout sets the per-capture render budget in milliseconds.
func (b *ScreenshotBuilder) Timeout(ms int) *ScreenshotBuilder {
	b.req.Timeout = ms
	return b
}

// DarkMode renders with a dark color-scheme preference.
func (b *ScreenshotBuilder) DarkMode(on bool) *ScreenshotBuilder {
	b.req.DarkMode = on
	return b
}

// CustomCSS injects a stylesheet into the page before capture.
func (b *ScreenshotBuilder) CustomCSS(css string) *ScreenshotBuilder {
	b.req.CustomCSS = css
	return b
}

// HideSelectors removes matching elements from view before capture.
func (b *ScreenshotBuilder) HideSelectors(selectors ...string) *ScreenshotBuilder {
	b.req.HideSelectors = append(b.req.HideSelectors, selectors...)
	return b
}

// Selector restricts the capture to the first matching element.
func (b *ScreenshotBuilder) Selector(selector string) *ScreenshotBuilder {
	b.req.Selector = selector
	return b
}

// BlockAds enables the ad blocker.
func (b *ScreenshotBuilder) BlockAds(on bool) *ScreenshotBuilder {
	b.req.BlockAds = on
	return b
}

// BlockCookieBanners hides cookie consent banners.
func (b *ScreenshotBuilder) BlockCookieBanners(on bool) *ScreenshotBuilder {
	b.req.BlockCookieBanners = on
	return b
}

// BlockLevel tunes ad and tracker stripping.
func (b *ScreenshotBuilder) BlockLevel(l BlockLevel) *ScreenshotBuilder {
	b.req.BlockLevel = l
	return b
}

// Webhook registers a signed completion notification endpoint.
func (b *ScreenshotBuilder) Webhook(url, secret string) *ScreenshotBuilder {
	b.req.WebhookURL = url
	b.req.WebhookSecret = secret
	return b
}

// ResponseType selects raw bytes or a JSON envelope on the synchronous
// endpoint.
func (b *ScreenshotBuilder) ResponseType(rt ResponseType) *ScreenshotBuilder {
	b.req.ResponseType = rt
	return b
}

// Build validates the accumulated options and returns the immutable
// request, or a ValidationError naming the offending field. When both a
// device preset and an explicit viewport were given, the preset wins
// and the viewport is dropped.
func (b *ScreenshotBuilder) Build() (*ScreenshotRequest, error) {
	req := b.req

	if err := validateTargetURL("url", req.URL); err != nil {
		return nil, err
	}

	if req.Device != "" {
		if !IsDevicePreset(req.Device) {
			return nil, &ValidationError{Field: "device", Reason: fmt.Sprintf("unrecognized device preset %q", req.Device)}
		}
		req.Viewport = nil
	}

	if req.Format != "" && !req.Format.valid() {
		return nil, &ValidationError{Field: "format", Reason: fmt.Sprintf("unknown format %q", req.Format)}
	}
	if req.Quality != 0 && req.Format.IsLossy() {
		if req.Quality < MinQuality || req.Quality > MaxQuality {
			return nil, &ValidationError{Field: "quality", Reason: fmt.Sprintf("must be between %d and %d, got %d", MinQuality, MaxQuality, req.Quality)}
		}
	}
	if req.Delay < 0 || req.Delay > MaxDelayMS {
		return nil, &ValidationError{Field: "delay", Reason: fmt.Sprintf("must be between 0 and %d milliseconds, got %d", MaxDelayMS, req.Delay)}
	}
	if req.WaitUntil != "" && !req.WaitUntil.valid() {
		return nil, &ValidationError{Field: "waitUntil", Reason: fmt.Sprintf("unknown wait condition %q", req.WaitUntil)}
	}
	if req.Timeout != 0 && (req.Timeout < MinTimeoutMS || req.Timeout > MaxTimeoutMS) {
		return nil, &ValidationError{Field: "timeout", Reason: fmt.Sprintf("must be between %d and %d milliseconds, got %d", MinTimeoutMS, MaxTimeoutMS, req.Timeout)}
	}
	if req.BlockLevel != "" && !req.BlockLevel.valid() {
		return nil, &ValidationError{Field: "blockLevel", Reason: fmt.Sprintf("unknown block level %q", req.BlockLevel)}
	}
	if err := validateSelectorList("hideSelectors", req.HideSelectors); err != nil {
		return nil, err
	}
	if req.Selector != "" {
		if err := validateSelector("selector", req.Selector); err != nil {
			return nil, err
		}
	}

	return &req, nil
}

// validateTargetURL requires a non-empty absolute http(s) URL.
func validateTargetURL(field, raw string) error {
	if raw == "" {
		return &ValidationError{Field: field, Reason: "must not be empty"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("not a valid URL: %v", err)}
	}
	if !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return &ValidationError{Field: field, Reason: "must be an absolute http or https URL"}
	}
	return nil
}

// validateSelector checks CSS selector syntax. Semantics stay with the
// renderer; only unparseable selectors fail here.
func validateSelector(field, selector string) error {
	if _, err := cascadia.Parse(selector); err != nil {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("invalid CSS selector %q: %v", selector, err)}
	}
	return nil
}

func validateSelectorList(field string, selectors []string) error {
	for _, s := range selectors {
		if err := validateSelector(field, s); err != nil {
			return err
		}
	}
	return nil
}

// AsyncJob acknowledges an accepted asynchronous capture.
type AsyncJob struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	StatusURL string    `json:"statusUrl,omitempty"`
	CreatedAt string    `json:"createdAt,omitempty"`
}

// Job is the server-side state of an asynchronous screenshot job.
type Job struct {
	ID           string          `json:"id"`
	Status       JobStatus       `json:"status"`
	URL          string          `json:"url,omitempty"`
	ResultURL    string          `json:"resultUrl,omitempty"`
	ErrorCode    string          `json:"errorCode,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	CreatedAt    string          `json:"createdAt,omitempty"`
	StartedAt    string          `json:"startedAt,omitempty"`
	CompletedAt  string          `json:"completedAt,omitempty"`
	ExpiresAt    string          `json:"expiresAt,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}
