package allscreenshots

import "fmt"

// MaxBulkURLs is the per-submission URL limit enforced by the service.
const MaxBulkURLs = 50

// BulkOptions is a partial capture configuration for bulk submissions.
// Fields are pointers so an explicit false or zero can override a
// default; nil means "inherit". Use the Bool/Int/String helpers.
type BulkOptions struct {
	Viewport           *Viewport    `json:"viewport,omitempty"`
	Device             *string      `json:"device,omitempty"`
	Format             *ImageFormat `json:"format,omitempty"`
	FullPage           *bool        `json:"fullPage,omitempty"`
	Quality            *int         `json:"quality,omitempty"`
	Delay              *int         `json:"delay,omitempty"`
	WaitFor            *string      `json:"waitFor,omitempty"`
	WaitUntil          *WaitUntil   `json:"waitUntil,omitempty"`
	Timeout            *int         `json:"timeout,omitempty"`
	DarkMode           *bool        `json:"darkMode,omitempty"`
	CustomCSS          *string      `json:"customCss,omitempty"`
	BlockAds           *bool        `json:"blockAds,omitempty"`
	BlockCookieBanners *bool        `json:"blockCookieBanners,omitempty"`
	BlockLevel         *BlockLevel  `json:"blockLevel,omitempty"`
}

// BulkURL is one capture target within a bulk submission, with optional
// per-URL overrides of the shared defaults.
type BulkURL struct {
	URL     string       `json:"url"`
	Options *BulkOptions `json:"options,omitempty"`
}

// BulkRequest submits many independent captures as one progress-bearing
// job. Defaults apply to every URL; per-URL options override them field
// by field. The client resolves the merge before sending, so the wire
// request carries the effective per-URL configuration.
type BulkRequest struct {
	URLs          []BulkURL    `json:"urls"`
	Defaults      *BulkOptions `json:"-"`
	WebhookURL    string       `json:"webhookUrl,omitempty"`
	WebhookSecret string       `json:"webhookSecret,omitempty"`
}

// merged returns a copy of the request with defaults folded into every
// URL's options. Per-item fields win; unset fields inherit the default.
func (r *BulkRequest) merged() *BulkRequest {
	out := BulkRequest{
		URLs:          make([]BulkURL, len(r.URLs)),
		WebhookURL:    r.WebhookURL,
		WebhookSecret: r.WebhookSecret,
	}
	for i, u := range r.URLs {
		out.URLs[i] = BulkURL{URL: u.URL, Options: mergeBulkOptions(r.Defaults, u.Options)}
	}
	return &out
}

// mergeBulkOptions resolves one item's effective options: every non-nil
// override field replaces the default, everything else is inherited.
func mergeBulkOptions(defaults, overrides *BulkOptions) *BulkOptions {
	if defaults == nil && overrides == nil {
		return nil
	}

	merged := BulkOptions{}
	if defaults != nil {
		merged = *defaults
	}
	if overrides == nil {
		return &merged
	}

	if overrides.Viewport != nil {
		merged.Viewport = overrides.Viewport
	}
	if overrides.Device != nil {
		merged.Device = overrides.Device
	}
	if overrides.Format != nil {
		merged.Format = overrides.Format
	}
	if overrides.FullPage != nil {
		merged.FullPage = overrides.FullPage
	}
	if overrides.Quality != nil {
		merged.Quality = overrides.Quality
	}
	if overrides.Delay != nil {
		merged.Delay = overrides.Delay
	}
	if overrides.WaitFor != nil {
		merged.WaitFor = overrides.WaitFor
	}
	if overrides.WaitUntil != nil {
		merged.WaitUntil = overrides.WaitUntil
	}
	if overrides.Timeout != nil {
		merged.Timeout = overrides.Timeout
	}
	if overrides.DarkMode != nil {
		merged.DarkMode = overrides.DarkMode
	}
	if overrides.CustomCSS != nil {
		merged.CustomCSS = overrides.CustomCSS
	}
	if overrides.BlockAds != nil {
		merged.BlockAds = overrides.BlockAds
	}
	if overrides.BlockCookieBanners != nil {
		merged.BlockCookieBanners = overrides.BlockCookieBanners
	}
	if overrides.BlockLevel != nil {
		merged.BlockLevel = overrides.BlockLevel
	}
	return &merged
}

// validate checks a request before submission. The shared Defaults and
// every per-URL Options record are held to the same bounds as a single
// capture; the merge only ever combines already-valid records.
func (r *BulkRequest) validate() error {
	if len(r.URLs) == 0 {
		return &ValidationError{Field: "urls", Reason: "must contain at least one URL"}
	}
	if len(r.URLs) > MaxBulkURLs {
		return &ValidationError{Field: "urls", Reason: fmt.Sprintf("must not exceed %d URLs, got %d", MaxBulkURLs, len(r.URLs))}
	}
	if err := validateBulkOptions("defaults", r.Defaults); err != nil {
		return err
	}
	for i, u := range r.URLs {
		field := fmt.Sprintf("urls[%d]", i)
		if err := validateTargetURL(field+".url", u.URL); err != nil {
			return err
		}
		if err := validateBulkOptions(field, u.Options); err != nil {
			return err
		}
	}
	return nil
}

func validateBulkOptions(field string, o *BulkOptions) error {
	if o == nil {
		return nil
	}
	if o.Device != nil && !IsDevicePreset(*o.Device) {
		return &ValidationError{Field: field + ".device", Reason: fmt.Sprintf("unrecognized device preset %q", *o.Device)}
	}
	format := FormatPNG
	if o.Format != nil {
		if !o.Format.valid() {
			return &ValidationError{Field: field + ".format", Reason: fmt.Sprintf("unknown format %q", *o.Format)}
		}
		format = *o.Format
	}
	if o.Quality != nil && format.IsLossy() {
		if *o.Quality < MinQuality || *o.Quality > MaxQuality {
			return &ValidationError{Field: field + ".quality", Reason: fmt.Sprintf("must be between %d and %d, got %d", MinQuality, MaxQuality, *o.Quality)}
		}
	}
	if o.Delay != nil && (*o.Delay < 0 || *o.Delay > MaxDelayMS) {
		return &ValidationError{Field: field + ".delay", Reason: fmt.Sprintf("must be between 0 and %d milliseconds, got %d", MaxDelayMS, *o.Delay)}
	}
	if o.WaitUntil != nil && !o.WaitUntil.valid() {
		return &ValidationError{Field: field + ".waitUntil", Reason: fmt.Sprintf("unknown wait condition %q", *o.WaitUntil)}
	}
	if o.Timeout != nil && (*o.Timeout < MinTimeoutMS || *o.Timeout > MaxTimeoutMS) {
		return &ValidationError{Field: field + ".timeout", Reason: fmt.Sprintf("must be between %d and %d milliseconds, got %d", MinTimeoutMS, MaxTimeoutMS, *o.Timeout)}
	}
	if o.BlockLevel != nil && !o.BlockLevel.valid() {
		return &ValidationError{Field: field + ".blockLevel", Reason: fmt.Sprintf("unknown block level %q", *o.BlockLevel)}
	}
	return nil
}

// BulkResponse is returned when a bulk job is created.
type BulkResponse struct {
	ID            string        `json:"id"`
	Status        string        `json:"status"`
	TotalJobs     int           `json:"totalJobs"`
	CompletedJobs int           `json:"completedJobs"`
	FailedJobs    int           `json:"failedJobs"`
	Progress      int           `json:"progress"`
	Jobs          []BulkJobInfo `json:"jobs,omitempty"`
	CreatedAt     string        `json:"createdAt,omitempty"`
	CompletedAt   string        `json:"completedAt,omitempty"`
}

// BulkJobInfo identifies one capture within a bulk job.
type BulkJobInfo struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Status string `json:"status"`
}

// BulkJobSummary is one entry in the bulk job listing.
type BulkJobSummary struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	TotalJobs     int    `json:"totalJobs"`
	CompletedJobs int    `json:"completedJobs"`
	FailedJobs    int    `json:"failedJobs"`
	Progress      int    `json:"progress"`
	CreatedAt     string `json:"createdAt,omitempty"`
	CompletedAt   string `json:"completedAt,omitempty"`
}

// BulkStatusResponse reports bulk progress with per-capture detail.
type BulkStatusResponse struct {
	ID            string          `json:"id"`
	Status        string          `json:"status"`
	TotalJobs     int             `json:"totalJobs"`
	CompletedJobs int             `json:"completedJobs"`
	FailedJobs    int             `json:"failedJobs"`
	Progress      int             `json:"progress"`
	Jobs          []BulkJobDetail `json:"jobs,omitempty"`
	CreatedAt     string          `json:"createdAt,omitempty"`
	CompletedAt   string          `json:"completedAt,omitempty"`
}

// BulkJobDetail is the full state of one capture within a bulk job.
type BulkJobDetail struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	Status       string `json:"status"`
	ResultURL    string `json:"resultUrl,omitempty"`
	StorageURL   string `json:"storageUrl,omitempty"`
	Format       string `json:"format,omitempty"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	FileSize     int64  `json:"fileSize,omitempty"`
	RenderTimeMS int64  `json:"renderTimeMs,omitempty"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	CompletedAt  string `json:"completedAt,omitempty"`
}
