package allscreenshots

import "fmt"

// LayoutType arranges captures on the composed canvas.
type LayoutType string

const (
	LayoutGrid         LayoutType = "GRID"
	LayoutHorizontal   LayoutType = "HORIZONTAL"
	LayoutVertical     LayoutType = "VERTICAL"
	LayoutMasonry      LayoutType = "MASONRY"
	LayoutMondrian     LayoutType = "MONDRIAN"
	LayoutPartitioning LayoutType = "PARTITIONING"
	LayoutAuto         LayoutType = "AUTO"
)

func (l LayoutType) valid() bool {
	switch l {
	case LayoutGrid, LayoutHorizontal, LayoutVertical, LayoutMasonry,
		LayoutMondrian, LayoutPartitioning, LayoutAuto:
		return true
	}
	return false
}

// Alignment positions captures of unequal height within a row.
type Alignment string

const (
	AlignTop    Alignment = "top"
	AlignCenter Alignment = "center"
	AlignBottom Alignment = "bottom"
)

// CaptureItem is one page in a composition. Each item is validated
// against the same URL and bound rules as a single capture.
type CaptureItem struct {
	URL      string    `json:"url"`
	ID       string    `json:"id,omitempty"`
	Label    string    `json:"label,omitempty"`
	Viewport *Viewport `json:"viewport,omitempty"`
	Device   string    `json:"device,omitempty"`
	FullPage bool      `json:"fullPage,omitempty"`
	DarkMode bool      `json:"darkMode,omitempty"`
	Delay    int       `json:"delay,omitempty"`
}

// VariantConfig captures the same URL under a different configuration,
// for side-by-side device or theme comparisons.
type VariantConfig struct {
	ID        string    `json:"id,omitempty"`
	Label     string    `json:"label,omitempty"`
	Viewport  *Viewport `json:"viewport,omitempty"`
	Device    string    `json:"device,omitempty"`
	FullPage  bool      `json:"fullPage,omitempty"`
	DarkMode  bool      `json:"darkMode,omitempty"`
	Delay     int       `json:"delay,omitempty"`
	CustomCSS string    `json:"customCss,omitempty"`
}

// LabelConfig renders capture labels onto the composed image.
type LabelConfig struct {
	Enabled  *bool  `json:"enabled,omitempty"`
	FontSize int    `json:"fontSize,omitempty"`
	Color    string `json:"color,omitempty"`
	Position string `json:"position,omitempty"`
}

// BorderConfig draws a border around each capture.
type BorderConfig struct {
	Enabled *bool  `json:"enabled,omitempty"`
	Width   int    `json:"width,omitempty"`
	Color   string `json:"color,omitempty"`
	Radius  int    `json:"radius,omitempty"`
}

// ShadowConfig drops a shadow behind each capture.
type ShadowConfig struct {
	Enabled *bool  `json:"enabled,omitempty"`
	Blur    int    `json:"blur,omitempty"`
	Color   string `json:"color,omitempty"`
	OffsetX int    `json:"offsetX,omitempty"`
	OffsetY int    `json:"offsetY,omitempty"`
}

// ComposeOutput shapes the composed canvas.
type ComposeOutput struct {
	Layout         LayoutType    `json:"layout,omitempty"`
	Format         ImageFormat   `json:"format,omitempty"`
	Quality        int           `json:"quality,omitempty"`
	Columns        int           `json:"columns,omitempty"`
	Spacing        int           `json:"spacing,omitempty"`
	Padding        int           `json:"padding,omitempty"`
	Background     string        `json:"background,omitempty"`
	Alignment      Alignment     `json:"alignment,omitempty"`
	MaxWidth       int           `json:"maxWidth,omitempty"`
	MaxHeight      int           `json:"maxHeight,omitempty"`
	ThumbnailWidth int           `json:"thumbnailWidth,omitempty"`
	Labels         *LabelConfig  `json:"labels,omitempty"`
	Border         *BorderConfig `json:"border,omitempty"`
	Shadow         *ShadowConfig `json:"shadow,omitempty"`
}

// ComposeRequest combines multiple captures into one output image.
// Either Captures (distinct pages) or URL plus Variants (one page,
// several configurations) must be set, not both.
type ComposeRequest struct {
	Captures      []CaptureItem   `json:"captures,omitempty"`
	URL           string          `json:"url,omitempty"`
	Variants      []VariantConfig `json:"variants,omitempty"`
	Output        *ComposeOutput  `json:"output,omitempty"`
	Async         bool            `json:"async,omitempty"`
	WebhookURL    string          `json:"webhookUrl,omitempty"`
	WebhookSecret string          `json:"webhookSecret,omitempty"`
}

// validate checks the composition before submission.
func (r *ComposeRequest) validate() error {
	hasCaptures := len(r.Captures) > 0
	hasVariants := r.URL != "" || len(r.Variants) > 0

	switch {
	case hasCaptures && hasVariants:
		return &ValidationError{Field: "captures", Reason: "captures and url/variants are mutually exclusive"}
	case hasCaptures:
		for i, c := range r.Captures {
			field := fmt.Sprintf("captures[%d]", i)
			if err := validateTargetURL(field+".url", c.URL); err != nil {
				return err
			}
			if c.Device != "" && !IsDevicePreset(c.Device) {
				return &ValidationError{Field: field + ".device", Reason: fmt.Sprintf("unrecognized device preset %q", c.Device)}
			}
			if c.Delay < 0 || c.Delay > MaxDelayMS {
				return &ValidationError{Field: field + ".delay", Reason: fmt.Sprintf("must be between 0 and %d milliseconds, got %d", MaxDelayMS, c.Delay)}
			}
		}
	case hasVariants:
		if err := validateTargetURL("url", r.URL); err != nil {
			return err
		}
		if len(r.Variants) == 0 {
			return &ValidationError{Field: "variants", Reason: "must contain at least one variant"}
		}
		for i, v := range r.Variants {
			field := fmt.Sprintf("variants[%d]", i)
			if v.Device != "" && !IsDevicePreset(v.Device) {
				return &ValidationError{Field: field + ".device", Reason: fmt.Sprintf("unrecognized device preset %q", v.Device)}
			}
			if v.Delay < 0 || v.Delay > MaxDelayMS {
				return &ValidationError{Field: field + ".delay", Reason: fmt.Sprintf("must be between 0 and %d milliseconds, got %d", MaxDelayMS, v.Delay)}
			}
		}
	default:
		return &ValidationError{Field: "captures", Reason: "either captures or url with variants is required"}
	}

	return r.validateOutput()
}

func (r *ComposeRequest) validateOutput() error {
	o := r.Output
	if o == nil {
		return nil
	}
	if o.Layout != "" && !o.Layout.valid() {
		return &ValidationError{Field: "output.layout", Reason: fmt.Sprintf("unknown layout %q", o.Layout)}
	}
	if o.Format != "" && !o.Format.valid() {
		return &ValidationError{Field: "output.format", Reason: fmt.Sprintf("unknown format %q", o.Format)}
	}
	if o.Quality != 0 && o.Format.IsLossy() && (o.Quality < MinQuality || o.Quality > MaxQuality) {
		return &ValidationError{Field: "output.quality", Reason: fmt.Sprintf("must be between %d and %d, got %d", MinQuality, MaxQuality, o.Quality)}
	}
	if o.Columns < 0 {
		return &ValidationError{Field: "output.columns", Reason: "must not be negative"}
	}
	if o.Spacing < 0 {
		return &ValidationError{Field: "output.spacing", Reason: "must not be negative"}
	}
	if o.Padding < 0 {
		return &ValidationError{Field: "output.padding", Reason: "must not be negative"}
	}
	return nil
}

// ComposeResponse is the outcome of a synchronous composition. The
// service answers with either a JSON body describing a retrievable URL
// or the raw composed image; in the second case Image carries the bytes
// and the JSON fields stay zero.
type ComposeResponse struct {
	URL          string           `json:"url,omitempty"`
	StorageURL   string           `json:"storageUrl,omitempty"`
	ExpiresAt    string           `json:"expiresAt,omitempty"`
	Width        int              `json:"width,omitempty"`
	Height       int              `json:"height,omitempty"`
	Format       string           `json:"format,omitempty"`
	FileSize     int64            `json:"fileSize,omitempty"`
	RenderTimeMS int64            `json:"renderTimeMs,omitempty"`
	Layout       string           `json:"layout,omitempty"`
	Metadata     *ComposeMetadata `json:"metadata,omitempty"`

	// Image holds the composed bytes when the service responded with a
	// binary body instead of JSON.
	Image []byte `json:"-"`
}

// ComposeMetadata describes how the composition was assembled.
type ComposeMetadata struct {
	CaptureCount int    `json:"captureCount,omitempty"`
	LayoutType   string `json:"layoutType,omitempty"`
}

// ComposeJobStatus reports an asynchronous composition's progress.
type ComposeJobStatus struct {
	JobID             string           `json:"jobId"`
	Status            string           `json:"status"`
	Progress          int              `json:"progress,omitempty"`
	TotalCaptures     int              `json:"totalCaptures,omitempty"`
	CompletedCaptures int              `json:"completedCaptures,omitempty"`
	Result            *ComposeResponse `json:"result,omitempty"`
	ErrorCode         string           `json:"errorCode,omitempty"`
	ErrorMessage      string           `json:"errorMessage,omitempty"`
	CreatedAt         string           `json:"createdAt,omitempty"`
	CompletedAt       string           `json:"completedAt,omitempty"`
}

// ComposeJobSummary is one entry in the compose job listing.
type ComposeJobSummary struct {
	JobID             string `json:"jobId"`
	Status            string `json:"status"`
	TotalCaptures     int    `json:"totalCaptures,omitempty"`
	CompletedCaptures int    `json:"completedCaptures,omitempty"`
	FailedCaptures    int    `json:"failedCaptures,omitempty"`
	Progress          int    `json:"progress,omitempty"`
	LayoutType        string `json:"layoutType,omitempty"`
	CreatedAt         string `json:"createdAt,omitempty"`
	CompletedAt       string `json:"completedAt,omitempty"`
}

// LayoutPreviewParams asks the service where captures would land on the
// canvas for a given layout, without rendering anything.
type LayoutPreviewParams struct {
	Layout       LayoutType
	ImageCount   int
	CanvasWidth  int
	CanvasHeight int
	AspectRatios string
}

// LayoutPreview is the dry-run placement result.
type LayoutPreview struct {
	Layout         string             `json:"layout"`
	ResolvedLayout string             `json:"resolvedLayout,omitempty"`
	CanvasWidth    int                `json:"canvasWidth"`
	CanvasHeight   int                `json:"canvasHeight"`
	Placements     []PlacementPreview `json:"placements"`
}

// PlacementPreview is one capture's computed position.
type PlacementPreview struct {
	Index  int    `json:"index"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Label  string `json:"label,omitempty"`
}
