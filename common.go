package allscreenshots

// ImageFormat selects the output encoding of a capture.
type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatJPEG ImageFormat = "jpeg"
	FormatJPG  ImageFormat = "jpg"
	FormatWebP ImageFormat = "webp"
	FormatPDF  ImageFormat = "pdf"
)

// IsLossy reports whether the format carries a quality setting.
func (f ImageFormat) IsLossy() bool {
	return f == FormatJPEG || f == FormatJPG || f == FormatWebP
}

func (f ImageFormat) valid() bool {
	switch f {
	case FormatPNG, FormatJPEG, FormatJPG, FormatWebP, FormatPDF:
		return true
	}
	return false
}

// WaitUntil names the page lifecycle event the renderer waits for
// before taking the capture.
type WaitUntil string

const (
	WaitUntilLoad             WaitUntil = "load"
	WaitUntilDOMContentLoaded WaitUntil = "domcontentloaded"
	WaitUntilNetworkIdle      WaitUntil = "networkidle"
	WaitUntilCommit           WaitUntil = "commit"
)

func (w WaitUntil) valid() bool {
	switch w {
	case WaitUntilLoad, WaitUntilDOMContentLoaded, WaitUntilNetworkIdle, WaitUntilCommit:
		return true
	}
	return false
}

// BlockLevel controls how aggressively the renderer strips ads and
// trackers from the page before capture.
type BlockLevel string

const (
	BlockLevelNone        BlockLevel = "none"
	BlockLevelAds         BlockLevel = "ads"
	BlockLevelAdsTrackers BlockLevel = "ads_trackers"
	BlockLevelStrict      BlockLevel = "strict"
)

func (b BlockLevel) valid() bool {
	switch b {
	case BlockLevelNone, BlockLevelAds, BlockLevelAdsTrackers, BlockLevelStrict:
		return true
	}
	return false
}

// ResponseType asks the service for raw bytes or a JSON envelope on the
// synchronous screenshot endpoint. The client decodes both either way.
type ResponseType string

const (
	ResponseTypeBinary ResponseType = "BINARY"
	ResponseTypeJSON   ResponseType = "JSON"
)

// JobStatus is the lifecycle state of an asynchronous job.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "QUEUED"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
	JobStatusCancelled  JobStatus = "CANCELLED"
)

// IsTerminal reports whether no further status transition can occur.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// IsSuccess reports whether the job finished with a result.
func (s JobStatus) IsSuccess() bool {
	return s == JobStatusCompleted
}

// Viewport is an explicit browser viewport. Mutually exclusive with a
// device preset; the preset wins when both are set on a builder.
type Viewport struct {
	Width             int `json:"width,omitempty"`
	Height            int `json:"height,omitempty"`
	DeviceScaleFactor int `json:"deviceScaleFactor,omitempty"`
}

// Bool returns a pointer to b, for optional fields on override records.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to i, for optional fields on override records.
func Int(i int) *int { return &i }

// String returns a pointer to s, for optional fields on override records.
func String(s string) *string { return &s }
