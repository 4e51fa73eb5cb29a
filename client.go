// Package allscreenshots is the Go client for the Allscreenshots
// screenshot-capture API. It covers synchronous and asynchronous
// captures, bulk batches, multi-shot composition, schedules, and usage
// reporting.
//
// Construct a Client with New or NewFromEnv, build capture requests
// with NewScreenshot, and call the endpoint methods. Retryable failures
// (network errors, request timeouts, rate limits, 5xx responses) are
// retried with exponential backoff per RetryPolicy; everything else is
// returned to the caller on the first failure.
package allscreenshots

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Version is reported in the User-Agent header of every request.
const Version = "0.1.0"

const (
	defaultBaseURL = "https://api.allscreenshots.com"
	defaultTimeout = 60 * time.Second

	apiKeyHeader = "X-API-Key"

	envAPIKey     = "ALLSCREENSHOTS_API_KEY"
	envBaseURL    = "ALLSCREENSHOTS_BASE_URL"
	envTimeoutMS  = "ALLSCREENSHOTS_TIMEOUT_MS"
	envMaxRetries = "ALLSCREENSHOTS_MAX_RETRIES"
)

// Config carries the knobs for constructing a Client. The zero value of
// every field except APIKey is usable and falls back to a default.
type Config struct {
	// APIKey authenticates every request. Required.
	APIKey string

	// BaseURL overrides the production endpoint, mainly for testing
	// against a local or staging deployment.
	BaseURL string

	// Timeout bounds each HTTP attempt (not the whole retried call).
	// Defaults to 60s. Ignored when HTTPClient is set.
	Timeout time.Duration

	// Retry controls backoff for retryable failures. The zero value
	// means DefaultRetryPolicy.
	Retry RetryPolicy

	// HTTPClient replaces the default transport. The caller owns its
	// timeout configuration.
	HTTPClient *http.Client

	// Logger receives retry diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// UserAgent overrides the default "allscreenshots-go/<version>".
	UserAgent string
}

// Client talks to the Allscreenshots API. It is immutable after
// construction and safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	userAgent  string
	retry      RetryPolicy
	httpClient *http.Client
	log        *slog.Logger
}

// New creates a Client from cfg.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &ConfigError{Reason: "API key cannot be empty"}
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if u, err := url.Parse(baseURL); err != nil || !u.IsAbs() {
		return nil, &ConfigError{Reason: fmt.Sprintf("invalid base URL %q", cfg.BaseURL)}
	}

	retry := cfg.Retry
	if retry == (RetryPolicy{}) {
		retry = DefaultRetryPolicy()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "allscreenshots-go/" + Version
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		userAgent:  userAgent,
		retry:      retry.normalized(),
		httpClient: httpClient,
		log:        logger,
	}, nil
}

// NewFromEnv builds a client from ALLSCREENSHOTS_* environment
// variables: ALLSCREENSHOTS_API_KEY (required), ALLSCREENSHOTS_BASE_URL,
// ALLSCREENSHOTS_TIMEOUT_MS, and ALLSCREENSHOTS_MAX_RETRIES.
func NewFromEnv() (*Client, error) {
	apiKey := os.Getenv(envAPIKey)
	if apiKey == "" {
		return nil, &ConfigError{Reason: envAPIKey + " is not set"}
	}

	cfg := Config{
		APIKey:  apiKey,
		BaseURL: os.Getenv(envBaseURL),
	}

	if v := os.Getenv(envTimeoutMS); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return nil, &ConfigError{Reason: envTimeoutMS + " must be a positive integer"}
		}
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}

	if v := os.Getenv(envMaxRetries); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, &ConfigError{Reason: envMaxRetries + " must be a non-negative integer"}
		}
		cfg.Retry = DefaultRetryPolicy()
		cfg.Retry.MaxRetries = n
	}

	return New(cfg)
}

// Screenshot captures a page synchronously and returns the image bytes.
// The call blocks until the service renders the page or fails.
func (c *Client) Screenshot(ctx context.Context, req *ScreenshotRequest) ([]byte, error) {
	return c.requestImage(ctx, http.MethodPost, "/v1/screenshots", req)
}

// ScreenshotAsync submits a capture for background processing and
// returns immediately with the created job. Poll it with GetJob or
// WaitForJob.
func (c *Client) ScreenshotAsync(ctx context.Context, req *ScreenshotRequest) (*AsyncJob, error) {
	var out AsyncJob
	if err := c.postJSON(ctx, "/v1/screenshots/async", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListJobs returns the account's screenshot jobs.
func (c *Client) ListJobs(ctx context.Context) ([]Job, error) {
	var out []Job
	if err := c.getJSON(ctx, "/v1/screenshots/jobs", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetJob returns the current state of one screenshot job.
func (c *Client) GetJob(ctx context.Context, jobID string) (*Job, error) {
	var out Job
	if err := c.getJSON(ctx, "/v1/screenshots/jobs/"+url.PathEscape(jobID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetJobResult downloads the image produced by a completed job.
func (c *Client) GetJobResult(ctx context.Context, jobID string) ([]byte, error) {
	return c.requestImage(ctx, http.MethodGet, "/v1/screenshots/jobs/"+url.PathEscape(jobID)+"/result", nil)
}

// CancelJob asks the service to stop a queued or running job.
func (c *Client) CancelJob(ctx context.Context, jobID string) (*Job, error) {
	var out Job
	if err := c.postJSON(ctx, "/v1/screenshots/jobs/"+url.PathEscape(jobID)+"/cancel", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateBulkJob validates the batch, folds the shared defaults into
// every URL entry, and submits it. The merged per-URL options are what
// goes on the wire; the Defaults field itself is never sent.
func (c *Client) CreateBulkJob(ctx context.Context, req *BulkRequest) (*BulkResponse, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	var out BulkResponse
	if err := c.postJSON(ctx, "/v1/screenshots/bulk", req.merged(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListBulkJobs returns the account's bulk jobs.
func (c *Client) ListBulkJobs(ctx context.Context) ([]BulkJobSummary, error) {
	var out []BulkJobSummary
	if err := c.getJSON(ctx, "/v1/screenshots/bulk", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetBulkJob returns the progress of one bulk job, including per-URL
// states.
func (c *Client) GetBulkJob(ctx context.Context, bulkID string) (*BulkStatusResponse, error) {
	var out BulkStatusResponse
	if err := c.getJSON(ctx, "/v1/screenshots/bulk/"+url.PathEscape(bulkID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelBulkJob stops the remaining captures of a bulk job.
func (c *Client) CancelBulkJob(ctx context.Context, bulkID string) (*BulkJobSummary, error) {
	var out BulkJobSummary
	if err := c.postJSON(ctx, "/v1/screenshots/bulk/"+url.PathEscape(bulkID)+"/cancel", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Compose renders several captures into a single output image and
// blocks until the composition is done. The service answers with either
// a JSON description (hosted URL, dimensions) or the raw image; both
// land in the returned ComposeResponse.
func (c *Client) Compose(ctx context.Context, req *ComposeRequest) (*ComposeResponse, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	payload, err := encodePayload(req)
	if err != nil {
		return nil, err
	}

	var out ComposeResponse
	err = doWithRetry(ctx, c.retry, c.log, "POST /v1/screenshots/compose", func(ctx context.Context) error {
		status, header, data, err := c.send(ctx, http.MethodPost, "/v1/screenshots/compose", payload)
		if err != nil {
			return err
		}
		if !isSuccess(status) {
			return apiErrorFrom(status, data)
		}
		if isJSONResponse(header) {
			out = ComposeResponse{}
			return decodeBody(data, &out)
		}
		out = ComposeResponse{Image: data, Format: formatFromContentType(header)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ComposeAsync submits the composition for background processing.
func (c *Client) ComposeAsync(ctx context.Context, req *ComposeRequest) (*ComposeJobStatus, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	async := *req
	async.Async = true

	var out ComposeJobStatus
	if err := c.postJSON(ctx, "/v1/screenshots/compose", &async, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PreviewLayout asks the service where captures would land on the
// canvas for a layout, without rendering anything.
func (c *Client) PreviewLayout(ctx context.Context, params LayoutPreviewParams) (*LayoutPreview, error) {
	if !params.Layout.valid() {
		return nil, &ValidationError{Field: "layout", Reason: fmt.Sprintf("unknown layout %q", params.Layout)}
	}
	if params.ImageCount < 1 {
		return nil, &ValidationError{Field: "image_count", Reason: "must be at least 1"}
	}

	q := url.Values{}
	q.Set("layout", string(params.Layout))
	q.Set("image_count", strconv.Itoa(params.ImageCount))
	if params.CanvasWidth > 0 {
		q.Set("canvas_width", strconv.Itoa(params.CanvasWidth))
	}
	if params.CanvasHeight > 0 {
		q.Set("canvas_height", strconv.Itoa(params.CanvasHeight))
	}
	if params.AspectRatios != "" {
		q.Set("aspect_ratios", params.AspectRatios)
	}

	var out LayoutPreview
	if err := c.getJSON(ctx, "/v1/screenshots/compose/preview?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListComposeJobs returns the account's compose jobs.
func (c *Client) ListComposeJobs(ctx context.Context) ([]ComposeJobSummary, error) {
	var out []ComposeJobSummary
	if err := c.getJSON(ctx, "/v1/screenshots/compose/jobs", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetComposeJob returns the progress of one compose job.
func (c *Client) GetComposeJob(ctx context.Context, jobID string) (*ComposeJobStatus, error) {
	var out ComposeJobStatus
	if err := c.getJSON(ctx, "/v1/screenshots/compose/jobs/"+url.PathEscape(jobID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSchedule registers a recurring capture.
func (c *Client) CreateSchedule(ctx context.Context, req *CreateScheduleRequest) (*Schedule, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	var out Schedule
	if err := c.postJSON(ctx, "/v1/schedules", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSchedules returns every schedule on the account.
func (c *Client) ListSchedules(ctx context.Context) (*ScheduleList, error) {
	var out ScheduleList
	if err := c.getJSON(ctx, "/v1/schedules", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSchedule returns one schedule.
func (c *Client) GetSchedule(ctx context.Context, scheduleID string) (*Schedule, error) {
	var out Schedule
	if err := c.getJSON(ctx, "/v1/schedules/"+url.PathEscape(scheduleID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSchedule applies a partial update; nil fields keep their
// current values.
func (c *Client) UpdateSchedule(ctx context.Context, scheduleID string, req *UpdateScheduleRequest) (*Schedule, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	var out Schedule
	if err := c.putJSON(ctx, "/v1/schedules/"+url.PathEscape(scheduleID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSchedule removes a schedule permanently.
func (c *Client) DeleteSchedule(ctx context.Context, scheduleID string) error {
	return c.requestJSON(ctx, http.MethodDelete, "/v1/schedules/"+url.PathEscape(scheduleID), nil, nil)
}

// PauseSchedule suspends future runs without deleting the schedule.
func (c *Client) PauseSchedule(ctx context.Context, scheduleID string) (*Schedule, error) {
	return c.scheduleAction(ctx, scheduleID, "pause")
}

// ResumeSchedule reactivates a paused schedule.
func (c *Client) ResumeSchedule(ctx context.Context, scheduleID string) (*Schedule, error) {
	return c.scheduleAction(ctx, scheduleID, "resume")
}

// TriggerSchedule runs a schedule immediately, outside its cron plan.
func (c *Client) TriggerSchedule(ctx context.Context, scheduleID string) (*Schedule, error) {
	return c.scheduleAction(ctx, scheduleID, "trigger")
}

func (c *Client) scheduleAction(ctx context.Context, scheduleID, action string) (*Schedule, error) {
	var out Schedule
	if err := c.postJSON(ctx, "/v1/schedules/"+url.PathEscape(scheduleID)+"/"+action, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetScheduleHistory returns past executions of a schedule, newest
// first. limit > 0 bounds the page size; 0 uses the server default.
func (c *Client) GetScheduleHistory(ctx context.Context, scheduleID string, limit int) (*ScheduleHistory, error) {
	path := "/v1/schedules/" + url.PathEscape(scheduleID) + "/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out ScheduleHistory
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUsage returns consumption for the current billing period.
func (c *Client) GetUsage(ctx context.Context) (*Usage, error) {
	var out Usage
	if err := c.getJSON(ctx, "/v1/usage", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetQuota returns how much of the plan allowance remains.
func (c *Client) GetQuota(ctx context.Context) (*QuotaStatus, error) {
	var out QuotaStatus
	if err := c.getJSON(ctx, "/v1/usage/quota", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// getJSON issues a retried GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.requestJSON(ctx, http.MethodGet, path, nil, out)
}

// postJSON issues a retried POST. body may be nil for empty-body
// actions such as cancel.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	return c.requestJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Client) putJSON(ctx context.Context, path string, body, out any) error {
	return c.requestJSON(ctx, http.MethodPut, path, body, out)
}

// requestJSON runs one JSON round trip under the retry policy. The body
// is encoded once up front so every attempt sends identical bytes; out
// is only written on a 2xx response (pass nil to discard the body).
func (c *Client) requestJSON(ctx context.Context, method, path string, body, out any) error {
	payload, err := encodePayload(body)
	if err != nil {
		return err
	}

	return doWithRetry(ctx, c.retry, c.log, method+" "+path, func(ctx context.Context) error {
		status, _, data, err := c.send(ctx, method, path, payload)
		if err != nil {
			return err
		}
		if !isSuccess(status) {
			return apiErrorFrom(status, data)
		}
		if out == nil {
			return nil
		}
		return decodeBody(data, out)
	})
}

// requestImage runs one image round trip under the retry policy,
// accepting both wire shapes the service uses for image payloads.
func (c *Client) requestImage(ctx context.Context, method, path string, body any) ([]byte, error) {
	payload, err := encodePayload(body)
	if err != nil {
		return nil, err
	}

	var image []byte
	err = doWithRetry(ctx, c.retry, c.log, method+" "+path, func(ctx context.Context) error {
		status, header, data, err := c.send(ctx, method, path, payload)
		if err != nil {
			return err
		}
		if !isSuccess(status) {
			return apiErrorFrom(status, data)
		}
		image, err = decodeImagePayload(status, header, data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return image, nil
}

// send performs a single HTTP attempt and returns the status, headers,
// and full body. No retries happen at this layer.
func (c *Client) send(ctx context.Context, method, path string, payload []byte) (int, http.Header, []byte, error) {
	op := method + " " + path
	start := time.Now()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, classifySendError(ctx, op, err, time.Since(start))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, classifySendError(ctx, op, err, time.Since(start))
	}
	return resp.StatusCode, resp.Header, data, nil
}

// classifySendError sorts transport failures. Caller cancellation is
// propagated as-is so it is never retried; an attempt hitting its
// transport deadline becomes a retryable TimeoutError carrying how
// long the attempt actually ran (the deadline may live anywhere in a
// caller-supplied http.Client, so the configured value is not assumed);
// everything else is a NetworkError.
func classifySendError(ctx context.Context, op string, err error, elapsed time.Duration) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Op: TimeoutOpRequest, After: elapsed}
	}
	return &NetworkError{Op: op, Err: err}
}

func encodePayload(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return payload, nil
}

func decodeBody(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// apiErrorBody mirrors the service's error envelope. Deployments differ
// in which message field they populate.
type apiErrorBody struct {
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
	Message      string `json:"message"`
	Error        string `json:"error"`
}

func (b apiErrorBody) message() string {
	switch {
	case b.ErrorMessage != "":
		return b.ErrorMessage
	case b.Message != "":
		return b.Message
	case b.Error != "":
		return b.Error
	}
	return "Unknown error"
}

// apiErrorFrom builds the APIError for a non-2xx response. A parseable
// error body supplies the code and message; otherwise both fall back to
// the HTTP status.
func apiErrorFrom(status int, body []byte) *APIError {
	apiErr := &APIError{
		Code:    codeForStatus(status),
		Message: fmt.Sprintf("HTTP %d error", status),
		Status:  status,
	}

	var envelope apiErrorBody
	if len(body) > 0 && json.Unmarshal(body, &envelope) == nil {
		if envelope.ErrorCode != "" {
			apiErr.Code = envelope.ErrorCode
		}
		apiErr.Message = envelope.message()
	}
	return apiErr
}

// codeForStatus maps an HTTP status to an error code when the body did
// not carry one.
func codeForStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrCodeUnauthorized
	case status == http.StatusNotFound:
		return ErrCodeNotFound
	case status == http.StatusTooManyRequests:
		return ErrCodeRateLimited
	case status == http.StatusBadRequest:
		return ErrCodeValidation
	case status >= 500:
		return ErrCodeInternal
	default:
		return ErrCodeUnknown
	}
}

// imageEnvelope is the JSON wrapper some deployments return in place of
// a raw binary body.
type imageEnvelope struct {
	Success *bool  `json:"success"`
	Image   string `json:"image"`
	Error   string `json:"error"`
}

// decodeImagePayload accepts both image wire shapes: a raw binary body
// returned verbatim, or {"success": ..., "image": ..., "error": ...}
// with the image base64-encoded, optionally behind a data URI prefix.
func decodeImagePayload(status int, header http.Header, body []byte) ([]byte, error) {
	if !isJSONResponse(header) {
		return body, nil
	}

	var envelope imageEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode image envelope: %w", err)
	}
	if envelope.Success != nil && !*envelope.Success {
		msg := envelope.Error
		if msg == "" {
			msg = "Unknown error"
		}
		return nil, &APIError{Code: ErrCodeUnknown, Message: msg, Status: status}
	}

	b64 := envelope.Image
	if i := strings.IndexByte(b64, ','); i >= 0 && strings.HasPrefix(b64, "data:") {
		b64 = b64[i+1:]
	}
	decoded, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode image data: %w", err)
	}
	return decoded, nil
}

func isJSONResponse(header http.Header) bool {
	mediaType := header.Get("Content-Type")
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.TrimSpace(strings.ToLower(mediaType)) == "application/json"
}

// formatFromContentType extracts the image format from a binary
// response's Content-Type, e.g. "image/png" yields "png".
func formatFromContentType(header http.Header) string {
	mediaType := header.Get("Content-Type")
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	mediaType = strings.TrimSpace(strings.ToLower(mediaType))
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return strings.TrimPrefix(mediaType, "image/")
	case mediaType == "application/pdf":
		return "pdf"
	default:
		return ""
	}
}
