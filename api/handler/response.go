package handler

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allscreenshots/allscreenshots-go"
)

// ErrorDetail is the structured error carried in demo responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CaptureResponse is the demo wire format for a single capture.
type CaptureResponse struct {
	Success    bool         `json:"success"`
	Image      string       `json:"image,omitempty"`
	Format     string       `json:"format,omitempty"`
	Cached     bool         `json:"cached,omitempty"`
	DurationMs int64        `json:"duration_ms,omitempty"`
	Error      *ErrorDetail `json:"error,omitempty"`
}

// respondError maps an SDK error to the right HTTP status and writes a
// structured JSON error response.
func respondError(c *gin.Context, err error) {
	status, code := mapErrorToStatus(err)
	c.JSON(status, CaptureResponse{
		Success: false,
		Error:   &ErrorDetail{Code: code, Message: err.Error()},
	})
}

// mapErrorToStatus translates SDK errors to HTTP status codes. Upstream
// service failures surface as gateway errors: the browser user cannot
// fix the demo server's credentials or the capture backend.
func mapErrorToStatus(err error) (int, string) {
	var verr *allscreenshots.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, allscreenshots.ErrCodeValidation
	}

	var aerr *allscreenshots.APIError
	if errors.As(err, &aerr) {
		switch aerr.Code {
		case allscreenshots.ErrCodeValidation:
			return http.StatusBadRequest, aerr.Code
		case allscreenshots.ErrCodeNotFound:
			return http.StatusNotFound, aerr.Code
		case allscreenshots.ErrCodeRateLimited:
			return http.StatusTooManyRequests, aerr.Code
		default:
			return http.StatusBadGateway, aerr.Code
		}
	}

	var terr *allscreenshots.TimeoutError
	if errors.As(err, &terr) {
		return http.StatusGatewayTimeout, "TIMEOUT"
	}

	var nerr *allscreenshots.NetworkError
	if errors.As(err, &nerr) {
		return http.StatusBadGateway, "NETWORK_ERROR"
	}

	return http.StatusInternalServerError, allscreenshots.ErrCodeUnknown
}

// dataURI encodes image bytes as a data URI the frontend can drop into
// an img tag.
func dataURI(image []byte, format string) string {
	return "data:" + mimeForFormat(format) + ";base64," + base64.StdEncoding.EncodeToString(image)
}

func mimeForFormat(format string) string {
	switch format {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	case "pdf":
		return "application/pdf"
	default:
		return "image/png"
	}
}
