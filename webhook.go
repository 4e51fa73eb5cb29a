package allscreenshots

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SignatureHeader carries the HMAC of webhook deliveries.
// Format: sha256=<hex>.
const SignatureHeader = "X-Allscreenshots-Signature"

// ErrSignatureMismatch reports a webhook payload whose signature does
// not match the shared secret.
var ErrSignatureMismatch = errors.New("webhook signature mismatch")

// WebhookEvent is the body of a delivery sent when a job finishes.
type WebhookEvent struct {
	Type         string          `json:"type"`
	JobID        string          `json:"jobId"`
	Status       JobStatus       `json:"status,omitempty"`
	ResultURL    string          `json:"resultUrl,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	Timestamp    int64           `json:"timestamp"`
	Data         json.RawMessage `json:"data,omitempty"`
}

// VerifyWebhookSignature checks a delivery body against the shared
// secret. header is the X-Allscreenshots-Signature value. The HMAC
// comparison is constant-time.
func VerifyWebhookSignature(payload []byte, header, secret string) error {
	if secret == "" {
		return errors.New("webhook secret is empty")
	}
	encoded, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return fmt.Errorf("malformed signature header %q", header)
	}
	got, err := hex.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("malformed signature header: %w", err)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return ErrSignatureMismatch
	}
	return nil
}

// SignWebhookPayload computes the signature header value for payload.
// The service signs deliveries the same way, so this also serves tests
// and local webhook simulation.
func SignWebhookPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// ParseWebhookEvent verifies a delivery and decodes its event.
func ParseWebhookEvent(payload []byte, header, secret string) (*WebhookEvent, error) {
	if err := VerifyWebhookSignature(payload, header, secret); err != nil {
		return nil, err
	}
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}
	return &event, nil
}
