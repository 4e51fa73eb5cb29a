package allscreenshots

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestVerifyWebhookSignature_RoundTrip(t *testing.T) {
	payload := []byte(`{"type":"job.completed","jobId":"job-1"}`)
	header := SignWebhookPayload(payload, "whsec_test")

	if err := VerifyWebhookSignature(payload, header, "whsec_test"); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
}

func TestVerifyWebhookSignature_Tampered(t *testing.T) {
	payload := []byte(`{"type":"job.completed","jobId":"job-1"}`)
	header := SignWebhookPayload(payload, "whsec_test")

	tampered := []byte(`{"type":"job.completed","jobId":"job-2"}`)
	err := VerifyWebhookSignature(tampered, header, "whsec_test")
	if !errors.Is(err, ErrSignatureMismatch) {
		t.Errorf("error = %v, want ErrSignatureMismatch", err)
	}

	err = VerifyWebhookSignature(payload, header, "whsec_other")
	if !errors.Is(err, ErrSignatureMismatch) {
		t.Errorf("wrong secret: error = %v, want ErrSignatureMismatch", err)
	}
}

func TestVerifyWebhookSignature_MalformedHeader(t *testing.T) {
	payload := []byte(`{}`)

	for _, header := range []string{"", "md5=abc", "sha256=not-hex"} {
		if err := VerifyWebhookSignature(payload, header, "whsec_test"); err == nil {
			t.Errorf("header %q accepted", header)
		}
	}

	if err := VerifyWebhookSignature(payload, SignWebhookPayload(payload, "x"), ""); err == nil {
		t.Error("empty secret accepted")
	}
}

func TestParseWebhookEvent(t *testing.T) {
	event := WebhookEvent{
		Type:      "job.completed",
		JobID:     "job-9",
		Status:    JobStatusCompleted,
		ResultURL: "https://cdn.example.com/job-9.png",
		Timestamp: 1767225600,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	header := SignWebhookPayload(payload, "whsec_test")

	got, err := ParseWebhookEvent(payload, header, "whsec_test")
	if err != nil {
		t.Fatalf("ParseWebhookEvent: %v", err)
	}
	if got.JobID != "job-9" || got.Status != JobStatusCompleted || got.ResultURL != event.ResultURL {
		t.Errorf("event = %+v", got)
	}

	if _, err := ParseWebhookEvent(payload, "sha256=0000", "whsec_test"); err == nil {
		t.Error("bad signature accepted")
	}
}
