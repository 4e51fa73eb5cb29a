package allscreenshots

import (
	"errors"
	"testing"
	"time"
)

func validScheduleRequest() *CreateScheduleRequest {
	return &CreateScheduleRequest{
		Name:     "homepage hourly",
		URL:      "https://example.com",
		Schedule: "0 * * * *",
	}
}

func TestCreateScheduleRequest_Validate(t *testing.T) {
	if err := validScheduleRequest().validate(); err != nil {
		t.Fatalf("valid schedule rejected: %v", err)
	}

	descriptor := validScheduleRequest()
	descriptor.Schedule = "@hourly"
	if err := descriptor.validate(); err != nil {
		t.Errorf("@hourly rejected: %v", err)
	}

	tests := []struct {
		name      string
		mutate    func(*CreateScheduleRequest)
		wantField string
	}{
		{"empty name", func(r *CreateScheduleRequest) { r.Name = "" }, "name"},
		{"empty url", func(r *CreateScheduleRequest) { r.URL = "" }, "url"},
		{"empty cron", func(r *CreateScheduleRequest) { r.Schedule = "" }, "schedule"},
		{"gibberish cron", func(r *CreateScheduleRequest) { r.Schedule = "every day at noon" }, "schedule"},
		{"six field cron", func(r *CreateScheduleRequest) { r.Schedule = "0 0 0 * * *" }, "schedule"},
		{"unknown timezone", func(r *CreateScheduleRequest) { r.Timezone = "Mars/Olympus_Mons" }, "timezone"},
		{"negative retention", func(r *CreateScheduleRequest) { r.RetentionDays = -1 }, "retentionDays"},
		{"bad option device", func(r *CreateScheduleRequest) {
			r.Options = &ScheduleOptions{Device: String("Nokia 3310")}
		}, "options.device"},
		{"broken hide selector", func(r *CreateScheduleRequest) {
			r.Options = &ScheduleOptions{HideSelectors: []string{"[oops"}}
		}, "options.hideSelectors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validScheduleRequest()
			tt.mutate(req)
			err := req.validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestUpdateScheduleRequest_Validate(t *testing.T) {
	empty := &UpdateScheduleRequest{}
	if err := empty.validate(); err != nil {
		t.Errorf("all-nil update rejected: %v", err)
	}

	partial := &UpdateScheduleRequest{Schedule: String("*/15 * * * *"), RetentionDays: Int(30)}
	if err := partial.validate(); err != nil {
		t.Errorf("partial update rejected: %v", err)
	}

	badCron := &UpdateScheduleRequest{Schedule: String("61 * * * *")}
	err := badCron.validate()
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "schedule" {
		t.Errorf("error = %v, want ValidationError on schedule", err)
	}

	blankName := &UpdateScheduleRequest{Name: String("")}
	if err := blankName.validate(); err == nil {
		t.Error("blank name accepted")
	}
}

func TestNextRun(t *testing.T) {
	after := time.Date(2025, 3, 10, 14, 25, 0, 0, time.UTC)

	next, err := NextRun("0 * * * *", "", after)
	if err != nil {
		t.Fatalf("NextRun: %v", err)
	}
	want := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}

	if _, err := NextRun("0 * * *", "", after); err == nil {
		t.Error("four-field cron accepted")
	}
	if _, err := NextRun("0 * * * *", "Atlantis/Sunken", after); err == nil {
		t.Error("unknown timezone accepted")
	}
}

func TestNextRun_Descriptor(t *testing.T) {
	after := time.Date(2025, 3, 10, 14, 25, 0, 0, time.UTC)
	next, err := NextRun("@daily", "UTC", after)
	if err != nil {
		t.Fatalf("NextRun: %v", err)
	}
	want := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}
