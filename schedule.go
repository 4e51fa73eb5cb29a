package allscreenshots

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ScheduleOptions is the partial capture configuration attached to a
// schedule. Pointer fields distinguish "unset" from explicit zeros,
// mirroring the PATCH semantics of schedule updates.
type ScheduleOptions struct {
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
	HideSelectors      []string     `json:"hideSelectors,omitempty"`
	BlockAds           *bool        `json:"blockAds,omitempty"`
	BlockCookieBanners *bool        `json:"blockCookieBanners,omitempty"`
	BlockLevel         *BlockLevel  `json:"blockLevel,omitempty"`
}

// CreateScheduleRequest registers a recurring capture. Schedule takes a
// standard 5-field cron expression or a descriptor like "@hourly"; only
// its syntax is checked locally, calendar semantics stay with the
// service.
type CreateScheduleRequest struct {
	Name          string           `json:"name"`
	URL           string           `json:"url"`
	Schedule      string           `json:"schedule"`
	Timezone      string           `json:"timezone,omitempty"`
	Options       *ScheduleOptions `json:"options,omitempty"`
	WebhookURL    string           `json:"webhookUrl,omitempty"`
	WebhookSecret string           `json:"webhookSecret,omitempty"`
	RetentionDays int              `json:"retentionDays,omitempty"`
	StartsAt      string           `json:"startsAt,omitempty"`
	EndsAt        string           `json:"endsAt,omitempty"`
}

func (r *CreateScheduleRequest) validate() error {
	if r.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if err := validateTargetURL("url", r.URL); err != nil {
		return err
	}
	if err := validateCron("schedule", r.Schedule); err != nil {
		return err
	}
	if err := validateTimezone("timezone", r.Timezone); err != nil {
		return err
	}
	if r.RetentionDays < 0 {
		return &ValidationError{Field: "retentionDays", Reason: "must not be negative"}
	}
	return validateScheduleOptions("options", r.Options)
}

// UpdateScheduleRequest changes an existing schedule. Nil fields are
// left untouched by the service.
type UpdateScheduleRequest struct {
	Name          *string          `json:"name,omitempty"`
	URL           *string          `json:"url,omitempty"`
	Schedule      *string          `json:"schedule,omitempty"`
	Timezone      *string          `json:"timezone,omitempty"`
	Options       *ScheduleOptions `json:"options,omitempty"`
	WebhookURL    *string          `json:"webhookUrl,omitempty"`
	WebhookSecret *string          `json:"webhookSecret,omitempty"`
	RetentionDays *int             `json:"retentionDays,omitempty"`
	StartsAt      *string          `json:"startsAt,omitempty"`
	EndsAt        *string          `json:"endsAt,omitempty"`
}

func (r *UpdateScheduleRequest) validate() error {
	if r.Name != nil && *r.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if r.URL != nil {
		if err := validateTargetURL("url", *r.URL); err != nil {
			return err
		}
	}
	if r.Schedule != nil {
		if err := validateCron("schedule", *r.Schedule); err != nil {
			return err
		}
	}
	if r.Timezone != nil {
		if err := validateTimezone("timezone", *r.Timezone); err != nil {
			return err
		}
	}
	if r.RetentionDays != nil && *r.RetentionDays < 0 {
		return &ValidationError{Field: "retentionDays", Reason: "must not be negative"}
	}
	return validateScheduleOptions("options", r.Options)
}

func validateScheduleOptions(field string, o *ScheduleOptions) error {
	if o == nil {
		return nil
	}
	bulk := &BulkOptions{
		Viewport:           o.Viewport,
		Device:             o.Device,
		Format:             o.Format,
		FullPage:           o.FullPage,
		Quality:            o.Quality,
		Delay:              o.Delay,
		WaitFor:            o.WaitFor,
		WaitUntil:          o.WaitUntil,
		Timeout:            o.Timeout,
		DarkMode:           o.DarkMode,
		CustomCSS:          o.CustomCSS,
		BlockAds:           o.BlockAds,
		BlockCookieBanners: o.BlockCookieBanners,
		BlockLevel:         o.BlockLevel,
	}
	if err := validateBulkOptions(field, bulk); err != nil {
		return err
	}
	return validateSelectorList(field+".hideSelectors", o.HideSelectors)
}

// validateCron accepts standard 5-field expressions and @descriptors.
func validateCron(field, expr string) error {
	if expr == "" {
		return &ValidationError{Field: field, Reason: "must not be empty"}
	}
	if _, err := cron.ParseStandard(expr); err != nil {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("invalid cron expression %q: %v", expr, err)}
	}
	return nil
}

func validateTimezone(field, tz string) error {
	if tz == "" {
		return nil
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("unknown timezone %q", tz)}
	}
	return nil
}

// NextRun computes when a schedule would next fire after the given
// time, in the given IANA timezone (UTC when empty). Useful for
// display; the service owns the real execution calendar.
func NextRun(expr, timezone string, after time.Time) (time.Time, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "schedule", Reason: fmt.Sprintf("invalid cron expression %q: %v", expr, err)}
	}
	loc := time.UTC
	if timezone != "" {
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return time.Time{}, &ValidationError{Field: "timezone", Reason: fmt.Sprintf("unknown timezone %q", timezone)}
		}
	}
	return schedule.Next(after.In(loc)), nil
}

// Schedule is the service's view of a recurring capture.
type Schedule struct {
	ID                  string           `json:"id"`
	Name                string           `json:"name"`
	URL                 string           `json:"url"`
	Schedule            string           `json:"schedule"`
	ScheduleDescription string           `json:"scheduleDescription,omitempty"`
	Timezone            string           `json:"timezone,omitempty"`
	Status              string           `json:"status"`
	Options             *ScheduleOptions `json:"options,omitempty"`
	WebhookURL          string           `json:"webhookUrl,omitempty"`
	RetentionDays       int              `json:"retentionDays,omitempty"`
	StartsAt            string           `json:"startsAt,omitempty"`
	EndsAt              string           `json:"endsAt,omitempty"`
	LastExecutedAt      string           `json:"lastExecutedAt,omitempty"`
	NextExecutionAt     string           `json:"nextExecutionAt,omitempty"`
	ExecutionCount      int              `json:"executionCount,omitempty"`
	SuccessCount        int              `json:"successCount,omitempty"`
	FailureCount        int              `json:"failureCount,omitempty"`
	CreatedAt           string           `json:"createdAt,omitempty"`
	UpdatedAt           string           `json:"updatedAt,omitempty"`
}

// ScheduleList is the paginated schedule listing.
type ScheduleList struct {
	Schedules []Schedule `json:"schedules"`
	Total     int        `json:"total"`
}

// ScheduleHistory is the append-only execution record of one schedule.
type ScheduleHistory struct {
	ScheduleID      string              `json:"scheduleId"`
	TotalExecutions int64               `json:"totalExecutions"`
	Executions      []ScheduleExecution `json:"executions"`
}

// ScheduleExecution is one past run of a schedule.
type ScheduleExecution struct {
	ID           string `json:"id"`
	ExecutedAt   string `json:"executedAt"`
	Status       string `json:"status"`
	ResultURL    string `json:"resultUrl,omitempty"`
	StorageURL   string `json:"storageUrl,omitempty"`
	FileSize     int64  `json:"fileSize,omitempty"`
	RenderTimeMS int64  `json:"renderTimeMs,omitempty"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	ExpiresAt    string `json:"expiresAt,omitempty"`
}
