package allscreenshots

// Usage summarizes account consumption for the current billing period.
type Usage struct {
	Tier          string        `json:"tier"`
	CurrentPeriod PeriodUsage   `json:"currentPeriod"`
	Quota         *Quota        `json:"quota,omitempty"`
	History       []PeriodUsage `json:"history,omitempty"`
	Totals        *UsageTotals  `json:"totals,omitempty"`
}

// PeriodUsage is consumption within one billing period.
type PeriodUsage struct {
	PeriodStart        string `json:"periodStart"`
	PeriodEnd          string `json:"periodEnd"`
	ScreenshotsCount   int    `json:"screenshotsCount"`
	BandwidthBytes     int64  `json:"bandwidthBytes"`
	BandwidthFormatted string `json:"bandwidthFormatted,omitempty"`
}

// UsageTotals is lifetime consumption.
type UsageTotals struct {
	ScreenshotsCount   int64  `json:"screenshotsCount"`
	BandwidthBytes     int64  `json:"bandwidthBytes"`
	BandwidthFormatted string `json:"bandwidthFormatted,omitempty"`
}

// Quota is the plan allowance attached to the account.
type Quota struct {
	MonthlyLimit              int    `json:"monthlyLimit"`
	MonthlyBandwidthBytes     int64  `json:"monthlyBandwidthBytes,omitempty"`
	MonthlyBandwidthFormatted string `json:"monthlyBandwidthFormatted,omitempty"`
}

// QuotaStatus reports how much of the plan allowance remains.
type QuotaStatus struct {
	Tier        string         `json:"tier"`
	Screenshots QuotaDetail    `json:"screenshots"`
	Bandwidth   BandwidthQuota `json:"bandwidth"`
	PeriodEnds  string         `json:"periodEnds,omitempty"`
}

// QuotaDetail is the count-based part of the quota.
type QuotaDetail struct {
	Limit       int `json:"limit"`
	Used        int `json:"used"`
	Remaining   int `json:"remaining"`
	PercentUsed int `json:"percentUsed"`
}

// BandwidthQuota is the byte-based part of the quota.
type BandwidthQuota struct {
	LimitBytes         int64  `json:"limitBytes"`
	LimitFormatted     string `json:"limitFormatted,omitempty"`
	UsedBytes          int64  `json:"usedBytes"`
	UsedFormatted      string `json:"usedFormatted,omitempty"`
	RemainingBytes     int64  `json:"remainingBytes"`
	RemainingFormatted string `json:"remainingFormatted,omitempty"`
	PercentUsed        int    `json:"percentUsed"`
}
