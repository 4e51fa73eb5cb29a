// Command smoke runs an end-to-end check matrix against a live
// Allscreenshots deployment: synchronous capture, async capture with
// polling, bulk submission, the schedule lifecycle, and usage reporting.
// It prints a summary table, optionally writes a JSON report, and exits
// non-zero when any check fails.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/allscreenshots/allscreenshots-go"
)

// CLI flags
var (
	apiKey    = flag.String("api-key", os.Getenv("ALLSCREENSHOTS_API_KEY"), "API key (defaults to ALLSCREENSHOTS_API_KEY)")
	baseURL   = flag.String("base-url", os.Getenv("ALLSCREENSHOTS_BASE_URL"), "API base URL (defaults to the production endpoint)")
	timeout   = flag.Duration("timeout", 90*time.Second, "Per-check time budget")
	targetURL = flag.String("target-url", "https://example.com", "Page captured by the checks")
	output    = flag.String("output", "", "JSON report file path (optional)")
)

type check struct {
	Name string
	Run  func(ctx context.Context, sdk *allscreenshots.Client) (string, error)
}

type checkResult struct {
	Name       string `json:"name"`
	Success    bool   `json:"success"`
	DurationMs int64  `json:"duration_ms"`
	Detail     string `json:"detail,omitempty"`
	Error      string `json:"error,omitempty"`
}

type smokeReport struct {
	Timestamp string        `json:"timestamp"`
	BaseURL   string        `json:"base_url"`
	TargetURL string        `json:"target_url"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Checks    []checkResult `json:"checks"`
}

func main() {
	flag.Parse()

	if *apiKey == "" {
		fmt.Fprintln(os.Stderr, "Error: no API key (use -api-key or set ALLSCREENSHOTS_API_KEY)")
		os.Exit(1)
	}

	sdk, err := allscreenshots.New(allscreenshots.Config{
		APIKey:  *apiKey,
		BaseURL: *baseURL,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Allscreenshots Smoke Suite ===")
	if *baseURL != "" {
		fmt.Printf("Base URL:   %s\n", *baseURL)
	} else {
		fmt.Printf("Base URL:   (production)\n")
	}
	fmt.Printf("Target URL: %s\n", *targetURL)
	fmt.Printf("Timeout:    %s\n", *timeout)
	fmt.Println()

	checks := []check{
		{"sync capture", checkSyncCapture},
		{"async capture + wait", checkAsyncCapture},
		{"bulk submit + progress", checkBulkJob},
		{"schedule lifecycle", checkScheduleLifecycle},
		{"usage + quota", checkUsage},
	}

	report := smokeReport{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		BaseURL:   *baseURL,
		TargetURL: *targetURL,
	}

	for _, c := range checks {
		fmt.Printf("Running %-24s ... ", c.Name)
		rr := runCheck(sdk, c)
		if rr.Success {
			fmt.Printf("OK  %dms  %s\n", rr.DurationMs, rr.Detail)
			report.Passed++
		} else {
			fmt.Printf("FAILED: %s\n", rr.Error)
			report.Failed++
		}
		report.Checks = append(report.Checks, rr)
	}

	fmt.Println()
	printTable(report.Checks)

	if *output != "" {
		if err := writeJSON(*output, report); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nDetailed report written to %s\n", *output)
	}

	if report.Failed > 0 {
		fmt.Printf("\n%d of %d checks failed\n", report.Failed, len(checks))
		os.Exit(1)
	}
	fmt.Printf("\nAll %d checks passed\n", len(checks))
}

func runCheck(sdk *allscreenshots.Client, c check) checkResult {
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	detail, err := c.Run(ctx, sdk)
	rr := checkResult{
		Name:       c.Name,
		DurationMs: time.Since(start).Milliseconds(),
		Detail:     detail,
	}
	if err != nil {
		rr.Error = err.Error()
		return rr
	}
	rr.Success = true
	return rr
}

func checkSyncCapture(ctx context.Context, sdk *allscreenshots.Client) (string, error) {
	shot, err := allscreenshots.NewScreenshot(*targetURL).
		Format(allscreenshots.FormatPNG).
		Build()
	if err != nil {
		return "", err
	}

	img, err := sdk.Screenshot(ctx, shot)
	if err != nil {
		return "", err
	}
	if len(img) == 0 {
		return "", fmt.Errorf("empty image body")
	}
	return fmt.Sprintf("%d bytes", len(img)), nil
}

func checkAsyncCapture(ctx context.Context, sdk *allscreenshots.Client) (string, error) {
	shot, err := allscreenshots.NewScreenshot(*targetURL).
		Format(allscreenshots.FormatPNG).
		FullPage(true).
		Build()
	if err != nil {
		return "", err
	}

	job, err := sdk.ScreenshotAsync(ctx, shot)
	if err != nil {
		return "", fmt.Errorf("submit: %w", err)
	}

	img, err := sdk.WaitForResult(ctx, job.ID, allscreenshots.WaitOptions{
		PollInterval: 2 * time.Second,
		Deadline:     *timeout,
	})
	if err != nil {
		return "", fmt.Errorf("job %s: %w", job.ID, err)
	}
	return fmt.Sprintf("job %s, %d bytes", job.ID, len(img)), nil
}

func checkBulkJob(ctx context.Context, sdk *allscreenshots.Client) (string, error) {
	bulk, err := sdk.CreateBulkJob(ctx, &allscreenshots.BulkRequest{
		Defaults: &allscreenshots.BulkOptions{
			Device: allscreenshots.String("Desktop HD"),
		},
		URLs: []allscreenshots.BulkURL{
			{URL: *targetURL},
			{URL: *targetURL, Options: &allscreenshots.BulkOptions{
				Device: allscreenshots.String("iPhone 14"),
			}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("submit: %w", err)
	}

	status, err := sdk.WaitForBulkJob(ctx, bulk.ID, allscreenshots.WaitOptions{
		PollInterval: 2 * time.Second,
		Deadline:     *timeout,
	})
	if err != nil {
		return "", fmt.Errorf("bulk %s: %w", bulk.ID, err)
	}
	return fmt.Sprintf("bulk %s, %d/%d completed", status.ID, status.CompletedJobs, status.TotalJobs), nil
}

// checkScheduleLifecycle walks a schedule through create, pause, resume,
// trigger, history, and delete. The schedule is removed even when an
// intermediate step fails so smoke runs do not pile up leftovers.
func checkScheduleLifecycle(ctx context.Context, sdk *allscreenshots.Client) (string, error) {
	sched, err := sdk.CreateSchedule(ctx, &allscreenshots.CreateScheduleRequest{
		Name:     fmt.Sprintf("smoke-%d", time.Now().Unix()),
		URL:      *targetURL,
		Schedule: "0 6 * * *",
		Timezone: "UTC",
	})
	if err != nil {
		return "", fmt.Errorf("create: %w", err)
	}

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := sdk.DeleteSchedule(cleanupCtx, sched.ID); err != nil {
			fmt.Fprintf(os.Stderr, "warning: leftover smoke schedule %s: %v\n", sched.ID, err)
		}
	}()

	if _, err := sdk.PauseSchedule(ctx, sched.ID); err != nil {
		return "", fmt.Errorf("pause: %w", err)
	}
	if _, err := sdk.ResumeSchedule(ctx, sched.ID); err != nil {
		return "", fmt.Errorf("resume: %w", err)
	}
	if _, err := sdk.TriggerSchedule(ctx, sched.ID); err != nil {
		return "", fmt.Errorf("trigger: %w", err)
	}

	history, err := sdk.GetScheduleHistory(ctx, sched.ID, 10)
	if err != nil {
		return "", fmt.Errorf("history: %w", err)
	}

	return fmt.Sprintf("schedule %s, %d execution(s)", sched.ID, history.TotalExecutions), nil
}

func checkUsage(ctx context.Context, sdk *allscreenshots.Client) (string, error) {
	usage, err := sdk.GetUsage(ctx)
	if err != nil {
		return "", fmt.Errorf("usage: %w", err)
	}

	quota, err := sdk.GetQuota(ctx)
	if err != nil {
		return "", fmt.Errorf("quota: %w", err)
	}

	return fmt.Sprintf("tier %s, %d shots this period, %d remaining",
		usage.Tier, usage.CurrentPeriod.ScreenshotsCount, quota.Screenshots.Remaining), nil
}

func printTable(results []checkResult) {
	fmt.Println(strings.Repeat("─", 72))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Check\tResult\tDuration\tDetail\n")
	fmt.Fprintf(w, "─────\t──────\t────────\t──────\n")

	for _, r := range results {
		outcome := "PASS"
		detail := r.Detail
		if !r.Success {
			outcome = "FAIL"
			detail = r.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%dms\t%s\n", r.Name, outcome, r.DurationMs, detail)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 72))
}

func writeJSON(path string, report smokeReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
