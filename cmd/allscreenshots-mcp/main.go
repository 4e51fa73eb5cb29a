// Command allscreenshots-mcp is a stdio MCP server exposing the
// Allscreenshots capture API as tools. An MCP-capable assistant can take
// screenshots, compose comparison images, and manage capture schedules
// through it.
//
// Configuration comes from the environment: ALLSCREENSHOTS_API_KEY is
// required, ALLSCREENSHOTS_BASE_URL overrides the production endpoint.
package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/allscreenshots/allscreenshots-go"
)

// asyncWait bounds the take_screenshot_async polling loop. Slow pages
// render within a couple of minutes or not at all.
var asyncWait = allscreenshots.WaitOptions{
	PollInterval: 2 * time.Second,
	Deadline:     3 * time.Minute,
}

func main() {
	_ = godotenv.Load()

	sdk, err := allscreenshots.NewFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"allscreenshots",
		allscreenshots.Version,
		server.WithToolCapabilities(false),
	)

	takeScreenshotTool := mcp.NewTool("take_screenshot",
		mcp.WithDescription("Capture a screenshot of a web page and return the image. Rendering happens remotely, so JavaScript-heavy pages work."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the page to capture"),
		),
		mcp.WithString("device",
			mcp.Description("Device preset to emulate, e.g. 'Desktop HD' or 'iPhone 14'. Use list_device_presets to see all names."),
		),
		mcp.WithBoolean("full_page",
			mcp.Description("Capture the whole scroll height instead of one viewport"),
		),
		mcp.WithString("format",
			mcp.Description("Output image format (default: 'png')"),
			mcp.Enum("png", "jpeg", "webp"),
		),
	)
	s.AddTool(takeScreenshotTool, handleTakeScreenshot(sdk))

	takeScreenshotAsyncTool := mcp.NewTool("take_screenshot_async",
		mcp.WithDescription("Capture a screenshot as a background job and wait for the result. Use for slow pages that time out on take_screenshot."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the page to capture"),
		),
		mcp.WithString("device",
			mcp.Description("Device preset to emulate"),
		),
		mcp.WithBoolean("full_page",
			mcp.Description("Capture the whole scroll height instead of one viewport"),
		),
		mcp.WithString("format",
			mcp.Description("Output image format (default: 'png')"),
			mcp.Enum("png", "jpeg", "webp"),
		),
	)
	s.AddTool(takeScreenshotAsyncTool, handleTakeScreenshotAsync(sdk))

	composeScreenshotsTool := mcp.NewTool("compose_screenshots",
		mcp.WithDescription("Capture several pages and combine them into one comparison image."),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("List of page URLs to capture and compose"),
		),
		mcp.WithString("layout",
			mcp.Description("Arrangement of the captures on the canvas (default: 'grid')"),
			mcp.Enum("grid", "horizontal", "vertical"),
		),
	)
	s.AddTool(composeScreenshotsTool, handleComposeScreenshots(sdk))

	listDevicePresetsTool := mcp.NewTool("list_device_presets",
		mcp.WithDescription("List the device presets accepted by the capture tools, with their viewport sizes."),
	)
	s.AddTool(listDevicePresetsTool, handleListDevicePresets())

	createScheduleTool := mcp.NewTool("create_schedule",
		mcp.WithDescription("Register a recurring capture of a URL on a cron schedule."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Display name for the schedule"),
		),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to capture on each run"),
		),
		mcp.WithString("cron",
			mcp.Required(),
			mcp.Description("Standard 5-field cron expression or descriptor like '@hourly'"),
		),
		mcp.WithString("timezone",
			mcp.Description("IANA timezone for the cron expression, e.g. 'Europe/Berlin' (default: UTC)"),
		),
	)
	s.AddTool(createScheduleTool, handleCreateSchedule(sdk))

	listSchedulesTool := mcp.NewTool("list_schedules",
		mcp.WithDescription("List the account's capture schedules with their status and next run time."),
	)
	s.AddTool(listSchedulesTool, handleListSchedules(sdk))

	getUsageTool := mcp.NewTool("get_usage",
		mcp.WithDescription("Report the account's screenshot and bandwidth consumption for the current billing period."),
	)
	s.AddTool(getUsageTool, handleGetUsage(sdk))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// buildCapture turns the shared url/device/full_page/format tool
// arguments into a validated SDK request.
func buildCapture(request mcp.CallToolRequest) (*allscreenshots.ScreenshotRequest, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return nil, fmt.Errorf("url is required")
	}

	builder := allscreenshots.NewScreenshot(url).
		Format(allscreenshots.ImageFormat(request.GetString("format", "png"))).
		FullPage(request.GetBool("full_page", false))
	if device := request.GetString("device", ""); device != "" {
		builder.Device(device)
	}

	return builder.Build()
}

func handleTakeScreenshot(sdk *allscreenshots.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		shot, err := buildCapture(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		img, err := sdk.Screenshot(ctx, shot)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("capture failed: %v", err)), nil
		}

		return imageResult(shot.URL, string(shot.Format), img), nil
	}
}

func handleTakeScreenshotAsync(sdk *allscreenshots.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		shot, err := buildCapture(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		job, err := sdk.ScreenshotAsync(ctx, shot)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("submit failed: %v", err)), nil
		}

		img, err := sdk.WaitForResult(ctx, job.ID, asyncWait)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("job %s: %v", job.ID, err)), nil
		}

		return imageResult(shot.URL, string(shot.Format), img), nil
	}
}

func handleComposeScreenshots(sdk *allscreenshots.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		urls, err := request.RequireStringSlice("urls")
		if err != nil {
			return mcp.NewToolResultError("urls is required and must be an array of strings"), nil
		}

		captures := make([]allscreenshots.CaptureItem, len(urls))
		for i, u := range urls {
			captures[i] = allscreenshots.CaptureItem{URL: u}
		}

		req := &allscreenshots.ComposeRequest{Captures: captures}
		if layout := request.GetString("layout", ""); layout != "" {
			req.Output = &allscreenshots.ComposeOutput{
				Layout: allscreenshots.LayoutType(strings.ToUpper(layout)),
			}
		}

		resp, err := sdk.Compose(ctx, req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("compose failed: %v", err)), nil
		}

		// The service answers with either the composed image inline or a
		// hosted URL; pass along whichever arrived.
		if len(resp.Image) > 0 {
			summary := fmt.Sprintf("Composed %d captures (%d bytes)", len(urls), len(resp.Image))
			return mcp.NewToolResultImage(summary, base64.StdEncoding.EncodeToString(resp.Image), mimeForFormat(resp.Format)), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Composed %d captures", len(urls)))
		if resp.Width > 0 || resp.Height > 0 {
			sb.WriteString(fmt.Sprintf(" (%dx%d)", resp.Width, resp.Height))
		}
		if resp.URL != "" {
			sb.WriteString("\nResult: " + resp.URL)
		}
		if resp.ExpiresAt != "" {
			sb.WriteString("\nExpires: " + resp.ExpiresAt)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleListDevicePresets() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var sb strings.Builder
		sb.WriteString("Available device presets:\n\n")
		for _, p := range allscreenshots.DevicePresets() {
			sb.WriteString(fmt.Sprintf("- %s: %dx%d @%dx\n",
				p.Name, p.Viewport.Width, p.Viewport.Height, p.Viewport.DeviceScaleFactor))
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleCreateSchedule(sdk *allscreenshots.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError("name is required"), nil
		}
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		cronExpr, err := request.RequireString("cron")
		if err != nil {
			return mcp.NewToolResultError("cron is required"), nil
		}

		sched, err := sdk.CreateSchedule(ctx, &allscreenshots.CreateScheduleRequest{
			Name:     name,
			URL:      url,
			Schedule: cronExpr,
			Timezone: request.GetString("timezone", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("create schedule failed: %v", err)), nil
		}

		result := fmt.Sprintf("Created schedule %s (%s)\nName: %s\nURL: %s\nCron: %s",
			sched.ID, sched.Status, sched.Name, sched.URL, sched.Schedule)
		if sched.NextExecutionAt != "" {
			result += "\nNext run: " + sched.NextExecutionAt
		}
		return mcp.NewToolResultText(result), nil
	}
}

func handleListSchedules(sdk *allscreenshots.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list, err := sdk.ListSchedules(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list schedules failed: %v", err)), nil
		}

		if len(list.Schedules) == 0 {
			return mcp.NewToolResultText("No schedules configured."), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%d schedule(s):\n\n", list.Total))
		for _, s := range list.Schedules {
			sb.WriteString(fmt.Sprintf("- %s [%s] %s -> %s (cron %q", s.ID, s.Status, s.Name, s.URL, s.Schedule))
			if s.Timezone != "" {
				sb.WriteString(" " + s.Timezone)
			}
			sb.WriteString(")")
			if s.NextExecutionAt != "" {
				sb.WriteString(", next " + s.NextExecutionAt)
			}
			sb.WriteString("\n")
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleGetUsage(sdk *allscreenshots.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		usage, err := sdk.GetUsage(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("get usage failed: %v", err)), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Plan tier: %s\n", usage.Tier))
		sb.WriteString(fmt.Sprintf("Current period (%s to %s):\n", usage.CurrentPeriod.PeriodStart, usage.CurrentPeriod.PeriodEnd))
		sb.WriteString(fmt.Sprintf("  Screenshots: %d", usage.CurrentPeriod.ScreenshotsCount))
		if usage.Quota != nil && usage.Quota.MonthlyLimit > 0 {
			sb.WriteString(fmt.Sprintf(" of %d", usage.Quota.MonthlyLimit))
		}
		sb.WriteString("\n")
		if usage.CurrentPeriod.BandwidthFormatted != "" {
			sb.WriteString(fmt.Sprintf("  Bandwidth: %s\n", usage.CurrentPeriod.BandwidthFormatted))
		} else {
			sb.WriteString(fmt.Sprintf("  Bandwidth: %d bytes\n", usage.CurrentPeriod.BandwidthBytes))
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// imageResult wraps capture bytes as MCP image content with a one-line
// text summary.
func imageResult(url, format string, img []byte) *mcp.CallToolResult {
	summary := fmt.Sprintf("Captured %s (%s, %d bytes)", url, format, len(img))
	return mcp.NewToolResultImage(summary, base64.StdEncoding.EncodeToString(img), mimeForFormat(format))
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
