package allscreenshots

import (
	"context"
	"time"
)

// Defaults applied by WaitOptions.normalized.
const (
	DefaultPollInterval = time.Second
	DefaultWaitDeadline = 2 * time.Minute
)

// WaitOptions tunes the polling loop of the WaitFor helpers. The zero
// value polls every second for up to two minutes.
type WaitOptions struct {
	// PollInterval is the pause between status queries.
	PollInterval time.Duration

	// Deadline bounds the whole wait. When it expires the poller gives
	// up with a TimeoutError whose Op is TimeoutOpPoll, which is
	// terminal and never retried.
	Deadline time.Duration
}

func (o WaitOptions) normalized() WaitOptions {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.Deadline <= 0 {
		o.Deadline = DefaultWaitDeadline
	}
	return o
}

// WaitForJob polls a screenshot job until it reaches a terminal state.
// COMPLETED returns the job, FAILED a JobFailedError, CANCELLED a
// JobCancelledError. ctx cancellation aborts the wait between any two
// steps and is returned as the context's own error.
func (c *Client) WaitForJob(ctx context.Context, jobID string, opts WaitOptions) (*Job, error) {
	var job *Job
	err := c.awaitTerminal(ctx, "job "+jobID, opts, func(ctx context.Context) (JobStatus, error) {
		j, err := c.GetJob(ctx, jobID)
		if err != nil {
			return "", err
		}
		job = j
		return j.Status, nil
	})
	if err != nil {
		return nil, err
	}

	switch job.Status {
	case JobStatusFailed:
		return nil, &JobFailedError{JobID: jobID, Message: job.ErrorMessage}
	case JobStatusCancelled:
		return nil, &JobCancelledError{JobID: jobID}
	}
	return job, nil
}

// WaitForResult waits for a job to complete, then downloads its image.
// The result is fetched exactly once, after the job reports COMPLETED.
func (c *Client) WaitForResult(ctx context.Context, jobID string, opts WaitOptions) ([]byte, error) {
	if _, err := c.WaitForJob(ctx, jobID, opts); err != nil {
		return nil, err
	}
	return c.GetJobResult(ctx, jobID)
}

// WaitForBulkJob polls a bulk job until the batch reaches a terminal
// state. A COMPLETED batch can still contain individually failed URLs;
// callers inspect FailedJobs and the per-job details.
func (c *Client) WaitForBulkJob(ctx context.Context, bulkID string, opts WaitOptions) (*BulkStatusResponse, error) {
	var last *BulkStatusResponse
	err := c.awaitTerminal(ctx, "bulk "+bulkID, opts, func(ctx context.Context) (JobStatus, error) {
		resp, err := c.GetBulkJob(ctx, bulkID)
		if err != nil {
			return "", err
		}
		last = resp
		return JobStatus(resp.Status), nil
	})
	if err != nil {
		return nil, err
	}

	switch JobStatus(last.Status) {
	case JobStatusFailed:
		return nil, &JobFailedError{JobID: bulkID}
	case JobStatusCancelled:
		return nil, &JobCancelledError{JobID: bulkID}
	}
	return last, nil
}

// WaitForComposeJob polls an asynchronous composition until it reaches
// a terminal state. On COMPLETED the returned status carries the final
// ComposeResponse in its Result field.
func (c *Client) WaitForComposeJob(ctx context.Context, jobID string, opts WaitOptions) (*ComposeJobStatus, error) {
	var last *ComposeJobStatus
	err := c.awaitTerminal(ctx, "compose "+jobID, opts, func(ctx context.Context) (JobStatus, error) {
		resp, err := c.GetComposeJob(ctx, jobID)
		if err != nil {
			return "", err
		}
		last = resp
		return JobStatus(resp.Status), nil
	})
	if err != nil {
		return nil, err
	}

	switch JobStatus(last.Status) {
	case JobStatusFailed:
		return nil, &JobFailedError{JobID: jobID, Message: last.ErrorMessage}
	case JobStatusCancelled:
		return nil, &JobCancelledError{JobID: jobID}
	}
	return last, nil
}

// awaitTerminal drives one polling loop: query, stop on a terminal
// status, otherwise sleep and go again. The wait deadline is checked
// after every query and before every sleep, so the loop never sleeps
// through an already-spent budget; the first query always happens even
// with a tiny deadline. Statuses the poller does not recognize count as
// in-flight. Poll errors abort the wait (each query is itself
// retry-wrapped by the client).
func (c *Client) awaitTerminal(ctx context.Context, what string, opts WaitOptions, poll func(context.Context) (JobStatus, error)) error {
	opts = opts.normalized()
	deadline := time.Now().Add(opts.Deadline)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		status, err := poll(ctx)
		if err != nil {
			return err
		}
		if status.IsTerminal() {
			return nil
		}

		if !time.Now().Before(deadline) {
			return &TimeoutError{Op: TimeoutOpPoll, After: opts.Deadline}
		}

		c.log.Debug("awaiting job", "what", what, "status", status, "poll_interval", opts.PollInterval)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(opts.PollInterval):
		}
	}
}
