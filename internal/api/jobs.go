package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/apperror"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/job"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/stats"
)

func (c *Client) ListJobs(ctx context.Context, limit int) ([]job.Job, error) {
	if limit <= 0 {
		limit = DefaultJobLimit
	}
	r := request{
		method: http.MethodGet,
		path:   "/jobs",
		query:  url.Values{"limit": {strconv.Itoa(limit)}},
	}

	var jobs []job.Job
	if err := c.do(ctx, r, &jobs); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

func (c *Client) GetJob(ctx context.Context, id string) (*job.Job, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	var j job.Job
	if err := c.do(ctx, request{method: http.MethodGet, path: jobPath(id)}, &j); err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

func (c *Client) Stats(ctx context.Context) (*stats.DashboardStats, error) {
	var s stats.DashboardStats
	if err := c.do(ctx, request{method: http.MethodGet, path: "/stats"}, &s); err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return &s, nil
}

// UploadCSV creates an ingestion job from a creators CSV sent as the
// multipart field "file". Content is not inspected.
func (c *Client) UploadCSV(ctx context.Context, filename string, content io.Reader) (*ActionResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "upload csv: create form file", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, apperror.Wrap(apperror.Internal, "upload csv: read file", err)
	}
	if err := mw.Close(); err != nil {
		return nil, apperror.Wrap(apperror.Internal, "upload csv: close form", err)
	}

	r := request{
		method:      http.MethodPost,
		path:        "/jobs/upload-csv",
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}
	return c.action(ctx, "upload csv", r)
}

func (c *Client) Rescrape(ctx context.Context, req RescrapeRequest) (*ActionResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	r, err := jsonRequest(http.MethodPost, "/jobs/rescrape", req)
	if err != nil {
		return nil, err
	}
	return c.action(ctx, "rescrape", r)
}

// CancelJob asks the backend to cancel a job. A 2xx is the only
// confirmation; the worker may still be winding down.
func (c *Client) CancelJob(ctx context.Context, id string) (*ActionResult, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return c.action(ctx, "cancel job", request{method: http.MethodDelete, path: jobPath(id)})
}

// RemoveJob deletes a finished job permanently.
func (c *Client) RemoveJob(ctx context.Context, id string) (*ActionResult, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return c.action(ctx, "remove job", request{method: http.MethodDelete, path: jobPath(id) + "/remove"})
}

// ResumeJob restarts a cancelled or failed job from its processed count.
func (c *Client) ResumeJob(ctx context.Context, id string) (*ActionResult, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return c.action(ctx, "resume job", request{method: http.MethodPost, path: jobPath(id) + "/resume"})
}

func (c *Client) TriggerJob(ctx context.Context, id string) (*ActionResult, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return c.action(ctx, "trigger job", request{method: http.MethodPost, path: jobPath(id) + "/trigger"})
}

func (c *Client) StartQueue(ctx context.Context) (*ActionResult, error) {
	return c.action(ctx, "start queue", request{method: http.MethodPost, path: "/jobs/start-queue"})
}

func (c *Client) action(ctx context.Context, name string, r request) (*ActionResult, error) {
	var res ActionResult
	if err := c.do(ctx, r, &res); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &res, nil
}

func jobPath(id string) string {
	return "/jobs/" + url.PathEscape(id)
}
