package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/apperror"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/rescrape"
)

func (c *Client) RescrapeStats(ctx context.Context) (*rescrape.Stats, error) {
	var s rescrape.Stats
	if err := c.do(ctx, request{method: http.MethodGet, path: "/rescraping/stats"}, &s); err != nil {
		return nil, fmt.Errorf("rescraping stats: %w", err)
	}
	return &s, nil
}

func (c *Client) DueCreators(ctx context.Context) (*rescrape.DueCreators, error) {
	var d rescrape.DueCreators
	if err := c.do(ctx, request{method: http.MethodGet, path: "/rescraping/due-creators"}, &d); err != nil {
		return nil, fmt.Errorf("due creators: %w", err)
	}
	return &d, nil
}

func (c *Client) CorruptedCreators(ctx context.Context) (*rescrape.CorruptedCreators, error) {
	var cc rescrape.CorruptedCreators
	if err := c.do(ctx, request{method: http.MethodGet, path: "/rescraping/corrupted-creators"}, &cc); err != nil {
		return nil, fmt.Errorf("corrupted creators: %w", err)
	}
	return &cc, nil
}

// PopulateDates backfills missing update timestamps across the past week.
func (c *Client) PopulateDates(ctx context.Context) (*ActionResult, error) {
	return c.rescrapeAction(ctx, "populate dates", "/rescraping/populate-dates", struct{}{})
}

// ForcePopulateDates redistributes every creator's update timestamp.
func (c *Client) ForcePopulateDates(ctx context.Context) (*ActionResult, error) {
	return c.rescrapeAction(ctx, "force populate dates", "/rescraping/force-populate-dates", nil)
}

func (c *Client) ScheduleDaily(ctx context.Context) (*ActionResult, error) {
	return c.rescrapeAction(ctx, "schedule daily", "/rescraping/schedule-daily", struct{}{})
}

func (c *Client) StartAutoRescrape(ctx context.Context, req AutoRescrapeRequest) (*ActionResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.rescrapeAction(ctx, "start auto rescrape", "/rescraping/start-auto-rescrape", req)
}

func (c *Client) StartOverdueOnly(ctx context.Context) (*ActionResult, error) {
	return c.rescrapeAction(ctx, "start overdue only", "/rescraping/start-overdue-only", struct{}{})
}

func (c *Client) StartTodaysBatch(ctx context.Context) (*ActionResult, error) {
	return c.rescrapeAction(ctx, "start today's batch", "/rescraping/start-todays-batch", struct{}{})
}

func (c *Client) FixCorruptedCreators(ctx context.Context) (*ActionResult, error) {
	return c.rescrapeAction(ctx, "fix corrupted creators", "/rescraping/fix-corrupted-creators", struct{}{})
}

func (c *Client) Debug(ctx context.Context) (*rescrape.DebugReport, error) {
	var report rescrape.DebugReport
	if err := c.dump(ctx, "/rescraping/debug", &report, &report.Raw); err != nil {
		return nil, fmt.Errorf("debug: %w", err)
	}
	return &report, nil
}

func (c *Client) TestDistribution(ctx context.Context) (*rescrape.DistributionReport, error) {
	var report rescrape.DistributionReport
	if err := c.dump(ctx, "/rescraping/test-distribution", &report, &report.Raw); err != nil {
		return nil, fmt.Errorf("test distribution: %w", err)
	}
	return &report, nil
}

func (c *Client) rescrapeAction(ctx context.Context, name, path string, payload any) (*ActionResult, error) {
	r, err := jsonRequest(http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}
	return c.action(ctx, name, r)
}

// dump decodes a diagnostic payload into both its typed summary and the
// raw map kept for printing.
func (c *Client) dump(ctx context.Context, path string, summary any, raw *map[string]any) error {
	var body json.RawMessage
	if err := c.do(ctx, request{method: http.MethodGet, path: path}, &body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, summary); err != nil {
		return apperror.Wrap(apperror.Decode, "decode summary", err)
	}
	if err := json.Unmarshal(body, raw); err != nil {
		return apperror.Wrap(apperror.Decode, "decode payload", err)
	}
	return nil
}
