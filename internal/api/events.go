package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// DefaultPaginationTimeout bounds a full paginated listing when the caller's
// context has no deadline.
const DefaultPaginationTimeout = 10 * time.Minute

// GetEvents fetches a page of events.
func (c *Client) GetEvents(ctx context.Context, opts GetEventsOptions) (*EventsResponse, error) {
	query := url.Values{}

	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}
	if opts.SeriesTicker != "" {
		query.Set("series_ticker", opts.SeriesTicker)
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.WithNestedMarkets {
		query.Set("with_nested_markets", "true")
	}
	if opts.MinCloseTS > 0 {
		query.Set("min_close_ts", strconv.FormatInt(opts.MinCloseTS, 10))
	}

	var resp EventsResponse
	if err := c.get(ctx, "/events", query, &resp); err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}

	return &resp, nil
}

// GetAllEventsWithOptions fetches all events matching opts by paginating
// through results. Uses DefaultPaginationTimeout if the context has no deadline.
func (c *Client) GetAllEventsWithOptions(ctx context.Context, opts GetEventsOptions) ([]APIEvent, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultPaginationTimeout)
		defer cancel()
	}

	var allEvents []APIEvent
	opts.Cursor = ""

	for page := 1; ; page++ {
		c.logger.Debug("fetching events page",
			"page", page,
			"series_ticker", opts.SeriesTicker,
			"cursor", opts.Cursor,
		)

		resp, err := c.GetEvents(ctx, opts)
		if err != nil {
			return nil, err
		}

		allEvents = append(allEvents, resp.Events...)

		next := resp.NextPage()
		if next == "" {
			break
		}
		opts.Cursor = next
	}

	return allEvents, nil
}
