package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetMarkets fetches a page of markets.
func (c *Client) GetMarkets(ctx context.Context, opts GetMarketsOptions) (*MarketsResponse, error) {
	query := url.Values{}

	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}
	if opts.EventTicker != "" {
		query.Set("event_ticker", opts.EventTicker)
	}
	if opts.SeriesTicker != "" {
		query.Set("series_ticker", opts.SeriesTicker)
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}

	var resp MarketsResponse
	if err := c.get(ctx, "/markets", query, &resp); err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}

	return &resp, nil
}

// GetAllMarkets fetches all open markets by paginating through results.
func (c *Client) GetAllMarkets(ctx context.Context) ([]APIMarket, error) {
	return c.GetAllMarketsWithOptions(ctx, GetMarketsOptions{Status: "open"})
}

// GetAllMarketsWithOptions fetches all markets matching the given options.
func (c *Client) GetAllMarketsWithOptions(ctx context.Context, opts GetMarketsOptions) ([]APIMarket, error) {
	var allMarkets []APIMarket
	opts.Limit = 1000 // Max page size

	for page := 1; ; page++ {
		c.logger.Debug("fetching markets page",
			"page", page,
			"series_ticker", opts.SeriesTicker,
			"cursor", opts.Cursor,
		)

		resp, err := c.GetMarkets(ctx, opts)
		if err != nil {
			return nil, err
		}

		allMarkets = append(allMarkets, resp.Markets...)

		next := resp.NextPage()
		if next == "" {
			break
		}
		opts.Cursor = next
	}

	return allMarkets, nil
}
