package api

import (
	"context"
	"fmt"
	"net/url"
)

// GetSeriesList fetches every series in a category by paginating through
// results. An empty category lists all series.
func (c *Client) GetSeriesList(ctx context.Context, category string) ([]APISeries, error) {
	var all []APISeries
	query := url.Values{}
	query.Set("limit", "1000")
	if category != "" {
		query.Set("category", category)
	}

	for page := 1; ; page++ {
		c.logger.Debug("fetching series page",
			"page", page,
			"category", category,
			"cursor", query.Get("cursor"),
		)

		var resp SeriesListResponse
		if err := c.get(ctx, "/series", query, &resp); err != nil {
			return nil, fmt.Errorf("get series: %w", err)
		}

		all = append(all, resp.Items()...)

		next := resp.NextPage()
		if next == "" {
			break
		}
		query.Set("cursor", next)
	}

	return all, nil
}
