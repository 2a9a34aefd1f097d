package api

import (
	"context"
	"fmt"
)

// GetExchangeStatus fetches the current exchange status.
func (c *Client) GetExchangeStatus(ctx context.Context) (*ExchangeStatusResponse, error) {
	var resp ExchangeStatusResponse
	if err := c.get(ctx, "/exchange/status", nil, &resp); err != nil {
		return nil, fmt.Errorf("get exchange status: %w", err)
	}
	return &resp, nil
}

// Tradable reports whether both the exchange and trading are active.
func (s *ExchangeStatusResponse) Tradable() bool {
	return s.ExchangeActive && s.TradingActive
}
