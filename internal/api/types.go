package api

// ExchangeStatusResponse from GET /exchange/status
type ExchangeStatusResponse struct {
	ExchangeActive      bool   `json:"exchange_active"`
	TradingActive       bool   `json:"trading_active"`
	EstimatedResumeTime string `json:"exchange_estimated_resume_time,omitempty"`
}

// MarketsResponse from GET /markets
type MarketsResponse struct {
	Markets    []APIMarket `json:"markets"`
	Cursor     string      `json:"cursor"`
	NextCursor string      `json:"next_cursor"`
}

// NextPage returns the cursor for the following page, or "" on the last page.
func (r *MarketsResponse) NextPage() string { return firstNonEmpty(r.Cursor, r.NextCursor) }

// APIMarket represents a market from the Kalshi API.
type APIMarket struct {
	Ticker      string `json:"ticker"`
	EventTicker string `json:"event_ticker"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Status      string `json:"status"`

	// Prices in cents
	YesAsk int `json:"yes_ask"`
	NoAsk  int `json:"no_ask"`

	// Prices as strings (sub-penny)
	YesAskDollars string `json:"yes_ask_dollars"`
	NoAskDollars  string `json:"no_ask_dollars"`

	// Timestamps (ISO 8601)
	CloseTime string `json:"close_time"`
}

// EventsResponse from GET /events
type EventsResponse struct {
	Events     []APIEvent `json:"events"`
	Cursor     string     `json:"cursor"`
	NextCursor string     `json:"next_cursor"`
}

// NextPage returns the cursor for the following page, or "" on the last page.
func (r *EventsResponse) NextPage() string { return firstNonEmpty(r.Cursor, r.NextCursor) }

// APIEvent represents an event from the Kalshi API. Markets is populated
// only when the request sets with_nested_markets.
type APIEvent struct {
	EventTicker  string      `json:"event_ticker"`
	SeriesTicker string      `json:"series_ticker"`
	Title        string      `json:"title"`
	Subtitle     string      `json:"subtitle"`
	Category     string      `json:"category"`
	Markets      []APIMarket `json:"markets"`
}

// SeriesListResponse from GET /series. Older API versions return the list
// under "market_series".
type SeriesListResponse struct {
	Series       []APISeries `json:"series"`
	MarketSeries []APISeries `json:"market_series"`
	Cursor       string      `json:"cursor"`
	NextCursor   string      `json:"next_cursor"`
}

// Items returns whichever series list the response carried.
func (r *SeriesListResponse) Items() []APISeries {
	if r.Series != nil {
		return r.Series
	}
	return r.MarketSeries
}

// NextPage returns the cursor for the following page, or "" on the last page.
func (r *SeriesListResponse) NextPage() string { return firstNonEmpty(r.Cursor, r.NextCursor) }

// APISeries represents a series from the Kalshi API.
type APISeries struct {
	Ticker    string `json:"ticker"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Frequency string `json:"frequency"`
}

// CreateOrderRequest is the body of POST /portfolio/orders.
type CreateOrderRequest struct {
	Ticker          string `json:"ticker"`
	ClientOrderID   string `json:"client_order_id,omitempty"`
	Side            string `json:"side"`
	Action          string `json:"action"`
	Count           int64  `json:"count"`
	Type            string `json:"type"`
	TimeInForce     string `json:"time_in_force,omitempty"`
	YesPriceDollars string `json:"yes_price_dollars,omitempty"`
	NoPriceDollars  string `json:"no_price_dollars,omitempty"`
}

// CreateOrderResponse from POST /portfolio/orders. Some API versions return
// the id at the top level instead of inside "order".
type CreateOrderResponse struct {
	Order   *APIOrder `json:"order"`
	OrderID string    `json:"order_id"`
}

// APIOrder represents an order from the Kalshi API.
type APIOrder struct {
	OrderID       string `json:"order_id"`
	ClientOrderID string `json:"client_order_id"`
	Status        string `json:"status"`
}

// GetMarketsOptions configures a GetMarkets request.
type GetMarketsOptions struct {
	Limit        int
	Cursor       string
	EventTicker  string
	SeriesTicker string
	Status       string
}

// GetEventsOptions configures a GetEvents request.
type GetEventsOptions struct {
	Limit             int
	Cursor            string
	SeriesTicker      string
	Status            string
	WithNestedMarkets bool
	MinCloseTS        int64
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
