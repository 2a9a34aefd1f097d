package model

import "time"

// -----------------------------------------------------------------------------
// Kalshi Types
// -----------------------------------------------------------------------------

// Market is a snapshot of a tradeable Kalshi market.
type Market struct {
	Ticker      string    // Market ticker (e.g., "KXBTC15M-25JAN011530-B105000")
	Title       string    // Display title
	Subtitle    string    // Optional subtitle
	EventTicker string    // Optional parent event ticker
	Status      string    // Optional market status
	CloseTime   time.Time // Market close time (UTC)

	// Best asks as dollar strings ("0.9500"); empty when absent.
	YesAskDollars string
	NoAskDollars  string
}

// Side is the contract side of an order.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// OrderRequest is a single limit buy order to submit.
type OrderRequest struct {
	Ticker   string
	Side     Side
	Price    float64 // Limit price in dollars
	Quantity int64   // Contract count
}

// OrderResponse identifies an accepted order.
type OrderResponse struct {
	OrderID string
}

// -----------------------------------------------------------------------------
// Spot Reference Types
// -----------------------------------------------------------------------------

// VenueQuote is the mid price one spot venue reported for an asset.
type VenueQuote struct {
	Venue string
	Mid   float64
}

// AssetReference is the robust reference price for one asset.
// Quotes holds only the quotes that passed validation.
type AssetReference struct {
	Asset          string
	ReferencePrice float64
	Quotes         []VenueQuote
}

// References maps a lowercase asset tag ("btc", "eth") to its reference.
type References map[string]AssetReference
