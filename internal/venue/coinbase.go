package venue

import (
	"context"
	"net/url"

	"github.com/rickgao/kalshi-lagbot/internal/model"
)

// DefaultCoinbaseURL is the Coinbase Exchange REST endpoint.
const DefaultCoinbaseURL = "https://api.exchange.coinbase.com"

// Coinbase quotes a product such as "BTC-USD".
type Coinbase struct {
	httpSource
}

// NewCoinbase creates a Coinbase source.
func NewCoinbase(opts ...Option) *Coinbase {
	return &Coinbase{httpSource: newHTTPSource("coinbase", DefaultCoinbaseURL, opts)}
}

type coinbaseTicker struct {
	Bid string `json:"bid"`
	Ask string `json:"ask"`
}

// Quote fetches the product ticker.
func (c *Coinbase) Quote(ctx context.Context, product string) (model.VenueQuote, error) {
	var t coinbaseTicker
	if err := c.getJSON(ctx, c.baseURL+"/products/"+url.PathEscape(product)+"/ticker", &t); err != nil {
		return model.VenueQuote{}, err
	}
	return MidFromStrings(c.name, t.Bid, t.Ask)
}
