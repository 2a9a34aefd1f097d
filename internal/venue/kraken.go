package venue

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strings"

	"github.com/rickgao/kalshi-lagbot/internal/model"
)

// DefaultKrakenURL is the Kraken public REST endpoint.
const DefaultKrakenURL = "https://api.kraken.com"

// Kraken quotes a pair such as "XBTUSD".
type Kraken struct {
	httpSource
}

// NewKraken creates a Kraken source.
func NewKraken(opts ...Option) *Kraken {
	return &Kraken{httpSource: newHTTPSource("kraken", DefaultKrakenURL, opts)}
}

// krakenTicker keeps only the best ask ("a") and bid ("b") arrays; the first
// element of each is the price.
type krakenTicker struct {
	Error  []string `json:"error"`
	Result map[string]struct {
		Ask []string `json:"a"`
		Bid []string `json:"b"`
	} `json:"result"`
}

// Quote fetches the pair ticker. Kraken keys the result by its canonical pair
// name (e.g. "XXBTZUSD"), so the first entry in key order is used.
func (k *Kraken) Quote(ctx context.Context, pair string) (model.VenueQuote, error) {
	var t krakenTicker
	if err := k.getJSON(ctx, k.baseURL+"/0/public/Ticker?pair="+url.QueryEscape(pair), &t); err != nil {
		return model.VenueQuote{}, err
	}
	if len(t.Error) > 0 {
		return model.VenueQuote{}, fetchErr(k.name, KindStatus, errors.New(strings.Join(t.Error, "; ")))
	}
	if len(t.Result) == 0 {
		return model.VenueQuote{}, fetchErr(k.name, KindDecode, errors.New("empty result"))
	}

	keys := make([]string, 0, len(t.Result))
	for key := range t.Result {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	entry := t.Result[keys[0]]

	return MidFromStrings(k.name, first(entry.Bid), first(entry.Ask))
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
