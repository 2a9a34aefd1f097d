package runner

import (
	"sort"
	"strings"

	"github.com/rickgao/kalshi-lagbot/internal/config"
	"github.com/rickgao/kalshi-lagbot/internal/reference"
	"github.com/rickgao/kalshi-lagbot/internal/venue"
)

// Sources are the venue clients shared by all assets.
type Sources struct {
	Coinbase venue.Source
	Kraken   venue.Source
	Binance  venue.Source
}

// DefaultSources builds the production venue clients. transport selects the
// Binance REST or websocket client.
func DefaultSources(transport, binanceWSURL string) Sources {
	var binance venue.Source = venue.NewBinance()
	if strings.EqualFold(transport, "ws") {
		binance = venue.NewBinanceStream(binanceWSURL)
	}
	return Sources{
		Coinbase: venue.NewCoinbase(),
		Kraken:   venue.NewKraken(),
		Binance:  binance,
	}
}

// Assets maps configured venue symbols onto scan legs, sorted by asset.
// Venues with an empty symbol are skipped.
func Assets(symbols map[string]config.Symbols, src Sources) []reference.Asset {
	names := make([]string, 0, len(symbols))
	for name := range symbols {
		names = append(names, name)
	}
	sort.Strings(names)

	assets := make([]reference.Asset, 0, len(names))
	for _, name := range names {
		s := symbols[name]
		var legs []reference.Leg
		for _, leg := range []reference.Leg{
			{Source: src.Coinbase, Symbol: s.Coinbase},
			{Source: src.Kraken, Symbol: s.Kraken},
			{Source: src.Binance, Symbol: s.Binance},
		} {
			if leg.Source == nil || strings.TrimSpace(leg.Symbol) == "" {
				continue
			}
			legs = append(legs, leg)
		}
		if len(legs) == 0 {
			continue
		}
		assets = append(assets, reference.Asset{Name: strings.ToLower(name), Legs: legs})
	}
	return assets
}
