package config

import (
	"strings"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultRestURL          = "https://api.elections.kalshi.com/trade-api/v2"
	DefaultAPIPrefix        = "/trade-api/v2"
	DefaultAPITimeout       = 30 * time.Second
	DefaultMaxRetries       = 3
	DefaultTimeInForce      = "fill_or_kill"
	DefaultDiscoveryMode    = "events"
	DefaultSeriesCategory   = "crypto"
	DefaultSeriesFrequency  = "fifteen_min"
	DefaultEventsLimit      = 200
	DefaultIntervalRegex    = `(?i)\b15\s?m(in(ute)?s?)?\b`
	DefaultCombinedMaxPrice = 1.0
	DefaultOrderCount       = 1
	DefaultLagThreshold     = 0.08
	DefaultLagMinSources    = 2
	DefaultFetchTimeout     = 3 * time.Second
	DefaultBinanceTransport = "rest"
	DefaultMaxHighlights    = 6
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 4
	DefaultMinConns         = 1
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)

// DefaultSeriesTickers are the 15-minute crypto series scanned in events mode.
var DefaultSeriesTickers = []string{"KXBTC15M", "KXETH15M", "KXSOL15M"}

// DefaultCryptoAssets are the asset keys matched by the crypto-only filter.
var DefaultCryptoAssets = []string{"btc", "eth", "sol"}

// DefaultSymbols are the venue symbols for each scanned asset.
var DefaultSymbols = map[string]Symbols{
	"BTC": {Coinbase: "BTC-USD", Kraken: "XBTUSD", Binance: "BTCUSDT"},
	"ETH": {Coinbase: "ETH-USD", Kraken: "ETHUSD", Binance: "ETHUSDT"},
}

func (c *BotConfig) applyDefaults() {
	// API defaults
	if c.API.RestURL == "" {
		c.API.RestURL = DefaultRestURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.TimeInForce == "" {
		c.API.TimeInForce = DefaultTimeInForce
	}
	if c.API.CheckExchange == nil {
		c.API.CheckExchange = boolPtr(true)
	}

	// Run defaults
	if c.Run.DryRun == nil {
		c.Run.DryRun = boolPtr(true)
	}

	// Discovery defaults
	if c.Discovery.Mode == "" {
		c.Discovery.Mode = DefaultDiscoveryMode
	}
	if c.Discovery.EventSeriesTickers == nil {
		c.Discovery.EventSeriesTickers = append([]string(nil), DefaultSeriesTickers...)
	}
	if c.Discovery.EventTickerPrefixes == nil {
		c.Discovery.EventTickerPrefixes = append([]string(nil), DefaultSeriesTickers...)
	}
	c.Discovery.EventSeriesTickers = normalizeList(c.Discovery.EventSeriesTickers, strings.ToUpper)
	c.Discovery.EventTickerPrefixes = normalizeList(c.Discovery.EventTickerPrefixes, strings.ToUpper)
	if c.Discovery.SeriesCategory == "" {
		c.Discovery.SeriesCategory = DefaultSeriesCategory
	}
	if c.Discovery.SeriesFrequency == "" {
		c.Discovery.SeriesFrequency = DefaultSeriesFrequency
	}
	if c.Discovery.EventsLimit == 0 {
		c.Discovery.EventsLimit = DefaultEventsLimit
	}

	// Strategy defaults
	if c.Strategy.CryptoOnly == nil {
		c.Strategy.CryptoOnly = boolPtr(true)
	}
	if c.Strategy.CryptoAssets == nil {
		c.Strategy.CryptoAssets = append([]string(nil), DefaultCryptoAssets...)
	}
	c.Strategy.CryptoAssets = normalizeList(c.Strategy.CryptoAssets, strings.ToLower)
	if c.Strategy.IntervalRegex == "" {
		c.Strategy.IntervalRegex = DefaultIntervalRegex
	}
	if c.Strategy.CombinedMaxPrice == 0 {
		c.Strategy.CombinedMaxPrice = DefaultCombinedMaxPrice
	}
	if c.Strategy.OrderCount == 0 {
		c.Strategy.OrderCount = DefaultOrderCount
	}

	// Lag defaults
	if c.Lag.Enabled == nil {
		c.Lag.Enabled = boolPtr(true)
	}
	if c.Lag.Threshold == 0 {
		c.Lag.Threshold = DefaultLagThreshold
	}
	if c.Lag.MinSources == 0 {
		c.Lag.MinSources = DefaultLagMinSources
	}
	if c.Lag.FetchTimeout == 0 {
		c.Lag.FetchTimeout = DefaultFetchTimeout
	}
	if c.Lag.BinanceTransport == "" {
		c.Lag.BinanceTransport = DefaultBinanceTransport
	}
	if c.Lag.Symbols == nil {
		c.Lag.Symbols = make(map[string]Symbols, len(DefaultSymbols))
		for asset, s := range DefaultSymbols {
			c.Lag.Symbols[asset] = s
		}
	}

	// Summary defaults
	if c.Summary.MaxHighlights == 0 {
		c.Summary.MaxHighlights = DefaultMaxHighlights
	}

	// Journal defaults
	applyDBDefaults(&c.Journal.Postgres)

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}

// normalizeList trims, case-folds and drops empty entries.
func normalizeList(in []string, fold func(string) string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = fold(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
