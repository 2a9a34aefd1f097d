package config

import "time"

// BotConfig is the root configuration for a lag bot run.
type BotConfig struct {
	API       APIConfig       `yaml:"api"`
	Run       RunConfig       `yaml:"run"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Strategy  StrategyConfig  `yaml:"strategy"`
	Lag       LagConfig       `yaml:"lag"`
	Summary   SummaryConfig   `yaml:"summary"`
	Journal   JournalConfig   `yaml:"journal"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// APIConfig holds Kalshi API settings.
type APIConfig struct {
	RestURL        string        `yaml:"rest_url"`
	APIKey         string        `yaml:"api_key"`          // API key ID (for KALSHI-ACCESS-KEY header)
	PrivateKeyPath string        `yaml:"private_key_path"` // Path to RSA private key PEM file
	PrivateKeyPEM  string        `yaml:"private_key_pem"`  // Inline PEM, takes precedence over the path
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"max_retries"`
	TimeInForce    string        `yaml:"time_in_force"`
	CheckExchange  *bool         `yaml:"check_exchange"`
}

// HasCredentials reports whether signed requests can be made.
func (c APIConfig) HasCredentials() bool {
	return c.APIKey != "" && (c.PrivateKeyPEM != "" || c.PrivateKeyPath != "")
}

// RunConfig holds per-run toggles.
type RunConfig struct {
	DryRun *bool `yaml:"dry_run"`
}

// IsDryRun reports whether orders should be logged instead of placed.
func (c RunConfig) IsDryRun() bool {
	return c.DryRun == nil || *c.DryRun
}

// DiscoveryConfig controls how the market list for a run is built.
type DiscoveryConfig struct {
	Mode                string   `yaml:"mode"` // events, series or all
	EventSeriesTickers  []string `yaml:"event_series_tickers"`
	EventTickerPrefixes []string `yaml:"event_ticker_prefixes"`
	SeriesCategory      string   `yaml:"series_category"`
	SeriesFrequency     string   `yaml:"series_frequency"`
	EventsLimit         int      `yaml:"events_limit"`
	MinCloseTS          int64    `yaml:"min_close_ts"`
}

// StrategyConfig holds the opportunity filters.
type StrategyConfig struct {
	BTCOnly          bool     `yaml:"btc_only"`
	CryptoOnly       *bool    `yaml:"crypto_only"`
	CryptoAssets     []string `yaml:"crypto_assets"`
	IntervalRegex    string   `yaml:"interval_regex"`
	CombinedMaxPrice float64  `yaml:"combined_max_price"`
	OrderCount       int64    `yaml:"order_count"`
}

// IsCryptoOnly reports whether non-crypto markets are skipped.
func (c StrategyConfig) IsCryptoOnly() bool {
	return c.CryptoOnly == nil || *c.CryptoOnly
}

// LagConfig holds the spot-lag scanner settings.
type LagConfig struct {
	Enabled          *bool              `yaml:"enabled"`
	Threshold        float64            `yaml:"threshold"`
	RequireSignal    bool               `yaml:"require_signal"`
	MinSources       int                `yaml:"min_sources"`
	FetchTimeout     time.Duration      `yaml:"fetch_timeout"`
	BinanceTransport string             `yaml:"binance_transport"` // rest or ws
	BinanceWSURL     string             `yaml:"binance_ws_url"`
	Symbols          map[string]Symbols `yaml:"symbols"` // keyed by asset tag
}

// IsEnabled reports whether spot references are fetched.
func (c LagConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Symbols names an asset on each spot venue.
type Symbols struct {
	Coinbase string `yaml:"coinbase"`
	Kraken   string `yaml:"kraken"`
	Binance  string `yaml:"binance"`
}

// SummaryConfig holds run summary destinations. Empty values disable a sink.
type SummaryConfig struct {
	SlackWebhookURL  string `yaml:"slack_webhook_url"`
	TelegramBotToken string `yaml:"telegram_bot_token"`
	TelegramChatID   string `yaml:"telegram_chat_id"`
	MaxHighlights    int    `yaml:"max_highlights"`
}

// JournalConfig holds the optional decision journal database.
type JournalConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level        string `yaml:"level"`  // debug, info, warn, error
	Format       string `yaml:"format"` // text or json
	LogDecisions bool   `yaml:"log_decisions"`
}

func boolPtr(v bool) *bool { return &v }
